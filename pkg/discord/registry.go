package discord

import (
	"sort"
	"sync"
)

// CommandCollection maps interaction routes ("mod.unwarn") to commands
type CommandCollection struct {
	mu     sync.RWMutex
	routes map[string]*Command
}

// NewCommandCollection creates an empty CommandCollection
func NewCommandCollection() *CommandCollection {
	return &CommandCollection{routes: make(map[string]*Command)}
}

// Set adds or replaces the command behind route
func (cc *CommandCollection) Set(route string, cmd *Command) {
	cc.mu.Lock()
	cc.routes[route] = cmd
	cc.mu.Unlock()
}

// Get looks up a route
func (cc *CommandCollection) Get(route string) (*Command, bool) {
	cc.mu.RLock()
	cmd, ok := cc.routes[route]
	cc.mu.RUnlock()
	return cmd, ok
}

// Size returns the number of routes
func (cc *CommandCollection) Size() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.routes)
}

// Routes returns every registered route, sorted
func (cc *CommandCollection) Routes() []string {
	cc.mu.RLock()
	routes := make([]string, 0, len(cc.routes))
	for route := range cc.routes {
		routes = append(routes, route)
	}
	cc.mu.RUnlock()

	sort.Strings(routes)
	return routes
}
