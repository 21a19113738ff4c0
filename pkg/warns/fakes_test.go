package warns

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

func ts(s string) *time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Warns = append([]models.Warning(nil), u.Warns...)
	return &c
}

type memUsers struct {
	mu          sync.Mutex
	users       map[string]*models.User
	getErr      error
	removeCalls int
	addCalls    int
}

func newMemUsers(users ...*models.User) *memUsers {
	m := &memUsers{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID] = cloneUser(u)
	}
	return m
}

func (m *memUsers) GetUser(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (m *memUsers) RemoveWarning(_ context.Context, user *models.User, warning models.Warning) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeCalls++

	stored, ok := m.users[user.ID]
	if !ok {
		return nil, errors.New("no such user")
	}
	warns, ok := models.WithoutWarning(stored.Warns, warning)
	if !ok {
		return nil, errors.New("no such warning")
	}
	stored.Warns = warns
	if stored.IsBanned() {
		stored.Status = models.StatusNormal
	}
	return cloneUser(stored), nil
}

func (m *memUsers) AddWarning(_ context.Context, user *models.User, warning models.Warning, status models.UserStatus) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.addCalls++

	stored, ok := m.users[user.ID]
	if !ok {
		stored = cloneUser(user)
		m.users[user.ID] = stored
	}
	stored.Warns = append(stored.Warns, warning)
	stored.Status = status
	return cloneUser(stored), nil
}

func (m *memUsers) get(id string) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneUser(m.users[id])
}

type memGroups struct {
	groups []models.Group
	err    error
}

func (g *memGroups) ListGroups(context.Context) ([]models.Group, error) {
	return g.groups, g.err
}

func groupsOf(ids ...string) *memGroups {
	g := &memGroups{}
	for _, id := range ids {
		g.groups = append(g.groups, models.Group{ID: id, Title: "grupo " + id})
	}
	return g
}

type fakeTransport struct {
	mu        sync.Mutex
	unbans    map[string]int
	bans      map[string]int
	failGroup map[string]bool
	dms       []string
	dmErr     error
	panicDM   bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		unbans:    make(map[string]int),
		bans:      make(map[string]int),
		failGroup: make(map[string]bool),
	}
}

func (f *fakeTransport) UnbanMember(_ context.Context, groupID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbans[groupID]++
	if f.failGroup[groupID] {
		return errors.New("unknown ban")
	}
	return nil
}

func (f *fakeTransport) BanMember(_ context.Context, groupID, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bans[groupID]++
	if f.failGroup[groupID] {
		return errors.New("missing permissions")
	}
	return nil
}

func (f *fakeTransport) SendDirectMessage(_ context.Context, userID, text string) error {
	if f.panicDM {
		panic("transport exploded")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return f.dmErr
	}
	f.dms = append(f.dms, userID+": "+text)
	return nil
}

func (f *fakeTransport) unbanCount(groupID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unbans[groupID]
}

func (f *fakeTransport) totalUnbans() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.unbans {
		n += c
	}
	return n
}

func (f *fakeTransport) sentDMs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dms...)
}
