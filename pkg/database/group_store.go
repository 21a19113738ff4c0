package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"go.mongodb.org/mongo-driver/bson"
)

// GroupsCollection holds one document per guild the bot is in
const GroupsCollection = "groups"

var ErrGroupStoreNotInitialized = errors.New("group store not initialized")

// GroupStore keeps the registered groups in MongoDB and mirrors them in
// memory, so a ban or unban can still be broadcast while the database is
// offline.
type GroupStore struct {
	dm       *DataManager[models.Group]
	entries  map[string]models.Group
	mu       sync.RWMutex
	ticker   *time.Ticker
	done     chan struct{}
	stopOnce sync.Once
}

// NewGroupStore creates a GroupStore over the "groups" collection
func NewGroupStore(db *Database) *GroupStore {
	return &GroupStore{
		dm:      NewDataManager[models.Group](GroupsCollection, db),
		entries: make(map[string]models.Group),
		done:    make(chan struct{}),
	}
}

func groupQuery(id string) bson.M {
	return bson.M{"id": id}
}

// Refresh reloads every group from the database into memory
func (s *GroupStore) Refresh(ctx context.Context) error {
	if s == nil || s.dm == nil {
		return ErrGroupStoreNotInitialized
	}

	groups, err := s.dm.GetAll(ctx, bson.M{})
	if err != nil {
		return err
	}

	entries := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		entries[g.ID] = *g
	}

	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()

	logger.Debug(fmt.Sprintf("Grupos cargados: %d", len(entries)), "Groups")
	return nil
}

// StartAutoRefresh refreshes the in-memory roster every interval until Stop
func (s *GroupStore) StartAutoRefresh(interval time.Duration) {
	s.mu.Lock()
	if s.ticker != nil {
		s.mu.Unlock()
		return
	}
	s.ticker = time.NewTicker(interval)
	ticker := s.ticker
	s.mu.Unlock()

	go func() {
		for {
			select {
			case <-s.done:
				return
			case <-ticker.C:
				if err := s.Refresh(context.Background()); err != nil {
					logger.Warn("Error refrescando grupos: "+err.Error(), "Groups")
				}
			}
		}
	}()

	logger.System("Refresco de grupos iniciado (cada "+interval.String()+")", "Groups")
}

// Stop ends the auto refresh goroutine
func (s *GroupStore) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		if s.ticker != nil {
			s.ticker.Stop()
		}
		s.mu.Unlock()
		close(s.done)
	})
}

// ListGroups returns every registered group. While the database is offline
// the in-memory roster is returned instead.
func (s *GroupStore) ListGroups(ctx context.Context) ([]models.Group, error) {
	if s == nil || s.dm == nil {
		return nil, ErrGroupStoreNotInitialized
	}

	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrNotConnected) {
		return nil, err
	}
	return s.snapshot(), nil
}

func (s *GroupStore) snapshot() []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.Group, 0, len(s.entries))
	for _, g := range s.entries {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups
}

// AddGroup registers a group, or refreshes its title when already known
func (s *GroupStore) AddGroup(ctx context.Context, group models.Group) error {
	if s == nil || s.dm == nil {
		return ErrGroupStoreNotInitialized
	}

	s.mu.Lock()
	if known, ok := s.entries[group.ID]; ok && !known.JoinedAt.IsZero() {
		group.JoinedAt = known.JoinedAt
	}
	if group.JoinedAt.IsZero() {
		group.JoinedAt = time.Now().UTC()
	}
	s.entries[group.ID] = group
	s.mu.Unlock()

	_, err := s.dm.Set(ctx, groupQuery(group.ID), group)
	return err
}

// RemoveGroup unregisters a group
func (s *GroupStore) RemoveGroup(ctx context.Context, id string) error {
	if s == nil || s.dm == nil {
		return ErrGroupStoreNotInitialized
	}

	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()

	return s.dm.Delete(ctx, groupQuery(id))
}

// Size returns the number of groups held in memory
func (s *GroupStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
