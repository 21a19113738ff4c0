package database

import (
	"context"
	"testing"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCacheKeyIsDeterministic(t *testing.T) {
	dm := NewDataManager[models.User]("users", nil)

	a := dm.generateCacheKey(bson.M{"id": "1", "status": "banned"})
	b := dm.generateCacheKey(bson.M{"status": "banned", "id": "1"})

	assert.Equal(t, a, b)
	assert.Equal(t, "users:{id=1,status=banned}", a)
	assert.NotEqual(t, a, NewDataManager[models.User]("groups", nil).generateCacheKey(bson.M{"id": "1", "status": "banned"}))
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	dm := NewDataManager[models.User]("users", nil, DataManagerOptions{MaxCacheSize: 2})
	dm.store("a", &models.User{ID: "a"})
	dm.store("b", &models.User{ID: "b"})
	_, _ = dm.cached("a")
	dm.store("c", &models.User{ID: "c"})

	_, okA := dm.cached("a")
	_, okB := dm.cached("b")
	_, okC := dm.cached("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)
	assert.Equal(t, 2, dm.CacheSize())
}

func TestNonPositiveCacheSizeFallsBackToDefault(t *testing.T) {
	dm := NewDataManager[models.User]("users", nil, DataManagerOptions{})
	assert.Equal(t, DefaultDataManagerOptions().MaxCacheSize, dm.options.MaxCacheSize)
}

func TestCachedDocumentsAreCopies(t *testing.T) {
	dm := NewDataManager[models.User]("users", nil)

	dm.store("k", &models.User{ID: "1", Status: models.StatusBanned})
	doc, ok := dm.cached("k")
	require.True(t, ok)
	doc.Status = models.StatusNormal

	again, _ := dm.cached("k")
	assert.Equal(t, models.StatusBanned, again.Status)
}

func TestOfflineReadsFail(t *testing.T) {
	store := NewUserStore(NewDatabase())

	user, err := store.GetUser(context.Background(), "offline-read")
	assert.Nil(t, user)
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestOfflineWritesAreQueued(t *testing.T) {
	db := NewDatabase()
	store := NewUserStore(db)
	date := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	w := models.Warning{ID: "w1", Reason: "spam", Date: &date}

	user, err := store.AddWarning(context.Background(), &models.User{ID: "offline-write", Username: "ana"}, w, models.StatusNormal)
	require.NoError(t, err)
	assert.Equal(t, []models.Warning{w}, user.Warns)
	assert.Equal(t, 1, db.PendingWrites())

	require.NoError(t, store.ClearWarnings(context.Background(), "offline-write"))
	assert.Equal(t, 2, db.PendingWrites())

	queued := db.queue.snapshot()
	assert.Equal(t, OpUpdate, queued[0].Operation)
	assert.Equal(t, OpSet, queued[1].Operation)
	assert.Equal(t, UsersCollection, queued[0].CollectionName)
}

func TestWriteQueueRequeueKeepsOrder(t *testing.T) {
	var q writeQueue
	q.push(QueuedOperation{CollectionName: "a"})
	q.push(QueuedOperation{CollectionName: "b"})

	drained := q.drain()
	require.Len(t, drained, 2)
	assert.Equal(t, 0, q.len())

	q.push(QueuedOperation{CollectionName: "c"})
	q.requeue(drained[1:])

	names := []string{}
	for _, op := range q.snapshot() {
		names = append(names, op.CollectionName)
	}
	assert.Equal(t, []string{"b", "c"}, names)
}

func TestNilStoresReportNotInitialized(t *testing.T) {
	var users *UserStore
	var groups *GroupStore

	_, err := users.GetUser(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUserStoreNotInitialized)
	_, err = groups.ListGroups(context.Background())
	assert.ErrorIs(t, err, ErrGroupStoreNotInitialized)
}

func TestGroupStoreServesRosterWhileOffline(t *testing.T) {
	db := NewDatabase()
	store := NewGroupStore(db)
	ctx := context.Background()

	require.NoError(t, store.AddGroup(ctx, models.Group{ID: "g2", Title: "Dos"}))
	require.NoError(t, store.AddGroup(ctx, models.Group{ID: "g1", Title: "Uno"}))
	require.NoError(t, store.AddGroup(ctx, models.Group{ID: "g1", Title: "Uno renombrado"}))

	groups, err := store.ListGroups(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "g1", groups[0].ID)
	assert.Equal(t, "Uno renombrado", groups[0].Title)
	assert.False(t, groups[0].JoinedAt.IsZero())

	require.NoError(t, store.RemoveGroup(ctx, "g2"))
	assert.Equal(t, 1, store.Size())
	assert.Equal(t, 4, db.PendingWrites())
}

func TestDisconnectedDatabaseStatus(t *testing.T) {
	var db *Database
	assert.False(t, db.Connected())

	status, ok := db.GetStatus()
	assert.False(t, ok)
	assert.Contains(t, status, "Desconectado")

	status, ok = NewDatabase().GetStatus()
	assert.False(t, ok)
	assert.Contains(t, status, "Desconectado")
}
