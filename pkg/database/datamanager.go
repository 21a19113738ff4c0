// Package database provides the DataManager for cached database operations.
package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotConnected is returned by reads while the database is offline
var ErrNotConnected = errors.New("database not connected")

const opTimeout = 5 * time.Second

// DataManagerOptions contains configuration for a DataManager
type DataManagerOptions struct {
	MaxCacheSize int
}

// DefaultDataManagerOptions returns default options for DataManager
func DefaultDataManagerOptions() DataManagerOptions {
	return DataManagerOptions{
		MaxCacheSize: 1000,
	}
}

// DataManager provides cached access to a MongoDB collection.
// The collection is resolved on every call so a manager created while the
// database is offline starts working once it reconnects.
type DataManager[T any] struct {
	collectionName string
	dbInstance     *Database
	options        DataManagerOptions
	cache          *lru.Cache[string, T]
}

// NewDataManager creates a new DataManager for a collection
func NewDataManager[T any](collectionName string, db *Database, opts ...DataManagerOptions) *DataManager[T] {
	dmOptions := DefaultDataManagerOptions()
	if len(opts) > 0 {
		dmOptions = opts[0]
	}

	if dmOptions.MaxCacheSize <= 0 {
		dmOptions.MaxCacheSize = DefaultDataManagerOptions().MaxCacheSize
	}

	// lru.New only fails on a non-positive size
	cache, _ := lru.New[string, T](dmOptions.MaxCacheSize)

	return &DataManager[T]{
		collectionName: collectionName,
		dbInstance:     db,
		options:        dmOptions,
		cache:          cache,
	}
}

func (dm *DataManager[T]) collection() *mongo.Collection {
	if !dm.dbInstance.Connected() {
		return nil
	}
	return dm.dbInstance.GetCollection(dm.collectionName)
}

// generateCacheKey creates a unique, deterministic key from a query.
// Keys are sorted so map iteration order does not matter.
func (dm *DataManager[T]) generateCacheKey(query bson.M) string {
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, query[k]))
	}

	return fmt.Sprintf("%s:{%s}", dm.collectionName, strings.Join(parts, ","))
}

// cached returns a copy of a cached document so callers cannot mutate the cache
func (dm *DataManager[T]) cached(key string) (*T, bool) {
	doc, ok := dm.cache.Get(key)
	if !ok {
		return nil, false
	}
	return &doc, true
}

func (dm *DataManager[T]) store(key string, doc *T) {
	dm.cache.Add(key, *doc)
}

// Get retrieves a document from cache or database. It returns (nil, nil)
// when no document matches.
func (dm *DataManager[T]) Get(ctx context.Context, query bson.M) (*T, error) {
	cacheKey := dm.generateCacheKey(query)

	if doc, ok := dm.cached(cacheKey); ok {
		return doc, nil
	}

	col := dm.collection()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var result T
	err := col.FindOne(ctx, query).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		logger.Warn(fmt.Sprintf("Fallo al leer de la DB (%s): %v", dm.collectionName, err), "DataManager")
		return nil, err
	}

	dm.store(cacheKey, &result)
	return &result, nil
}

// GetAll retrieves all documents matching a query from the database, uncached
func (dm *DataManager[T]) GetAll(ctx context.Context, query bson.M) ([]*T, error) {
	col := dm.collection()
	if col == nil {
		return nil, ErrNotConnected
	}

	ctx, cancel := context.WithTimeout(ctx, 2*opTimeout)
	defer cancel()

	cursor, err := col.Find(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cursor.Close(ctx) }()

	var results []*T
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			logger.Warn(fmt.Sprintf("Documento ilegible en '%s': %v", dm.collectionName, err), "DataManager")
			continue
		}
		results = append(results, &doc)
	}

	return results, cursor.Err()
}

// Set $sets data on the matching document, upserting it
func (dm *DataManager[T]) Set(ctx context.Context, query bson.M, data interface{}) (*T, error) {
	return dm.write(ctx, query, OpSet, data)
}

// Update applies a raw update document (operators like $push) with upsert
func (dm *DataManager[T]) Update(ctx context.Context, query bson.M, update bson.M) (*T, error) {
	return dm.write(ctx, query, OpUpdate, update)
}

// write runs a set/update and refreshes the cache. While offline the write is
// queued and (nil, nil) is returned.
func (dm *DataManager[T]) write(ctx context.Context, query bson.M, op string, data interface{}) (*T, error) {
	cacheKey := dm.generateCacheKey(query)
	queued := QueuedOperation{
		CollectionName: dm.collectionName,
		Query:          query,
		Operation:      op,
		Data:           data,
	}

	col := dm.collection()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando escritura para '%s'", dm.collectionName), "DataManager")
		dm.cache.Remove(cacheKey)
		dm.dbInstance.AddToWriteQueue(queued)
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	update := data
	if op == OpSet {
		update = bson.M{"$set": data}
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result T
	if err := col.FindOneAndUpdate(ctx, query, update, opts).Decode(&result); err != nil {
		logger.Error(fmt.Sprintf("Error en '%s' con DB conectada: %v", op, err), "DataManager")
		dm.cache.Remove(cacheKey)
		return nil, err
	}

	dm.store(cacheKey, &result)
	return &result, nil
}

// Delete removes a document from the database and cache
func (dm *DataManager[T]) Delete(ctx context.Context, query bson.M) error {
	cacheKey := dm.generateCacheKey(query)
	dm.cache.Remove(cacheKey)

	col := dm.collection()
	if col == nil {
		logger.Warn(fmt.Sprintf("DB offline. Encolando eliminación para '%s'", dm.collectionName), "DataManager")
		dm.dbInstance.AddToWriteQueue(QueuedOperation{
			CollectionName: dm.collectionName,
			Query:          query,
			Operation:      OpDelete,
		})
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := col.DeleteOne(ctx, query)
	return err
}

// CacheSize returns the number of cached documents
func (dm *DataManager[T]) CacheSize() int {
	return dm.cache.Len()
}
