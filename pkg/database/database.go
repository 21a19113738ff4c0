// Package database provides MongoDB database connection and data management.
// It includes a DataManager with caching capabilities for efficient data access
// and the user and group stores used by the moderation service.
package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	dialTimeout       = 5 * time.Second
	reconnectInterval = 15 * time.Second
)

// Database owns the MongoDB connection. While it is offline writes are
// queued and replayed once a reconnection succeeds.
type Database struct {
	mu        sync.RWMutex
	client    *mongo.Client
	db        *mongo.Database
	connected bool

	queue writeQueue

	reconnecting bool
	done         chan struct{}
	closeOnce    sync.Once
}

var (
	database *Database
	dbOnce   sync.Once
)

// Init initializes the global database instance
func Init(mongoURL, dbName string) (*Database, error) {
	var err error
	dbOnce.Do(func() {
		database = NewDatabase()
		err = database.Connect(mongoURL, dbName)
	})
	return database, err
}

// Get returns the global database instance
func Get() *Database {
	return database
}

// NewDatabase returns a disconnected Database
func NewDatabase() *Database {
	return &Database{done: make(chan struct{})}
}

// dial opens a client and checks the primary answers
func dial(mongoURL string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(mongoURL).
		SetServerSelectionTimeout(dialTimeout))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}
	return client, nil
}

// Connect establishes a connection to MongoDB. On failure a background
// reconnection loop is started and the error is returned.
func (d *Database) Connect(mongoURL, dbName string) error {
	if d.Connected() {
		return nil
	}

	logger.System("Intentando conectar a la base de datos...", "DB")
	client, err := dial(mongoURL)
	if err != nil {
		logger.Critical(fmt.Sprintf("Fallo al conectar con la base de datos: %v", err), "DB")
		d.startReconnect(mongoURL, dbName)
		return err
	}

	d.mu.Lock()
	d.client = client
	d.db = client.Database(dbName)
	d.connected = true
	d.mu.Unlock()

	logger.Success("Conectado exitosamente a la base de datos.", "DB")
	go d.replayQueue()
	return nil
}

// startReconnect runs at most one reconnection loop at a time
func (d *Database) startReconnect(mongoURL, dbName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connected = false
	if d.reconnecting {
		return
	}
	d.reconnecting = true

	go func() {
		ticker := time.NewTicker(reconnectInterval)
		defer ticker.Stop()
		defer func() {
			d.mu.Lock()
			d.reconnecting = false
			d.mu.Unlock()
		}()

		for {
			select {
			case <-d.done:
				return
			case <-ticker.C:
			}

			logger.Info("Intentando reconectar a la base de datos...", "DB")
			client, err := dial(mongoURL)
			if err != nil {
				logger.Debug(fmt.Sprintf("Reconexión fallida: %v", err), "DB")
				continue
			}

			d.mu.Lock()
			d.client = client
			d.db = client.Database(dbName)
			d.connected = true
			d.mu.Unlock()

			logger.Success("Reconectado a la base de datos.", "DB")
			go d.replayQueue()
			return
		}
	}()
}

// Disconnect stops reconnecting and closes the client
func (d *Database) Disconnect() error {
	d.closeOnce.Do(func() { close(d.done) })

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	err := d.client.Disconnect(ctx)
	d.connected = false
	d.client, d.db = nil, nil
	if err == nil {
		logger.Warn("La base de datos ha sido desconectada", "DB")
	}
	return err
}

// Connected reports whether the database is usable
func (d *Database) Connected() bool {
	if d == nil {
		return false
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}

var errOffline = errors.New("not connected to database")

// Ping measures the round trip to the primary
func (d *Database) Ping() (time.Duration, error) {
	d.mu.RLock()
	client := d.client
	connected := d.connected
	d.mu.RUnlock()

	if !connected || client == nil {
		return 0, errOffline
	}

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()

	start := time.Now()
	err := client.Ping(ctx, readpref.Primary())
	return time.Since(start), err
}

// GetStatus returns a status line for /utils status and whether it is up
func (d *Database) GetStatus() (string, bool) {
	if d == nil {
		return "🔴 | Desconectado", false
	}
	if _, err := d.Ping(); err != nil {
		return "🔴 | Desconectado", false
	}
	return "🟢 | En linea", true
}

// GetCollection returns a collection handle, or nil while disconnected
func (d *Database) GetCollection(name string) *mongo.Collection {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected || d.db == nil {
		return nil
	}
	return d.db.Collection(name)
}
