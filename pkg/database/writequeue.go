package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Queued operation kinds
const (
	OpSet    = "set"
	OpUpdate = "update"
	OpDelete = "delete"
)

// QueuedOperation is a write made while the database was offline
type QueuedOperation struct {
	CollectionName string
	Query          bson.M
	Operation      string
	// Data is the $set document for OpSet or the full update document for OpUpdate
	Data interface{}
}

// apply runs the operation as an upsert against col
func (op QueuedOperation) apply(ctx context.Context, col *mongo.Collection) error {
	upsert := options.Update().SetUpsert(true)

	var err error
	switch op.Operation {
	case OpSet:
		_, err = col.UpdateOne(ctx, op.Query, bson.M{"$set": op.Data}, upsert)
	case OpUpdate:
		_, err = col.UpdateOne(ctx, op.Query, op.Data, upsert)
	case OpDelete:
		_, err = col.DeleteOne(ctx, op.Query)
	default:
		err = fmt.Errorf("unknown operation %q", op.Operation)
	}
	return err
}

// writeQueue keeps offline writes in arrival order
type writeQueue struct {
	mu  sync.Mutex
	ops []QueuedOperation
}

func (q *writeQueue) push(op QueuedOperation) {
	q.mu.Lock()
	q.ops = append(q.ops, op)
	q.mu.Unlock()
}

// drain empties the queue and returns what it held
func (q *writeQueue) drain() []QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()
	ops := q.ops
	q.ops = nil
	return ops
}

// requeue puts failed operations back ahead of anything queued since drain
func (q *writeQueue) requeue(failed []QueuedOperation) {
	q.mu.Lock()
	q.ops = append(failed, q.ops...)
	q.mu.Unlock()
}

func (q *writeQueue) snapshot() []QueuedOperation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]QueuedOperation(nil), q.ops...)
}

func (q *writeQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// AddToWriteQueue queues op until the database is back
func (d *Database) AddToWriteQueue(op QueuedOperation) {
	d.queue.push(op)
}

// PendingWrites returns the number of queued offline operations
func (d *Database) PendingWrites() int {
	return d.queue.len()
}

// replayQueue applies queued writes in order. Failures go back to the queue.
func (d *Database) replayQueue() {
	ops := d.queue.drain()
	if len(ops) == 0 {
		return
	}
	logger.System(fmt.Sprintf("Sincronizando %d operaciones pendientes con la DB...", len(ops)), "DB-Sync")

	var failed []QueuedOperation
	for _, op := range ops {
		col := d.GetCollection(op.CollectionName)
		if col == nil {
			failed = append(failed, op)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		err := op.apply(ctx, col)
		cancel()

		if err != nil {
			logger.Error(fmt.Sprintf("Error sincronizando '%s' (%s): %v", op.CollectionName, op.Operation, err), "DB-Sync")
			failed = append(failed, op)
		}
	}

	if len(failed) > 0 {
		d.queue.requeue(failed)
		logger.Warn(fmt.Sprintf("%d operaciones no pudieron sincronizarse y se reintentarán.", len(failed)), "DB-Sync")
		return
	}
	logger.Success("Sincronización completada exitosamente.", "DB-Sync")
}
