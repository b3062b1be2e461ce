package store

import (
	"context"
	"errors"
)

// Collection names used across the backend.
const (
	CollAppointments = "appointments"
	CollSlots        = "slots"
	CollUsernames    = "usernames"
	CollUsers        = "users"
	CollClearances   = "clearances"
)

// ErrTxnConflict is returned when a transaction could not commit after the
// store's bounded retries because concurrently modified documents kept
// invalidating its snapshot. Callers should treat it as transient.
var ErrTxnConflict = errors.New("transaction conflict: concurrent modification")

// Txn is the transactional handle passed to a RunTransaction callback.
// Reads observe a consistent snapshot plus this transaction's own buffered
// writes; writes become visible only if the whole callback commits.
type Txn interface {
	// Get decodes the document into out and reports whether it exists.
	Get(collection, id string, out any) (bool, error)
	// Set creates or fully replaces the document.
	Set(collection, id string, doc any) error
	// Delete removes the document. Deleting an absent document is a no-op.
	Delete(collection, id string) error
}

// Store is a transactional document store: named documents in named
// collections, plus an optimistic multi-document transaction primitive.
// The production implementation is MongoStore; MemoryStore backs tests.
type Store interface {
	// RunTransaction executes fn against a transactional handle, retrying on
	// conflict. An error returned by fn aborts the transaction with no
	// partial writes and is returned unwrapped.
	RunTransaction(ctx context.Context, fn func(tx Txn) error) error
	// Get is a plain non-transactional read.
	Get(ctx context.Context, collection, id string, out any) (bool, error)
	// Find decodes all documents matching the top-level equality filter into
	// out, which must be a pointer to a slice.
	Find(ctx context.Context, collection string, filter map[string]any, out any) error
}
