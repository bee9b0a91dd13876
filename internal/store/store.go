// Package store defines the persistence contract the POS core depends on,
// plus the two shipped implementations: an in-process store with optional
// JSON-file persistence, and a Postgres-backed store. Both push entity
// snapshots to subscribers on every change.
package store

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when an addressed entity no longer exists,
// for example a table deleted by another terminal mid-session.
var ErrNotFound = errors.New("store: not found")

// Store is the persistence collaborator for the POS core. Writes are
// upserts by id. Each Subscribe* call delivers the current snapshot
// immediately, then again on every change in emission order, until the
// returned cancel function is called. Cancel must not leak the listener.
type Store interface {
	SubscribeMenu(fn func([]MenuItem)) (cancel func())
	SubscribeTables(fn func([]Table)) (cancel func())
	SubscribeOrders(fn func([]Order)) (cancel func())
	SubscribeSettings(fn func(AppSettings)) (cancel func())
	SubscribeProfile(fn func(BusinessProfile)) (cancel func())

	PutMenuItems(ctx context.Context, items ...MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) error

	PutTables(ctx context.Context, tables ...Table) error
	DeleteTable(ctx context.Context, id string) error
	UpdateTable(ctx context.Context, id string, patch TablePatch) error

	SaveOrder(ctx context.Context, o Order) error
	// SaveOrderAndTable persists the order and the table patch as one
	// logical operation. The lifecycle state machine uses it on every
	// transition so a table can never durably point at an order that
	// was not written.
	SaveOrderAndTable(ctx context.Context, o Order, tableID string, patch TablePatch) error

	Settings(ctx context.Context) (AppSettings, error)
	PutSettings(ctx context.Context, s AppSettings) error
	Profile(ctx context.Context) (BusinessProfile, error)
	PutProfile(ctx context.Context, p BusinessProfile) error

	// Ping is the one-shot connectivity probe. Callers bound it with a
	// deadline context so a dead store cannot block startup.
	Ping(ctx context.Context) error
}

// feed is a registry of listeners for one entity type. Deliveries run
// under the registry lock: registration plus the initial snapshot is one
// atomic step, and publishes reach every listener in emission order. A
// listener must not subscribe or cancel from inside its own callback.
type feed[T any] struct {
	mu   sync.Mutex
	subs map[int]func(T)
	next int
}

// subscribe registers fn, delivers the initial snapshot, and returns the
// cancel function. No publish can slot between the snapshot and the
// registration, so a write racing the handshake is always delivered.
func (f *feed[T]) subscribe(fn func(T), snapshot T) func() {
	f.mu.Lock()
	if f.subs == nil {
		f.subs = make(map[int]func(T))
	}
	id := f.next
	f.next++
	f.subs[id] = fn
	fn(snapshot)
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
	}
}

// publish invokes every registered listener with v.
func (f *feed[T]) publish(v T) {
	f.mu.Lock()
	for _, fn := range f.subs {
		fn(v)
	}
	f.mu.Unlock()
}
