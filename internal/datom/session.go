package datom

import "context"

// Session is a scoped view of a backend: point loads and full-snapshot
// writes keyed by entity id.
type Session interface {
	// Load returns the stored entity, or an empty entity when none exists.
	Load(ctx context.Context, id string) (Entity, error)

	// Write replaces the stored snapshot for e.ID.
	Write(ctx context.Context, e Entity) error
}

// Transactor runs fn inside one storage transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Transact(ctx context.Context, fn func(Session) error) error
}

// Backend is a storage engine the datom applier can run against.
type Backend interface {
	Session
	Transactor

	// EnsureSchema idempotently creates backing structures.
	EnsureSchema(ctx context.Context) error

	Close() error
}
