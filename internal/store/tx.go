package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jottty/jottty/internal/datom"
)

// Tx is a datom.Session bound to one SQLite transaction.
// It is only valid inside the Transact callback that received it.
type Tx struct {
	s  *Store
	tx *sql.Tx
}

// Load implements datom.Session within the transaction.
func (t *Tx) Load(ctx context.Context, id string) (datom.Entity, error) {
	return t.s.loadEntity(ctx, t.tx, id)
}

// Write implements datom.Session within the transaction.
func (t *Tx) Write(ctx context.Context, e datom.Entity) error {
	return t.s.writeEntity(ctx, t.tx, e)
}

// Transact runs fn inside a single transaction. All writes made through the
// session commit together when fn returns nil; any error rolls them all back.
func (s *Store) Transact(ctx context.Context, fn func(datom.Session) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transact: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(&Tx{s: s, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("transact: commit: %w", err)
	}
	return nil
}
