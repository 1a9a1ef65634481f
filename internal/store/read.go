package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jottty/jottty/internal/datom"
)

// querier is the subset of *sql.DB and *sql.Tx used by row helpers.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Load returns the entity stored for id.
//
// Returns an empty entity (not an error) if no row exists or the row cannot
// be decoded. Returns a *CollisionError if the row belongs to another id.
func (s *Store) Load(ctx context.Context, id string) (datom.Entity, error) {
	return s.loadEntity(ctx, s.db, id)
}

// Addresses returns the reserved related-address list for id.
// Returns an empty list if no row exists.
func (s *Store) Addresses(ctx context.Context, id string) ([]int64, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT addresses FROM vaults WHERE addr = ?
	`, datom.Address(id)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read addresses %q: %w", id, err)
	}
	return unmarshalAddresses(raw.String)
}

func (s *Store) loadEntity(ctx context.Context, q querier, id string) (datom.Entity, error) {
	addr := datom.Address(id)

	var content sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT content FROM vaults WHERE addr = ?
	`, addr).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return datom.NewEntity(id), nil
	}
	if err != nil {
		return datom.Entity{}, fmt.Errorf("load entity %q: %w", id, err)
	}

	entity, err := s.codec.Decode(content.String)
	if err != nil {
		s.log.Warn("unreadable entity record, treating as empty",
			"id", id, "addr", addr, "codec", s.codec.Name(), "error", err)
		return datom.NewEntity(id), nil
	}

	if entity.ID != id {
		return datom.Entity{}, &CollisionError{ID: id, StoredID: entity.ID, Addr: addr}
	}

	return entity, nil
}
