package store

import (
	"context"
	"fmt"

	"github.com/jottty/jottty/internal/datom"
)

// Write upserts the full snapshot of e, keyed by datom.Address(e.ID).
// Uses ON CONFLICT(addr) DO UPDATE: an existing row is overwritten, not
// merged. Callers merge attributes before writing.
func (s *Store) Write(ctx context.Context, e datom.Entity) error {
	return s.writeEntity(ctx, s.db, e)
}

func (s *Store) writeEntity(ctx context.Context, q querier, e datom.Entity) error {
	content, err := s.codec.Encode(e)
	if err != nil {
		return fmt.Errorf("write entity: %w", err)
	}

	addresses, err := marshalAddresses(nil)
	if err != nil {
		return fmt.Errorf("write entity %q: %w", e.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO vaults (addr, content, addresses)
		VALUES (?, ?, ?)
		ON CONFLICT(addr) DO UPDATE SET content = excluded.content, addresses = excluded.addresses
	`,
		datom.Address(e.ID),
		content,
		addresses,
	)
	if err != nil {
		return fmt.Errorf("write entity %q: %w", e.ID, err)
	}

	return nil
}
