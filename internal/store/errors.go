package store

import (
	"errors"
	"fmt"
)

// ErrAddressCollision matches every *CollisionError.
var ErrAddressCollision = errors.New("store: address collision")

// CollisionError reports two distinct entity ids hashing to the same address.
// The stored record belongs to StoredID; the caller asked for ID.
type CollisionError struct {
	ID       string
	StoredID string
	Addr     int64
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("address collision at %d: requested %q, stored %q", e.Addr, e.ID, e.StoredID)
}

// Is lets errors.Is(err, ErrAddressCollision) match.
func (e *CollisionError) Is(target error) bool { return target == ErrAddressCollision }

// IsCollision returns true if the error is an address collision.
// Uses errors.As to handle wrapped errors.
func IsCollision(err error) bool {
	var ce *CollisionError
	return errors.As(err, &ce)
}
