// Package kvstore is a badger-backed alternative to the SQLite store.
//
// It keeps the same record layout as the vaults table, spread over two key
// families keyed by the big-endian entity address:
//
//	vault/<addr>  -> codec content
//	addrs/<addr>  -> reserved related-address list, always "[]"
//
// Read semantics match package store: missing or undecodable records load
// as empty entities, and a record stored under another id is an address
// collision.
package kvstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/jottty/jottty/internal/codec"
	"github.com/jottty/jottty/internal/datom"
	"github.com/jottty/jottty/internal/store"
)

var (
	vaultPrefix   = []byte("vault/")
	addrsPrefix   = []byte("addrs/")
	schemaKey     = []byte("meta/schema_version")
	schemaVersion = []byte("1")
)

// Store is a datom.Backend over badger.
type Store struct {
	db    *badger.DB
	codec codec.Codec
	log   *slog.Logger
}

var _ datom.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithCodec selects the content codec. Defaults to codec.JSON.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithLogger sets the logger used for lenient-read warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open opens (or creates) a badger directory at dir. An empty dir opens an
// in-memory store. Badger holds a directory lock, so only one process can
// open dir at a time.
func Open(dir string, opts ...Option) (*Store, error) {
	bopts := badger.DefaultOptions(dir)
	if dir == "" {
		bopts = bopts.WithInMemory(true)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger: %w", err)
	}

	s := &Store{db: db, codec: codec.JSON{}, log: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the badger database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// EnsureSchema records the layout version. Idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(schemaKey, schemaVersion)
	})
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Load implements datom.Session.
func (s *Store) Load(ctx context.Context, id string) (datom.Entity, error) {
	var e datom.Entity
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		e, err = s.loadEntity(ctx, txn, id)
		return err
	})
	return e, err
}

// Write implements datom.Session.
func (s *Store) Write(ctx context.Context, e datom.Entity) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return s.writeEntity(ctx, txn, e)
	})
}

// Transact runs fn inside one badger read-write transaction.
func (s *Store) Transact(ctx context.Context, fn func(datom.Session) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transact: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&Tx{s: s, txn: txn})
	})
}

// Count returns the number of stored entity records.
func (s *Store) Count(ctx context.Context) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = vaultPrefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count vaults: %w", err)
	}
	return n, nil
}

// Tx is a datom.Session bound to one badger transaction.
type Tx struct {
	s   *Store
	txn *badger.Txn
}

// Load implements datom.Session within the transaction.
func (t *Tx) Load(ctx context.Context, id string) (datom.Entity, error) {
	return t.s.loadEntity(ctx, t.txn, id)
}

// Write implements datom.Session within the transaction.
func (t *Tx) Write(ctx context.Context, e datom.Entity) error {
	return t.s.writeEntity(ctx, t.txn, e)
}

func (s *Store) loadEntity(ctx context.Context, txn *badger.Txn, id string) (datom.Entity, error) {
	if err := ctx.Err(); err != nil {
		return datom.Entity{}, err
	}
	addr := datom.Address(id)

	item, err := txn.Get(key(vaultPrefix, addr))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return datom.NewEntity(id), nil
	}
	if err != nil {
		return datom.Entity{}, fmt.Errorf("load entity %q: %w", id, err)
	}
	content, err := item.ValueCopy(nil)
	if err != nil {
		return datom.Entity{}, fmt.Errorf("load entity %q: %w", id, err)
	}

	entity, err := s.codec.Decode(string(content))
	if err != nil {
		s.log.Warn("unreadable entity record, treating as empty",
			"id", id, "addr", addr, "codec", s.codec.Name(), "error", err)
		return datom.NewEntity(id), nil
	}

	if entity.ID != id {
		return datom.Entity{}, &store.CollisionError{ID: id, StoredID: entity.ID, Addr: addr}
	}
	return entity, nil
}

func (s *Store) writeEntity(ctx context.Context, txn *badger.Txn, e datom.Entity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content, err := s.codec.Encode(e)
	if err != nil {
		return fmt.Errorf("write entity: %w", err)
	}
	addr := datom.Address(e.ID)
	if err := txn.Set(key(vaultPrefix, addr), []byte(content)); err != nil {
		return fmt.Errorf("write entity %q: %w", e.ID, err)
	}
	if err := txn.Set(key(addrsPrefix, addr), []byte("[]")); err != nil {
		return fmt.Errorf("write entity %q: %w", e.ID, err)
	}
	return nil
}

// key builds prefix + big-endian address.
func key(prefix []byte, addr int64) []byte {
	k := make([]byte, len(prefix)+8)
	copy(k, prefix)
	binary.BigEndian.PutUint64(k[len(prefix):], uint64(addr))
	return k
}
