package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"net/url"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jottty/jottty/internal/codec"
	"github.com/jottty/jottty/internal/datom"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (rows may carry a NULL addresses column)
// 1 - addresses column backfilled to "[]"
const currentSchemaVersion = 1

// MemoryPath opens a private in-memory database. Intended for tests.
const MemoryPath = ":memory:"

// Store provides durable storage for entity snapshots.
type Store struct {
	db    *sql.DB
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

// pragmas are passed as go-sqlite3 DSN parameters so they apply to every
// connection the pool opens.
var pragmas = url.Values{
	"_journal_mode": {"WAL"},
	"_locking_mode": {"EXCLUSIVE"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
}

// Open creates or opens a SQLite database at the given path and ensures the
// schema exists. Pass MemoryPath for an in-memory store.
//
// The database is configured with:
//   - WAL journaling
//   - EXCLUSIVE locking mode (single writer, no concurrent readers)
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?"+pragmas.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, and an exclusive lock (or a
	// private :memory: database) is tied to a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

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

// Close closes the database connection.
// Should be called when the store is no longer needed.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// EnsureSchema creates the vaults table if it doesn't exist and runs
// migrations. This function is idempotent.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := runMigrations(ctx, s.db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Count returns the number of stored entity rows.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vaults").Scan(&n); err != nil {
		return 0, fmt.Errorf("count vaults: %w", err)
	}
	return n, nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(ctx, db); err != nil {
			return err
		}
	}

	if version != currentSchemaVersion {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
			return fmt.Errorf("set user_version: %w", err)
		}
	}

	return nil
}

// migrateToV1 backfills rows written before the addresses column was
// always populated.
func migrateToV1(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `UPDATE vaults SET addresses = '[]' WHERE addresses IS NULL`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
