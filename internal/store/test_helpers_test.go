package store

import (
	"path/filepath"
	"testing"

	"github.com/jottty/jottty/internal/datom"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path, opts...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEntity creates an entity with string attributes.
func createTestEntity(id string, kv ...string) datom.Entity {
	e := datom.NewEntity(id)
	for i := 0; i+1 < len(kv); i += 2 {
		e.Attrs[kv[i]] = datom.String(kv[i+1])
	}
	return e
}
