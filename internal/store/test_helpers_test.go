package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a store backed by a fresh temp-dir database.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustPutScalar writes a scalar or fails the test.
func mustPutScalar(t *testing.T, s *Store, name string, value any) {
	t.Helper()
	if err := s.PutScalar(context.Background(), name, value); err != nil {
		t.Fatalf("PutScalar(%q) failed: %v", name, err)
	}
}

// mustReplaceAll rewrites a list or fails the test.
func mustReplaceAll(t *testing.T, s *Store, list string, values []any) {
	t.Helper()
	if err := s.ReplaceAll(context.Background(), list, values); err != nil {
		t.Fatalf("ReplaceAll(%q) failed: %v", list, err)
	}
}

// insertRawListRow writes a list_store row directly, bypassing the write
// path. Simulates a foreign writer.
func insertRawListRow(t *testing.T, s *Store, list string, index int, text string) {
	t.Helper()
	_, err := s.db.Exec(`
		INSERT INTO list_store (list_name, item_index, item_value)
		VALUES (?, ?, ?)
	`, list, index, text)
	if err != nil {
		t.Fatalf("raw insert into list_store failed: %v", err)
	}
}
