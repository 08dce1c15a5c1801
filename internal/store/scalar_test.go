package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPutScalar_StoresJSONText(t *testing.T) {
	s := createTestStore(t)

	mustPutScalar(t, s, "name", "Ada")

	var text string
	err := s.db.QueryRow("SELECT value FROM kv_store WHERE key = 'name'").Scan(&text)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if text != `"Ada"` {
		t.Errorf("stored text = %q, want %q", text, `"Ada"`)
	}
}

func TestPutScalar_Overwrites(t *testing.T) {
	s := createTestStore(t)

	mustPutScalar(t, s, "count", int64(1))
	mustPutScalar(t, s, "count", int64(2))

	value, err := s.GetScalar(context.Background(), "count")
	if err != nil {
		t.Fatalf("GetScalar() failed: %v", err)
	}
	if value != int64(2) {
		t.Errorf("value = %v, want 2", value)
	}

	// Replace, not version: exactly one row
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM kv_store WHERE key = 'count'").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("rows for key = %d, want 1", count)
	}
}

func TestPutScalar_UnsupportedValueWritesNothing(t *testing.T) {
	s := createTestStore(t)

	err := s.PutScalar(context.Background(), "bad", make(chan int))
	if err == nil {
		t.Fatal("expected error for unsupported value")
	}

	exists, err := s.ScalarExists(context.Background(), "bad")
	if err != nil {
		t.Fatalf("ScalarExists() failed: %v", err)
	}
	if exists {
		t.Error("failed put must not create a row")
	}
}

func TestGetScalar_RoundTripsValueShapes(t *testing.T) {
	s := createTestStore(t)

	tests := []struct {
		name  string
		value any
	}{
		{"string", "hello"},
		{"int", int64(42)},
		{"float", 3.14},
		{"bool", true},
		{"null", nil},
		{"map", map[string]any{"city": "Oslo", "zip": int64(150)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPutScalar(t, s, tt.name, tt.value)

			got, err := s.GetScalar(context.Background(), tt.name)
			if err != nil {
				t.Fatalf("GetScalar() failed: %v", err)
			}
			if diff := cmp.Diff(tt.value, got); diff != "" {
				t.Errorf("value mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGetScalar_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetScalar(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestGetScalar_CorruptText(t *testing.T) {
	s := createTestStore(t)

	// A foreign writer left something the codec never produces
	_, err := s.db.Exec("INSERT INTO kv_store (key, value) VALUES ('broken', '{not json')")
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	_, err = s.GetScalar(context.Background(), "broken")
	if err == nil {
		t.Fatal("expected decode error for corrupt text")
	}
}

func TestGetScalar_NullColumn(t *testing.T) {
	s := createTestStore(t)

	// value column is nullable; the codec always writes text, but a foreign
	// writer may not
	_, err := s.db.Exec("INSERT INTO kv_store (key, value) VALUES ('blank', NULL)")
	if err != nil {
		t.Fatalf("raw insert failed: %v", err)
	}

	got, err := s.GetScalar(context.Background(), "blank")
	if err != nil {
		t.Fatalf("GetScalar() failed: %v", err)
	}
	if got != nil {
		t.Errorf("value = %v, want nil", got)
	}
}

func TestDeleteScalar_RemovesEntry(t *testing.T) {
	s := createTestStore(t)

	mustPutScalar(t, s, "gone", "soon")

	if err := s.DeleteScalar(context.Background(), "gone"); err != nil {
		t.Fatalf("DeleteScalar() failed: %v", err)
	}

	exists, err := s.ScalarExists(context.Background(), "gone")
	if err != nil {
		t.Fatalf("ScalarExists() failed: %v", err)
	}
	if exists {
		t.Error("entry still present after delete")
	}
}

func TestDeleteScalar_AbsentIsNoOp(t *testing.T) {
	s := createTestStore(t)

	if err := s.DeleteScalar(context.Background(), "never-stored"); err != nil {
		t.Errorf("DeleteScalar() on absent name = %v, want nil", err)
	}
}

func TestScalarExists(t *testing.T) {
	s := createTestStore(t)

	exists, err := s.ScalarExists(context.Background(), "k")
	if err != nil {
		t.Fatalf("ScalarExists() failed: %v", err)
	}
	if exists {
		t.Error("exists = true before put")
	}

	mustPutScalar(t, s, "k", int64(1))

	exists, err = s.ScalarExists(context.Background(), "k")
	if err != nil {
		t.Fatalf("ScalarExists() failed: %v", err)
	}
	if !exists {
		t.Error("exists = false after put")
	}
}

func TestEnumerateScalars_OrderedByName(t *testing.T) {
	s := createTestStore(t)

	mustPutScalar(t, s, "zebra", int64(3))
	mustPutScalar(t, s, "apple", int64(1))
	mustPutScalar(t, s, "mango", int64(2))

	entries, err := s.EnumerateScalars(context.Background())
	if err != nil {
		t.Fatalf("EnumerateScalars() failed: %v", err)
	}

	want := []Entry{
		{Name: "apple", Value: int64(1)},
		{Name: "mango", Value: int64(2)},
		{Name: "zebra", Value: int64(3)},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestEnumerateScalars_EmptyStore(t *testing.T) {
	s := createTestStore(t)

	entries, err := s.EnumerateScalars(context.Background())
	if err != nil {
		t.Fatalf("EnumerateScalars() failed: %v", err)
	}
	if entries == nil {
		t.Error("entries is nil, want empty slice")
	}
	if len(entries) != 0 {
		t.Errorf("entries = %v, want empty", entries)
	}
}
