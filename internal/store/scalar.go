package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carvelab/satchel/internal/codec"
)

// Entry is one enumerated scalar: a name and its decoded value.
type Entry struct {
	Name  string
	Value any
}

// PutScalar stores value under name, replacing any previous value.
// The value is encoded before anything touches the database, so an
// unsupported value writes nothing.
func (s *Store) PutScalar(ctx context.Context, name string, value any) error {
	text, err := codec.Encode(value)
	if err != nil {
		return fmt.Errorf("put scalar %q: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO kv_store (key, value)
		VALUES (?, ?)
	`, name, text)
	if err != nil {
		return fmt.Errorf("put scalar %q: %w", name, err)
	}

	return nil
}

// GetScalar returns the decoded value stored under name.
// Returns ErrNotFound if no entry exists. A NULL value column (a foreign
// writer's doing - the codec always writes text) surfaces as nil.
func (s *Store) GetScalar(ctx context.Context, name string) (any, error) {
	var text sql.NullString
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv_store WHERE key = ?
	`, name).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get scalar %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get scalar %q: %w", name, err)
	}

	if !text.Valid {
		return nil, nil
	}

	value, err := codec.Decode(text.String)
	if err != nil {
		return nil, fmt.Errorf("get scalar %q: %w", name, err)
	}
	return value, nil
}

// DeleteScalar removes the entry for name. Deleting an absent name is a
// no-op; reporting absence is the facade's job, via ScalarExists.
func (s *Store) DeleteScalar(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM kv_store WHERE key = ?
	`, name)
	if err != nil {
		return fmt.Errorf("delete scalar %q: %w", name, err)
	}
	return nil
}

// ScalarExists reports whether a scalar entry exists for name.
func (s *Store) ScalarExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM kv_store WHERE key = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check scalar %q: %w", name, err)
	}
	return count > 0, nil
}

// EnumerateScalars returns every scalar entry, ordered by name for
// deterministic output. Returns an empty slice (not nil) when the store is
// empty.
func (s *Store) EnumerateScalars(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value FROM kv_store
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("enumerate scalars: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var name string
		var text sql.NullString
		if err := rows.Scan(&name, &text); err != nil {
			return nil, fmt.Errorf("enumerate scalars: %w", err)
		}

		entry := Entry{Name: name}
		if text.Valid {
			value, err := codec.Decode(text.String)
			if err != nil {
				return nil, fmt.Errorf("enumerate scalars: %q: %w", name, err)
			}
			entry.Value = value
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enumerate scalars: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}
