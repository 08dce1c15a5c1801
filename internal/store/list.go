package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carvelab/satchel/internal/codec"
)

// nullText is the wire form of the null placeholder written by gap-filling.
const nullText = "null"

// rowQuerier is satisfied by both *sql.DB and *sql.Tx, so length can be
// computed inside or outside a transaction.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Length returns the logical length of the named list: highest stored index
// plus one, or 0 when no entries exist. Row counts are never used - they
// would undercount lists where a foreign writer left gaps. Negative indices
// (also a foreign writer's doing) are ignored.
func (s *Store) Length(ctx context.Context, list string) (int, error) {
	return listLength(ctx, s.db, list)
}

func listLength(ctx context.Context, q rowQuerier, list string) (int, error) {
	var length int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(item_index) + 1, 0)
		FROM list_store
		WHERE list_name = ? AND item_index >= 0
	`, list).Scan(&length)
	if err != nil {
		return 0, fmt.Errorf("length of %q: %w", list, err)
	}
	return length, nil
}

// SetItem writes value at index of the named list.
//
// Negative indices fail with ErrIndexOutOfRange. An index below the current
// length replaces in place: the UPDATE covers every physical row at that
// position (duplicates left by a foreign writer all agree afterwards), and
// a position with no physical row is created. An index at or beyond the
// current length extends the list: intermediate positions are filled with
// explicit null placeholders and the length becomes index+1.
//
// The whole write runs in one transaction, so a crash cannot leave a
// half-filled gap.
func (s *Store) SetItem(ctx context.Context, list string, index int, value any) error {
	if index < 0 {
		return fmt.Errorf("set item %q[%d]: %w", list, index, ErrIndexOutOfRange)
	}

	text, err := codec.Encode(value)
	if err != nil {
		return fmt.Errorf("set item %q[%d]: %w", list, index, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set item %q[%d]: begin tx: %w", list, index, err)
	}
	defer tx.Rollback() // No-op if committed

	length, err := listLength(ctx, tx, list)
	if err != nil {
		return fmt.Errorf("set item %q[%d]: %w", list, index, err)
	}

	if index < length {
		result, err := tx.ExecContext(ctx, `
			UPDATE list_store
			SET item_value = ?
			WHERE list_name = ? AND item_index = ?
		`, text, list, index)
		if err != nil {
			return fmt.Errorf("set item %q[%d]: update: %w", list, index, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("set item %q[%d]: rows affected: %w", list, index, err)
		}

		// In-range position with no physical row: a gap left by a foreign
		// writer. Create the row.
		if affected == 0 {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO list_store (list_name, item_index, item_value)
				VALUES (?, ?, ?)
			`, list, index, text); err != nil {
				return fmt.Errorf("set item %q[%d]: insert: %w", list, index, err)
			}
		}
	} else {
		// Fill the gap up to index with null placeholders, then write.
		for pos := length; pos < index; pos++ {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO list_store (list_name, item_index, item_value)
				VALUES (?, ?, ?)
			`, list, pos, nullText); err != nil {
				return fmt.Errorf("set item %q[%d]: fill %d: %w", list, index, pos, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO list_store (list_name, item_index, item_value)
			VALUES (?, ?, ?)
		`, list, index, text); err != nil {
			return fmt.Errorf("set item %q[%d]: insert: %w", list, index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set item %q[%d]: commit: %w", list, index, err)
	}

	return nil
}

// GetItem returns the value at index of the named list.
//
// Indices outside [0, length) fail with ErrIndexOutOfRange. An in-range
// position with no physical row is a placeholder and returns nil. When
// duplicate physical rows exist for the position, the newest (highest id)
// wins.
func (s *Store) GetItem(ctx context.Context, list string, index int) (any, error) {
	if index < 0 {
		return nil, fmt.Errorf("get item %q[%d]: %w", list, index, ErrIndexOutOfRange)
	}

	length, err := s.Length(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("get item %q[%d]: %w", list, index, err)
	}
	if index >= length {
		return nil, fmt.Errorf("get item %q[%d]: %w", list, index, ErrIndexOutOfRange)
	}

	var text sql.NullString
	err = s.db.QueryRowContext(ctx, `
		SELECT item_value FROM list_store
		WHERE list_name = ? AND item_index = ?
		ORDER BY id DESC
		LIMIT 1
	`, list, index).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		// In-range gap: placeholder
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item %q[%d]: %w", list, index, err)
	}

	if !text.Valid {
		return nil, nil
	}

	value, err := codec.Decode(text.String)
	if err != nil {
		return nil, fmt.Errorf("get item %q[%d]: %w", list, index, err)
	}
	return value, nil
}

// Materialize returns the whole list in index order as a dense slice:
// every position from 0 to length-1, placeholders and gaps as nil.
// Returns an empty slice (not nil) for an unknown list.
func (s *Store) Materialize(ctx context.Context, list string) ([]any, error) {
	length, err := s.Length(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("materialize %q: %w", list, err)
	}

	items := make([]any, length)

	rows, err := s.db.QueryContext(ctx, `
		SELECT item_index, item_value FROM list_store
		WHERE list_name = ? AND item_index >= 0
		ORDER BY item_index ASC, id ASC
	`, list)
	if err != nil {
		return nil, fmt.Errorf("materialize %q: %w", list, err)
	}
	defer rows.Close()

	for rows.Next() {
		var index int
		var text sql.NullString
		if err := rows.Scan(&index, &text); err != nil {
			return nil, fmt.Errorf("materialize %q: %w", list, err)
		}

		// A foreign writer may have appended between the length query and
		// this scan; rows past the computed length are dropped rather than
		// read inconsistently.
		if index >= length {
			continue
		}
		if !text.Valid {
			continue
		}

		value, err := codec.Decode(text.String)
		if err != nil {
			return nil, fmt.Errorf("materialize %q: index %d: %w", list, index, err)
		}
		// Ascending id order means the newest duplicate lands last
		items[index] = value
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("materialize %q: %w", list, err)
	}

	return items, nil
}

// ReplaceAll atomically clears the named list and writes values at indices
// 0..len(values)-1. Values are encoded before the transaction begins, so an
// unsupported element leaves the existing list untouched. Replacing with an
// empty slice leaves the name absent.
func (s *Store) ReplaceAll(ctx context.Context, list string, values []any) error {
	texts := make([]string, len(values))
	for i, v := range values {
		text, err := codec.Encode(v)
		if err != nil {
			return fmt.Errorf("replace %q: index %d: %w", list, i, err)
		}
		texts[i] = text
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace %q: begin tx: %w", list, err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM list_store WHERE list_name = ?
	`, list); err != nil {
		return fmt.Errorf("replace %q: clear: %w", list, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO list_store (list_name, item_index, item_value)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace %q: prepare: %w", list, err)
	}
	defer stmt.Close()

	for i, text := range texts {
		if _, err := stmt.ExecContext(ctx, list, i, text); err != nil {
			return fmt.Errorf("replace %q: insert index %d: %w", list, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace %q: commit: %w", list, err)
	}

	return nil
}

// DeleteAll removes every entry of the named list, stray negative-index
// rows included. Deleting an unknown list is a no-op.
func (s *Store) DeleteAll(ctx context.Context, list string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM list_store WHERE list_name = ?
	`, list)
	if err != nil {
		return fmt.Errorf("delete list %q: %w", list, err)
	}
	return nil
}

// Append writes value at the end of the named list (index = current
// length). Appending to an unknown list creates it at index 0. The
// length check and insert share one transaction.
func (s *Store) Append(ctx context.Context, list string, value any) error {
	text, err := codec.Encode(value)
	if err != nil {
		return fmt.Errorf("append to %q: %w", list, err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append to %q: begin tx: %w", list, err)
	}
	defer tx.Rollback() // No-op if committed

	length, err := listLength(ctx, tx, list)
	if err != nil {
		return fmt.Errorf("append to %q: %w", list, err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO list_store (list_name, item_index, item_value)
		VALUES (?, ?, ?)
	`, list, length, text); err != nil {
		return fmt.Errorf("append to %q: insert: %w", list, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append to %q: commit: %w", list, err)
	}

	return nil
}

// RemoveAt deletes the entry at index and shifts every higher index down by
// one. Indices outside [0, length) fail with ErrIndexOutOfRange. Removing
// an in-range gap is allowed: there is no row to delete, but the shift
// still happens so the list contracts by one.
func (s *Store) RemoveAt(ctx context.Context, list string, index int) error {
	if index < 0 {
		return fmt.Errorf("remove %q[%d]: %w", list, index, ErrIndexOutOfRange)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("remove %q[%d]: begin tx: %w", list, index, err)
	}
	defer tx.Rollback() // No-op if committed

	length, err := listLength(ctx, tx, list)
	if err != nil {
		return fmt.Errorf("remove %q[%d]: %w", list, index, err)
	}
	if index >= length {
		return fmt.Errorf("remove %q[%d]: %w", list, index, ErrIndexOutOfRange)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM list_store
		WHERE list_name = ? AND item_index = ?
	`, list, index); err != nil {
		return fmt.Errorf("remove %q[%d]: delete: %w", list, index, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE list_store
		SET item_index = item_index - 1
		WHERE list_name = ? AND item_index > ?
	`, list, index); err != nil {
		return fmt.Errorf("remove %q[%d]: shift: %w", list, index, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("remove %q[%d]: commit: %w", list, index, err)
	}

	return nil
}

// ListNames returns every distinct list name, ordered for deterministic
// output. Returns an empty slice (not nil) when no lists exist.
func (s *Store) ListNames(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT list_name FROM list_store
		ORDER BY list_name
	`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("list names: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}

	// Return empty slice instead of nil
	if names == nil {
		names = []string{}
	}

	return names, nil
}

// IsList reports whether any entry exists under the given list name.
func (s *Store) IsList(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM list_store WHERE list_name = ?
	`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check list %q: %w", name, err)
	}
	return count > 0, nil
}
