package satchel

import (
	"context"
	"fmt"
	"reflect"

	"github.com/carvelab/satchel/internal/codec"
)

// Set stores value under name. Sequence values (any slice or array except
// []byte) go to the list store, everything else to the scalar store; the
// same-named entry of the other kind is purged so a name never denotes
// both. Storing an empty sequence leaves the name absent.
//
// An unsupported value fails before either store is touched, so the
// previous entry survives a rejected write.
func (db *DB) Set(name string, value any) error {
	if name == "" {
		return ErrEmptyName
	}
	ctx := context.Background()

	if codec.IsSequence(value) {
		// ReplaceAll encodes before writing, so an unsupported element
		// aborts with the scalar still in place.
		if err := db.store.ReplaceAll(ctx, name, sequenceValues(value)); err != nil {
			return fmt.Errorf("set %q: %w", name, err)
		}
		return db.store.DeleteScalar(ctx, name)
	}

	// Same guarantee for scalars: prove the value encodes before purging
	// the list it may be replacing.
	if _, err := codec.Encode(value); err != nil {
		return fmt.Errorf("set %q: %w", name, err)
	}
	if err := db.store.DeleteAll(ctx, name); err != nil {
		return err
	}
	return db.store.PutScalar(ctx, name, value)
}

// Get returns the value stored under name: the materialized []any for a
// list, the decoded value for a scalar, ErrNotFound when absent.
func (db *DB) Get(name string) (any, error) {
	ctx := context.Background()

	isList, err := db.store.IsList(ctx, name)
	if err != nil {
		return nil, err
	}
	if isList {
		return db.store.Materialize(ctx, name)
	}
	return db.store.GetScalar(ctx, name)
}

// Delete removes name from whichever store holds it. Deleting an absent
// name fails with ErrNotFound.
func (db *DB) Delete(name string) error {
	ctx := context.Background()

	isList, err := db.store.IsList(ctx, name)
	if err != nil {
		return err
	}
	if isList {
		return db.store.DeleteAll(ctx, name)
	}

	exists, err := db.store.ScalarExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("delete %q: %w", name, ErrNotFound)
	}
	return db.store.DeleteScalar(ctx, name)
}

// Contains reports whether name denotes a stored scalar or list. Foreign
// tables do not count; they are visible through AllData only.
func (db *DB) Contains(name string) (bool, error) {
	ctx := context.Background()

	isList, err := db.store.IsList(ctx, name)
	if err != nil {
		return false, err
	}
	if isList {
		return true, nil
	}
	return db.store.ScalarExists(ctx, name)
}

// GetIndex returns element i of the list under name. A scalar name fails
// with ErrNotAList; an absent name has length 0, so any index is out of
// range.
func (db *DB) GetIndex(name string, i int) (any, error) {
	ctx := context.Background()

	if err := db.requireNotScalar(ctx, name, fmt.Sprintf("get index %q[%d]", name, i)); err != nil {
		return nil, err
	}
	return db.store.GetItem(ctx, name, i)
}

// SetIndex writes element i of the list under name. A previously absent or
// scalar name becomes a list (auto-vivification): intermediate positions
// are filled with nulls and a same-named scalar is purged.
func (db *DB) SetIndex(name string, i int, value any) error {
	if name == "" {
		return ErrEmptyName
	}
	ctx := context.Background()

	// Write first: an unsupported value or negative index aborts with the
	// scalar still in place.
	if err := db.store.SetItem(ctx, name, i, value); err != nil {
		return err
	}
	return db.store.DeleteScalar(ctx, name)
}

// Len returns the length of the list under name. Scalars have no length
// (ErrNotAList); absent names fail with ErrNotFound.
func (db *DB) Len(name string) (int, error) {
	ctx := context.Background()

	isList, err := db.store.IsList(ctx, name)
	if err != nil {
		return 0, err
	}
	if isList {
		return db.store.Length(ctx, name)
	}

	exists, err := db.store.ScalarExists(ctx, name)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, fmt.Errorf("length of %q: %w", name, ErrNotAList)
	}
	return 0, fmt.Errorf("length of %q: %w", name, ErrNotFound)
}

// Append adds value at the end of the list under name, creating the list at
// index 0 if absent. A same-named scalar is purged, as with SetIndex.
func (db *DB) Append(name string, value any) error {
	if name == "" {
		return ErrEmptyName
	}
	ctx := context.Background()

	if err := db.store.Append(ctx, name, value); err != nil {
		return err
	}
	return db.store.DeleteScalar(ctx, name)
}

// RemoveAt deletes element i of the list under name and shifts every later
// element down by one. A scalar name fails with ErrNotAList.
func (db *DB) RemoveAt(name string, i int) error {
	ctx := context.Background()

	if err := db.requireNotScalar(ctx, name, fmt.Sprintf("remove %q[%d]", name, i)); err != nil {
		return err
	}
	return db.store.RemoveAt(ctx, name, i)
}

// requireNotScalar rejects indexed access to names that hold a scalar.
// Absent names pass: their length is 0, so the index check downstream
// reports the range error.
func (db *DB) requireNotScalar(ctx context.Context, name, op string) error {
	isList, err := db.store.IsList(ctx, name)
	if err != nil {
		return err
	}
	if isList {
		return nil
	}

	exists, err := db.store.ScalarExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%s: %w", op, ErrNotAList)
	}
	return nil
}

// sequenceValues widens a slice or array to []any. Callers check
// codec.IsSequence first; this only converts.
func sequenceValues(v any) []any {
	if vs, ok := v.([]any); ok {
		return vs
	}
	rv := reflect.ValueOf(v)
	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values
}
