package satchel

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/natefinch/atomic"

	"github.com/carvelab/satchel/internal/store"
)

// Item pairs a name with its aggregated value, as yielded by Items.
type Item struct {
	Name  string
	Value any
}

// AllData returns one map covering the whole database: every scalar name
// mapped to its decoded value, every list name to its materialized []any,
// and every foreign table to its rows as []map[string]any with native
// column values. On a name collision the later source wins: scalars, then
// lists, then foreign tables.
//
// A foreign table carrying a managed table's name fails with
// ErrNameCollision. SQLite itself cannot produce that state, since the
// managed tables already occupy those names.
func (db *DB) AllData() (map[string]any, error) {
	ctx := context.Background()
	data := make(map[string]any)

	scalars, err := db.store.EnumerateScalars(ctx)
	if err != nil {
		return nil, err
	}
	for _, entry := range scalars {
		data[entry.Name] = entry.Value
	}

	listNames, err := db.store.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	for _, name := range listNames {
		values, err := db.store.Materialize(ctx, name)
		if err != nil {
			return nil, err
		}
		data[name] = values
	}

	tables, err := db.store.ForeignTables(ctx)
	if err != nil {
		return nil, err
	}
	scalarTable, listTable := store.ManagedTables()
	for _, table := range tables {
		if table == scalarTable || table == listTable {
			return nil, fmt.Errorf("foreign table %q: %w", table, ErrNameCollision)
		}
		_, rows, err := db.store.ReadForeignTable(ctx, table)
		if err != nil {
			return nil, err
		}
		data[table] = rows
	}
	return data, nil
}

// Keys returns every aggregated name (scalars, lists and foreign tables),
// sorted.
func (db *DB) Keys() ([]string, error) {
	data, err := db.AllData()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for name := range data {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys, nil
}

// Values returns every aggregated value, ordered by name.
func (db *DB) Values() ([]any, error) {
	data, err := db.AllData()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for name := range data {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	values := make([]any, len(keys))
	for i, name := range keys {
		values[i] = data[name]
	}
	return values, nil
}

// Items returns every aggregated name/value pair, ordered by name.
func (db *DB) Items() ([]Item, error) {
	data, err := db.AllData()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(data))
	for name := range data {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	items := make([]Item, len(keys))
	for i, name := range keys {
		items[i] = Item{Name: name, Value: data[name]}
	}
	return items, nil
}

// HTMLReport renders the whole database as a self-contained HTML document.
func (db *DB) HTMLReport() (string, error) {
	data, err := db.AllData()
	if err != nil {
		return "", err
	}
	return db.renderer.Render(db.path, data), nil
}

// WriteHTMLReport renders the database and writes the document to path
// atomically, so a crash mid-write cannot leave a torn report behind.
func (db *DB) WriteHTMLReport(path string) error {
	doc, err := db.HTMLReport()
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(path, strings.NewReader(doc)); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}
