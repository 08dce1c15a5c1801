package store

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Managed table identifiers. Fixed: the layout is a cross-tool contract.
const (
	ScalarTableName = "kv_store"
	ListTableName   = "list_store"
)

// ManagedTables returns the two fixed identifiers owned by this store.
func ManagedTables() (scalarTable, listTable string) {
	return ScalarTableName, ListTableName
}

// ForeignTables returns every user table in the database that is not one of
// the managed two. SQLite's own bookkeeping tables (sqlite_sequence and the
// rest of the sqlite_* family) are excluded. Ordered by name.
func (s *Store) ForeignTables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT IN (?, ?)
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`, ScalarTableName, ListTableName)
	if err != nil {
		return nil, fmt.Errorf("foreign tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("foreign tables: %w", err)
		}
		tables = append(tables, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("foreign tables: %w", err)
	}

	// Return empty slice instead of nil
	if tables == nil {
		tables = []string{}
	}

	return tables, nil
}

// ReadForeignTable returns the column names (declaration order) and rows of
// a table this store does not manage. One map per row, keyed by column
// name. Values come back as stored: int64, float64, string, []byte or nil -
// never JSON-decoded, since foreign writers did not use the codec. Text is
// converted from the driver's raw bytes; genuinely binary values stay
// []byte.
func (s *Store) ReadForeignTable(ctx context.Context, table string) ([]string, []map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s", quoteIdent(table)))
	if err != nil {
		return nil, nil, fmt.Errorf("read table %q: %w", table, err)
	}
	defer rows.Close()

	// SELECT * yields columns in declaration order
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read table %q: columns: %w", table, err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("read table %q: scan: %w", table, err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeColumnValue(values[i])
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("read table %q: %w", table, err)
	}

	// Return empty slice instead of nil
	if result == nil {
		result = []map[string]any{}
	}

	return columns, result, nil
}

// normalizeColumnValue maps the driver's raw output to the loose value set
// {nil, int64, float64, string, []byte}. The sqlite3 driver hands TEXT
// columns back as raw bytes; valid UTF-8 becomes string, anything else is
// treated as a blob.
func normalizeColumnValue(v any) any {
	if b, ok := v.([]byte); ok {
		if utf8.Valid(b) {
			return string(b)
		}
	}
	return v
}

// quoteIdent escapes a table identifier for interpolation. Names come out
// of sqlite_master, but quoting keeps arbitrary identifiers (spaces,
// quotes, keywords) safe.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
