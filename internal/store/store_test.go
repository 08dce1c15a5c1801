package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify file was created
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_OpensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Create database
	s1, err := Open(path)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	s1.Close()

	// Reopen database
	s2, err := Open(path)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer s2.Close()

	// Verify we can query it
	var count int
	err = s2.db.QueryRow("SELECT COUNT(*) FROM kv_store").Scan(&count)
	if err != nil {
		t.Errorf("query failed: %v", err)
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Open multiple times
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	// Final open should work
	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	// Verify schema is intact
	tables := []string{"kv_store", "list_store"}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_PreservesForeignTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Create a database with a foreign table, the way another tool would
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE products (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create foreign table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO products (id, name) VALUES (1, 'Widget')`); err != nil {
		t.Fatalf("failed to insert foreign row: %v", err)
	}
	db.Close()

	// Open through the store - foreign data must survive
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	var name string
	if err := s.db.QueryRow("SELECT name FROM products WHERE id = 1").Scan(&name); err != nil {
		t.Fatalf("foreign row lost after Open(): %v", err)
	}
	if name != "Widget" {
		t.Errorf("foreign row = %q, want %q", name, "Widget")
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	// Try to open in non-existent directory
	path := "/nonexistent/dir/test.db"

	_, err := Open(path)
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	err := s.Close()
	if err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestClose_MultipleCalls(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}

	// First close should succeed
	if err := s.Close(); err != nil {
		t.Errorf("first Close() failed: %v", err)
	}

	// Second close should not panic (though may error)
	_ = s.Close()
}

// Pragma tests

func TestPragma_JournalMode(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
}

func TestPragma_Synchronous(t *testing.T) {
	s := createTestStore(t)

	// NORMAL = 1
	if err := s.verifyPragma("synchronous", "1"); err != nil {
		t.Error(err)
	}
}

func TestPragma_BusyTimeout(t *testing.T) {
	s := createTestStore(t)

	if err := s.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestPragma_ForeignKeys(t *testing.T) {
	s := createTestStore(t)

	// ON = 1
	if err := s.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
}

// Schema table tests. The managed layout is a cross-tool contract: these
// tests pin the exact column set.

func TestSchema_ScalarTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "kv_store")

	expected := []string{"key", "value"}
	if len(columns) != len(expected) {
		t.Errorf("kv_store has columns %v, want exactly %v", columns, expected)
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("kv_store table missing column %q", col)
		}
	}
}

func TestSchema_ListTable(t *testing.T) {
	s := createTestStore(t)

	columns := getTableColumns(t, s.db, "list_store")

	expected := []string{"id", "list_name", "item_index", "item_value"}
	if len(columns) != len(expected) {
		t.Errorf("list_store has columns %v, want exactly %v", columns, expected)
	}
	for _, col := range expected {
		if !contains(columns, col) {
			t.Errorf("list_store table missing column %q", col)
		}
	}
}

func TestSchema_ListTableAutoincrement(t *testing.T) {
	s := createTestStore(t)

	// AUTOINCREMENT registers the table in sqlite_sequence once a row exists
	insertRawListRow(t, s, "seq-check", 0, `"x"`)

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_sequence WHERE name = 'list_store'",
	).Scan(&count)
	if err != nil {
		t.Fatalf("sqlite_sequence query failed: %v", err)
	}
	if count != 1 {
		t.Error("list_store.id is not AUTOINCREMENT")
	}
}

func TestSchema_ListTableLookupIndex(t *testing.T) {
	s := createTestStore(t)

	indexes := getTableIndexes(t, s.db, "list_store")

	if !contains(indexes, "idx_list_store_name_index") {
		t.Errorf("list_store missing lookup index, indexes: %v", indexes)
	}
}

func TestSchema_NoUniqueConstraintOnListPosition(t *testing.T) {
	s := createTestStore(t)

	// Two physical rows for the same (list_name, item_index) must be
	// accepted: logical uniqueness belongs to the write path, and foreign
	// writers cannot be stopped from doing this.
	insertRawListRow(t, s, "dup", 0, `"first"`)
	insertRawListRow(t, s, "dup", 0, `"second"`)

	var count int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM list_store WHERE list_name = 'dup' AND item_index = 0",
	).Scan(&count)
	if err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("duplicate position rows = %d, want 2", count)
	}
}

// Migration tests

func TestMigration_SchemaVersion(t *testing.T) {
	s := createTestStore(t)

	// Verify user_version is set to currentSchemaVersion
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}

	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d", version, currentSchemaVersion)
	}
}

func TestMigration_IdempotentUpgrade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	// Open and close multiple times - migrations should be idempotent
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}

		var version int
		err = s.db.QueryRow("PRAGMA user_version").Scan(&version)
		if err != nil {
			t.Fatalf("failed to get user_version: %v", err)
		}

		if version != currentSchemaVersion {
			t.Errorf("iteration %d: user_version = %d, want %d", i, version, currentSchemaVersion)
		}

		s.Close()
	}
}

func TestMigration_UpgradeFromV0(t *testing.T) {
	// Simulate a database created by another tool against the same layout:
	// managed tables present, no lookup index, version 0.
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	stmts := []string{
		"CREATE TABLE kv_store (key TEXT PRIMARY KEY, value TEXT)",
		`CREATE TABLE list_store (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			list_name TEXT NOT NULL,
			item_index INTEGER NOT NULL,
			item_value TEXT
		)`,
		"PRAGMA user_version = 0",
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to prepare v0 database: %v", err)
		}
	}
	db.Close()

	// Now open through our normal path - should trigger migration
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	// Verify version was upgraded
	var version int
	err = s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		t.Fatalf("failed to get user_version: %v", err)
	}

	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, want %d after migration", version, currentSchemaVersion)
	}

	// Verify the lookup index was added
	indexes := getTableIndexes(t, s.db, "list_store")
	if !contains(indexes, "idx_list_store_name_index") {
		t.Errorf("expected lookup index after migration, got indexes: %v", indexes)
	}
}

// Helper functions

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
