package schema

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// A single connection keeps every query on the same in-memory database.
	db.SetMaxOpenConns(1)
	return db
}

func TestApply_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Apply(db); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	tables := []string{"ZJOURNAL", "ZENTRY", "ZLOCATION", "ZWEATHER", "ZTAG", "Z_12TAGS", "ZATTACHMENT"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestApply_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Apply(db); err != nil {
		t.Fatalf("first Apply() failed: %v", err)
	}
	if err := Apply(db); err != nil {
		t.Errorf("second Apply() failed: %v (should be idempotent)", err)
	}
}

func TestVersion(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	v, err := Version(db)
	if err != nil {
		t.Fatalf("Version() on fresh database error = %v", err)
	}
	if v != 0 {
		t.Errorf("Version() on fresh database = %d, want 0", v)
	}

	if err := Apply(db); err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	v, err = Version(db)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if v != 1 {
		t.Errorf("Version() = %d, want 1", v)
	}
}
