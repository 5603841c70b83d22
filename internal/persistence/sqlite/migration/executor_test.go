package migration

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteExecutor_RoundTrip(t *testing.T) {
	db, err := Open(TestSQLiteConfig(filepath.Join(t.TempDir(), "exec.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	executor := NewSQLiteExecutor(db)

	if err := executor.InitializeVersionTable(ctx); err != nil {
		t.Fatalf("InitializeVersionTable failed: %v", err)
	}

	migration := Migration{
		Version:  "001",
		SQL:      "CREATE TABLE widgets (id INTEGER PRIMARY KEY);\nINSERT INTO widgets (id) VALUES (1);",
		Checksum: "abc",
	}
	if err := executor.ExecuteMigration(ctx, migration); err != nil {
		t.Fatalf("ExecuteMigration failed: %v", err)
	}
	if err := executor.RecordMigration(ctx, migration, 15*time.Millisecond); err != nil {
		t.Fatalf("RecordMigration failed: %v", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM widgets").Scan(&count); err != nil {
		t.Fatalf("query widgets: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 widget, got %d", count)
	}

	applied, err := executor.AppliedMigrations(ctx)
	if err != nil {
		t.Fatalf("AppliedMigrations failed: %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "001" || applied[0].Checksum != "abc" {
		t.Fatalf("unexpected applied migrations %+v", applied)
	}
}

func TestSQLiteExecutor_RollsBackFailedMigration(t *testing.T) {
	db, err := Open(TestSQLiteConfig(filepath.Join(t.TempDir(), "rollback.db")))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	executor := NewSQLiteExecutor(db)

	err = executor.ExecuteMigration(ctx, Migration{
		Version: "001",
		SQL:     "CREATE TABLE gadgets (id INTEGER);\nINSERT INTO missing_table VALUES (1);",
	})
	if err == nil {
		t.Fatal("expected failure")
	}

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'gadgets'").Scan(&name)
	if err == nil {
		t.Fatalf("expected gadgets table to be rolled back")
	}
}

func TestSQLiteConfig_Validate(t *testing.T) {
	t.Parallel()

	if err := (SQLiteConfig{}).Validate(); err == nil {
		t.Error("expected empty path to be rejected")
	}
	if err := (SQLiteConfig{Path: "x.db", JournalMode: "BOGUS"}).Validate(); err == nil {
		t.Error("expected invalid journal mode to be rejected")
	}
	if err := DefaultSQLiteConfig("x.db").Validate(); err != nil {
		t.Errorf("expected defaults to validate, got %v", err)
	}
}
