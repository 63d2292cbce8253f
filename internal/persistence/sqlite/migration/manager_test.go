package migration

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func openTestDB(t *testing.T) *Executor {
	t.Helper()

	cfg := DefaultSQLiteConfig(filepath.Join(t.TempDir(), "migrate.db"))
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewExecutor(db)
}

func TestManager_Run(t *testing.T) {
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT PRIMARY KEY);")},
		"002_guard.sql": {Data: []byte(`
CREATE TABLE audit (id TEXT);
CREATE TRIGGER rooms_audit AFTER INSERT ON rooms
BEGIN
	INSERT INTO audit (id) VALUES (NEW.id);
END;`)},
	}

	executor := openTestDB(t)
	manager := NewManager(NewScanner(fsys, "."), executor, nil)

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	status, err := manager.Status(ctx)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.CurrentVersion != "002" {
		t.Fatalf("expected current version 002, got %q", status.CurrentVersion)
	}
	if len(status.PendingMigrations) != 0 {
		t.Fatalf("expected no pending migrations, got %d", len(status.PendingMigrations))
	}

	if _, err := executor.db.ExecContext(ctx, `INSERT INTO rooms (id) VALUES ('S01')`); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	var audited int
	if err := executor.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM audit`).Scan(&audited); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if audited != 1 {
		t.Fatalf("expected trigger to fire once, got %d", audited)
	}

	if err := manager.Run(ctx); err != nil {
		t.Fatalf("second Run should be a no-op, got %v", err)
	}
}

func TestManager_FailedMigrationIsNotRecorded(t *testing.T) {
	ctx := context.Background()

	fsys := fstest.MapFS{
		"001_ok.sql":     {Data: []byte("CREATE TABLE ok (id TEXT);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE broken (id TEXT); INSERT INTO nowhere VALUES (1);")},
	}

	executor := openTestDB(t)
	manager := NewManager(NewScanner(fsys, "."), executor, nil)

	err := manager.Run(ctx)
	if !errors.Is(err, ErrMigrationFailed) {
		t.Fatalf("expected ErrMigrationFailed, got %v", err)
	}

	applied, err := executor.Applied(ctx)
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if len(applied) != 1 || applied[0].Version != "001" {
		t.Fatalf("expected only 001 applied, got %+v", applied)
	}

	var count int
	if err := executor.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'broken'`).Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected failed migration to be rolled back")
	}
}

func TestManager_DetectsModifiedMigration(t *testing.T) {
	ctx := context.Background()
	executor := openTestDB(t)

	original := fstest.MapFS{"001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT);")}}
	if err := NewManager(NewScanner(original, "."), executor, nil).Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	modified := fstest.MapFS{"001_rooms.sql": {Data: []byte("CREATE TABLE rooms (id TEXT, name TEXT);")}}
	err := NewManager(NewScanner(modified, "."), executor, nil).Run(ctx)
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("expected ErrChecksumMismatch, got %v", err)
	}
}

func TestSQLiteConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SQLiteConfig)
		ok     bool
	}{
		{name: "defaults", mutate: func(*SQLiteConfig) {}, ok: true},
		{name: "empty dsn", mutate: func(c *SQLiteConfig) { c.DSN = " " }},
		{name: "bad journal", mutate: func(c *SQLiteConfig) { c.JournalMode = "SOMETIMES" }},
		{name: "bad synchronous", mutate: func(c *SQLiteConfig) { c.Synchronous = "MAYBE" }},
		{name: "bad tx lock", mutate: func(c *SQLiteConfig) { c.TxLock = "eventually" }},
		{name: "negative pool", mutate: func(c *SQLiteConfig) { c.MaxOpenConns = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultSQLiteConfig("test.db")
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
