package testfixtures

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/sqlite"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

// SQLiteHarness is a migrated SQLite store in a per-test temp directory.
// It is closed through tb.Cleanup.
type SQLiteHarness struct {
	Store persistence.Store
	Path  string

	tb testing.TB
}

// SQLiteOption adjusts the connection settings before the store is opened.
type SQLiteOption func(*migration.SQLiteConfig)

// WithSQLiteConfig lets a test change pool or pragma settings, for example to
// force a single connection while exercising busy retries.
func WithSQLiteConfig(fn func(*migration.SQLiteConfig)) SQLiteOption {
	return SQLiteOption(fn)
}

func NewSQLiteHarness(tb testing.TB, opts ...SQLiteOption) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "reservations.db")
	cfg := migration.DefaultSQLiteConfig(path)
	for _, opt := range opts {
		opt(&cfg)
	}

	storage, err := sqlite.OpenWithConfig(cfg, slog.New(slog.DiscardHandler))
	if err != nil {
		tb.Fatalf("open sqlite store %s: %v", path, err)
	}
	tb.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		tb.Fatalf("migrate sqlite store: %v", err)
	}

	return &SQLiteHarness{Store: storage, Path: path, tb: tb}
}

// SeedEquipment inserts equipment rows directly, bypassing services.
func (h *SQLiteHarness) SeedEquipment(items ...EquipmentFixture) {
	h.tb.Helper()
	for _, item := range items {
		if err := h.Store.CreateEquipment(context.Background(), item.Persistence()); err != nil {
			h.tb.Fatalf("seed equipment %s: %v", item.ID, err)
		}
	}
}

// SeedRooms inserts room rows directly. Referenced equipment must be seeded first.
func (h *SQLiteHarness) SeedRooms(rooms ...RoomFixture) {
	h.tb.Helper()
	for _, room := range rooms {
		if err := h.Store.CreateRoom(context.Background(), room.Persistence()); err != nil {
			h.tb.Fatalf("seed room %s: %v", room.ID, err)
		}
	}
}
