package testfixtures

import (
	"context"
	"errors"
	"testing"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence/sqlite/migration"
)

func TestSQLiteHarnessSeedAndBook(t *testing.T) {
	harness := NewSQLiteHarness(t, WithSQLiteConfig(func(cfg *migration.SQLiteConfig) {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}))
	if harness.Path == "" {
		t.Fatalf("expected database path to be recorded")
	}

	projector := NewEquipmentFixture(WithEquipmentID("projector"), WithEquipmentName("Projector"))
	harness.SeedEquipment(projector)
	harness.SeedRooms(NewRoomFixture(WithRoomID("S02"), WithRoomEquipment(projector.ID)))

	services := NewServiceFactory().NewServices(harness.Store, nil)
	ctx := context.Background()

	if _, err := services.Reservations.Book(ctx, "S02", "Ana", At(9, 0), At(10, 0)); err != nil {
		t.Fatalf("Book returned error: %v", err)
	}
	if _, err := services.Reservations.Book(ctx, "S02", "Bruno", At(9, 59), At(10, 30)); !errors.Is(err, application.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}

	err := services.Equipment.DeleteEquipment(ctx, application.Principal{IsAdmin: true}, projector.ID)
	if !errors.Is(err, application.ErrEquipmentInUse) {
		t.Fatalf("expected ErrEquipmentInUse, got %v", err)
	}
}
