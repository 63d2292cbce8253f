package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

func TestEquipmentRepository_Lifecycle(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	item := persistence.Equipment{ID: "eq-1", Name: "Projector", Description: "HDMI", CreatedAt: baseTime, UpdatedAt: baseTime}
	if err := storage.CreateEquipment(ctx, item); err != nil {
		t.Fatalf("CreateEquipment failed: %v", err)
	}
	if err := storage.CreateEquipment(ctx, item); !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	item.Name = "Laser projector"
	item.UpdatedAt = baseTime.Add(time.Minute)
	if err := storage.UpdateEquipment(ctx, item); err != nil {
		t.Fatalf("UpdateEquipment failed: %v", err)
	}

	fetched, err := storage.GetEquipment(ctx, "eq-1")
	if err != nil {
		t.Fatalf("GetEquipment failed: %v", err)
	}
	if fetched.Name != "Laser projector" || fetched.Description != "HDMI" {
		t.Fatalf("unexpected equipment: %+v", fetched)
	}

	seedRoom(t, storage, "S01", "eq-1")

	count, err := storage.CountRoomsUsingEquipment(ctx, "eq-1")
	if err != nil || count != 1 {
		t.Fatalf("expected one room using eq-1, got %d, %v", count, err)
	}
	if err := storage.DeleteEquipment(ctx, "eq-1"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("expected ErrForeignKeyViolation for installed equipment, got %v", err)
	}

	if err := storage.DeleteRoom(ctx, "S01"); err != nil {
		t.Fatalf("DeleteRoom failed: %v", err)
	}
	if err := storage.DeleteEquipment(ctx, "eq-1"); err != nil {
		t.Fatalf("DeleteEquipment failed after room removal: %v", err)
	}
	if _, err := storage.GetEquipment(ctx, "eq-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	items, err := storage.ListEquipment(ctx)
	if err != nil || len(items) != 0 {
		t.Fatalf("expected no equipment, got %v, %v", items, err)
	}
}
