package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := Open(filepath.Join(t.TempDir(), "reservations.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = storage.Close() })

	if err := storage.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return storage
}

var baseTime = time.Date(2025, time.October, 21, 14, 0, 0, 0, time.UTC)

func seedRoom(t *testing.T, storage *Storage, id string, equipmentIDs ...string) persistence.Room {
	t.Helper()

	room := persistence.Room{
		ID:           id,
		Name:         "Room " + id,
		Capacity:     10,
		EquipmentIDs: equipmentIDs,
		CreatedAt:    baseTime,
		UpdatedAt:    baseTime,
	}
	if err := storage.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("CreateRoom(%s) failed: %v", id, err)
	}
	return room
}

func reservationAt(id, roomID string, start, end time.Time) persistence.Reservation {
	return persistence.Reservation{
		ID:        id,
		RoomID:    roomID,
		Requester: "Ana",
		Start:     start,
		End:       end,
		CreatedAt: baseTime,
	}
}
