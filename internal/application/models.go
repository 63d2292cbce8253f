package application

import (
	"time"

	"github.com/example/room-reservations/internal/scheduler"
)

// Principal represents the caller of an administrative operation.
type Principal struct {
	Subject string
	IsAdmin bool
}

// Equipment represents an item that can be installed in rooms.
type Equipment struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Room represents a reservable meeting room. Equipment keeps the order in
// which it was assigned.
type Room struct {
	ID           string
	Name         string
	Capacity     int
	EquipmentIDs []string
	Equipment    []Equipment
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Reservation is an accepted booking of a room over the half-open interval
// [Start, End). Reservations are immutable once admitted.
type Reservation struct {
	ID        string
	RoomID    string
	Requester string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// Interval returns the reserved time range.
func (r Reservation) Interval() scheduler.Interval {
	return scheduler.Interval{Start: r.Start, End: r.End}
}

func (r Reservation) booking() scheduler.Booking {
	return scheduler.Booking{ID: r.ID, RoomID: r.RoomID, Interval: r.Interval()}
}

// RoomInput captures caller provided room fields.
type RoomInput struct {
	ID           string
	Name         string
	Capacity     int
	EquipmentIDs []string
}

// CreateRoomParams wraps the data required to create a room.
type CreateRoomParams struct {
	Principal Principal
	Input     RoomInput
}

// UpdateRoomParams wraps the data required to update a room. Input.ID is ignored.
type UpdateRoomParams struct {
	Principal Principal
	RoomID    string
	Input     RoomInput
}

// EquipmentInput captures caller provided equipment fields.
type EquipmentInput struct {
	Name        string
	Description string
}

// CreateEquipmentParams wraps the data required to create equipment.
type CreateEquipmentParams struct {
	Principal Principal
	Input     EquipmentInput
}

// UpdateEquipmentParams wraps the data required to update equipment.
type UpdateEquipmentParams struct {
	Principal   Principal
	EquipmentID string
	Input       EquipmentInput
}
