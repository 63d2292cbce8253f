package persistence

import (
	"context"
	"time"
)

// RoomRepository exposes CRUD operations for rooms. Listings return rooms in
// creation order and preserve each room's equipment order.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// EquipmentRepository exposes CRUD operations for equipment.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, equipment Equipment) error
	UpdateEquipment(ctx context.Context, equipment Equipment) error
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	ListEquipment(ctx context.Context) ([]Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
	CountRoomsUsingEquipment(ctx context.Context, equipmentID string) (int, error)
}

// ReservationRepository stores accepted reservations.
//
// CreateReservation must reject a reservation that overlaps an existing one for
// the same room with ErrOverlap, and one that references an unknown room with
// ErrForeignKeyViolation. Listings are in creation order.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
	ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// Store bundles every repository together with lifecycle hooks.
type Store interface {
	RoomRepository
	EquipmentRepository
	ReservationRepository
	Ping(ctx context.Context) error
	Close() error
}
