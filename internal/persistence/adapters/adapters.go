// Package adapters bridges persistence repositories to the repository
// interfaces consumed by the application services.
package adapters

import (
	"context"
	"slices"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

// Repositories groups the adapted repositories for one store.
type Repositories struct {
	Rooms        *RoomRepository
	Equipment    *EquipmentRepository
	Reservations *ReservationRepository
}

// ForStore adapts every repository exposed by store.
func ForStore(store persistence.Store) Repositories {
	return Repositories{
		Rooms:        NewRoomRepository(store),
		Equipment:    NewEquipmentRepository(store),
		Reservations: NewReservationRepository(store),
	}
}

// RoomRepository implements application.RoomRepository.
type RoomRepository struct {
	repo persistence.RoomRepository
}

var _ application.RoomRepository = (*RoomRepository)(nil)

func NewRoomRepository(repo persistence.RoomRepository) *RoomRepository {
	return &RoomRepository{repo: repo}
}

func (a *RoomRepository) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *RoomRepository) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *RoomRepository) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *RoomRepository) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

// EquipmentRepository implements application.EquipmentRepository.
type EquipmentRepository struct {
	repo persistence.EquipmentRepository
}

var _ application.EquipmentRepository = (*EquipmentRepository)(nil)

func NewEquipmentRepository(repo persistence.EquipmentRepository) *EquipmentRepository {
	return &EquipmentRepository{repo: repo}
}

func (a *EquipmentRepository) CreateEquipment(ctx context.Context, item application.Equipment) (application.Equipment, error) {
	if err := a.repo.CreateEquipment(ctx, toPersistenceEquipment(item)); err != nil {
		return application.Equipment{}, err
	}
	return a.GetEquipment(ctx, item.ID)
}

func (a *EquipmentRepository) GetEquipment(ctx context.Context, id string) (application.Equipment, error) {
	stored, err := a.repo.GetEquipment(ctx, id)
	if err != nil {
		return application.Equipment{}, err
	}
	return toApplicationEquipment(stored), nil
}

func (a *EquipmentRepository) UpdateEquipment(ctx context.Context, item application.Equipment) (application.Equipment, error) {
	if err := a.repo.UpdateEquipment(ctx, toPersistenceEquipment(item)); err != nil {
		return application.Equipment{}, err
	}
	return a.GetEquipment(ctx, item.ID)
}

func (a *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	return a.repo.DeleteEquipment(ctx, id)
}

func (a *EquipmentRepository) ListEquipment(ctx context.Context) ([]application.Equipment, error) {
	models, err := a.repo.ListEquipment(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]application.Equipment, 0, len(models))
	for _, model := range models {
		items = append(items, toApplicationEquipment(model))
	}
	return items, nil
}

func (a *EquipmentRepository) CountRoomsUsingEquipment(ctx context.Context, id string) (int, error) {
	return a.repo.CountRoomsUsingEquipment(ctx, id)
}

// ReservationRepository implements application.ReservationRepository.
type ReservationRepository struct {
	repo persistence.ReservationRepository
}

var _ application.ReservationRepository = (*ReservationRepository)(nil)

func NewReservationRepository(repo persistence.ReservationRepository) *ReservationRepository {
	return &ReservationRepository{repo: repo}
}

// CreateReservation returns the reservation as admitted; stored reservations
// never change, so it is not read back.
func (a *ReservationRepository) CreateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.CreateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return reservation, nil
}

func (a *ReservationRepository) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	return toApplicationReservation(stored), nil
}

func (a *ReservationRepository) ListReservations(ctx context.Context) ([]application.Reservation, error) {
	return convertReservations(a.repo.ListReservations(ctx))
}

func (a *ReservationRepository) ListReservationsForRoom(ctx context.Context, roomID string) ([]application.Reservation, error) {
	return convertReservations(a.repo.ListReservationsForRoom(ctx, roomID))
}

func (a *ReservationRepository) ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]application.Reservation, error) {
	return convertReservations(a.repo.ListOverlappingReservations(ctx, roomID, start, end))
}

func (a *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

func convertReservations(models []persistence.Reservation, err error) ([]application.Reservation, error) {
	if err != nil {
		return nil, err
	}
	out := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		out = append(out, toApplicationReservation(model))
	}
	return out, nil
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:           model.ID,
		Name:         model.Name,
		Capacity:     model.Capacity,
		EquipmentIDs: slices.Clone(model.EquipmentIDs),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:           room.ID,
		Name:         room.Name,
		Capacity:     room.Capacity,
		EquipmentIDs: slices.Clone(room.EquipmentIDs),
		CreatedAt:    room.CreatedAt,
		UpdatedAt:    room.UpdatedAt,
	}
}

func toApplicationEquipment(model persistence.Equipment) application.Equipment {
	return application.Equipment{
		ID:          model.ID,
		Name:        model.Name,
		Description: model.Description,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceEquipment(item application.Equipment) persistence.Equipment {
	return persistence.Equipment{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        model.ID,
		RoomID:    model.RoomID,
		Requester: model.Requester,
		Start:     model.Start,
		End:       model.End,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		Requester: reservation.Requester,
		Start:     reservation.Start,
		End:       reservation.End,
		CreatedAt: reservation.CreatedAt,
	}
}
