// Package memory provides an in-process implementation of every persistence
// repository. It enforces the same write constraints as the SQL stores so it can
// stand in for them in tests and single-node deployments.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// Store keeps records in maps guarded by a single RWMutex. Insertion order is
// tracked separately so listings follow creation order.
type Store struct {
	mu sync.RWMutex

	rooms     map[string]persistence.Room
	roomOrder []string

	equipment      map[string]persistence.Equipment
	equipmentOrder []string

	reservations     map[string]persistence.Reservation
	reservationOrder []string
}

var _ persistence.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		rooms:        make(map[string]persistence.Room),
		equipment:    make(map[string]persistence.Equipment),
		reservations: make(map[string]persistence.Reservation),
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// --- RoomRepository implementation ---

// CreateRoom stores a new room.
func (s *Store) CreateRoom(ctx context.Context, room persistence.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[room.ID]; ok {
		return fmt.Errorf("memory: room %s: %w", room.ID, persistence.ErrDuplicate)
	}
	if err := s.checkEquipmentLocked(room.EquipmentIDs); err != nil {
		return err
	}

	s.rooms[room.ID] = cloneRoom(room)
	s.roomOrder = append(s.roomOrder, room.ID)
	return nil
}

// UpdateRoom replaces an existing room.
func (s *Store) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[room.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if err := s.checkEquipmentLocked(room.EquipmentIDs); err != nil {
		return err
	}

	room.CreatedAt = existing.CreatedAt
	s.rooms[room.ID] = cloneRoom(room)
	return nil
}

// GetRoom retrieves a room by ID.
func (s *Store) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Room{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	room, ok := s.rooms[id]
	if !ok {
		return persistence.Room{}, persistence.ErrNotFound
	}
	return cloneRoom(room), nil
}

// ListRooms returns all rooms in creation order.
func (s *Store) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]persistence.Room, 0, len(s.roomOrder))
	for _, id := range s.roomOrder {
		rooms = append(rooms, cloneRoom(s.rooms[id]))
	}
	return rooms, nil
}

// DeleteRoom removes a room. Rooms referenced by reservations cannot be removed.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, reservation := range s.reservations {
		if reservation.RoomID == id {
			return fmt.Errorf("memory: room %s has reservations: %w", id, persistence.ErrForeignKeyViolation)
		}
	}

	delete(s.rooms, id)
	s.roomOrder = removeString(s.roomOrder, id)
	return nil
}

func (s *Store) checkEquipmentLocked(ids []string) error {
	for _, id := range ids {
		if _, ok := s.equipment[id]; !ok {
			return fmt.Errorf("memory: equipment %s: %w", id, persistence.ErrForeignKeyViolation)
		}
	}
	return nil
}

// --- EquipmentRepository implementation ---

// CreateEquipment stores a new equipment item.
func (s *Store) CreateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.equipment[equipment.ID]; ok {
		return fmt.Errorf("memory: equipment %s: %w", equipment.ID, persistence.ErrDuplicate)
	}
	s.equipment[equipment.ID] = equipment
	s.equipmentOrder = append(s.equipmentOrder, equipment.ID)
	return nil
}

// UpdateEquipment replaces an existing equipment item.
func (s *Store) UpdateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.equipment[equipment.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	equipment.CreatedAt = existing.CreatedAt
	s.equipment[equipment.ID] = equipment
	return nil
}

// GetEquipment retrieves an equipment item by ID.
func (s *Store) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Equipment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	equipment, ok := s.equipment[id]
	if !ok {
		return persistence.Equipment{}, persistence.ErrNotFound
	}
	return equipment, nil
}

// ListEquipment returns all equipment in creation order.
func (s *Store) ListEquipment(ctx context.Context) ([]persistence.Equipment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]persistence.Equipment, 0, len(s.equipmentOrder))
	for _, id := range s.equipmentOrder {
		items = append(items, s.equipment[id])
	}
	return items, nil
}

// DeleteEquipment removes an equipment item that no room references.
func (s *Store) DeleteEquipment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.equipment[id]; !ok {
		return persistence.ErrNotFound
	}
	if s.countRoomsUsingLocked(id) > 0 {
		return fmt.Errorf("memory: equipment %s is installed: %w", id, persistence.ErrForeignKeyViolation)
	}

	delete(s.equipment, id)
	s.equipmentOrder = removeString(s.equipmentOrder, id)
	return nil
}

// CountRoomsUsingEquipment reports how many rooms list the equipment item.
func (s *Store) CountRoomsUsingEquipment(ctx context.Context, equipmentID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countRoomsUsingLocked(equipmentID), nil
}

func (s *Store) countRoomsUsingLocked(equipmentID string) int {
	count := 0
	for _, room := range s.rooms {
		if slices.Contains(room.EquipmentIDs, equipmentID) {
			count++
		}
	}
	return count
}

// --- ReservationRepository implementation ---

// CreateReservation stores a reservation. It fails with ErrOverlap when the
// interval intersects another reservation of the same room.
func (s *Store) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !reservation.End.After(reservation.Start) {
		return fmt.Errorf("memory: reservation %s ends before it starts: %w", reservation.ID, persistence.ErrConstraintViolation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; ok {
		return fmt.Errorf("memory: reservation %s: %w", reservation.ID, persistence.ErrDuplicate)
	}
	if _, ok := s.rooms[reservation.RoomID]; !ok {
		return fmt.Errorf("memory: room %s: %w", reservation.RoomID, persistence.ErrForeignKeyViolation)
	}
	if len(s.overlappingLocked(reservation.RoomID, reservation.Start, reservation.End)) > 0 {
		return persistence.ErrOverlap
	}

	s.reservations[reservation.ID] = reservation
	s.reservationOrder = append(s.reservationOrder, reservation.ID)
	return nil
}

// GetReservation retrieves a reservation by ID.
func (s *Store) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return persistence.Reservation{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return persistence.Reservation{}, persistence.ErrNotFound
	}
	return reservation, nil
}

// ListReservations returns every reservation in creation order.
func (s *Store) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Reservation, 0, len(s.reservationOrder))
	for _, id := range s.reservationOrder {
		out = append(out, s.reservations[id])
	}
	return out, nil
}

// ListReservationsForRoom returns the reservations of one room in creation order.
func (s *Store) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Reservation, 0)
	for _, id := range s.reservationOrder {
		if reservation := s.reservations[id]; reservation.RoomID == roomID {
			out = append(out, reservation)
		}
	}
	return out, nil
}

// ListOverlappingReservations returns reservations of roomID that intersect [start, end).
func (s *Store) ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Reservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlappingLocked(roomID, start, end), nil
}

func (s *Store) overlappingLocked(roomID string, start, end time.Time) []persistence.Reservation {
	bookings := make([]scheduler.Booking, 0, len(s.reservationOrder))
	for _, id := range s.reservationOrder {
		r := s.reservations[id]
		bookings = append(bookings, scheduler.Booking{
			ID:       r.ID,
			RoomID:   r.RoomID,
			Interval: scheduler.Interval{Start: r.Start, End: r.End},
		})
	}

	matches := scheduler.Filter(bookings, roomID, scheduler.Interval{Start: start, End: end})
	out := make([]persistence.Reservation, 0, len(matches))
	for _, match := range matches {
		out = append(out, s.reservations[match.ID])
	}
	return out
}

// DeleteReservation removes a reservation by ID.
func (s *Store) DeleteReservation(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.reservations, id)
	s.reservationOrder = removeString(s.reservationOrder, id)
	return nil
}

func cloneRoom(room persistence.Room) persistence.Room {
	room.EquipmentIDs = slices.Clone(room.EquipmentIDs)
	return room
}

func removeString(values []string, target string) []string {
	return slices.DeleteFunc(values, func(v string) bool { return v == target })
}
