package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// RoomRepository captures the persistence operations needed by the service.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) (Room, error)
	GetRoom(ctx context.Context, id string) (Room, error)
	UpdateRoom(ctx context.Context, room Room) (Room, error)
	DeleteRoom(ctx context.Context, id string) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// ReservationLister exposes the reservations held by a room.
type ReservationLister interface {
	ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
}

// RoomService is the room registry. Reads are open to every caller; creating,
// updating, and deleting rooms requires an administrator.
type RoomService struct {
	rooms        RoomRepository
	equipment    EquipmentRepository
	reservations ReservationLister
	now          func() time.Time
	logger       *slog.Logger
	cache        *roomCache
}

// RoomServiceOption customises a RoomService.
type RoomServiceOption func(*RoomService)

// WithRoomCache enables an expiring LRU for room lookups. A non-positive ttl
// leaves caching disabled.
func WithRoomCache(ttl time.Duration, size int) RoomServiceOption {
	return func(s *RoomService) {
		s.cache = newRoomCache(ttl, size)
	}
}

// NewRoomService constructs a room service with the provided dependencies.
func NewRoomService(rooms RoomRepository, equipment EquipmentRepository, now func() time.Time) *RoomService {
	return NewRoomServiceWithLogger(rooms, equipment, now, nil)
}

// NewRoomServiceWithLogger constructs a room service with a specified logger.
func NewRoomServiceWithLogger(rooms RoomRepository, equipment EquipmentRepository, now func() time.Time, logger *slog.Logger, opts ...RoomServiceOption) *RoomService {
	if now == nil {
		now = time.Now
	}
	s := &RoomService{rooms: rooms, equipment: equipment, now: now, logger: defaultLogger(logger)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UseReservations wires the reservation lister consulted before deleting a
// room. It is set after construction because the reservation service itself
// depends on the room registry.
func (s *RoomService) UseReservations(reservations ReservationLister) {
	s.reservations = reservations
}

func (s *RoomService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RoomService", operation, attrs...)
}

// GetRoom returns the room with the given ID or ErrRoomNotFound.
func (s *RoomService) GetRoom(ctx context.Context, id string) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "GetRoom", "room_id", id)
	defer func() {
		if err != nil && !errors.Is(err, ErrRoomNotFound) {
			logger.ErrorContext(ctx, "failed to get room", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if cached, ok := s.cache.Get(id); ok {
		logger.DebugContext(ctx, "room served from cache")
		return cached, nil
	}
	if s.rooms == nil {
		err = ErrRoomNotFound
		return
	}

	room, err = s.rooms.GetRoom(ctx, id)
	if err != nil {
		err = mapRoomLookupError(err)
		return
	}

	if err = s.resolveEquipment(ctx, []*Room{&room}); err != nil {
		return
	}

	s.cache.Store(room)
	return
}

// ListRooms returns every room in creation order.
func (s *RoomService) ListRooms(ctx context.Context) (rooms []Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if s.rooms == nil {
		return []Room{}, nil
	}

	logger := s.loggerWith(ctx, "ListRooms")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list rooms", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(rooms)).DebugContext(ctx, "rooms listed")
	}()

	var raw []Room
	raw, err = s.rooms.ListRooms(ctx)
	if err != nil {
		err = wrapStorageError(err)
		return
	}

	rooms = make([]Room, len(raw))
	copy(rooms, raw)

	ptrs := make([]*Room, len(rooms))
	for i := range rooms {
		ptrs[i] = &rooms[i]
	}
	err = s.resolveEquipment(ctx, ptrs)
	return
}

// CreateRoom validates input and persists a new room for administrators.
func (s *RoomService) CreateRoom(ctx context.Context, params CreateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateRoom",
		"principal", params.Principal.Subject,
		"room_id", params.Input.ID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room created")
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeRoomInput(params.Input)
	vErr := validateFields(roomFields{ID: input.ID, Name: input.Name, Capacity: input.Capacity})
	vErr.merge(s.validateEquipmentIDs(ctx, input.EquipmentIDs))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	room = Room{
		ID:           input.ID,
		Name:         input.Name,
		Capacity:     input.Capacity,
		EquipmentIDs: input.EquipmentIDs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if s.rooms == nil {
		return
	}

	room, err = s.rooms.CreateRoom(ctx, room)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	err = s.resolveEquipment(ctx, []*Room{&room})
	return
}

// UpdateRoom validates input and updates an existing room for administrators.
func (s *RoomService) UpdateRoom(ctx context.Context, params UpdateRoomParams) (room Room, err error) {
	if s == nil {
		err = fmt.Errorf("RoomService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.rooms == nil {
		err = fmt.Errorf("room repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateRoom",
		"principal", params.Principal.Subject,
		"room_id", params.RoomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room updated")
	}()

	var existing Room
	existing, err = s.rooms.GetRoom(ctx, params.RoomID)
	if err != nil {
		err = mapRoomLookupError(err)
		return
	}

	input := normalizeRoomInput(params.Input)
	vErr := validateFields(roomFields{ID: existing.ID, Name: input.Name, Capacity: input.Capacity})
	vErr.merge(s.validateEquipmentIDs(ctx, input.EquipmentIDs))
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = input.Name
	updated.Capacity = input.Capacity
	updated.EquipmentIDs = input.EquipmentIDs
	updated.Equipment = nil
	updated.UpdatedAt = s.now()

	s.cache.Invalidate(existing.ID)
	room, err = s.rooms.UpdateRoom(ctx, updated)
	if err != nil {
		err = mapRoomRepoError(err)
		return
	}

	err = s.resolveEquipment(ctx, []*Room{&room})
	return
}

// DeleteRoom removes a room that holds no reservations.
func (s *RoomService) DeleteRoom(ctx context.Context, principal Principal, roomID string) (err error) {
	if s == nil {
		return fmt.Errorf("RoomService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.rooms == nil {
		return fmt.Errorf("room repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteRoom",
		"principal", principal.Subject,
		"room_id", roomID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete room", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "room deleted")
	}()

	if s.reservations != nil {
		var held []Reservation
		held, err = s.reservations.ListReservationsForRoom(ctx, roomID)
		if err != nil {
			return err
		}
		if len(held) > 0 {
			return ErrRoomInUse
		}
	}

	s.cache.Invalidate(roomID)
	if err = s.rooms.DeleteRoom(ctx, roomID); err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			return ErrRoomInUse
		}
		return mapRoomLookupError(err)
	}
	return nil
}

func (s *RoomService) validateEquipmentIDs(ctx context.Context, ids []string) *ValidationError {
	vErr := &ValidationError{}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			vErr.add("equipment_ids", fmt.Sprintf("equipment %q is listed more than once", id))
			continue
		}
		seen[id] = struct{}{}

		if s.equipment == nil {
			continue
		}
		if _, err := s.equipment.GetEquipment(ctx, id); err != nil {
			vErr.add("equipment_ids", fmt.Sprintf("equipment %q does not exist", id))
		}
	}
	return vErr
}

// resolveEquipment fills Equipment from EquipmentIDs, keeping assignment order.
func (s *RoomService) resolveEquipment(ctx context.Context, rooms []*Room) error {
	if s.equipment == nil {
		return nil
	}

	needed := false
	for _, room := range rooms {
		if len(room.EquipmentIDs) > 0 {
			needed = true
			break
		}
	}
	if !needed {
		return nil
	}

	items, err := s.equipment.ListEquipment(ctx)
	if err != nil {
		return wrapStorageError(err)
	}
	byID := make(map[string]Equipment, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, room := range rooms {
		room.Equipment = make([]Equipment, 0, len(room.EquipmentIDs))
		for _, id := range room.EquipmentIDs {
			if item, ok := byID[id]; ok {
				room.Equipment = append(room.Equipment, item)
			}
		}
	}
	return nil
}

func normalizeRoomInput(input RoomInput) RoomInput {
	input.ID = strings.TrimSpace(input.ID)
	input.Name = strings.TrimSpace(input.Name)
	ids := make([]string, 0, len(input.EquipmentIDs))
	for _, id := range input.EquipmentIDs {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	input.EquipmentIDs = ids
	return input
}

func mapRoomLookupError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrRoomNotFound
	}
	return wrapStorageError(err)
}

func mapRoomRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrRoomNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		vErr := &ValidationError{}
		vErr.add("equipment_ids", "equipment does not exist")
		return vErr
	case errors.Is(err, persistence.ErrConstraintViolation):
		vErr := &ValidationError{}
		vErr.add("capacity", "capacity must be at least 1")
		return vErr
	}
	return wrapStorageError(err)
}

// wrapStorageError classifies unexpected store failures as ErrStorageFailure
// while keeping the cause in the chain. Cancellation passes through unchanged.
func wrapStorageError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, ErrStorageFailure) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrStorageFailure, err)
}

// InvalidateCache drops every cached room. Equipment changes call it because
// cached rooms embed equipment details.
func (s *RoomService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Purge()
}
