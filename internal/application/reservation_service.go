package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

// admissionRetries bounds how often a busy store is retried within one Book call.
const admissionRetries = 1

// ReservationRepository captures the persistence operations needed by the service.
type ReservationRepository interface {
	CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context) ([]Reservation, error)
	ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error)
	ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// RoomLookup resolves rooms for admission. RoomService satisfies it.
type RoomLookup interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// ReservationService admits reservations and answers reservation queries.
//
// Book calls for the same room are serialised by a per-room lock held across
// the overlap query and the insert. Calls for different rooms never wait on
// each other.
type ReservationService struct {
	rooms        RoomLookup
	reservations ReservationRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
	locks        *roomLocks
	retries      int
}

// NewReservationService constructs a reservation service with the provided dependencies.
func NewReservationService(rooms RoomLookup, reservations ReservationRepository, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(rooms, reservations, idGenerator, now, nil)
}

// NewReservationServiceWithLogger constructs a reservation service with a specified logger.
func NewReservationServiceWithLogger(rooms RoomLookup, reservations ReservationRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = newUUID
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		rooms:        rooms,
		reservations: reservations,
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
		locks:        newRoomLocks(),
		retries:      admissionRetries,
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Book admits a reservation of roomID for requester over [start, end).
//
// It returns ErrRoomNotFound, ErrInvalidInterval, ErrInvalidRequester,
// ErrTimeConflict or ErrStorageFailure. A context that is already done is
// reported as its own error. Nothing is stored unless the call succeeds.
func (s *ReservationService) Book(ctx context.Context, roomID, requester string, start, end time.Time) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if err = ctx.Err(); err != nil {
		return
	}
	if s.rooms == nil || s.reservations == nil {
		err = fmt.Errorf("reservation service not configured")
		return
	}

	logger := s.loggerWith(ctx, "Book",
		"room_id", roomID,
		"start", start,
		"end", end,
	)
	defer func() {
		switch {
		case err == nil:
			logger.InfoContext(ctx, "reservation admitted", "reservation_id", reservation.ID)
		case errors.Is(err, ErrStorageFailure):
			logger.ErrorContext(ctx, "reservation admission failed", "error", err, "error_kind", ErrorKind(err))
		default:
			logger.WarnContext(ctx, "reservation rejected", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if _, err = s.rooms.GetRoom(ctx, roomID); err != nil {
		err = mapRoomLookupError(err)
		return
	}

	candidate, err := NewReservation(s.idGenerator(), roomID, requester, start, end)
	if err != nil {
		return
	}
	candidate.CreatedAt = s.now()

	release := s.locks.lock(roomID)
	defer release()

	for attempt := 0; ; attempt++ {
		reservation, err = s.admit(ctx, candidate)
		if err == nil || !errors.Is(err, persistence.ErrBusy) || attempt >= s.retries {
			break
		}
		logger.WarnContext(ctx, "store busy, retrying admission", "attempt", attempt+1, "error", err)
	}
	if err != nil {
		reservation = Reservation{}
		err = mapAdmissionError(err)
	}
	return
}

// admit runs the overlap check and the insert. The caller holds the room lock.
func (s *ReservationService) admit(ctx context.Context, candidate Reservation) (Reservation, error) {
	existing, err := s.reservations.ListOverlappingReservations(ctx, candidate.RoomID, candidate.Start, candidate.End)
	if err != nil {
		return Reservation{}, err
	}

	bookings := make([]scheduler.Booking, 0, len(existing))
	for _, r := range existing {
		bookings = append(bookings, r.booking())
	}
	if conflicts := scheduler.DetectConflicts(bookings, candidate.booking()); len(conflicts) > 0 {
		return Reservation{}, ErrTimeConflict
	}

	return s.reservations.CreateReservation(ctx, candidate)
}

func mapAdmissionError(err error) error {
	switch {
	case errors.Is(err, ErrTimeConflict), errors.Is(err, persistence.ErrOverlap):
		return ErrTimeConflict
	case errors.Is(err, persistence.ErrForeignKeyViolation):
		return ErrRoomNotFound
	}
	return wrapStorageError(err)
}

// GetReservation returns a reservation by ID or ErrNotFound.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = ErrNotFound
		return
	}

	reservation, err = s.reservations.GetReservation(ctx, id)
	if err != nil {
		err = mapReservationRepoError(err)
	}
	return
}

// ListReservations returns every reservation in creation order.
func (s *ReservationService) ListReservations(ctx context.Context) (reservations []Reservation, err error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return []Reservation{}, nil
	}

	logger := s.loggerWith(ctx, "ListReservations")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list reservations", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(reservations)).DebugContext(ctx, "reservations listed")
	}()

	reservations, err = s.reservations.ListReservations(ctx)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if reservations == nil {
		reservations = []Reservation{}
	}
	return reservations, nil
}

// ListReservationsForRoom returns the room's reservations in creation order.
// An unknown room yields an empty slice.
func (s *ReservationService) ListReservationsForRoom(ctx context.Context, roomID string) (reservations []Reservation, err error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return []Reservation{}, nil
	}

	logger := s.loggerWith(ctx, "ListReservationsForRoom", "room_id", roomID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list room reservations", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	reservations, err = s.reservations.ListReservationsForRoom(ctx, roomID)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if reservations == nil {
		reservations = []Reservation{}
	}
	return reservations, nil
}

// ListReservationsBetween returns the room's reservations overlapping [start, end).
func (s *ReservationService) ListReservationsBetween(ctx context.Context, roomID string, start, end time.Time) (reservations []Reservation, err error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}
	if s.reservations == nil {
		return []Reservation{}, nil
	}

	reservations, err = s.reservations.ListOverlappingReservations(ctx, roomID, start, end)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	if reservations == nil {
		reservations = []Reservation{}
	}
	return reservations, nil
}

// DeleteReservation removes a reservation, freeing its slot.
func (s *ReservationService) DeleteReservation(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return ErrNotFound
	}

	logger := s.loggerWith(ctx, "DeleteReservation", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation deleted")
	}()

	if err = s.reservations.DeleteReservation(ctx, id); err != nil {
		return mapReservationRepoError(err)
	}
	return nil
}

func mapReservationRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return wrapStorageError(err)
}
