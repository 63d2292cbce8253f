package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

const reservationColumns = `id, room_id, requester, start_at, end_at, created_at`

// ReservationRepository implements persistence.ReservationRepository using
// SQLite. Overlap rejection is enforced by the reservations_no_overlap_insert
// trigger, so CreateReservation stays correct even without caller locking.
type ReservationRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateReservation inserts a reservation. It is attempted once; transient
// failures surface as persistence.ErrBusy so the caller owns the retry policy.
func (r *ReservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO reservations (`+reservationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		reservation.ID,
		reservation.RoomID,
		reservation.Requester,
		formatTime(reservation.Start),
		formatTime(reservation.End),
		formatTime(reservation.CreatedAt),
	)
	return r.mapper.MapError(err)
}

// GetReservation retrieves a reservation by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	err := r.retry.WithRetry(ctx, func() error {
		row := r.pool.db.QueryRowContext(ctx,
			`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
		var err error
		reservation, err = scanReservation(row.Scan)
		return err
	})
	if err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}

// ListReservations returns every reservation in creation order.
func (r *ReservationRepository) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	return r.list(ctx, `ORDER BY rowid`)
}

// ListReservationsForRoom returns one room's reservations in creation order.
func (r *ReservationRepository) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	return r.list(ctx, `WHERE room_id = ? ORDER BY rowid`, roomID)
}

// ListOverlappingReservations returns reservations of roomID that intersect
// [start, end). Touching intervals are excluded.
func (r *ReservationRepository) ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Reservation, error) {
	return r.list(ctx, `WHERE room_id = ? AND start_at < ? AND end_at > ? ORDER BY rowid`,
		roomID, formatTime(end), formatTime(start))
}

func (r *ReservationRepository) list(ctx context.Context, clause string, args ...any) ([]persistence.Reservation, error) {
	reservations := make([]persistence.Reservation, 0)
	err := r.retry.WithRetry(ctx, func() error {
		reservations = reservations[:0]

		rows, err := r.pool.db.QueryContext(ctx, `SELECT `+reservationColumns+` FROM reservations `+clause, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			reservation, err := scanReservation(rows.Scan)
			if err != nil {
				return err
			}
			reservations = append(reservations, reservation)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

// DeleteReservation removes a reservation by ID.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, `DELETE FROM reservations WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

func scanReservation(scan func(dest ...any) error) (persistence.Reservation, error) {
	var reservation persistence.Reservation
	var startAt, endAt, createdAt string
	if err := scan(&reservation.ID, &reservation.RoomID, &reservation.Requester, &startAt, &endAt, &createdAt); err != nil {
		return persistence.Reservation{}, err
	}

	var err error
	if reservation.Start, err = parseTime("start_at", startAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.End, err = parseTime("end_at", endAt); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return persistence.Reservation{}, err
	}
	return reservation, nil
}
