package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

const reservationColumns = `id, room_id, requester, start_at, end_at, created_at`

type reservationRepository struct {
	DB *sql.DB
}

// NewReservationRepository returns a persistence.ReservationRepository
// implemented with Postgres.
func NewReservationRepository(db *sql.DB) persistence.ReservationRepository {
	return &reservationRepository{DB: db}
}

// CreateReservation inserts a reservation. The reservations_no_overlap
// exclusion constraint reports collisions as persistence.ErrOverlap.
func (r *reservationRepository) CreateReservation(ctx context.Context, reservation persistence.Reservation) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO reservations (`+reservationColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		reservation.ID,
		reservation.RoomID,
		reservation.Requester,
		reservation.Start.UTC(),
		reservation.End.UTC(),
		reservation.CreatedAt.UTC(),
	)
	return mapError(err)
}

func (r *reservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	var res persistence.Reservation
	err := r.DB.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id,
	).Scan(&res.ID, &res.RoomID, &res.Requester, &res.Start, &res.End, &res.CreatedAt)
	if err != nil {
		return persistence.Reservation{}, mapError(err)
	}
	return normalize(res), nil
}

func (r *reservationRepository) ListReservations(ctx context.Context) ([]persistence.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations ORDER BY seq`)
}

func (r *reservationRepository) ListReservationsForRoom(ctx context.Context, roomID string) ([]persistence.Reservation, error) {
	return r.query(ctx, `SELECT `+reservationColumns+` FROM reservations WHERE room_id = $1 ORDER BY seq`, roomID)
}

func (r *reservationRepository) ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]persistence.Reservation, error) {
	return r.query(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE room_id = $1 AND start_at < $2 AND end_at > $3 ORDER BY seq`,
		roomID, end.UTC(), start.UTC())
}

func (r *reservationRepository) query(ctx context.Context, query string, args ...any) ([]persistence.Reservation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make([]persistence.Reservation, 0)
	for rows.Next() {
		var res persistence.Reservation
		if err := rows.Scan(&res.ID, &res.RoomID, &res.Requester, &res.Start, &res.End, &res.CreatedAt); err != nil {
			return nil, mapError(err)
		}
		out = append(out, normalize(res))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *reservationRepository) DeleteReservation(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return rowsAffected(result)
}

func normalize(res persistence.Reservation) persistence.Reservation {
	res.Start = res.Start.UTC()
	res.End = res.End.UTC()
	res.CreatedAt = res.CreatedAt.UTC()
	return res
}
