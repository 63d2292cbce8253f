// Package postgres implements the persistence repositories on PostgreSQL via
// github.com/lib/pq. Reservation overlap is rejected by an exclusion
// constraint, so concurrent writers on different service instances cannot
// double-book a room.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/example/room-reservations/internal/persistence"
)

//go:embed schema.sql
var schemaSQL string

// Store bundles the Postgres repositories over one *sql.DB.
type Store struct {
	persistence.RoomRepository
	persistence.EquipmentRepository
	persistence.ReservationRepository

	DB *sql.DB
}

var _ persistence.Store = (*Store)(nil)

// Open connects to the database identified by url.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return NewStore(db), nil
}

// NewStore wraps an existing handle.
func NewStore(db *sql.DB) *Store {
	return &Store{
		RoomRepository:        NewRoomRepository(db),
		EquipmentRepository:   NewEquipmentRepository(db),
		ReservationRepository: NewReservationRepository(db),
		DB:                    db,
	}
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: migrate: %w", err)
	}
	return nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

// mapError wraps driver errors with the matching persistence sentinel.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	var sentinel error
	switch pqErr.Code {
	case "23P01": // exclusion_violation
		sentinel = persistence.ErrOverlap
	case "23505": // unique_violation
		sentinel = persistence.ErrDuplicate
	case "23503": // foreign_key_violation
		sentinel = persistence.ErrForeignKeyViolation
	case "23514", "23502": // check_violation, not_null_violation
		sentinel = persistence.ErrConstraintViolation
	case "40001", "40P01", "55P03": // serialization_failure, deadlock_detected, lock_not_available
		sentinel = persistence.ErrBusy
	default:
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func rowsAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
