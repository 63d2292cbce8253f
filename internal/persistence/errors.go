package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same identifier already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConstraintViolation is returned when a CHECK or NOT NULL constraint rejects a write.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a write references a missing record
	// or a delete would orphan dependent rows.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrOverlap is returned when a reservation insert collides with an existing
	// reservation for the same room.
	ErrOverlap = errors.New("persistence: reservation overlap")
	// ErrBusy is returned for transient contention such as a locked database or
	// a serialization failure. The operation may succeed if retried.
	ErrBusy = errors.New("persistence: storage busy")
)
