package application

import "errors"

// Admission errors returned by ReservationService.Book. Messages are the
// user-facing text surfaced by transports.
var (
	// ErrRoomNotFound is returned when the referenced room does not exist.
	ErrRoomNotFound = errors.New("room not found")
	// ErrInvalidInterval is returned when a reservation does not end strictly after it starts.
	ErrInvalidInterval = errors.New("end date must not precede start date")
	// ErrInvalidRequester is returned when the requester name is blank.
	ErrInvalidRequester = errors.New("requester must not be empty")
	// ErrTimeConflict is returned when the interval overlaps an existing reservation for the room.
	ErrTimeConflict = errors.New("the requested time slot for this room is already reserved")
	// ErrStorageFailure is returned when the store could not complete the operation.
	// It is the only admission error worth retrying.
	ErrStorageFailure = errors.New("reservation storage is temporarily unavailable")
)

var (
	// ErrUnauthorized is returned when the acting principal lacks permission for an operation.
	ErrUnauthorized = errors.New("application: unauthorized")
	// ErrInvalidCredentials is returned when a presented admin token does not match.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a resource with the same identifier exists.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrRoomInUse is returned when deleting a room that still has reservations.
	ErrRoomInUse = errors.New("room cannot be deleted while it has reservations")
	// ErrEquipmentInUse is returned when deleting equipment installed in a room.
	ErrEquipmentInUse = errors.New("equipment cannot be deleted while it is assigned to a room")
)

// IsRetriable reports whether err may succeed when the caller repeats the request.
func IsRetriable(err error) bool {
	return errors.Is(err, ErrStorageFailure)
}

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error. The first message for a field wins.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	if _, exists := v.FieldErrors[field]; exists {
		return
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
