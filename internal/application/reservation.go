package application

import (
	"strings"
	"time"
)

// NewReservation builds a reservation after checking the entity invariants:
// End must be strictly after Start and the requester must not be blank.
// It is the only way the engine constructs reservations.
func NewReservation(id, roomID, requester string, start, end time.Time) (Reservation, error) {
	if !end.After(start) {
		return Reservation{}, ErrInvalidInterval
	}
	requester = strings.TrimSpace(requester)
	if requester == "" {
		return Reservation{}, ErrInvalidRequester
	}
	return Reservation{
		ID:        id,
		RoomID:    roomID,
		Requester: requester,
		Start:     start,
		End:       end,
	}, nil
}
