package scheduler

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Valid reports whether End is strictly after Start.
func (i Interval) Valid() bool {
	return i.End.After(i.Start)
}

// Booking is a reserved interval for a room.
type Booking struct {
	ID     string
	RoomID string
	Interval
}

// Conflict names an existing booking that collides with a candidate.
type Conflict struct {
	WithBookingID string
	RoomID        string
}

// Overlaps reports whether two intervals share any instant.
// Intervals that only touch at a boundary do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// DetectConflicts returns the existing bookings in the candidate's room whose
// interval overlaps the candidate. Order follows existing.
func DetectConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict
	for _, booking := range existing {
		if booking.RoomID != candidate.RoomID {
			continue
		}
		if booking.ID != "" && booking.ID == candidate.ID {
			continue
		}
		if !Overlaps(booking.Interval, candidate.Interval) {
			continue
		}
		conflicts = append(conflicts, Conflict{WithBookingID: booking.ID, RoomID: booking.RoomID})
	}
	return conflicts
}

// Filter returns the bookings of roomID that overlap window, preserving order.
func Filter(bookings []Booking, roomID string, window Interval) []Booking {
	var out []Booking
	for _, booking := range bookings {
		if booking.RoomID != roomID {
			continue
		}
		if Overlaps(booking.Interval, window) {
			out = append(out, booking)
		}
	}
	return out
}
