package persistence

import "time"

// Room represents a reservable meeting room.
type Room struct {
	ID           string
	Name         string
	Capacity     int
	EquipmentIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Equipment represents an item that can be installed in rooms.
type Equipment struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Reservation represents an accepted booking of a room over [Start, End).
type Reservation struct {
	ID        string
	RoomID    string
	Requester string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}
