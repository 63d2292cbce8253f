package testfixtures

import (
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/persistence"
)

var (
	roomCounter        uint64
	equipmentCounter   uint64
	reservationCounter uint64
)

var referenceTime = time.Date(2025, time.October, 21, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// At returns the reference day at the given wall clock time in UTC.
func At(hour, minute int) time.Time {
	return time.Date(referenceTime.Year(), referenceTime.Month(), referenceTime.Day(), hour, minute, 0, 0, time.UTC)
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic room record.
type RoomFixture struct {
	ID           string
	Name         string
	Capacity     int
	EquipmentIDs []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := RoomFixture{
		ID:        fmt.Sprintf("R%03d", idx),
		Name:      fmt.Sprintf("Room %03d", idx),
		Capacity:  8,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// S01 is the room used throughout the admission examples: capacity 10, no equipment.
func S01() RoomFixture {
	return NewRoomFixture(WithRoomID("S01"), WithRoomName("Sala 01"), WithRoomCapacity(10))
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomEquipment sets the ordered equipment list.
func WithRoomEquipment(ids ...string) RoomOption {
	return func(f *RoomFixture) {
		f.EquipmentIDs = slices.Clone(ids)
	}
}

// WithRoomTimestamps sets both created and updated timestamps on the fixture.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application converts the fixture into an application room.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:           f.ID,
		Name:         f.Name,
		Capacity:     f.Capacity,
		EquipmentIDs: slices.Clone(f.EquipmentIDs),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence converts the fixture into a persistence room.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:           f.ID,
		Name:         f.Name,
		Capacity:     f.Capacity,
		EquipmentIDs: slices.Clone(f.EquipmentIDs),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input converts the fixture into room input for service calls.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		ID:           f.ID,
		Name:         f.Name,
		Capacity:     f.Capacity,
		EquipmentIDs: slices.Clone(f.EquipmentIDs),
	}
}

// --------------------------- Equipment fixtures ---------------------------

// EquipmentFixture represents a deterministic equipment record.
type EquipmentFixture struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EquipmentOption configures the generated equipment fixture.
type EquipmentOption func(*EquipmentFixture)

// NewEquipmentFixture returns a deterministic equipment fixture.
func NewEquipmentFixture(opts ...EquipmentOption) EquipmentFixture {
	idx := atomic.AddUint64(&equipmentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := EquipmentFixture{
		ID:        fmt.Sprintf("equipment-%03d", idx),
		Name:      fmt.Sprintf("Item %03d", idx),
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEquipmentID overrides the generated equipment ID.
func WithEquipmentID(id string) EquipmentOption {
	return func(f *EquipmentFixture) {
		f.ID = id
	}
}

// WithEquipmentName overrides the generated name.
func WithEquipmentName(name string) EquipmentOption {
	return func(f *EquipmentFixture) {
		f.Name = name
	}
}

// WithEquipmentDescription sets the description.
func WithEquipmentDescription(description string) EquipmentOption {
	return func(f *EquipmentFixture) {
		f.Description = description
	}
}

// Application converts the fixture into application equipment.
func (f EquipmentFixture) Application() application.Equipment {
	return application.Equipment{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Persistence converts the fixture into persistence equipment.
func (f EquipmentFixture) Persistence() persistence.Equipment {
	return persistence.Equipment{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// -------------------------- Reservation fixtures --------------------------

// ReservationFixture represents a deterministic reservation record. The
// default interval is 14:00-15:00 on the reference day.
type ReservationFixture struct {
	ID        string
	RoomID    string
	Requester string
	Start     time.Time
	End       time.Time
	CreatedAt time.Time
}

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	fixture := ReservationFixture{
		ID:        fmt.Sprintf("reservation-%03d", idx),
		RoomID:    "S01",
		Requester: "Ana",
		Start:     At(14, 0),
		End:       At(15, 0),
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Second),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the generated reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationRoom sets the reserved room.
func WithReservationRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = roomID
	}
}

// WithReservationRequester sets the requester name.
func WithReservationRequester(name string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Requester = name
	}
}

// WithReservationInterval sets the reserved interval.
func WithReservationInterval(start, end time.Time) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// Application converts the fixture into an application reservation.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		Requester: f.Requester,
		Start:     f.Start,
		End:       f.End,
		CreatedAt: f.CreatedAt,
	}
}

// Persistence converts the fixture into a persistence reservation.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		Requester: f.Requester,
		Start:     f.Start,
		End:       f.End,
		CreatedAt: f.CreatedAt,
	}
}
