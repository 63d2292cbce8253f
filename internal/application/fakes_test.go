package application

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/scheduler"
)

var baseTime = time.Date(2025, 10, 21, 14, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 10, 21, hour, minute, 0, 0, time.UTC)
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("res-%d", s.n)
}

type roomRepoStub struct {
	mu sync.Mutex

	createErr error
	created   Room

	getRoom Room
	getErr  error
	gets    int

	updateErr error
	updated   Room

	deleteErr error
	deletedID string

	list    []Room
	listErr error
}

func (r *roomRepoStub) CreateRoom(ctx context.Context, room Room) (Room, error) {
	if r.createErr != nil {
		return Room{}, r.createErr
	}
	r.created = room
	return room, nil
}

func (r *roomRepoStub) GetRoom(ctx context.Context, id string) (Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	if r.getErr != nil {
		return Room{}, r.getErr
	}
	if r.getRoom.ID != "" && r.getRoom.ID == id {
		return r.getRoom, nil
	}
	for _, room := range r.list {
		if room.ID == id {
			return room, nil
		}
	}
	return Room{}, ErrNotFound
}

func (r *roomRepoStub) UpdateRoom(ctx context.Context, room Room) (Room, error) {
	if r.updateErr != nil {
		return Room{}, r.updateErr
	}
	r.updated = room
	return room, nil
}

func (r *roomRepoStub) DeleteRoom(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	r.deletedID = id
	return nil
}

func (r *roomRepoStub) ListRooms(ctx context.Context) ([]Room, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	if len(r.list) == 0 {
		return nil, nil
	}
	out := make([]Room, len(r.list))
	copy(out, r.list)
	return out, nil
}

func (r *roomRepoStub) getCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gets
}

type equipmentRepoStub struct {
	items     []Equipment
	inUse     map[string]int
	createErr error
	deleteErr error
	countErr  error
	deleted   string
}

func (e *equipmentRepoStub) CreateEquipment(ctx context.Context, item Equipment) (Equipment, error) {
	if e.createErr != nil {
		return Equipment{}, e.createErr
	}
	e.items = append(e.items, item)
	return item, nil
}

func (e *equipmentRepoStub) GetEquipment(ctx context.Context, id string) (Equipment, error) {
	for _, item := range e.items {
		if item.ID == id {
			return item, nil
		}
	}
	return Equipment{}, ErrNotFound
}

func (e *equipmentRepoStub) UpdateEquipment(ctx context.Context, item Equipment) (Equipment, error) {
	for i := range e.items {
		if e.items[i].ID == item.ID {
			e.items[i] = item
			return item, nil
		}
	}
	return Equipment{}, ErrNotFound
}

func (e *equipmentRepoStub) DeleteEquipment(ctx context.Context, id string) error {
	if e.deleteErr != nil {
		return e.deleteErr
	}
	for i := range e.items {
		if e.items[i].ID == id {
			e.items = slices.Delete(e.items, i, i+1)
			e.deleted = id
			return nil
		}
	}
	return ErrNotFound
}

func (e *equipmentRepoStub) ListEquipment(ctx context.Context) ([]Equipment, error) {
	return slices.Clone(e.items), nil
}

func (e *equipmentRepoStub) CountRoomsUsingEquipment(ctx context.Context, id string) (int, error) {
	if e.countErr != nil {
		return 0, e.countErr
	}
	return e.inUse[id], nil
}

// reservationStoreFake keeps reservations in memory. It does not reject
// overlaps on insert unless enforceOverlap is set, so tests observe what the
// service itself guarantees.
type reservationStoreFake struct {
	mu             sync.Mutex
	reservations   []Reservation
	enforceOverlap bool
	// queryDelay widens the window between the overlap query and the insert.
	queryDelay time.Duration

	overlapErrs []error
	createErrs  []error

	overlapCalls int
	createCalls  int
}

func (f *reservationStoreFake) popErr(queue *[]error) error {
	if len(*queue) == 0 {
		return nil
	}
	err := (*queue)[0]
	*queue = (*queue)[1:]
	return err
}

func (f *reservationStoreFake) CreateReservation(ctx context.Context, reservation Reservation) (Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if err := f.popErr(&f.createErrs); err != nil {
		return Reservation{}, err
	}
	if f.enforceOverlap {
		for _, existing := range f.reservations {
			if existing.RoomID == reservation.RoomID && scheduler.Overlaps(existing.Interval(), reservation.Interval()) {
				return Reservation{}, errOverlapFromStore
			}
		}
	}
	f.reservations = append(f.reservations, reservation)
	return reservation, nil
}

func (f *reservationStoreFake) GetReservation(ctx context.Context, id string) (Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ID == id {
			return r, nil
		}
	}
	return Reservation{}, ErrNotFound
}

func (f *reservationStoreFake) ListReservations(ctx context.Context) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reservations), nil
}

func (f *reservationStoreFake) ListReservationsForRoom(ctx context.Context, roomID string) ([]Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []Reservation{}
	for _, r := range f.reservations {
		if r.RoomID == roomID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *reservationStoreFake) ListOverlappingReservations(ctx context.Context, roomID string, start, end time.Time) ([]Reservation, error) {
	f.mu.Lock()
	f.overlapCalls++
	if err := f.popErr(&f.overlapErrs); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	window := scheduler.Interval{Start: start, End: end}
	var out []Reservation
	for _, r := range f.reservations {
		if r.RoomID == roomID && scheduler.Overlaps(r.Interval(), window) {
			out = append(out, r)
		}
	}
	delay := f.queryDelay
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	return out, nil
}

func (f *reservationStoreFake) DeleteReservation(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.reservations {
		if r.ID == id {
			f.reservations = slices.Delete(f.reservations, i, i+1)
			return nil
		}
	}
	return ErrNotFound
}

func (f *reservationStoreFake) count(roomID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reservations {
		if r.RoomID == roomID {
			n++
		}
	}
	return n
}

var errOverlapFromStore = fmt.Errorf("store: %w", persistence.ErrOverlap)
