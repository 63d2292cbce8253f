package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
	"github.com/example/room-reservations/internal/persistence/memory"
	"github.com/example/room-reservations/internal/testfixtures"
)

type storeFactory func(t *testing.T) persistence.Store

func stores() map[string]storeFactory {
	return map[string]storeFactory{
		"memory": func(t *testing.T) persistence.Store {
			return memory.New()
		},
		"sqlite": func(t *testing.T) persistence.Store {
			return testfixtures.NewSQLiteHarness(t).Store
		},
	}
}

// forEachStore runs the same behavioural checks against every store so the
// memory store cannot drift from the SQL one.
func forEachStore(t *testing.T, fn func(t *testing.T, store persistence.Store)) {
	t.Helper()
	for name, factory := range stores() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			fn(t, factory(t))
		})
	}
}

func mustCreateRoom(t *testing.T, store persistence.Store, room persistence.Room) {
	t.Helper()
	if err := store.CreateRoom(context.Background(), room); err != nil {
		t.Fatalf("CreateRoom(%s) failed: %v", room.ID, err)
	}
}

func TestRoomRepository(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()

		for _, id := range []string{"projector", "whiteboard"} {
			item := testfixtures.NewEquipmentFixture(testfixtures.WithEquipmentID(id)).Persistence()
			if err := store.CreateEquipment(ctx, item); err != nil {
				t.Fatalf("CreateEquipment failed: %v", err)
			}
		}

		second := testfixtures.NewRoomFixture(testfixtures.WithRoomID("S02")).Persistence()
		first := testfixtures.S01()
		first.EquipmentIDs = []string{"whiteboard", "projector"}
		mustCreateRoom(t, store, second)
		mustCreateRoom(t, store, first.Persistence())

		got, err := store.GetRoom(ctx, "S01")
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if got.Name != first.Name || got.Capacity != 10 {
			t.Fatalf("unexpected room %+v", got)
		}
		if !slices.Equal(got.EquipmentIDs, []string{"whiteboard", "projector"}) {
			t.Fatalf("expected equipment order to be preserved, got %v", got.EquipmentIDs)
		}
		if !got.CreatedAt.Equal(first.CreatedAt) {
			t.Fatalf("expected created_at %v, got %v", first.CreatedAt, got.CreatedAt)
		}

		rooms, err := store.ListRooms(ctx)
		if err != nil {
			t.Fatalf("ListRooms failed: %v", err)
		}
		if len(rooms) != 2 || rooms[0].ID != "S02" || rooms[1].ID != "S01" {
			t.Fatalf("expected creation order, got %+v", rooms)
		}

		if err := store.CreateRoom(ctx, first.Persistence()); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		ghost := testfixtures.NewRoomFixture(testfixtures.WithRoomEquipment("hologram")).Persistence()
		if err := store.CreateRoom(ctx, ghost); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected ErrForeignKeyViolation, got %v", err)
		}

		count, err := store.CountRoomsUsingEquipment(ctx, "projector")
		if err != nil || count != 1 {
			t.Fatalf("expected projector in one room, got %d, %v", count, err)
		}
		if err := store.DeleteEquipment(ctx, "projector"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected installed equipment to be protected, got %v", err)
		}

		updated := got
		updated.Name = "Sala grande"
		updated.EquipmentIDs = []string{"projector"}
		updated.UpdatedAt = got.UpdatedAt.Add(time.Hour)
		if err := store.UpdateRoom(ctx, updated); err != nil {
			t.Fatalf("UpdateRoom failed: %v", err)
		}
		got, err = store.GetRoom(ctx, "S01")
		if err != nil {
			t.Fatalf("GetRoom failed: %v", err)
		}
		if got.Name != "Sala grande" || !slices.Equal(got.EquipmentIDs, []string{"projector"}) {
			t.Fatalf("unexpected updated room %+v", got)
		}

		if err := store.DeleteRoom(ctx, "S02"); err != nil {
			t.Fatalf("DeleteRoom failed: %v", err)
		}
		if _, err := store.GetRoom(ctx, "S02"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteRoom(ctx, "S02"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func TestEquipmentRepository(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()

		item := testfixtures.NewEquipmentFixture(
			testfixtures.WithEquipmentName("Projector"),
			testfixtures.WithEquipmentDescription("HDMI"),
		).Persistence()
		if err := store.CreateEquipment(ctx, item); err != nil {
			t.Fatalf("CreateEquipment failed: %v", err)
		}
		if err := store.CreateEquipment(ctx, item); !errors.Is(err, persistence.ErrDuplicate) {
			t.Fatalf("expected ErrDuplicate, got %v", err)
		}

		item.Description = "HDMI and USB-C"
		if err := store.UpdateEquipment(ctx, item); err != nil {
			t.Fatalf("UpdateEquipment failed: %v", err)
		}
		got, err := store.GetEquipment(ctx, item.ID)
		if err != nil || got.Description != "HDMI and USB-C" {
			t.Fatalf("GetEquipment returned %+v, %v", got, err)
		}

		items, err := store.ListEquipment(ctx)
		if err != nil || len(items) != 1 {
			t.Fatalf("ListEquipment returned %+v, %v", items, err)
		}

		if err := store.DeleteEquipment(ctx, item.ID); err != nil {
			t.Fatalf("DeleteEquipment failed: %v", err)
		}
		if _, err := store.GetEquipment(ctx, item.ID); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationRepository(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, store persistence.Store) {
		ctx := context.Background()
		mustCreateRoom(t, store, testfixtures.S01().Persistence())
		mustCreateRoom(t, store, testfixtures.NewRoomFixture(testfixtures.WithRoomID("S02")).Persistence())

		ana := testfixtures.NewReservationFixture(testfixtures.WithReservationID("r-ana")).Persistence()
		if err := store.CreateReservation(ctx, ana); err != nil {
			t.Fatalf("CreateReservation failed: %v", err)
		}

		cases := []struct {
			name       string
			roomID     string
			start, end time.Time
			want       error
		}{
			{"partial overlap", "S01", testfixtures.At(14, 30), testfixtures.At(15, 30), persistence.ErrOverlap},
			{"envelops", "S01", testfixtures.At(13, 0), testfixtures.At(16, 0), persistence.ErrOverlap},
			{"contained", "S01", testfixtures.At(14, 15), testfixtures.At(14, 45), persistence.ErrOverlap},
			{"touching before", "S01", testfixtures.At(13, 0), testfixtures.At(14, 0), nil},
			{"touching after", "S01", testfixtures.At(15, 0), testfixtures.At(16, 0), nil},
			{"other room", "S02", testfixtures.At(14, 0), testfixtures.At(15, 0), nil},
			{"unknown room", "S99", testfixtures.At(18, 0), testfixtures.At(19, 0), persistence.ErrForeignKeyViolation},
		}
		for i, tc := range cases {
			r := testfixtures.NewReservationFixture(
				testfixtures.WithReservationID(fmt.Sprintf("r-%d", i)),
				testfixtures.WithReservationRoom(tc.roomID),
				testfixtures.WithReservationInterval(tc.start, tc.end),
			).Persistence()
			err := store.CreateReservation(ctx, r)
			if tc.want == nil && err != nil {
				t.Fatalf("%s: expected success, got %v", tc.name, err)
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
			}
		}

		all, err := store.ListReservations(ctx)
		if err != nil {
			t.Fatalf("ListReservations failed: %v", err)
		}
		ids := make([]string, 0, len(all))
		for _, r := range all {
			ids = append(ids, r.ID)
		}
		if !slices.Equal(ids, []string{"r-ana", "r-3", "r-4", "r-5"}) {
			t.Fatalf("expected creation order, got %v", ids)
		}

		forRoom, err := store.ListReservationsForRoom(ctx, "S01")
		if err != nil || len(forRoom) != 3 {
			t.Fatalf("ListReservationsForRoom returned %d, %v", len(forRoom), err)
		}
		empty, err := store.ListReservationsForRoom(ctx, "S99")
		if err != nil || len(empty) != 0 {
			t.Fatalf("expected empty list for unknown room, got %v, %v", empty, err)
		}

		overlapping, err := store.ListOverlappingReservations(ctx, "S01", testfixtures.At(13, 30), testfixtures.At(14, 30))
		if err != nil {
			t.Fatalf("ListOverlappingReservations failed: %v", err)
		}
		if len(overlapping) != 2 {
			t.Fatalf("expected 13:00 and 14:00 reservations, got %+v", overlapping)
		}

		got, err := store.GetReservation(ctx, "r-ana")
		if err != nil {
			t.Fatalf("GetReservation failed: %v", err)
		}
		if got.Requester != "Ana" || !got.Start.Equal(testfixtures.At(14, 0)) || !got.End.Equal(testfixtures.At(15, 0)) {
			t.Fatalf("unexpected reservation %+v", got)
		}

		if err := store.DeleteRoom(ctx, "S01"); !errors.Is(err, persistence.ErrForeignKeyViolation) {
			t.Fatalf("expected reserved room to be protected, got %v", err)
		}

		if err := store.DeleteReservation(ctx, "r-ana"); err != nil {
			t.Fatalf("DeleteReservation failed: %v", err)
		}
		if err := store.DeleteReservation(ctx, "r-ana"); !errors.Is(err, persistence.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestReservationRepository_RejectsEmptyInterval(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, store persistence.Store) {
		mustCreateRoom(t, store, testfixtures.S01().Persistence())

		r := testfixtures.NewReservationFixture(
			testfixtures.WithReservationInterval(testfixtures.At(14, 0), testfixtures.At(14, 0)),
		).Persistence()
		if err := store.CreateReservation(context.Background(), r); !errors.Is(err, persistence.ErrConstraintViolation) {
			t.Fatalf("expected ErrConstraintViolation, got %v", err)
		}
	})
}

// Concurrent inserts without any application lock still admit at most one
// reservation per slot.
func TestReservationRepository_ConcurrentOverlappingInserts(t *testing.T) {
	t.Parallel()

	forEachStore(t, func(t *testing.T, store persistence.Store) {
		mustCreateRoom(t, store, testfixtures.S01().Persistence())

		const writers = 8
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				offset := time.Duration(i) * time.Minute
				r := testfixtures.NewReservationFixture(
					testfixtures.WithReservationID(fmt.Sprintf("c-%d", i)),
					testfixtures.WithReservationInterval(testfixtures.At(14, 0).Add(offset), testfixtures.At(15, 0).Add(offset)),
				).Persistence()
				err := store.CreateReservation(context.Background(), r)
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
					return
				}
				if !errors.Is(err, persistence.ErrOverlap) && !errors.Is(err, persistence.ErrBusy) {
					t.Errorf("unexpected error: %v", err)
				}
			}(i)
		}
		wg.Wait()

		if successes != 1 {
			t.Fatalf("expected exactly one insert to succeed, got %d", successes)
		}
	})
}
