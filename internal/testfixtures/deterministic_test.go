package testfixtures

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/application"
)

func TestClock(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}

	if got := clock.Advance(90 * time.Minute); !got.Equal(ReferenceTime().Add(90 * time.Minute)) {
		t.Fatalf("advance returned %v", got)
	}

	clock.Set(At(14, 0))
	if got := clock.NowFunc()(); !got.Equal(At(14, 0)) {
		t.Fatalf("expected 14:00 from NowFunc, got %v", got)
	}

	var nilClock *Clock
	if nilClock.NowFunc() == nil {
		t.Fatalf("expected wall clock fallback for nil clock")
	}
}

func TestClockWithTick(t *testing.T) {
	clock := NewClock(At(9, 0)).WithTick(time.Second)

	first, second := clock.Now(), clock.Now()
	if !first.Equal(At(9, 0)) || !second.Equal(At(9, 0).Add(time.Second)) {
		t.Fatalf("unexpected readings %v, %v", first, second)
	}
}

func TestIDGenerator(t *testing.T) {
	gen := NewIDGenerator("")
	if first, second := gen.Next(), gen.Next(); first != "id-1" || second != "id-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if got := gen.Issued(); !slices.Equal(got, []string{"id-1", "id-2"}) {
		t.Fatalf("unexpected issued list %v", got)
	}

	gen.Reset()
	if next := gen.Next(); next != "id-1" {
		t.Fatalf("expected id-1 after reset, got %q", next)
	}
}

func TestTickingClockOrdersReservations(t *testing.T) {
	ids := NewIDGenerator("res")
	factory := NewServiceFactory(WithClock(NewClock(At(8, 0)).WithTick(time.Minute)), WithIDGenerator(ids))
	services := factory.NewServices(nil, nil)
	ctx := context.Background()

	if _, err := services.Rooms.CreateRoom(ctx, application.CreateRoomParams{
		Principal: application.Principal{IsAdmin: true},
		Input:     S01().Input(),
	}); err != nil {
		t.Fatalf("CreateRoom returned error: %v", err)
	}

	first, err := services.Reservations.Book(ctx, "S01", "Ana", At(9, 0), At(10, 0))
	if err != nil {
		t.Fatalf("first Book returned error: %v", err)
	}
	second, err := services.Reservations.Book(ctx, "S01", "Bruno", At(10, 0), At(11, 0))
	if err != nil {
		t.Fatalf("second Book returned error: %v", err)
	}
	if !second.CreatedAt.After(first.CreatedAt) {
		t.Fatalf("expected %v after %v", second.CreatedAt, first.CreatedAt)
	}

	if _, err := services.Reservations.Book(ctx, "S01", "Carla", At(9, 30), At(10, 30)); !errors.Is(err, application.ErrTimeConflict) {
		t.Fatalf("expected ErrTimeConflict, got %v", err)
	}
	if got := ids.Issued(); !slices.Equal(got, []string{"res-1", "res-2", "res-3"}) {
		t.Fatalf("expected the rejected booking to consume res-3, got %v", got)
	}
}
