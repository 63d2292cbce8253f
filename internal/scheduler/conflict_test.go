package scheduler

import (
	"testing"
	"time"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.October, 21, hour, minute, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	base := Interval{Start: at(14, 0), End: at(15, 0)}

	cases := []struct {
		name  string
		other Interval
		want  bool
	}{
		{name: "identical", other: base, want: true},
		{name: "partial before", other: Interval{Start: at(13, 30), End: at(14, 30)}, want: true},
		{name: "partial after", other: Interval{Start: at(14, 30), End: at(15, 30)}, want: true},
		{name: "contained", other: Interval{Start: at(14, 15), End: at(14, 45)}, want: true},
		{name: "envelops", other: Interval{Start: at(13, 0), End: at(16, 0)}, want: true},
		{name: "touching before", other: Interval{Start: at(13, 0), End: at(14, 0)}, want: false},
		{name: "touching after", other: Interval{Start: at(15, 0), End: at(16, 0)}, want: false},
		{name: "disjoint", other: Interval{Start: at(9, 0), End: at(10, 0)}, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(base, tc.other); got != tc.want {
				t.Fatalf("Overlaps(base, %v) = %v, want %v", tc.other, got, tc.want)
			}
			if got := Overlaps(tc.other, base); got != tc.want {
				t.Fatalf("Overlaps is not symmetric for %v", tc.other)
			}
		})
	}
}

func TestIntervalValid(t *testing.T) {
	if (Interval{Start: at(14, 0), End: at(14, 0)}).Valid() {
		t.Fatalf("expected zero-length interval to be invalid")
	}
	if (Interval{Start: at(15, 0), End: at(14, 0)}).Valid() {
		t.Fatalf("expected reversed interval to be invalid")
	}
	if !(Interval{Start: at(14, 0), End: at(14, 1)}).Valid() {
		t.Fatalf("expected forward interval to be valid")
	}
}

func TestDetectConflicts(t *testing.T) {
	existing := []Booking{
		{ID: "r1", RoomID: "S01", Interval: Interval{Start: at(14, 0), End: at(15, 0)}},
		{ID: "r2", RoomID: "S02", Interval: Interval{Start: at(14, 0), End: at(15, 0)}},
		{ID: "r3", RoomID: "S01", Interval: Interval{Start: at(15, 0), End: at(16, 0)}},
	}

	t.Run("room overlap produces conflict", func(t *testing.T) {
		candidate := Booking{RoomID: "S01", Interval: Interval{Start: at(14, 30), End: at(15, 30)}}
		conflicts := DetectConflicts(existing, candidate)
		if len(conflicts) != 2 {
			t.Fatalf("expected two conflicts, got %+v", conflicts)
		}
		if conflicts[0].WithBookingID != "r1" || conflicts[1].WithBookingID != "r3" {
			t.Fatalf("unexpected conflict order: %+v", conflicts)
		}
	})

	t.Run("other rooms are ignored", func(t *testing.T) {
		candidate := Booking{RoomID: "S03", Interval: Interval{Start: at(14, 0), End: at(15, 0)}}
		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("adjacent bookings yield no conflicts", func(t *testing.T) {
		candidate := Booking{RoomID: "S01", Interval: Interval{Start: at(16, 0), End: at(17, 0)}}
		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})

	t.Run("candidate does not conflict with itself", func(t *testing.T) {
		candidate := existing[0]
		if conflicts := DetectConflicts(existing, candidate); len(conflicts) != 0 {
			t.Fatalf("expected no conflicts, got %+v", conflicts)
		}
	})
}

func TestFilter(t *testing.T) {
	bookings := []Booking{
		{ID: "a", RoomID: "S01", Interval: Interval{Start: at(9, 0), End: at(10, 0)}},
		{ID: "b", RoomID: "S01", Interval: Interval{Start: at(10, 0), End: at(11, 0)}},
		{ID: "c", RoomID: "S02", Interval: Interval{Start: at(9, 30), End: at(10, 30)}},
	}

	got := Filter(bookings, "S01", Interval{Start: at(9, 30), End: at(10, 0)})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected only booking a, got %+v", got)
	}

	got = Filter(bookings, "S01", Interval{Start: at(9, 30), End: at(10, 30)})
	if len(got) != 2 || got[0].ID != "a" || got[1].ID != "b" {
		t.Fatalf("expected bookings a and b in order, got %+v", got)
	}
}
