package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

func TestEquipmentService_CreateEquipment(t *testing.T) {
	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewEquipmentService(&equipmentRepoStub{}, nil, nil)

		_, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{
			Principal: Principal{},
			Input:     EquipmentInput{Name: "Projector"},
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates name length", func(t *testing.T) {
		svc := NewEquipmentService(&equipmentRepoStub{}, nil, nil)

		_, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{
			Principal: Principal{IsAdmin: true},
			Input:     EquipmentInput{Name: " TV "},
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) || vErr.FieldErrors["name"] == "" {
			t.Fatalf("expected name validation error, got %v", err)
		}
	})

	t.Run("persists equipment with generated ID", func(t *testing.T) {
		repo := &equipmentRepoStub{}
		now := time.Date(2025, time.October, 20, 9, 0, 0, 0, time.UTC)
		svc := NewEquipmentService(repo, func() string { return "eq-1" }, func() time.Time { return now })

		item, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{
			Principal: Principal{IsAdmin: true},
			Input:     EquipmentInput{Name: "  Projector ", Description: " HDMI only "},
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if item.ID != "eq-1" || item.Name != "Projector" || item.Description != "HDMI only" {
			t.Fatalf("unexpected item %+v", item)
		}
		if !item.CreatedAt.Equal(now) {
			t.Fatalf("expected injected clock, got %v", item.CreatedAt)
		}
		if len(repo.items) != 1 {
			t.Fatalf("expected item to be stored")
		}
	})

	t.Run("maps duplicates", func(t *testing.T) {
		svc := NewEquipmentService(&equipmentRepoStub{createErr: persistence.ErrDuplicate}, nil, nil)

		_, err := svc.CreateEquipment(context.Background(), CreateEquipmentParams{
			Principal: Principal{IsAdmin: true},
			Input:     EquipmentInput{Name: "Projector"},
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func TestEquipmentService_UpdateEquipment(t *testing.T) {
	repo := &equipmentRepoStub{items: []Equipment{{ID: "eq-1", Name: "Projector"}}}
	svc := NewEquipmentService(repo, nil, nil)
	changes := 0
	svc.OnChange(func() { changes++ })

	item, err := svc.UpdateEquipment(context.Background(), UpdateEquipmentParams{
		Principal:   Principal{IsAdmin: true},
		EquipmentID: "eq-1",
		Input:       EquipmentInput{Name: "Laser projector", Description: "4K"},
	})
	if err != nil {
		t.Fatalf("UpdateEquipment failed: %v", err)
	}
	if item.Name != "Laser projector" || item.Description != "4K" {
		t.Fatalf("unexpected item %+v", item)
	}
	if changes != 1 {
		t.Fatalf("expected change hook to run once, got %d", changes)
	}

	_, err = svc.UpdateEquipment(context.Background(), UpdateEquipmentParams{
		Principal:   Principal{IsAdmin: true},
		EquipmentID: "missing",
		Input:       EquipmentInput{Name: "Screen"},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEquipmentService_DeleteEquipment(t *testing.T) {
	t.Run("refuses equipment assigned to rooms", func(t *testing.T) {
		repo := &equipmentRepoStub{items: []Equipment{{ID: "eq-1", Name: "Projector"}}, inUse: map[string]int{"eq-1": 2}}
		svc := NewEquipmentService(repo, nil, nil)

		err := svc.DeleteEquipment(context.Background(), Principal{IsAdmin: true}, "eq-1")
		if !errors.Is(err, ErrEquipmentInUse) {
			t.Fatalf("expected ErrEquipmentInUse, got %v", err)
		}
		if repo.deleted != "" {
			t.Fatalf("expected nothing to be deleted")
		}
	})

	t.Run("reports unknown equipment", func(t *testing.T) {
		svc := NewEquipmentService(&equipmentRepoStub{}, nil, nil)

		if err := svc.DeleteEquipment(context.Background(), Principal{IsAdmin: true}, "ghost"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("deletes unused equipment", func(t *testing.T) {
		repo := &equipmentRepoStub{items: []Equipment{{ID: "eq-1", Name: "Projector"}}}
		svc := NewEquipmentService(repo, nil, nil)
		changed := false
		svc.OnChange(func() { changed = true })

		if err := svc.DeleteEquipment(context.Background(), Principal{IsAdmin: true}, "eq-1"); err != nil {
			t.Fatalf("DeleteEquipment failed: %v", err)
		}
		if repo.deleted != "eq-1" || !changed {
			t.Fatalf("expected delete and change hook, got deleted=%q changed=%v", repo.deleted, changed)
		}
	})

	t.Run("requires administrator privileges", func(t *testing.T) {
		svc := NewEquipmentService(&equipmentRepoStub{}, nil, nil)

		if err := svc.DeleteEquipment(context.Background(), Principal{}, "eq-1"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestEquipmentService_ListAndGet(t *testing.T) {
	repo := &equipmentRepoStub{items: []Equipment{{ID: "b", Name: "Whiteboard"}, {ID: "a", Name: "Projector"}}}
	svc := NewEquipmentService(repo, nil, nil)

	items, err := svc.ListEquipment(context.Background())
	if err != nil {
		t.Fatalf("ListEquipment failed: %v", err)
	}
	if len(items) != 2 || items[0].ID != "b" {
		t.Fatalf("expected repository order, got %+v", items)
	}

	if _, err := svc.GetEquipment(context.Background(), "zzz"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
