package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/room-reservations/internal/persistence"
)

// EquipmentRepository captures the persistence operations needed by the service.
type EquipmentRepository interface {
	CreateEquipment(ctx context.Context, item Equipment) (Equipment, error)
	GetEquipment(ctx context.Context, id string) (Equipment, error)
	UpdateEquipment(ctx context.Context, item Equipment) (Equipment, error)
	DeleteEquipment(ctx context.Context, id string) error
	ListEquipment(ctx context.Context) ([]Equipment, error)
	CountRoomsUsingEquipment(ctx context.Context, id string) (int, error)
}

// EquipmentService manages the equipment catalogue.
type EquipmentService struct {
	equipment   EquipmentRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
	// onChange is called with no arguments after any mutation so that cached
	// rooms stop serving stale equipment descriptions.
	onChange func()
}

// NewEquipmentService constructs an equipment service with the provided dependencies.
func NewEquipmentService(equipment EquipmentRepository, idGenerator func() string, now func() time.Time) *EquipmentService {
	return NewEquipmentServiceWithLogger(equipment, idGenerator, now, nil)
}

// NewEquipmentServiceWithLogger constructs an equipment service with a specified logger.
func NewEquipmentServiceWithLogger(equipment EquipmentRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EquipmentService {
	if idGenerator == nil {
		idGenerator = newUUID
	}
	if now == nil {
		now = time.Now
	}
	return &EquipmentService{
		equipment:   equipment,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// OnChange registers a callback run after equipment is updated or deleted.
func (s *EquipmentService) OnChange(fn func()) {
	s.onChange = fn
}

func (s *EquipmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EquipmentService", operation, attrs...)
}

func (s *EquipmentService) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ListEquipment returns the catalogue in creation order.
func (s *EquipmentService) ListEquipment(ctx context.Context) (items []Equipment, err error) {
	if s == nil {
		return nil, fmt.Errorf("EquipmentService is nil")
	}
	if s.equipment == nil {
		return []Equipment{}, nil
	}

	logger := s.loggerWith(ctx, "ListEquipment")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list equipment", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	items, err = s.equipment.ListEquipment(ctx)
	if err != nil {
		return nil, wrapStorageError(err)
	}
	return items, nil
}

// GetEquipment returns a single item or ErrNotFound.
func (s *EquipmentService) GetEquipment(ctx context.Context, id string) (item Equipment, err error) {
	if s == nil {
		err = fmt.Errorf("EquipmentService is nil")
		return
	}
	if s.equipment == nil {
		err = ErrNotFound
		return
	}

	item, err = s.equipment.GetEquipment(ctx, id)
	if err != nil {
		err = mapEquipmentRepoError(err)
	}
	return
}

// CreateEquipment validates input and adds an item for administrators.
func (s *EquipmentService) CreateEquipment(ctx context.Context, params CreateEquipmentParams) (item Equipment, err error) {
	if s == nil {
		err = fmt.Errorf("EquipmentService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEquipment", "principal", params.Principal.Subject)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create equipment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "equipment created", "equipment_id", item.ID)
	}()

	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}

	input := normalizeEquipmentInput(params.Input)
	if vErr := validateFields(equipmentFields(input)); vErr.HasErrors() {
		err = vErr
		return
	}

	now := s.now()
	item = Equipment{
		ID:          s.idGenerator(),
		Name:        input.Name,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if s.equipment == nil {
		return
	}

	item, err = s.equipment.CreateEquipment(ctx, item)
	if err != nil {
		err = mapEquipmentRepoError(err)
	}
	return
}

// UpdateEquipment validates input and updates an existing item for administrators.
func (s *EquipmentService) UpdateEquipment(ctx context.Context, params UpdateEquipmentParams) (item Equipment, err error) {
	if s == nil {
		err = fmt.Errorf("EquipmentService is nil")
		return
	}
	if !params.Principal.IsAdmin {
		err = ErrUnauthorized
		return
	}
	if s.equipment == nil {
		err = fmt.Errorf("equipment repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateEquipment",
		"principal", params.Principal.Subject,
		"equipment_id", params.EquipmentID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update equipment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "equipment updated")
	}()

	var existing Equipment
	existing, err = s.equipment.GetEquipment(ctx, params.EquipmentID)
	if err != nil {
		err = mapEquipmentRepoError(err)
		return
	}

	input := normalizeEquipmentInput(params.Input)
	if vErr := validateFields(equipmentFields(input)); vErr.HasErrors() {
		err = vErr
		return
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.UpdatedAt = s.now()

	item, err = s.equipment.UpdateEquipment(ctx, existing)
	if err != nil {
		err = mapEquipmentRepoError(err)
		return
	}
	s.changed()
	return
}

// DeleteEquipment removes an item that no room references.
func (s *EquipmentService) DeleteEquipment(ctx context.Context, principal Principal, id string) (err error) {
	if s == nil {
		return fmt.Errorf("EquipmentService is nil")
	}
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if s.equipment == nil {
		return fmt.Errorf("equipment repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteEquipment",
		"principal", principal.Subject,
		"equipment_id", id,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete equipment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "equipment deleted")
	}()

	count, err := s.equipment.CountRoomsUsingEquipment(ctx, id)
	if err != nil {
		return wrapStorageError(err)
	}
	if count > 0 {
		return ErrEquipmentInUse
	}

	if err = s.equipment.DeleteEquipment(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrForeignKeyViolation) {
			return ErrEquipmentInUse
		}
		return mapEquipmentRepoError(err)
	}
	s.changed()
	return nil
}

func normalizeEquipmentInput(input EquipmentInput) EquipmentInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	return input
}

func mapEquipmentRepoError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	}
	return wrapStorageError(err)
}
