package sqlite

import (
	"context"
	"fmt"

	"github.com/example/room-reservations/internal/persistence"
)

// EquipmentRepository implements persistence.EquipmentRepository using SQLite.
type EquipmentRepository struct {
	pool  *ConnectionPool
	retry *RetryHelper
}

// NewEquipmentRepository creates a new SQLite equipment repository.
func NewEquipmentRepository(pool *ConnectionPool) *EquipmentRepository {
	return &EquipmentRepository{pool: pool, retry: NewRetryHelper(DefaultRetryConfig())}
}

// CreateEquipment inserts a new equipment item.
func (r *EquipmentRepository) CreateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	if equipment.ID == "" {
		return persistence.ErrConstraintViolation
	}
	return r.retry.WithRetry(ctx, func() error {
		_, err := r.pool.db.ExecContext(ctx, `
			INSERT INTO equipment (id, name, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)`,
			equipment.ID,
			equipment.Name,
			equipment.Description,
			formatTime(equipment.CreatedAt),
			formatTime(equipment.UpdatedAt),
		)
		return err
	})
}

// UpdateEquipment updates name and description of an existing item.
func (r *EquipmentRepository) UpdateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, `
			UPDATE equipment SET name = ?, description = ?, updated_at = ?
			WHERE id = ?`,
			equipment.Name,
			equipment.Description,
			formatTime(equipment.UpdatedAt),
			equipment.ID,
		)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// GetEquipment retrieves an equipment item by ID.
func (r *EquipmentRepository) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	var equipment persistence.Equipment
	err := r.retry.WithRetry(ctx, func() error {
		var createdAt, updatedAt string
		err := r.pool.db.QueryRowContext(ctx, `
			SELECT id, name, description, created_at, updated_at
			FROM equipment WHERE id = ?`, id,
		).Scan(&equipment.ID, &equipment.Name, &equipment.Description, &createdAt, &updatedAt)
		if err != nil {
			return err
		}
		if equipment.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return err
		}
		equipment.UpdatedAt, err = parseTime("updated_at", updatedAt)
		return err
	})
	if err != nil {
		return persistence.Equipment{}, err
	}
	return equipment, nil
}

// ListEquipment returns all equipment in creation order.
func (r *EquipmentRepository) ListEquipment(ctx context.Context) ([]persistence.Equipment, error) {
	var items []persistence.Equipment
	err := r.retry.WithRetry(ctx, func() error {
		items = items[:0]

		rows, err := r.pool.db.QueryContext(ctx, `
			SELECT id, name, description, created_at, updated_at
			FROM equipment ORDER BY rowid`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var item persistence.Equipment
			var createdAt, updatedAt string
			if err := rows.Scan(&item.ID, &item.Name, &item.Description, &createdAt, &updatedAt); err != nil {
				return err
			}
			if item.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
				return err
			}
			if item.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
				return err
			}
			items = append(items, item)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// DeleteEquipment removes an equipment item. Installed items are protected by
// a foreign key and yield persistence.ErrForeignKeyViolation.
func (r *EquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// CountRoomsUsingEquipment reports how many rooms list the equipment item.
func (r *EquipmentRepository) CountRoomsUsingEquipment(ctx context.Context, equipmentID string) (int, error) {
	var count int
	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM room_equipment WHERE equipment_id = ?`, equipmentID,
		).Scan(&count)
	})
	return count, err
}
