package postgres

import (
	"context"
	"database/sql"

	"github.com/example/room-reservations/internal/persistence"
)

type equipmentRepository struct {
	DB *sql.DB
}

// NewEquipmentRepository returns a persistence.EquipmentRepository implemented with Postgres.
func NewEquipmentRepository(db *sql.DB) persistence.EquipmentRepository {
	return &equipmentRepository{DB: db}
}

func (r *equipmentRepository) CreateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO equipment (id, name, description, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		equipment.ID, equipment.Name, equipment.Description, equipment.CreatedAt, equipment.UpdatedAt)
	return mapError(err)
}

func (r *equipmentRepository) UpdateEquipment(ctx context.Context, equipment persistence.Equipment) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE equipment SET name = $1, description = $2, updated_at = $3 WHERE id = $4`,
		equipment.Name, equipment.Description, equipment.UpdatedAt, equipment.ID)
	if err != nil {
		return mapError(err)
	}
	return rowsAffected(result)
}

func (r *equipmentRepository) GetEquipment(ctx context.Context, id string) (persistence.Equipment, error) {
	var item persistence.Equipment
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM equipment WHERE id = $1`, id,
	).Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return persistence.Equipment{}, mapError(err)
	}
	return item, nil
}

func (r *equipmentRepository) ListEquipment(ctx context.Context) ([]persistence.Equipment, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM equipment ORDER BY seq`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var items []persistence.Equipment
	for rows.Next() {
		var item persistence.Equipment
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return items, nil
}

func (r *equipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return rowsAffected(result)
}

func (r *equipmentRepository) CountRoomsUsingEquipment(ctx context.Context, equipmentID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_equipment WHERE equipment_id = $1`, equipmentID).Scan(&count)
	return count, mapError(err)
}
