package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/room-reservations/internal/persistence"
)

// RoomRepository implements persistence.RoomRepository using SQLite.
type RoomRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewRoomRepository creates a new SQLite room repository.
func NewRoomRepository(pool *ConnectionPool) *RoomRepository {
	return &RoomRepository{
		pool:   pool,
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
	}
}

// CreateRoom inserts a room and its ordered equipment list.
func (r *RoomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO rooms (id, name, capacity, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?)`,
				room.ID,
				room.Name,
				room.Capacity,
				formatTime(room.CreatedAt),
				formatTime(room.UpdatedAt),
			)
			if err != nil {
				return err
			}
			return insertRoomEquipment(ctx, tx, room.ID, room.EquipmentIDs)
		})
	})
}

// UpdateRoom replaces the room's attributes and equipment list.
func (r *RoomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	if room.ID == "" || room.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			result, err := tx.ExecContext(ctx, `
				UPDATE rooms
				SET name = ?, capacity = ?, updated_at = ?
				WHERE id = ?`,
				room.Name,
				room.Capacity,
				formatTime(room.UpdatedAt),
				room.ID,
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

			if _, err := tx.ExecContext(ctx, `DELETE FROM room_equipment WHERE room_id = ?`, room.ID); err != nil {
				return err
			}
			return insertRoomEquipment(ctx, tx, room.ID, room.EquipmentIDs)
		})
	})
}

func insertRoomEquipment(ctx context.Context, tx *sql.Tx, roomID string, equipmentIDs []string) error {
	for position, equipmentID := range equipmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_equipment (room_id, equipment_id, position) VALUES (?, ?, ?)`,
			roomID, equipmentID, position,
		); err != nil {
			return err
		}
	}
	return nil
}

// GetRoom retrieves a room by ID.
func (r *RoomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	if id == "" {
		return persistence.Room{}, persistence.ErrNotFound
	}

	var room persistence.Room
	err := r.retry.WithRetry(ctx, func() error {
		var createdAt, updatedAt string
		err := r.pool.db.QueryRowContext(ctx, `
			SELECT id, name, capacity, created_at, updated_at
			FROM rooms
			WHERE id = ?`, id,
		).Scan(&room.ID, &room.Name, &room.Capacity, &createdAt, &updatedAt)
		if err != nil {
			return err
		}
		if room.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
			return err
		}
		if room.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
			return err
		}

		equipment, err := loadRoomEquipment(ctx, r.pool.db, `WHERE room_id = ?`, id)
		if err != nil {
			return err
		}
		room.EquipmentIDs = equipment[id]
		return nil
	})
	if err != nil {
		return persistence.Room{}, err
	}
	return room, nil
}

// ListRooms returns all rooms in creation order.
func (r *RoomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	var rooms []persistence.Room
	err := r.retry.WithRetry(ctx, func() error {
		rooms = rooms[:0]

		rows, err := r.pool.db.QueryContext(ctx, `
			SELECT id, name, capacity, created_at, updated_at
			FROM rooms
			ORDER BY rowid`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var room persistence.Room
			var createdAt, updatedAt string
			if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &createdAt, &updatedAt); err != nil {
				return err
			}
			if room.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
				return err
			}
			if room.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
				return err
			}
			rooms = append(rooms, room)
		}
		if err := rows.Err(); err != nil {
			return err
		}

		equipment, err := loadRoomEquipment(ctx, r.pool.db, "")
		if err != nil {
			return err
		}
		for i := range rooms {
			rooms[i].EquipmentIDs = equipment[rooms[i].ID]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func loadRoomEquipment(ctx context.Context, q querier, where string, args ...any) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT room_id, equipment_id FROM room_equipment `+where+` ORDER BY room_id, position`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var roomID, equipmentID string
		if err := rows.Scan(&roomID, &equipmentID); err != nil {
			return nil, err
		}
		out[roomID] = append(out[roomID], equipmentID)
	}
	return out, rows.Err()
}

// DeleteRoom removes a room. Rooms with reservations are protected by a
// foreign key and yield persistence.ErrForeignKeyViolation.
func (r *RoomRepository) DeleteRoom(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.retry.WithRetry(ctx, func() error {
		result, err := r.pool.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
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
