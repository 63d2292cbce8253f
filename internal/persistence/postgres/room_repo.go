package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/example/room-reservations/internal/persistence"
)

type roomRepository struct {
	DB *sql.DB
}

// NewRoomRepository returns a persistence.RoomRepository implemented with Postgres.
func NewRoomRepository(db *sql.DB) persistence.RoomRepository {
	return &roomRepository{DB: db}
}

func (r *roomRepository) CreateRoom(ctx context.Context, room persistence.Room) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO rooms (id, name, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
			room.ID, room.Name, room.Capacity, room.CreatedAt, room.UpdatedAt)
		if err != nil {
			return err
		}
		return insertEquipment(ctx, tx, room.ID, room.EquipmentIDs)
	})
}

func (r *roomRepository) UpdateRoom(ctx context.Context, room persistence.Room) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE rooms SET name = $1, capacity = $2, updated_at = $3 WHERE id = $4`,
			room.Name, room.Capacity, room.UpdatedAt, room.ID)
		if err != nil {
			return err
		}
		if err := rowsAffected(result); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM room_equipment WHERE room_id = $1`, room.ID); err != nil {
			return err
		}
		return insertEquipment(ctx, tx, room.ID, room.EquipmentIDs)
	})
}

func (r *roomRepository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return mapError(err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return mapError(err)
	}
	return mapError(tx.Commit())
}

func insertEquipment(ctx context.Context, tx *sql.Tx, roomID string, equipmentIDs []string) error {
	for position, equipmentID := range equipmentIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO room_equipment (room_id, equipment_id, position) VALUES ($1, $2, $3)`,
			roomID, equipmentID, position); err != nil {
			return err
		}
	}
	return nil
}

func (r *roomRepository) GetRoom(ctx context.Context, id string) (persistence.Room, error) {
	var room persistence.Room
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return persistence.Room{}, mapError(err)
	}

	equipment, err := r.equipmentFor(ctx, []string{id})
	if err != nil {
		return persistence.Room{}, err
	}
	room.EquipmentIDs = equipment[id]
	return room, nil
}

func (r *roomRepository) ListRooms(ctx context.Context) ([]persistence.Room, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY seq`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rooms []persistence.Room
	var ids []string
	for rows.Next() {
		var room persistence.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, mapError(err)
		}
		rooms = append(rooms, room)
		ids = append(ids, room.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	if len(rooms) == 0 {
		return rooms, nil
	}

	equipment, err := r.equipmentFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		rooms[i].EquipmentIDs = equipment[rooms[i].ID]
	}
	return rooms, nil
}

func (r *roomRepository) equipmentFor(ctx context.Context, roomIDs []string) (map[string][]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT room_id, equipment_id FROM room_equipment WHERE room_id = ANY($1) ORDER BY room_id, position`,
		pq.Array(roomIDs))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var roomID, equipmentID string
		if err := rows.Scan(&roomID, &equipmentID); err != nil {
			return nil, mapError(err)
		}
		out[roomID] = append(out[roomID], equipmentID)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (r *roomRepository) DeleteRoom(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	return rowsAffected(result)
}
