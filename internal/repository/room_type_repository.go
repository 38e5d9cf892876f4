package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// RoomTypeRepo persists room types.  A room type's price change only
// touches existing rooms when the caller explicitly requests a sync.
type RoomTypeRepo struct {
	db *sql.DB
}

func NewRoomTypeRepo(db *sql.DB) *RoomTypeRepo { return &RoomTypeRepo{db: db} }

const roomTypeColumns = `id, hotel_id, code, name, base_price_paise, capacity, created_at, updated_at`

func scanRoomType(row interface{ Scan(...interface{}) error }) (*model.RoomType, error) {
	var rt model.RoomType
	err := row.Scan(&rt.ID, &rt.HotelID, &rt.Code, &rt.Name, &rt.BasePricePaise,
		&rt.Capacity, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &rt, nil
}

// Create inserts a room type and populates its ID.
func (r *RoomTypeRepo) Create(ctx context.Context, rt *model.RoomType) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO room_types (hotel_id, code, name, base_price_paise, capacity) VALUES (?, ?, ?, ?, ?)`,
		rt.HotelID, rt.Code, rt.Name, rt.BasePricePaise, rt.Capacity)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return Conflictf("room type code %s already exists", rt.Code)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rt.ID = uint64(id)
	return nil
}

// GetByID loads one room type scoped to the hotel.
func (r *RoomTypeRepo) GetByID(ctx context.Context, hotelID, id uint64) (*model.RoomType, error) {
	return scanRoomType(r.db.QueryRowContext(ctx,
		`SELECT `+roomTypeColumns+` FROM room_types WHERE id = ? AND hotel_id = ?`, id, hotelID))
}

// List returns the hotel's room types ordered by code.
func (r *RoomTypeRepo) List(ctx context.Context, hotelID uint64) ([]model.RoomType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+roomTypeColumns+` FROM room_types WHERE hotel_id = ? ORDER BY code`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomType, 0)
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}

// UpdatePrice changes the room type's base price.  When syncRooms is
// true the new price snapshot is pushed onto the type's rooms as well;
// existing assignments keep their own rate snapshot either way.
func (r *RoomTypeRepo) UpdatePrice(ctx context.Context, hotelID, id uint64, pricePaise int64, syncRooms bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		`UPDATE room_types SET base_price_paise = ? WHERE id = ? AND hotel_id = ?`,
		pricePaise, id, hotelID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if syncRooms {
		if _, err := tx.ExecContext(ctx,
			`UPDATE rooms SET base_price_paise = ? WHERE room_type_id = ? AND hotel_id = ?`,
			pricePaise, id, hotelID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
