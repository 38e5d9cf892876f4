package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// RoomRepo provides persistence for physical rooms.  Status changes that
// participate in a larger operation (check-in, transfer, checkout) use
// the ...Tx variants so every row mutation commits or aborts together.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, hotel_id, room_type_id, room_number, status, base_price_paise, is_active, created_at, updated_at`

func scanRoom(row interface{ Scan(...interface{}) error }) (*model.Room, error) {
	var rm model.Room
	err := row.Scan(&rm.ID, &rm.HotelID, &rm.RoomTypeID, &rm.Number, &rm.Status,
		&rm.BasePricePaise, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &rm, nil
}

// Create inserts a room and populates its generated ID.  The room number
// is unique per hotel; a duplicate returns a ConflictError.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO rooms (hotel_id, room_type_id, room_number, status, base_price_paise, is_active)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rm.HotelID, rm.RoomTypeID, rm.Number, rm.Status, rm.BasePricePaise, rm.IsActive)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return Conflictf("room number %s already exists", rm.Number)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// GetByID loads one room scoped to the hotel.
func (r *RoomRepo) GetByID(ctx context.Context, hotelID, id uint64) (*model.Room, error) {
	return scanRoom(r.db.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ? AND hotel_id = ?`, id, hotelID))
}

// GetForUpdateTx loads one room with a row lock so that two concurrent
// operations on the same room serialize at the datastore.
func (r *RoomRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, hotelID, id uint64) (*model.Room, error) {
	return scanRoom(tx.QueryRowContext(ctx,
		`SELECT `+roomColumns+` FROM rooms WHERE id = ? AND hotel_id = ? FOR UPDATE`, id, hotelID))
}

// ListByHotel returns the hotel's active rooms, optionally filtered by
// status, ordered by room number.
func (r *RoomRepo) ListByHotel(ctx context.Context, hotelID uint64, status state.RoomStatus) ([]model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE hotel_id = ? AND is_active = 1`
	args := []interface{}{hotelID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY room_number`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// UpdateStatusTx moves the room to a new status within the transaction.
// Transition validity is checked by the caller against the state table;
// this method only persists.
func (r *RoomRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to state.RoomStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE rooms SET status = ? WHERE id = ?`, to, id)
	return err
}

// ActiveStayCountTx counts checked-in assignments on the room.  Used to
// refuse moving a room out of occupied while a guest is still in it.
func (r *RoomRepo) ActiveStayCountTx(ctx context.Context, tx *sql.Tx, roomID uint64) (int, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM room_assignments WHERE room_id = ? AND status = 'checked_in'`,
		roomID).Scan(&n)
	return n, err
}
