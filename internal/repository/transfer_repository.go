package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// TransferRepo persists room transfer records.
type TransferRepo struct {
	db *sql.DB
}

func NewTransferRepo(db *sql.DB) *TransferRepo { return &TransferRepo{db: db} }

// CreateTx writes the transfer record inside the transfer transaction
// and populates its ID.
func (r *TransferRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.TransferRecord) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO room_transfers (booking_id, from_room_id, to_room_id, reason, staff_id, transferred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.BookingID, t.FromRoomID, t.ToRoomID, t.Reason, t.StaffID, t.TransferredAt.UTC())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

// ListByBooking returns a booking's transfers oldest first.
func (r *TransferRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.TransferRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, booking_id, from_room_id, to_room_id, reason, staff_id, transferred_at
		 FROM room_transfers WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TransferRecord, 0)
	for rows.Next() {
		var t model.TransferRecord
		if err := rows.Scan(&t.ID, &t.BookingID, &t.FromRoomID, &t.ToRoomID,
			&t.Reason, &t.StaffID, &t.TransferredAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
