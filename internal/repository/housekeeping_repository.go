package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// HousekeepingRepo persists the follow-up work items raised when rooms
// enter cleaning or maintenance.
type HousekeepingRepo struct {
	db *sql.DB
}

func NewHousekeepingRepo(db *sql.DB) *HousekeepingRepo { return &HousekeepingRepo{db: db} }

// CreateTx inserts a task inside the room-status transaction and
// populates its ID.
func (r *HousekeepingRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.HousekeepingTask) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO housekeeping_tasks (hotel_id, room_id, kind, priority, estimated_minutes, status, created_by)
		 VALUES (?, ?, ?, ?, ?, 'open', ?)`,
		t.HotelID, t.RoomID, t.Kind, t.Priority, t.EstimatedMinutes, t.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = "open"
	return nil
}

// ListOpen returns the hotel's open tasks, highest priority first.
func (r *HousekeepingRepo) ListOpen(ctx context.Context, hotelID uint64) ([]model.HousekeepingTask, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, hotel_id, room_id, kind, priority, estimated_minutes, status, created_by, created_at
		 FROM housekeeping_tasks WHERE hotel_id = ? AND status = 'open'
		 ORDER BY FIELD(priority, 'high', 'normal'), id`, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.HousekeepingTask, 0)
	for rows.Next() {
		var t model.HousekeepingTask
		if err := rows.Scan(&t.ID, &t.HotelID, &t.RoomID, &t.Kind, &t.Priority,
			&t.EstimatedMinutes, &t.Status, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// MarkDone closes a task.
func (r *HousekeepingRepo) MarkDone(ctx context.Context, hotelID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE housekeeping_tasks SET status = 'done' WHERE id = ? AND hotel_id = ? AND status = 'open'`,
		id, hotelID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
