package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/availability"
	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// AssignmentRepo provides persistence for booking-room assignments.  The
// conflict-candidate query and the subsequent insert must run in the same
// transaction: two bookings racing for the same room both pass the
// overlap check otherwise.  FindConflictCandidatesTx therefore locks the
// candidate rows with FOR UPDATE.
type AssignmentRepo struct {
	db *sql.DB
}

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

const assignmentColumns = `id, booking_id, room_id, check_in_date, check_out_date, expected_in_at, expected_out_at,
	status, rate_paise, expected_nights, room_total_paise, actual_check_in, actual_check_out, created_at, updated_at`

func scanAssignment(row interface{ Scan(...interface{}) error }) (*model.RoomAssignment, error) {
	var a model.RoomAssignment
	var expIn, expOut, actIn, actOut sql.NullTime
	err := row.Scan(&a.ID, &a.BookingID, &a.RoomID, &a.CheckInDate, &a.CheckOutDate,
		&expIn, &expOut, &a.Status, &a.RatePaise, &a.ExpectedNights, &a.RoomTotalPaise,
		&actIn, &actOut, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	if expIn.Valid {
		t := expIn.Time
		a.ExpectedInAt = &t
	}
	if expOut.Valid {
		t := expOut.Time
		a.ExpectedOutAt = &t
	}
	if actIn.Valid {
		t := actIn.Time
		a.ActualCheckIn = &t
	}
	if actOut.Valid {
		t := actOut.Time
		a.ActualCheckOut = &t
	}
	return &a, nil
}

func collectAssignments(rows *sql.Rows) ([]model.RoomAssignment, error) {
	defer rows.Close()
	out := make([]model.RoomAssignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Stay converts an assignment into the availability checker's value type.
func Stay(a *model.RoomAssignment) availability.Stay {
	return availability.Stay{
		CheckIn:  a.CheckInDate,
		CheckOut: a.CheckOutDate,
		InTime:   a.ExpectedInAt,
		OutTime:  a.ExpectedOutAt,
	}
}

// FindConflictCandidatesTx returns the room's active assignments whose
// date range touches the candidate range, locked FOR UPDATE.  The SQL
// range test is closed on both ends (a superset of the half-open overlap
// rule) so that same-day boundary cases reach the time-aware checker in
// Go; callers run availability.Conflicts over the result.
func (r *AssignmentRepo) FindConflictCandidatesTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) ([]model.RoomAssignment, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM room_assignments
		 WHERE room_id = ? AND status IN ('reserved', 'checked_in')
		   AND check_in_date <= ? AND ? <= check_out_date
		 FOR UPDATE`,
		roomID, checkOut.UTC().Format("2006-01-02"), checkIn.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

// FindConflictCandidates is the read-only variant used by the public
// availability endpoint; it takes no locks.
func (r *AssignmentRepo) FindConflictCandidates(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) ([]model.RoomAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM room_assignments
		 WHERE room_id = ? AND status IN ('reserved', 'checked_in')
		   AND check_in_date <= ? AND ? <= check_out_date`,
		roomID, checkOut.UTC().Format("2006-01-02"), checkIn.UTC().Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

// CreateBulkTx inserts the booking's assignments in one statement.  IDs
// are not populated; callers reload via ListByBookingTx when they need
// them.
func (r *AssignmentRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, assignments []model.RoomAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	query := `INSERT INTO room_assignments (booking_id, room_id, check_in_date, check_out_date, expected_in_at, expected_out_at, status, rate_paise, expected_nights, room_total_paise) VALUES `
	args := make([]interface{}, 0, len(assignments)*10)
	for i, a := range assignments {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args, a.BookingID, a.RoomID,
			a.CheckInDate.UTC().Format("2006-01-02"), a.CheckOutDate.UTC().Format("2006-01-02"),
			a.ExpectedInAt, a.ExpectedOutAt, a.Status, a.RatePaise, a.ExpectedNights, a.RoomTotalPaise)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ListByBooking returns the booking's assignments ordered by id.
func (r *AssignmentRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.RoomAssignment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM room_assignments WHERE booking_id = ? ORDER BY id`, bookingID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

// ListByBookingTx returns the booking's assignments inside the
// transaction, locked FOR UPDATE.
func (r *AssignmentRepo) ListByBookingTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]model.RoomAssignment, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM room_assignments WHERE booking_id = ? ORDER BY id FOR UPDATE`, bookingID)
	if err != nil {
		return nil, err
	}
	return collectAssignments(rows)
}

// GetByBookingAndRoomTx loads the single active assignment linking a
// booking to a room, locked FOR UPDATE.
func (r *AssignmentRepo) GetByBookingAndRoomTx(ctx context.Context, tx *sql.Tx, bookingID, roomID uint64) (*model.RoomAssignment, error) {
	return scanAssignment(tx.QueryRowContext(ctx,
		`SELECT `+assignmentColumns+` FROM room_assignments
		 WHERE booking_id = ? AND room_id = ? AND status IN ('reserved', 'checked_in')
		 FOR UPDATE`, bookingID, roomID))
}

// StampCheckInTx moves an assignment to checked_in and records the actual
// arrival time.
func (r *AssignmentRepo) StampCheckInTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE room_assignments SET status = 'checked_in', actual_check_in = ? WHERE id = ?`,
		at.UTC(), id)
	return err
}

// StampCheckOutTx moves an assignment to checked_out and records the
// actual departure.  For a no-show (never arrived) the arrival is set to
// the departure time so the stay still appears in checkout reporting,
// distinct from a pre-arrival cancellation.
func (r *AssignmentRepo) StampCheckOutTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time, noShow bool) error {
	at = at.UTC()
	if noShow {
		_, err := tx.ExecContext(ctx,
			`UPDATE room_assignments SET status = 'checked_out', actual_check_in = ?, actual_check_out = ? WHERE id = ?`,
			at, at, id)
		return err
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE room_assignments SET status = 'checked_out', actual_check_out = ? WHERE id = ?`,
		at, id)
	return err
}

// RepointRoomTx moves an in-progress assignment onto a different room.
// The transfer record, not the assignment, carries the history.
func (r *AssignmentRepo) RepointRoomTx(ctx context.Context, tx *sql.Tx, id, newRoomID uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE room_assignments SET room_id = ? WHERE id = ?`, newRoomID, id)
	return err
}

// CancelReservedTx cancels every still-reserved assignment of a booking
// and returns the room IDs that were released.
func (r *AssignmentRepo) CancelReservedTx(ctx context.Context, tx *sql.Tx, bookingID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT room_id FROM room_assignments WHERE booking_id = ? AND status = 'reserved' FOR UPDATE`, bookingID)
	if err != nil {
		return nil, err
	}
	var roomIDs []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		roomIDs = append(roomIDs, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if len(roomIDs) == 0 {
		return roomIDs, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE room_assignments SET status = 'cancelled' WHERE booking_id = ? AND status = 'reserved'`, bookingID)
	return roomIDs, err
}
