package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// BookingRepo provides persistence for bookings.  Booking creation,
// cancellation and status changes always run inside a caller-owned
// transaction together with the assignment, room and ledger writes they
// belong to.
type BookingRepo struct {
	db *sql.DB
}

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// NewBookingNumber generates a human-readable unique booking number like
// BK-20250110-3F2A9C.  Uniqueness is additionally enforced by the unique
// index on bookings.booking_number.
func NewBookingNumber(now time.Time) (string, error) {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "BK-" + now.UTC().Format("20060102") + "-" + strings.ToUpper(hex.EncodeToString(b)), nil
}

const bookingColumns = `id, hotel_id, booking_number, guest_id, staff_id, status, arrival_type, meal_plan,
	adults, children, extra_pax, special_requests, cancel_reason, cancelled_by, cancelled_at, created_at, updated_at`

func scanBooking(row interface{ Scan(...interface{}) error }) (*model.Booking, error) {
	var b model.Booking
	var special, reason sql.NullString
	var cancelledBy sql.NullInt64
	var cancelledAt sql.NullTime
	err := row.Scan(&b.ID, &b.HotelID, &b.Number, &b.GuestID, &b.StaffID, &b.Status,
		&b.ArrivalType, &b.MealPlan, &b.Adults, &b.Children, &b.ExtraPax,
		&special, &reason, &cancelledBy, &cancelledAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	if special.Valid {
		s := special.String
		b.SpecialRequests = &s
	}
	if reason.Valid {
		s := reason.String
		b.CancelReason = &s
	}
	if cancelledBy.Valid {
		v := uint64(cancelledBy.Int64)
		b.CancelledBy = &v
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	return &b, nil
}

// CreateTx inserts a booking within the transaction and populates its
// generated ID.  A duplicate booking number returns a ConflictError.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (hotel_id, booking_number, guest_id, staff_id, status, arrival_type, meal_plan, adults, children, extra_pax, special_requests)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.HotelID, b.Number, b.GuestID, b.StaffID, b.Status, b.ArrivalType, b.MealPlan,
		b.Adults, b.Children, b.ExtraPax, b.SpecialRequests)
	if err != nil {
		if strings.Contains(err.Error(), "1062") {
			return Conflictf("booking number %s already exists", b.Number)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// GetByID loads one booking scoped to the hotel.
func (r *BookingRepo) GetByID(ctx context.Context, hotelID, id uint64) (*model.Booking, error) {
	return scanBooking(r.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND hotel_id = ?`, id, hotelID))
}

// GetForUpdateTx loads one booking with a row lock.  Every multi-step
// operation (check-in, checkout, transfer, cancel) starts here so that
// concurrent operations on the same booking serialize.
func (r *BookingRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, hotelID, id uint64) (*model.Booking, error) {
	return scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ? AND hotel_id = ? FOR UPDATE`, id, hotelID))
}

// UpdateStatusTx persists a booking status change.  Transition validity
// is the caller's responsibility.
func (r *BookingRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to state.BookingStatus) error {
	_, err := tx.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, to, id)
	return err
}

// CancelTx marks the booking cancelled and records who, why and when.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, id uint64, reason string, actorID uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE bookings SET status = 'cancelled', cancel_reason = ?, cancelled_by = ?, cancelled_at = ? WHERE id = ?`,
		reason, actorID, at.UTC(), id)
	return err
}

// ListByHotel returns the hotel's bookings newest first, optionally
// filtered by status.
func (r *BookingRepo) ListByHotel(ctx context.Context, hotelID uint64, status state.BookingStatus, limit int) ([]model.Booking, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE hotel_id = ?`
	args := []interface{}{hotelID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
