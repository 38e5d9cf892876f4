package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

var breakdownCols = []string{
	"booking_id", "base_total_paise", "adjustment_paise", "late_fee_paise", "tax_lines",
	"total_tax_paise", "grand_total_paise",
	"advance_cash_paise", "advance_card_paise", "advance_upi_paise", "advance_bank_paise",
	"receipt_cash_paise", "receipt_card_paise", "receipt_upi_paise", "receipt_bank_paise",
	"outstanding_paise", "updated_at",
}

func TestScheduledDeparture(t *testing.T) {
	out := day("2026-01-14")
	a := &model.RoomAssignment{CheckOutDate: out}
	assert.Equal(t, time.Date(2026, 1, 14, 11, 0, 0, 0, time.UTC), scheduledDeparture(a))

	expected := time.Date(2026, 1, 14, 9, 30, 0, 0, time.UTC)
	a.ExpectedOutAt = &expected
	assert.Equal(t, expected, scheduledDeparture(a))
}

func TestCheckOutLateFeeSettlesLedger(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM bookings WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 1, "BK-20260110-AB12CD", 2, 7, "checked_in", "walk_in", "EP",
				2, 0, 0, nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments WHERE booking_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"checked_in", 250000, 4, 1000000, now, nil, now, now))
	mock.ExpectExec(`UPDATE room_assignments SET status = 'checked_out', actual_check_out = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "occupied", 250000, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("available", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO housekeeping_tasks`).
		WithArgs(1, 11, "cleaning", "normal", 30, 7).
		WillReturnResult(sqlmock.NewResult(61, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM payment_breakdowns WHERE booking_id = \? FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(breakdownCols).
			AddRow(5, 1000000, 0, 0, []byte(`[{"name":"GST","percent":12,"amount":120000}]`),
				120000, 1120000, 200000, 0, 0, 0, 0, 0, 0, 0, 920000, now))
	// 2h30m past the 11:00 house checkout: 90 min beyond grace -> two
	// started hours -> 20000 paise fee folded into the grand total.
	mock.ExpectExec(`UPDATE payment_breakdowns SET`).
		WithArgs(1000000, 0, 20000, sqlmock.AnyArg(), 120000, 1140000,
			200000, 0, 0, 0, 0, 0, 0, 0, 940000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).
		WithArgs("checked_out", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "booking.checkout", "booking", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/checkout",
		`{"at":"2026-01-14T13:30:00Z"}`, "id", "5")
	require.NoError(t, h.CheckOut(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"status":"checked_out"`)
	assert.Contains(t, body, `"late_fee_paise":20000`)
	assert.Contains(t, body, `"late_minutes":150`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A confirmed booking whose arrival was never recorded is still checked
// out normally: the late fee applies and the room is released.
func TestCheckOutConfirmedWithoutRecordedArrival(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM bookings WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 1, "BK-20260110-AB12CD", 2, 7, "confirmed", "walk_in", "EP",
				2, 0, 0, nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments WHERE booking_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"reserved", 250000, 4, 1000000, nil, nil, now, now))
	mock.ExpectExec(`UPDATE room_assignments SET status = 'checked_out', actual_check_out = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "reserved", 250000, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("available", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO housekeeping_tasks`).
		WithArgs(1, 11, "cleaning", "normal", 30, 7).
		WillReturnResult(sqlmock.NewResult(61, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM payment_breakdowns WHERE booking_id = \? FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(breakdownCols).
			AddRow(5, 1000000, 0, 0, []byte(`[{"name":"GST","percent":12,"amount":120000}]`),
				120000, 1120000, 200000, 0, 0, 0, 0, 0, 0, 0, 920000, now))
	mock.ExpectExec(`UPDATE payment_breakdowns SET`).
		WithArgs(1000000, 0, 20000, sqlmock.AnyArg(), 120000, 1140000,
			200000, 0, 0, 0, 0, 0, 0, 0, 940000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).
		WithArgs("checked_out", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "booking.checkout", "booking", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/checkout",
		`{"at":"2026-01-14T13:30:00Z"}`, "id", "5")
	require.NoError(t, h.CheckOut(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"status":"checked_out"`)
	assert.Contains(t, body, `"late_fee_paise":20000`)
	assert.Contains(t, body, `"no_show":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A no-show closeout stamps arrival equal to departure, waives the fee
// and keeps the room out of the housekeeping queue.
func TestCheckOutNoShowWaivesFee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM bookings WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 1, "BK-20260110-AB12CD", 2, 7, "confirmed", "walk_in", "EP",
				2, 0, 0, nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments WHERE booking_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"reserved", 250000, 4, 1000000, nil, nil, now, now))
	mock.ExpectExec(`UPDATE room_assignments SET status = 'checked_out', actual_check_in = \?, actual_check_out = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "reserved", 250000, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("available", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM payment_breakdowns WHERE booking_id = \? FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(breakdownCols).
			AddRow(5, 1000000, 0, 0, []byte(`[{"name":"GST","percent":12,"amount":120000}]`),
				120000, 1120000, 200000, 0, 0, 0, 0, 0, 0, 0, 920000, now))
	mock.ExpectExec(`UPDATE payment_breakdowns SET`).
		WithArgs(1000000, 0, 0, sqlmock.AnyArg(), 120000, 1120000,
			200000, 0, 0, 0, 0, 0, 0, 0, 920000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE bookings SET status = \? WHERE id = \?`).
		WithArgs("checked_out", 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "booking.checkout", "booking", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/checkout",
		`{"at":"2026-01-14T13:30:00Z","no_show":true}`, "id", "5")
	require.NoError(t, h.CheckOut(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"no_show":true`)
	assert.Contains(t, body, `"late_fee_paise":0`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// One room of a two-room booking leaves late: its fee lands on the
// ledger immediately while the sibling stay keeps the booking open.
func TestCheckOutPartialDeparturePersistsFee(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM bookings WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 1, "BK-20260110-AB12CD", 2, 7, "checked_in", "walk_in", "EP",
				2, 0, 0, nil, nil, nil, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments WHERE booking_id = \? ORDER BY id FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"checked_in", 250000, 4, 1000000, now, nil, now, now).
			AddRow(22, 5, 12, day("2026-01-10"), day("2026-01-16"), nil, nil,
				"checked_in", 250000, 6, 1500000, now, nil, now, now))
	mock.ExpectExec(`UPDATE room_assignments SET status = 'checked_out', actual_check_out = \? WHERE id = \?`).
		WithArgs(sqlmock.AnyArg(), 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "occupied", 250000, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("available", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO housekeeping_tasks`).
		WithArgs(1, 11, "cleaning", "normal", 30, 7).
		WillReturnResult(sqlmock.NewResult(61, 1))
	mock.ExpectQuery(`(?s)SELECT .+ FROM payment_breakdowns WHERE booking_id = \? FOR UPDATE`).
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows(breakdownCols).
			AddRow(5, 2500000, 0, 0, []byte(`[{"name":"GST","percent":12,"amount":300000}]`),
				300000, 2800000, 500000, 0, 0, 0, 0, 0, 0, 0, 2300000, now))
	// fee persisted without settling: grand and outstanding move by 20000
	mock.ExpectExec(`UPDATE payment_breakdowns SET`).
		WithArgs(2500000, 0, 20000, sqlmock.AnyArg(), 300000, 2820000,
			500000, 0, 0, 0, 0, 0, 0, 0, 2320000, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "booking.checkout", "booking", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(51, 1))
	mock.ExpectCommit()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/checkout",
		`{"room_ids":[11],"at":"2026-01-14T13:30:00Z"}`, "id", "5")
	require.NoError(t, h.CheckOut(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"status":"checked_in"`)
	assert.Contains(t, body, `"late_fee_paise":20000`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckOutRejectsCancelledBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM bookings WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows(bookingCols).
			AddRow(5, 1, "BK-20260110-AB12CD", 2, 7, "cancelled", "walk_in", "EP",
				2, 0, 0, nil, nil, nil, nil, now, now))
	mock.ExpectRollback()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/checkout", `{}`, "id", "5")
	require.NoError(t, h.CheckOut(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
