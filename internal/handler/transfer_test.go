package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/checkout"
	"github.com/iliyamo/hotel-booking-engine/internal/config"
	"github.com/iliyamo/hotel-booking-engine/internal/ledger"
	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

var bookingCols = []string{
	"id", "hotel_id", "booking_number", "guest_id", "staff_id", "status",
	"arrival_type", "meal_plan", "adults", "children", "extra_pax",
	"special_requests", "cancel_reason", "cancelled_by", "cancelled_at",
	"created_at", "updated_at",
}

var assignmentCols = []string{
	"id", "booking_id", "room_id", "check_in_date", "check_out_date",
	"expected_in_at", "expected_out_at", "status", "rate_paise",
	"expected_nights", "room_total_paise", "actual_check_in", "actual_check_out",
	"created_at", "updated_at",
}

var roomCols = []string{
	"id", "hotel_id", "room_type_id", "room_number", "status",
	"base_price_paise", "is_active", "created_at", "updated_at",
}

func testConfig() config.Config {
	return config.Config{
		HotelID:     1,
		TaxRates:    []ledger.TaxRate{{Name: "GST", Percent: 12}},
		GracePolicy: checkout.DefaultPolicy,
	}
}

func newBookingHandler(db *sql.DB) *BookingHandler {
	return NewBookingHandler(testConfig(),
		repository.NewBookingRepo(db), repository.NewAssignmentRepo(db),
		repository.NewRoomRepo(db), repository.NewGuestRepo(db),
		repository.NewPaymentRepo(db), repository.NewTransferRepo(db),
		repository.NewHousekeepingRepo(db), repository.NewAuditRepo(db))
}

// postJSON builds an authenticated echo context for a staff member.
func postJSON(t *testing.T, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(7))
	c.Set("role", "RECEPTION")
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	return c, rec
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestTransferRejectsSameRoom(t *testing.T) {
	h := newBookingHandler(nil)
	c, rec := postJSON(t, "/v1/bookings/5/transfer",
		`{"from_room_id":11,"to_room_id":11,"reason":"ac broken"}`, "id", "5")
	require.NoError(t, h.Transfer(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferRequiresReason(t *testing.T) {
	h := newBookingHandler(nil)
	c, rec := postJSON(t, "/v1/bookings/5/transfer",
		`{"from_room_id":11,"to_room_id":12,"reason":"  "}`, "id", "5")
	require.NoError(t, h.Transfer(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransferTargetNotAvailableRollsBack(t *testing.T) {
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
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments.+WHERE booking_id = \? AND room_id = \?.+FOR UPDATE`).
		WithArgs(5, 11).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"checked_in", 250000, 4, 1000000, now, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "occupied", 250000, true, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(12, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(12, 1, 1, "102", "unclean", 250000, true, now, now))
	mock.ExpectRollback()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/transfer",
		`{"from_room_id":11,"to_room_id":12,"reason":"ac broken"}`, "id", "5")
	require.NoError(t, h.Transfer(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransferExecutesAtomically(t *testing.T) {
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
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments.+WHERE booking_id = \? AND room_id = \?.+FOR UPDATE`).
		WithArgs(5, 11).
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(21, 5, 11, day("2026-01-10"), day("2026-01-14"), nil, nil,
				"checked_in", 250000, 4, 1000000, now, nil, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(11, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(11, 1, 1, "101", "occupied", 250000, true, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(12, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(12, 1, 1, "102", "available", 250000, true, now, now))
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments.+WHERE room_id = \? AND status IN.+FOR UPDATE`).
		WithArgs(12, "2026-01-14", "2026-01-10").
		WillReturnRows(sqlmock.NewRows(assignmentCols))
	mock.ExpectExec(`UPDATE room_assignments SET room_id = \? WHERE id = \?`).
		WithArgs(12, 21).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("occupied", 12).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("available", 11).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO housekeeping_tasks`).
		WithArgs(1, 11, "cleaning", "normal", 30, 7).
		WillReturnResult(sqlmock.NewResult(61, 1))
	mock.ExpectExec(`INSERT INTO room_transfers`).
		WithArgs(5, 11, 12, "guest requested quieter room", 7, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(31, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "booking.transfer", "booking", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectCommit()

	h := newBookingHandler(db)
	c, rec := postJSON(t, "/v1/bookings/5/transfer",
		`{"from_room_id":11,"to_room_id":12,"reason":"guest requested quieter room"}`, "id", "5")
	require.NoError(t, h.Transfer(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"from_room":"101"`)
	assert.Contains(t, rec.Body.String(), `"to_room":"102"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}
