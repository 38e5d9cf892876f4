package handler

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/repository"
)

func newRoomHandler(db *sql.DB) *RoomHandler {
	return NewRoomHandler(testConfig(),
		repository.NewRoomRepo(db), repository.NewRoomTypeRepo(db),
		repository.NewAssignmentRepo(db), repository.NewHousekeepingRepo(db),
		repository.NewAuditRepo(db))
}

func TestUpdateRoomStatusAuditsReason(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(10, 1, 1, "101", "available", 250000, true, now, now))
	mock.ExpectExec(`UPDATE rooms SET status = \? WHERE id = \?`).
		WithArgs("maintenance", 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO housekeeping_tasks`).
		WithArgs(1, 10, "maintenance", "high", 120, 7).
		WillReturnResult(sqlmock.NewResult(61, 1))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, 7, "room.status", "room", 10,
			"room 101: available -> maintenance (AC compressor rattling)").
		WillReturnResult(sqlmock.NewResult(71, 1))
	mock.ExpectCommit()

	h := newRoomHandler(db)
	c, rec := postJSON(t, "/v1/rooms/10/status",
		`{"status":"maintenance","reason":"AC compressor rattling"}`, "id", "10")
	require.NoError(t, h.UpdateRoomStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"housekeeping_task"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRoomStatusGuardsOccupiedStay(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM rooms WHERE id = \? AND hotel_id = \? FOR UPDATE`).
		WithArgs(10, 1).
		WillReturnRows(sqlmock.NewRows(roomCols).
			AddRow(10, 1, 1, "101", "occupied", 250000, true, now, now))
	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM room_assignments.+`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))
	mock.ExpectRollback()

	h := newRoomHandler(db)
	c, rec := postJSON(t, "/v1/rooms/10/status",
		`{"status":"available"}`, "id", "10")
	require.NoError(t, h.UpdateRoomStatus(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "checked in")
	assert.NoError(t, mock.ExpectationsWereMet())
}
