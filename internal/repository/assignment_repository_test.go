package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

var assignmentCols = []string{
	"id", "booking_id", "room_id", "check_in_date", "check_out_date",
	"expected_in_at", "expected_out_at", "status", "rate_paise",
	"expected_nights", "room_total_paise", "actual_check_in", "actual_check_out",
	"created_at", "updated_at",
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestFindConflictCandidatesTxLocksAndScans(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .+ FROM room_assignments.+status IN \('reserved', 'checked_in'\).+check_in_date <= \? AND \? <= check_out_date.+FOR UPDATE`).
		WithArgs(9, "2026-01-14", "2026-01-10").
		WillReturnRows(sqlmock.NewRows(assignmentCols).
			AddRow(1, 5, 9, day("2026-01-12"), day("2026-01-16"), nil, nil,
				"reserved", 250000, 4, 1000000, nil, nil, now, now))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewAssignmentRepo(db)
	got, err := repo.FindConflictCandidatesTx(context.Background(), tx, 9, day("2026-01-10"), day("2026-01-14"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, uint64(5), got[0].BookingID)
	assert.Equal(t, state.AssignmentReserved, got[0].Status)
	assert.Nil(t, got[0].ExpectedInAt)
	assert.Equal(t, int64(250000), got[0].RatePaise)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservedTxReleasesRooms(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT room_id FROM room_assignments WHERE booking_id = \? AND status = 'reserved' FOR UPDATE`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}).AddRow(3).AddRow(4))
	mock.ExpectExec(`UPDATE room_assignments SET status = 'cancelled' WHERE booking_id = \? AND status = 'reserved'`).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewAssignmentRepo(db)
	released, err := repo.CancelReservedTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, released)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelReservedTxNothingToRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT room_id FROM room_assignments`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"room_id"}))
	mock.ExpectRollback()

	tx, err := db.Begin()
	require.NoError(t, err)

	repo := NewAssignmentRepo(db)
	released, err := repo.CancelReservedTx(context.Background(), tx, 7)
	require.NoError(t, err)
	assert.Empty(t, released)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewBookingNumberFormat(t *testing.T) {
	now := time.Date(2026, 1, 10, 15, 0, 0, 0, time.UTC)
	n, err := NewBookingNumber(now)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^BK-20260110-[0-9A-F]{6}$`), n)

	again, err := NewBookingNumber(now)
	require.NoError(t, err)
	assert.NotEqual(t, n, again, "random suffix should differ between calls")
}
