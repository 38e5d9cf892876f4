package model

import (
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// RoomAssignment links one booking to one physical room for a date range.
// check_out_date must be strictly after check_in_date except for same-day
// stays, where the expected times disambiguate conflicts.  Status moves
// monotonically (reserved -> checked_in -> checked_out, or -> cancelled
// from reserved).
//
// RatePaise snapshots the nightly rate at reservation time so later room
// type price changes never alter an existing stay's arithmetic.
type RoomAssignment struct {
	ID             uint64                 // room_assignments.id
	BookingID      uint64                 // room_assignments.booking_id
	RoomID         uint64                 // room_assignments.room_id
	CheckInDate    time.Time              // room_assignments.check_in_date (DATE)
	CheckOutDate   time.Time              // room_assignments.check_out_date (DATE)
	ExpectedInAt   *time.Time             // room_assignments.expected_in_at (nullable, same-day stays)
	ExpectedOutAt  *time.Time             // room_assignments.expected_out_at (nullable, same-day stays)
	Status         state.AssignmentStatus // room_assignments.status
	RatePaise      int64                  // room_assignments.rate_paise
	ExpectedNights uint32                 // room_assignments.expected_nights
	RoomTotalPaise int64                  // room_assignments.room_total_paise
	ActualCheckIn  *time.Time             // room_assignments.actual_check_in (nullable)
	ActualCheckOut *time.Time             // room_assignments.actual_check_out (nullable)
	CreatedAt      time.Time              // room_assignments.created_at
	UpdatedAt      time.Time              // room_assignments.updated_at
}
