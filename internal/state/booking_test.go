package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingTransitions(t *testing.T) {
	assert.True(t, CanBookingTransition(BookingPending, BookingConfirmed))
	assert.True(t, CanBookingTransition(BookingConfirmed, BookingCheckedIn))
	assert.True(t, CanBookingTransition(BookingCheckedIn, BookingCheckedOut))
	assert.True(t, CanBookingTransition(BookingPending, BookingCancelled))
	assert.True(t, CanBookingTransition(BookingConfirmed, BookingCancelled))

	// terminal states admit nothing
	assert.False(t, CanBookingTransition(BookingCheckedOut, BookingCheckedIn))
	assert.False(t, CanBookingTransition(BookingCancelled, BookingConfirmed))
	// no moving backward
	assert.False(t, CanBookingTransition(BookingCheckedIn, BookingConfirmed))
}

// TestAssignmentMonotonic asserts that every reachable status sequence is
// a subsequence of reserved, checked_in, checked_out or terminates early
// at cancelled.
func TestAssignmentMonotonic(t *testing.T) {
	order := map[AssignmentStatus]int{
		AssignmentReserved:   0,
		AssignmentCheckedIn:  1,
		AssignmentCheckedOut: 2,
	}
	for from, targets := range assignmentTransitions {
		for _, to := range targets {
			if to == AssignmentCancelled {
				assert.Equal(t, AssignmentReserved, from, "cancelled only from reserved")
				continue
			}
			assert.Lessf(t, order[from], order[to], "%s -> %s must move forward", from, to)
		}
	}
	assert.False(t, CanAssignmentTransition(AssignmentCheckedOut, AssignmentCheckedIn))
	assert.False(t, CanAssignmentTransition(AssignmentCheckedIn, AssignmentReserved))
	assert.False(t, CanAssignmentTransition(AssignmentCheckedIn, AssignmentCancelled))
	assert.False(t, CanAssignmentTransition(AssignmentCancelled, AssignmentReserved))
}

func TestDeriveBookingStatus(t *testing.T) {
	// all checked out -> checked_out
	s := DeriveBookingStatus(BookingCheckedIn, []AssignmentStatus{AssignmentCheckedOut, AssignmentCheckedOut})
	assert.Equal(t, BookingCheckedOut, s)

	// partial departure keeps the booking checked in
	s = DeriveBookingStatus(BookingCheckedIn, []AssignmentStatus{AssignmentCheckedOut, AssignmentCheckedIn})
	assert.Equal(t, BookingCheckedIn, s)

	// one room cancelled, the other closed -> checked_out
	s = DeriveBookingStatus(BookingCheckedIn, []AssignmentStatus{AssignmentCancelled, AssignmentCheckedOut})
	assert.Equal(t, BookingCheckedOut, s)

	// everything cancelled -> cancelled
	s = DeriveBookingStatus(BookingConfirmed, []AssignmentStatus{AssignmentCancelled})
	assert.Equal(t, BookingCancelled, s)

	// all still reserved: keep the current status
	s = DeriveBookingStatus(BookingConfirmed, []AssignmentStatus{AssignmentReserved, AssignmentReserved})
	assert.Equal(t, BookingConfirmed, s)

	s = DeriveBookingStatus(BookingPending, nil)
	assert.Equal(t, BookingPending, s)
}
