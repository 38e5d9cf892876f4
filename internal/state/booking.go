package state

// BookingStatus is the lifecycle state of a booking as a whole.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
)

// AssignmentStatus is the lifecycle state of one booking-room assignment.
// It mirrors BookingStatus but is distinct: a multi-room booking may have
// assignments in different states (partial check-in/out).
type AssignmentStatus string

const (
	AssignmentReserved   AssignmentStatus = "reserved"
	AssignmentCheckedIn  AssignmentStatus = "checked_in"
	AssignmentCheckedOut AssignmentStatus = "checked_out"
	AssignmentCancelled  AssignmentStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:  {BookingCheckedOut},
	BookingCheckedOut: {},
	BookingCancelled:  {},
}

// Assignment transitions are strictly monotonic: reserved -> checked_in ->
// checked_out, with cancelled reachable only from reserved.
var assignmentTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentReserved:   {AssignmentCheckedIn, AssignmentCheckedOut, AssignmentCancelled},
	AssignmentCheckedIn:  {AssignmentCheckedOut},
	AssignmentCheckedOut: {},
	AssignmentCancelled:  {},
}

// CanBookingTransition reports whether a booking may move between the two
// states.  Note that checked_in -> checked_out tolerates a missed check-in
// via the confirmed -> checked_out path being absent: a checkout against a
// confirmed booking promotes it through checked_in first.
func CanBookingTransition(from, to BookingStatus) bool {
	for _, t := range bookingTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateBookingTransition wraps CanBookingTransition in a TransitionError.
func ValidateBookingTransition(from, to BookingStatus) error {
	if !CanBookingTransition(from, to) {
		return &TransitionError{Entity: "booking", From: string(from), To: string(to)}
	}
	return nil
}

// CanAssignmentTransition reports whether an assignment may move between
// the two states.  reserved -> checked_out is allowed so that a no-show
// room can be closed out directly at departure time.
func CanAssignmentTransition(from, to AssignmentStatus) bool {
	for _, t := range assignmentTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateAssignmentTransition wraps CanAssignmentTransition.
func ValidateAssignmentTransition(from, to AssignmentStatus) error {
	if !CanAssignmentTransition(from, to) {
		return &TransitionError{Entity: "assignment", From: string(from), To: string(to)}
	}
	return nil
}

// TerminalBooking reports whether no further transitions are possible.
func TerminalBooking(s BookingStatus) bool {
	return s == BookingCheckedOut || s == BookingCancelled
}

// ActiveAssignment reports whether an assignment still occupies its room
// for availability purposes.
func ActiveAssignment(s AssignmentStatus) bool {
	return s == AssignmentReserved || s == AssignmentCheckedIn
}

// DeriveBookingStatus computes the booking-level status from its
// assignments: all cancelled -> cancelled; every non-cancelled assignment
// checked out -> checked_out; any checked in -> checked_in; otherwise the
// current status is kept (pending/confirmed is not derivable from
// assignments alone).
func DeriveBookingStatus(current BookingStatus, assignments []AssignmentStatus) BookingStatus {
	if len(assignments) == 0 {
		return current
	}
	allCancelled := true
	allClosed := true
	anyCheckedIn := false
	for _, s := range assignments {
		if s != AssignmentCancelled {
			allCancelled = false
		}
		if s != AssignmentCheckedOut && s != AssignmentCancelled {
			allClosed = false
		}
		if s == AssignmentCheckedIn {
			anyCheckedIn = true
		}
	}
	switch {
	case allCancelled:
		return BookingCancelled
	case allClosed:
		return BookingCheckedOut
	case anyCheckedIn:
		return BookingCheckedIn
	}
	return current
}
