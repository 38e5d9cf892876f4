// Package availability implements the date-range conflict check that gates
// every new room assignment and every transfer target.  The check is a
// pure function; callers are responsible for running it against rows
// locked inside the same transaction that inserts the new assignment.
package availability

import "time"

// Stay is the occupancy claim of one assignment on one room.  CheckIn and
// CheckOut are calendar dates (midnight UTC).  For same-day stays the
// optional expected times refine the comparison; when they are missing a
// same-day pair is conservatively treated as conflicting.
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
	InTime   *time.Time // expected arrival, only consulted for same-day logic
	OutTime  *time.Time // expected departure, only consulted for same-day logic
}

// Overlaps is the half-open interval test: a checkout on day N does not
// conflict with a check-in on day N.
func Overlaps(existingStart, existingEnd, candidateStart, candidateEnd time.Time) bool {
	return candidateStart.Before(existingEnd) && existingStart.Before(candidateEnd)
}

// SameDay reports whether the stay checks in and out on the same calendar
// date.
func (s Stay) SameDay() bool {
	return sameDate(s.CheckIn, s.CheckOut)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Conflicts decides whether two stays claim the same room at the same
// time.  Multi-night pairs use the half-open test.  When either stay is a
// same-day booking the date comparison degenerates, so expected times are
// consulted; missing times mean conflict.
func Conflicts(a, b Stay) bool {
	if !a.SameDay() && !b.SameDay() {
		return Overlaps(a.CheckIn, a.CheckOut, b.CheckIn, b.CheckOut)
	}
	if a.SameDay() && b.SameDay() {
		if !sameDate(a.CheckIn, b.CheckIn) {
			return false
		}
		if a.InTime == nil || a.OutTime == nil || b.InTime == nil || b.OutTime == nil {
			return true
		}
		return a.InTime.Before(*b.OutTime) && b.InTime.Before(*a.OutTime)
	}
	// Exactly one side is same-day.  Normalize so s is the same-day stay.
	s, r := a, b
	if b.SameDay() {
		s, r = b, a
	}
	day := s.CheckIn
	// Outside the ranged stay entirely (before arrival or after departure).
	if day.Before(r.CheckIn) || day.After(r.CheckOut) {
		return false
	}
	if sameDate(day, r.CheckOut) {
		// The ranged guest departs that morning; no conflict when the
		// same-day guest provably arrives after the departure.
		if s.InTime != nil && r.OutTime != nil && !s.InTime.Before(*r.OutTime) {
			return false
		}
		return true
	}
	if sameDate(day, r.CheckIn) {
		// The ranged guest arrives that day; no conflict when the
		// same-day guest provably leaves first.
		if s.OutTime != nil && r.InTime != nil && !r.InTime.Before(*s.OutTime) {
			return false
		}
		return true
	}
	// Strictly inside the ranged stay.
	return true
}
