// Package checkout computes lateness and late fees for departures.  The
// policy (grace window, per-hour fee, cap) is configuration, not code.
package checkout

import "time"

// Policy is the grace-period policy applied at departure.
type Policy struct {
	GraceMinutes    int   // no fee within this many minutes past scheduled checkout
	PerHourFeePaise int64 // fee per started hour beyond the grace window
	MaxFeePaise     int64 // fee cap
}

// DefaultPolicy mirrors the house rules: 60 minute grace, Rs 100/hour,
// capped at Rs 500.
var DefaultPolicy = Policy{GraceMinutes: 60, PerHourFeePaise: 10000, MaxFeePaise: 50000}

// Result describes how late a departure was and what it costs.
type Result struct {
	LateMinutes int64
	HoursLate   int64
	FeePaise    int64
	GraceUsed   bool
}

// Assess compares the actual departure to the scheduled checkout.
// Departures at or before the scheduled time (or within the grace window)
// cost nothing; checkout at exactly scheduled + grace is still free, one
// minute later starts the first fee tier.  Partial minutes count as a
// full minute.
func Assess(scheduled, actual time.Time, p Policy) Result {
	if !actual.After(scheduled) {
		return Result{}
	}
	d := actual.Sub(scheduled)
	lateMin := int64(d / time.Minute)
	if d%time.Minute != 0 {
		lateMin++
	}
	if lateMin <= int64(p.GraceMinutes) {
		return Result{LateMinutes: lateMin, GraceUsed: true}
	}
	over := lateMin - int64(p.GraceMinutes)
	hours := over / 60
	if over%60 != 0 {
		hours++
	}
	fee := hours * p.PerHourFeePaise
	if fee > p.MaxFeePaise {
		fee = p.MaxFeePaise
	}
	return Result{LateMinutes: lateMin, HoursLate: hours, FeePaise: fee}
}
