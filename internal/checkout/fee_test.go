package checkout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var sched = time.Date(2025, 1, 12, 11, 0, 0, 0, time.UTC)

func TestAssessOnTime(t *testing.T) {
	r := Assess(sched, sched, DefaultPolicy)
	assert.Zero(t, r.FeePaise)
	assert.False(t, r.GraceUsed)
	assert.Zero(t, r.LateMinutes)

	r = Assess(sched, sched.Add(-2*time.Hour), DefaultPolicy)
	assert.Zero(t, r.FeePaise)
}

func TestAssessGraceBoundary(t *testing.T) {
	// exactly scheduled + grace: free, grace consumed
	r := Assess(sched, sched.Add(60*time.Minute), DefaultPolicy)
	assert.True(t, r.GraceUsed)
	assert.Equal(t, int64(60), r.LateMinutes)
	assert.Zero(t, r.FeePaise)

	// one minute later: first fee tier
	r = Assess(sched, sched.Add(61*time.Minute), DefaultPolicy)
	assert.False(t, r.GraceUsed)
	assert.Equal(t, int64(61), r.LateMinutes)
	assert.Equal(t, int64(1), r.HoursLate)
	assert.Equal(t, int64(10000), r.FeePaise) // Rs 100
}

func TestAssessPartialMinutesRoundUp(t *testing.T) {
	r := Assess(sched, sched.Add(60*time.Minute+30*time.Second), DefaultPolicy)
	assert.Equal(t, int64(61), r.LateMinutes)
	assert.Equal(t, int64(10000), r.FeePaise)
}

func TestAssessHourTiers(t *testing.T) {
	// 1h grace + 2h01m over -> 3 started hours
	r := Assess(sched, sched.Add(3*time.Hour+1*time.Minute), DefaultPolicy)
	assert.Equal(t, int64(3), r.HoursLate)
	assert.Equal(t, int64(30000), r.FeePaise)
}

func TestAssessFeeCap(t *testing.T) {
	r := Assess(sched, sched.Add(24*time.Hour), DefaultPolicy)
	assert.Equal(t, DefaultPolicy.MaxFeePaise, r.FeePaise)
}
