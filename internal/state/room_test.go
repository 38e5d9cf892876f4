package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomTransitionTable(t *testing.T) {
	cases := []struct {
		from, to RoomStatus
		ok       bool
	}{
		{RoomAvailable, RoomReserved, true},
		{RoomAvailable, RoomOccupied, true},
		{RoomAvailable, RoomUnclean, false},
		{RoomOccupied, RoomUnclean, true},
		{RoomOccupied, RoomAvailable, true},
		{RoomOccupied, RoomReserved, false},
		{RoomUnclean, RoomCleaning, true},
		{RoomUnclean, RoomReserved, false},
		{RoomCleaning, RoomAvailable, true},
		{RoomCleaning, RoomOccupied, false},
		{RoomMaintenance, RoomAvailable, true},
		{RoomMaintenance, RoomOccupied, false},
		{RoomBlocked, RoomAvailable, true},
		{RoomReserved, RoomAvailable, true},
		{RoomReserved, RoomOccupied, true},
	}
	for _, c := range cases {
		assert.Equalf(t, c.ok, CanRoomTransition(c.from, c.to), "%s -> %s", c.from, c.to)
	}
}

func TestRoomMaintenanceAndBlockedOverride(t *testing.T) {
	// maintenance and blocked are reachable from every state (soft force)
	for from := range roomTransitions {
		if from != RoomMaintenance {
			assert.Truef(t, CanRoomTransition(from, RoomMaintenance), "%s -> maintenance", from)
		}
		if from != RoomBlocked {
			assert.Truef(t, CanRoomTransition(from, RoomBlocked), "%s -> blocked", from)
		}
	}
}

func TestRoomTransitionRejectsNoopAndUnknown(t *testing.T) {
	assert.False(t, CanRoomTransition(RoomAvailable, RoomAvailable))
	assert.False(t, CanRoomTransition("demolished", RoomAvailable))
	assert.False(t, CanRoomTransition(RoomAvailable, "demolished"))

	err := ValidateRoomTransition(RoomCleaning, RoomOccupied)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "cleaning -> occupied")
}

func TestHousekeepingFor(t *testing.T) {
	f, ok := HousekeepingFor(RoomCleaning)
	assert.True(t, ok)
	assert.Equal(t, "normal", f.Priority)
	assert.Equal(t, 30, f.EstimatedMinutes)

	f, ok = HousekeepingFor(RoomMaintenance)
	assert.True(t, ok)
	assert.Equal(t, "high", f.Priority)
	assert.Equal(t, 120, f.EstimatedMinutes)

	_, ok = HousekeepingFor(RoomAvailable)
	assert.False(t, ok)
}
