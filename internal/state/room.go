// Package state defines the status enumerations for rooms, bookings and
// room assignments together with their transition tables.  All status
// values are stored in the database as lowercase strings; the typed
// aliases here exist so that transition checks cannot accidentally mix a
// room status with a booking status.
package state

import "fmt"

// RoomStatus is the operational state of a physical room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomReserved    RoomStatus = "reserved"
	RoomOccupied    RoomStatus = "occupied"
	RoomUnclean     RoomStatus = "unclean"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
	RoomBlocked     RoomStatus = "blocked"
)

// roomTransitions lists the permitted target states per source state.
// Transitions into maintenance or blocked are additionally always
// permitted as a manual override; see CanRoomTransition.
var roomTransitions = map[RoomStatus][]RoomStatus{
	RoomAvailable:   {RoomReserved, RoomOccupied, RoomBlocked, RoomMaintenance, RoomCleaning},
	RoomOccupied:    {RoomUnclean, RoomAvailable, RoomMaintenance},
	RoomUnclean:     {RoomCleaning, RoomMaintenance, RoomAvailable},
	RoomCleaning:    {RoomAvailable, RoomMaintenance},
	RoomMaintenance: {RoomAvailable, RoomBlocked},
	RoomBlocked:     {RoomAvailable, RoomMaintenance},
	RoomReserved:    {RoomBlocked, RoomMaintenance, RoomAvailable, RoomOccupied},
}

// ValidRoomStatus reports whether s is one of the defined room states.
func ValidRoomStatus(s RoomStatus) bool {
	_, ok := roomTransitions[s]
	return ok
}

// CanRoomTransition reports whether a room may move from one status to
// another.  Maintenance and blocked are always reachable (soft force for
// staff overrides).  A no-op transition is never valid.
func CanRoomTransition(from, to RoomStatus) bool {
	if from == to {
		return false
	}
	if !ValidRoomStatus(from) || !ValidRoomStatus(to) {
		return false
	}
	if to == RoomMaintenance || to == RoomBlocked {
		return true
	}
	for _, t := range roomTransitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// ValidateRoomTransition returns a TransitionError naming both states when
// the transition is outside the table.
func ValidateRoomTransition(from, to RoomStatus) error {
	if !CanRoomTransition(from, to) {
		return &TransitionError{Entity: "room", From: string(from), To: string(to)}
	}
	return nil
}

// TransitionError reports an attempted state change outside the allowed
// graph.  The Entity field identifies which state machine rejected it.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}

// HousekeepingFollowUp describes the work item raised when a room enters
// cleaning or maintenance.
type HousekeepingFollowUp struct {
	Kind             string // "cleaning" or "maintenance"
	Priority         string // "normal" or "high"
	EstimatedMinutes int
}

// HousekeepingFor returns the follow-up work item for a target room state,
// or ok=false when the state needs none.
func HousekeepingFor(to RoomStatus) (HousekeepingFollowUp, bool) {
	switch to {
	case RoomCleaning:
		return HousekeepingFollowUp{Kind: "cleaning", Priority: "normal", EstimatedMinutes: 30}, true
	case RoomMaintenance:
		return HousekeepingFollowUp{Kind: "maintenance", Priority: "high", EstimatedMinutes: 120}, true
	}
	return HousekeepingFollowUp{}, false
}
