package model

import "time"

// HousekeepingTask is the follow-up work item raised when a room enters
// cleaning or maintenance, or when a transfer vacates a room.  Priority
// and estimated duration are derived from the target room state.
type HousekeepingTask struct {
	ID               uint64    // housekeeping_tasks.id
	HotelID          uint64    // housekeeping_tasks.hotel_id
	RoomID           uint64    // housekeeping_tasks.room_id
	Kind             string    // housekeeping_tasks.kind (cleaning/maintenance)
	Priority         string    // housekeeping_tasks.priority (normal/high)
	EstimatedMinutes uint32    // housekeeping_tasks.estimated_minutes
	Status           string    // housekeeping_tasks.status (open/done)
	CreatedBy        uint64    // housekeeping_tasks.created_by
	CreatedAt        time.Time // housekeeping_tasks.created_at
}
