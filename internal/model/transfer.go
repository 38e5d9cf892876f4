package model

import "time"

// TransferRecord is the audit row written when an in-progress stay is
// moved from one room to another.  Exactly one record exists per executed
// transfer; the room assignment itself is repointed to the new room.
type TransferRecord struct {
	ID            uint64    // room_transfers.id
	BookingID     uint64    // room_transfers.booking_id
	FromRoomID    uint64    // room_transfers.from_room_id
	ToRoomID      uint64    // room_transfers.to_room_id
	Reason        string    // room_transfers.reason
	StaffID       uint64    // room_transfers.staff_id (executing actor)
	TransferredAt time.Time // room_transfers.transferred_at
}
