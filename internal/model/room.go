package model

import (
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// Room represents a physical room in the property.  The status column is
// the room state machine's current state and is never null.  BasePricePaise
// is a snapshot of the room type's base price taken when the room was
// created or last price-synced; assignments snapshot their own rate again
// at reservation time.
//
// Fields:
//  ID             – primary key identifier.
//  HotelID        – owning property (tenant), threaded through every call.
//  RoomTypeID     – reference to the room type.
//  Number         – human-visible room number, unique per hotel.
//  Status         – current room state (state.RoomStatus).
//  BasePricePaise – nightly base price snapshot in paise.
//  IsActive       – soft-delete flag; inactive rooms are never offered.
type Room struct {
	ID             uint64           // rooms.id
	HotelID        uint64           // rooms.hotel_id
	RoomTypeID     uint64           // rooms.room_type_id
	Number         string           // rooms.room_number
	Status         state.RoomStatus // rooms.status
	BasePricePaise int64            // rooms.base_price_paise
	IsActive       bool             // rooms.is_active
	CreatedAt      time.Time        // rooms.created_at
	UpdatedAt      time.Time        // rooms.updated_at
}
