package model

import "time"

// RoomType groups rooms with a shared price and capacity.  A room type is
// immutable once referenced by an active assignment unless a price change
// explicitly requests syncing the new price onto its rooms.
type RoomType struct {
	ID             uint64    // room_types.id
	HotelID        uint64    // room_types.hotel_id
	Code           string    // room_types.code (e.g. "DLX")
	Name           string    // room_types.name
	BasePricePaise int64     // room_types.base_price_paise
	Capacity       uint32    // room_types.capacity
	CreatedAt      time.Time // room_types.created_at
	UpdatedAt      time.Time // room_types.updated_at
}
