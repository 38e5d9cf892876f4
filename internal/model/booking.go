package model

import (
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/state"
)

// Booking aggregates one or more room assignments for a guest's stay.
// Status transitions only via the booking state machine; cancellation is a
// status change plus metadata, never a row deletion.
//
// Fields:
//  ID              – primary key identifier.
//  HotelID         – owning property (tenant).
//  Number          – unique human-readable booking number (e.g. BK-20250110-3F2A).
//  GuestID         – guest reference.
//  StaffID         – responsible staff member who created the booking.
//  Status          – booking state (state.BookingStatus).
//  ArrivalType     – how the booking arrived (walk_in, phone, online).
//  MealPlan        – meal plan code (EP, CP, MAP, AP).
//  Adults/Children – pax counts; ExtraPax counts extra beds.
//  SpecialRequests – free-form notes (nullable).
//  CancelReason, CancelledBy, CancelledAt – cancellation metadata.
type Booking struct {
	ID              uint64              // bookings.id
	HotelID         uint64              // bookings.hotel_id
	Number          string              // bookings.booking_number
	GuestID         uint64              // bookings.guest_id
	StaffID         uint64              // bookings.staff_id
	Status          state.BookingStatus // bookings.status
	ArrivalType     string              // bookings.arrival_type
	MealPlan        string              // bookings.meal_plan
	Adults          uint32              // bookings.adults
	Children        uint32              // bookings.children
	ExtraPax        uint32              // bookings.extra_pax
	SpecialRequests *string             // bookings.special_requests (nullable)
	CancelReason    *string             // bookings.cancel_reason (nullable)
	CancelledBy     *uint64             // bookings.cancelled_by (nullable)
	CancelledAt     *time.Time          // bookings.cancelled_at (nullable)
	CreatedAt       time.Time           // bookings.created_at
	UpdatedAt       time.Time           // bookings.updated_at
}
