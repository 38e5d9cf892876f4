// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names used by both the publisher and the consumer.
const (
	CheckoutQueue     = "stay.checkout"
	TransferQueue     = "room.transfer"
	HousekeepingQueue = "housekeeping.task"
)

// CheckoutCompletedEvent is published when a departure settles.  It carries
// enough for downstream consumers (notifications, analytics, night audit)
// to act without querying the primary database.
type CheckoutCompletedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	BookingNumber    string   `json:"booking_number"`
	HotelID          uint64   `json:"hotel_id"`
	GuestID          uint64   `json:"guest_id"`
	RoomNumbers      []string `json:"rooms"`
	NoShow           bool     `json:"no_show"`
	LateMinutes      int64    `json:"late_minutes"`
	LateFeePaise     int64    `json:"late_fee_paise"`
	GrandTotalPaise  int64    `json:"grand_total_paise"`
	OutstandingPaise int64    `json:"outstanding_paise"`
	CheckedOutAt     string   `json:"checked_out_at"`
}

// RoomTransferredEvent is published after an in-stay room move commits.
// Consumers fan it out to the guest, housekeeping for the vacated room
// and the front desk.
type RoomTransferredEvent struct {
	BookingID     uint64 `json:"booking_id"`
	BookingNumber string `json:"booking_number"`
	HotelID       uint64 `json:"hotel_id"`
	GuestID       uint64 `json:"guest_id"`
	FromRoom      string `json:"from_room"`
	ToRoom        string `json:"to_room"`
	Reason        string `json:"reason"`
	StaffID       uint64 `json:"staff_id"`
	TransferredAt string `json:"transferred_at"`
}

// HousekeepingTaskEvent is published when a room status change raises a
// cleaning or maintenance follow-up.
type HousekeepingTaskEvent struct {
	TaskID           uint64 `json:"task_id"`
	HotelID          uint64 `json:"hotel_id"`
	RoomNumber       string `json:"room"`
	Kind             string `json:"kind"`
	Priority         string `json:"priority"`
	EstimatedMinutes int    `json:"estimated_minutes"`
	CreatedAt        string `json:"created_at"`
}
