package model

import "time"

// AuditEntry records who did what to which entity.  Every mutating
// operation writes one inside its transaction, so the audit trail commits
// or aborts together with the change it describes.
type AuditEntry struct {
	ID         uint64    // audit_log.id
	HotelID    uint64    // audit_log.hotel_id
	ActorID    uint64    // audit_log.actor_id (staff)
	Action     string    // audit_log.action (e.g. "booking.checkout")
	EntityType string    // audit_log.entity_type
	EntityID   uint64    // audit_log.entity_id
	Detail     string    // audit_log.detail (human-readable summary)
	CreatedAt  time.Time // audit_log.created_at
}
