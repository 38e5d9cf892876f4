package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// AuditRepo persists the audit trail.  Entries are written inside the
// same transaction as the change they record, so an aborted operation
// leaves no trace and a committed one always has one.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// CreateTx appends one audit entry.
func (r *AuditRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.AuditEntry) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO audit_log (hotel_id, actor_id, action, entity_type, entity_id, detail)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.HotelID, e.ActorID, e.Action, e.EntityType, e.EntityID, e.Detail)
	return err
}

// ListByEntity returns the audit history of one entity, newest first.
func (r *AuditRepo) ListByEntity(ctx context.Context, hotelID uint64, entityType string, entityID uint64) ([]model.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, hotel_id, actor_id, action, entity_type, entity_id, detail, created_at
		 FROM audit_log WHERE hotel_id = ? AND entity_type = ? AND entity_id = ?
		 ORDER BY id DESC`, hotelID, entityType, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuditEntry, 0)
	for rows.Next() {
		var e model.AuditEntry
		if err := rows.Scan(&e.ID, &e.HotelID, &e.ActorID, &e.Action, &e.EntityType,
			&e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
