package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/hotel-booking-engine/internal/model"
)

// GuestRepo persists guests.  Guests are matched by phone number within a
// hotel; repeat bookings reuse the existing row and refresh its details
// rather than creating duplicates.
type GuestRepo struct {
	db *sql.DB
}

func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{db: db} }

// UpsertByPhoneTx finds or creates a guest by (hotel, phone) inside the
// booking transaction and populates g.ID.  An existing guest's name,
// email and address are refreshed from the incoming details.
func (r *GuestRepo) UpsertByPhoneTx(ctx context.Context, tx *sql.Tx, g *model.Guest) error {
	phone := strings.TrimSpace(g.Phone)
	g.Phone = phone
	var id uint64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM guests WHERE hotel_id = ? AND phone = ? FOR UPDATE`,
		g.HotelID, phone).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO guests (hotel_id, full_name, phone, email, address_line1, address_line2, city, state, postal_code, country, id_proof, is_active)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
			g.HotelID, g.FullName, phone, g.Email,
			g.Address.Line1, g.Address.Line2, g.Address.City, g.Address.State,
			g.Address.PostalCode, g.Address.Country, g.IDProof)
		if err != nil {
			return err
		}
		newID, err := res.LastInsertId()
		if err != nil {
			return err
		}
		g.ID = uint64(newID)
		return nil
	case err != nil:
		return err
	}
	g.ID = id
	_, err = tx.ExecContext(ctx,
		`UPDATE guests SET full_name = ?, email = ?, address_line1 = ?, address_line2 = ?, city = ?, state = ?, postal_code = ?, country = ?, is_active = 1
		 WHERE id = ?`,
		g.FullName, g.Email, g.Address.Line1, g.Address.Line2, g.Address.City,
		g.Address.State, g.Address.PostalCode, g.Address.Country, id)
	return err
}

// GetByID loads one guest scoped to the hotel.
func (r *GuestRepo) GetByID(ctx context.Context, hotelID, id uint64) (*model.Guest, error) {
	var g model.Guest
	err := r.db.QueryRowContext(ctx,
		`SELECT id, hotel_id, full_name, phone, email, address_line1, address_line2, city, state, postal_code, country, id_proof, is_active, created_at, updated_at
		 FROM guests WHERE id = ? AND hotel_id = ?`, id, hotelID).
		Scan(&g.ID, &g.HotelID, &g.FullName, &g.Phone, &g.Email,
			&g.Address.Line1, &g.Address.Line2, &g.Address.City, &g.Address.State,
			&g.Address.PostalCode, &g.Address.Country, &g.IDProof, &g.IsActive,
			&g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, notFoundIfNoRows(err)
	}
	return &g, nil
}

// Deactivate soft-deletes a guest.  The row and its booking history stay.
func (r *GuestRepo) Deactivate(ctx context.Context, hotelID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guests SET is_active = 0 WHERE id = ? AND hotel_id = ?`, id, hotelID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
