package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/hotel-booking-engine/internal/utils"
)

// Staff mirrors the 'staff' table.  Staff members are the actors behind
// every booking, payment, transfer and room status change; their IDs feed
// the audit log.
type Staff struct {
	ID           uint64
	HotelID      uint64
	Email        string
	PasswordHash string
	FullName     string
	Role         string // MANAGER | RECEPTION | HOUSEKEEPING
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type StaffRepo struct{ DB *sql.DB }

func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a staff member and returns the new ID.
func (r *StaffRepo) Create(ctx context.Context, hotelID uint64, email, password, fullName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO staff (hotel_id, email, password_hash, full_name, role) VALUES (?,?,?,?,?)",
		hotelID, email, hash, fullName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a staff member by normalized email.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (Staff, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var s Staff
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,hotel_id,email,password_hash,full_name,role,is_active,created_at,updated_at FROM staff WHERE email=? LIMIT 1",
		email).Scan(&s.ID, &s.HotelID, &s.Email, &s.PasswordHash, &s.FullName, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// GetByID fetches a staff member by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (Staff, error) {
	var s Staff
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,hotel_id,email,password_hash,full_name,role,is_active,created_at,updated_at FROM staff WHERE id=? LIMIT 1",
		id).Scan(&s.ID, &s.HotelID, &s.Email, &s.PasswordHash, &s.FullName, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
