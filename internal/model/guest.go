package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Guest is a person staying at the property.  Guests are soft-deactivated
// via IsActive, never deleted, so historical bookings keep their audit
// trail.
type Guest struct {
	ID        uint64    // guests.id
	HotelID   uint64    // guests.hotel_id
	FullName  string    // guests.full_name
	Phone     string    // guests.phone
	Email     *string   // guests.email (nullable)
	Address   Address   // guests.address_* columns
	IDProof   *string   // guests.id_proof (nullable)
	IsActive  bool      // guests.is_active
	CreatedAt time.Time // guests.created_at
	UpdatedAt time.Time // guests.updated_at
}

// Address is the single structured address shape used past validation.
// Ingress payloads historically carried addresses either as a plain string
// or as a structured object; UnmarshalJSON accepts both and normalizes to
// this struct, so nothing downstream ever sees an ad hoc union.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
	Country    string `json:"country,omitempty"`
}

// UnmarshalJSON accepts either a JSON string (legacy free-form address,
// stored as Line1) or a structured object.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Address{Line1: strings.TrimSpace(s)}
		return nil
	}
	type plain Address
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*a = Address(p)
	a.Normalize()
	return nil
}

// Normalize trims all fields in place.
func (a *Address) Normalize() {
	a.Line1 = strings.TrimSpace(a.Line1)
	a.Line2 = strings.TrimSpace(a.Line2)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.PostalCode = strings.TrimSpace(a.PostalCode)
	a.Country = strings.TrimSpace(a.Country)
}

// IsZero reports whether every field is empty.
func (a Address) IsZero() bool {
	return a == Address{}
}
