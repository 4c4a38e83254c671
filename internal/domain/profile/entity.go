// Package profile holds per-user contact and delivery details
package profile

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Field names a profile attribute that checkout depends on
type Field string

const (
	FieldAddress     Field = "address"
	FieldPhoneNumber Field = "phone_number"
)

// Profile contains a user's contact and address fields
type Profile struct {
	UserID      uuid.UUID
	FullName    string
	Address     string
	PhoneNumber string
	City        string
	PostalCode  string
	BirthDate   *time.Time
	UpdatedAt   time.Time
}

// Empty returns a blank profile for a user
func Empty(userID uuid.UUID) *Profile {
	return &Profile{UserID: userID}
}

// MissingCheckoutFields lists the fields checkout requires that are empty, in
// a stable order: address first, then phone number.
func (p *Profile) MissingCheckoutFields() []Field {
	if p == nil {
		return []Field{FieldAddress, FieldPhoneNumber}
	}

	var missing []Field
	if strings.TrimSpace(p.Address) == "" {
		missing = append(missing, FieldAddress)
	}
	if strings.TrimSpace(p.PhoneNumber) == "" {
		missing = append(missing, FieldPhoneNumber)
	}
	return missing
}

// Age returns the age in whole years at the given instant, or nil without a
// birth date.
func (p *Profile) Age(at time.Time) *int {
	if p == nil || p.BirthDate == nil {
		return nil
	}
	b := p.BirthDate.UTC()
	at = at.UTC()
	years := at.Year() - b.Year()
	if at.Month() < b.Month() || (at.Month() == b.Month() && at.Day() < b.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return &years
}
