package models

import "time"

// LocalStatus classifies how local a volunteer is relative to the service area.
// It is derived from address data and never stored.
type LocalStatus string

const (
	LocalStatusLocal    LocalStatus = "local"
	LocalStatusPartial  LocalStatus = "partial"
	LocalStatusNonLocal LocalStatus = "non_local"
	// LocalStatusUnknown is the default when no address exists. Absence of
	// address data is not an error and is never coerced to non_local.
	LocalStatusUnknown LocalStatus = "unknown"
)

// ContactCore holds the fields shared by volunteers, teachers and students.
// Role entities embed it; a discriminator is only used at the storage layer.
type ContactCore struct {
	ID             string     `db:"id" json:"id"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Email          string     `db:"email" json:"email"`
	SecondaryEmail *string    `db:"secondary_email" json:"secondary_email,omitempty"`
	Phone          *string    `db:"phone" json:"phone,omitempty"`
	Street         *string    `db:"street" json:"street,omitempty"`
	City           *string    `db:"city" json:"city,omitempty"`
	State          *string    `db:"state" json:"state,omitempty"`
	PostalCode     *string    `db:"postal_code" json:"postal_code,omitempty"`
	Gender         *string    `db:"gender" json:"gender,omitempty"`
	RaceEthnicity  *string    `db:"race_ethnicity" json:"race_ethnicity,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// FullName joins first and last name for display and fuzzy matching.
func (c ContactCore) FullName() string {
	switch {
	case c.FirstName == "":
		return c.LastName
	case c.LastName == "":
		return c.FirstName
	default:
		return c.FirstName + " " + c.LastName
	}
}

// Emails returns every candidate email on the contact, primary first.
func (c ContactCore) Emails() []string {
	emails := []string{c.Email}
	if c.SecondaryEmail != nil && *c.SecondaryEmail != "" {
		emails = append(emails, *c.SecondaryEmail)
	}
	return emails
}
