package models

import "time"

// EventFormat distinguishes in-person CRM events from virtual-platform sessions.
type EventFormat string

const (
	EventInPerson EventFormat = "in_person"
	EventVirtual  EventFormat = "virtual"
)

// Event is the canonical record for an event or virtual session.
type Event struct {
	ID          string      `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description *string     `db:"description" json:"description,omitempty"`
	Format      EventFormat `db:"format" json:"format"`
	StartDate   *time.Time  `db:"start_date" json:"start_date,omitempty"`
	EndDate     *time.Time  `db:"end_date" json:"end_date,omitempty"`
	Location    *string     `db:"location" json:"location,omitempty"`
	Status      *string     `db:"status" json:"status,omitempty"`
	// PublicVisible is owned by the publishing system: the source value is
	// copied on create only and preserved on every subsequent sync.
	PublicVisible bool       `db:"public_visible" json:"public_visible"`
	DistrictIDs   []string   `db:"-" json:"district_ids,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

// Organization is the canonical record for a partner organization.
type Organization struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	OrgType   *string    `db:"org_type" json:"org_type,omitempty"`
	Website   *string    `db:"website" json:"website,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
