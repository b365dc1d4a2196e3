package models

// Volunteer is the canonical record for an individual volunteer.
type Volunteer struct {
	ContactCore
	Title           *string  `db:"title" json:"title,omitempty"`
	OrganizationIDs []string `db:"-" json:"organization_ids,omitempty"`
	SkillIDs        []string `db:"-" json:"skill_ids,omitempty"`
}

// VolunteerView decorates a volunteer with its derived local status.
type VolunteerView struct {
	Volunteer
	LocalStatus LocalStatus `json:"local_status"`
}

// VolunteerFilter captures listing options for volunteers.
type VolunteerFilter struct {
	Search   string
	Page     int
	PageSize int
}
