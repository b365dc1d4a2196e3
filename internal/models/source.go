package models

import "time"

// SourceSystem identifies where an imported record originated.
type SourceSystem string

const (
	// SourceInternal marks fields maintained by staff inside the canonical store.
	SourceInternal   SourceSystem = "internal"
	SourceSalesforce SourceSystem = "salesforce"
	SourceVolunTeach SourceSystem = "volunteach"
	SourcePathful    SourceSystem = "pathful"
	SourceRoster     SourceSystem = "roster"
)

// EntityType enumerates canonical entity kinds subject to import reconciliation.
type EntityType string

const (
	EntityVolunteer    EntityType = "volunteer"
	EntityTeacher      EntityType = "teacher"
	EntityStudent      EntityType = "student"
	EntityEvent        EntityType = "event"
	EntityOrganization EntityType = "organization"
	EntityDistrict     EntityType = "district"
	EntitySchool       EntityType = "school"
	// EntityParticipation covers the contact↔event join rows, which carry
	// their own source identifiers in virtual-session exports.
	EntityParticipation EntityType = "participation"
)

// ExternalID links a source system identifier to a canonical entity.
// Once linked it is never reassigned by an import; re-linking is an explicit
// administrative action handled through the review queue.
type ExternalID struct {
	ID         string       `db:"id" json:"id"`
	Source     SourceSystem `db:"source" json:"source"`
	SourceKey  string       `db:"source_key" json:"source_key"`
	EntityType EntityType   `db:"entity_type" json:"entity_type"`
	EntityID   string       `db:"entity_id" json:"entity_id"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}
