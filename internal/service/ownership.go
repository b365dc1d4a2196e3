package service

import (
	"github.com/edubridge/volunteer-hub-api/internal/models"
)

// OwnershipRule states which source system may overwrite a field on an
// existing entity. Creation always wins: every field on a brand-new entity is
// populated regardless of ownership, since there is nothing to protect yet.
type OwnershipRule struct {
	Owner models.SourceSystem
	// CopyOnCreateOnly fields take their initial value from whichever source
	// creates the entity and are preserved on every subsequent sync unless
	// the owner itself writes them.
	CopyOnCreateOnly bool
	// OwnerFor resolves conditional ownership from the existing entity state,
	// overriding Owner when set.
	OwnerFor func(existing map[string]interface{}) models.SourceSystem
}

func (r OwnershipRule) owner(existing map[string]interface{}) models.SourceSystem {
	if r.OwnerFor != nil {
		return r.OwnerFor(existing)
	}
	return r.Owner
}

// OwnershipRegistry is the single table deciding field ownership per entity
// type. Keeping it in one place is what lets the precedence rules be audited
// instead of drifting across call sites.
type OwnershipRegistry struct {
	rules    map[models.EntityType]map[string]OwnershipRule
	defaults map[models.EntityType]models.SourceSystem
}

// eventCoreOwner gives in-person core fields to the CRM and virtual-session
// core fields to the virtual-platform export.
func eventCoreOwner(existing map[string]interface{}) models.SourceSystem {
	if format, ok := existing["format"].(models.EventFormat); ok && format == models.EventVirtual {
		return models.SourcePathful
	}
	if format, ok := existing["format"].(string); ok && format == string(models.EventVirtual) {
		return models.SourcePathful
	}
	return models.SourceSalesforce
}

// NewOwnershipRegistry builds the default ownership table.
func NewOwnershipRegistry() *OwnershipRegistry {
	coreEvent := OwnershipRule{OwnerFor: eventCoreOwner}

	return &OwnershipRegistry{
		defaults: map[models.EntityType]models.SourceSystem{
			models.EntityVolunteer:     models.SourceSalesforce,
			models.EntityTeacher:       models.SourceRoster,
			models.EntityStudent:       models.SourceRoster,
			models.EntityEvent:         models.SourceSalesforce,
			models.EntityOrganization:  models.SourceSalesforce,
			models.EntityParticipation: models.SourcePathful,
		},
		rules: map[models.EntityType]map[string]OwnershipRule{
			models.EntityEvent: {
				"title":       coreEvent,
				"description": coreEvent,
				"start_date":  coreEvent,
				"end_date":    coreEvent,
				"location":    coreEvent,
				"status":      coreEvent,
				"format":      coreEvent,
				// The publishing system owns the public-page toggle after
				// creation; CRM syncs must never clobber it.
				"public_visible": {Owner: models.SourceVolunTeach, CopyOnCreateOnly: true},
			},
			models.EntityVolunteer: {
				// Volunteer identity belongs to the canonical store; CRM
				// linkage is secondary and never rewrites it.
				"email":           {Owner: models.SourceInternal, CopyOnCreateOnly: true},
				"secondary_email": {Owner: models.SourceInternal, CopyOnCreateOnly: true},
			},
			models.EntityTeacher: {
				// The roster owns the display name: a mismatching name on a
				// virtual-session row does not override it.
				"roster_name": {Owner: models.SourceRoster},
				"first_name":  {Owner: models.SourceRoster},
				"last_name":   {Owner: models.SourceRoster},
				"email":       {Owner: models.SourceRoster},
				"school_id":   {Owner: models.SourceRoster},
			},
			models.EntityParticipation: {
				"status":                  {Owner: models.SourcePathful},
				"attendance_confirmed_at": {Owner: models.SourcePathful},
				"credited_hours":          {Owner: models.SourcePathful},
				// Relationship tags are staff-edited and read-only to the
				// virtual-platform import.
				"is_presenter":        {Owner: models.SourceInternal},
				"cancellation_reason": {Owner: models.SourceInternal},
			},
		},
	}
}

// Rule returns the ownership rule for (entity, field), falling back to the
// entity's default owning system.
func (g *OwnershipRegistry) Rule(entity models.EntityType, field string) OwnershipRule {
	if fields, ok := g.rules[entity]; ok {
		if rule, ok := fields[field]; ok {
			return rule
		}
	}
	return OwnershipRule{Owner: g.defaults[entity]}
}

// MayWrite reports whether source may write the field given the existing
// entity state. Creating entities always returns true.
func (g *OwnershipRegistry) MayWrite(entity models.EntityType, field string, source models.SourceSystem, existing map[string]interface{}, creating bool) bool {
	if creating {
		return true
	}
	rule := g.Rule(entity, field)
	return rule.owner(existing) == source
}
