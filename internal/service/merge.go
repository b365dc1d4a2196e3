package service

import (
	"reflect"
	"sort"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

// FieldChange records one field the merge actually altered, for batch-level audit.
type FieldChange struct {
	Field string      `json:"field"`
	Old   interface{} `json:"old"`
	New   interface{} `json:"new"`
}

// ChangeSummary is the per-row audit result of a merge.
type ChangeSummary struct {
	Created bool          `json:"created"`
	Changes []FieldChange `json:"changes,omitempty"`
}

// Changed reports whether the merge produced any write at all.
func (s ChangeSummary) Changed() bool {
	return s.Created || len(s.Changes) > 0
}

// MergeEngine applies an incoming field map against an existing entity state,
// consulting the ownership registry per field.
type MergeEngine struct {
	registry *OwnershipRegistry
}

// NewMergeEngine constructs a MergeEngine over the given registry.
func NewMergeEngine(registry *OwnershipRegistry) *MergeEngine {
	if registry == nil {
		registry = NewOwnershipRegistry()
	}
	return &MergeEngine{registry: registry}
}

// Merge computes the writable field set for one incoming row.
//
// With no existing entity every incoming field applies (creation always wins).
// With an existing entity, fields the incoming source does not own are left
// untouched, and owned fields apply only when the value actually differs, so
// an identical re-import produces an empty change set.
func (m *MergeEngine) Merge(existing map[string]interface{}, incoming map[string]interface{}, entity models.EntityType, source models.SourceSystem) (map[string]interface{}, ChangeSummary) {
	applied := make(map[string]interface{}, len(incoming))

	if existing == nil {
		for field, value := range incoming {
			applied[field] = value
		}
		return applied, ChangeSummary{Created: true}
	}

	fields := make([]string, 0, len(incoming))
	for field := range incoming {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	summary := ChangeSummary{}
	for _, field := range fields {
		value := incoming[field]
		if !m.registry.MayWrite(entity, field, source, existing, false) {
			continue
		}
		old, present := existing[field]
		if present && equalValue(old, value) {
			continue
		}
		applied[field] = value
		summary.Changes = append(summary.Changes, FieldChange{Field: field, Old: old, New: value})
	}

	return applied, summary
}

// equalValue compares stored and incoming values, treating a nil pointer and
// nil interface as equal so optional columns do not report phantom changes.
func equalValue(a, b interface{}) bool {
	if a == nil && b == nil {
		return true
	}
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Ptr {
		if av.IsNil() {
			a = nil
		} else {
			a = av.Elem().Interface()
		}
	}
	if bv.Kind() == reflect.Ptr {
		if bv.IsNil() {
			b = nil
		} else {
			b = bv.Elem().Interface()
		}
	}
	return reflect.DeepEqual(a, b)
}
