package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

func TestMergeCreateAppliesEveryField(t *testing.T) {
	engine := NewMergeEngine(nil)

	incoming := map[string]interface{}{
		"title":          "Career Day",
		"public_visible": true,
	}
	applied, summary := engine.Merge(nil, incoming, models.EntityEvent, models.SourceSalesforce)

	assert.True(t, summary.Created)
	assert.True(t, summary.Changed())
	assert.Equal(t, incoming, applied)
}

func TestMergeIdenticalReimportIsEmpty(t *testing.T) {
	engine := NewMergeEngine(nil)

	existing := map[string]interface{}{
		"first_name": "Ana",
		"last_name":  "Rivera",
		"email":      "ana@district.org",
	}
	incoming := map[string]interface{}{
		"first_name": "Ana",
		"last_name":  "Rivera",
		"email":      "ana@district.org",
	}

	applied, summary := engine.Merge(existing, incoming, models.EntityTeacher, models.SourceRoster)
	assert.False(t, summary.Changed())
	assert.Empty(t, applied)
}

func TestMergeSkipsUnownedFields(t *testing.T) {
	engine := NewMergeEngine(nil)

	existing := map[string]interface{}{
		"roster_name": "Ana Rivera",
		"status":      models.AttendanceSignedUp,
	}
	incoming := map[string]interface{}{
		"roster_name": "A. Rivera",
	}

	applied, summary := engine.Merge(existing, incoming, models.EntityTeacher, models.SourcePathful)
	assert.False(t, summary.Changed())
	assert.Empty(t, applied)
}

func TestMergeRecordsFieldChanges(t *testing.T) {
	engine := NewMergeEngine(nil)

	existing := map[string]interface{}{
		"roster_name": "Ana Rivera",
		"email":       "ana@district.org",
	}
	incoming := map[string]interface{}{
		"roster_name": "Ana Rivera-Gomez",
		"email":       "ana@district.org",
	}

	applied, summary := engine.Merge(existing, incoming, models.EntityTeacher, models.SourceRoster)
	require.Len(t, summary.Changes, 1)
	assert.Equal(t, "roster_name", summary.Changes[0].Field)
	assert.Equal(t, "Ana Rivera", summary.Changes[0].Old)
	assert.Equal(t, "Ana Rivera-Gomez", summary.Changes[0].New)
	assert.Equal(t, map[string]interface{}{"roster_name": "Ana Rivera-Gomez"}, applied)
}

func TestMergePointerValuesCompareByContent(t *testing.T) {
	engine := NewMergeEngine(nil)

	city := "Springfield"
	sameCity := "Springfield"
	existing := map[string]interface{}{"city": &city}
	incoming := map[string]interface{}{"city": &sameCity}

	_, summary := engine.Merge(existing, incoming, models.EntityVolunteer, models.SourceSalesforce)
	assert.False(t, summary.Changed())
}

func TestMergeNilPointerEqualsNil(t *testing.T) {
	engine := NewMergeEngine(nil)

	existing := map[string]interface{}{"phone": (*string)(nil)}
	incoming := map[string]interface{}{"phone": nil}

	_, summary := engine.Merge(existing, incoming, models.EntityVolunteer, models.SourceSalesforce)
	assert.False(t, summary.Changed())
}
