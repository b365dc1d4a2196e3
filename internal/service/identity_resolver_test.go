package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

type mockResolverStore struct {
	externalIDs map[string]string // "<source>|<key>|<entity>" -> entity id
	volunteers  []models.Volunteer
	teachers    []models.Teacher
	bySchool    map[string][]models.Teacher
}

func (m *mockResolverStore) FindEntityID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType) (string, error) {
	return m.externalIDs[string(source)+"|"+sourceKey+"|"+string(entityType)], nil
}

func (m *mockResolverStore) FindVolunteersByEmails(ctx context.Context, emails []string) ([]models.Volunteer, error) {
	var out []models.Volunteer
	for _, v := range m.volunteers {
		for _, email := range emails {
			if v.Email == email {
				out = append(out, v)
				break
			}
		}
	}
	return out, nil
}

func (m *mockResolverStore) FindTeachersByEmails(ctx context.Context, emails []string) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range m.teachers {
		for _, email := range emails {
			if teacher.Email == email {
				out = append(out, teacher)
				break
			}
		}
	}
	return out, nil
}

func (m *mockResolverStore) ListTeachersBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	return m.bySchool[schoolID], nil
}

func TestResolveByExternalIDWinsOverEmail(t *testing.T) {
	store := &mockResolverStore{
		externalIDs: map[string]string{"salesforce|SF-1|volunteer": "v1"},
		volunteers:  []models.Volunteer{{ContactCore: models.ContactCore{ID: "v2", Email: "dana@example.com"}}},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType:  models.EntityVolunteer,
		Source:      models.SourceSalesforce,
		ExternalKey: "SF-1",
		Emails:      []string{"dana@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", res.EntityID)
	assert.Equal(t, MatchExternalID, res.Method)
	assert.True(t, res.Confident)
}

func TestResolveByEmail(t *testing.T) {
	store := &mockResolverStore{
		teachers: []models.Teacher{{ContactCore: models.ContactCore{ID: "t1", Email: "ana@district.org"}}},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourcePathful,
		Emails:     []string{"ana@district.org"},
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", res.EntityID)
	assert.Equal(t, MatchEmail, res.Method)
}

func TestResolveAmbiguousEmailIsError(t *testing.T) {
	store := &mockResolverStore{
		teachers: []models.Teacher{
			{ContactCore: models.ContactCore{ID: "t1", Email: "shared@district.org"}},
			{ContactCore: models.ContactCore{ID: "t2", Email: "shared@district.org"}},
		},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourcePathful,
		Emails:     []string{"shared@district.org"},
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrAmbiguousMatch.Code))
	assert.ElementsMatch(t, []string{"t1", "t2"}, res.Candidates)
}

func TestResolveByCompositeKey(t *testing.T) {
	store := &mockResolverStore{
		externalIDs: map[string]string{"pathful|composite:EV-9|ana@district.org|participation": "p1"},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType:   models.EntityParticipation,
		Source:       models.SourcePathful,
		CompositeKey: "EV-9|ana@district.org",
	})
	require.NoError(t, err)
	assert.Equal(t, "p1", res.EntityID)
	assert.Equal(t, MatchComposite, res.Method)
}

func TestResolveFuzzyNameIsNotConfident(t *testing.T) {
	store := &mockResolverStore{
		bySchool: map[string][]models.Teacher{
			"sch1": {
				{ContactCore: models.ContactCore{ID: "t1", FirstName: "Jon", LastName: "Smith"}},
				{ContactCore: models.ContactCore{ID: "t2", FirstName: "Marcus", LastName: "Webb"}},
			},
		},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourceRoster,
		FullName:   "John Smith",
		SchoolID:   "sch1",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", res.EntityID)
	assert.Equal(t, MatchFuzzy, res.Method)
	assert.False(t, res.Confident)
	assert.GreaterOrEqual(t, res.Score, 0.85)
}

func TestResolveFuzzyPrefersRosterName(t *testing.T) {
	store := &mockResolverStore{
		bySchool: map[string][]models.Teacher{
			"sch1": {{
				ContactCore: models.ContactCore{ID: "t1", FirstName: "A", LastName: "R"},
				RosterName:  "Ana Rivera",
			}},
		},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourceRoster,
		FullName:   "Rivera, Ana",
		SchoolID:   "sch1",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", res.EntityID)
}

func TestResolveFuzzyTieIsAmbiguous(t *testing.T) {
	store := &mockResolverStore{
		bySchool: map[string][]models.Teacher{
			"sch1": {
				{ContactCore: models.ContactCore{ID: "t1"}, RosterName: "Jon Smith"},
				{ContactCore: models.ContactCore{ID: "t2"}, RosterName: "Jon Smith"},
			},
		},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, true, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourceRoster,
		FullName:   "Jon Smith",
		SchoolID:   "sch1",
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrAmbiguousMatch.Code))
}

func TestResolveFuzzyDisabled(t *testing.T) {
	store := &mockResolverStore{
		bySchool: map[string][]models.Teacher{
			"sch1": {{ContactCore: models.ContactCore{ID: "t1"}, RosterName: "Jon Smith"}},
		},
	}
	resolver := NewIdentityResolver(store, nil, 0.85, false, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType: models.EntityTeacher,
		Source:     models.SourceRoster,
		FullName:   "Jon Smith",
		SchoolID:   "sch1",
	})
	require.NoError(t, err)
	assert.False(t, res.Matched())
	assert.Equal(t, MatchNone, res.Method)
}

func TestResolveNoMatch(t *testing.T) {
	resolver := NewIdentityResolver(&mockResolverStore{}, nil, 0.85, true, zap.NewNop())

	res, err := resolver.Resolve(context.Background(), IncomingRecord{
		EntityType:  models.EntityVolunteer,
		Source:      models.SourceSalesforce,
		ExternalKey: "SF-404",
		Emails:      []string{"nobody@example.com"},
	})
	require.NoError(t, err)
	assert.False(t, res.Matched())
}
