package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

func newTestStatusService(store *fakeStore) *StatusService {
	svc := NewStatusService(
		&fakeStoreResolver{store: store},
		NewCacheService(nil, "", 0, false, nil, nil),
		config.ProgressConfig{AcademicYearStartMonth: 7, DefaultTargetSessions: 2},
		config.LocalityConfig{LocalCities: []string{"Springfield"}, LocalStates: []string{"IL"}},
		zap.NewNop(),
	)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestDeriveProgressStatus(t *testing.T) {
	cases := []struct {
		name      string
		completed int
		upcoming  int
		target    int
		want      models.ProgressStatus
	}{
		{"target met", 5, 0, 5, models.ProgressAchieved},
		{"target exceeded", 7, 0, 5, models.ProgressAchieved},
		{"achieved wins over upcoming", 5, 3, 5, models.ProgressAchieved},
		{"past sessions below target", 2, 0, 5, models.ProgressNotStarted},
		{"below target with future signup", 2, 1, 5, models.ProgressInProgress},
		{"only upcoming", 0, 1, 5, models.ProgressInProgress},
		{"nothing yet", 0, 0, 5, models.ProgressNotStarted},
		{"zero target never achieves", 4, 1, 0, models.ProgressInProgress},
		{"zero target past sessions only", 4, 0, 0, models.ProgressNotStarted},
		{"zero target nothing", 0, 0, 0, models.ProgressNotStarted},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveProgressStatus(tc.completed, tc.upcoming, tc.target))
		})
	}
}

func TestDeriveLocalStatus(t *testing.T) {
	svc := newTestStatusService(newFakeStore())

	cases := []struct {
		name  string
		city  *string
		state *string
		want  models.LocalStatus
	}{
		{"no address", nil, nil, models.LocalStatusUnknown},
		{"blank address", strPtr("  "), strPtr(""), models.LocalStatusUnknown},
		{"local city", strPtr("Springfield"), strPtr("IL"), models.LocalStatusLocal},
		{"local city case insensitive", strPtr("SPRINGFIELD"), nil, models.LocalStatusLocal},
		{"in-state only", strPtr("Peoria"), strPtr("il"), models.LocalStatusPartial},
		{"out of state", strPtr("Portland"), strPtr("OR"), models.LocalStatusNonLocal},
		{"state without city", nil, strPtr("IL"), models.LocalStatusPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			v := &models.Volunteer{ContactCore: models.ContactCore{City: tc.city, State: tc.state}}
			assert.Equal(t, tc.want, svc.DeriveLocalStatus(v))
		})
	}
}

func TestWindowForYear(t *testing.T) {
	svc := newTestStatusService(newFakeStore())

	window, err := svc.WindowForYear("2025-2026")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), window.Start)
	assert.Equal(t, time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC), window.End)

	assert.True(t, window.Contains(time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC)))
	assert.False(t, window.Contains(window.End))

	_, err = svc.WindowForYear("spring")
	assert.Error(t, err)
	_, err = svc.WindowForYear("twenty-five")
	assert.Error(t, err)
}

func TestCurrentAcademicYear(t *testing.T) {
	svc := newTestStatusService(newFakeStore())
	assert.Equal(t, "2025-2026", svc.CurrentAcademicYear())
}

func seedProgressTeacher(store *fakeStore, email string, target int) *models.Teacher {
	teacher := store.addTeacher(models.Teacher{
		ContactCore: models.ContactCore{Email: email},
		RosterName:  "Ana Rivera",
		Active:      true,
	})
	store.progress[teacher.ID+"|2025-2026"] = &models.TeacherProgress{
		ID:             "prog-" + teacher.ID,
		TeacherID:      teacher.ID,
		AcademicYear:   "2025-2026",
		RosterName:     teacher.RosterName,
		TargetSessions: target,
	}
	return teacher
}

func confirmedSession(store *fakeStore, teacherID string, at time.Time) {
	id := store.nextID("part")
	store.eventTeachers[id] = &models.EventTeacher{
		ID:                    id,
		EventID:               "ev-" + id,
		TeacherID:             teacherID,
		Status:                models.AttendanceAttended,
		AttendanceConfirmedAt: &at,
	}
}

func upcomingSession(store *fakeStore, teacherID string, start time.Time) {
	event := &models.Event{Title: "Upcoming", StartDate: &start}
	_ = store.CreateEvent(context.Background(), event)
	id := store.nextID("part")
	store.eventTeachers[id] = &models.EventTeacher{
		ID:        id,
		EventID:   event.ID,
		TeacherID: teacherID,
		Status:    models.AttendanceSignedUp,
	}
}

func TestTeacherProgressViewDerivesCounts(t *testing.T) {
	store := newFakeStore()
	store.addSchool("sch1", "Lincoln Elementary")
	teacher := seedProgressTeacher(store, "ana@district.org", 2)
	confirmedSession(store, teacher.ID, time.Date(2025, time.October, 3, 9, 0, 0, 0, time.UTC))
	confirmedSession(store, teacher.ID, time.Date(2026, time.February, 11, 9, 0, 0, 0, time.UTC))
	// Confirmed before the window opened, must not count.
	confirmedSession(store, teacher.ID, time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC))
	upcomingSession(store, teacher.ID, time.Date(2026, time.May, 5, 9, 0, 0, 0, time.UTC))
	svc := newTestStatusService(store)

	view, err := svc.TeacherProgressView(context.Background(), "", teacher.ID, "2025-2026")
	require.NoError(t, err)

	assert.Equal(t, 2, view.CompletedSessions)
	assert.Equal(t, 1, view.UpcomingSessions)
	assert.Equal(t, models.ProgressAchieved, view.Status)
	assert.Equal(t, 2, view.TargetSessions)
}

func TestTeacherProgressViewPastSessionsBelowTargetStayNotStarted(t *testing.T) {
	store := newFakeStore()
	teacher := seedProgressTeacher(store, "ana@district.org", 5)
	confirmedSession(store, teacher.ID, time.Date(2025, time.October, 3, 9, 0, 0, 0, time.UTC))
	confirmedSession(store, teacher.ID, time.Date(2026, time.February, 11, 9, 0, 0, 0, time.UTC))
	svc := newTestStatusService(store)

	view, err := svc.TeacherProgressView(context.Background(), "", teacher.ID, "2025-2026")
	require.NoError(t, err)

	assert.Equal(t, 2, view.CompletedSessions)
	assert.Zero(t, view.UpcomingSessions)
	assert.Equal(t, models.ProgressNotStarted, view.Status,
		"below target, only a future signup moves a teacher into in_progress")
}

func TestTeacherProgressViewDefaultsToCurrentYear(t *testing.T) {
	store := newFakeStore()
	teacher := seedProgressTeacher(store, "ana@district.org", 4)
	svc := newTestStatusService(store)

	view, err := svc.TeacherProgressView(context.Background(), "", teacher.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "2025-2026", view.AcademicYear)
	assert.Equal(t, models.ProgressNotStarted, view.Status)
}

func TestTeacherProgressViewMissingRow(t *testing.T) {
	store := newFakeStore()
	teacher := store.addTeacher(models.Teacher{
		ContactCore: models.ContactCore{Email: "ana@district.org"},
		Active:      true,
	})
	svc := newTestStatusService(store)

	_, err := svc.TeacherProgressView(context.Background(), "", teacher.ID, "2025-2026")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestListTeacherProgressSkipsExcludedTeachers(t *testing.T) {
	store := newFakeStore()
	included := seedProgressTeacher(store, "ana@district.org", 2)
	excluded := seedProgressTeacher(store, "gone@district.org", 2)
	store.teachers[excluded.ID].ExcludeFromReports = true
	svc := newTestStatusService(store)

	views, err := svc.ListTeacherProgress(context.Background(), "", "2025-2026")
	require.NoError(t, err)

	require.Len(t, views, 1)
	assert.Equal(t, included.ID, views[0].TeacherID)
}

func TestListTeacherProgressIgnoresArchivedRows(t *testing.T) {
	store := newFakeStore()
	teacher := seedProgressTeacher(store, "ana@district.org", 2)
	store.progress[teacher.ID+"|2025-2026"].Archived = true
	svc := newTestStatusService(store)

	views, err := svc.ListTeacherProgress(context.Background(), "", "2025-2026")
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestResetAcademicYear(t *testing.T) {
	store := newFakeStore()
	seedProgressTeacher(store, "ana@district.org", 2)
	seedProgressTeacher(store, "ben@district.org", 2)
	svc := newTestStatusService(store)

	archived, err := svc.ResetAcademicYear(context.Background(), "", "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, 2, archived)

	views, err := svc.ListTeacherProgress(context.Background(), "", "2025-2026")
	require.NoError(t, err)
	assert.Empty(t, views)

	// Re-running archives nothing further.
	archived, err = svc.ResetAcademicYear(context.Background(), "", "2025-2026")
	require.NoError(t, err)
	assert.Zero(t, archived)
}

func TestResetAcademicYearRequiresYear(t *testing.T) {
	svc := newTestStatusService(newFakeStore())

	_, err := svc.ResetAcademicYear(context.Background(), "", "")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestGetVolunteerDecoratesLocality(t *testing.T) {
	store := newFakeStore()
	volunteer := &models.Volunteer{ContactCore: models.ContactCore{
		Email: "dana@example.com",
		City:  strPtr("Springfield"),
	}}
	require.NoError(t, store.CreateVolunteer(context.Background(), volunteer))
	require.NoError(t, store.CreateOrganization(context.Background(), &models.Organization{ID: "org1", Name: "Acme"}))
	require.NoError(t, store.LinkVolunteerOrganization(context.Background(), volunteer.ID, "org1"))
	svc := newTestStatusService(store)

	view, err := svc.GetVolunteer(context.Background(), "", volunteer.ID)
	require.NoError(t, err)

	assert.Equal(t, models.LocalStatusLocal, view.LocalStatus)
	assert.Equal(t, []string{"org1"}, view.OrganizationIDs)
}

func TestGetVolunteerNotFound(t *testing.T) {
	svc := newTestStatusService(newFakeStore())

	_, err := svc.GetVolunteer(context.Background(), "", "missing")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}

func TestListVolunteersDerivesEachLocality(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateVolunteer(context.Background(), &models.Volunteer{ContactCore: models.ContactCore{
		Email: "local@example.com", City: strPtr("Springfield"),
	}}))
	require.NoError(t, store.CreateVolunteer(context.Background(), &models.Volunteer{ContactCore: models.ContactCore{
		Email: "far@example.com", State: strPtr("OR"),
	}}))
	svc := newTestStatusService(store)

	views, total, err := svc.ListVolunteers(context.Background(), "", models.VolunteerFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	statuses := map[string]models.LocalStatus{}
	for _, v := range views {
		statuses[v.Email] = v.LocalStatus
	}
	assert.Equal(t, models.LocalStatusLocal, statuses["local@example.com"])
	assert.Equal(t, models.LocalStatusNonLocal, statuses["far@example.com"])
}
