package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// StatusService derives teacher progress and volunteer locality on demand.
// Derived statuses are never stored: the canonical rows stay the single source
// of truth and the cache is just a recomputation shortcut.
type StatusService struct {
	stores   StoreResolver
	cache    *CacheService
	progress config.ProgressConfig
	locality config.LocalityConfig

	localCities map[string]struct{}
	localStates map[string]struct{}

	logger *zap.Logger
	now    func() time.Time
}

// NewStatusService constructs a StatusService.
func NewStatusService(stores StoreResolver, cache *CacheService, progress config.ProgressConfig, locality config.LocalityConfig, logger *zap.Logger) *StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}

	localCities := make(map[string]struct{}, len(locality.LocalCities))
	for _, c := range locality.LocalCities {
		localCities[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	localStates := make(map[string]struct{}, len(locality.LocalStates))
	for _, st := range locality.LocalStates {
		localStates[strings.ToLower(strings.TrimSpace(st))] = struct{}{}
	}

	return &StatusService{
		stores:      stores,
		cache:       cache,
		progress:    progress,
		locality:    locality,
		localCities: localCities,
		localStates: localStates,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DeriveProgressStatus classifies one teacher's engagement. Achieved is
// checked before In Progress: a teacher who met the target stays Achieved even
// with further sessions booked. Below target, only a future signup counts as
// In Progress; past sessions alone leave the teacher Not Started.
func DeriveProgressStatus(completed, upcoming, target int) models.ProgressStatus {
	if target > 0 && completed >= target {
		return models.ProgressAchieved
	}
	if upcoming > 0 {
		return models.ProgressInProgress
	}
	return models.ProgressNotStarted
}

// DeriveLocalStatus classifies a volunteer's locality from address data.
// Missing address data is unknown, never non-local.
func (s *StatusService) DeriveLocalStatus(v *models.Volunteer) models.LocalStatus {
	city := strings.ToLower(strings.TrimSpace(derefString(v.City)))
	state := strings.ToLower(strings.TrimSpace(derefString(v.State)))

	if city == "" && state == "" {
		return models.LocalStatusUnknown
	}
	if _, ok := s.localCities[city]; ok {
		return models.LocalStatusLocal
	}
	if _, ok := s.localStates[state]; ok {
		return models.LocalStatusPartial
	}
	return models.LocalStatusNonLocal
}

// WindowForYear turns an academic year label like "2025-2026" into the event
// date window used for session counting.
func (s *StatusService) WindowForYear(academicYear string) (models.ProgressWindow, error) {
	parts := strings.SplitN(academicYear, "-", 2)
	if len(parts) != 2 {
		return models.ProgressWindow{}, fmt.Errorf("malformed academic year %q", academicYear)
	}
	startYear, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.ProgressWindow{}, fmt.Errorf("malformed academic year %q", academicYear)
	}

	startMonth := s.progress.AcademicYearStartMonth
	if startMonth < 1 || startMonth > 12 {
		startMonth = 7
	}
	start := time.Date(startYear, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
	return models.ProgressWindow{Start: start, End: start.AddDate(1, 0, 0)}, nil
}

// CurrentAcademicYear labels the school year containing now.
func (s *StatusService) CurrentAcademicYear() string {
	return AcademicYear(s.now(), s.progress.AcademicYearStartMonth)
}

// TeacherProgressView derives one teacher's progress for an academic year.
func (s *StatusService) TeacherProgressView(ctx context.Context, tenantSlug, teacherID, academicYear string) (*models.TeacherProgressView, error) {
	if academicYear == "" {
		academicYear = s.CurrentAcademicYear()
	}

	cacheKey := s.cache.Key(models.EntityTeacher, "progress", academicYear, teacherID)
	var cached models.TeacherProgressView
	if s.cache.Get(ctx, cacheKey, &cached) {
		return &cached, nil
	}

	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	row, err := store.GetProgress(ctx, teacherID, academicYear)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no progress row for teacher in academic year")
	}

	view, err := s.deriveView(ctx, store, row)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cacheKey, view)
	return view, nil
}

// ListTeacherProgress derives progress for every rostered teacher in a year.
// Teachers flagged as excluded from reports are dropped from the result.
func (s *StatusService) ListTeacherProgress(ctx context.Context, tenantSlug, academicYear string) ([]models.TeacherProgressView, error) {
	if academicYear == "" {
		academicYear = s.CurrentAcademicYear()
	}

	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	rows, err := store.ListProgressByYear(ctx, academicYear)
	if err != nil {
		return nil, err
	}

	views := make([]models.TeacherProgressView, 0, len(rows))
	for i := range rows {
		teacher, err := store.GetTeacher(ctx, rows[i].TeacherID)
		if err != nil {
			s.logger.Warn("progress row without teacher",
				zap.String("teacher_id", rows[i].TeacherID),
				zap.Error(err),
			)
			continue
		}
		if teacher.ExcludeFromReports {
			continue
		}

		view, err := s.deriveView(ctx, store, &rows[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	return views, nil
}

func (s *StatusService) deriveView(ctx context.Context, store ImportStore, row *models.TeacherProgress) (*models.TeacherProgressView, error) {
	window, err := s.WindowForYear(row.AcademicYear)
	if err != nil {
		return nil, err
	}

	completed, err := store.CountConfirmedSessions(ctx, row.TeacherID, window)
	if err != nil {
		return nil, err
	}
	upcoming, err := store.CountUpcomingSessions(ctx, row.TeacherID, s.now())
	if err != nil {
		return nil, err
	}

	return &models.TeacherProgressView{
		TeacherProgress:   *row,
		Status:            DeriveProgressStatus(completed, upcoming, row.TargetSessions),
		CompletedSessions: completed,
		UpcomingSessions:  upcoming,
	}, nil
}

// GetVolunteer returns one volunteer decorated with derived locality and
// organization links.
func (s *StatusService) GetVolunteer(ctx context.Context, tenantSlug, id string) (*models.VolunteerView, error) {
	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	volunteer, err := store.GetVolunteer(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "volunteer not found")
	}
	if orgIDs, err := store.VolunteerOrganizationIDs(ctx, id); err == nil {
		volunteer.OrganizationIDs = orgIDs
	}

	return &models.VolunteerView{
		Volunteer:   *volunteer,
		LocalStatus: s.DeriveLocalStatus(volunteer),
	}, nil
}

// ListVolunteers returns volunteers decorated with derived locality.
func (s *StatusService) ListVolunteers(ctx context.Context, tenantSlug string, filter models.VolunteerFilter) ([]models.VolunteerView, int, error) {
	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, 0, err
	}

	volunteers, total, err := store.ListVolunteers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	views := make([]models.VolunteerView, 0, len(volunteers))
	for i := range volunteers {
		views = append(views, models.VolunteerView{
			Volunteer:   volunteers[i],
			LocalStatus: s.DeriveLocalStatus(&volunteers[i]),
		})
	}
	return views, total, nil
}

// ResetAcademicYear archives every progress row of the given year. Roster
// imports for the next year then start from a clean slate while history stays
// queryable. This is an explicit administrative action, never automatic.
func (s *StatusService) ResetAcademicYear(ctx context.Context, tenantSlug, academicYear string) (int, error) {
	if academicYear == "" {
		return 0, appErrors.Clone(appErrors.ErrValidation, "academic year is required")
	}

	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return 0, err
	}

	archived, err := store.ArchiveProgressYear(ctx, academicYear)
	if err != nil {
		return 0, err
	}

	s.cache.InvalidateEntity(ctx, models.EntityTeacher)
	s.logger.Info("academic year reset",
		zap.String("academic_year", academicYear),
		zap.String("tenant", tenantSlug),
		zap.Int("archived", archived),
	)
	return archived, nil
}
