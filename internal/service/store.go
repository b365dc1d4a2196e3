package service

import (
	"context"
	"time"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/repository"
)

// ImportStore is the persistence surface one import run needs. It is satisfied
// by the repository set adapter in production and by in-memory fakes in tests.
type ImportStore interface {
	ResolverStore

	// InTx runs fn against a transaction-bound view of the store.
	InTx(ctx context.Context, fn func(ImportStore) error) error

	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	CreateTeacher(ctx context.Context, teacher *models.Teacher) error
	UpdateTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error
	ListActiveTeachers(ctx context.Context) ([]models.Teacher, error)
	MarkTeacherRosterRemoved(ctx context.Context, id string, softDelete bool) error
	RestoreTeacher(ctx context.Context, id string) error

	GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error)
	CreateVolunteer(ctx context.Context, volunteer *models.Volunteer) error
	UpdateVolunteerFields(ctx context.Context, id string, fields map[string]interface{}) error
	LinkVolunteerOrganization(ctx context.Context, volunteerID, organizationID string) error

	GetEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, event *models.Event) error
	UpdateEventFields(ctx context.Context, id string, fields map[string]interface{}) error
	LinkEventDistrict(ctx context.Context, eventID, districtID string) error

	FindOrganizationsByName(ctx context.Context, name string) ([]models.Organization, error)
	CreateOrganization(ctx context.Context, org *models.Organization) error
	UpdateOrganizationFields(ctx context.Context, id string, fields map[string]interface{}) error

	GetEventTeacher(ctx context.Context, eventID, teacherID string) (*models.EventTeacher, error)
	CreateEventTeacher(ctx context.Context, row *models.EventTeacher) error
	UpdateEventTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error

	GetVolunteerParticipation(ctx context.Context, eventID, volunteerID string) (*models.EventParticipation, error)
	CreateVolunteerParticipation(ctx context.Context, row *models.EventParticipation) error
	UpdateVolunteerParticipationFields(ctx context.Context, id string, fields map[string]interface{}) error

	GetProgress(ctx context.Context, teacherID, academicYear string) (*models.TeacherProgress, error)
	CreateProgress(ctx context.Context, row *models.TeacherProgress) error
	UpdateProgressFields(ctx context.Context, id string, fields map[string]interface{}) error

	LinkExternalID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType, entityID string) error
	FindSchoolByName(ctx context.Context, name string) (*models.School, error)

	CreateBatch(ctx context.Context, batch *models.ImportBatch) error
	FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error
	AddRowError(ctx context.Context, rowErr *models.ImportRowError) error
	CreateReviewItem(ctx context.Context, item *models.ReviewItem) error

	GetBatch(ctx context.Context, id string) (*models.ImportBatch, error)
	ListBatches(ctx context.Context, filter models.BatchFilter) ([]models.ImportBatch, int, error)
	ListBatchRowErrors(ctx context.Context, batchID string) ([]models.ImportRowError, error)

	ListProgressByYear(ctx context.Context, academicYear string) ([]models.TeacherProgress, error)
	ArchiveProgressYear(ctx context.Context, academicYear string) (int, error)
	CountConfirmedSessions(ctx context.Context, teacherID string, window models.ProgressWindow) (int, error)
	CountUpcomingSessions(ctx context.Context, teacherID string, now time.Time) (int, error)
	ListVolunteers(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, int, error)
	VolunteerOrganizationIDs(ctx context.Context, volunteerID string) ([]string, error)
	ListDistricts(ctx context.Context) ([]models.District, error)
	ListSchools(ctx context.Context) ([]models.School, error)
}

// sqlStore adapts a repository.Set to the ImportStore surface.
type sqlStore struct {
	set *repository.Set
}

// NewSQLStore wraps a repository set for use by the import engine.
func NewSQLStore(set *repository.Set) ImportStore {
	return &sqlStore{set: set}
}

func (s *sqlStore) InTx(ctx context.Context, fn func(ImportStore) error) error {
	return s.set.InTx(ctx, func(txSet *repository.Set) error {
		return fn(&sqlStore{set: txSet})
	})
}

func (s *sqlStore) FindEntityID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType) (string, error) {
	return s.set.ExternalIDs.FindEntityID(ctx, source, sourceKey, entityType)
}

func (s *sqlStore) FindVolunteersByEmails(ctx context.Context, emails []string) ([]models.Volunteer, error) {
	return s.set.Volunteers.FindByEmails(ctx, emails)
}

func (s *sqlStore) FindTeachersByEmails(ctx context.Context, emails []string) ([]models.Teacher, error) {
	return s.set.Teachers.FindByEmails(ctx, emails)
}

func (s *sqlStore) ListTeachersBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	return s.set.Teachers.ListBySchool(ctx, schoolID)
}

func (s *sqlStore) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	return s.set.Teachers.FindByID(ctx, id)
}

func (s *sqlStore) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	return s.set.Teachers.Create(ctx, teacher)
}

func (s *sqlStore) UpdateTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Teachers.UpdateFields(ctx, id, fields)
}

func (s *sqlStore) ListActiveTeachers(ctx context.Context) ([]models.Teacher, error) {
	return s.set.Teachers.ListActive(ctx)
}

func (s *sqlStore) MarkTeacherRosterRemoved(ctx context.Context, id string, softDelete bool) error {
	return s.set.Teachers.MarkRosterRemoved(ctx, id, softDelete)
}

func (s *sqlStore) RestoreTeacher(ctx context.Context, id string) error {
	return s.set.Teachers.RestoreRostered(ctx, id)
}

func (s *sqlStore) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	return s.set.Volunteers.FindByID(ctx, id)
}

func (s *sqlStore) CreateVolunteer(ctx context.Context, volunteer *models.Volunteer) error {
	return s.set.Volunteers.Create(ctx, volunteer)
}

func (s *sqlStore) UpdateVolunteerFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Volunteers.UpdateFields(ctx, id, fields)
}

func (s *sqlStore) LinkVolunteerOrganization(ctx context.Context, volunteerID, organizationID string) error {
	return s.set.Volunteers.LinkOrganization(ctx, volunteerID, organizationID)
}

func (s *sqlStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.set.Events.FindByID(ctx, id)
}

func (s *sqlStore) CreateEvent(ctx context.Context, event *models.Event) error {
	return s.set.Events.Create(ctx, event)
}

func (s *sqlStore) UpdateEventFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Events.UpdateFields(ctx, id, fields)
}

func (s *sqlStore) LinkEventDistrict(ctx context.Context, eventID, districtID string) error {
	return s.set.Events.LinkDistrict(ctx, eventID, districtID)
}

func (s *sqlStore) FindOrganizationsByName(ctx context.Context, name string) ([]models.Organization, error) {
	return s.set.Organizations.FindByName(ctx, name)
}

func (s *sqlStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	return s.set.Organizations.Create(ctx, org)
}

func (s *sqlStore) UpdateOrganizationFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Organizations.UpdateFields(ctx, id, fields)
}

func (s *sqlStore) GetEventTeacher(ctx context.Context, eventID, teacherID string) (*models.EventTeacher, error) {
	return s.set.Participations.GetEventTeacher(ctx, eventID, teacherID)
}

func (s *sqlStore) CreateEventTeacher(ctx context.Context, row *models.EventTeacher) error {
	return s.set.Participations.CreateEventTeacher(ctx, row)
}

func (s *sqlStore) UpdateEventTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Participations.UpdateEventTeacherFields(ctx, id, fields)
}

func (s *sqlStore) GetVolunteerParticipation(ctx context.Context, eventID, volunteerID string) (*models.EventParticipation, error) {
	return s.set.Participations.GetVolunteerParticipation(ctx, eventID, volunteerID)
}

func (s *sqlStore) CreateVolunteerParticipation(ctx context.Context, row *models.EventParticipation) error {
	return s.set.Participations.CreateVolunteerParticipation(ctx, row)
}

func (s *sqlStore) UpdateVolunteerParticipationFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Participations.UpdateVolunteerParticipationFields(ctx, id, fields)
}

func (s *sqlStore) GetProgress(ctx context.Context, teacherID, academicYear string) (*models.TeacherProgress, error) {
	return s.set.Progress.GetByTeacherYear(ctx, teacherID, academicYear)
}

func (s *sqlStore) CreateProgress(ctx context.Context, row *models.TeacherProgress) error {
	return s.set.Progress.Create(ctx, row)
}

func (s *sqlStore) UpdateProgressFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return s.set.Progress.UpdateFields(ctx, id, fields)
}

func (s *sqlStore) LinkExternalID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType, entityID string) error {
	return s.set.ExternalIDs.Link(ctx, source, sourceKey, entityType, entityID)
}

func (s *sqlStore) FindSchoolByName(ctx context.Context, name string) (*models.School, error) {
	return s.set.Reference.FindSchoolByName(ctx, name)
}

func (s *sqlStore) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	return s.set.Batches.Create(ctx, batch)
}

func (s *sqlStore) FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error {
	return s.set.Batches.Finalize(ctx, batch)
}

func (s *sqlStore) AddRowError(ctx context.Context, rowErr *models.ImportRowError) error {
	return s.set.Batches.AddRowError(ctx, rowErr)
}

func (s *sqlStore) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	return s.set.Reviews.Create(ctx, item)
}

func (s *sqlStore) GetBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	return s.set.Batches.Get(ctx, id)
}

func (s *sqlStore) ListBatches(ctx context.Context, filter models.BatchFilter) ([]models.ImportBatch, int, error) {
	return s.set.Batches.List(ctx, filter)
}

func (s *sqlStore) ListBatchRowErrors(ctx context.Context, batchID string) ([]models.ImportRowError, error) {
	return s.set.Batches.ListRowErrors(ctx, batchID)
}

func (s *sqlStore) ListProgressByYear(ctx context.Context, academicYear string) ([]models.TeacherProgress, error) {
	return s.set.Progress.ListByYear(ctx, academicYear)
}

func (s *sqlStore) ArchiveProgressYear(ctx context.Context, academicYear string) (int, error) {
	return s.set.Progress.ArchiveYear(ctx, academicYear)
}

func (s *sqlStore) CountConfirmedSessions(ctx context.Context, teacherID string, window models.ProgressWindow) (int, error) {
	return s.set.Participations.CountConfirmedSessions(ctx, teacherID, window)
}

func (s *sqlStore) CountUpcomingSessions(ctx context.Context, teacherID string, now time.Time) (int, error) {
	return s.set.Participations.CountUpcomingSessions(ctx, teacherID, now)
}

func (s *sqlStore) ListVolunteers(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, int, error) {
	return s.set.Volunteers.List(ctx, filter)
}

func (s *sqlStore) VolunteerOrganizationIDs(ctx context.Context, volunteerID string) ([]string, error) {
	return s.set.Volunteers.OrganizationIDs(ctx, volunteerID)
}

func (s *sqlStore) ListDistricts(ctx context.Context) ([]models.District, error) {
	return s.set.Reference.ListDistricts(ctx)
}

func (s *sqlStore) ListSchools(ctx context.Context) ([]models.School, error) {
	return s.set.Reference.ListSchools(ctx)
}
