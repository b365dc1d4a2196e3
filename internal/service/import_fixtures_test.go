package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// fakeStore is an in-memory ImportStore so the import engine can be exercised
// end to end without a database.
type fakeStore struct {
	externalIDs    map[string]string
	teachers       map[string]*models.Teacher
	volunteers     map[string]*models.Volunteer
	events         map[string]*models.Event
	organizations  map[string]*models.Organization
	eventTeachers  map[string]*models.EventTeacher
	participations map[string]*models.EventParticipation
	progress       map[string]*models.TeacherProgress
	schools        map[string]*models.School

	batches       map[string]*models.ImportBatch
	rowErrors     []models.ImportRowError
	reviews       []models.ReviewItem
	volunteerOrgs map[string]map[string]struct{}
	removals      map[string]bool

	nextTxErr error
	seq       int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		externalIDs:    make(map[string]string),
		teachers:       make(map[string]*models.Teacher),
		volunteers:     make(map[string]*models.Volunteer),
		events:         make(map[string]*models.Event),
		organizations:  make(map[string]*models.Organization),
		eventTeachers:  make(map[string]*models.EventTeacher),
		participations: make(map[string]*models.EventParticipation),
		progress:       make(map[string]*models.TeacherProgress),
		schools:        make(map[string]*models.School),
		batches:        make(map[string]*models.ImportBatch),
		volunteerOrgs:  make(map[string]map[string]struct{}),
		removals:       make(map[string]bool),
	}
}

func (f *fakeStore) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakeStore) addSchool(id, name string) *models.School {
	school := &models.School{ID: id, Name: name}
	f.schools[strings.ToLower(name)] = school
	return school
}

func (f *fakeStore) addTeacher(teacher models.Teacher) *models.Teacher {
	if teacher.ID == "" {
		teacher.ID = f.nextID("teacher")
	}
	cp := teacher
	f.teachers[cp.ID] = &cp
	return &cp
}

func extKey(source models.SourceSystem, sourceKey string, entityType models.EntityType) string {
	return string(source) + "|" + sourceKey + "|" + string(entityType)
}

func (f *fakeStore) InTx(ctx context.Context, fn func(ImportStore) error) error {
	if f.nextTxErr != nil {
		err := f.nextTxErr
		f.nextTxErr = nil
		return err
	}
	return fn(f)
}

func (f *fakeStore) FindEntityID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType) (string, error) {
	return f.externalIDs[extKey(source, sourceKey, entityType)], nil
}

func (f *fakeStore) FindVolunteersByEmails(ctx context.Context, emails []string) ([]models.Volunteer, error) {
	var out []models.Volunteer
	for _, v := range f.volunteers {
		for _, email := range emails {
			if v.Email == email || (v.SecondaryEmail != nil && *v.SecondaryEmail == email) {
				out = append(out, *v)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) FindTeachersByEmails(ctx context.Context, emails []string) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range f.teachers {
		if teacher.DeletedAt != nil {
			continue
		}
		for _, email := range emails {
			if teacher.Email == email {
				out = append(out, *teacher)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStore) ListTeachersBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range f.teachers {
		if teacher.SchoolID != nil && *teacher.SchoolID == schoolID && teacher.DeletedAt == nil {
			out = append(out, *teacher)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, ok := f.teachers[id]
	if !ok {
		return nil, fmt.Errorf("teacher %s not found", id)
	}
	cp := *teacher
	return &cp, nil
}

func (f *fakeStore) CreateTeacher(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = f.nextID("teacher")
	}
	cp := *teacher
	f.teachers[teacher.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error {
	teacher, ok := f.teachers[id]
	if !ok {
		return fmt.Errorf("teacher %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "first_name":
			teacher.FirstName = value.(string)
		case "last_name":
			teacher.LastName = value.(string)
		case "email":
			teacher.Email = value.(string)
		case "roster_name":
			teacher.RosterName = value.(string)
		case "school_id":
			teacher.SchoolID = value.(*string)
		}
	}
	return nil
}

func (f *fakeStore) ListActiveTeachers(ctx context.Context) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range f.teachers {
		if teacher.Active && !teacher.RosterRemoved && teacher.DeletedAt == nil {
			out = append(out, *teacher)
		}
	}
	return out, nil
}

func (f *fakeStore) MarkTeacherRosterRemoved(ctx context.Context, id string, softDelete bool) error {
	teacher, ok := f.teachers[id]
	if !ok {
		return fmt.Errorf("teacher %s not found", id)
	}
	teacher.RosterRemoved = true
	teacher.ExcludeFromReports = true
	if softDelete {
		teacher.Active = false
		now := time.Now().UTC()
		teacher.DeletedAt = &now
	}
	f.removals[id] = softDelete
	return nil
}

func (f *fakeStore) RestoreTeacher(ctx context.Context, id string) error {
	teacher, ok := f.teachers[id]
	if !ok {
		return fmt.Errorf("teacher %s not found", id)
	}
	teacher.RosterRemoved = false
	teacher.ExcludeFromReports = false
	teacher.Active = true
	teacher.DeletedAt = nil
	return nil
}

func (f *fakeStore) GetVolunteer(ctx context.Context, id string) (*models.Volunteer, error) {
	v, ok := f.volunteers[id]
	if !ok {
		return nil, fmt.Errorf("volunteer %s not found", id)
	}
	cp := *v
	return &cp, nil
}

func (f *fakeStore) CreateVolunteer(ctx context.Context, volunteer *models.Volunteer) error {
	if volunteer.ID == "" {
		volunteer.ID = f.nextID("vol")
	}
	cp := *volunteer
	f.volunteers[volunteer.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateVolunteerFields(ctx context.Context, id string, fields map[string]interface{}) error {
	v, ok := f.volunteers[id]
	if !ok {
		return fmt.Errorf("volunteer %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "first_name":
			v.FirstName = value.(string)
		case "last_name":
			v.LastName = value.(string)
		case "email":
			v.Email = value.(string)
		case "phone":
			v.Phone = value.(*string)
		case "city":
			v.City = value.(*string)
		case "state":
			v.State = value.(*string)
		}
	}
	return nil
}

func (f *fakeStore) LinkVolunteerOrganization(ctx context.Context, volunteerID, organizationID string) error {
	if f.volunteerOrgs[volunteerID] == nil {
		f.volunteerOrgs[volunteerID] = make(map[string]struct{})
	}
	f.volunteerOrgs[volunteerID][organizationID] = struct{}{}
	return nil
}

func (f *fakeStore) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	event, ok := f.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s not found", id)
	}
	cp := *event
	return &cp, nil
}

func (f *fakeStore) CreateEvent(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = f.nextID("event")
	}
	cp := *event
	f.events[event.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateEventFields(ctx context.Context, id string, fields map[string]interface{}) error {
	event, ok := f.events[id]
	if !ok {
		return fmt.Errorf("event %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "title":
			event.Title = value.(string)
		case "start_date":
			event.StartDate = value.(*time.Time)
		case "end_date":
			event.EndDate = value.(*time.Time)
		case "location":
			event.Location = value.(*string)
		case "status":
			event.Status = value.(*string)
		case "description":
			event.Description = value.(*string)
		case "public_visible":
			event.PublicVisible = value.(bool)
		}
	}
	return nil
}

func (f *fakeStore) LinkEventDistrict(ctx context.Context, eventID, districtID string) error {
	event, ok := f.events[eventID]
	if !ok {
		return fmt.Errorf("event %s not found", eventID)
	}
	for _, existing := range event.DistrictIDs {
		if existing == districtID {
			return nil
		}
	}
	event.DistrictIDs = append(event.DistrictIDs, districtID)
	return nil
}

func (f *fakeStore) FindOrganizationsByName(ctx context.Context, name string) ([]models.Organization, error) {
	var out []models.Organization
	for _, org := range f.organizations {
		if strings.EqualFold(org.Name, name) {
			out = append(out, *org)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if org.ID == "" {
		org.ID = f.nextID("org")
	}
	cp := *org
	f.organizations[org.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateOrganizationFields(ctx context.Context, id string, fields map[string]interface{}) error {
	org, ok := f.organizations[id]
	if !ok {
		return fmt.Errorf("organization %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "name":
			org.Name = value.(string)
		case "org_type":
			org.OrgType = value.(*string)
		case "website":
			org.Website = value.(*string)
		}
	}
	return nil
}

func (f *fakeStore) GetEventTeacher(ctx context.Context, eventID, teacherID string) (*models.EventTeacher, error) {
	for _, row := range f.eventTeachers {
		if row.EventID == eventID && row.TeacherID == teacherID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateEventTeacher(ctx context.Context, row *models.EventTeacher) error {
	if row.ID == "" {
		row.ID = f.nextID("et")
	}
	cp := *row
	f.eventTeachers[row.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateEventTeacherFields(ctx context.Context, id string, fields map[string]interface{}) error {
	row, ok := f.eventTeachers[id]
	if !ok {
		return fmt.Errorf("participation %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "status":
			row.Status = value.(models.AttendanceStatus)
		case "attendance_confirmed_at":
			row.AttendanceConfirmedAt = value.(*time.Time)
		case "credited_hours":
			row.CreditedHours = value.(*float64)
		}
	}
	return nil
}

func (f *fakeStore) GetVolunteerParticipation(ctx context.Context, eventID, volunteerID string) (*models.EventParticipation, error) {
	for _, row := range f.participations {
		if row.EventID == eventID && row.VolunteerID == volunteerID {
			cp := *row
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateVolunteerParticipation(ctx context.Context, row *models.EventParticipation) error {
	if row.ID == "" {
		row.ID = f.nextID("ep")
	}
	cp := *row
	f.participations[row.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateVolunteerParticipationFields(ctx context.Context, id string, fields map[string]interface{}) error {
	row, ok := f.participations[id]
	if !ok {
		return fmt.Errorf("participation %s not found", id)
	}
	for field, value := range fields {
		switch field {
		case "status":
			row.Status = value.(models.AttendanceStatus)
		case "participant_type":
			row.ParticipantType = value.(models.ParticipantType)
		case "credited_hours":
			row.CreditedHours = value.(*float64)
		}
	}
	return nil
}

func (f *fakeStore) GetProgress(ctx context.Context, teacherID, academicYear string) (*models.TeacherProgress, error) {
	row, ok := f.progress[teacherID+"|"+academicYear]
	if !ok {
		return nil, nil
	}
	cp := *row
	return &cp, nil
}

func (f *fakeStore) CreateProgress(ctx context.Context, row *models.TeacherProgress) error {
	if row.ID == "" {
		row.ID = f.nextID("prog")
	}
	cp := *row
	f.progress[row.TeacherID+"|"+row.AcademicYear] = &cp
	return nil
}

func (f *fakeStore) UpdateProgressFields(ctx context.Context, id string, fields map[string]interface{}) error {
	for _, row := range f.progress {
		if row.ID != id {
			continue
		}
		for field, value := range fields {
			switch field {
			case "roster_name":
				row.RosterName = value.(string)
			case "school_name":
				row.SchoolName = value.(*string)
			case "target_sessions":
				row.TargetSessions = value.(int)
			case "archived":
				row.Archived = value.(bool)
			}
		}
		return nil
	}
	return fmt.Errorf("progress %s not found", id)
}

func (f *fakeStore) LinkExternalID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType, entityID string) error {
	key := extKey(source, sourceKey, entityType)
	if existing, ok := f.externalIDs[key]; ok {
		if existing == entityID {
			return nil
		}
		return fmt.Errorf("external id %s/%s already linked to entity %s", source, sourceKey, existing)
	}
	f.externalIDs[key] = entityID
	return nil
}

func (f *fakeStore) FindSchoolByName(ctx context.Context, name string) (*models.School, error) {
	school, ok := f.schools[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, nil
	}
	cp := *school
	return &cp, nil
}

func (f *fakeStore) CreateBatch(ctx context.Context, batch *models.ImportBatch) error {
	cp := *batch
	f.batches[batch.ID] = &cp
	return nil
}

func (f *fakeStore) FinalizeBatch(ctx context.Context, batch *models.ImportBatch) error {
	now := time.Now().UTC()
	batch.FinishedAt = &now
	cp := *batch
	f.batches[batch.ID] = &cp
	return nil
}

func (f *fakeStore) AddRowError(ctx context.Context, rowErr *models.ImportRowError) error {
	f.rowErrors = append(f.rowErrors, *rowErr)
	return nil
}

func (f *fakeStore) CreateReviewItem(ctx context.Context, item *models.ReviewItem) error {
	if item.ID == "" {
		item.ID = f.nextID("review")
	}
	f.reviews = append(f.reviews, *item)
	return nil
}

func (f *fakeStore) GetBatch(ctx context.Context, id string) (*models.ImportBatch, error) {
	batch, ok := f.batches[id]
	if !ok {
		return nil, fmt.Errorf("batch %s not found", id)
	}
	cp := *batch
	return &cp, nil
}

func (f *fakeStore) ListBatches(ctx context.Context, filter models.BatchFilter) ([]models.ImportBatch, int, error) {
	var out []models.ImportBatch
	for _, batch := range f.batches {
		out = append(out, *batch)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListBatchRowErrors(ctx context.Context, batchID string) ([]models.ImportRowError, error) {
	var out []models.ImportRowError
	for _, rowErr := range f.rowErrors {
		if rowErr.BatchID == batchID {
			out = append(out, rowErr)
		}
	}
	return out, nil
}

func (f *fakeStore) ListProgressByYear(ctx context.Context, academicYear string) ([]models.TeacherProgress, error) {
	var out []models.TeacherProgress
	for _, row := range f.progress {
		if row.AcademicYear == academicYear && !row.Archived {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (f *fakeStore) ArchiveProgressYear(ctx context.Context, academicYear string) (int, error) {
	archived := 0
	for _, row := range f.progress {
		if row.AcademicYear == academicYear && !row.Archived {
			row.Archived = true
			archived++
		}
	}
	return archived, nil
}

func (f *fakeStore) CountConfirmedSessions(ctx context.Context, teacherID string, window models.ProgressWindow) (int, error) {
	count := 0
	for _, row := range f.eventTeachers {
		if row.TeacherID != teacherID || row.Status != models.AttendanceAttended {
			continue
		}
		if row.AttendanceConfirmedAt != nil && window.Contains(*row.AttendanceConfirmedAt) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) CountUpcomingSessions(ctx context.Context, teacherID string, now time.Time) (int, error) {
	count := 0
	for _, row := range f.eventTeachers {
		if row.TeacherID != teacherID || row.Status != models.AttendanceSignedUp {
			continue
		}
		event, ok := f.events[row.EventID]
		if ok && event.StartDate != nil && event.StartDate.After(now) {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListVolunteers(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, int, error) {
	var out []models.Volunteer
	for _, v := range f.volunteers {
		out = append(out, *v)
	}
	return out, len(out), nil
}

func (f *fakeStore) VolunteerOrganizationIDs(ctx context.Context, volunteerID string) ([]string, error) {
	var out []string
	for id := range f.volunteerOrgs[volunteerID] {
		out = append(out, id)
	}
	return out, nil
}

func (f *fakeStore) ListDistricts(ctx context.Context) ([]models.District, error) {
	return nil, nil
}

func (f *fakeStore) ListSchools(ctx context.Context) ([]models.School, error) {
	var out []models.School
	for _, school := range f.schools {
		out = append(out, *school)
	}
	return out, nil
}

// fakeStoreResolver hands every tenant the same fake store.
type fakeStoreResolver struct {
	store ImportStore
	err   error
}

func (f *fakeStoreResolver) StoreFor(ctx context.Context, tenantSlug string) (ImportStore, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.store, nil
}

func (f *fakeStoreResolver) GuardScope(requestSlug, resourceSlug string) error {
	if requestSlug == resourceSlug {
		return nil
	}
	return appErrors.Clone(appErrors.ErrTenantScope,
		fmt.Sprintf("resource belongs to tenant %q, request is scoped to %q", resourceSlug, requestSlug))
}

// fakeLocks tracks lock acquisition and can simulate contention.
type fakeLocks struct {
	contended bool
	acquired  []string
	released  []string
}

func (f *fakeLocks) AcquireLock(ctx context.Context, key, holder string, ttl time.Duration) (bool, error) {
	if f.contended {
		return false, nil
	}
	f.acquired = append(f.acquired, key)
	return true, nil
}

func (f *fakeLocks) ReleaseLock(ctx context.Context, key, holder string) error {
	f.released = append(f.released, key)
	return nil
}

func newTestImportService(store *fakeStore, locks LockStore) *ImportService {
	return NewImportService(
		&fakeStoreResolver{store: store},
		locks,
		NewMergeEngine(nil),
		nil,
		NewMetricsService(),
		config.ImportsConfig{Enabled: true, RunLockTTL: time.Minute, RosterRemoval: config.RosterRemovalFlagOnly},
		config.MatchingConfig{FuzzyThreshold: 0.85, FuzzyEnabled: true},
		config.ProgressConfig{AcademicYearStartMonth: 7, DefaultTargetSessions: 2},
		zap.NewNop(),
	)
}
