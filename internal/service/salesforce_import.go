package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// SalesforceEventRecord is one CRM event in a sync payload.
type SalesforceEventRecord struct {
	ExternalID    string   `json:"external_id" validate:"required"`
	Title         string   `json:"title" validate:"required"`
	Description   *string  `json:"description,omitempty"`
	StartDate     *string  `json:"start_date,omitempty"`
	EndDate       *string  `json:"end_date,omitempty"`
	Location      *string  `json:"location,omitempty"`
	Status        *string  `json:"status,omitempty"`
	PublicVisible bool     `json:"public_visible"`
	DistrictIDs   []string `json:"district_ids,omitempty"`

	Participants []SalesforceEventParticipant `json:"participants,omitempty"`
}

// SalesforceEventParticipant is one volunteer attached to a CRM event record.
type SalesforceEventParticipant struct {
	VolunteerExternalID string   `json:"volunteer_external_id" validate:"required"`
	Status              *string  `json:"status,omitempty"`
	ParticipantType     *string  `json:"participant_type,omitempty"`
	CreditedHours       *float64 `json:"credited_hours,omitempty"`
}

// SalesforceVolunteerRecord is one CRM contact in a sync payload.
type SalesforceVolunteerRecord struct {
	ExternalID     string   `json:"external_id" validate:"required"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	SecondaryEmail *string  `json:"secondary_email,omitempty"`
	Phone          *string  `json:"phone,omitempty"`
	Title          *string  `json:"title,omitempty"`
	Street         *string  `json:"street,omitempty"`
	City           *string  `json:"city,omitempty"`
	State          *string  `json:"state,omitempty"`
	PostalCode     *string  `json:"postal_code,omitempty"`
	Gender         *string  `json:"gender,omitempty"`
	RaceEthnicity  *string  `json:"race_ethnicity,omitempty"`
	Organizations  []string `json:"organizations,omitempty"`
}

// SalesforceOrganizationRecord is one CRM account in a sync payload.
type SalesforceOrganizationRecord struct {
	ExternalID string  `json:"external_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	OrgType    *string `json:"org_type,omitempty"`
	Website    *string `json:"website,omitempty"`
}

// RunSalesforceEventSync reconciles CRM events. In-person core fields follow
// the CRM; virtual events and the public-page toggle stay untouched. An empty
// payload completes with an all-zero report, which is not a failure.
func (s *ImportService) RunSalesforceEventSync(ctx context.Context, tenantSlug string, records []SalesforceEventRecord) (*models.ImportBatch, error) {
	run, err := s.begin(ctx, tenantSlug, models.EntityEvent, models.SourceSalesforce)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		rowNum := i + 1

		if record.ExternalID == "" {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "external_id", "MISSING_VALUE", "event external id is required")
			continue
		}
		if record.Title == "" {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "title", "MISSING_VALUE", "event title is required")
			continue
		}
		if _, dup := seen[record.ExternalID]; dup {
			run.batch.Add(models.RowSkipped)
			continue
		}
		seen[record.ExternalID] = struct{}{}

		incoming := map[string]interface{}{
			"title":          record.Title,
			"description":    record.Description,
			"location":       record.Location,
			"status":         record.Status,
			"public_visible": record.PublicVisible,
		}
		if bad := parseDateField(incoming, "start_date", record.StartDate); bad != nil {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "start_date", "INVALID_DATE", bad.Error())
			continue
		}
		if bad := parseDateField(incoming, "end_date", record.EndDate); bad != nil {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "end_date", "INVALID_DATE", bad.Error())
			continue
		}

		record := record
		var res rowResult
		txErr := run.store.InTx(ctx, func(tx ImportStore) error {
			var applyErr error
			res, applyErr = s.applySalesforceEvent(ctx, tx, record, incoming)
			return applyErr
		})
		s.recordRow(ctx, run, rowNum, models.EntityEvent, res, txErr, record)
	}

	return s.finish(ctx, run, nil)
}

func (s *ImportService) applySalesforceEvent(ctx context.Context, tx ImportStore, record SalesforceEventRecord, incoming map[string]interface{}) (rowResult, error) {
	resolver := s.resolver(tx)
	resolution, err := resolver.Resolve(ctx, IncomingRecord{
		EntityType:  models.EntityEvent,
		Source:      models.SourceSalesforce,
		ExternalKey: record.ExternalID,
	})
	if err != nil {
		return rowResult{}, err
	}

	var created, updated bool
	eventID := resolution.EntityID

	if !resolution.Matched() {
		event := &models.Event{
			Title:         record.Title,
			Description:   record.Description,
			Format:        models.EventInPerson,
			Location:      record.Location,
			Status:        record.Status,
			PublicVisible: record.PublicVisible,
		}
		event.StartDate = timeField(incoming, "start_date")
		event.EndDate = timeField(incoming, "end_date")

		if err := tx.CreateEvent(ctx, event); err != nil {
			return rowResult{}, fmt.Errorf("create event: %w", err)
		}
		if err := tx.LinkExternalID(ctx, models.SourceSalesforce, record.ExternalID, models.EntityEvent, event.ID); err != nil {
			return rowResult{}, err
		}
		// District links are seeded once at creation. After that the
		// publishing system curates them and CRM syncs leave them alone.
		for _, districtID := range record.DistrictIDs {
			if err := tx.LinkEventDistrict(ctx, event.ID, districtID); err != nil {
				return rowResult{}, fmt.Errorf("link district %s: %w", districtID, err)
			}
		}
		eventID = event.ID
		created = true
	} else {
		existing, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return rowResult{}, fmt.Errorf("load event %s: %w", eventID, err)
		}
		applied, summary := s.merge.Merge(eventFieldMap(existing), incoming, models.EntityEvent, models.SourceSalesforce)
		if summary.Changed() {
			if err := tx.UpdateEventFields(ctx, eventID, applied); err != nil {
				return rowResult{}, fmt.Errorf("update event %s: %w", eventID, err)
			}
			updated = true
		}
	}

	var partRes *rowResult
	for _, participant := range record.Participants {
		c, u, bad, err := s.applyEventParticipant(ctx, tx, eventID, participant)
		if err != nil {
			return rowResult{}, err
		}
		created = created || c
		updated = updated || u
		if bad != nil && partRes == nil {
			partRes = bad
		}
	}

	res := rowResult{outcome: outcomeOf(created, updated)}
	if partRes != nil {
		res.errColumn = partRes.errColumn
		res.errCode = partRes.errCode
		res.errMessage = partRes.errMessage
	}
	return res, nil
}

// applyEventParticipant upserts the (volunteer, event) join row for one CRM
// attendee. The pair lookup keeps re-syncs updating the single existing row
// instead of duplicating it. Unknown contacts are reported per row and never
// auto-created.
func (s *ImportService) applyEventParticipant(ctx context.Context, tx ImportStore, eventID string, p SalesforceEventParticipant) (created, updated bool, bad *rowResult, err error) {
	volunteerID, err := tx.FindEntityID(ctx, models.SourceSalesforce, p.VolunteerExternalID, models.EntityVolunteer)
	if err != nil {
		return false, false, nil, err
	}
	if volunteerID == "" {
		return false, false, &rowResult{
			errColumn:  "participants",
			errCode:    "UNKNOWN_VOLUNTEER",
			errMessage: fmt.Sprintf("no volunteer linked to CRM contact %q", p.VolunteerExternalID),
		}, nil
	}

	status := models.AttendanceSignedUp
	if p.Status != nil {
		mapped, ok := mapAttendanceStatus(*p.Status)
		if !ok {
			return false, false, &rowResult{
				errColumn:  "participants",
				errCode:    "INVALID_STATUS",
				errMessage: fmt.Sprintf("unrecognized attendance status %q", *p.Status),
			}, nil
		}
		status = mapped
	}
	participantType := models.ParticipantVolunteer
	if p.ParticipantType != nil && strings.EqualFold(*p.ParticipantType, string(models.ParticipantPresenter)) {
		participantType = models.ParticipantPresenter
	}

	existing, err := tx.GetVolunteerParticipation(ctx, eventID, volunteerID)
	if err != nil {
		return false, false, nil, err
	}
	if existing == nil {
		row := &models.EventParticipation{
			EventID:         eventID,
			VolunteerID:     volunteerID,
			Status:          status,
			ParticipantType: participantType,
			CreditedHours:   p.CreditedHours,
		}
		if err := tx.CreateVolunteerParticipation(ctx, row); err != nil {
			return false, false, nil, fmt.Errorf("create volunteer participation: %w", err)
		}
		return true, false, nil, nil
	}

	fields := make(map[string]interface{})
	if existing.Status != status {
		fields["status"] = status
	}
	if existing.ParticipantType != participantType {
		fields["participant_type"] = participantType
	}
	if p.CreditedHours != nil && (existing.CreditedHours == nil || *existing.CreditedHours != *p.CreditedHours) {
		fields["credited_hours"] = p.CreditedHours
	}
	if len(fields) == 0 {
		return false, false, nil, nil
	}
	if err := tx.UpdateVolunteerParticipationFields(ctx, existing.ID, fields); err != nil {
		return false, false, nil, fmt.Errorf("update volunteer participation %s: %w", existing.ID, err)
	}
	return false, true, nil, nil
}

// RunSalesforceVolunteerSync reconciles CRM contacts onto canonical
// volunteers. The canonical store owns volunteer emails: CRM rows never
// rewrite them after creation.
func (s *ImportService) RunSalesforceVolunteerSync(ctx context.Context, tenantSlug string, records []SalesforceVolunteerRecord) (*models.ImportBatch, error) {
	run, err := s.begin(ctx, tenantSlug, models.EntityVolunteer, models.SourceSalesforce)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		rowNum := i + 1

		if record.ExternalID == "" {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "external_id", "MISSING_VALUE", "volunteer external id is required")
			continue
		}
		if _, dup := seen[record.ExternalID]; dup {
			run.batch.Add(models.RowSkipped)
			continue
		}
		seen[record.ExternalID] = struct{}{}

		record := record
		var res rowResult
		txErr := run.store.InTx(ctx, func(tx ImportStore) error {
			var applyErr error
			res, applyErr = s.applySalesforceVolunteer(ctx, tx, record)
			return applyErr
		})
		s.recordRow(ctx, run, rowNum, models.EntityVolunteer, res, txErr, record)
	}

	return s.finish(ctx, run, nil)
}

func (s *ImportService) applySalesforceVolunteer(ctx context.Context, tx ImportStore, record SalesforceVolunteerRecord) (rowResult, error) {
	resolver := s.resolver(tx)

	email := NormalizeEmail(record.Email)
	rec := IncomingRecord{
		EntityType:  models.EntityVolunteer,
		Source:      models.SourceSalesforce,
		ExternalKey: record.ExternalID,
	}
	if email != "" {
		rec.Emails = NormalizeEmails(email, derefString(record.SecondaryEmail))
	}

	resolution, err := resolver.Resolve(ctx, rec)
	if err != nil {
		if appErrors.IsCode(err, appErrors.ErrAmbiguousMatch.Code) {
			return rowResult{
				outcome:    models.RowInvalid,
				review:     models.ReviewAmbiguous,
				candidates: resolution.Candidates,
				errColumn:  "email",
				errCode:    appErrors.ErrAmbiguousMatch.Code,
				errMessage: err.Error(),
			}, nil
		}
		return rowResult{}, err
	}

	var created, updated bool
	var volunteerID string

	if resolution.Matched() {
		volunteerID = resolution.EntityID
		existing, err := tx.GetVolunteer(ctx, volunteerID)
		if err != nil {
			return rowResult{}, fmt.Errorf("load volunteer %s: %w", volunteerID, err)
		}

		incoming := map[string]interface{}{
			"first_name":      record.FirstName,
			"last_name":       record.LastName,
			"email":           email,
			"secondary_email": record.SecondaryEmail,
			"phone":           record.Phone,
			"title":           record.Title,
			"street":          record.Street,
			"city":            record.City,
			"state":           record.State,
			"postal_code":     record.PostalCode,
			"gender":          record.Gender,
			"race_ethnicity":  record.RaceEthnicity,
		}
		applied, summary := s.merge.Merge(volunteerFieldMap(existing), incoming, models.EntityVolunteer, models.SourceSalesforce)
		if summary.Changed() {
			if err := tx.UpdateVolunteerFields(ctx, volunteerID, applied); err != nil {
				return rowResult{}, fmt.Errorf("update volunteer %s: %w", volunteerID, err)
			}
			updated = true
		}
	} else {
		volunteer := &models.Volunteer{
			ContactCore: models.ContactCore{
				FirstName:      record.FirstName,
				LastName:       record.LastName,
				Email:          email,
				SecondaryEmail: record.SecondaryEmail,
				Phone:          record.Phone,
				Street:         record.Street,
				City:           record.City,
				State:          record.State,
				PostalCode:     record.PostalCode,
				Gender:         record.Gender,
				RaceEthnicity:  record.RaceEthnicity,
			},
			Title: record.Title,
		}
		if err := tx.CreateVolunteer(ctx, volunteer); err != nil {
			return rowResult{}, fmt.Errorf("create volunteer: %w", err)
		}
		volunteerID = volunteer.ID
		created = true
	}

	if err := tx.LinkExternalID(ctx, models.SourceSalesforce, record.ExternalID, models.EntityVolunteer, volunteerID); err != nil {
		return rowResult{}, err
	}

	for _, orgName := range record.Organizations {
		if orgName == "" {
			continue
		}
		orgID, err := s.ensureOrganization(ctx, tx, orgName)
		if err != nil {
			return rowResult{}, err
		}
		if err := tx.LinkVolunteerOrganization(ctx, volunteerID, orgID); err != nil {
			return rowResult{}, fmt.Errorf("link organization %s: %w", orgID, err)
		}
	}

	return rowResult{outcome: outcomeOf(created, updated)}, nil
}

// RunSalesforceOrganizationSync reconciles CRM accounts onto canonical
// organizations.
func (s *ImportService) RunSalesforceOrganizationSync(ctx context.Context, tenantSlug string, records []SalesforceOrganizationRecord) (*models.ImportBatch, error) {
	run, err := s.begin(ctx, tenantSlug, models.EntityOrganization, models.SourceSalesforce)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(records))
	for i, record := range records {
		rowNum := i + 1

		if record.ExternalID == "" || record.Name == "" {
			run.batch.Add(models.RowInvalid)
			s.rowError(ctx, run, rowNum, "", "MISSING_VALUE", "organization external id and name are required")
			continue
		}
		if _, dup := seen[record.ExternalID]; dup {
			run.batch.Add(models.RowSkipped)
			continue
		}
		seen[record.ExternalID] = struct{}{}

		record := record
		var res rowResult
		txErr := run.store.InTx(ctx, func(tx ImportStore) error {
			var applyErr error
			res, applyErr = s.applySalesforceOrganization(ctx, tx, record)
			return applyErr
		})
		s.recordRow(ctx, run, rowNum, models.EntityOrganization, res, txErr, record)
	}

	return s.finish(ctx, run, nil)
}

func (s *ImportService) applySalesforceOrganization(ctx context.Context, tx ImportStore, record SalesforceOrganizationRecord) (rowResult, error) {
	entityID, err := tx.FindEntityID(ctx, models.SourceSalesforce, record.ExternalID, models.EntityOrganization)
	if err != nil {
		return rowResult{}, err
	}

	var created, updated bool

	if entityID == "" {
		// Fall back to an exact name match before creating a duplicate.
		matches, err := tx.FindOrganizationsByName(ctx, record.Name)
		if err != nil {
			return rowResult{}, fmt.Errorf("find organization by name: %w", err)
		}
		switch len(matches) {
		case 0:
			org := &models.Organization{
				Name:    record.Name,
				OrgType: record.OrgType,
				Website: record.Website,
			}
			if err := tx.CreateOrganization(ctx, org); err != nil {
				return rowResult{}, fmt.Errorf("create organization: %w", err)
			}
			entityID = org.ID
			created = true
		case 1:
			entityID = matches[0].ID
		default:
			candidates := make([]string, 0, len(matches))
			for _, m := range matches {
				candidates = append(candidates, m.ID)
			}
			return rowResult{
				outcome:    models.RowInvalid,
				review:     models.ReviewAmbiguous,
				candidates: candidates,
				errColumn:  "name",
				errCode:    appErrors.ErrAmbiguousMatch.Code,
				errMessage: fmt.Sprintf("%d organizations named %q", len(matches), record.Name),
			}, nil
		}
		if err := tx.LinkExternalID(ctx, models.SourceSalesforce, record.ExternalID, models.EntityOrganization, entityID); err != nil {
			return rowResult{}, err
		}
	}

	if !created {
		existing, err := tx.FindOrganizationsByName(ctx, record.Name)
		if err != nil {
			return rowResult{}, err
		}
		var current *models.Organization
		for i := range existing {
			if existing[i].ID == entityID {
				current = &existing[i]
				break
			}
		}
		incoming := map[string]interface{}{
			"name":     record.Name,
			"org_type": record.OrgType,
			"website":  record.Website,
		}
		applied, summary := s.merge.Merge(organizationFieldMap(current), incoming, models.EntityOrganization, models.SourceSalesforce)
		if current == nil || summary.Changed() {
			if err := tx.UpdateOrganizationFields(ctx, entityID, applied); err != nil {
				return rowResult{}, fmt.Errorf("update organization %s: %w", entityID, err)
			}
			updated = true
		}
	}

	return rowResult{outcome: outcomeOf(created, updated)}, nil
}

// ensureOrganization resolves an organization by exact name, creating it when
// absent. Multiple same-named organizations resolve to the oldest one.
func (s *ImportService) ensureOrganization(ctx context.Context, tx ImportStore, name string) (string, error) {
	matches, err := tx.FindOrganizationsByName(ctx, name)
	if err != nil {
		return "", fmt.Errorf("find organization by name: %w", err)
	}
	if len(matches) > 0 {
		return matches[0].ID, nil
	}

	org := &models.Organization{Name: name}
	if err := tx.CreateOrganization(ctx, org); err != nil {
		return "", fmt.Errorf("create organization: %w", err)
	}
	return org.ID, nil
}

// parseDateField parses an optional date string into the incoming field map.
// An absent date is no opinion, not a request to clear the stored value.
func parseDateField(incoming map[string]interface{}, field string, raw *string) error {
	if raw == nil || *raw == "" {
		return nil
	}
	t, err := ParseDate(*raw)
	if err != nil {
		return err
	}
	incoming[field] = &t
	return nil
}

func timeField(incoming map[string]interface{}, field string) *time.Time {
	if v, ok := incoming[field].(*time.Time); ok {
		return v
	}
	return nil
}
