package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

func strPtr(s string) *string { return &s }

func TestSalesforceEventSyncCreatesInPersonEvent(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID:    "SF-EV-1",
		Title:         "Career Day",
		StartDate:     strPtr("2026-04-01"),
		Location:      strPtr("Lincoln Elementary"),
		PublicVisible: true,
		DistrictIDs:   []string{"d1", "d2"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.RowsCreated)

	eventID := store.externalIDs[extKey(models.SourceSalesforce, "SF-EV-1", models.EntityEvent)]
	require.NotEmpty(t, eventID)
	event := store.events[eventID]
	assert.Equal(t, "Career Day", event.Title)
	assert.Equal(t, models.EventInPerson, event.Format)
	assert.True(t, event.PublicVisible)
	assert.ElementsMatch(t, []string{"d1", "d2"}, event.DistrictIDs)
}

func TestSalesforceEventSyncPreservesPublicVisible(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	_, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1", Title: "Career Day", PublicVisible: false,
	}})
	require.NoError(t, err)

	eventID := store.externalIDs[extKey(models.SourceSalesforce, "SF-EV-1", models.EntityEvent)]
	store.events[eventID].PublicVisible = true // staff published the event

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1", Title: "Career Day Updated", PublicVisible: false,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.RowsUpdated)

	event := store.events[eventID]
	assert.Equal(t, "Career Day Updated", event.Title)
	assert.True(t, event.PublicVisible, "CRM sync must not clobber the publish toggle")
}

func TestSalesforceEventSyncLeavesVirtualEventsAlone(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	// A virtual event already linked to the same CRM identifier.
	event := &models.Event{Title: "Virtual Session EV-1", Format: models.EventVirtual}
	require.NoError(t, store.CreateEvent(context.Background(), event))
	store.externalIDs[extKey(models.SourceSalesforce, "SF-EV-1", models.EntityEvent)] = event.ID

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1", Title: "Renamed By CRM",
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsSkipped)
	assert.Equal(t, "Virtual Session EV-1", store.events[event.ID].Title)
}

func TestSalesforceEventSyncEmptyPayloadCompletes(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", nil)
	require.NoError(t, err)

	assert.Equal(t, models.BatchCompleted, batch.Status)
	assert.Zero(t, batch.RowsProcessed)
}

func TestSalesforceVolunteerSyncCreateAndLink(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceVolunteerSync(context.Background(), "", []SalesforceVolunteerRecord{{
		ExternalID:    "SF-C-1",
		FirstName:     "Dana",
		LastName:      "Okafor",
		Email:         "Dana@Example.COM",
		City:          strPtr("Springfield"),
		Organizations: []string{"Acme Robotics"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.RowsCreated)

	volunteerID := store.externalIDs[extKey(models.SourceSalesforce, "SF-C-1", models.EntityVolunteer)]
	require.NotEmpty(t, volunteerID)
	volunteer := store.volunteers[volunteerID]
	assert.Equal(t, "dana@example.com", volunteer.Email, "emails are normalized on intake")

	require.Len(t, store.organizations, 1)
	orgIDs, err := store.VolunteerOrganizationIDs(context.Background(), volunteerID)
	require.NoError(t, err)
	assert.Len(t, orgIDs, 1)
}

func TestSalesforceVolunteerSyncMatchesByEmailWithoutRewritingIt(t *testing.T) {
	store := newFakeStore()
	existing := &models.Volunteer{ContactCore: models.ContactCore{Email: "dana@example.com"}}
	require.NoError(t, store.CreateVolunteer(context.Background(), existing))
	svc := newTestImportService(store, nil)

	phone := "555-0100"
	batch, err := svc.RunSalesforceVolunteerSync(context.Background(), "", []SalesforceVolunteerRecord{{
		ExternalID:     "SF-C-1",
		FirstName:      "Dana",
		LastName:       "Okafor",
		Email:          "dana-new@example.com",
		SecondaryEmail: strPtr("dana@example.com"),
		Phone:          &phone,
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.RowsUpdated)
	assert.Len(t, store.volunteers, 1)

	volunteer := store.volunteers[existing.ID]
	assert.Equal(t, "dana@example.com", volunteer.Email, "the canonical store owns volunteer emails")
	assert.Nil(t, volunteer.SecondaryEmail)
	require.NotNil(t, volunteer.Phone)
	assert.Equal(t, "555-0100", *volunteer.Phone)
	assert.Equal(t, existing.ID, store.externalIDs[extKey(models.SourceSalesforce, "SF-C-1", models.EntityVolunteer)])
}

func TestSalesforceVolunteerSyncExternalIDWinsOverEmail(t *testing.T) {
	store := newFakeStore()
	linked := &models.Volunteer{ContactCore: models.ContactCore{Email: "linked@example.com"}}
	require.NoError(t, store.CreateVolunteer(context.Background(), linked))
	other := &models.Volunteer{ContactCore: models.ContactCore{Email: "dana@example.com"}}
	require.NoError(t, store.CreateVolunteer(context.Background(), other))
	store.externalIDs[extKey(models.SourceSalesforce, "SF-C-1", models.EntityVolunteer)] = linked.ID
	svc := newTestImportService(store, nil)

	_, err := svc.RunSalesforceVolunteerSync(context.Background(), "", []SalesforceVolunteerRecord{{
		ExternalID: "SF-C-1",
		FirstName:  "Dana",
		Email:      "dana@example.com",
	}})
	require.NoError(t, err)

	assert.Equal(t, "Dana", store.volunteers[linked.ID].FirstName)
	assert.Equal(t, "", store.volunteers[other.ID].FirstName)
}

func TestSalesforceVolunteerSyncDeduplicatesPayload(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	record := SalesforceVolunteerRecord{ExternalID: "SF-C-1", Email: "dana@example.com"}
	batch, err := svc.RunSalesforceVolunteerSync(context.Background(), "", []SalesforceVolunteerRecord{record, record})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsCreated)
	assert.Equal(t, 1, batch.RowsSkipped)
	assert.Len(t, store.volunteers, 1)
}

func TestSalesforceOrganizationSyncAdoptsNameMatch(t *testing.T) {
	store := newFakeStore()
	existing := &models.Organization{Name: "Acme Robotics"}
	require.NoError(t, store.CreateOrganization(context.Background(), existing))
	svc := newTestImportService(store, nil)

	website := "https://acme.example.com"
	batch, err := svc.RunSalesforceOrganizationSync(context.Background(), "", []SalesforceOrganizationRecord{{
		ExternalID: "SF-A-1",
		Name:       "Acme Robotics",
		Website:    &website,
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsUpdated)
	assert.Len(t, store.organizations, 1, "a name match adopts the existing organization")
	assert.Equal(t, existing.ID, store.externalIDs[extKey(models.SourceSalesforce, "SF-A-1", models.EntityOrganization)])
	require.NotNil(t, store.organizations[existing.ID].Website)
	assert.Equal(t, website, *store.organizations[existing.ID].Website)
}

func TestSalesforceOrganizationSyncAmbiguousName(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, store.CreateOrganization(context.Background(), &models.Organization{Name: "Acme Robotics"}))
	require.NoError(t, store.CreateOrganization(context.Background(), &models.Organization{Name: "Acme Robotics"}))
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceOrganizationSync(context.Background(), "", []SalesforceOrganizationRecord{{
		ExternalID: "SF-A-1",
		Name:       "Acme Robotics",
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsInvalid)
	require.Len(t, store.reviews, 1)
	assert.Equal(t, models.ReviewAmbiguous, store.reviews[0].Reason)
	assert.Len(t, store.organizations, 2, "ambiguity never auto-creates a third copy")
}

func TestSalesforceEventSyncDistrictLinksAreCreationOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	_, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1", Title: "Career Day", DistrictIDs: []string{"d1"},
	}})
	require.NoError(t, err)
	eventID := store.externalIDs[extKey(models.SourceSalesforce, "SF-EV-1", models.EntityEvent)]
	require.NotEmpty(t, eventID)

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1", Title: "Career Day Updated", DistrictIDs: []string{"d2", "d3"},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsUpdated)
	assert.Equal(t, "Career Day Updated", store.events[eventID].Title)
	assert.Equal(t, []string{"d1"}, store.events[eventID].DistrictIDs,
		"district links are curated after creation, re-syncs must not rewrite them")
}

func TestSalesforceEventSyncUpsertsParticipants(t *testing.T) {
	store := newFakeStore()
	volunteer := &models.Volunteer{ContactCore: models.ContactCore{Email: "dana@example.com"}}
	require.NoError(t, store.CreateVolunteer(context.Background(), volunteer))
	store.externalIDs[extKey(models.SourceSalesforce, "SF-C-1", models.EntityVolunteer)] = volunteer.ID
	svc := newTestImportService(store, nil)

	record := SalesforceEventRecord{
		ExternalID: "SF-EV-1",
		Title:      "Career Day",
		Participants: []SalesforceEventParticipant{{
			VolunteerExternalID: "SF-C-1",
			Status:              strPtr("registered"),
			ParticipantType:     strPtr("Presenter"),
		}},
	}
	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{record})
	require.NoError(t, err)
	assert.Equal(t, 1, batch.RowsCreated)

	require.Len(t, store.participations, 1)
	var row *models.EventParticipation
	for _, p := range store.participations {
		row = p
	}
	assert.Equal(t, volunteer.ID, row.VolunteerID)
	assert.Equal(t, models.AttendanceSignedUp, row.Status)
	assert.Equal(t, models.ParticipantPresenter, row.ParticipantType)

	again, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{record})
	require.NoError(t, err)
	assert.Equal(t, 1, again.RowsSkipped)
	assert.Len(t, store.participations, 1, "re-syncs update the (volunteer, event) row, never duplicate it")

	record.Participants[0].Status = strPtr("attended")
	flipped, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{record})
	require.NoError(t, err)
	assert.Equal(t, 1, flipped.RowsUpdated)
	require.Len(t, store.participations, 1)
	assert.Equal(t, models.AttendanceAttended, store.participations[row.ID].Status)
}

func TestSalesforceEventSyncFlagsUnknownParticipant(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID:   "SF-EV-1",
		Title:        "Career Day",
		Participants: []SalesforceEventParticipant{{VolunteerExternalID: "SF-C-404"}},
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsCreated, "the event itself still lands")
	require.Len(t, store.rowErrors, 1)
	assert.Equal(t, "UNKNOWN_VOLUNTEER", store.rowErrors[0].Code)
	assert.Empty(t, store.participations, "unknown contacts never auto-create volunteers")
}

func TestSalesforceEventSyncInvalidDate(t *testing.T) {
	store := newFakeStore()
	svc := newTestImportService(store, nil)

	batch, err := svc.RunSalesforceEventSync(context.Background(), "", []SalesforceEventRecord{{
		ExternalID: "SF-EV-1",
		Title:      "Career Day",
		StartDate:  strPtr("soon"),
	}})
	require.NoError(t, err)

	assert.Equal(t, 1, batch.RowsInvalid)
	require.Len(t, store.rowErrors, 1)
	assert.Equal(t, "INVALID_DATE", store.rowErrors[0].Code)
}
