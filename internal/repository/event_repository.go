package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const eventColumns = `id, title, description, format, start_date, end_date, location, status, public_visible,
	created_at, updated_at, deleted_at`

// EventRepository manages persistence for events.
type EventRepository struct {
	db Querier
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db Querier) *EventRepository {
	return &EventRepository{db: db}
}

// FindByID fetches an event by ID.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	var event models.Event
	if err := sqlx.GetContext(ctx, r.db, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event record.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	const query = `INSERT INTO events (id, title, description, format, start_date, end_date, location, status,
			public_visible, created_at, updated_at)
		VALUES (:id, :title, :description, :format, :start_date, :end_date, :location, :status,
			:public_visible, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// UpdateFields applies merged field changes to an event row.
func (r *EventRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "events", id, fields)
}

// DistrictIDs returns the districts an event is linked to.
func (r *EventRepository) DistrictIDs(ctx context.Context, eventID string) ([]string, error) {
	const query = `SELECT district_id FROM event_districts WHERE event_id = $1`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, eventID); err != nil {
		return nil, fmt.Errorf("list event districts: %w", err)
	}
	return ids, nil
}

// LinkDistrict attaches an event to a district, idempotently. District links
// are publisher-owned; CRM syncs never call this for existing events.
func (r *EventRepository) LinkDistrict(ctx context.Context, eventID, districtID string) error {
	const query = `INSERT INTO event_districts (event_id, district_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, eventID, districtID); err != nil {
		return fmt.Errorf("link event district: %w", err)
	}
	return nil
}

// OrganizationRepository manages persistence for partner organizations.
type OrganizationRepository struct {
	db Querier
}

// NewOrganizationRepository constructs an OrganizationRepository.
func NewOrganizationRepository(db Querier) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// FindByID fetches an organization by ID.
func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*models.Organization, error) {
	const query = `SELECT id, name, org_type, website, created_at, updated_at, deleted_at FROM organizations WHERE id = $1`
	var org models.Organization
	if err := sqlx.GetContext(ctx, r.db, &org, query, id); err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByName matches organizations by exact normalized name.
func (r *OrganizationRepository) FindByName(ctx context.Context, name string) ([]models.Organization, error) {
	const query = `SELECT id, name, org_type, website, created_at, updated_at, deleted_at FROM organizations
		WHERE deleted_at IS NULL AND LOWER(name) = LOWER($1) ORDER BY created_at`
	var orgs []models.Organization
	if err := sqlx.SelectContext(ctx, r.db, &orgs, query, name); err != nil {
		return nil, fmt.Errorf("find organizations by name: %w", err)
	}
	return orgs, nil
}

// Create inserts a new organization record.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	if org.ID == "" {
		org.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if org.CreatedAt.IsZero() {
		org.CreatedAt = now
	}
	org.UpdatedAt = now

	const query = `INSERT INTO organizations (id, name, org_type, website, created_at, updated_at)
		VALUES (:id, :name, :org_type, :website, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, org); err != nil {
		return fmt.Errorf("create organization: %w", err)
	}
	return nil
}

// UpdateFields applies merged field changes to an organization row.
func (r *OrganizationRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "organizations", id, fields)
}
