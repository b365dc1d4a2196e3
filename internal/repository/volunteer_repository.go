package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const volunteerColumns = `id, first_name, last_name, email, secondary_email, phone, street, city, state, postal_code,
	gender, race_ethnicity, title, created_at, updated_at, deleted_at`

// VolunteerRepository manages persistence for volunteers.
type VolunteerRepository struct {
	db Querier
}

// NewVolunteerRepository constructs a VolunteerRepository.
func NewVolunteerRepository(db Querier) *VolunteerRepository {
	return &VolunteerRepository{db: db}
}

// List returns volunteers matching filters along with total count.
func (r *VolunteerRepository) List(ctx context.Context, filter models.VolunteerFilter) ([]models.Volunteer, int, error) {
	base := "FROM volunteers WHERE deleted_at IS NULL"
	var args []interface{}

	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, search)
		base += fmt.Sprintf(" AND (LOWER(first_name || ' ' || last_name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY last_name, first_name LIMIT %d OFFSET %d", volunteerColumns, base, size, offset)
	var volunteers []models.Volunteer
	if err := sqlx.SelectContext(ctx, r.db, &volunteers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list volunteers: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count volunteers: %w", err)
	}

	return volunteers, total, nil
}

// FindByID fetches a volunteer by ID.
func (r *VolunteerRepository) FindByID(ctx context.Context, id string) (*models.Volunteer, error) {
	query := fmt.Sprintf(`SELECT %s FROM volunteers WHERE id = $1`, volunteerColumns)
	var volunteer models.Volunteer
	if err := sqlx.GetContext(ctx, r.db, &volunteer, query, id); err != nil {
		return nil, err
	}
	return &volunteer, nil
}

// FindByEmails returns every non-deleted volunteer matching any normalized
// candidate email. Multiple results signal an ambiguous match.
func (r *VolunteerRepository) FindByEmails(ctx context.Context, emails []string) ([]models.Volunteer, error) {
	normalized := lowered(emails)
	if len(normalized) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM volunteers
		WHERE deleted_at IS NULL AND (LOWER(email) = ANY($1) OR LOWER(COALESCE(secondary_email, '')) = ANY($1))
		ORDER BY created_at`, volunteerColumns)
	var volunteers []models.Volunteer
	if err := sqlx.SelectContext(ctx, r.db, &volunteers, query, pq.Array(normalized)); err != nil {
		return nil, fmt.Errorf("find volunteers by email: %w", err)
	}
	return volunteers, nil
}

// Create inserts a new volunteer record.
func (r *VolunteerRepository) Create(ctx context.Context, volunteer *models.Volunteer) error {
	if volunteer.ID == "" {
		volunteer.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if volunteer.CreatedAt.IsZero() {
		volunteer.CreatedAt = now
	}
	volunteer.UpdatedAt = now

	const query = `INSERT INTO volunteers (id, first_name, last_name, email, secondary_email, phone, street, city, state,
			postal_code, gender, race_ethnicity, title, created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :secondary_email, :phone, :street, :city, :state,
			:postal_code, :gender, :race_ethnicity, :title, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, volunteer); err != nil {
		return fmt.Errorf("create volunteer: %w", err)
	}
	return nil
}

// UpdateFields applies merged field changes to a volunteer row.
func (r *VolunteerRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "volunteers", id, fields)
}

// LinkOrganization attaches a volunteer to an organization, idempotently.
func (r *VolunteerRepository) LinkOrganization(ctx context.Context, volunteerID, organizationID string) error {
	const query = `INSERT INTO volunteer_organizations (volunteer_id, organization_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, volunteerID, organizationID); err != nil {
		return fmt.Errorf("link volunteer organization: %w", err)
	}
	return nil
}

// OrganizationIDs returns the organizations a volunteer is attached to.
func (r *VolunteerRepository) OrganizationIDs(ctx context.Context, volunteerID string) ([]string, error) {
	const query = `SELECT organization_id FROM volunteer_organizations WHERE volunteer_id = $1`
	var ids []string
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, volunteerID); err != nil {
		return nil, fmt.Errorf("list volunteer organizations: %w", err)
	}
	return ids, nil
}
