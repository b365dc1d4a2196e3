package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const teacherColumns = `id, first_name, last_name, email, secondary_email, phone, street, city, state, postal_code,
	gender, race_ethnicity, school_id, roster_name, active, roster_removed, exclude_from_reports,
	created_at, updated_at, deleted_at`

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db Querier
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db Querier) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// FindByID fetches a teacher by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers WHERE id = $1`, teacherColumns)
	var teacher models.Teacher
	if err := sqlx.GetContext(ctx, r.db, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByEmails returns every non-deleted teacher whose primary or secondary
// email matches any of the normalized candidates. More than one result means
// the match is ambiguous; callers must not pick one silently.
func (r *TeacherRepository) FindByEmails(ctx context.Context, emails []string) ([]models.Teacher, error) {
	normalized := lowered(emails)
	if len(normalized) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM teachers
		WHERE deleted_at IS NULL AND (LOWER(email) = ANY($1) OR LOWER(COALESCE(secondary_email, '')) = ANY($1))
		ORDER BY created_at`, teacherColumns)
	var teachers []models.Teacher
	if err := sqlx.SelectContext(ctx, r.db, &teachers, query, pq.Array(normalized)); err != nil {
		return nil, fmt.Errorf("find teachers by email: %w", err)
	}
	return teachers, nil
}

// ListBySchool returns active teachers attached to a school, the candidate
// pool for fuzzy roster matching.
func (r *TeacherRepository) ListBySchool(ctx context.Context, schoolID string) ([]models.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers
		WHERE deleted_at IS NULL AND active AND school_id = $1 ORDER BY last_name, first_name`, teacherColumns)
	var teachers []models.Teacher
	if err := sqlx.SelectContext(ctx, r.db, &teachers, query, schoolID); err != nil {
		return nil, fmt.Errorf("list teachers by school: %w", err)
	}
	return teachers, nil
}

// ListActive returns all active, non-removed teachers.
func (r *TeacherRepository) ListActive(ctx context.Context) ([]models.Teacher, error) {
	query := fmt.Sprintf(`SELECT %s FROM teachers
		WHERE deleted_at IS NULL AND active AND NOT roster_removed ORDER BY last_name, first_name`, teacherColumns)
	var teachers []models.Teacher
	if err := sqlx.SelectContext(ctx, r.db, &teachers, query); err != nil {
		return nil, fmt.Errorf("list active teachers: %w", err)
	}
	return teachers, nil
}

// Create inserts a new teacher record.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = now
	}
	teacher.UpdatedAt = now

	const query = `INSERT INTO teachers (id, first_name, last_name, email, secondary_email, phone, street, city, state,
			postal_code, gender, race_ethnicity, school_id, roster_name, active, roster_removed, exclude_from_reports,
			created_at, updated_at)
		VALUES (:id, :first_name, :last_name, :email, :secondary_email, :phone, :street, :city, :state,
			:postal_code, :gender, :race_ethnicity, :school_id, :roster_name, :active, :roster_removed, :exclude_from_reports,
			:created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// UpdateFields applies merged field changes to a teacher row.
func (r *TeacherRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "teachers", id, fields)
}

// MarkRosterRemoved flags a teacher as absent from the latest roster. With the
// soft-delete policy the row is also tombstoned; it is never hard-deleted.
func (r *TeacherRepository) MarkRosterRemoved(ctx context.Context, id string, softDelete bool) error {
	now := time.Now().UTC()
	if softDelete {
		const query = `UPDATE teachers SET roster_removed = TRUE, active = FALSE, deleted_at = $2, updated_at = $2 WHERE id = $1`
		if _, err := r.db.ExecContext(ctx, query, id, now); err != nil {
			return fmt.Errorf("soft delete teacher: %w", err)
		}
		return nil
	}
	const query = `UPDATE teachers SET roster_removed = TRUE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, now); err != nil {
		return fmt.Errorf("flag teacher roster removal: %w", err)
	}
	return nil
}

// RestoreRostered clears the removal flag when a teacher reappears on a roster.
func (r *TeacherRepository) RestoreRostered(ctx context.Context, id string) error {
	const query = `UPDATE teachers SET roster_removed = FALSE, active = TRUE, deleted_at = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("restore teacher: %w", err)
	}
	return nil
}
