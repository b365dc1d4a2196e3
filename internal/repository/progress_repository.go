package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const progressColumns = `id, teacher_id, academic_year, roster_name, school_name, target_sessions, archived,
	created_at, updated_at`

// ProgressRepository manages teacher progress rows. Status itself is never
// stored here; it is derived by the status service.
type ProgressRepository struct {
	db Querier
}

// NewProgressRepository constructs a ProgressRepository.
func NewProgressRepository(db Querier) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// GetByTeacherYear fetches the progress row for one (teacher, academic year),
// or nil when none exists.
func (r *ProgressRepository) GetByTeacherYear(ctx context.Context, teacherID, academicYear string) (*models.TeacherProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_progress WHERE teacher_id = $1 AND academic_year = $2`, progressColumns)
	var row models.TeacherProgress
	if err := sqlx.GetContext(ctx, r.db, &row, query, teacherID, academicYear); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher progress: %w", err)
	}
	return &row, nil
}

// ListByYear returns non-archived progress rows for an academic year.
func (r *ProgressRepository) ListByYear(ctx context.Context, academicYear string) ([]models.TeacherProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM teacher_progress
		WHERE academic_year = $1 AND NOT archived ORDER BY roster_name`, progressColumns)
	var rows []models.TeacherProgress
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, academicYear); err != nil {
		return nil, fmt.Errorf("list teacher progress: %w", err)
	}
	return rows, nil
}

// Create inserts a progress row.
func (r *ProgressRepository) Create(ctx context.Context, row *models.TeacherProgress) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if row.CreatedAt.IsZero() {
		row.CreatedAt = now
	}
	row.UpdatedAt = now

	const query = `INSERT INTO teacher_progress (id, teacher_id, academic_year, roster_name, school_name,
			target_sessions, archived, created_at, updated_at)
		VALUES (:id, :teacher_id, :academic_year, :roster_name, :school_name, :target_sessions, :archived,
			:created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, row); err != nil {
		return fmt.Errorf("create teacher progress: %w", err)
	}
	return nil
}

// UpdateFields applies merged field changes to a progress row.
func (r *ProgressRepository) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	return updateFields(ctx, r.db, "teacher_progress", id, fields)
}

// ArchiveYear marks every progress row of an academic year archived and
// returns the number of rows affected. Used by the semester close-out action.
func (r *ProgressRepository) ArchiveYear(ctx context.Context, academicYear string) (int, error) {
	const query = `UPDATE teacher_progress SET archived = TRUE, updated_at = $2 WHERE academic_year = $1 AND NOT archived`
	res, err := r.db.ExecContext(ctx, query, academicYear, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("archive progress year: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return int(affected), nil
}
