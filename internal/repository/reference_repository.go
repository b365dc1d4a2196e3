package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

// ReferenceRepository reads reference data: districts, schools, skills and
// career types. Reference rows are maintained by administrators and copied
// into tenant stores as a snapshot at provisioning time.
type ReferenceRepository struct {
	db Querier
}

// NewReferenceRepository constructs a ReferenceRepository.
func NewReferenceRepository(db Querier) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// ListDistricts returns all districts.
func (r *ReferenceRepository) ListDistricts(ctx context.Context) ([]models.District, error) {
	const query = `SELECT id, name, code, created_at FROM districts ORDER BY name`
	var districts []models.District
	if err := sqlx.SelectContext(ctx, r.db, &districts, query); err != nil {
		return nil, fmt.Errorf("list districts: %w", err)
	}
	return districts, nil
}

// ListSchools returns all schools.
func (r *ReferenceRepository) ListSchools(ctx context.Context) ([]models.School, error) {
	const query = `SELECT id, district_id, name, level, created_at FROM schools ORDER BY name`
	var schools []models.School
	if err := sqlx.SelectContext(ctx, r.db, &schools, query); err != nil {
		return nil, fmt.Errorf("list schools: %w", err)
	}
	return schools, nil
}

// FindSchoolByName matches a school by exact normalized name, or nil.
func (r *ReferenceRepository) FindSchoolByName(ctx context.Context, name string) (*models.School, error) {
	const query = `SELECT id, district_id, name, level, created_at FROM schools WHERE LOWER(name) = LOWER($1)`
	var school models.School
	if err := sqlx.GetContext(ctx, r.db, &school, query, name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find school by name: %w", err)
	}
	return &school, nil
}

// CountRows returns the row count of a reference table. Table names come from
// ReferenceTables, never from user input.
func (r *ReferenceRepository) CountRows(ctx context.Context, table string) (int, error) {
	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return count, nil
}
