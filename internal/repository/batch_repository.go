package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const batchColumns = `id, entity_type, source, tenant_slug, status, failure_reason,
	rows_processed, rows_created, rows_updated, rows_skipped, rows_unmatched, rows_invalid,
	started_at, finished_at`

// BatchRepository persists import batch results and row-level error detail.
type BatchRepository struct {
	db Querier
}

// NewBatchRepository constructs a BatchRepository.
func NewBatchRepository(db Querier) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create opens a new batch row in the started state.
func (r *BatchRepository) Create(ctx context.Context, batch *models.ImportBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	if batch.Status == "" {
		batch.Status = models.BatchStarted
	}
	if batch.StartedAt.IsZero() {
		batch.StartedAt = time.Now().UTC()
	}

	const query = `INSERT INTO import_batches (id, entity_type, source, tenant_slug, status, started_at)
		VALUES (:id, :entity_type, :source, :tenant_slug, :status, :started_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, batch); err != nil {
		return fmt.Errorf("create import batch: %w", err)
	}
	return nil
}

// Finalize writes the terminal status and count summary in one statement. A
// finalized batch is never mutated afterwards.
func (r *BatchRepository) Finalize(ctx context.Context, batch *models.ImportBatch) error {
	now := time.Now().UTC()
	batch.FinishedAt = &now

	const query = `UPDATE import_batches SET status = :status, failure_reason = :failure_reason,
			rows_processed = :rows_processed, rows_created = :rows_created, rows_updated = :rows_updated,
			rows_skipped = :rows_skipped, rows_unmatched = :rows_unmatched, rows_invalid = :rows_invalid,
			finished_at = :finished_at
		WHERE id = :id AND status NOT IN ('completed', 'failed')`
	res, err := sqlx.NamedExecContext(ctx, r.db, query, batch)
	if err != nil {
		return fmt.Errorf("finalize import batch: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("import batch %s already finalized", batch.ID)
	}
	return nil
}

// Get fetches a batch by ID.
func (r *BatchRepository) Get(ctx context.Context, id string) (*models.ImportBatch, error) {
	query := fmt.Sprintf(`SELECT %s FROM import_batches WHERE id = $1`, batchColumns)
	var batch models.ImportBatch
	if err := sqlx.GetContext(ctx, r.db, &batch, query, id); err != nil {
		return nil, err
	}
	return &batch, nil
}

// List returns batches matching filters with total count, newest first.
func (r *BatchRepository) List(ctx context.Context, filter models.BatchFilter) ([]models.ImportBatch, int, error) {
	base := "FROM import_batches WHERE 1=1"
	var args []interface{}

	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		base += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.Source != "" {
		args = append(args, filter.Source)
		base += fmt.Sprintf(" AND source = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY started_at DESC LIMIT %d OFFSET %d", batchColumns, base, size, offset)
	var batches []models.ImportBatch
	if err := sqlx.SelectContext(ctx, r.db, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list import batches: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count import batches: %w", err)
	}

	return batches, total, nil
}

// AddRowError records a row-level failure for the batch.
func (r *BatchRepository) AddRowError(ctx context.Context, rowErr *models.ImportRowError) error {
	if rowErr.ID == "" {
		rowErr.ID = uuid.NewString()
	}
	if rowErr.CreatedAt.IsZero() {
		rowErr.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO import_row_errors (id, batch_id, row_number, column_name, code, message, created_at)
		VALUES (:id, :batch_id, :row_number, :column_name, :code, :message, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, rowErr); err != nil {
		return fmt.Errorf("add import row error: %w", err)
	}
	return nil
}

// ListRowErrors returns every row error of a batch ordered by row number.
func (r *BatchRepository) ListRowErrors(ctx context.Context, batchID string) ([]models.ImportRowError, error) {
	const query = `SELECT id, batch_id, row_number, column_name, code, message, created_at
		FROM import_row_errors WHERE batch_id = $1 ORDER BY row_number`
	var rows []models.ImportRowError
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, batchID); err != nil {
		return nil, fmt.Errorf("list import row errors: %w", err)
	}
	return rows, nil
}
