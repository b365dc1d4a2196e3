package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

const reviewColumns = `id, batch_id, entity_type, source, reason, row_snapshot, candidate_ids, status,
	resolved_by, linked_entity_id, created_at, resolved_at`

// ReviewRepository persists the manual review queue.
type ReviewRepository struct {
	db Querier
}

// NewReviewRepository constructs a ReviewRepository.
func NewReviewRepository(db Querier) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create parks an import row for operator review.
func (r *ReviewRepository) Create(ctx context.Context, item *models.ReviewItem) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = models.ReviewPending
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO review_queue (id, batch_id, entity_type, source, reason, row_snapshot,
			candidate_ids, status, created_at)
		VALUES (:id, :batch_id, :entity_type, :source, :reason, :row_snapshot, :candidate_ids, :status, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, item); err != nil {
		return fmt.Errorf("create review item: %w", err)
	}
	return nil
}

// Get fetches a review item by ID.
func (r *ReviewRepository) Get(ctx context.Context, id string) (*models.ReviewItem, error) {
	query := fmt.Sprintf(`SELECT %s FROM review_queue WHERE id = $1`, reviewColumns)
	var item models.ReviewItem
	if err := sqlx.GetContext(ctx, r.db, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns review items matching filters with total count, oldest first.
func (r *ReviewRepository) List(ctx context.Context, filter models.ReviewFilter) ([]models.ReviewItem, int, error) {
	base := "FROM review_queue WHERE 1=1"
	var args []interface{}

	if filter.Status != "" {
		args = append(args, filter.Status)
		base += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.EntityType != "" {
		args = append(args, filter.EntityType)
		base += fmt.Sprintf(" AND entity_type = $%d", len(args))
	}
	if filter.Reason != "" {
		args = append(args, filter.Reason)
		base += fmt.Sprintf(" AND reason = $%d", len(args))
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at LIMIT %d OFFSET %d", reviewColumns, base, size, offset)
	var items []models.ReviewItem
	if err := sqlx.SelectContext(ctx, r.db, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list review items: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count review items: %w", err)
	}

	return items, total, nil
}

// MarkResolved closes a pending item, recording the operator and the entity it
// was linked to (if any).
func (r *ReviewRepository) MarkResolved(ctx context.Context, id string, status models.ReviewStatus, resolvedBy string, linkedEntityID *string) error {
	const query = `UPDATE review_queue SET status = $2, resolved_by = $3, linked_entity_id = $4, resolved_at = $5
		WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, resolvedBy, linkedEntityID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("resolve review item: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("review item %s is not pending", id)
	}
	return nil
}
