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

// ExternalIDRepository manages source-system identifier links.
type ExternalIDRepository struct {
	db Querier
}

// NewExternalIDRepository constructs an ExternalIDRepository.
func NewExternalIDRepository(db Querier) *ExternalIDRepository {
	return &ExternalIDRepository{db: db}
}

// FindEntityID returns the canonical entity linked to the source identifier,
// or empty when no link exists.
func (r *ExternalIDRepository) FindEntityID(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType) (string, error) {
	const query = `SELECT entity_id FROM external_ids WHERE source = $1 AND source_key = $2 AND entity_type = $3`
	var entityID string
	if err := sqlx.GetContext(ctx, r.db, &entityID, query, source, sourceKey, entityType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find external id: %w", err)
	}
	return entityID, nil
}

// Link attaches a source identifier to a canonical entity. Linking the same
// key to the same entity again is a no-op; linking it to a different entity
// fails, since imports never silently reassign identifiers.
func (r *ExternalIDRepository) Link(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType, entityID string) error {
	existing, err := r.FindEntityID(ctx, source, sourceKey, entityType)
	if err != nil {
		return err
	}
	if existing != "" {
		if existing == entityID {
			return nil
		}
		return fmt.Errorf("external id %s/%s already linked to entity %s", source, sourceKey, existing)
	}

	const query = `INSERT INTO external_ids (id, source, source_key, entity_type, entity_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), source, sourceKey, entityType, entityID, time.Now().UTC()); err != nil {
		return fmt.Errorf("link external id: %w", err)
	}
	return nil
}

// Relink moves a source identifier to a different entity. Reserved for the
// explicit administrative resolution flow; never called during imports.
func (r *ExternalIDRepository) Relink(ctx context.Context, source models.SourceSystem, sourceKey string, entityType models.EntityType, entityID string) error {
	const query = `UPDATE external_ids SET entity_id = $4 WHERE source = $1 AND source_key = $2 AND entity_type = $3`
	res, err := r.db.ExecContext(ctx, query, source, sourceKey, entityType, entityID)
	if err != nil {
		return fmt.Errorf("relink external id: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return r.Link(ctx, source, sourceKey, entityType, entityID)
	}
	return nil
}

// ListForEntity returns every source identifier attached to an entity.
func (r *ExternalIDRepository) ListForEntity(ctx context.Context, entityType models.EntityType, entityID string) ([]models.ExternalID, error) {
	const query = `SELECT id, source, source_key, entity_type, entity_id, created_at
		FROM external_ids WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at`
	var ids []models.ExternalID
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, entityType, entityID); err != nil {
		return nil, fmt.Errorf("list external ids: %w", err)
	}
	return ids, nil
}
