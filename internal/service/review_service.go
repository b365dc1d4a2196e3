package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/repository"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// SetResolver yields the repository set backing a tenant scope.
type SetResolver interface {
	SetFor(ctx context.Context, tenantSlug string) (*repository.Set, error)
}

// ResolveReviewRequest links a parked row to a canonical entity.
type ResolveReviewRequest struct {
	EntityID   string `json:"entity_id" validate:"required"`
	ResolvedBy string `json:"resolved_by" validate:"required"`
	// SourceKey, when set, is relinked to the chosen entity. This is the one
	// sanctioned path for moving an external identifier between entities.
	SourceKey string `json:"source_key,omitempty"`
}

// ReviewService drives the manual review queue: rows imports could not match,
// matched ambiguously, or matched with low confidence.
type ReviewService struct {
	sets      SetResolver
	cfg       config.ReviewQueueConfig
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(sets SetResolver, cfg config.ReviewQueueConfig, cache *CacheService, logger *zap.Logger) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{sets: sets, cfg: cfg, cache: cache, validator: validator.New(), logger: logger}
}

func (s *ReviewService) guard() error {
	if !s.cfg.Enabled {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "the review queue is disabled")
	}
	return nil
}

// List returns review items matching the filter.
func (s *ReviewService) List(ctx context.Context, tenantSlug string, filter models.ReviewFilter) ([]models.ReviewItem, int, error) {
	if err := s.guard(); err != nil {
		return nil, 0, err
	}
	set, err := s.sets.SetFor(ctx, tenantSlug)
	if err != nil {
		return nil, 0, err
	}
	return set.Reviews.List(ctx, filter)
}

// Get fetches one review item.
func (s *ReviewService) Get(ctx context.Context, tenantSlug, id string) (*models.ReviewItem, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	set, err := s.sets.SetFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	item, err := set.Reviews.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "review item not found")
	}
	return item, nil
}

// Resolve links a pending item to the entity the operator chose. When the item
// carries a source key, the key is relinked to that entity so subsequent
// imports of the same row match it directly.
func (s *ReviewService) Resolve(ctx context.Context, tenantSlug, id string, req ResolveReviewRequest) (*models.ReviewItem, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "entity_id and resolved_by are required")
	}

	set, err := s.sets.SetFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	item, err := set.Reviews.Get(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "review item not found")
	}
	if item.Status != models.ReviewPending {
		return nil, appErrors.Clone(appErrors.ErrConflict, "review item is already closed")
	}

	if req.SourceKey != "" {
		if err := set.ExternalIDs.Relink(ctx, item.Source, req.SourceKey, item.EntityType, req.EntityID); err != nil {
			return nil, fmt.Errorf("relink external id: %w", err)
		}
	}

	if err := set.Reviews.MarkResolved(ctx, id, models.ReviewResolved, req.ResolvedBy, &req.EntityID); err != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "review item is already closed")
	}

	s.cache.InvalidateEntity(ctx, item.EntityType)
	s.logger.Info("review item resolved",
		zap.String("item_id", id),
		zap.String("entity_id", req.EntityID),
		zap.String("resolved_by", req.ResolvedBy),
	)
	return set.Reviews.Get(ctx, id)
}

// Dismiss closes a pending item without linking it to anything.
func (s *ReviewService) Dismiss(ctx context.Context, tenantSlug, id, dismissedBy string) (*models.ReviewItem, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	if dismissedBy == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resolved_by is required")
	}

	set, err := s.sets.SetFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	if err := set.Reviews.MarkResolved(ctx, id, models.ReviewDismissed, dismissedBy, nil); err != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "review item not found or already closed")
	}

	s.logger.Info("review item dismissed", zap.String("item_id", id), zap.String("resolved_by", dismissedBy))
	return set.Reviews.Get(ctx, id)
}
