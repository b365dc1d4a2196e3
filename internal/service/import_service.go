package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// StoreResolver yields the store backing a tenant scope. An empty slug selects
// the default store.
type StoreResolver interface {
	StoreFor(ctx context.Context, tenantSlug string) (ImportStore, error)
}

// ScopeGuard rejects access to resources belonging to a different tenant than
// the one the request is scoped to. The tenant service satisfies it in
// production; resolvers without the method skip the check.
type ScopeGuard interface {
	GuardScope(requestSlug, resourceSlug string) error
}

// guardBatchScope verifies a loaded batch belongs to the request's tenant.
func (s *ImportService) guardBatchScope(tenantSlug string, batch *models.ImportBatch) error {
	guard, ok := s.stores.(ScopeGuard)
	if !ok {
		return nil
	}
	return guard.GuardScope(tenantSlug, derefString(batch.TenantSlug))
}

// LockStore is the distributed-lock surface the import engine needs to keep at
// most one batch of a given type in flight.
type LockStore interface {
	AcquireLock(ctx context.Context, key, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key, holder string) error
}

// ImportService orchestrates batch import runs: batch lifecycle, the per-type
// run lock, row accounting and post-batch cache invalidation. The per-source
// row semantics live in the source-specific run methods.
type ImportService struct {
	stores   StoreResolver
	locks    LockStore
	merge    *MergeEngine
	scorer   NameScorer
	cache    *CacheService
	metrics  *MetricsService
	cfg      config.ImportsConfig
	match    config.MatchingConfig
	progress config.ProgressConfig
	logger   *zap.Logger

	afterBatch func(*models.ImportBatch)
}

// OnBatchCompleted registers a hook invoked after every successfully
// completed batch, typically to hand off background work such as warming
// derived-progress caches. Must be called before the service handles traffic.
func (s *ImportService) OnBatchCompleted(fn func(*models.ImportBatch)) {
	s.afterBatch = fn
}

// NewImportService constructs an ImportService. locks may be nil when run-lock
// enforcement is not wanted.
func NewImportService(
	stores StoreResolver,
	locks LockStore,
	merge *MergeEngine,
	cache *CacheService,
	metrics *MetricsService,
	cfg config.ImportsConfig,
	match config.MatchingConfig,
	progress config.ProgressConfig,
	logger *zap.Logger,
) *ImportService {
	if merge == nil {
		merge = NewMergeEngine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{
		stores:   stores,
		locks:    locks,
		merge:    merge,
		scorer:   NewLevenshteinScorer(),
		cache:    cache,
		metrics:  metrics,
		cfg:      cfg,
		match:    match,
		progress: progress,
		logger:   logger,
	}
}

// batchRun carries the per-run state shared by every source importer.
type batchRun struct {
	store    ImportStore
	resolver *IdentityResolver
	batch    *models.ImportBatch
	started  time.Time
	lockKey  string
	holder   string
}

// begin resolves the tenant store, takes the per-type run lock and opens the
// batch row. The returned run must be closed with finish.
func (s *ImportService) begin(ctx context.Context, tenantSlug string, entity models.EntityType, source models.SourceSystem) (*batchRun, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "imports are disabled")
	}

	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, fmt.Errorf("resolve import store: %w", err)
	}

	run := &batchRun{
		store:   store,
		started: time.Now().UTC(),
		holder:  uuid.NewString(),
	}

	if s.locks != nil {
		scope := tenantSlug
		if scope == "" {
			scope = "main"
		}
		run.lockKey = fmt.Sprintf("import:lock:%s:%s", scope, entity)
		ok, err := s.locks.AcquireLock(ctx, run.lockKey, run.holder, s.cfg.RunLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire import lock: %w", err)
		}
		if !ok {
			s.metrics.ObserveLockContention(entity)
			return nil, appErrors.Clone(appErrors.ErrBatchRunning,
				fmt.Sprintf("a %s import is already running", entity))
		}
	}

	batch := &models.ImportBatch{
		ID:         uuid.NewString(),
		EntityType: entity,
		Source:     source,
		Status:     models.BatchProcessing,
		StartedAt:  run.started,
	}
	if tenantSlug != "" {
		batch.TenantSlug = &tenantSlug
	}
	if err := store.CreateBatch(ctx, batch); err != nil {
		s.release(ctx, run)
		return nil, fmt.Errorf("open import batch: %w", err)
	}
	run.batch = batch

	s.logger.Info("import batch started",
		zap.String("batch_id", batch.ID),
		zap.String("entity_type", string(entity)),
		zap.String("source", string(source)),
		zap.String("tenant", tenantSlug),
	)
	return run, nil
}

// finish finalizes the batch, releases the run lock and fires post-batch
// hooks. It always returns the batch so callers surface the count summary on
// failure too.
func (s *ImportService) finish(ctx context.Context, run *batchRun, runErr error) (*models.ImportBatch, error) {
	defer s.release(ctx, run)

	batch := run.batch
	if runErr != nil {
		batch.Status = models.BatchFailed
		msg := runErr.Error()
		batch.FailureReason = &msg
	} else {
		batch.Status = models.BatchCompleted
	}

	if err := run.store.FinalizeBatch(ctx, batch); err != nil {
		s.logger.Error("finalize batch failed", zap.String("batch_id", batch.ID), zap.Error(err))
		if runErr == nil {
			runErr = err
		}
	}

	duration := time.Since(run.started)
	s.metrics.ObserveBatch(batch, duration)
	s.logger.Info("import batch finished",
		zap.String("batch_id", batch.ID),
		zap.String("status", string(batch.Status)),
		zap.Int("rows_processed", batch.RowsProcessed),
		zap.Int("rows_created", batch.RowsCreated),
		zap.Int("rows_updated", batch.RowsUpdated),
		zap.Int("rows_skipped", batch.RowsSkipped),
		zap.Int("rows_unmatched", batch.RowsUnmatched),
		zap.Int("rows_invalid", batch.RowsInvalid),
		zap.Duration("duration", duration),
	)

	if batch.Status == models.BatchCompleted {
		s.invalidateDerived(ctx, batch.EntityType)
		if s.afterBatch != nil {
			s.afterBatch(batch)
		}
	}
	return batch, runErr
}

func (s *ImportService) release(ctx context.Context, run *batchRun) {
	if s.locks == nil || run.lockKey == "" {
		return
	}
	if err := s.locks.ReleaseLock(ctx, run.lockKey, run.holder); err != nil {
		s.logger.Warn("release import lock failed", zap.String("key", run.lockKey), zap.Error(err))
	}
}

// invalidateDerived drops the cached derivations a finished batch can affect.
// Participation rows feed teacher progress, so those batches also flush the
// teacher keyspace.
func (s *ImportService) invalidateDerived(ctx context.Context, entity models.EntityType) {
	s.cache.InvalidateEntity(ctx, entity)
	if entity == models.EntityParticipation {
		s.cache.InvalidateEntity(ctx, models.EntityTeacher)
	}
}

// resolver builds an identity resolver bound to the run's store. Inside a row
// transaction the resolver must see uncommitted writes, so each transaction
// binds its own.
func (s *ImportService) resolver(store ImportStore) *IdentityResolver {
	return NewIdentityResolver(store, s.scorer, s.match.FuzzyThreshold, s.match.FuzzyEnabled, s.logger)
}

// rowError records one row-level failure. Row errors never abort the batch.
func (s *ImportService) rowError(ctx context.Context, run *batchRun, rowNumber int, column, code, message string) {
	rowErr := &models.ImportRowError{
		BatchID:   run.batch.ID,
		RowNumber: rowNumber,
		Code:      code,
		Message:   message,
	}
	if column != "" {
		rowErr.Column = &column
	}
	if err := run.store.AddRowError(ctx, rowErr); err != nil {
		s.logger.Error("record row error failed",
			zap.String("batch_id", run.batch.ID),
			zap.Int("row", rowNumber),
			zap.Error(err),
		)
	}
}

// parkForReview files a review queue item for an operator to resolve.
func (s *ImportService) parkForReview(ctx context.Context, run *batchRun, entity models.EntityType, reason models.ReviewReason, snapshot interface{}, candidates []string) {
	item := &models.ReviewItem{
		BatchID:    &run.batch.ID,
		EntityType: entity,
		Source:     run.batch.Source,
		Reason:     reason,
		Status:     models.ReviewPending,
	}
	if snapshot != nil {
		if raw, err := json.Marshal(snapshot); err == nil {
			item.RowSnapshot = raw
		}
	}
	if len(candidates) > 0 {
		if raw, err := json.Marshal(candidates); err == nil {
			item.CandidateIDs = raw
		}
	}

	if err := run.store.CreateReviewItem(ctx, item); err != nil {
		s.logger.Error("create review item failed", zap.String("batch_id", run.batch.ID), zap.Error(err))
		return
	}
	s.metrics.ObserveReviewItem(reason)
}

// GetBatch returns one batch with its count summary.
func (s *ImportService) GetBatch(ctx context.Context, tenantSlug, id string) (*models.ImportBatch, error) {
	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	batch, err := store.GetBatch(ctx, id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import batch not found")
	}
	if err := s.guardBatchScope(tenantSlug, batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// ListBatches returns batch history, newest first.
func (s *ImportService) ListBatches(ctx context.Context, tenantSlug string, filter models.BatchFilter) ([]models.ImportBatch, int, error) {
	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, 0, err
	}
	return store.ListBatches(ctx, filter)
}

// ListRowErrors returns every row-level failure of a batch.
func (s *ImportService) ListRowErrors(ctx context.Context, tenantSlug, batchID string) ([]models.ImportRowError, error) {
	store, err := s.stores.StoreFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	batch, err := store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "import batch not found")
	}
	if err := s.guardBatchScope(tenantSlug, batch); err != nil {
		return nil, err
	}
	return store.ListBatchRowErrors(ctx, batchID)
}

// outcomeOf folds created/updated flags for a multi-entity row into the single
// outcome the report counts. Creation anywhere on the row counts as created.
func outcomeOf(created, updated bool) models.RowOutcome {
	switch {
	case created:
		return models.RowCreated
	case updated:
		return models.RowUpdated
	default:
		return models.RowSkipped
	}
}
