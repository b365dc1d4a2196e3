package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/repository"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	"github.com/edubridge/volunteer-hub-api/pkg/database"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,38}[a-z0-9]$`)

// ProvisionRequest creates an isolated district store.
type ProvisionRequest struct {
	Slug          string `json:"slug" validate:"required"`
	Name          string `json:"name" validate:"required"`
	AdminEmail    string `json:"admin_email" validate:"required,email"`
	AdminName     string `json:"admin_name" validate:"required"`
	AdminPassword string `json:"admin_password" validate:"required,min=10"`
}

// TenantService routes requests to district stores and provisions new ones.
// Each district lives in its own schema; cross-schema queries never happen.
type TenantService struct {
	tenants   *repository.TenantRepository
	mainSet   *repository.Set
	cfg       config.TenantsConfig
	dbCfg     config.DatabaseConfig
	validator *validator.Validate
	logger    *zap.Logger

	mu     sync.RWMutex
	stores map[string]*repository.Set
}

// NewTenantService constructs a TenantService over the main store handle.
func NewTenantService(mainDB *sqlx.DB, tenants *repository.TenantRepository, cfg config.TenantsConfig, dbCfg config.DatabaseConfig, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenants:   tenants,
		mainSet:   repository.NewSet(mainDB),
		cfg:       cfg,
		dbCfg:     dbCfg,
		validator: validator.New(),
		logger:    logger,
		stores:    make(map[string]*repository.Set),
	}
}

// StoreFor resolves the store for a tenant scope. An empty slug selects the
// main store. Implements StoreResolver.
func (s *TenantService) StoreFor(ctx context.Context, tenantSlug string) (ImportStore, error) {
	set, err := s.SetFor(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(set), nil
}

// SetFor resolves the repository set for a tenant scope.
func (s *TenantService) SetFor(ctx context.Context, tenantSlug string) (*repository.Set, error) {
	if tenantSlug == "" {
		return s.mainSet, nil
	}
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrTenantScope, "tenant routing is disabled")
	}

	s.mu.RLock()
	set, ok := s.stores[tenantSlug]
	s.mu.RUnlock()
	if ok {
		return set, nil
	}

	tenant, err := s.Resolve(ctx, tenantSlug)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if set, ok := s.stores[tenantSlug]; ok {
		return set, nil
	}

	db, err := database.NewPostgresSchema(s.dbCfg, tenant.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("open tenant store %s: %w", tenantSlug, err)
	}
	set = repository.NewSet(db)
	s.stores[tenantSlug] = set

	s.logger.Info("tenant store opened",
		zap.String("tenant", tenantSlug),
		zap.String("schema", tenant.SchemaName),
	)
	return set, nil
}

// Resolve looks up an active tenant by slug.
func (s *TenantService) Resolve(ctx context.Context, slug string) (*models.Tenant, error) {
	tenant, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("tenant %q not found", slug))
	}
	if !tenant.Active {
		return nil, appErrors.Clone(appErrors.ErrTenantInactive, fmt.Sprintf("tenant %q is deactivated", slug))
	}
	return tenant, nil
}

// GuardScope rejects requests whose resource belongs to a different tenant
// than the one the request is scoped to.
func (s *TenantService) GuardScope(requestSlug, resourceSlug string) error {
	if requestSlug == resourceSlug {
		return nil
	}
	return appErrors.Clone(appErrors.ErrTenantScope,
		fmt.Sprintf("resource belongs to tenant %q, request is scoped to %q", resourceSlug, requestSlug))
}

// List returns every tenant record.
func (s *TenantService) List(ctx context.Context) ([]models.Tenant, error) {
	return s.tenants.List(ctx)
}

// Provision creates a district store: tenant record, schema with the full DDL,
// a snapshot of the reference tables and the initial admin account. Calling it
// again for an existing slug returns the existing tenant unchanged, so the
// operation is safe to retry.
func (s *TenantService) Provision(ctx context.Context, req ProvisionRequest) (*models.ProvisionResult, error) {
	if !s.cfg.Enabled {
		return nil, appErrors.Clone(appErrors.ErrTenantScope, "tenant provisioning is disabled")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid provisioning request")
	}

	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		return nil, appErrors.Clone(appErrors.ErrValidation,
			"slug must be 3-40 lowercase letters, digits or hyphens")
	}

	existing, err := s.tenants.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return &models.ProvisionResult{Tenant: *existing, Created: false}, nil
	}

	schemaName := s.cfg.SchemaPrefix + strings.ReplaceAll(slug, "-", "_")
	tenant := &models.Tenant{
		Slug:       slug,
		Name:       req.Name,
		SchemaName: schemaName,
		Active:     true,
	}
	if err := s.tenants.Create(ctx, tenant); err != nil {
		return nil, fmt.Errorf("create tenant record: %w", err)
	}

	if err := s.tenants.ProvisionSchema(ctx, schemaName); err != nil {
		return nil, fmt.Errorf("provision schema: %w", err)
	}

	counts, err := s.tenants.CopyReferenceData(ctx, schemaName)
	if err != nil {
		return nil, fmt.Errorf("copy reference data: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	if err := s.tenants.CreateUser(ctx, &models.TenantUser{
		TenantID:     tenant.ID,
		Email:        NormalizeEmail(req.AdminEmail),
		FullName:     req.AdminName,
		PasswordHash: string(hash),
		Role:         "admin",
	}); err != nil {
		return nil, fmt.Errorf("create admin account: %w", err)
	}

	s.logger.Info("tenant provisioned",
		zap.String("tenant", slug),
		zap.String("schema", schemaName),
	)
	return &models.ProvisionResult{Tenant: *tenant, Created: true, CopiedCounts: counts}, nil
}

// Deactivate soft-disables a tenant and drops its cached store handle. The
// schema and its data stay in place.
func (s *TenantService) Deactivate(ctx context.Context, slug string) error {
	if err := s.tenants.Deactivate(ctx, slug); err != nil {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("active tenant %q not found", slug))
	}

	s.mu.Lock()
	delete(s.stores, slug)
	s.mu.Unlock()

	s.logger.Info("tenant deactivated", zap.String("tenant", slug))
	return nil
}
