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

const tenantColumns = `id, slug, name, schema_name, active, features, created_at, updated_at, deactivated_at`

// TenantRepository manages tenant records and the physical provisioning of
// district schemas. It always operates on the main store.
type TenantRepository struct {
	db *sqlx.DB
}

// NewTenantRepository constructs a TenantRepository.
func NewTenantRepository(db *sqlx.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetBySlug fetches a tenant by its immutable slug, or nil when absent.
func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants WHERE slug = $1`, tenantColumns)
	var tenant models.Tenant
	if err := sqlx.GetContext(ctx, r.db, &tenant, query, slug); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return &tenant, nil
}

// List returns all tenants ordered by slug.
func (r *TenantRepository) List(ctx context.Context) ([]models.Tenant, error) {
	query := fmt.Sprintf(`SELECT %s FROM tenants ORDER BY slug`, tenantColumns)
	var tenants []models.Tenant
	if err := sqlx.SelectContext(ctx, r.db, &tenants, query); err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return tenants, nil
}

// Create inserts a tenant record.
func (r *TenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = now
	}
	tenant.UpdatedAt = now

	const query = `INSERT INTO tenants (id, slug, name, schema_name, active, features, created_at, updated_at)
		VALUES (:id, :slug, :name, :schema_name, :active, :features, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, tenant); err != nil {
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

// Deactivate soft-disables a tenant. Physical schema removal is a separate,
// rarer operation and is deliberately not performed here.
func (r *TenantRepository) Deactivate(ctx context.Context, slug string) error {
	const query = `UPDATE tenants SET active = FALSE, deactivated_at = $2, updated_at = $2 WHERE slug = $1 AND active`
	res, err := r.db.ExecContext(ctx, query, slug, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate tenant: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CreateUser inserts the initial tenant-scoped admin account.
func (r *TenantRepository) CreateUser(ctx context.Context, user *models.TenantUser) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO tenant_users (id, tenant_id, email, full_name, password_hash, role, created_at)
		VALUES (:id, :tenant_id, :email, :full_name, :password_hash, :role, :created_at)`
	if _, err := sqlx.NamedExecContext(ctx, r.db, query, user); err != nil {
		return fmt.Errorf("create tenant user: %w", err)
	}
	return nil
}

// ProvisionSchema creates the tenant schema and applies the shared DDL inside
// it, all in one transaction.
func (r *TenantRepository) ProvisionSchema(ctx context.Context, schemaName string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin provisioning tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %q`, schemaName)); err != nil {
		return fmt.Errorf("create schema %s: %w", schemaName, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`SET LOCAL search_path TO %q`, schemaName)); err != nil {
		return fmt.Errorf("set search_path: %w", err)
	}
	if _, err := tx.ExecContext(ctx, SchemaDDL); err != nil {
		return fmt.Errorf("apply schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit provisioning tx: %w", err)
	}
	return nil
}

// CopyReferenceData snapshots the reference tables from the main store into
// the tenant schema and returns the copied row count per table. The snapshot
// is point-in-time; later edits in the main store do not propagate.
func (r *TenantRepository) CopyReferenceData(ctx context.Context, schemaName string) (map[string]int, error) {
	counts := make(map[string]int, len(ReferenceTables))
	for _, table := range ReferenceTables {
		query := fmt.Sprintf(`INSERT INTO %q.%s SELECT * FROM public.%s ON CONFLICT DO NOTHING`, schemaName, table, table)
		res, err := r.db.ExecContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("copy reference table %s: %w", table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			affected = 0
		}
		counts[table] = int(affected)
	}
	return counts, nil
}
