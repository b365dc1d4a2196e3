package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/volunteer-hub-api/internal/repository"
	"github.com/edubridge/volunteer-hub-api/pkg/config"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

func newTestTenantService(t *testing.T, enabled bool) (*TenantService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "sqlmock")

	svc := NewTenantService(
		sqlxDB,
		repository.NewTenantRepository(sqlxDB),
		config.TenantsConfig{Enabled: enabled, SchemaPrefix: "district_"},
		config.DatabaseConfig{},
		nil,
	)
	return svc, mock, func() { db.Close() }
}

func TestGuardScope(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, true)
	defer cleanup()

	assert.NoError(t, svc.GuardScope("springfield", "springfield"))
	assert.NoError(t, svc.GuardScope("", ""))

	err := svc.GuardScope("springfield", "shelbyville")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTenantScope.Code))
}

func TestSetForEmptySlugUsesMainStore(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, false)
	defer cleanup()

	set, err := svc.SetFor(context.Background(), "")
	require.NoError(t, err)
	assert.NotNil(t, set)
}

func TestSetForDisabledRouting(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, false)
	defer cleanup()

	_, err := svc.SetFor(context.Background(), "springfield")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTenantScope.Code))
}

func TestProvisionDisabled(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, false)
	defer cleanup()

	_, err := svc.Provision(context.Background(), ProvisionRequest{Slug: "springfield"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTenantScope.Code))
}

func TestProvisionRejectsBadSlugs(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, true)
	defer cleanup()

	for _, slug := range []string{"", "ab", "-leading", "trailing-", "has spaces", "sch..ema"} {
		_, err := svc.Provision(context.Background(), ProvisionRequest{
			Slug:          slug,
			Name:          "Springfield USD",
			AdminEmail:    "admin@springfield.k12.us",
			AdminName:     "Pat Admin",
			AdminPassword: "long-enough-password",
		})
		require.Error(t, err, "slug %q", slug)
		assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code), "slug %q", slug)
	}
}

func TestProvisionRejectsWeakAdminPassword(t *testing.T) {
	svc, _, cleanup := newTestTenantService(t, true)
	defer cleanup()

	_, err := svc.Provision(context.Background(), ProvisionRequest{
		Slug:          "springfield",
		Name:          "Springfield USD",
		AdminEmail:    "admin@springfield.k12.us",
		AdminName:     "Pat Admin",
		AdminPassword: "short",
	})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrValidation.Code))
}

func TestProvisionExistingSlugIsIdempotent(t *testing.T) {
	svc, mock, cleanup := newTestTenantService(t, true)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "slug", "name", "schema_name", "active", "features", "created_at", "updated_at", "deactivated_at"}).
		AddRow("ten-1", "springfield", "Springfield USD", "district_springfield", true, nil, time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slug, name, schema_name")).
		WithArgs("springfield").
		WillReturnRows(rows)

	result, err := svc.Provision(context.Background(), ProvisionRequest{
		Slug:          "Springfield", // case-insensitive retry
		Name:          "Springfield USD",
		AdminEmail:    "admin@springfield.k12.us",
		AdminName:     "Pat Admin",
		AdminPassword: "long-enough-password",
	})
	require.NoError(t, err)

	assert.False(t, result.Created)
	assert.Equal(t, "ten-1", result.Tenant.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveInactiveTenant(t *testing.T) {
	svc, mock, cleanup := newTestTenantService(t, true)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"id", "slug", "name", "schema_name", "active", "features", "created_at", "updated_at", "deactivated_at"}).
		AddRow("ten-1", "springfield", "Springfield USD", "district_springfield", false, nil, time.Now(), time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slug, name, schema_name")).
		WithArgs("springfield").
		WillReturnRows(rows)

	_, err := svc.Resolve(context.Background(), "springfield")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrTenantInactive.Code))
}

func TestResolveMissingTenant(t *testing.T) {
	svc, mock, cleanup := newTestTenantService(t, true)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slug, name, schema_name")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Resolve(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrNotFound.Code))
}
