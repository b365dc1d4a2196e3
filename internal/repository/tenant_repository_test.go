package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

func newTenantRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func tenantRows(tenant *models.Tenant) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "slug", "name", "schema_name", "active", "features", "created_at", "updated_at", "deactivated_at"}).
		AddRow(tenant.ID, tenant.Slug, tenant.Name, tenant.SchemaName, tenant.Active, nil, time.Now(), time.Now(), nil)
}

func TestTenantRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tenants")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	tenant := &models.Tenant{
		Slug:       "springfield",
		Name:       "Springfield USD",
		SchemaName: "district_springfield",
		Active:     true,
	}
	require.NoError(t, repo.Create(context.Background(), tenant))
	require.NotEmpty(t, tenant.ID)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slug, name, schema_name")).
		WithArgs("springfield").
		WillReturnRows(tenantRows(tenant))

	found, err := repo.GetBySlug(context.Background(), "springfield")
	require.NoError(t, err)
	require.Equal(t, tenant.ID, found.ID)
	require.Equal(t, "district_springfield", found.SchemaName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryGetBySlugAbsent(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, slug, name, schema_name")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	found, err := repo.GetBySlug(context.Background(), "missing")
	require.NoError(t, err)
	require.Nil(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tenants SET active = FALSE")).
		WithArgs("springfield", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "springfield"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryDeactivateAbsent(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tenants SET active = FALSE")).
		WithArgs("ghost", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.Error(t, repo.Deactivate(context.Background(), "ghost"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryProvisionSchema(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`CREATE SCHEMA IF NOT EXISTS "district_springfield"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SET LOCAL search_path TO "district_springfield"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	require.NoError(t, repo.ProvisionSchema(context.Background(), "district_springfield"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTenantRepositoryCopyReferenceData(t *testing.T) {
	db, mock, cleanup := newTenantRepoMock(t)
	defer cleanup()

	repo := NewTenantRepository(db)
	for i := range ReferenceTables {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "district_springfield".` + ReferenceTables[i])).
			WillReturnResult(sqlmock.NewResult(0, int64(i+1)))
	}

	counts, err := repo.CopyReferenceData(context.Background(), "district_springfield")
	require.NoError(t, err)
	require.Len(t, counts, len(ReferenceTables))
	require.Equal(t, 1, counts["districts"])
	require.NoError(t, mock.ExpectationsWereMet())
}
