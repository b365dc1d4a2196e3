package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edubridge/volunteer-hub-api/internal/models"
)

func TestTenantFromContext(t *testing.T) {
	c, _ := newImportTestContext(t, http.MethodGet, "/volunteers?tenant=springfield", nil, "")
	tenant, err := tenantFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "springfield", tenant)

	c, _ = newImportTestContext(t, http.MethodGet, "/volunteers", nil, "")
	c.Request.Header.Set(TenantHeader, "springfield")
	tenant, err = tenantFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "springfield", tenant)

	c, _ = newImportTestContext(t, http.MethodGet, "/volunteers?tenant=springfield", nil, "")
	c.Request.Header.Set(TenantHeader, "springfield")
	tenant, err = tenantFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "springfield", tenant, "header and query agreeing is fine")

	c, _ = newImportTestContext(t, http.MethodGet, "/volunteers", nil, "")
	tenant, err = tenantFromContext(c)
	require.NoError(t, err)
	assert.Empty(t, tenant, "no scope selects the main store")
}

func TestConflictingTenantScopesAreRejected(t *testing.T) {
	mock := &importServiceMock{batch: &models.ImportBatch{ID: "batch-1"}}
	handler := NewImportHandler(mock, 0)

	c, w := newImportTestContext(t, http.MethodGet, "/imports/batches/batch-1?tenant=lawrence", nil, "")
	c.Request.Header.Set(TenantHeader, "springfield")

	handler.GetBatch(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "conflicting tenant scopes")
}
