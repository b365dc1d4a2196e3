package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
)

// TenantHeader scopes a request to a district store. Absent means the main store.
const TenantHeader = "X-Tenant"

// tenantFromContext resolves the tenant scope of a request. A request naming
// two different tenants is rejected rather than silently picking one.
func tenantFromContext(c *gin.Context) (string, error) {
	header := c.GetHeader(TenantHeader)
	query := c.Query("tenant")
	if header != "" && query != "" && header != query {
		return "", appErrors.Clone(appErrors.ErrTenantScope,
			"conflicting tenant scopes in header and query")
	}
	if header != "" {
		return header, nil
	}
	return query, nil
}

func pageFromQuery(c *gin.Context) (page, size int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}

func paginationOf(page, size, total int) *models.Pagination {
	return &models.Pagination{Page: page, PageSize: size, TotalCount: total}
}
