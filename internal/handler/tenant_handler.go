package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/service"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
	"github.com/edubridge/volunteer-hub-api/pkg/response"
)

type tenantService interface {
	List(ctx context.Context) ([]models.Tenant, error)
	Provision(ctx context.Context, req service.ProvisionRequest) (*models.ProvisionResult, error)
	Deactivate(ctx context.Context, slug string) error
}

// TenantHandler exposes district store administration.
type TenantHandler struct {
	service tenantService
}

// NewTenantHandler builds a new handler.
func NewTenantHandler(service tenantService) *TenantHandler {
	return &TenantHandler{service: service}
}

// List godoc
// @Summary List tenants
// @Tags Tenants
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	tenants, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tenants, nil)
}

// Provision godoc
// @Summary Provision a district store
// @Tags Tenants
// @Accept json
// @Produce json
// @Param payload body service.ProvisionRequest true "Provisioning payload"
// @Success 201 {object} response.Envelope
// @Router /tenants [post]
func (h *TenantHandler) Provision(c *gin.Context) {
	var req service.ProvisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid provisioning payload"))
		return
	}
	result, err := h.service.Provision(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	response.JSON(c, status, result, nil)
}

// Deactivate godoc
// @Summary Deactivate a tenant
// @Tags Tenants
// @Produce json
// @Param slug path string true "Tenant slug"
// @Success 204
// @Router /tenants/{slug} [delete]
func (h *TenantHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), c.Param("slug")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
