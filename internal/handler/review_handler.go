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

type reviewService interface {
	List(ctx context.Context, tenantSlug string, filter models.ReviewFilter) ([]models.ReviewItem, int, error)
	Get(ctx context.Context, tenantSlug, id string) (*models.ReviewItem, error)
	Resolve(ctx context.Context, tenantSlug, id string, req service.ResolveReviewRequest) (*models.ReviewItem, error)
	Dismiss(ctx context.Context, tenantSlug, id, dismissedBy string) (*models.ReviewItem, error)
}

// ReviewHandler exposes the manual review queue.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// List godoc
// @Summary List review queue items
// @Tags Review
// @Produce json
// @Param status query string false "Filter by status"
// @Param entity_type query string false "Filter by entity type"
// @Param reason query string false "Filter by reason"
// @Success 200 {object} response.Envelope
// @Router /review [get]
func (h *ReviewHandler) List(c *gin.Context) {
	page, size := pageFromQuery(c)
	filter := models.ReviewFilter{
		Status:     models.ReviewStatus(c.Query("status")),
		EntityType: models.EntityType(c.Query("entity_type")),
		Reason:     models.ReviewReason(c.Query("reason")),
		Page:       page,
		PageSize:   size,
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, total, err := h.service.List(c.Request.Context(), tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, paginationOf(page, size, total))
}

// Get godoc
// @Summary Get one review item
// @Tags Review
// @Produce json
// @Param id path string true "Review item ID"
// @Success 200 {object} response.Envelope
// @Router /review/{id} [get]
func (h *ReviewHandler) Get(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Resolve godoc
// @Summary Link a review item to a canonical entity
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Review item ID"
// @Param payload body service.ResolveReviewRequest true "Resolution payload"
// @Success 200 {object} response.Envelope
// @Router /review/{id}/resolve [post]
func (h *ReviewHandler) Resolve(c *gin.Context) {
	var req service.ResolveReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid resolution payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Resolve(c.Request.Context(), tenant, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Dismiss godoc
// @Summary Dismiss a review item without linking
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Review item ID"
// @Success 200 {object} response.Envelope
// @Router /review/{id}/dismiss [post]
func (h *ReviewHandler) Dismiss(c *gin.Context) {
	var req struct {
		DismissedBy string `json:"dismissed_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid dismissal payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Dismiss(c.Request.Context(), tenant, c.Param("id"), req.DismissedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
