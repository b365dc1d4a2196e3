package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/pkg/response"
)

type volunteerService interface {
	ListVolunteers(ctx context.Context, tenantSlug string, filter models.VolunteerFilter) ([]models.VolunteerView, int, error)
	GetVolunteer(ctx context.Context, tenantSlug, id string) (*models.VolunteerView, error)
}

// VolunteerHandler exposes volunteers decorated with derived locality.
type VolunteerHandler struct {
	service volunteerService
}

// NewVolunteerHandler builds a new handler.
func NewVolunteerHandler(service volunteerService) *VolunteerHandler {
	return &VolunteerHandler{service: service}
}

// List godoc
// @Summary List volunteers
// @Tags Volunteers
// @Produce json
// @Param search query string false "Name or email search"
// @Success 200 {object} response.Envelope
// @Router /volunteers [get]
func (h *VolunteerHandler) List(c *gin.Context) {
	page, size := pageFromQuery(c)
	filter := models.VolunteerFilter{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: size,
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, total, err := h.service.ListVolunteers(c.Request.Context(), tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, paginationOf(page, size, total))
}

// Get godoc
// @Summary Get one volunteer
// @Tags Volunteers
// @Produce json
// @Param id path string true "Volunteer ID"
// @Success 200 {object} response.Envelope
// @Router /volunteers/{id} [get]
func (h *VolunteerHandler) Get(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.GetVolunteer(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}
