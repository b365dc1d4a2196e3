package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
	"github.com/edubridge/volunteer-hub-api/pkg/response"
)

type progressService interface {
	ListTeacherProgress(ctx context.Context, tenantSlug, academicYear string) ([]models.TeacherProgressView, error)
	TeacherProgressView(ctx context.Context, tenantSlug, teacherID, academicYear string) (*models.TeacherProgressView, error)
	ResetAcademicYear(ctx context.Context, tenantSlug, academicYear string) (int, error)
}

// ProgressHandler exposes derived teacher progress.
type ProgressHandler struct {
	service progressService
}

// NewProgressHandler builds a new handler.
func NewProgressHandler(service progressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// List godoc
// @Summary List derived teacher progress for an academic year
// @Tags Progress
// @Produce json
// @Param academic_year query string false "Academic year label, defaults to the current one"
// @Success 200 {object} response.Envelope
// @Router /progress/teachers [get]
func (h *ProgressHandler) List(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	views, err := h.service.ListTeacherProgress(c.Request.Context(), tenant, c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}

// Get godoc
// @Summary Get one teacher's derived progress
// @Tags Progress
// @Produce json
// @Param id path string true "Teacher ID"
// @Param academic_year query string false "Academic year label"
// @Success 200 {object} response.Envelope
// @Router /progress/teachers/{id} [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	view, err := h.service.TeacherProgressView(c.Request.Context(), tenant, c.Param("id"), c.Query("academic_year"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Reset godoc
// @Summary Archive all progress rows of an academic year
// @Tags Progress
// @Accept json
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /progress/reset [post]
func (h *ProgressHandler) Reset(c *gin.Context) {
	var req struct {
		AcademicYear string `json:"academic_year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reset payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	archived, err := h.service.ResetAcademicYear(c.Request.Context(), tenant, req.AcademicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"academic_year": req.AcademicYear, "archived": archived}, nil)
}
