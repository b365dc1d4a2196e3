package handler

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/edubridge/volunteer-hub-api/internal/models"
	"github.com/edubridge/volunteer-hub-api/internal/service"
	appErrors "github.com/edubridge/volunteer-hub-api/pkg/errors"
	"github.com/edubridge/volunteer-hub-api/pkg/export"
	"github.com/edubridge/volunteer-hub-api/pkg/response"
)

type importService interface {
	RunPathfulImport(ctx context.Context, req service.PathfulImportRequest) (*models.ImportBatch, error)
	RunRosterImport(ctx context.Context, req service.RosterImportRequest) (*models.ImportBatch, error)
	RunSalesforceEventSync(ctx context.Context, tenantSlug string, records []service.SalesforceEventRecord) (*models.ImportBatch, error)
	RunSalesforceVolunteerSync(ctx context.Context, tenantSlug string, records []service.SalesforceVolunteerRecord) (*models.ImportBatch, error)
	RunSalesforceOrganizationSync(ctx context.Context, tenantSlug string, records []service.SalesforceOrganizationRecord) (*models.ImportBatch, error)
	GetBatch(ctx context.Context, tenantSlug, id string) (*models.ImportBatch, error)
	ListBatches(ctx context.Context, tenantSlug string, filter models.BatchFilter) ([]models.ImportBatch, int, error)
	ListRowErrors(ctx context.Context, tenantSlug, batchID string) ([]models.ImportRowError, error)
}

// ImportHandler exposes the batch import endpoints.
type ImportHandler struct {
	service     importService
	exporter    *export.CSVExporter
	maxFileSize int64
}

// NewImportHandler builds a new handler.
func NewImportHandler(service importService, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		service:     service,
		exporter:    export.NewCSVExporter(),
		maxFileSize: maxFileSize,
	}
}

func (h *ImportHandler) openUpload(c *gin.Context) (multipart.File, string, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "multipart field 'file' is required")
	}
	if h.maxFileSize > 0 && fileHeader.Size > h.maxFileSize {
		return nil, "", appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", h.maxFileSize))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "cannot open uploaded file")
	}
	return f, fileHeader.Filename, nil
}

// ImportPathful godoc
// @Summary Import a virtual-session attendance export
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX export"
// @Success 200 {object} response.Envelope
// @Router /imports/pathful [post]
func (h *ImportHandler) ImportPathful(c *gin.Context) {
	f, filename, err := h.openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close() //nolint:errcheck

	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.RunPathfulImport(c.Request.Context(), service.PathfulImportRequest{
		TenantSlug: tenant,
		Filename:   filename,
		Reader:     f,
	})
	h.respondBatch(c, batch, err)
}

// ImportRoster godoc
// @Summary Import a district teacher roster
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX roster"
// @Param academic_year query string false "Academic year label, e.g. 2025-2026"
// @Param apply_removals query bool false "Mark teachers absent from the file as removed"
// @Success 200 {object} response.Envelope
// @Router /imports/roster [post]
func (h *ImportHandler) ImportRoster(c *gin.Context) {
	f, filename, err := h.openUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer f.Close() //nolint:errcheck

	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	applyRemovals, _ := strconv.ParseBool(c.Query("apply_removals"))
	batch, err := h.service.RunRosterImport(c.Request.Context(), service.RosterImportRequest{
		TenantSlug:    tenant,
		Filename:      filename,
		Reader:        f,
		AcademicYear:  c.Query("academic_year"),
		ApplyRemovals: applyRemovals,
	})
	h.respondBatch(c, batch, err)
}

// SyncEvents godoc
// @Summary Sync CRM events
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body []service.SalesforceEventRecord true "Event records"
// @Success 200 {object} response.Envelope
// @Router /imports/salesforce/events [post]
func (h *ImportHandler) SyncEvents(c *gin.Context) {
	var records []service.SalesforceEventRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid event payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.RunSalesforceEventSync(c.Request.Context(), tenant, records)
	h.respondBatch(c, batch, err)
}

// SyncVolunteers godoc
// @Summary Sync CRM volunteer contacts
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body []service.SalesforceVolunteerRecord true "Volunteer records"
// @Success 200 {object} response.Envelope
// @Router /imports/salesforce/volunteers [post]
func (h *ImportHandler) SyncVolunteers(c *gin.Context) {
	var records []service.SalesforceVolunteerRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid volunteer payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.RunSalesforceVolunteerSync(c.Request.Context(), tenant, records)
	h.respondBatch(c, batch, err)
}

// SyncOrganizations godoc
// @Summary Sync CRM partner organizations
// @Tags Imports
// @Accept json
// @Produce json
// @Param payload body []service.SalesforceOrganizationRecord true "Organization records"
// @Success 200 {object} response.Envelope
// @Router /imports/salesforce/organizations [post]
func (h *ImportHandler) SyncOrganizations(c *gin.Context) {
	var records []service.SalesforceOrganizationRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid organization payload"))
		return
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.RunSalesforceOrganizationSync(c.Request.Context(), tenant, records)
	h.respondBatch(c, batch, err)
}

// respondBatch surfaces the batch count summary even when the run failed: a
// failed batch still carries its report.
func (h *ImportHandler) respondBatch(c *gin.Context, batch *models.ImportBatch, err error) {
	if batch == nil {
		response.Error(c, err)
		return
	}
	if err != nil {
		appErr := appErrors.FromError(err)
		c.JSON(appErr.Status, response.Envelope{Data: batch, Error: appErr})
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// ListBatches godoc
// @Summary List import batches
// @Tags Imports
// @Produce json
// @Param entity_type query string false "Filter by entity type"
// @Param source query string false "Filter by source system"
// @Param status query string false "Filter by batch status"
// @Success 200 {object} response.Envelope
// @Router /imports/batches [get]
func (h *ImportHandler) ListBatches(c *gin.Context) {
	page, size := pageFromQuery(c)
	filter := models.BatchFilter{
		EntityType: models.EntityType(c.Query("entity_type")),
		Source:     models.SourceSystem(c.Query("source")),
		Status:     models.BatchStatus(c.Query("status")),
		Page:       page,
		PageSize:   size,
	}
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batches, total, err := h.service.ListBatches(c.Request.Context(), tenant, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batches, paginationOf(page, size, total))
}

// GetBatch godoc
// @Summary Get one import batch
// @Tags Imports
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /imports/batches/{id} [get]
func (h *ImportHandler) GetBatch(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	batch, err := h.service.GetBatch(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, batch, nil)
}

// ListRowErrors godoc
// @Summary List row-level errors of a batch
// @Tags Imports
// @Produce json
// @Param id path string true "Batch ID"
// @Success 200 {object} response.Envelope
// @Router /imports/batches/{id}/errors [get]
func (h *ImportHandler) ListRowErrors(c *gin.Context) {
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.ListRowErrors(c.Request.Context(), tenant, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportRowErrors godoc
// @Summary Download row-level errors of a batch as CSV
// @Tags Imports
// @Produce text/csv
// @Param id path string true "Batch ID"
// @Success 200 {string} string "CSV content"
// @Router /imports/batches/{id}/errors/export [get]
func (h *ImportHandler) ExportRowErrors(c *gin.Context) {
	batchID := c.Param("id")
	tenant, err := tenantFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.service.ListRowErrors(c.Request.Context(), tenant, batchID)
	if err != nil {
		response.Error(c, err)
		return
	}

	dataset := export.Dataset{
		Headers: []string{"row_number", "column", "code", "message"},
		Rows:    make([]map[string]string, 0, len(rows)),
	}
	for _, row := range rows {
		column := ""
		if row.Column != nil {
			column = *row.Column
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"row_number": strconv.Itoa(row.RowNumber),
			"column":     column,
			"code":       row.Code,
			"message":    row.Message,
		})
	}

	payload, err := h.exporter.Render(dataset)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=batch-%s-errors.csv", batchID))
	c.Data(http.StatusOK, "text/csv", payload)
}
