package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/response"
)

// ReportHandler serves compliance export endpoints.
type ReportHandler struct {
	exports *service.ExportService
}

// NewReportHandler creates a new handler.
func NewReportHandler(exports *service.ExportService) *ReportHandler {
	return &ReportHandler{exports: exports}
}

// GenerateComplianceReport godoc
// @Summary Generate a compliance report
// @Description Renders the review-history trail as CSV or PDF, uploads it to object storage, and returns a time-limited download link
// @Tags Reports
// @Accept json
// @Produce json
// @Param payload body dto.ComplianceReportRequest true "Report filters"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/reports/compliance [post]
func (h *ReportHandler) GenerateComplianceReport(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	var req dto.ComplianceReportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report payload"))
			return
		}
	}

	res, err := h.exports.GenerateComplianceReport(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, res)
}
