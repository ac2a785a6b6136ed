package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/response"
)

// ProgressHandler serves instruction-flow progress endpoints for the
// current driver.
type ProgressHandler struct {
	progress *service.ProgressService
	drivers  *service.DriverService
}

// NewProgressHandler creates a new handler.
func NewProgressHandler(progress *service.ProgressService, drivers *service.DriverService) *ProgressHandler {
	return &ProgressHandler{progress: progress, drivers: drivers}
}

// Get godoc
// @Summary Get my instruction-flow progress
// @Description Returns saved step data and completion state for a multi-step credential
// @Tags Progress
// @Produce json
// @Param typeId path string true "Credential type ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /driver/credentials/{typeId}/progress [get]
func (h *ProgressHandler) Get(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.progress.Get(c.Request.Context(), driver.CompanyID, driver.ID, c.Param("typeId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// SaveStep godoc
// @Summary Save step data
// @Description Merge partial answers for one instruction step without completing it
// @Tags Progress
// @Accept json
// @Produce json
// @Param typeId path string true "Credential type ID"
// @Param payload body dto.SaveStepRequest true "Step payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /driver/credentials/{typeId}/progress/steps [put]
func (h *ProgressHandler) SaveStep(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.SaveStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid step payload"))
		return
	}

	res, err := h.progress.SaveStep(c.Request.Context(), driver.CompanyID, driver.ID, c.Param("typeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// CompleteStep godoc
// @Summary Complete a step
// @Description Validate a step's required inputs and mark it complete
// @Tags Progress
// @Accept json
// @Produce json
// @Param typeId path string true "Credential type ID"
// @Param payload body dto.CompleteStepRequest true "Step payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /driver/credentials/{typeId}/progress/complete [post]
func (h *ProgressHandler) CompleteStep(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.CompleteStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid step payload"))
		return
	}

	res, err := h.progress.CompleteStep(c.Request.Context(), driver.CompanyID, driver.ID, c.Param("typeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Clear godoc
// @Summary Clear my instruction-flow progress
// @Description Wipe saved step data so the flow starts over
// @Tags Progress
// @Produce json
// @Param typeId path string true "Credential type ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /driver/credentials/{typeId}/progress [delete]
func (h *ProgressHandler) Clear(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	if err := h.progress.Clear(c.Request.Context(), driver.ID, c.Param("typeId")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
