package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/response"
)

// OnboardingHandler serves onboarding checklists and the activation gate.
type OnboardingHandler struct {
	onboarding *service.OnboardingService
	drivers    *service.DriverService
}

// NewOnboardingHandler creates a new handler.
func NewOnboardingHandler(onboarding *service.OnboardingService, drivers *service.DriverService) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding, drivers: drivers}
}

// MyStatus godoc
// @Summary Get my onboarding status
// @Description Returns the current driver's onboarding checklist and activation readiness
// @Tags Onboarding
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /driver/onboarding [get]
func (h *OnboardingHandler) MyStatus(c *gin.Context) {
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

	status, err := h.onboarding.ComputeStatus(c.Request.Context(), driver.CompanyID, driver.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}

// DriverStatus godoc
// @Summary Get a driver's onboarding status
// @Description Returns a driver's onboarding checklist and activation readiness
// @Tags Onboarding
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/drivers/{id}/onboarding [get]
func (h *OnboardingHandler) DriverStatus(c *gin.Context) {
	companyID, _, ok := adminScope(c)
	if !ok {
		return
	}

	status, err := h.onboarding.ComputeStatus(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}

// SetDriverStatus godoc
// @Summary Activate or deactivate a driver
// @Description Activation is refused while onboarding blockers remain; deactivation always succeeds
// @Tags Onboarding
// @Accept json
// @Produce json
// @Param id path string true "Driver ID"
// @Param payload body dto.SetDriverStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/drivers/{id}/status [post]
func (h *OnboardingHandler) SetDriverStatus(c *gin.Context) {
	companyID, jwtClaims, ok := adminScope(c)
	if !ok {
		return
	}

	var req dto.SetDriverStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid status payload"))
		return
	}

	status, err := h.onboarding.SetStatus(c.Request.Context(), companyID, c.Param("id"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, status, nil)
}
