package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/response"
)

// FeatureFlagHandler serves effective flags and per-company overrides.
type FeatureFlagHandler struct {
	flags *service.FeatureFlagService
}

// NewFeatureFlagHandler creates a new handler.
func NewFeatureFlagHandler(flags *service.FeatureFlagService) *FeatureFlagHandler {
	return &FeatureFlagHandler{flags: flags}
}

// Effective godoc
// @Summary Get effective flags
// @Description Returns the resolved flag map for the caller's company
// @Tags Feature Flags
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /flags/effective [get]
func (h *FeatureFlagHandler) Effective(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	res, err := h.flags.Effective(c.Request.Context(), companyID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// List godoc
// @Summary List flags with override state
// @Description Returns every flag with its default, company override, and effective value. Internal flags are visible to superadmins only.
// @Tags Feature Flags
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/flags [get]
func (h *FeatureFlagHandler) List(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	views, err := h.flags.List(c.Request.Context(), companyID, jwtClaims.Role == models.RoleSuperAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, views, nil)
}

// SetOverride godoc
// @Summary Set a company override
// @Description Pin a flag on or off for a company, superseding its default
// @Tags Feature Flags
// @Accept json
// @Produce json
// @Param key path string true "Flag key"
// @Param payload body dto.SetOverrideRequest true "Override payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/flags/{key}/override [put]
func (h *FeatureFlagHandler) SetOverride(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	var req dto.SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid override payload"))
		return
	}

	override, err := h.flags.SetOverride(c.Request.Context(), companyID, c.Param("key"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, override, nil)
}

// SetDefault godoc
// @Summary Set a flag's platform default
// @Description Flip a flag's default value for every company without an override. Superadmin only.
// @Tags Feature Flags
// @Accept json
// @Produce json
// @Param key path string true "Flag key"
// @Param payload body dto.SetDefaultRequest true "Default payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/flags/{key}/default [put]
func (h *FeatureFlagHandler) SetDefault(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.SetDefaultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid default payload"))
		return
	}

	flag, err := h.flags.SetDefault(c.Request.Context(), c.Param("key"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, flag, nil)
}

// ClearOverride godoc
// @Summary Clear a company override
// @Description Remove a company's override so the flag's default applies again
// @Tags Feature Flags
// @Produce json
// @Param key path string true "Flag key"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/flags/{key}/override [delete]
func (h *FeatureFlagHandler) ClearOverride(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	if err := h.flags.ClearOverride(c.Request.Context(), companyID, c.Param("key"), jwtClaims.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
