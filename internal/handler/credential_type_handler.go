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

// CredentialTypeHandler serves the requirement catalog admin endpoints.
type CredentialTypeHandler struct {
	types *service.CredentialTypeService
}

// NewCredentialTypeHandler creates a new handler.
func NewCredentialTypeHandler(types *service.CredentialTypeService) *CredentialTypeHandler {
	return &CredentialTypeHandler{types: types}
}

// List godoc
// @Summary List credential types
// @Description Returns the company's requirement catalog, filterable by category, status, and scope
// @Tags Credential Types
// @Produce json
// @Param category query string false "driver or vehicle"
// @Param status query string false "draft, scheduled, active, or archived"
// @Param scope query string false "global or broker_specific"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/credential-types [get]
func (h *CredentialTypeHandler) List(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	req := dto.CredentialTypeListRequest{
		Category: models.CredentialCategory(c.Query("category")),
		Status:   models.CredentialTypeStatus(c.Query("status")),
		Scope:    models.CredentialScope(c.Query("scope")),
	}

	types, err := h.types.List(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, types, nil)
}

// Get godoc
// @Summary Get a credential type
// @Tags Credential Types
// @Produce json
// @Param id path string true "Credential type ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/credential-types/{id} [get]
func (h *CredentialTypeHandler) Get(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	ct, err := h.types.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ct, nil)
}

// Create godoc
// @Summary Create a credential type
// @Description Define a new requirement. Types start as drafts unless an effective date schedules them.
// @Tags Credential Types
// @Accept json
// @Produce json
// @Param payload body dto.CreateCredentialTypeRequest true "Credential type payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/credential-types [post]
func (h *CredentialTypeHandler) Create(c *gin.Context) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	var req dto.CreateCredentialTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid credential type payload"))
		return
	}

	ct, err := h.types.Create(c.Request.Context(), companyID, jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, ct)
}

// Update godoc
// @Summary Update a credential type
// @Description Apply partial edits. Archived types are immutable.
// @Tags Credential Types
// @Accept json
// @Produce json
// @Param id path string true "Credential type ID"
// @Param payload body dto.UpdateCredentialTypeRequest true "Edit payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/credential-types/{id} [patch]
func (h *CredentialTypeHandler) Update(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	var req dto.UpdateCredentialTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}

	ct, err := h.types.Update(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ct, nil)
}

// Publish godoc
// @Summary Publish a credential type
// @Description Take a draft live immediately or schedule it for a future effective date
// @Tags Credential Types
// @Accept json
// @Produce json
// @Param id path string true "Credential type ID"
// @Param payload body dto.PublishCredentialTypeRequest true "Publish payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/credential-types/{id}/publish [post]
func (h *CredentialTypeHandler) Publish(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	var req dto.PublishCredentialTypeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid publish payload"))
			return
		}
	}

	ct, err := h.types.Publish(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, ct, nil)
}

// Archive godoc
// @Summary Archive a credential type
// @Description Retire a requirement. Existing credentials keep their history.
// @Tags Credential Types
// @Produce json
// @Param id path string true "Credential type ID"
// @Success 204 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/credential-types/{id} [delete]
func (h *CredentialTypeHandler) Archive(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	if err := h.types.Archive(c.Request.Context(), companyID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
