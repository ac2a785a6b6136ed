package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	"github.com/fleetpass/fleet-compliance-api/internal/service"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/response"
)

// ReviewHandler serves the admin review queue and decision endpoints.
type ReviewHandler struct {
	credentials *service.CredentialService
}

// NewReviewHandler creates a new handler.
func NewReviewHandler(credentials *service.CredentialService) *ReviewHandler {
	return &ReviewHandler{credentials: credentials}
}

func tableFromQuery(c *gin.Context) (models.CredentialTable, bool) {
	table := models.CredentialTable(c.DefaultQuery("table", string(models.TableDriverCredentials)))
	if !table.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown credential table"))
		return "", false
	}
	return table, true
}

func reviewScope(c *gin.Context) (string, bool) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	if jwtClaims.Role == models.RoleSuperAdmin {
		if companyID := c.Query("company_id"); companyID != "" {
			return companyID, true
		}
	}
	companyID := companyFromContext(c)
	if companyID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account has no company scope"))
		return "", false
	}
	return companyID, true
}

// adminScope resolves the tenant a by-ID admin request is confined to.
// Superadmins act platform-wide unless they narrow with ?company_id; everyone
// else is pinned to their claims company.
func adminScope(c *gin.Context) (string, *models.JWTClaims, bool) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", nil, false
	}
	if jwtClaims.Role == models.RoleSuperAdmin {
		return c.Query("company_id"), jwtClaims, true
	}
	companyID := companyFromContext(c)
	if companyID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "account has no company scope"))
		return "", nil, false
	}
	return companyID, jwtClaims, true
}

// Queue godoc
// @Summary List credentials awaiting review
// @Description Returns the pending-review queue for the admin's company, oldest first
// @Tags Review
// @Produce json
// @Param table query string false "driver_credentials or vehicle_credentials"
// @Param type_id query string false "Filter by credential type"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/review/queue [get]
func (h *ReviewHandler) Queue(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	req := dto.ReviewQueueRequest{Table: table, TypeID: c.Query("type_id")}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		req.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		req.PageSize = size
	}

	res, pagination, err := h.credentials.ReviewQueue(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, pagination)
}

// Approve godoc
// @Summary Approve a credential
// @Description Approve a pending submission and stamp its derived expiry
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Credential ID"
// @Param payload body dto.ApproveCredentialRequest true "Approval payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/review/{id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	companyID, jwtClaims, ok := adminScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	var req dto.ApproveCredentialRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid approval payload"))
			return
		}
	}

	cred, err := h.credentials.Approve(c.Request.Context(), table, companyID, c.Param("id"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}

// Reject godoc
// @Summary Reject a credential
// @Description Reject a pending submission with a reason the driver can act on
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Credential ID"
// @Param payload body dto.RejectCredentialRequest true "Rejection payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/review/{id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	companyID, jwtClaims, ok := adminScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	var req dto.RejectCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "rejection reason required"))
		return
	}

	cred, err := h.credentials.Reject(c.Request.Context(), table, companyID, c.Param("id"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}

// Verify godoc
// @Summary Verify a credential on the driver's behalf
// @Description Mark an admin-verified requirement as completed without a driver submission
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Credential ID"
// @Param payload body dto.VerifyCredentialRequest true "Verification payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/review/{id}/verify [post]
func (h *ReviewHandler) Verify(c *gin.Context) {
	companyID, jwtClaims, ok := adminScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	var req dto.VerifyCredentialRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid verification payload"))
			return
		}
	}

	cred, err := h.credentials.Verify(c.Request.Context(), table, companyID, c.Param("id"), jwtClaims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}

// Unverify godoc
// @Summary Remove an admin verification
// @Description Return an admin-verified credential to not_submitted
// @Tags Review
// @Produce json
// @Param id path string true "Credential ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admin/review/{id}/unverify [post]
func (h *ReviewHandler) Unverify(c *gin.Context) {
	companyID, jwtClaims, ok := adminScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	cred, err := h.credentials.Unverify(c.Request.Context(), table, companyID, c.Param("id"), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}

// History godoc
// @Summary List a credential's submission history
// @Description Returns the append-only trail of submissions and decisions
// @Tags Review
// @Produce json
// @Param id path string true "Credential ID"
// @Param table query string false "driver_credentials or vehicle_credentials"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/review/{id}/history [get]
func (h *ReviewHandler) History(c *gin.Context) {
	companyID, _, ok := adminScope(c)
	if !ok {
		return
	}
	table, ok := tableFromQuery(c)
	if !ok {
		return
	}

	entries, err := h.credentials.History(c.Request.Context(), table, companyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, entries, nil)
}
