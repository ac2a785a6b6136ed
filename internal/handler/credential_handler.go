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

// CredentialHandler serves the driver-facing credential checklist and
// submission endpoints.
type CredentialHandler struct {
	credentials *service.CredentialService
	drivers     *service.DriverService
}

// NewCredentialHandler creates a new handler.
func NewCredentialHandler(credentials *service.CredentialService, drivers *service.DriverService) *CredentialHandler {
	return &CredentialHandler{credentials: credentials, drivers: drivers}
}

func (h *CredentialHandler) currentDriver(c *gin.Context) (*models.Driver, bool) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return driver, true
}

// MyChecklist godoc
// @Summary List my credential checklist
// @Description Returns every live requirement for the current driver with derived display statuses
// @Tags Credentials
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /driver/credentials [get]
func (h *CredentialHandler) MyChecklist(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	res, err := h.credentials.Checklist(c.Request.Context(), models.TableDriverCredentials, driver.CompanyID, driver.ID, driver.EmploymentType, &driver.CreatedAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// Submit godoc
// @Summary Submit a credential
// @Description Submit documents or form data for one of my requirements
// @Tags Credentials
// @Accept json
// @Produce json
// @Param typeId path string true "Credential type ID"
// @Param payload body dto.SubmitCredentialRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /driver/credentials/{typeId} [post]
func (h *CredentialHandler) Submit(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.SubmitCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	cred, err := h.credentials.Submit(c.Request.Context(), models.TableDriverCredentials, driver.CompanyID, driver.ID, c.Param("typeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}

// vehicleForRequest loads the vehicle and enforces that drivers only touch
// vehicles they own and admins only touch vehicles in their company.
func (h *CredentialHandler) vehicleForRequest(c *gin.Context) (*models.Vehicle, bool) {
	jwtClaims := claimsFromContext(c)
	if jwtClaims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}

	vehicle, err := h.drivers.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}

	switch jwtClaims.Role {
	case models.RoleDriver:
		driver, err := h.drivers.GetByUserID(c.Request.Context(), jwtClaims.UserID)
		if err != nil {
			response.Error(c, err)
			return nil, false
		}
		if vehicle.OwnerDriverID == nil || *vehicle.OwnerDriverID != driver.ID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "vehicle belongs to another driver"))
			return nil, false
		}
	case models.RoleSuperAdmin:
	default:
		if jwtClaims.CompanyID == nil || vehicle.CompanyID != *jwtClaims.CompanyID {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "vehicle belongs to another company"))
			return nil, false
		}
	}
	return vehicle, true
}

// VehicleChecklist godoc
// @Summary List a vehicle's credential checklist
// @Description Returns every live vehicle requirement with derived display statuses
// @Tags Credentials
// @Produce json
// @Param id path string true "Vehicle ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /vehicles/{id}/credentials [get]
func (h *CredentialHandler) VehicleChecklist(c *gin.Context) {
	vehicle, ok := h.vehicleForRequest(c)
	if !ok {
		return
	}

	employment := models.Employment1099
	if vehicle.OwnerDriverID == nil {
		employment = models.EmploymentW2
	}
	res, err := h.credentials.Checklist(c.Request.Context(), models.TableVehicleCredentials, vehicle.CompanyID, vehicle.ID, employment, &vehicle.CreatedAt)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res, nil)
}

// SubmitVehicleCredential godoc
// @Summary Submit a vehicle credential
// @Description Submit documents for one of a vehicle's requirements
// @Tags Credentials
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param typeId path string true "Credential type ID"
// @Param payload body dto.SubmitCredentialRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /vehicles/{id}/credentials/{typeId} [post]
func (h *CredentialHandler) SubmitVehicleCredential(c *gin.Context) {
	vehicle, ok := h.vehicleForRequest(c)
	if !ok {
		return
	}

	var req dto.SubmitCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	cred, err := h.credentials.Submit(c.Request.Context(), models.TableVehicleCredentials, vehicle.CompanyID, vehicle.ID, c.Param("typeId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, cred, nil)
}
