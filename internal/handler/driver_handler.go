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

// DriverHandler serves driver self-service endpoints and admin listings.
type DriverHandler struct {
	drivers *service.DriverService
}

// NewDriverHandler creates a new handler.
func NewDriverHandler(drivers *service.DriverService) *DriverHandler {
	return &DriverHandler{drivers: drivers}
}

func (h *DriverHandler) currentDriver(c *gin.Context) (*models.Driver, bool) {
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

// MyProfile godoc
// @Summary Get my driver profile
// @Tags Drivers
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /driver/profile [get]
func (h *DriverHandler) MyProfile(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	response.JSON(c, http.StatusOK, driver, nil)
}

// UpdateMyProfile godoc
// @Summary Update my driver profile
// @Description Apply partial edits to the current driver's profile
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body dto.UpdateDriverProfileRequest true "Profile edits"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /driver/profile [patch]
func (h *DriverHandler) UpdateMyProfile(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.UpdateDriverProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	updated, err := h.drivers.UpdateProfile(c.Request.Context(), driver.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, updated, nil)
}

// SetAvailability godoc
// @Summary Replace my availability windows
// @Description Replaces the current driver's weekly availability in one call
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body dto.SetAvailabilityRequest true "Availability windows"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /driver/availability [put]
func (h *DriverHandler) SetAvailability(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.SetAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}

	if err := h.drivers.SetAvailability(c.Request.Context(), driver.ID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetPaymentInfo godoc
// @Summary Store my payout details
// @Description Stores masked payout details. Available only when driver payments are enabled for the company.
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body dto.SetPaymentInfoRequest true "Payment info"
// @Success 204 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /driver/payment-info [put]
func (h *DriverHandler) SetPaymentInfo(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.SetPaymentInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}

	if err := h.drivers.SetPaymentInfo(c.Request.Context(), driver.ID, req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// MyVehicles godoc
// @Summary List my vehicles
// @Tags Drivers
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /driver/vehicles [get]
func (h *DriverHandler) MyVehicles(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	vehicles, err := h.drivers.ListVehicles(c.Request.Context(), driver.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, vehicles, nil)
}

// AddVehicle godoc
// @Summary Register a vehicle
// @Description Contractor drivers register vehicles they own
// @Tags Drivers
// @Accept json
// @Produce json
// @Param payload body dto.UpsertVehicleRequest true "Vehicle payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /driver/vehicles [post]
func (h *DriverHandler) AddVehicle(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.UpsertVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.drivers.AddVehicle(c.Request.Context(), driver.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, vehicle)
}

// UpdateVehicle godoc
// @Summary Update one of my vehicles
// @Tags Drivers
// @Accept json
// @Produce json
// @Param id path string true "Vehicle ID"
// @Param payload body dto.UpsertVehicleRequest true "Vehicle edits"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /driver/vehicles/{id} [patch]
func (h *DriverHandler) UpdateVehicle(c *gin.Context) {
	driver, ok := h.currentDriver(c)
	if !ok {
		return
	}

	var req dto.UpsertVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid vehicle payload"))
		return
	}

	vehicle, err := h.drivers.UpdateVehicle(c.Request.Context(), driver.ID, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, vehicle, nil)
}

// List godoc
// @Summary List drivers
// @Description Returns the company's drivers with login identity fields
// @Tags Drivers
// @Produce json
// @Param status query string false "Driver status filter"
// @Param employment_type query string false "w2 or 1099"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/drivers [get]
func (h *DriverHandler) List(c *gin.Context) {
	companyID, ok := reviewScope(c)
	if !ok {
		return
	}

	filter := models.DriverFilter{
		CompanyID:      companyID,
		Status:         models.DriverStatus(c.Query("status")),
		EmploymentType: models.DriverEmploymentType(c.Query("employment_type")),
		Search:         c.Query("search"),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	drivers, pagination, err := h.drivers.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, drivers, pagination)
}

// Get godoc
// @Summary Get a driver
// @Tags Drivers
// @Produce json
// @Param id path string true "Driver ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/drivers/{id} [get]
func (h *DriverHandler) Get(c *gin.Context) {
	companyID, _, ok := adminScope(c)
	if !ok {
		return
	}

	driver, err := h.drivers.Get(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, driver, nil)
}
