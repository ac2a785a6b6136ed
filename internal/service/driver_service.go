package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type driverStore interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	GetByUserID(ctx context.Context, userID string) (*models.Driver, error)
	List(ctx context.Context, filter models.DriverFilter) ([]models.DriverWithUser, int, error)
	UpdateProfile(ctx context.Context, d *models.Driver) error
	ReplaceAvailability(ctx context.Context, driverID, companyID string, windows []models.DriverAvailability) error
	UpsertPaymentInfo(ctx context.Context, info *models.DriverPaymentInfo) error
}

type driverUserStore interface {
	UpdateAvatar(ctx context.Context, id string, avatarURL *string) error
}

type driverVehicleStore interface {
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	ListForDriver(ctx context.Context, driverID string) ([]models.Vehicle, error)
	Create(ctx context.Context, v *models.Vehicle) error
	Update(ctx context.Context, v *models.Vehicle) error
}

type driverFlagResolver interface {
	Enabled(ctx context.Context, companyID, key string) (bool, error)
}

// DriverService handles driver-side profile maintenance: identity fields,
// availability windows, payout details, and owned vehicles. Activation lives
// on OnboardingService.
type DriverService struct {
	drivers  driverStore
	users    driverUserStore
	vehicles driverVehicleStore
	flags    driverFlagResolver
	logger   *zap.Logger
}

// NewDriverService constructs a DriverService.
func NewDriverService(drivers driverStore, users driverUserStore, vehicles driverVehicleStore, flags driverFlagResolver, logger *zap.Logger) *DriverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriverService{drivers: drivers, users: users, vehicles: vehicles, flags: flags, logger: logger}
}

// Get fetches one driver profile. A non-empty companyID confines the lookup
// to that tenant; rows outside it are reported as not found.
func (s *DriverService) Get(ctx context.Context, companyID, driverID string) (*models.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if companyID != "" && driver.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
	}
	return driver, nil
}

// GetByUserID fetches the profile behind a login identity.
func (s *DriverService) GetByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	driver, err := s.drivers.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver profile not found for user")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	return driver, nil
}

// List returns a company's drivers with identity fields.
func (s *DriverService) List(ctx context.Context, filter models.DriverFilter) ([]models.DriverWithUser, *models.Pagination, error) {
	drivers, total, err := s.drivers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list drivers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return drivers, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// UpdateProfile applies partial edits. Fields left nil in the request keep
// their current values, except that explicit empty strings clear them.
func (s *DriverService) UpdateProfile(ctx context.Context, driverID string, req dto.UpdateDriverProfileRequest) (*models.Driver, error) {
	driver, err := s.Get(ctx, "", driverID)
	if err != nil {
		return nil, err
	}

	applyProfileEdits(driver, req)

	if err := s.drivers.UpdateProfile(ctx, driver); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if req.AvatarURL != nil {
		if err := s.users.UpdateAvatar(ctx, driver.UserID, req.AvatarURL); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update avatar")
		}
	}

	s.logger.Info("driver profile updated", zap.String("driverId", driverID))
	return driver, nil
}

// SetAvailability replaces the driver's weekly windows.
func (s *DriverService) SetAvailability(ctx context.Context, driverID string, req dto.SetAvailabilityRequest) error {
	driver, err := s.Get(ctx, "", driverID)
	if err != nil {
		return err
	}

	windows := make([]models.DriverAvailability, 0, len(req.Windows))
	for _, w := range req.Windows {
		if err := validateWindow(w); err != nil {
			return err
		}
		windows = append(windows, models.DriverAvailability{
			DriverID:  driverID,
			CompanyID: driver.CompanyID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
		})
	}

	if err := s.drivers.ReplaceAvailability(ctx, driverID, driver.CompanyID, windows); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save availability")
	}
	return nil
}

// SetPaymentInfo stores masked payout details. Only available to companies
// with driver payments enabled.
func (s *DriverService) SetPaymentInfo(ctx context.Context, driverID string, req dto.SetPaymentInfoRequest) error {
	driver, err := s.Get(ctx, "", driverID)
	if err != nil {
		return err
	}

	enabled, err := s.flags.Enabled(ctx, driver.CompanyID, models.FlagDriverPayments)
	if err != nil {
		return err
	}
	if !enabled {
		return appErrors.Clone(appErrors.ErrForbidden, "driver payments are not enabled for this company")
	}

	if err := validateLast4(req.RoutingLast4); err != nil {
		return err
	}
	if err := validateLast4(req.AccountLast4); err != nil {
		return err
	}

	info := &models.DriverPaymentInfo{
		DriverID:      driverID,
		CompanyID:     driver.CompanyID,
		PaymentMethod: req.PaymentMethod,
		BankName:      req.BankName,
		AccountType:   req.AccountType,
		RoutingLast4:  req.RoutingLast4,
		AccountLast4:  req.AccountLast4,
	}
	if err := s.drivers.UpsertPaymentInfo(ctx, info); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save payment info")
	}
	return nil
}

// GetVehicle looks up a single vehicle.
func (s *DriverService) GetVehicle(ctx context.Context, vehicleID string) (*models.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	return vehicle, nil
}

// ListVehicles returns the vehicles a driver owns or is assigned to.
func (s *DriverService) ListVehicles(ctx context.Context, driverID string) ([]models.Vehicle, error) {
	vehicles, err := s.vehicles.ListForDriver(ctx, driverID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list vehicles")
	}
	return vehicles, nil
}

// AddVehicle registers a vehicle owned by a 1099 driver.
func (s *DriverService) AddVehicle(ctx context.Context, driverID string, req dto.UpsertVehicleRequest) (*models.Vehicle, error) {
	driver, err := s.Get(ctx, "", driverID)
	if err != nil {
		return nil, err
	}
	if driver.EmploymentType != models.Employment1099 {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only contractor drivers register their own vehicles")
	}

	vehicleType := req.VehicleType
	if vehicleType == "" {
		vehicleType = models.VehicleStandard
	}
	v := &models.Vehicle{
		CompanyID:              driver.CompanyID,
		OwnerDriverID:          &driverID,
		VehicleType:            vehicleType,
		Make:                   req.Make,
		Model:                  req.Model,
		Year:                   req.Year,
		Color:                  req.Color,
		LicensePlate:           req.LicensePlate,
		LicenseState:           req.LicenseState,
		VIN:                    req.VIN,
		ExteriorPhotoURL:       req.ExteriorPhotoURL,
		WheelchairLiftPhotoURL: req.WheelchairLiftPhotoURL,
		Active:                 true,
	}
	if err := s.vehicles.Create(ctx, v); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register vehicle")
	}
	s.logger.Info("vehicle registered", zap.String("driverId", driverID), zap.String("vehicleId", v.ID))
	return v, nil
}

// UpdateVehicle edits a vehicle the driver owns.
func (s *DriverService) UpdateVehicle(ctx context.Context, driverID, vehicleID string, req dto.UpsertVehicleRequest) (*models.Vehicle, error) {
	v, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load vehicle")
	}
	if v.OwnerDriverID == nil || *v.OwnerDriverID != driverID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "vehicle belongs to another owner")
	}

	if req.VehicleType != "" {
		v.VehicleType = req.VehicleType
	}
	applyVehicleEdits(v, req)

	if err := s.vehicles.Update(ctx, v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vehicle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update vehicle")
	}
	return v, nil
}

func applyProfileEdits(d *models.Driver, req dto.UpdateDriverProfileRequest) {
	if req.DateOfBirth != nil {
		d.DateOfBirth = req.DateOfBirth
	}
	if req.AddressLine1 != nil {
		d.AddressLine1 = req.AddressLine1
	}
	if req.City != nil {
		d.City = req.City
	}
	if req.State != nil {
		d.State = req.State
	}
	if req.Zip != nil {
		d.Zip = req.Zip
	}
	if req.LicenseNumber != nil {
		d.LicenseNumber = req.LicenseNumber
	}
	if req.LicenseState != nil {
		d.LicenseState = req.LicenseState
	}
	if req.LicenseExpiration != nil {
		d.LicenseExpiration = req.LicenseExpiration
	}
	if req.EmergencyContactName != nil {
		d.EmergencyContactName = req.EmergencyContactName
	}
	if req.EmergencyContactPhone != nil {
		d.EmergencyContactPhone = req.EmergencyContactPhone
	}
}

func applyVehicleEdits(v *models.Vehicle, req dto.UpsertVehicleRequest) {
	if req.Make != nil {
		v.Make = req.Make
	}
	if req.Model != nil {
		v.Model = req.Model
	}
	if req.Year != nil {
		v.Year = req.Year
	}
	if req.Color != nil {
		v.Color = req.Color
	}
	if req.LicensePlate != nil {
		v.LicensePlate = req.LicensePlate
	}
	if req.LicenseState != nil {
		v.LicenseState = req.LicenseState
	}
	if req.VIN != nil {
		v.VIN = req.VIN
	}
	if req.ExteriorPhotoURL != nil {
		v.ExteriorPhotoURL = req.ExteriorPhotoURL
	}
	if req.WheelchairLiftPhotoURL != nil {
		v.WheelchairLiftPhotoURL = req.WheelchairLiftPhotoURL
	}
}

func validateWindow(w dto.AvailabilityWindow) error {
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("day_of_week %d out of range", w.DayOfWeek))
	}
	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid start_time %q", w.StartTime))
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid end_time %q", w.EndTime))
	}
	if !end.After(start) {
		return appErrors.Clone(appErrors.ErrValidation, "availability window ends before it starts")
	}
	return nil
}

func validateLast4(s *string) error {
	if s == nil {
		return nil
	}
	if len(*s) != 4 {
		return appErrors.Clone(appErrors.ErrValidation, "account digits must be exactly the last four")
	}
	for _, r := range *s {
		if r < '0' || r > '9' {
			return appErrors.Clone(appErrors.ErrValidation, "account digits must be numeric")
		}
	}
	return nil
}
