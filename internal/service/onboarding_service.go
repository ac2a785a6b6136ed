package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type onboardingDriverStore interface {
	GetByID(ctx context.Context, id string) (*models.Driver, error)
	SetStatus(ctx context.Context, id string, status models.DriverStatus, reason *string) error
	MarkOnboardingComplete(ctx context.Context, id string) error
}

type onboardingUserReader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type onboardingVehicleReader interface {
	ListForDriver(ctx context.Context, driverID string) ([]models.Vehicle, error)
}

type onboardingChecklister interface {
	Checklist(ctx context.Context, table models.CredentialTable, companyID, subjectID string, employment models.DriverEmploymentType, subjectCreatedAt *time.Time) (*dto.CredentialChecklistResponse, error)
}

type onboardingFlagResolver interface {
	Enabled(ctx context.Context, companyID, key string) (bool, error)
}

type onboardingAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// OnboardingService computes the onboarding checklist for a driver and
// gates activation on it.
type OnboardingService struct {
	drivers    onboardingDriverStore
	users      onboardingUserReader
	vehicles   onboardingVehicleReader
	checklists onboardingChecklister
	flags      onboardingFlagResolver
	audit      onboardingAuditLogger
	logger     *zap.Logger
}

// NewOnboardingService constructs an OnboardingService.
func NewOnboardingService(drivers onboardingDriverStore, users onboardingUserReader, vehicles onboardingVehicleReader, checklists onboardingChecklister, flags onboardingFlagResolver, audit onboardingAuditLogger, logger *zap.Logger) *OnboardingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OnboardingService{
		drivers:    drivers,
		users:      users,
		vehicles:   vehicles,
		checklists: checklists,
		flags:      flags,
		audit:      audit,
		logger:     logger,
	}
}

// ComputeStatus derives the full onboarding picture for one driver. Nothing
// is stored; the checklist is always computed from current data. A non-empty
// companyID confines the lookup to that tenant.
func (s *OnboardingService) ComputeStatus(ctx context.Context, companyID, driverID string) (*models.OnboardingStatus, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver")
	}
	if companyID != "" && driver.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
	}
	user, err := s.users.FindByID(ctx, driver.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver identity")
	}

	items := []models.OnboardingItemStatus{
		profileItem(driver),
		photoItem(user),
	}

	credItem, err := s.globalCredentialsItem(ctx, driver)
	if err != nil {
		return nil, err
	}
	items = append(items, *credItem)

	if driver.EmploymentType == models.Employment1099 {
		vehicleItems, err := s.vehicleItems(ctx, driver)
		if err != nil {
			return nil, err
		}
		items = append(items, vehicleItems...)
	}

	items = append(items, models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemAvailabilitySet,
			Label:    "Set weekly availability",
			Required: true,
		},
		Completed: driver.HasAvailability,
	})

	paymentsEnabled, err := s.flags.Enabled(ctx, driver.CompanyID, models.FlagDriverPayments)
	if err != nil {
		s.logger.Warn("failed to resolve driver_payments flag", zap.String("companyId", driver.CompanyID), zap.Error(err))
		paymentsEnabled = false
	}
	if paymentsEnabled {
		items = append(items, models.OnboardingItemStatus{
			OnboardingItem: models.OnboardingItem{
				Key:      models.ItemPaymentInfo,
				Label:    "Add payment information",
				Required: true,
			},
			Completed: driver.HasPaymentInfo,
		})
	}

	status := &models.OnboardingStatus{DriverID: driverID, Items: items}
	totalRequired := 0
	completedRequired := 0
	for _, item := range items {
		if !item.Required {
			continue
		}
		totalRequired++
		if item.Completed {
			completedRequired++
		} else {
			status.Blockers = append(status.Blockers, item.Label)
		}
	}
	if totalRequired == 0 {
		status.Progress = 100
	} else {
		status.Progress = int(math.Round(100 * float64(completedRequired) / float64(totalRequired)))
	}
	status.Complete = completedRequired == totalRequired
	status.CanActivate = status.Complete
	return status, nil
}

// SetStatus toggles a driver's activation. Activation is refused while the
// onboarding checklist has open blockers; deactivation is always allowed.
func (s *OnboardingService) SetStatus(ctx context.Context, companyID, driverID, adminID string, req dto.SetDriverStatusRequest) (*models.OnboardingStatus, error) {
	if req.Status != models.DriverActive && req.Status != models.DriverInactive {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown driver status")
	}

	status, err := s.ComputeStatus(ctx, companyID, driverID)
	if err != nil {
		return nil, err
	}
	if req.Status == models.DriverActive && !status.CanActivate {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrActivationBlocked, "driver has incomplete onboarding items"), status.Blockers)
	}

	if err := s.drivers.SetStatus(ctx, driverID, req.Status, req.Reason); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "driver not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update driver status")
	}
	if req.Status == models.DriverActive {
		if err := s.drivers.MarkOnboardingComplete(ctx, driverID); err != nil {
			s.logger.Warn("failed to stamp onboarding completion", zap.String("driverId", driverID), zap.Error(err))
		}
	}

	action := models.AuditActionDriverActivate
	if req.Status == models.DriverInactive {
		action = models.AuditActionDriverDeactivate
	}
	s.emitAudit(ctx, adminID, action, driverID)
	return status, nil
}

func (s *OnboardingService) globalCredentialsItem(ctx context.Context, driver *models.Driver) (*models.OnboardingItemStatus, error) {
	checklist, err := s.checklists.Checklist(ctx, models.TableDriverCredentials, driver.CompanyID, driver.ID, driver.EmploymentType, &driver.CreatedAt)
	if err != nil {
		return nil, err
	}
	item := &models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemGlobalCredentials,
			Label:    "Complete required credentials",
			Required: true,
		},
		Completed: checklist.Satisfied >= checklist.Required,
	}
	for _, view := range checklist.Items {
		if view.Type.Requirement == models.RequirementRequired && !satisfied(view.DisplayStatus) {
			item.Missing = append(item.Missing, view.Type.Name)
		}
	}
	return item, nil
}

// vehicleItems covers the two 1099 requirements: at least one vehicle on
// file, and at least one eligible vehicle whose record and required
// credentials are all satisfied.
func (s *OnboardingService) vehicleItems(ctx context.Context, driver *models.Driver) ([]models.OnboardingItemStatus, error) {
	vehicles, err := s.vehicles.ListForDriver(ctx, driver.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load driver vehicles")
	}

	added := models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemVehicleAdded,
			Label:    "Add a vehicle",
			Required: true,
		},
		Completed: len(vehicles) > 0,
	}

	complete := models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemVehicleComplete,
			Label:    "Complete a vehicle",
			Required: true,
		},
	}
	for i := range vehicles {
		v := &vehicles[i]
		if !v.ProfileComplete() {
			complete.Missing = append(complete.Missing, fmt.Sprintf("vehicle %s has missing details", v.ID))
			continue
		}
		checklist, err := s.checklists.Checklist(ctx, models.TableVehicleCredentials, driver.CompanyID, v.ID, driver.EmploymentType, &v.CreatedAt)
		if err != nil {
			return nil, err
		}
		if checklist.Satisfied >= checklist.Required {
			complete.Completed = true
			complete.Missing = nil
			break
		}
		complete.Missing = append(complete.Missing, fmt.Sprintf("vehicle %s has unmet credentials", v.ID))
	}
	return []models.OnboardingItemStatus{added, complete}, nil
}

func (s *OnboardingService) emitAudit(ctx context.Context, adminID, action, driverID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{UserID: &adminID, Action: action, Resource: "drivers", ResourceID: &driverID}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record driver status audit log", zap.Error(err))
	}
}

func profileItem(driver *models.Driver) models.OnboardingItemStatus {
	item := models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemProfileComplete,
			Label:    "Complete your profile",
			Required: true,
		},
		Completed: driver.ProfileComplete(),
	}
	if !item.Completed {
		item.Missing = missingProfileFields(driver)
	}
	return item
}

func photoItem(user *models.User) models.OnboardingItemStatus {
	return models.OnboardingItemStatus{
		OnboardingItem: models.OnboardingItem{
			Key:      models.ItemProfilePhoto,
			Label:    "Upload a profile photo",
			Required: true,
		},
		Completed: user.AvatarURL != nil && *user.AvatarURL != "",
	}
}

func missingProfileFields(d *models.Driver) []string {
	var missing []string
	check := func(ok bool, name string) {
		if !ok {
			missing = append(missing, name)
		}
	}
	check(d.DateOfBirth != nil, "date of birth")
	check(strSet(d.AddressLine1) && strSet(d.City) && strSet(d.State) && strSet(d.Zip), "address")
	check(strSet(d.LicenseNumber) && strSet(d.LicenseState) && d.LicenseExpiration != nil, "driver license")
	check(strSet(d.EmergencyContactName) && strSet(d.EmergencyContactPhone), "emergency contact")
	return missing
}

func strSet(s *string) bool {
	return s != nil && *s != ""
}
