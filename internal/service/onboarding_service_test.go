package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockOnboardingDrivers struct {
	driver          *models.Driver
	setStatus       models.DriverStatus
	setStatusCalls  int
	onboardingCalls int
}

func (m *mockOnboardingDrivers) GetByID(_ context.Context, _ string) (*models.Driver, error) {
	if m.driver == nil {
		return nil, sql.ErrNoRows
	}
	return m.driver, nil
}

func (m *mockOnboardingDrivers) SetStatus(_ context.Context, _ string, status models.DriverStatus, _ *string) error {
	m.setStatusCalls++
	m.setStatus = status
	return nil
}

func (m *mockOnboardingDrivers) MarkOnboardingComplete(_ context.Context, _ string) error {
	m.onboardingCalls++
	return nil
}

type mockUserReader struct {
	user *models.User
}

func (m *mockUserReader) FindByID(_ context.Context, _ string) (*models.User, error) {
	if m.user == nil {
		return nil, sql.ErrNoRows
	}
	return m.user, nil
}

type mockVehicleReader struct {
	vehicles []models.Vehicle
}

func (m *mockVehicleReader) ListForDriver(_ context.Context, _ string) ([]models.Vehicle, error) {
	return m.vehicles, nil
}

type mockChecklister struct {
	bySubject map[string]*dto.CredentialChecklistResponse
}

func (m *mockChecklister) Checklist(_ context.Context, _ models.CredentialTable, _, subjectID string, _ models.DriverEmploymentType, _ *time.Time) (*dto.CredentialChecklistResponse, error) {
	if resp, ok := m.bySubject[subjectID]; ok {
		return resp, nil
	}
	return &dto.CredentialChecklistResponse{SubjectID: subjectID}, nil
}

type mockFlagResolver struct {
	flags map[string]bool
}

func (m *mockFlagResolver) Enabled(_ context.Context, _, key string) (bool, error) {
	return m.flags[key], nil
}

func str(s string) *string { return &s }

func completeDriver() *models.Driver {
	dob := time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)
	exp := time.Date(2028, 3, 14, 0, 0, 0, 0, time.UTC)
	return &models.Driver{
		ID:                    "driver-1",
		UserID:                "user-1",
		CompanyID:             "company-1",
		EmploymentType:        models.EmploymentW2,
		Status:                models.DriverInactive,
		DateOfBirth:           &dob,
		AddressLine1:          str("1 Fleet Way"),
		City:                  str("Columbus"),
		State:                 str("OH"),
		Zip:                   str("43004"),
		LicenseNumber:         str("DL-555"),
		LicenseState:          str("OH"),
		LicenseExpiration:     &exp,
		EmergencyContactName:  str("Pat Contact"),
		EmergencyContactPhone: str("614-555-0100"),
		HasAvailability:       true,
		CreatedAt:             time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
	}
}

func newOnboardingFixture() (*OnboardingService, *mockOnboardingDrivers, *mockChecklister, *mockFlagResolver, *mockVehicleReader, *mockAuditLogger) {
	drivers := &mockOnboardingDrivers{driver: completeDriver()}
	users := &mockUserReader{user: &models.User{ID: "user-1", AvatarURL: str("https://cdn.example.com/avatar.jpg")}}
	vehicles := &mockVehicleReader{}
	checklists := &mockChecklister{bySubject: map[string]*dto.CredentialChecklistResponse{
		"driver-1": {SubjectID: "driver-1", Required: 2, Satisfied: 2},
	}}
	flags := &mockFlagResolver{flags: map[string]bool{}}
	audit := &mockAuditLogger{}
	svc := NewOnboardingService(drivers, users, vehicles, checklists, flags, audit, zap.NewNop())
	return svc, drivers, checklists, flags, vehicles, audit
}

func TestOnboardingCompleteW2Driver(t *testing.T) {
	svc, _, _, _, _, _ := newOnboardingFixture()

	status, err := svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)

	assert.True(t, status.Complete)
	assert.True(t, status.CanActivate)
	assert.Equal(t, 100, status.Progress)
	assert.Empty(t, status.Blockers)
	// W2 drivers have no vehicle items and payments are off by default.
	keys := make([]string, 0, len(status.Items))
	for _, item := range status.Items {
		keys = append(keys, item.Key)
	}
	assert.Equal(t, []string{
		models.ItemProfileComplete,
		models.ItemProfilePhoto,
		models.ItemGlobalCredentials,
		models.ItemAvailabilitySet,
	}, keys)
}

func TestOnboardingBlocksOnUnmetCredentials(t *testing.T) {
	svc, _, checklists, _, _, _ := newOnboardingFixture()
	checklists.bySubject["driver-1"] = &dto.CredentialChecklistResponse{
		SubjectID: "driver-1",
		Required:  2,
		Satisfied: 1,
		Items: []models.CredentialView{{
			Type:          models.CredentialType{Name: "Background Check", Requirement: models.RequirementRequired},
			DisplayStatus: models.DisplayPendingReview,
		}},
	}

	status, err := svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)

	assert.False(t, status.CanActivate)
	assert.Contains(t, status.Blockers, "Complete required credentials")
	for _, item := range status.Items {
		if item.Key == models.ItemGlobalCredentials {
			assert.Contains(t, item.Missing, "Background Check")
		}
	}
}

func TestOnboarding1099RequiresEligibleVehicle(t *testing.T) {
	svc, drivers, checklists, _, vehicles, _ := newOnboardingFixture()
	drivers.driver.EmploymentType = models.Employment1099

	// No vehicles at all: both vehicle items block.
	status, err := svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)
	assert.Contains(t, status.Blockers, "Add a vehicle")
	assert.Contains(t, status.Blockers, "Complete a vehicle")

	// A fully filled-in vehicle with satisfied credentials clears both.
	year := 2021
	vehicles.vehicles = []models.Vehicle{{
		ID:               "vehicle-1",
		CompanyID:        "company-1",
		VehicleType:      models.VehicleStandard,
		Make:             str("Toyota"),
		Model:            str("Sienna"),
		Year:             &year,
		LicensePlate:     str("FLT-100"),
		LicenseState:     str("OH"),
		VIN:              str("1HGBH41JXMN109186"),
		ExteriorPhotoURL: str("https://cdn.example.com/sienna.jpg"),
	}}
	checklists.bySubject["vehicle-1"] = &dto.CredentialChecklistResponse{SubjectID: "vehicle-1", Required: 1, Satisfied: 1}

	status, err = svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)
	assert.True(t, status.CanActivate)
}

func TestOnboardingWheelchairVehicleNeedsLiftPhoto(t *testing.T) {
	svc, drivers, checklists, _, vehicles, _ := newOnboardingFixture()
	drivers.driver.EmploymentType = models.Employment1099

	year := 2022
	v := models.Vehicle{
		ID:               "vehicle-1",
		VehicleType:      models.VehicleWheelchairAccessible,
		Make:             str("Ford"),
		Model:            str("Transit"),
		Year:             &year,
		LicensePlate:     str("FLT-200"),
		LicenseState:     str("OH"),
		VIN:              str("1FTBW2CM1HKA00001"),
		ExteriorPhotoURL: str("https://cdn.example.com/transit.jpg"),
	}
	vehicles.vehicles = []models.Vehicle{v}
	checklists.bySubject["vehicle-1"] = &dto.CredentialChecklistResponse{SubjectID: "vehicle-1", Required: 0, Satisfied: 0}

	status, err := svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)
	assert.Contains(t, status.Blockers, "Complete a vehicle")

	vehicles.vehicles[0].WheelchairLiftPhotoURL = str("https://cdn.example.com/lift.jpg")
	status, err = svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)
	assert.True(t, status.CanActivate)
}

func TestOnboardingPaymentItemOnlyWhenFlagEnabled(t *testing.T) {
	svc, _, _, flags, _, _ := newOnboardingFixture()
	flags.flags[models.FlagDriverPayments] = true

	status, err := svc.ComputeStatus(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)

	assert.False(t, status.CanActivate)
	assert.Contains(t, status.Blockers, "Add payment information")
}

func TestOnboardingActivationRefusedWithBlockers(t *testing.T) {
	svc, drivers, checklists, _, _, _ := newOnboardingFixture()
	checklists.bySubject["driver-1"] = &dto.CredentialChecklistResponse{SubjectID: "driver-1", Required: 1, Satisfied: 0}

	_, err := svc.SetStatus(context.Background(), "company-1", "driver-1", "admin-1", dto.SetDriverStatusRequest{Status: models.DriverActive})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrActivationBlocked.Code, appErr.Code)
	assert.NotEmpty(t, appErr.Details)
	assert.Equal(t, 0, drivers.setStatusCalls)
}

func TestOnboardingActivationStampsCompletion(t *testing.T) {
	svc, drivers, _, _, _, audit := newOnboardingFixture()

	_, err := svc.SetStatus(context.Background(), "company-1", "driver-1", "admin-1", dto.SetDriverStatusRequest{Status: models.DriverActive})
	require.NoError(t, err)

	assert.Equal(t, models.DriverActive, drivers.setStatus)
	assert.Equal(t, 1, drivers.onboardingCalls)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDriverActivate, audit.logs[0].Action)
}

func TestOnboardingDeactivationAlwaysAllowed(t *testing.T) {
	svc, drivers, checklists, _, _, audit := newOnboardingFixture()
	checklists.bySubject["driver-1"] = &dto.CredentialChecklistResponse{SubjectID: "driver-1", Required: 1, Satisfied: 0}

	reason := "insurance lapsed"
	_, err := svc.SetStatus(context.Background(), "company-1", "driver-1", "admin-1", dto.SetDriverStatusRequest{Status: models.DriverInactive, Reason: &reason})
	require.NoError(t, err)

	assert.Equal(t, models.DriverInactive, drivers.setStatus)
	assert.Equal(t, 0, drivers.onboardingCalls)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDriverDeactivate, audit.logs[0].Action)
}

func TestOnboardingScopedToCompany(t *testing.T) {
	svc, drivers, _, _, _, _ := newOnboardingFixture()

	_, err := svc.ComputeStatus(context.Background(), "company-2", "driver-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.SetStatus(context.Background(), "company-2", "driver-1", "admin-2", dto.SetDriverStatusRequest{Status: models.DriverInactive})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 0, drivers.setStatusCalls)

	// Superadmins pass an empty scope and see every tenant.
	_, err = svc.ComputeStatus(context.Background(), "", "driver-1")
	require.NoError(t, err)
}
