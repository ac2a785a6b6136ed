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

type mockDriverStore struct {
	driver      *models.Driver
	updated     *models.Driver
	windows     []models.DriverAvailability
	paymentInfo *models.DriverPaymentInfo
}

func (m *mockDriverStore) GetByID(_ context.Context, _ string) (*models.Driver, error) {
	if m.driver == nil {
		return nil, sql.ErrNoRows
	}
	return m.driver, nil
}

func (m *mockDriverStore) GetByUserID(_ context.Context, _ string) (*models.Driver, error) {
	if m.driver == nil {
		return nil, sql.ErrNoRows
	}
	return m.driver, nil
}

func (m *mockDriverStore) List(_ context.Context, _ models.DriverFilter) ([]models.DriverWithUser, int, error) {
	return nil, 0, nil
}

func (m *mockDriverStore) UpdateProfile(_ context.Context, d *models.Driver) error {
	m.updated = d
	return nil
}

func (m *mockDriverStore) ReplaceAvailability(_ context.Context, _, _ string, windows []models.DriverAvailability) error {
	m.windows = windows
	return nil
}

func (m *mockDriverStore) UpsertPaymentInfo(_ context.Context, info *models.DriverPaymentInfo) error {
	m.paymentInfo = info
	return nil
}

type mockDriverUsers struct {
	avatarURL *string
}

func (m *mockDriverUsers) UpdateAvatar(_ context.Context, _ string, avatarURL *string) error {
	m.avatarURL = avatarURL
	return nil
}

type mockDriverVehicles struct {
	vehicles map[string]*models.Vehicle
	created  *models.Vehicle
	updated  *models.Vehicle
}

func (m *mockDriverVehicles) GetByID(_ context.Context, id string) (*models.Vehicle, error) {
	v, ok := m.vehicles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return v, nil
}

func (m *mockDriverVehicles) ListForDriver(_ context.Context, _ string) ([]models.Vehicle, error) {
	out := make([]models.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockDriverVehicles) Create(_ context.Context, v *models.Vehicle) error {
	m.created = v
	return nil
}

func (m *mockDriverVehicles) Update(_ context.Context, v *models.Vehicle) error {
	m.updated = v
	return nil
}

func newDriverFixture() (*DriverService, *mockDriverStore, *mockDriverUsers, *mockDriverVehicles, *mockFlagResolver) {
	drivers := &mockDriverStore{driver: &models.Driver{
		ID:             "driver-1",
		UserID:         "user-1",
		CompanyID:      "company-1",
		EmploymentType: models.Employment1099,
	}}
	users := &mockDriverUsers{}
	vehicles := &mockDriverVehicles{vehicles: map[string]*models.Vehicle{}}
	flags := &mockFlagResolver{flags: map[string]bool{}}
	svc := NewDriverService(drivers, users, vehicles, flags, zap.NewNop())
	return svc, drivers, users, vehicles, flags
}

func TestDriverGetScopedToCompany(t *testing.T) {
	svc, _, _, _, _ := newDriverFixture()

	driver, err := svc.Get(context.Background(), "company-1", "driver-1")
	require.NoError(t, err)
	assert.Equal(t, "driver-1", driver.ID)

	_, err = svc.Get(context.Background(), "company-2", "driver-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDriverUpdateProfilePartialEdit(t *testing.T) {
	svc, drivers, users, _, _ := newDriverFixture()
	drivers.driver.City = str("Columbus")

	dob := time.Date(1988, 7, 2, 0, 0, 0, 0, time.UTC)
	avatar := "https://cdn.example.com/avatar.jpg"
	updated, err := svc.UpdateProfile(context.Background(), "driver-1", dto.UpdateDriverProfileRequest{
		DateOfBirth: &dob,
		AvatarURL:   &avatar,
	})
	require.NoError(t, err)

	assert.Equal(t, &dob, updated.DateOfBirth)
	// Untouched fields survive a partial edit.
	assert.Equal(t, "Columbus", *updated.City)
	require.NotNil(t, users.avatarURL)
	assert.Equal(t, avatar, *users.avatarURL)
}

func TestDriverSetAvailabilityValidatesWindows(t *testing.T) {
	svc, _, _, _, _ := newDriverFixture()

	cases := []struct {
		name   string
		window dto.AvailabilityWindow
	}{
		{"day out of range", dto.AvailabilityWindow{DayOfWeek: 7, StartTime: "09:00", EndTime: "17:00"}},
		{"bad start time", dto.AvailabilityWindow{DayOfWeek: 1, StartTime: "9am", EndTime: "17:00"}},
		{"inverted window", dto.AvailabilityWindow{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SetAvailability(context.Background(), "driver-1", dto.SetAvailabilityRequest{Windows: []dto.AvailabilityWindow{tc.window}})
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestDriverSetAvailabilityReplacesWindows(t *testing.T) {
	svc, drivers, _, _, _ := newDriverFixture()

	err := svc.SetAvailability(context.Background(), "driver-1", dto.SetAvailabilityRequest{Windows: []dto.AvailabilityWindow{
		{DayOfWeek: 1, StartTime: "08:00", EndTime: "16:00"},
		{DayOfWeek: 3, StartTime: "10:00", EndTime: "14:30"},
	}})
	require.NoError(t, err)

	require.Len(t, drivers.windows, 2)
	assert.Equal(t, "company-1", drivers.windows[0].CompanyID)
	assert.Equal(t, 3, drivers.windows[1].DayOfWeek)
}

func TestDriverPaymentInfoGatedByFlag(t *testing.T) {
	svc, drivers, _, _, flags := newDriverFixture()

	req := dto.SetPaymentInfoRequest{PaymentMethod: "direct_deposit", AccountLast4: str("1234")}
	err := svc.SetPaymentInfo(context.Background(), "driver-1", req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	flags.flags[models.FlagDriverPayments] = true
	err = svc.SetPaymentInfo(context.Background(), "driver-1", req)
	require.NoError(t, err)
	require.NotNil(t, drivers.paymentInfo)
	assert.Equal(t, "direct_deposit", drivers.paymentInfo.PaymentMethod)
}

func TestDriverPaymentInfoRejectsFullAccountNumbers(t *testing.T) {
	svc, _, _, _, flags := newDriverFixture()
	flags.flags[models.FlagDriverPayments] = true

	err := svc.SetPaymentInfo(context.Background(), "driver-1", dto.SetPaymentInfoRequest{
		PaymentMethod: "direct_deposit",
		AccountLast4:  str("123456789"),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDriverAddVehicleOnlyFor1099(t *testing.T) {
	svc, drivers, _, vehicles, _ := newDriverFixture()

	v, err := svc.AddVehicle(context.Background(), "driver-1", dto.UpsertVehicleRequest{Make: str("Toyota")})
	require.NoError(t, err)
	assert.Equal(t, "driver-1", *v.OwnerDriverID)
	assert.Equal(t, models.VehicleStandard, v.VehicleType)
	assert.True(t, v.Active)
	assert.NotNil(t, vehicles.created)

	drivers.driver.EmploymentType = models.EmploymentW2
	_, err = svc.AddVehicle(context.Background(), "driver-1", dto.UpsertVehicleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestDriverUpdateVehicleChecksOwnership(t *testing.T) {
	svc, _, _, vehicles, _ := newDriverFixture()
	other := "driver-2"
	vehicles.vehicles["vehicle-1"] = &models.Vehicle{ID: "vehicle-1", OwnerDriverID: &other}

	_, err := svc.UpdateVehicle(context.Background(), "driver-1", "vehicle-1", dto.UpsertVehicleRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	owner := "driver-1"
	vehicles.vehicles["vehicle-2"] = &models.Vehicle{ID: "vehicle-2", OwnerDriverID: &owner, VehicleType: models.VehicleStandard}
	updated, err := svc.UpdateVehicle(context.Background(), "driver-1", "vehicle-2", dto.UpsertVehicleRequest{
		VehicleType: models.VehicleWheelchairAccessible,
		Make:        str("Ford"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.VehicleWheelchairAccessible, updated.VehicleType)
	assert.Equal(t, "Ford", *updated.Make)
}
