package dto

import (
	"time"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// UpdateDriverProfileRequest applies partial edits to a driver profile.
type UpdateDriverProfileRequest struct {
	DateOfBirth           *time.Time `json:"date_of_birth,omitempty"`
	AddressLine1          *string    `json:"address_line1,omitempty"`
	City                  *string    `json:"city,omitempty"`
	State                 *string    `json:"state,omitempty"`
	Zip                   *string    `json:"zip,omitempty"`
	LicenseNumber         *string    `json:"license_number,omitempty"`
	LicenseState          *string    `json:"license_state,omitempty"`
	LicenseExpiration     *time.Time `json:"license_expiration,omitempty"`
	EmergencyContactName  *string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string    `json:"emergency_contact_phone,omitempty"`
	AvatarURL             *string    `json:"avatar_url,omitempty"`
}

// SetDriverStatusRequest toggles activation. Activation is refused while
// onboarding blockers remain.
type SetDriverStatusRequest struct {
	Status models.DriverStatus `json:"status" binding:"required"`
	Reason *string             `json:"reason,omitempty"`
}

// SetAvailabilityRequest replaces a driver's weekly availability windows.
type SetAvailabilityRequest struct {
	Windows []AvailabilityWindow `json:"windows" binding:"required"`
}

type AvailabilityWindow struct {
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

// SetPaymentInfoRequest stores masked payout details.
type SetPaymentInfoRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountType   *string `json:"account_type,omitempty"`
	RoutingLast4  *string `json:"routing_last4,omitempty"`
	AccountLast4  *string `json:"account_last4,omitempty"`
}

// UpsertVehicleRequest creates or edits a vehicle.
type UpsertVehicleRequest struct {
	VehicleType            models.VehicleType `json:"vehicle_type"`
	Make                   *string            `json:"make,omitempty"`
	Model                  *string            `json:"model,omitempty"`
	Year                   *int               `json:"year,omitempty"`
	Color                  *string            `json:"color,omitempty"`
	LicensePlate           *string            `json:"license_plate,omitempty"`
	LicenseState           *string            `json:"license_state,omitempty"`
	VIN                    *string            `json:"vin,omitempty"`
	ExteriorPhotoURL       *string            `json:"exterior_photo_url,omitempty"`
	WheelchairLiftPhotoURL *string            `json:"wheelchair_lift_photo_url,omitempty"`
}
