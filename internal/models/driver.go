package models

import "time"

// DriverEmploymentType classifies a driver for requirement filtering.
type DriverEmploymentType string

const (
	EmploymentW2   DriverEmploymentType = "w2"
	Employment1099 DriverEmploymentType = "1099"
)

// DriverStatus is the activation state an admin toggles once onboarding
// clears.
type DriverStatus string

const (
	DriverActive   DriverStatus = "active"
	DriverInactive DriverStatus = "inactive"
)

// Driver is a driver profile within a company.
type Driver struct {
	ID                    string               `db:"id" json:"id"`
	UserID                string               `db:"user_id" json:"user_id"`
	CompanyID             string               `db:"company_id" json:"company_id"`
	EmploymentType        DriverEmploymentType `db:"employment_type" json:"employment_type"`
	Status                DriverStatus         `db:"status" json:"status"`
	StatusReason          *string              `db:"status_reason" json:"status_reason,omitempty"`
	StatusChangedAt       *time.Time           `db:"status_changed_at" json:"status_changed_at,omitempty"`
	DateOfBirth           *time.Time           `db:"date_of_birth" json:"date_of_birth,omitempty"`
	AddressLine1          *string              `db:"address_line1" json:"address_line1,omitempty"`
	City                  *string              `db:"city" json:"city,omitempty"`
	State                 *string              `db:"state" json:"state,omitempty"`
	Zip                   *string              `db:"zip" json:"zip,omitempty"`
	LicenseNumber         *string              `db:"license_number" json:"license_number,omitempty"`
	LicenseState          *string              `db:"license_state" json:"license_state,omitempty"`
	LicenseExpiration     *time.Time           `db:"license_expiration" json:"license_expiration,omitempty"`
	EmergencyContactName  *string              `db:"emergency_contact_name" json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone *string              `db:"emergency_contact_phone" json:"emergency_contact_phone,omitempty"`
	HasAvailability       bool                 `db:"has_availability" json:"has_availability"`
	HasPaymentInfo        bool                 `db:"has_payment_info" json:"has_payment_info"`
	OnboardingCompletedAt *time.Time           `db:"onboarding_completed_at" json:"onboarding_completed_at,omitempty"`
	CreatedAt             time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time            `db:"updated_at" json:"updated_at"`
}

// DriverWithUser joins the profile with login identity fields for listings.
type DriverWithUser struct {
	Driver
	FullName  string  `db:"full_name" json:"full_name"`
	Email     string  `db:"email" json:"email"`
	Phone     *string `db:"phone" json:"phone,omitempty"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

// ProfileComplete reports whether the identity fields onboarding requires are
// all present.
func (d *Driver) ProfileComplete() bool {
	return d.DateOfBirth != nil &&
		notEmpty(d.AddressLine1) && notEmpty(d.City) && notEmpty(d.State) && notEmpty(d.Zip) &&
		notEmpty(d.LicenseNumber) && notEmpty(d.LicenseState) && d.LicenseExpiration != nil &&
		notEmpty(d.EmergencyContactName) && notEmpty(d.EmergencyContactPhone)
}

func notEmpty(s *string) bool {
	return s != nil && *s != ""
}

// DriverFilter narrows driver listings.
type DriverFilter struct {
	CompanyID      string
	Status         DriverStatus
	EmploymentType DriverEmploymentType
	Search         string
	Page           int
	PageSize       int
}
