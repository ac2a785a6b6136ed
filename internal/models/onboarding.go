package models

import "time"

// Onboarding item keys. Which items apply depends on employment type and
// company feature flags.
const (
	ItemProfileComplete   = "profile_complete"
	ItemProfilePhoto      = "profile_photo"
	ItemVehicleAdded      = "vehicle_added"
	ItemVehicleComplete   = "vehicle_complete"
	ItemGlobalCredentials = "global_credentials"
	ItemAvailabilitySet   = "availability_set"
	ItemPaymentInfo       = "payment_info"
)

// OnboardingItem is one checklist entry a driver must (or may) complete.
type OnboardingItem struct {
	Key         string `json:"key"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// OnboardingItemStatus is an item plus its computed completion state.
type OnboardingItemStatus struct {
	OnboardingItem
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Missing     []string   `json:"missing,omitempty"`
}

// OnboardingStatus is the full computed onboarding picture for one driver.
type OnboardingStatus struct {
	DriverID    string                 `json:"driver_id"`
	Items       []OnboardingItemStatus `json:"items"`
	Progress    int                    `json:"progress"`
	Complete    bool                   `json:"complete"`
	CanActivate bool                   `json:"can_activate"`
	Blockers    []string               `json:"blockers,omitempty"`
}

// DriverAvailability is one recurring weekly availability window.
type DriverAvailability struct {
	ID        string    `db:"id" json:"id"`
	DriverID  string    `db:"driver_id" json:"driver_id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DriverPaymentInfo stores masked payout details. Only the last four digits
// of account numbers are ever persisted.
type DriverPaymentInfo struct {
	ID            string    `db:"id" json:"id"`
	DriverID      string    `db:"driver_id" json:"driver_id"`
	CompanyID     string    `db:"company_id" json:"company_id"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	BankName      *string   `db:"bank_name" json:"bank_name,omitempty"`
	AccountType   *string   `db:"account_type" json:"account_type,omitempty"`
	RoutingLast4  *string   `db:"routing_last4" json:"routing_last4,omitempty"`
	AccountLast4  *string   `db:"account_last4" json:"account_last4,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Company is a tenant.
type Company struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
