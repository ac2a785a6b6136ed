package models

import "time"

// Well-known flag keys referenced directly by business rules.
const (
	FlagDriverPayments     = "driver_payments"
	FlagVehicleCredentials = "vehicle_credentials"
	FlagComplianceExports  = "compliance_exports"
)

// FeatureFlag is a platform-wide flag definition with a default value.
type FeatureFlag struct {
	ID             string    `db:"id" json:"id"`
	Key            string    `db:"key" json:"key"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Category       *string   `db:"category" json:"category,omitempty"`
	DefaultEnabled bool      `db:"default_enabled" json:"default_enabled"`
	Internal       bool      `db:"internal" json:"internal"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// CompanyFeatureOverride pins a flag's value for one company.
type CompanyFeatureOverride struct {
	ID        string    `db:"id" json:"id"`
	CompanyID string    `db:"company_id" json:"company_id"`
	FlagID    string    `db:"flag_id" json:"flag_id"`
	Enabled   bool      `db:"enabled" json:"enabled"`
	Reason    *string   `db:"reason" json:"reason,omitempty"`
	CreatedBy *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FeatureFlagView is a flag with its company override and the resolved
// effective value.
type FeatureFlagView struct {
	FeatureFlag
	Override  *CompanyFeatureOverride `json:"override,omitempty"`
	Effective bool                    `json:"effective"`
}
