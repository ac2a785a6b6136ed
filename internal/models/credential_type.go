package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CredentialCategory separates driver-level from vehicle-level requirements.
type CredentialCategory string

const (
	CategoryDriver  CredentialCategory = "driver"
	CategoryVehicle CredentialCategory = "vehicle"
)

// CredentialScope scopes a requirement to the whole company or a single broker.
type CredentialScope string

const (
	ScopeGlobal CredentialScope = "global"
	ScopeBroker CredentialScope = "broker"
)

// RequirementLevel marks whether a credential blocks activation.
type RequirementLevel string

const (
	RequirementRequired RequirementLevel = "required"
	RequirementOptional RequirementLevel = "optional"
)

// SubmissionType describes the legacy single-input submission modes. Types
// with a non-empty instruction config use the multi-step flow instead.
type SubmissionType string

const (
	SubmissionDocumentUpload SubmissionType = "document_upload"
	SubmissionPhoto          SubmissionType = "photo"
	SubmissionSignature      SubmissionType = "signature"
	SubmissionForm           SubmissionType = "form"
	SubmissionDateEntry      SubmissionType = "date_entry"
	SubmissionAdminVerified  SubmissionType = "admin_verified"
)

// ExpirationType governs how expires_at is derived on approval.
type ExpirationType string

const (
	ExpirationNever           ExpirationType = "never"
	ExpirationFixedInterval   ExpirationType = "fixed_interval"
	ExpirationDriverSpecified ExpirationType = "driver_specified"
)

// CredentialTypeStatus models the publish workflow: drafts are invisible to
// drivers, scheduled types go live on their effective date.
type CredentialTypeStatus string

const (
	TypeStatusDraft     CredentialTypeStatus = "draft"
	TypeStatusActive    CredentialTypeStatus = "active"
	TypeStatusScheduled CredentialTypeStatus = "scheduled"
	TypeStatusArchived  CredentialTypeStatus = "archived"
)

// TypeEmploymentType restricts a requirement to an employment class.
type TypeEmploymentType string

const (
	EmploymentBoth     TypeEmploymentType = "both"
	EmploymentW2Only   TypeEmploymentType = "w2_only"
	Employment1099Only TypeEmploymentType = "1099_only"
)

// CredentialType is a company-defined compliance requirement template.
type CredentialType struct {
	ID                     string               `db:"id" json:"id"`
	CompanyID              string               `db:"company_id" json:"company_id"`
	Name                   string               `db:"name" json:"name"`
	Description            *string              `db:"description" json:"description,omitempty"`
	Category               CredentialCategory   `db:"category" json:"category"`
	Scope                  CredentialScope      `db:"scope" json:"scope"`
	BrokerID               *string              `db:"broker_id" json:"broker_id,omitempty"`
	EmploymentType         TypeEmploymentType   `db:"employment_type" json:"employment_type"`
	Requirement            RequirementLevel     `db:"requirement" json:"requirement"`
	SubmissionType         SubmissionType       `db:"submission_type" json:"submission_type"`
	RequiresDriverAction   bool                 `db:"requires_driver_action" json:"requires_driver_action"`
	ExpirationType         ExpirationType       `db:"expiration_type" json:"expiration_type"`
	ExpirationIntervalDays *int                 `db:"expiration_interval_days" json:"expiration_interval_days,omitempty"`
	ExpirationWarningDays  int                  `db:"expiration_warning_days" json:"expiration_warning_days"`
	GracePeriodDays        int                  `db:"grace_period_days" json:"grace_period_days"`
	EffectiveDate          *time.Time           `db:"effective_date" json:"effective_date,omitempty"`
	Status                 CredentialTypeStatus `db:"status" json:"status"`
	InstructionConfig      *InstructionConfig   `db:"instruction_config" json:"instruction_config,omitempty"`
	DisplayOrder           int                  `db:"display_order" json:"display_order"`
	IsActive               bool                 `db:"is_active" json:"is_active"`
	CreatedBy              *string              `db:"created_by" json:"created_by,omitempty"`
	CreatedAt              time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time            `db:"updated_at" json:"updated_at"`
}

// AdminOnly reports whether the credential is completed by admins on the
// driver's behalf, with no driver action required.
func (t *CredentialType) AdminOnly() bool {
	if t == nil {
		return false
	}
	return !t.RequiresDriverAction || t.SubmissionType == SubmissionAdminVerified
}

// LiveForDrivers reports whether the requirement is visible to drivers given
// its publish status and effective date.
func (t *CredentialType) LiveForDrivers(now time.Time) bool {
	switch t.Status {
	case TypeStatusActive:
		return t.EffectiveDate == nil || !t.EffectiveDate.After(now)
	case TypeStatusScheduled:
		return t.EffectiveDate != nil && !t.EffectiveDate.After(now)
	default:
		return false
	}
}

// HasInstructionFlow reports whether submissions go through the multi-step
// instruction flow rather than a legacy single-input mode.
func (t *CredentialType) HasInstructionFlow() bool {
	return t != nil && t.InstructionConfig != nil && len(t.InstructionConfig.Steps) > 0
}

// GracePeriodEnd computes when a subject falls out of compliance for a
// requirement it has never submitted. The window starts at the later of the
// requirement's effective date and the subject's creation date. Returns zero
// time when no grace period applies.
func (t *CredentialType) GracePeriodEnd(subjectCreatedAt *time.Time) time.Time {
	if t.EffectiveDate == nil || t.GracePeriodDays <= 0 {
		return time.Time{}
	}
	base := *t.EffectiveDate
	if subjectCreatedAt != nil && subjectCreatedAt.After(base) {
		base = *subjectCreatedAt
	}
	return base.AddDate(0, 0, t.GracePeriodDays)
}

// Value implements driver.Valuer for JSONB persistence.
func (c *InstructionConfig) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSONB columns.
func (c *InstructionConfig) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("instruction_config: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, c)
}
