package dto

import (
	"time"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// CreateCredentialTypeRequest defines a new requirement. New types start as
// drafts unless an effective date schedules them.
type CreateCredentialTypeRequest struct {
	Name                   string                    `json:"name" binding:"required"`
	Description            *string                   `json:"description,omitempty"`
	Category               models.CredentialCategory `json:"category" binding:"required"`
	Scope                  models.CredentialScope    `json:"scope"`
	BrokerID               *string                   `json:"broker_id,omitempty"`
	EmploymentType         models.TypeEmploymentType `json:"employment_type"`
	Requirement            models.RequirementLevel   `json:"requirement"`
	SubmissionType         models.SubmissionType     `json:"submission_type" binding:"required"`
	RequiresDriverAction   *bool                     `json:"requires_driver_action,omitempty"`
	ExpirationType         models.ExpirationType     `json:"expiration_type"`
	ExpirationIntervalDays *int                      `json:"expiration_interval_days,omitempty"`
	ExpirationWarningDays  *int                      `json:"expiration_warning_days,omitempty"`
	GracePeriodDays        *int                      `json:"grace_period_days,omitempty"`
	EffectiveDate          *time.Time                `json:"effective_date,omitempty"`
	InstructionConfig      *models.InstructionConfig `json:"instruction_config,omitempty"`
	DisplayOrder           *int                      `json:"display_order,omitempty"`
}

// UpdateCredentialTypeRequest applies partial edits to a requirement.
type UpdateCredentialTypeRequest struct {
	Name                   *string                   `json:"name,omitempty"`
	Description            *string                   `json:"description,omitempty"`
	Requirement            *models.RequirementLevel  `json:"requirement,omitempty"`
	EmploymentType         *models.TypeEmploymentType `json:"employment_type,omitempty"`
	ExpirationType         *models.ExpirationType    `json:"expiration_type,omitempty"`
	ExpirationIntervalDays *int                      `json:"expiration_interval_days,omitempty"`
	ExpirationWarningDays  *int                      `json:"expiration_warning_days,omitempty"`
	GracePeriodDays        *int                      `json:"grace_period_days,omitempty"`
	InstructionConfig      *models.InstructionConfig `json:"instruction_config,omitempty"`
	DisplayOrder           *int                      `json:"display_order,omitempty"`
}

// PublishCredentialTypeRequest takes a draft live, immediately or on a
// future effective date.
type PublishCredentialTypeRequest struct {
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

// CredentialTypeListRequest captures query filters for type listings.
type CredentialTypeListRequest struct {
	Category models.CredentialCategory
	Status   models.CredentialTypeStatus
	Scope    models.CredentialScope
}
