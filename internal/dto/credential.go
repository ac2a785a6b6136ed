package dto

import (
	"encoding/json"
	"time"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// SubmitCredentialRequest carries a driver's submission for one credential
// type. Which fields must be set depends on the type's submission mode.
type SubmitCredentialRequest struct {
	DocumentURL   *string               `json:"document_url,omitempty"`
	DocumentURLs  []string              `json:"document_urls,omitempty"`
	FormData      json.RawMessage       `json:"form_data,omitempty"`
	SignatureData *models.SignatureData `json:"signature_data,omitempty"`
	EnteredDate   *time.Time            `json:"entered_date,omitempty"`
	// DriverExpirationDate feeds expires_at for driver_specified types.
	DriverExpirationDate *time.Time `json:"driver_expiration_date,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
}

// CredentialListRequest captures query parameters for credential listings.
type CredentialListRequest struct {
	SubjectID string
	TypeID    string
	Status    models.CredentialStatus
	Page      int
	PageSize  int
}

// CredentialChecklistResponse groups a subject's credentials for the
// checklist view.
type CredentialChecklistResponse struct {
	SubjectID string                  `json:"subject_id"`
	Items     []models.CredentialView `json:"items"`
	Required  int                     `json:"required"`
	Satisfied int                     `json:"satisfied"`
}
