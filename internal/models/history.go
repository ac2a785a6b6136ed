package models

import (
	"encoding/json"
	"time"
)

// CredentialHistory is an immutable snapshot appended on every credential
// state transition. Resubmissions never overwrite prior review outcomes.
type CredentialHistory struct {
	ID                string           `db:"id" json:"id"`
	CredentialID      string           `db:"credential_id" json:"credential_id"`
	CredentialTable   CredentialTable  `db:"credential_table" json:"credential_table"`
	CompanyID         string           `db:"company_id" json:"company_id"`
	Status            CredentialStatus `db:"status" json:"status"`
	SubmissionVersion int              `db:"submission_version" json:"submission_version"`
	SubmissionData    json.RawMessage  `db:"submission_data" json:"submission_data,omitempty"`
	SubmittedAt       *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt        *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy        *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes       *string          `db:"review_notes" json:"review_notes,omitempty"`
	RejectionReason   *string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	ExpiresAt         *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}
