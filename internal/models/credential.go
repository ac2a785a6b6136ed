package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// CredentialStatus is the persisted lifecycle state of a credential record.
// Only these four values are ever stored; everything else a user sees is a
// derived display status.
type CredentialStatus string

const (
	StatusNotSubmitted  CredentialStatus = "not_submitted"
	StatusPendingReview CredentialStatus = "pending_review"
	StatusApproved      CredentialStatus = "approved"
	StatusRejected      CredentialStatus = "rejected"
)

// DisplayStatus is the derived, presentation-level status. Computed on read,
// never stored.
type DisplayStatus string

const (
	DisplayApproved             DisplayStatus = "approved"
	DisplayRejected             DisplayStatus = "rejected"
	DisplayPendingReview        DisplayStatus = "pending_review"
	DisplayAwaitingVerification DisplayStatus = "awaiting_verification"
	DisplayExpiring             DisplayStatus = "expiring"
	DisplayExpired              DisplayStatus = "expired"
	DisplayNotSubmitted         DisplayStatus = "not_submitted"
	DisplayGracePeriod          DisplayStatus = "grace_period"
	DisplayMissing              DisplayStatus = "missing"
)

// CredentialTable selects which subject table a credential row lives in.
// Driver and vehicle credentials share one schema and one code path.
type CredentialTable string

const (
	TableDriverCredentials  CredentialTable = "driver_credentials"
	TableVehicleCredentials CredentialTable = "vehicle_credentials"
)

// Valid reports whether the table name is one of the two known tables. Every
// repository method checks this before interpolating the table into SQL.
func (t CredentialTable) Valid() bool {
	return t == TableDriverCredentials || t == TableVehicleCredentials
}

// SubjectColumn returns the FK column naming the credential's subject.
func (t CredentialTable) SubjectColumn() string {
	if t == TableVehicleCredentials {
		return "vehicle_id"
	}
	return "driver_id"
}

// SignatureData captures an e-signature submission.
type SignatureData struct {
	SignedName     string    `json:"signed_name"`
	SignatureImage string    `json:"signature_image,omitempty"`
	SignedAt       time.Time `json:"signed_at"`
	IPAddress      string    `json:"ip_address,omitempty"`
}

func (s *SignatureData) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

func (s *SignatureData) Scan(src interface{}) error {
	if src == nil {
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("signature_data: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}

// Credential is one subject's record against one credential type. The
// subject_id column is aliased from driver_id or vehicle_id depending on the
// table the row came from.
type Credential struct {
	ID                   string           `db:"id" json:"id"`
	SubjectID            string           `db:"subject_id" json:"subject_id"`
	CredentialTypeID     string           `db:"credential_type_id" json:"credential_type_id"`
	CompanyID            string           `db:"company_id" json:"company_id"`
	Status               CredentialStatus `db:"status" json:"status"`
	DocumentURL          *string          `db:"document_url" json:"document_url,omitempty"`
	DocumentURLs         pq.StringArray   `db:"document_urls" json:"document_urls,omitempty"`
	FormData             json.RawMessage  `db:"form_data" json:"form_data,omitempty"`
	SignatureData        *SignatureData   `db:"signature_data" json:"signature_data,omitempty"`
	EnteredDate          *time.Time       `db:"entered_date" json:"entered_date,omitempty"`
	DriverExpirationDate *time.Time       `db:"driver_expiration_date" json:"driver_expiration_date,omitempty"`
	ExpiresAt            *time.Time       `db:"expires_at" json:"expires_at,omitempty"`
	SubmittedAt          *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	ReviewedAt           *time.Time       `db:"reviewed_at" json:"reviewed_at,omitempty"`
	ReviewedBy           *string          `db:"reviewed_by" json:"reviewed_by,omitempty"`
	ReviewNotes          *string          `db:"review_notes" json:"review_notes,omitempty"`
	RejectionReason      *string          `db:"rejection_reason" json:"rejection_reason,omitempty"`
	VerifiedAt           *time.Time       `db:"verified_at" json:"verified_at,omitempty"`
	VerifiedBy           *string          `db:"verified_by" json:"verified_by,omitempty"`
	SubmissionVersion    int              `db:"submission_version" json:"submission_version"`
	Notes                *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// CredentialView is a credential joined with its type and enriched with the
// derived display fields the UI needs.
type CredentialView struct {
	Credential
	Type                CredentialType `json:"credential_type"`
	DisplayStatus       DisplayStatus  `json:"display_status"`
	DaysUntilExpiration *int           `json:"days_until_expiration,omitempty"`
	GracePeriodEndsAt   *time.Time     `json:"grace_period_ends_at,omitempty"`
	CanSubmit           bool           `json:"can_submit"`
}

// ReviewQueueItem is one pending submission awaiting an admin decision.
type ReviewQueueItem struct {
	Credential
	Table       CredentialTable `json:"credential_table"`
	TypeName    string          `db:"type_name" json:"type_name"`
	SubjectName string          `db:"subject_name" json:"subject_name"`
}

// ReviewStats summarizes the review workload for a company.
type ReviewStats struct {
	Pending       int     `db:"pending" json:"pending"`
	ApprovedToday int     `db:"approved_today" json:"approved_today"`
	RejectedToday int     `db:"rejected_today" json:"rejected_today"`
	OldestPending *string `db:"oldest_pending" json:"oldest_pending,omitempty"`
}

// CredentialFilter narrows credential listings.
type CredentialFilter struct {
	CompanyID        string
	SubjectID        string
	CredentialTypeID string
	Status           CredentialStatus
	Page             int
	PageSize         int
}
