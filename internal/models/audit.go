package models

import "time"

// Audit actions recorded by services on significant state changes.
const (
	AuditActionLogin            = "LOGIN"
	AuditActionLogout           = "LOGOUT"
	AuditActionPasswordChange   = "PASSWORD_CHANGE"
	AuditActionCredentialSubmit = "CREDENTIAL_SUBMIT"
	AuditActionCredentialReview = "CREDENTIAL_REVIEW"
	AuditActionDriverActivate   = "DRIVER_ACTIVATE"
	AuditActionDriverDeactivate = "DRIVER_DEACTIVATE"
	AuditActionFlagOverride     = "FLAG_OVERRIDE"
	AuditActionFlagDefault      = "FLAG_DEFAULT"
)

// AuditLog is an append-only operational record, separate from the credential
// submission history that backs the user-facing audit display.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	UserAgent  string    `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
