package dto

import (
	"time"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// ApproveCredentialRequest carries an admin approval decision. ExpiresAt, if
// set, overrides whatever the type's expiration rule would derive.
type ApproveCredentialRequest struct {
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ReviewNotes *string    `json:"review_notes,omitempty"`
}

// RejectCredentialRequest carries an admin rejection. A reason is mandatory
// so the driver knows what to fix.
type RejectCredentialRequest struct {
	Reason      string  `json:"reason" binding:"required"`
	ReviewNotes *string `json:"review_notes,omitempty"`
}

// VerifyCredentialRequest marks an admin-verified credential as completed on
// the driver's behalf.
type VerifyCredentialRequest struct {
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	Notes     *string    `json:"notes,omitempty"`
}

// ReviewQueueRequest captures filters for the pending-review queue.
type ReviewQueueRequest struct {
	Table    models.CredentialTable
	TypeID   string
	Page     int
	PageSize int
}

// ReviewQueueResponse wraps the queue with its stats header.
type ReviewQueueResponse struct {
	Items []models.ReviewQueueItem `json:"items"`
	Stats models.ReviewStats       `json:"stats"`
}
