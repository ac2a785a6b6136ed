package service

import (
	"time"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// ResolveDisplayStatus derives the presentation status for one credential
// against its type. The stored status never changes here; expiry, grace
// periods, and admin verification are all read-time concerns.
//
// subjectCreatedAt feeds the grace-period window for never-submitted
// credentials and may be nil when unknown.
func ResolveDisplayStatus(cred *models.Credential, ct *models.CredentialType, subjectCreatedAt *time.Time, now time.Time) models.DisplayStatus {
	switch cred.Status {
	case models.StatusApproved:
		if cred.ExpiresAt != nil {
			if !cred.ExpiresAt.After(now) {
				return models.DisplayExpired
			}
			warn := warningDays(ct)
			if cred.ExpiresAt.Sub(now) <= time.Duration(warn)*24*time.Hour {
				return models.DisplayExpiring
			}
		}
		return models.DisplayApproved

	case models.StatusPendingReview:
		return models.DisplayPendingReview

	case models.StatusRejected:
		return models.DisplayRejected

	default: // not_submitted
		if ct != nil && ct.AdminOnly() {
			return models.DisplayAwaitingVerification
		}
		if ct != nil {
			if end := ct.GracePeriodEnd(subjectCreatedAt); !end.IsZero() {
				if now.Before(end) {
					return models.DisplayGracePeriod
				}
				return models.DisplayMissing
			}
		}
		return models.DisplayNotSubmitted
	}
}

// DaysUntilExpiration returns the whole days remaining before an approved
// credential expires, or nil when no expiry applies.
func DaysUntilExpiration(cred *models.Credential, now time.Time) *int {
	if cred.Status != models.StatusApproved || cred.ExpiresAt == nil {
		return nil
	}
	days := int(cred.ExpiresAt.Sub(now).Hours() / 24)
	return &days
}

// DeriveExpiresAt determines the expires_at stored on approval. An explicit
// admin override always wins; otherwise the type's expiration rule applies.
func DeriveExpiresAt(ct *models.CredentialType, cred *models.Credential, override *time.Time, approvedAt time.Time) *time.Time {
	if override != nil {
		return override
	}
	if ct == nil {
		return nil
	}
	switch ct.ExpirationType {
	case models.ExpirationFixedInterval:
		if ct.ExpirationIntervalDays == nil {
			return nil
		}
		t := approvedAt.AddDate(0, 0, *ct.ExpirationIntervalDays)
		return &t
	case models.ExpirationDriverSpecified:
		if cred != nil && cred.DriverExpirationDate != nil {
			return cred.DriverExpirationDate
		}
		return nil
	default: // never
		return nil
	}
}

// CanSubmit reports whether a driver may submit or resubmit right now.
// Pending submissions are locked until reviewed, and admin-only types never
// accept driver submissions.
func CanSubmit(cred *models.Credential, ct *models.CredentialType) bool {
	if ct != nil && ct.AdminOnly() {
		return false
	}
	return cred.Status != models.StatusPendingReview
}

func warningDays(ct *models.CredentialType) int {
	if ct != nil && ct.ExpirationWarningDays > 0 {
		return ct.ExpirationWarningDays
	}
	return 30
}
