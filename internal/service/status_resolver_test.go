package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func timePtr(t time.Time) *time.Time { return &t }

func TestResolveDisplayStatusApprovedLifecycle(t *testing.T) {
	ct := &models.CredentialType{ExpirationWarningDays: 30, RequiresDriverAction: true}

	tests := []struct {
		name      string
		expiresAt *time.Time
		now       time.Time
		want      models.DisplayStatus
	}{
		{"no expiry stays approved", nil, date(2026, 6, 1), models.DisplayApproved},
		{"far from expiry", timePtr(date(2026, 12, 31)), date(2026, 6, 1), models.DisplayApproved},
		{"inside warning window", timePtr(date(2024, 12, 31)), date(2024, 12, 15), models.DisplayExpiring},
		{"exactly at expiry", timePtr(date(2026, 6, 1)), date(2026, 6, 1), models.DisplayExpired},
		{"past expiry", timePtr(date(2026, 5, 1)), date(2026, 6, 1), models.DisplayExpired},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cred := &models.Credential{Status: models.StatusApproved, ExpiresAt: tc.expiresAt}
			assert.Equal(t, tc.want, ResolveDisplayStatus(cred, ct, nil, tc.now))
		})
	}
}

func TestResolveDisplayStatusPassThrough(t *testing.T) {
	ct := &models.CredentialType{RequiresDriverAction: true}
	now := date(2026, 6, 1)

	pending := &models.Credential{Status: models.StatusPendingReview}
	assert.Equal(t, models.DisplayPendingReview, ResolveDisplayStatus(pending, ct, nil, now))

	rejected := &models.Credential{Status: models.StatusRejected}
	assert.Equal(t, models.DisplayRejected, ResolveDisplayStatus(rejected, ct, nil, now))

	fresh := &models.Credential{Status: models.StatusNotSubmitted}
	assert.Equal(t, models.DisplayNotSubmitted, ResolveDisplayStatus(fresh, ct, nil, now))
}

func TestResolveDisplayStatusAdminVerified(t *testing.T) {
	now := date(2026, 6, 1)
	cred := &models.Credential{Status: models.StatusNotSubmitted}

	adminType := &models.CredentialType{SubmissionType: models.SubmissionAdminVerified}
	assert.Equal(t, models.DisplayAwaitingVerification, ResolveDisplayStatus(cred, adminType, nil, now))

	noAction := &models.CredentialType{SubmissionType: models.SubmissionDocumentUpload, RequiresDriverAction: false}
	assert.Equal(t, models.DisplayAwaitingVerification, ResolveDisplayStatus(cred, noAction, nil, now))
}

func TestResolveDisplayStatusGracePeriod(t *testing.T) {
	ct := &models.CredentialType{
		RequiresDriverAction: true,
		EffectiveDate:        timePtr(date(2026, 5, 1)),
		GracePeriodDays:      14,
	}
	cred := &models.Credential{Status: models.StatusNotSubmitted}

	// Window runs from the effective date when the driver predates it.
	early := timePtr(date(2026, 1, 1))
	assert.Equal(t, models.DisplayGracePeriod, ResolveDisplayStatus(cred, ct, early, date(2026, 5, 10)))
	assert.Equal(t, models.DisplayMissing, ResolveDisplayStatus(cred, ct, early, date(2026, 5, 20)))

	// A driver created after the effective date gets the window from their
	// own start date.
	joined := timePtr(date(2026, 5, 10))
	assert.Equal(t, models.DisplayGracePeriod, ResolveDisplayStatus(cred, ct, joined, date(2026, 5, 20)))
	assert.Equal(t, models.DisplayMissing, ResolveDisplayStatus(cred, ct, joined, date(2026, 5, 25)))
}

func TestDeriveExpiresAt(t *testing.T) {
	approvedAt := date(2024, 1, 1)

	interval := 365
	fixed := &models.CredentialType{ExpirationType: models.ExpirationFixedInterval, ExpirationIntervalDays: &interval}
	got := DeriveExpiresAt(fixed, nil, nil, approvedAt)
	require.NotNil(t, got)
	assert.Equal(t, date(2024, 12, 31), *got)

	never := &models.CredentialType{ExpirationType: models.ExpirationNever}
	assert.Nil(t, DeriveExpiresAt(never, nil, nil, approvedAt))

	driverDate := timePtr(date(2027, 3, 1))
	specified := &models.CredentialType{ExpirationType: models.ExpirationDriverSpecified}
	got = DeriveExpiresAt(specified, &models.Credential{DriverExpirationDate: driverDate}, nil, approvedAt)
	require.NotNil(t, got)
	assert.Equal(t, *driverDate, *got)

	// Missing driver date falls back to no expiry rather than guessing.
	assert.Nil(t, DeriveExpiresAt(specified, &models.Credential{}, nil, approvedAt))

	// An admin override beats every rule.
	override := timePtr(date(2030, 1, 1))
	got = DeriveExpiresAt(fixed, nil, override, approvedAt)
	require.NotNil(t, got)
	assert.Equal(t, *override, *got)
}

func TestCanSubmit(t *testing.T) {
	driverType := &models.CredentialType{SubmissionType: models.SubmissionDocumentUpload, RequiresDriverAction: true}
	adminType := &models.CredentialType{SubmissionType: models.SubmissionAdminVerified}

	assert.True(t, CanSubmit(&models.Credential{Status: models.StatusNotSubmitted}, driverType))
	assert.True(t, CanSubmit(&models.Credential{Status: models.StatusRejected}, driverType))
	assert.True(t, CanSubmit(&models.Credential{Status: models.StatusApproved}, driverType))
	assert.False(t, CanSubmit(&models.Credential{Status: models.StatusPendingReview}, driverType))
	assert.False(t, CanSubmit(&models.Credential{Status: models.StatusNotSubmitted}, adminType))
}

func TestDaysUntilExpiration(t *testing.T) {
	now := date(2026, 6, 1)
	cred := &models.Credential{Status: models.StatusApproved, ExpiresAt: timePtr(date(2026, 6, 11))}
	got := DaysUntilExpiration(cred, now)
	require.NotNil(t, got)
	assert.Equal(t, 10, *got)

	assert.Nil(t, DaysUntilExpiration(&models.Credential{Status: models.StatusApproved}, now))
	assert.Nil(t, DaysUntilExpiration(&models.Credential{Status: models.StatusPendingReview, ExpiresAt: timePtr(now)}, now))
}
