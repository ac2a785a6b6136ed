package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

func TestHistoryRepositoryAppend(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	mock.ExpectExec("INSERT INTO credential_history").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := &models.CredentialHistory{
		CredentialID:      "cred-1",
		CredentialTable:   models.TableDriverCredentials,
		CompanyID:         "company-1",
		Status:            models.StatusPendingReview,
		SubmissionVersion: 1,
	}
	require.NoError(t, repo.Append(context.Background(), h))
	assert.NotEmpty(t, h.ID)
	assert.False(t, h.CreatedAt.IsZero())
}

func TestHistoryRepositoryListForCredential(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewHistoryRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "credential_id", "credential_table", "company_id", "status", "submission_version",
		"submission_data", "submitted_at", "reviewed_at", "reviewed_by", "review_notes", "rejection_reason", "expires_at", "created_at",
	}).
		AddRow("h-2", "cred-1", "driver_credentials", "company-1", "rejected", 1, nil, now, now, "admin-1", nil, "blurry photo", nil, now).
		AddRow("h-1", "cred-1", "driver_credentials", "company-1", "pending_review", 1, nil, now, nil, nil, nil, nil, nil, now)
	mock.ExpectQuery("SELECT id, credential_id").
		WithArgs("cred-1").
		WillReturnRows(rows)

	trail, err := repo.ListForCredential(context.Background(), "cred-1")
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, models.StatusRejected, trail[0].Status)
	assert.Equal(t, "blurry photo", *trail[0].RejectionReason)
}
