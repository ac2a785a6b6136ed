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

func TestFeatureFlagRepositoryListFlags(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeatureFlagRepository(db)
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "key", "name", "description", "category", "default_enabled", "internal", "created_at", "updated_at"}).
		AddRow("flag-1", models.FlagDriverPayments, "Driver payments", nil, nil, false, false, now, now).
		AddRow("flag-2", models.FlagVehicleCredentials, "Vehicle credentials", nil, nil, true, false, now, now)
	mock.ExpectQuery("SELECT id, key, name").WillReturnRows(rows)

	flags, err := repo.ListFlags(context.Background())
	require.NoError(t, err)
	require.Len(t, flags, 2)
	assert.False(t, flags[0].DefaultEnabled)
	assert.True(t, flags[1].DefaultEnabled)
}

func TestFeatureFlagRepositoryUpsertOverride(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewFeatureFlagRepository(db)
	mock.ExpectExec("INSERT INTO company_feature_overrides").
		WillReturnResult(sqlmock.NewResult(1, 1))

	o := &models.CompanyFeatureOverride{CompanyID: "company-1", FlagID: "flag-1", Enabled: true}
	require.NoError(t, repo.UpsertOverride(context.Background(), o))
	assert.NotEmpty(t, o.ID)
}
