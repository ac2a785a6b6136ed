package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockCredentialTypeStore struct {
	types      map[string]*models.CredentialType
	created    *models.CredentialType
	updated    *models.CredentialType
	archivedID string
}

func (m *mockCredentialTypeStore) GetByID(_ context.Context, id string) (*models.CredentialType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return t, nil
}

func (m *mockCredentialTypeStore) List(_ context.Context, _ string, _ models.CredentialCategory, _ models.CredentialTypeStatus) ([]models.CredentialType, error) {
	out := make([]models.CredentialType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockCredentialTypeStore) Create(_ context.Context, t *models.CredentialType) error {
	m.created = t
	if m.types == nil {
		m.types = map[string]*models.CredentialType{}
	}
	m.types[t.ID] = t
	return nil
}

func (m *mockCredentialTypeStore) Update(_ context.Context, t *models.CredentialType) error {
	m.updated = t
	m.types[t.ID] = t
	return nil
}

func (m *mockCredentialTypeStore) Archive(_ context.Context, id string) error {
	m.archivedID = id
	return nil
}

func newTypeFixture() (*CredentialTypeService, *mockCredentialTypeStore) {
	store := &mockCredentialTypeStore{types: map[string]*models.CredentialType{}}
	svc := NewCredentialTypeService(store, CredentialTypeServiceConfig{}, zap.NewNop())
	return svc, store
}

func TestCredentialTypeCreateStartsAsDraft(t *testing.T) {
	svc, store := newTypeFixture()

	created, err := svc.Create(context.Background(), "company-1", "admin-1", dto.CreateCredentialTypeRequest{
		Name:           "Drug Screening",
		Category:       models.CategoryDriver,
		SubmissionType: models.SubmissionDocumentUpload,
	})
	require.NoError(t, err)

	assert.Equal(t, models.TypeStatusDraft, created.Status)
	assert.Equal(t, models.ScopeGlobal, created.Scope)
	assert.Equal(t, models.EmploymentBoth, created.EmploymentType)
	assert.Equal(t, models.RequirementRequired, created.Requirement)
	assert.Equal(t, models.ExpirationNever, created.ExpirationType)
	assert.Equal(t, 30, created.ExpirationWarningDays)
	assert.True(t, created.RequiresDriverAction)
	assert.NotNil(t, store.created)
}

func TestCredentialTypeCreateAdminVerifiedNeedsNoDriverAction(t *testing.T) {
	svc, _ := newTypeFixture()

	created, err := svc.Create(context.Background(), "company-1", "admin-1", dto.CreateCredentialTypeRequest{
		Name:           "Office Background Check",
		Category:       models.CategoryDriver,
		SubmissionType: models.SubmissionAdminVerified,
	})
	require.NoError(t, err)
	assert.False(t, created.RequiresDriverAction)
	assert.True(t, created.AdminOnly())
}

func TestCredentialTypeCreateValidations(t *testing.T) {
	svc, _ := newTypeFixture()

	_, err := svc.Create(context.Background(), "company-1", "admin-1", dto.CreateCredentialTypeRequest{
		Name:           "Broker Credential",
		Category:       models.CategoryDriver,
		Scope:          models.ScopeBroker,
		SubmissionType: models.SubmissionDocumentUpload,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	zero := 0
	_, err = svc.Create(context.Background(), "company-1", "admin-1", dto.CreateCredentialTypeRequest{
		Name:                   "Annual Physical",
		Category:               models.CategoryDriver,
		SubmissionType:         models.SubmissionDocumentUpload,
		ExpirationType:         models.ExpirationFixedInterval,
		ExpirationIntervalDays: &zero,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCredentialTypePublishImmediateAndScheduled(t *testing.T) {
	svc, store := newTypeFixture()
	store.types["type-1"] = &models.CredentialType{ID: "type-1", CompanyID: "company-1", Status: models.TypeStatusDraft}
	store.types["type-2"] = &models.CredentialType{ID: "type-2", CompanyID: "company-1", Status: models.TypeStatusDraft}

	published, err := svc.Publish(context.Background(), "company-1", "type-1", dto.PublishCredentialTypeRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.TypeStatusActive, published.Status)
	require.NotNil(t, published.EffectiveDate)

	future := time.Now().UTC().AddDate(0, 1, 0)
	scheduled, err := svc.Publish(context.Background(), "company-1", "type-2", dto.PublishCredentialTypeRequest{EffectiveDate: &future})
	require.NoError(t, err)
	assert.Equal(t, models.TypeStatusScheduled, scheduled.Status)
	assert.True(t, scheduled.EffectiveDate.Equal(future))
}

func TestCredentialTypePublishRefusedOutsideDraft(t *testing.T) {
	svc, store := newTypeFixture()
	store.types["type-1"] = &models.CredentialType{ID: "type-1", CompanyID: "company-1", Status: models.TypeStatusActive}

	_, err := svc.Publish(context.Background(), "company-1", "type-1", dto.PublishCredentialTypeRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestCredentialTypeUpdateBumpsConfigVersion(t *testing.T) {
	svc, store := newTypeFixture()
	store.types["type-1"] = &models.CredentialType{
		ID:        "type-1",
		CompanyID: "company-1",
		Status:    models.TypeStatusActive,
		InstructionConfig: &models.InstructionConfig{
			Version: 3,
			Steps:   []models.InstructionStep{{ID: "step-1", Title: "Sign", Type: models.StepSignature, Required: true}},
		},
	}

	updated, err := svc.Update(context.Background(), "company-1", "type-1", dto.UpdateCredentialTypeRequest{
		InstructionConfig: &models.InstructionConfig{
			Steps: []models.InstructionStep{{ID: "step-1", Title: "Sign and date", Type: models.StepSignature, Required: true}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.InstructionConfig.Version)
}

func TestCredentialTypeArchivedIsImmutable(t *testing.T) {
	svc, store := newTypeFixture()
	store.types["type-1"] = &models.CredentialType{ID: "type-1", CompanyID: "company-1", Status: models.TypeStatusArchived}

	name := "Renamed"
	_, err := svc.Update(context.Background(), "company-1", "type-1", dto.UpdateCredentialTypeRequest{Name: &name})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestCredentialTypeCrossCompanyAccessForbidden(t *testing.T) {
	svc, store := newTypeFixture()
	store.types["type-1"] = &models.CredentialType{ID: "type-1", CompanyID: "company-2", Status: models.TypeStatusActive}

	_, err := svc.Get(context.Background(), "company-1", "type-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
