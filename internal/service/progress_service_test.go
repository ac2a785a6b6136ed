package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockProgressStore struct {
	progress   *models.CredentialProgress
	saved      *models.CredentialProgress
	saveCalls  int
	resetCalls int
}

func (m *mockProgressStore) Get(_ context.Context, _, _ string) (*models.CredentialProgress, error) {
	return m.progress, nil
}

func (m *mockProgressStore) Ensure(_ context.Context, companyID, driverID, typeID string) (*models.CredentialProgress, error) {
	if m.progress == nil {
		m.progress = &models.CredentialProgress{
			ID:               "progress-1",
			DriverID:         driverID,
			CredentialTypeID: typeID,
			CompanyID:        companyID,
			Status:           models.ProgressInProgress,
		}
	}
	return m.progress, nil
}

func (m *mockProgressStore) SaveSteps(_ context.Context, p *models.CredentialProgress) error {
	m.saveCalls++
	m.saved = p
	return nil
}

func (m *mockProgressStore) Reset(_ context.Context, _, _ string) error {
	m.resetCalls++
	m.progress = nil
	return nil
}

func mustContent(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func flowType(t *testing.T) *models.CredentialType {
	t.Helper()
	ct := uploadType("type-flow")
	ct.InstructionConfig = &models.InstructionConfig{
		Version: 1,
		Steps: []models.InstructionStep{
			{
				ID: "step-intro", Order: 1, Title: "Introduction", Type: models.StepInstruction, Required: false,
				Blocks: []models.ContentBlock{{ID: "b-text", Order: 1, Type: models.BlockText}},
			},
			{
				ID: "step-form", Order: 2, Title: "Policy details", Type: models.StepForm, Required: true,
				Blocks: []models.ContentBlock{
					{ID: "b-field", Order: 1, Type: models.BlockFormField, Content: mustContent(t, models.FormFieldContent{Key: "policy_number", Label: "Policy number", Required: true})},
					{ID: "b-quiz", Order: 2, Type: models.BlockQuizQuestion, Content: mustContent(t, models.QuizQuestionContent{Question: "Max speed in a loading zone?", CorrectAnswer: "5", Required: true})},
				},
			},
			{
				ID: "step-sign", Order: 3, Title: "Acknowledgement", Type: models.StepSignature, Required: true,
				Blocks: []models.ContentBlock{
					{ID: "b-sign", Order: 1, Type: models.BlockSignaturePad, Content: mustContent(t, models.SignaturePadContent{Label: "Signature", Required: true})},
				},
			},
		},
	}
	return ct
}

func newProgressFixture(t *testing.T) (*ProgressService, *mockProgressStore) {
	store := &mockProgressStore{}
	types := &mockTypeReader{types: map[string]*models.CredentialType{"type-flow": flowType(t)}}
	return NewProgressService(store, types, zap.NewNop()), store
}

func TestProgressSaveStepMergesWithoutValidation(t *testing.T) {
	svc, store := newProgressFixture(t)

	resp, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:   "step-form",
		FormData: map[string]string{"policy_number": "A-1234"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, store.saveCalls)
	assert.Equal(t, "A-1234", store.saved.StepData.State("step-form").FormData["policy_number"])
	assert.False(t, store.saved.StepData.State("step-form").Completed)
	assert.Equal(t, 0, resp.Percent)
	assert.False(t, resp.CanSubmit)

	// A second save merges rather than replaces.
	_, err = svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:      "step-form",
		QuizAnswers: map[string]string{"b-quiz": "5"},
	})
	require.NoError(t, err)
	state := store.saved.StepData.State("step-form")
	assert.Equal(t, "A-1234", state.FormData["policy_number"])
	assert.Equal(t, "5", state.QuizAnswers["b-quiz"])
}

func TestProgressSaveStepUnknownStep(t *testing.T) {
	svc, _ := newProgressFixture(t)

	_, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{StepID: "step-missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgressSaveStepRefusedAfterSubmission(t *testing.T) {
	svc, store := newProgressFixture(t)
	store.progress = &models.CredentialProgress{ID: "progress-1", Status: models.ProgressSubmitted}

	_, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{StepID: "step-form"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestProgressCompleteStepValidatesBlocks(t *testing.T) {
	svc, _ := newProgressFixture(t)

	// Nothing saved yet: both the form field and the quiz question block.
	_, err := svc.CompleteStep(context.Background(), "company-1", "driver-1", "type-flow", dto.CompleteStepRequest{StepID: "step-form"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Len(t, appErr.Details, 2)
}

func TestProgressCompleteStepRejectsWrongQuizAnswer(t *testing.T) {
	svc, _ := newProgressFixture(t)

	_, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:      "step-form",
		FormData:    map[string]string{"policy_number": "A-1234"},
		QuizAnswers: map[string]string{"b-quiz": "25"},
	})
	require.NoError(t, err)

	_, err = svc.CompleteStep(context.Background(), "company-1", "driver-1", "type-flow", dto.CompleteStepRequest{StepID: "step-form"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.Len(t, appErr.Details, 1)
	assert.Contains(t, appErr.Details[0], "wrong answer")
}

func TestProgressCompletingAllRequiredStepsCompletesFlow(t *testing.T) {
	svc, store := newProgressFixture(t)

	_, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:      "step-form",
		FormData:    map[string]string{"policy_number": "A-1234"},
		QuizAnswers: map[string]string{"b-quiz": "5"},
	})
	require.NoError(t, err)

	resp, err := svc.CompleteStep(context.Background(), "company-1", "driver-1", "type-flow", dto.CompleteStepRequest{StepID: "step-form"})
	require.NoError(t, err)
	assert.Equal(t, 50, resp.Percent)
	assert.False(t, resp.CanSubmit)
	assert.Equal(t, models.ProgressInProgress, store.saved.Status)

	_, err = svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:        "step-sign",
		SignatureData: &models.SignatureData{SignedName: "Dana Q. Driver"},
	})
	require.NoError(t, err)

	resp, err = svc.CompleteStep(context.Background(), "company-1", "driver-1", "type-flow", dto.CompleteStepRequest{StepID: "step-sign"})
	require.NoError(t, err)
	assert.Equal(t, 100, resp.Percent)
	assert.True(t, resp.CanSubmit)
	assert.Equal(t, models.ProgressCompleted, store.saved.Status)
	assert.NotNil(t, store.saved.CompletedAt)
}

func TestProgressGetCreatesFreshRow(t *testing.T) {
	svc, store := newProgressFixture(t)

	resp, err := svc.Get(context.Background(), "company-1", "driver-1", "type-flow")
	require.NoError(t, err)
	assert.NotNil(t, store.progress)
	assert.Equal(t, 0, resp.Percent)
	assert.Equal(t, []string{"step-form", "step-sign"}, resp.RequiredSteps)
}

func TestProgressClearResetsSavedState(t *testing.T) {
	svc, store := newProgressFixture(t)

	_, err := svc.SaveStep(context.Background(), "company-1", "driver-1", "type-flow", dto.SaveStepRequest{
		StepID:   "step-form",
		FormData: map[string]string{"policy_number": "POL-123"},
	})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background(), "driver-1", "type-flow"))
	assert.Equal(t, 1, store.resetCalls)
	assert.Nil(t, store.progress)
}

func TestProgressRefusedForTypesWithoutFlow(t *testing.T) {
	store := &mockProgressStore{}
	types := &mockTypeReader{types: map[string]*models.CredentialType{"type-plain": uploadType("type-plain")}}
	svc := NewProgressService(store, types, zap.NewNop())

	_, err := svc.Get(context.Background(), "company-1", "driver-1", "type-plain")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
