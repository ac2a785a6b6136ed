package dto

import (
	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// SaveStepRequest merges partial input into one step's saved state. Only the
// populated sections are touched.
type SaveStepRequest struct {
	StepID          string                               `json:"step_id" binding:"required"`
	FormData        map[string]string                    `json:"form_data,omitempty"`
	UploadedFiles   []string                             `json:"uploaded_files,omitempty"`
	SignatureData   *models.SignatureData                `json:"signature_data,omitempty"`
	ChecklistStates map[string]bool                      `json:"checklist_states,omitempty"`
	QuizAnswers     map[string]string                    `json:"quiz_answers,omitempty"`
	DocumentData    map[string]models.DocumentBlockState `json:"document_data,omitempty"`
}

// CompleteStepRequest asks to mark a step complete after validating its
// required blocks.
type CompleteStepRequest struct {
	StepID string `json:"step_id" binding:"required"`
}

// ProgressResponse is the saved flow state plus derived navigation hints.
type ProgressResponse struct {
	Progress       models.CredentialProgress `json:"progress"`
	CompletedSteps []string                  `json:"completed_steps"`
	RequiredSteps  []string                  `json:"required_steps"`
	Percent        int                       `json:"percent"`
	CanSubmit      bool                      `json:"can_submit"`
}
