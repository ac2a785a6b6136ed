package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ProgressStatus tracks a driver's passage through an instruction flow.
type ProgressStatus string

const (
	ProgressInProgress ProgressStatus = "in_progress"
	ProgressCompleted  ProgressStatus = "completed"
	ProgressSubmitted  ProgressStatus = "submitted"
)

// DocumentBlockState holds the upload and extracted fields for one document
// block inside a step.
type DocumentBlockState struct {
	FileURL         string            `json:"file_url,omitempty"`
	ExtractedFields map[string]string `json:"extracted_fields,omitempty"`
}

// StepState is the saved state for a single step. Which fields are populated
// depends on the block types the step contains.
type StepState struct {
	Completed       bool                          `json:"completed"`
	CompletedAt     *time.Time                    `json:"completed_at,omitempty"`
	FormData        map[string]string             `json:"form_data,omitempty"`
	UploadedFiles   []string                      `json:"uploaded_files,omitempty"`
	SignatureData   *SignatureData                `json:"signature_data,omitempty"`
	ChecklistStates map[string]bool               `json:"checklist_states,omitempty"`
	QuizAnswers     map[string]string             `json:"quiz_answers,omitempty"`
	DocumentData    map[string]DocumentBlockState `json:"document_data,omitempty"`
}

// StepProgressData maps step IDs to their saved state. Stored as JSONB.
type StepProgressData struct {
	Steps map[string]StepState `json:"steps"`
}

func (d StepProgressData) Value() (driver.Value, error) {
	if d.Steps == nil {
		d.Steps = map[string]StepState{}
	}
	return json.Marshal(d)
}

func (d *StepProgressData) Scan(src interface{}) error {
	if src == nil {
		d.Steps = map[string]StepState{}
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("step_data: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, d)
}

// State returns the saved state for a step, or a zero state when the step has
// never been touched.
func (d StepProgressData) State(stepID string) StepState {
	if d.Steps == nil {
		return StepState{}
	}
	return d.Steps[stepID]
}

// CredentialProgress is a driver's in-flight passage through a credential
// type's instruction flow, saved so a partially completed flow survives
// app restarts.
type CredentialProgress struct {
	ID               string           `db:"id" json:"id"`
	DriverID         string           `db:"driver_id" json:"driver_id"`
	CredentialTypeID string           `db:"credential_type_id" json:"credential_type_id"`
	CompanyID        string           `db:"company_id" json:"company_id"`
	CurrentStepID    *string          `db:"current_step_id" json:"current_step_id,omitempty"`
	StepData         StepProgressData `db:"step_data" json:"step_data"`
	Status           ProgressStatus   `db:"status" json:"status"`
	StartedAt        time.Time        `db:"started_at" json:"started_at"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at,omitempty"`
	SubmittedAt      *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}
