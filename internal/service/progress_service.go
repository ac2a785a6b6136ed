package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type progressStore interface {
	Get(ctx context.Context, driverID, typeID string) (*models.CredentialProgress, error)
	Ensure(ctx context.Context, companyID, driverID, typeID string) (*models.CredentialProgress, error)
	SaveSteps(ctx context.Context, p *models.CredentialProgress) error
	Reset(ctx context.Context, driverID, typeID string) error
}

type progressTypeReader interface {
	GetByID(ctx context.Context, id string) (*models.CredentialType, error)
}

// ProgressService tracks a driver's passage through a credential type's
// instruction flow: partial saves, per-step completion, and the derived
// flow-level state.
type ProgressService struct {
	progress progressStore
	types    progressTypeReader
	logger   *zap.Logger
}

// NewProgressService constructs a ProgressService.
func NewProgressService(progress progressStore, types progressTypeReader, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{progress: progress, types: types, logger: logger}
}

// Get returns the driver's saved progress for a type, creating a fresh row
// on first access.
func (s *ProgressService) Get(ctx context.Context, companyID, driverID, typeID string) (*dto.ProgressResponse, error) {
	ct, err := s.loadFlowType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	p, err := s.progress.Ensure(ctx, companyID, driverID, typeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flow progress")
	}
	return buildProgressResponse(ct.InstructionConfig, p), nil
}

// SaveStep merges partial input into one step's saved state without touching
// its completion. Saving never validates; drivers can stash anything and
// come back later.
func (s *ProgressService) SaveStep(ctx context.Context, companyID, driverID, typeID string, req dto.SaveStepRequest) (*dto.ProgressResponse, error) {
	ct, err := s.loadFlowType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	step := findStep(ct.InstructionConfig, req.StepID)
	if step == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "step not found in instruction flow")
	}
	p, err := s.progress.Ensure(ctx, companyID, driverID, typeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flow progress")
	}
	if p.Status == models.ProgressSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "flow has already been submitted")
	}

	state := p.StepData.State(req.StepID)
	mergeStepState(&state, req)
	if p.StepData.Steps == nil {
		p.StepData.Steps = map[string]models.StepState{}
	}
	p.StepData.Steps[req.StepID] = state
	p.CurrentStepID = &req.StepID

	if err := s.progress.SaveSteps(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save flow progress")
	}
	return buildProgressResponse(ct.InstructionConfig, p), nil
}

// CompleteStep validates a step's required blocks against the saved state
// and marks it complete. Completing the last required step completes the
// flow.
func (s *ProgressService) CompleteStep(ctx context.Context, companyID, driverID, typeID string, req dto.CompleteStepRequest) (*dto.ProgressResponse, error) {
	ct, err := s.loadFlowType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	step := findStep(ct.InstructionConfig, req.StepID)
	if step == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "step not found in instruction flow")
	}
	p, err := s.progress.Ensure(ctx, companyID, driverID, typeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flow progress")
	}
	if p.Status == models.ProgressSubmitted {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "flow has already been submitted")
	}

	state := p.StepData.State(req.StepID)
	if missing := missingBlockInputs(step, state); len(missing) > 0 {
		return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "step has incomplete required inputs"), missing)
	}

	now := time.Now().UTC()
	state.Completed = true
	state.CompletedAt = &now
	if p.StepData.Steps == nil {
		p.StepData.Steps = map[string]models.StepState{}
	}
	p.StepData.Steps[req.StepID] = state
	p.CurrentStepID = &req.StepID

	if len(missingRequiredSteps(ct.InstructionConfig, p.StepData)) == 0 {
		p.Status = models.ProgressCompleted
		if p.CompletedAt == nil {
			p.CompletedAt = &now
		}
	}

	if err := s.progress.SaveSteps(ctx, p); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save flow progress")
	}
	return buildProgressResponse(ct.InstructionConfig, p), nil
}

// Clear wipes the driver's saved progress so the flow starts over.
func (s *ProgressService) Clear(ctx context.Context, driverID, typeID string) error {
	if _, err := s.loadFlowType(ctx, typeID); err != nil {
		return err
	}
	if err := s.progress.Reset(ctx, driverID, typeID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear flow progress")
	}
	return nil
}

func (s *ProgressService) loadFlowType(ctx context.Context, typeID string) (*models.CredentialType, error) {
	ct, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "credential type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential type")
	}
	if !ct.HasInstructionFlow() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "credential type has no instruction flow")
	}
	return ct, nil
}

func mergeStepState(state *models.StepState, req dto.SaveStepRequest) {
	if len(req.FormData) > 0 {
		if state.FormData == nil {
			state.FormData = map[string]string{}
		}
		for k, v := range req.FormData {
			state.FormData[k] = v
		}
	}
	if req.UploadedFiles != nil {
		state.UploadedFiles = req.UploadedFiles
	}
	if req.SignatureData != nil {
		state.SignatureData = req.SignatureData
	}
	if len(req.ChecklistStates) > 0 {
		if state.ChecklistStates == nil {
			state.ChecklistStates = map[string]bool{}
		}
		for k, v := range req.ChecklistStates {
			state.ChecklistStates[k] = v
		}
	}
	if len(req.QuizAnswers) > 0 {
		if state.QuizAnswers == nil {
			state.QuizAnswers = map[string]string{}
		}
		for k, v := range req.QuizAnswers {
			state.QuizAnswers[k] = v
		}
	}
	if len(req.DocumentData) > 0 {
		if state.DocumentData == nil {
			state.DocumentData = map[string]models.DocumentBlockState{}
		}
		for k, v := range req.DocumentData {
			state.DocumentData[k] = v
		}
	}
}

func findStep(cfg *models.InstructionConfig, stepID string) *models.InstructionStep {
	for i := range cfg.Steps {
		if cfg.Steps[i].ID == stepID {
			return &cfg.Steps[i]
		}
	}
	return nil
}

// missingBlockInputs lists the required inputs a step's saved state does not
// yet satisfy.
func missingBlockInputs(step *models.InstructionStep, state models.StepState) []string {
	var missing []string
	for _, block := range step.Blocks {
		if !block.InputBlock() {
			continue
		}
		switch block.Type {
		case models.BlockFormField:
			c, err := block.FormField()
			if err != nil || !c.Required {
				continue
			}
			if state.FormData[c.Key] == "" {
				missing = append(missing, fmt.Sprintf("field %q is required", c.Label))
			}
		case models.BlockFileUpload:
			c, err := block.FileUpload()
			if err != nil || !c.Required {
				continue
			}
			if len(state.UploadedFiles) == 0 {
				missing = append(missing, fmt.Sprintf("upload %q is required", c.Label))
			}
		case models.BlockDocument:
			c, err := block.Document()
			if err != nil || !c.Required {
				continue
			}
			doc := state.DocumentData[block.ID]
			if doc.FileURL == "" {
				missing = append(missing, fmt.Sprintf("document %q is required", c.Label))
				continue
			}
			for _, field := range c.ExtractionFields {
				if field.Required && doc.ExtractedFields[field.Key] == "" {
					missing = append(missing, fmt.Sprintf("document field %q is required", field.Label))
				}
			}
		case models.BlockSignaturePad:
			c, err := block.SignaturePad()
			if err != nil || !c.Required {
				continue
			}
			if state.SignatureData == nil || state.SignatureData.SignedName == "" {
				missing = append(missing, fmt.Sprintf("signature %q is required", c.Label))
			}
		case models.BlockChecklist:
			c, err := block.Checklist()
			if err != nil || !c.RequireAllChecked {
				continue
			}
			for _, item := range c.Items {
				if !state.ChecklistStates[item.ID] {
					missing = append(missing, fmt.Sprintf("checklist item %q must be checked", item.Label))
				}
			}
		case models.BlockQuizQuestion:
			c, err := block.QuizQuestion()
			if err != nil || !c.Required {
				continue
			}
			answer := state.QuizAnswers[block.ID]
			if answer == "" {
				missing = append(missing, fmt.Sprintf("question %q must be answered", c.Question))
			} else if c.CorrectAnswer != "" && answer != c.CorrectAnswer {
				missing = append(missing, fmt.Sprintf("question %q has a wrong answer", c.Question))
			}
		}
	}
	return missing
}

// missingRequiredSteps lists required steps not yet marked complete.
func missingRequiredSteps(cfg *models.InstructionConfig, data models.StepProgressData) []string {
	var missing []string
	for _, step := range cfg.Steps {
		if !step.Required {
			continue
		}
		if !data.State(step.ID).Completed {
			missing = append(missing, step.Title)
		}
	}
	return missing
}

func buildProgressResponse(cfg *models.InstructionConfig, p *models.CredentialProgress) *dto.ProgressResponse {
	resp := &dto.ProgressResponse{Progress: *p}
	totalRequired := 0
	completedRequired := 0
	for _, step := range cfg.Steps {
		if step.Required {
			resp.RequiredSteps = append(resp.RequiredSteps, step.ID)
			totalRequired++
		}
		if p.StepData.State(step.ID).Completed {
			resp.CompletedSteps = append(resp.CompletedSteps, step.ID)
			if step.Required {
				completedRequired++
			}
		}
	}
	if totalRequired == 0 {
		resp.Percent = 100
	} else {
		resp.Percent = int(math.Round(100 * float64(completedRequired) / float64(totalRequired)))
	}
	resp.CanSubmit = completedRequired == totalRequired && p.Status != models.ProgressSubmitted
	return resp
}
