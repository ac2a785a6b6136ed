package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type credentialTypeStore interface {
	GetByID(ctx context.Context, id string) (*models.CredentialType, error)
	List(ctx context.Context, companyID string, category models.CredentialCategory, status models.CredentialTypeStatus) ([]models.CredentialType, error)
	Create(ctx context.Context, t *models.CredentialType) error
	Update(ctx context.Context, t *models.CredentialType) error
	Archive(ctx context.Context, id string) error
}

// CredentialTypeServiceConfig carries tenant-independent defaults.
type CredentialTypeServiceConfig struct {
	DefaultWarningDays int
}

// CredentialTypeService manages requirement definitions and their publish
// workflow. New types start as drafts; publishing takes them live
// immediately or schedules them for an effective date.
type CredentialTypeService struct {
	types       credentialTypeStore
	warningDays int
	logger      *zap.Logger
}

// NewCredentialTypeService constructs a CredentialTypeService.
func NewCredentialTypeService(types credentialTypeStore, cfg CredentialTypeServiceConfig, logger *zap.Logger) *CredentialTypeService {
	warningDays := cfg.DefaultWarningDays
	if warningDays <= 0 {
		warningDays = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialTypeService{types: types, warningDays: warningDays, logger: logger}
}

// List returns a company's credential types matching the filter.
func (s *CredentialTypeService) List(ctx context.Context, companyID string, req dto.CredentialTypeListRequest) ([]models.CredentialType, error) {
	types, err := s.types.List(ctx, companyID, req.Category, req.Status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list credential types")
	}
	return types, nil
}

// Get fetches one credential type scoped to the caller's company.
func (s *CredentialTypeService) Get(ctx context.Context, companyID, id string) (*models.CredentialType, error) {
	t, err := s.loadOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Create defines a new requirement as a draft.
func (s *CredentialTypeService) Create(ctx context.Context, companyID, creatorID string, req dto.CreateCredentialTypeRequest) (*models.CredentialType, error) {
	if req.Scope == models.ScopeBroker && req.BrokerID == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "broker-scoped types need a broker")
	}
	if req.ExpirationType == models.ExpirationFixedInterval && (req.ExpirationIntervalDays == nil || *req.ExpirationIntervalDays <= 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fixed-interval expiration needs a positive interval")
	}

	t := &models.CredentialType{
		ID:                     uuid.NewString(),
		CompanyID:              companyID,
		Name:                   req.Name,
		Description:            req.Description,
		Category:               req.Category,
		Scope:                  defaultScope(req.Scope),
		BrokerID:               req.BrokerID,
		EmploymentType:         defaultEmployment(req.EmploymentType),
		Requirement:            defaultRequirement(req.Requirement),
		SubmissionType:         req.SubmissionType,
		RequiresDriverAction:   req.SubmissionType != models.SubmissionAdminVerified,
		ExpirationType:         defaultExpiration(req.ExpirationType),
		ExpirationIntervalDays: req.ExpirationIntervalDays,
		ExpirationWarningDays:  s.warningDays,
		EffectiveDate:          req.EffectiveDate,
		Status:                 models.TypeStatusDraft,
		InstructionConfig:      req.InstructionConfig,
		IsActive:               true,
		CreatedBy:              &creatorID,
	}
	if req.RequiresDriverAction != nil {
		t.RequiresDriverAction = *req.RequiresDriverAction
	}
	if req.ExpirationWarningDays != nil && *req.ExpirationWarningDays > 0 {
		t.ExpirationWarningDays = *req.ExpirationWarningDays
	}
	if req.GracePeriodDays != nil && *req.GracePeriodDays > 0 {
		t.GracePeriodDays = *req.GracePeriodDays
	}
	if req.DisplayOrder != nil {
		t.DisplayOrder = *req.DisplayOrder
	}
	if t.InstructionConfig != nil && t.InstructionConfig.Version == 0 {
		t.InstructionConfig.Version = 1
	}

	if err := s.types.Create(ctx, t); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create credential type")
	}
	return t, nil
}

// Update applies partial edits. Archived types are immutable.
func (s *CredentialTypeService) Update(ctx context.Context, companyID, id string, req dto.UpdateCredentialTypeRequest) (*models.CredentialType, error) {
	t, err := s.loadOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if t.Status == models.TypeStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "archived credential types cannot be edited")
	}

	if req.Name != nil {
		t.Name = *req.Name
	}
	if req.Description != nil {
		t.Description = req.Description
	}
	if req.Requirement != nil {
		t.Requirement = *req.Requirement
	}
	if req.EmploymentType != nil {
		t.EmploymentType = *req.EmploymentType
	}
	if req.ExpirationType != nil {
		t.ExpirationType = *req.ExpirationType
	}
	if req.ExpirationIntervalDays != nil {
		t.ExpirationIntervalDays = req.ExpirationIntervalDays
	}
	if req.ExpirationWarningDays != nil && *req.ExpirationWarningDays > 0 {
		t.ExpirationWarningDays = *req.ExpirationWarningDays
	}
	if req.GracePeriodDays != nil {
		t.GracePeriodDays = *req.GracePeriodDays
	}
	if req.InstructionConfig != nil {
		// Config edits bump the version so saved progress against the old
		// shape can be detected.
		next := *req.InstructionConfig
		if t.InstructionConfig != nil && next.Version <= t.InstructionConfig.Version {
			next.Version = t.InstructionConfig.Version + 1
		} else if next.Version == 0 {
			next.Version = 1
		}
		t.InstructionConfig = &next
	}
	if req.DisplayOrder != nil {
		t.DisplayOrder = *req.DisplayOrder
	}
	if t.ExpirationType == models.ExpirationFixedInterval && (t.ExpirationIntervalDays == nil || *t.ExpirationIntervalDays <= 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "fixed-interval expiration needs a positive interval")
	}

	if err := s.types.Update(ctx, t); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update credential type")
	}
	return t, nil
}

// Publish takes a draft live. A future effective date schedules the type
// instead of activating it immediately.
func (s *CredentialTypeService) Publish(ctx context.Context, companyID, id string, req dto.PublishCredentialTypeRequest) (*models.CredentialType, error) {
	t, err := s.loadOwned(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if t.Status != models.TypeStatusDraft && t.Status != models.TypeStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "only drafts can be published")
	}

	now := time.Now().UTC()
	if req.EffectiveDate != nil {
		t.EffectiveDate = req.EffectiveDate
	}
	if t.EffectiveDate != nil && t.EffectiveDate.After(now) {
		t.Status = models.TypeStatusScheduled
	} else {
		t.Status = models.TypeStatusActive
		if t.EffectiveDate == nil {
			t.EffectiveDate = &now
		}
	}

	if err := s.types.Update(ctx, t); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to publish credential type")
	}
	return t, nil
}

// Archive retires a type. Existing credentials keep their rows; the type
// simply stops appearing in checklists.
func (s *CredentialTypeService) Archive(ctx context.Context, companyID, id string) error {
	if _, err := s.loadOwned(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.types.Archive(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive credential type")
	}
	return nil
}

func (s *CredentialTypeService) loadOwned(ctx context.Context, companyID, id string) (*models.CredentialType, error) {
	t, err := s.types.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "credential type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential type")
	}
	if t.CompanyID != companyID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "credential type belongs to another company")
	}
	return t, nil
}

func defaultScope(s models.CredentialScope) models.CredentialScope {
	if s == "" {
		return models.ScopeGlobal
	}
	return s
}

func defaultEmployment(e models.TypeEmploymentType) models.TypeEmploymentType {
	if e == "" {
		return models.EmploymentBoth
	}
	return e
}

func defaultRequirement(r models.RequirementLevel) models.RequirementLevel {
	if r == "" {
		return models.RequirementRequired
	}
	return r
}

func defaultExpiration(e models.ExpirationType) models.ExpirationType {
	if e == "" {
		return models.ExpirationNever
	}
	return e
}
