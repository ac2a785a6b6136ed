package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type credentialStore interface {
	GetByID(ctx context.Context, table models.CredentialTable, id string) (*models.Credential, error)
	GetForSubjectAndType(ctx context.Context, table models.CredentialTable, subjectID, typeID string) (*models.Credential, error)
	ListForSubject(ctx context.Context, table models.CredentialTable, subjectID string) ([]models.Credential, error)
	Ensure(ctx context.Context, table models.CredentialTable, companyID, subjectID, typeID string) (*models.Credential, error)
	Submit(ctx context.Context, table models.CredentialTable, cred *models.Credential) (*models.Credential, error)
	Approve(ctx context.Context, table models.CredentialTable, id, reviewerID string, expiresAt *time.Time, reviewNotes *string) (*models.Credential, error)
	Reject(ctx context.Context, table models.CredentialTable, id, reviewerID, reason string, reviewNotes *string) (*models.Credential, error)
	Verify(ctx context.Context, table models.CredentialTable, id, adminID string, expiresAt *time.Time, notes *string) (*models.Credential, error)
	Unverify(ctx context.Context, table models.CredentialTable, id string) (*models.Credential, error)
	ReviewQueue(ctx context.Context, table models.CredentialTable, companyID, typeID string, limit, offset int) ([]models.ReviewQueueItem, int, error)
	ReviewStats(ctx context.Context, companyID string) (*models.ReviewStats, error)
}

type credentialTypeReader interface {
	GetByID(ctx context.Context, id string) (*models.CredentialType, error)
	ListLiveForSubject(ctx context.Context, companyID string, category models.CredentialCategory, employment models.DriverEmploymentType) ([]models.CredentialType, error)
}

type historyStore interface {
	Append(ctx context.Context, h *models.CredentialHistory) error
	ListForCredential(ctx context.Context, credentialID string) ([]models.CredentialHistory, error)
}

type flowProgressReader interface {
	Get(ctx context.Context, driverID, typeID string) (*models.CredentialProgress, error)
	MarkSubmitted(ctx context.Context, id string) error
	Reset(ctx context.Context, driverID, typeID string) error
}

type credentialNotifier interface {
	CredentialApproved(table models.CredentialTable, credential *models.Credential, typeName string)
	CredentialRejected(table models.CredentialTable, credential *models.Credential, typeName, reason string)
}

type credentialAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// CredentialService drives the credential lifecycle: ensure, submit, review,
// verify. Every transition appends a history snapshot.
type CredentialService struct {
	creds    credentialStore
	types    credentialTypeReader
	history  historyStore
	progress flowProgressReader
	notifier credentialNotifier
	audit    credentialAuditLogger
	logger   *zap.Logger
}

// NewCredentialService constructs a CredentialService.
func NewCredentialService(creds credentialStore, types credentialTypeReader, history historyStore, progress flowProgressReader, notifier credentialNotifier, audit credentialAuditLogger, logger *zap.Logger) *CredentialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CredentialService{
		creds:    creds,
		types:    types,
		history:  history,
		progress: progress,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

// Checklist returns the subject's full requirement list with derived display
// statuses, creating placeholder rows for types the subject has never
// touched.
func (s *CredentialService) Checklist(ctx context.Context, table models.CredentialTable, companyID, subjectID string, employment models.DriverEmploymentType, subjectCreatedAt *time.Time) (*dto.CredentialChecklistResponse, error) {
	category := models.CategoryDriver
	if table == models.TableVehicleCredentials {
		category = models.CategoryVehicle
	}
	types, err := s.types.ListLiveForSubject(ctx, companyID, category, employment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential types")
	}

	now := time.Now().UTC()
	resp := &dto.CredentialChecklistResponse{SubjectID: subjectID, Items: make([]models.CredentialView, 0, len(types))}
	for i := range types {
		ct := &types[i]
		cred, err := s.creds.Ensure(ctx, table, companyID, subjectID, ct.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ensure credential")
		}
		view := buildView(cred, ct, subjectCreatedAt, now)
		resp.Items = append(resp.Items, view)
		if ct.Requirement == models.RequirementRequired {
			resp.Required++
			if satisfied(view.DisplayStatus) {
				resp.Satisfied++
			}
		}
	}
	return resp, nil
}

// Submit records a driver submission and moves the credential to
// pending_review. Multi-step types require their flow's required steps to be
// complete first.
func (s *CredentialService) Submit(ctx context.Context, table models.CredentialTable, companyID, subjectID, typeID string, req dto.SubmitCredentialRequest) (*models.Credential, error) {
	ct, err := s.types.GetByID(ctx, typeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "credential type not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential type")
	}
	if ct.AdminOnly() {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is completed by an administrator")
	}
	if err := validateSubmission(ct, req); err != nil {
		return nil, err
	}

	cred, err := s.creds.Ensure(ctx, table, companyID, subjectID, typeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to ensure credential")
	}
	if !CanSubmit(cred, ct) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is already awaiting review")
	}

	var flowProgress *models.CredentialProgress
	if ct.HasInstructionFlow() && table == models.TableDriverCredentials {
		flowProgress, err = s.progress.Get(ctx, subjectID, typeID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, appErrors.Clone(appErrors.ErrValidation, "instruction flow has not been started")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load flow progress")
		}
		if missing := missingRequiredSteps(ct.InstructionConfig, flowProgress.StepData); len(missing) > 0 {
			return nil, appErrors.WithDetails(appErrors.Clone(appErrors.ErrValidation, "required steps are incomplete"), missing)
		}
	}

	cred.DocumentURL = req.DocumentURL
	cred.DocumentURLs = req.DocumentURLs
	cred.FormData = req.FormData
	cred.SignatureData = req.SignatureData
	cred.EnteredDate = req.EnteredDate
	cred.DriverExpirationDate = req.DriverExpirationDate
	cred.Notes = req.Notes

	updated, err := s.creds.Submit(ctx, table, cred)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is already awaiting review")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to submit credential")
	}

	s.appendHistory(ctx, table, updated, req)
	if flowProgress != nil {
		if err := s.progress.MarkSubmitted(ctx, flowProgress.ID); err != nil {
			s.logger.Warn("failed to mark flow progress submitted", zap.String("credentialId", updated.ID), zap.Error(err))
		}
	}
	s.emitAudit(ctx, subjectID, models.AuditActionCredentialSubmit, string(table), updated.ID)
	return updated, nil
}

// Approve records an approval and stamps the derived expiry. Stale decisions
// against rows no longer pending are refused. A non-empty companyID confines
// the lookup to that tenant.
func (s *CredentialService) Approve(ctx context.Context, table models.CredentialTable, companyID, credentialID, reviewerID string, req dto.ApproveCredentialRequest) (*models.Credential, error) {
	cred, ct, err := s.load(ctx, table, companyID, credentialID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	expiresAt := DeriveExpiresAt(ct, cred, req.ExpiresAt, now)

	updated, err := s.creds.Approve(ctx, table, credentialID, reviewerID, expiresAt, req.ReviewNotes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is not awaiting review")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to approve credential")
	}

	s.appendHistory(ctx, table, updated, nil)
	if s.notifier != nil {
		s.notifier.CredentialApproved(table, updated, ct.Name)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionCredentialReview, string(table), updated.ID)
	return updated, nil
}

// Reject records a rejection with its reason and clears any saved flow
// progress so the driver starts the resubmission fresh.
func (s *CredentialService) Reject(ctx context.Context, table models.CredentialTable, companyID, credentialID, reviewerID string, req dto.RejectCredentialRequest) (*models.Credential, error) {
	cred, ct, err := s.load(ctx, table, companyID, credentialID)
	if err != nil {
		return nil, err
	}

	updated, err := s.creds.Reject(ctx, table, credentialID, reviewerID, req.Reason, req.ReviewNotes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is not awaiting review")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject credential")
	}

	s.appendHistory(ctx, table, updated, nil)
	if ct.HasInstructionFlow() && table == models.TableDriverCredentials {
		if err := s.progress.Reset(ctx, cred.SubjectID, cred.CredentialTypeID); err != nil {
			s.logger.Warn("failed to reset flow progress after rejection", zap.String("credentialId", updated.ID), zap.Error(err))
		}
	}
	if s.notifier != nil {
		s.notifier.CredentialRejected(table, updated, ct.Name, req.Reason)
	}
	s.emitAudit(ctx, reviewerID, models.AuditActionCredentialReview, string(table), updated.ID)
	return updated, nil
}

// Verify completes an admin-verified credential on the subject's behalf.
func (s *CredentialService) Verify(ctx context.Context, table models.CredentialTable, companyID, credentialID, adminID string, req dto.VerifyCredentialRequest) (*models.Credential, error) {
	cred, ct, err := s.load(ctx, table, companyID, credentialID)
	if err != nil {
		return nil, err
	}
	if !ct.AdminOnly() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "credential type requires a driver submission")
	}
	now := time.Now().UTC()
	expiresAt := DeriveExpiresAt(ct, cred, req.ExpiresAt, now)

	updated, err := s.creds.Verify(ctx, table, credentialID, adminID, expiresAt, req.Notes)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is already verified")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify credential")
	}

	s.appendHistory(ctx, table, updated, nil)
	s.emitAudit(ctx, adminID, models.AuditActionCredentialReview, string(table), updated.ID)
	return updated, nil
}

// Unverify reverses an admin verification back to not_submitted.
func (s *CredentialService) Unverify(ctx context.Context, table models.CredentialTable, companyID, credentialID, adminID string) (*models.Credential, error) {
	if _, _, err := s.load(ctx, table, companyID, credentialID); err != nil {
		return nil, err
	}
	updated, err := s.creds.Unverify(ctx, table, credentialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "credential is not verified")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to unverify credential")
	}
	s.appendHistory(ctx, table, updated, nil)
	s.emitAudit(ctx, adminID, models.AuditActionCredentialReview, string(table), updated.ID)
	return updated, nil
}

// History returns the full transition trail for one credential.
func (s *CredentialService) History(ctx context.Context, table models.CredentialTable, companyID, credentialID string) ([]models.CredentialHistory, error) {
	if _, _, err := s.load(ctx, table, companyID, credentialID); err != nil {
		return nil, err
	}
	trail, err := s.history.ListForCredential(ctx, credentialID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential history")
	}
	return trail, nil
}

// ReviewQueue lists pending submissions with workload stats.
func (s *CredentialService) ReviewQueue(ctx context.Context, companyID string, req dto.ReviewQueueRequest) (*dto.ReviewQueueResponse, *models.Pagination, error) {
	table := req.Table
	if table == "" {
		table = models.TableDriverCredentials
	}
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	items, total, err := s.creds.ReviewQueue(ctx, table, companyID, req.TypeID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review queue")
	}
	stats, err := s.creds.ReviewStats(ctx, companyID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review stats")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return &dto.ReviewQueueResponse{Items: items, Stats: *stats}, pagination, nil
}

// load fetches a credential and its type. Rows outside companyID are reported
// as not found so cross-tenant IDs leak nothing; an empty companyID skips the
// tenant check.
func (s *CredentialService) load(ctx context.Context, table models.CredentialTable, companyID, credentialID string) (*models.Credential, *models.CredentialType, error) {
	cred, err := s.creds.GetByID(ctx, table, credentialID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "credential not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential")
	}
	if companyID != "" && cred.CompanyID != companyID {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "credential not found")
	}
	ct, err := s.types.GetByID(ctx, cred.CredentialTypeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "credential type not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load credential type")
	}
	return cred, ct, nil
}

func (s *CredentialService) appendHistory(ctx context.Context, table models.CredentialTable, cred *models.Credential, submission interface{}) {
	var data json.RawMessage
	if submission != nil {
		if raw, err := json.Marshal(submission); err == nil {
			data = raw
		}
	}
	h := &models.CredentialHistory{
		CredentialID:      cred.ID,
		CredentialTable:   table,
		CompanyID:         cred.CompanyID,
		Status:            cred.Status,
		SubmissionVersion: cred.SubmissionVersion,
		SubmissionData:    data,
		SubmittedAt:       cred.SubmittedAt,
		ReviewedAt:        cred.ReviewedAt,
		ReviewedBy:        cred.ReviewedBy,
		ReviewNotes:       cred.ReviewNotes,
		RejectionReason:   cred.RejectionReason,
		ExpiresAt:         cred.ExpiresAt,
	}
	if err := s.history.Append(ctx, h); err != nil {
		s.logger.Warn("failed to append credential history", zap.String("credentialId", cred.ID), zap.Error(err))
	}
}

func (s *CredentialService) emitAudit(ctx context.Context, userID, action, resource, resourceID string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{UserID: &userID, Action: action, Resource: resource, ResourceID: &resourceID}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record credential audit log", zap.Error(err))
	}
}

func buildView(cred *models.Credential, ct *models.CredentialType, subjectCreatedAt *time.Time, now time.Time) models.CredentialView {
	view := models.CredentialView{
		Credential:    *cred,
		Type:          *ct,
		DisplayStatus: ResolveDisplayStatus(cred, ct, subjectCreatedAt, now),
		CanSubmit:     CanSubmit(cred, ct),
	}
	view.DaysUntilExpiration = DaysUntilExpiration(cred, now)
	if view.DisplayStatus == models.DisplayGracePeriod {
		if end := ct.GracePeriodEnd(subjectCreatedAt); !end.IsZero() {
			view.GracePeriodEndsAt = &end
		}
	}
	return view
}

func satisfied(status models.DisplayStatus) bool {
	return status == models.DisplayApproved || status == models.DisplayExpiring
}

func validateSubmission(ct *models.CredentialType, req dto.SubmitCredentialRequest) error {
	if ct.HasInstructionFlow() {
		return nil
	}
	switch ct.SubmissionType {
	case models.SubmissionDocumentUpload, models.SubmissionPhoto:
		if req.DocumentURL == nil && len(req.DocumentURLs) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "a document is required")
		}
	case models.SubmissionSignature:
		if req.SignatureData == nil || req.SignatureData.SignedName == "" {
			return appErrors.Clone(appErrors.ErrValidation, "a signature is required")
		}
	case models.SubmissionForm:
		if len(req.FormData) == 0 {
			return appErrors.Clone(appErrors.ErrValidation, "form data is required")
		}
	case models.SubmissionDateEntry:
		if req.EnteredDate == nil {
			return appErrors.Clone(appErrors.ErrValidation, "a date is required")
		}
	}
	if ct.ExpirationType == models.ExpirationDriverSpecified && req.DriverExpirationDate == nil {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s requires an expiration date", ct.Name))
	}
	return nil
}
