package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
	"github.com/fleetpass/fleet-compliance-api/pkg/export"
)

type reportHistoryLister interface {
	ListForCompany(ctx context.Context, companyID string, from, to *time.Time, typeID, driverID string) ([]models.CredentialHistory, error)
}

type exportObjectStore interface {
	UploadExport(ctx context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error)
	ExportURL(ctx context.Context, objectKey string, ttl time.Duration) (string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes report generation.
type ExportConfig struct {
	DownloadTTL time.Duration
}

// ExportService renders review-history exports and stashes them in object
// storage behind presigned links.
type ExportService struct {
	history reportHistoryLister
	store   exportObjectStore
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(history reportHistoryLister, store exportObjectStore, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DownloadTTL <= 0 {
		cfg.DownloadTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		history: history,
		store:   store,
		csv:     csv,
		pdf:     pdf,
		logger:  logger,
		cfg:     cfg,
	}
}

// GenerateComplianceReport renders the review trail matching the filters and
// returns a time-limited download link.
func (s *ExportService) GenerateComplianceReport(ctx context.Context, companyID string, req dto.ComplianceReportRequest) (*dto.ComplianceReportResponse, error) {
	format := strings.ToLower(strings.TrimSpace(req.Format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", req.Format))
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report window ends before it starts")
	}

	rows, err := s.history.ListForCompany(ctx, companyID, req.From, req.To, req.TypeID, req.DriverID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load review history")
	}

	dataset := buildComplianceDataset(rows)

	var payload []byte
	var contentType string
	switch format {
	case "csv":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	case "pdf":
		payload, err = s.pdf.Render(dataset, "Compliance Review History")
		contentType = "application/pdf"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	objectKey := fmt.Sprintf("compliance/%s/%s-%s.%s", companyID, time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8], format)
	if _, err := s.store.UploadExport(ctx, objectKey, bytes.NewReader(payload), int64(len(payload)), contentType); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}

	url, err := s.store.ExportURL(ctx, objectKey, s.cfg.DownloadTTL)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}

	s.logger.Info("compliance report generated",
		zap.String("companyId", companyID),
		zap.String("objectKey", objectKey),
		zap.Int("rows", len(rows)))

	return &dto.ComplianceReportResponse{
		ObjectKey:   objectKey,
		DownloadURL: url,
		ExpiresAt:   time.Now().UTC().Add(s.cfg.DownloadTTL),
		RowCount:    len(rows),
	}, nil
}

// Width weights keep UUID and timestamp columns readable on the PDF page;
// enum-ish columns give up the space.
var complianceColumns = []export.Column{
	{Key: "credential_id", Label: "Credential", Width: 3},
	{Key: "table", Label: "Table", Width: 1.4},
	{Key: "status", Label: "Status", Width: 1.4},
	{Key: "version", Label: "Version", Width: 0.8},
	{Key: "submitted_at", Label: "Submitted", Width: 2},
	{Key: "reviewed_at", Label: "Reviewed", Width: 2},
	{Key: "reviewed_by", Label: "Reviewer", Width: 3},
	{Key: "rejection_reason", Label: "Rejection Reason", Width: 2.4},
	{Key: "expires_at", Label: "Expires", Width: 2},
	{Key: "recorded_at", Label: "Recorded", Width: 2},
}

func buildComplianceDataset(rows []models.CredentialHistory) export.Dataset {
	dataset := export.Dataset{Columns: complianceColumns}
	for _, row := range rows {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"credential_id":    row.CredentialID,
			"table":            string(row.CredentialTable),
			"status":           string(row.Status),
			"version":          fmt.Sprintf("%d", row.SubmissionVersion),
			"submitted_at":     formatReportTime(row.SubmittedAt),
			"reviewed_at":      formatReportTime(row.ReviewedAt),
			"reviewed_by":      derefString(row.ReviewedBy),
			"rejection_reason": derefString(row.RejectionReason),
			"expires_at":       formatReportTime(row.ExpiresAt),
			"recorded_at":      row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return dataset
}

func formatReportTime(ts *time.Time) string {
	if ts == nil {
		return ""
	}
	return ts.UTC().Format(time.RFC3339)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
