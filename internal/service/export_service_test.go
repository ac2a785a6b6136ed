package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fleetpass/fleet-compliance-api/internal/dto"
	"github.com/fleetpass/fleet-compliance-api/internal/models"
	appErrors "github.com/fleetpass/fleet-compliance-api/pkg/errors"
)

type mockReportHistory struct {
	rows     []models.CredentialHistory
	typeID   string
	driverID string
}

func (m *mockReportHistory) ListForCompany(_ context.Context, _ string, _, _ *time.Time, typeID, driverID string) ([]models.CredentialHistory, error) {
	m.typeID = typeID
	m.driverID = driverID
	return m.rows, nil
}

type mockObjectStore struct {
	uploadedKey  string
	uploadedBody []byte
	contentType  string
	urlTTL       time.Duration
}

func (m *mockObjectStore) UploadExport(_ context.Context, objectKey string, reader io.Reader, size int64, contentType string) (string, error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.uploadedKey = objectKey
	m.uploadedBody = body
	m.contentType = contentType
	return objectKey, nil
}

func (m *mockObjectStore) ExportURL(_ context.Context, objectKey string, ttl time.Duration) (string, error) {
	m.urlTTL = ttl
	return "https://storage.example.com/" + objectKey + "?signed=1", nil
}

func reviewTrailRows() []models.CredentialHistory {
	reviewer := "admin-1"
	reason := "photo too blurry"
	submitted := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	reviewed := time.Date(2026, 2, 11, 15, 30, 0, 0, time.UTC)
	return []models.CredentialHistory{
		{
			CredentialID:      "cred-1",
			CredentialTable:   models.TableDriverCredentials,
			Status:            models.StatusPendingReview,
			SubmissionVersion: 1,
			SubmittedAt:       &submitted,
			CreatedAt:         submitted,
		},
		{
			CredentialID:      "cred-1",
			CredentialTable:   models.TableDriverCredentials,
			Status:            models.StatusRejected,
			SubmissionVersion: 1,
			SubmittedAt:       &submitted,
			ReviewedAt:        &reviewed,
			ReviewedBy:        &reviewer,
			RejectionReason:   &reason,
			CreatedAt:         reviewed,
		},
	}
}

func TestExportComplianceReportCSV(t *testing.T) {
	history := &mockReportHistory{rows: reviewTrailRows()}
	store := &mockObjectStore{}
	svc := NewExportService(history, store, ExportConfig{DownloadTTL: time.Hour}, zap.NewNop(), nil, nil)

	resp, err := svc.GenerateComplianceReport(context.Background(), "company-1", dto.ComplianceReportRequest{Format: "csv", TypeID: "type-1"})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.RowCount)
	assert.True(t, strings.HasPrefix(resp.ObjectKey, "compliance/company-1/"))
	assert.Contains(t, resp.DownloadURL, resp.ObjectKey)
	assert.Equal(t, "text/csv", store.contentType)
	assert.Equal(t, time.Hour, store.urlTTL)
	assert.Equal(t, "type-1", history.typeID)

	lines := strings.Split(strings.TrimSpace(string(store.uploadedBody)), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Rejection Reason")
	assert.Contains(t, lines[2], "photo too blurry")
	assert.Contains(t, lines[2], "admin-1")
}

func TestExportComplianceReportPDF(t *testing.T) {
	history := &mockReportHistory{rows: reviewTrailRows()}
	store := &mockObjectStore{}
	svc := NewExportService(history, store, ExportConfig{}, zap.NewNop(), nil, nil)

	resp, err := svc.GenerateComplianceReport(context.Background(), "company-1", dto.ComplianceReportRequest{Format: "pdf"})
	require.NoError(t, err)

	assert.Equal(t, "application/pdf", store.contentType)
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".pdf"))
	assert.True(t, bytes.HasPrefix(store.uploadedBody, []byte("%PDF")))
}

func TestExportComplianceReportDefaultsToCSV(t *testing.T) {
	history := &mockReportHistory{}
	store := &mockObjectStore{}
	svc := NewExportService(history, store, ExportConfig{}, zap.NewNop(), nil, nil)

	resp, err := svc.GenerateComplianceReport(context.Background(), "company-1", dto.ComplianceReportRequest{})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(resp.ObjectKey, ".csv"))
	assert.Equal(t, 0, resp.RowCount)
}

func TestExportComplianceReportRejectsBadInput(t *testing.T) {
	svc := NewExportService(&mockReportHistory{}, &mockObjectStore{}, ExportConfig{}, zap.NewNop(), nil, nil)

	_, err := svc.GenerateComplianceReport(context.Background(), "company-1", dto.ComplianceReportRequest{Format: "xlsx"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -7)
	_, err = svc.GenerateComplianceReport(context.Background(), "company-1", dto.ComplianceReportRequest{From: &from, To: &to})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
