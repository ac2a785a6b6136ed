package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

const historyColumns = `id, credential_id, credential_table, company_id, status, submission_version,
submission_data, submitted_at, reviewed_at, reviewed_by, review_notes, rejection_reason, expires_at, created_at`

// HistoryRepository appends and reads the credential audit trail. Rows are
// insert-only.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs the repository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append records one state transition snapshot.
func (r *HistoryRepository) Append(ctx context.Context, h *models.CredentialHistory) error {
	const query = `INSERT INTO credential_history
(id, credential_id, credential_table, company_id, status, submission_version,
submission_data, submitted_at, reviewed_at, reviewed_by, review_notes, rejection_reason, expires_at, created_at)
VALUES (:id, :credential_id, :credential_table, :company_id, :status, :submission_version,
:submission_data, :submitted_at, :reviewed_at, :reviewed_by, :review_notes, :rejection_reason, :expires_at, :created_at)`
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, h); err != nil {
		return fmt.Errorf("append credential history: %w", err)
	}
	return nil
}

// ListForCredential returns the full trail for one credential, newest first.
func (r *HistoryRepository) ListForCredential(ctx context.Context, credentialID string) ([]models.CredentialHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_history WHERE credential_id = $1 ORDER BY created_at DESC`, historyColumns)
	var rows []models.CredentialHistory
	if err := r.db.SelectContext(ctx, &rows, query, credentialID); err != nil {
		return nil, fmt.Errorf("list credential history: %w", err)
	}
	return rows, nil
}

// ListForCompany returns review-trail rows for reporting, filtered by time
// window and optional credential type.
func (r *HistoryRepository) ListForCompany(ctx context.Context, companyID string, from, to *time.Time, typeID, driverID string) ([]models.CredentialHistory, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_history h WHERE h.company_id = $1`, historyColumns)
	args := []interface{}{companyID}
	if from != nil {
		query += fmt.Sprintf(" AND h.created_at >= $%d", len(args)+1)
		args = append(args, *from)
	}
	if to != nil {
		query += fmt.Sprintf(" AND h.created_at <= $%d", len(args)+1)
		args = append(args, *to)
	}
	if typeID != "" {
		query += fmt.Sprintf(` AND EXISTS (
	SELECT 1 FROM driver_credentials dc WHERE dc.id = h.credential_id AND dc.credential_type_id = $%d
	UNION
	SELECT 1 FROM vehicle_credentials vc WHERE vc.id = h.credential_id AND vc.credential_type_id = $%d
)`, len(args)+1, len(args)+1)
		args = append(args, typeID)
	}
	if driverID != "" {
		query += fmt.Sprintf(` AND EXISTS (
	SELECT 1 FROM driver_credentials dc WHERE dc.id = h.credential_id AND dc.driver_id = $%d
)`, len(args)+1)
		args = append(args, driverID)
	}
	query += " ORDER BY h.created_at ASC"
	var rows []models.CredentialHistory
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list company history: %w", err)
	}
	return rows, nil
}
