package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

// credentialColumns aliases the subject FK so driver and vehicle rows scan
// into the same struct.
const credentialColumns = `id, %s AS subject_id, credential_type_id, company_id, status,
document_url, document_urls, form_data, signature_data, entered_date, driver_expiration_date,
expires_at, submitted_at, reviewed_at, reviewed_by, review_notes, rejection_reason,
verified_at, verified_by, submission_version, notes, created_at, updated_at`

// CredentialRepository persists driver and vehicle credentials. Every method
// takes the target table; the table name is validated before it is ever
// interpolated into SQL.
type CredentialRepository struct {
	db *sqlx.DB
}

// NewCredentialRepository constructs the repository.
func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

func (r *CredentialRepository) selectClause(table models.CredentialTable) string {
	return fmt.Sprintf(credentialColumns, table.SubjectColumn())
}

// GetByID fetches one credential.
func (r *CredentialRepository) GetByID(ctx context.Context, table models.CredentialTable, id string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.selectClause(table), table)
	var cred models.Credential
	if err := r.db.GetContext(ctx, &cred, query, id); err != nil {
		return nil, err
	}
	return &cred, nil
}

// GetForSubjectAndType fetches the credential a subject holds against one
// type, if any.
func (r *CredentialRepository) GetForSubjectAndType(ctx context.Context, table models.CredentialTable, subjectID, typeID string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND credential_type_id = $2`,
		r.selectClause(table), table, table.SubjectColumn())
	var cred models.Credential
	if err := r.db.GetContext(ctx, &cred, query, subjectID, typeID); err != nil {
		return nil, err
	}
	return &cred, nil
}

// ListForSubject returns all of a subject's credentials ordered by the type's
// display order.
func (r *CredentialRepository) ListForSubject(ctx context.Context, table models.CredentialTable, subjectID string) ([]models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`SELECT %s FROM %s c WHERE c.%s = $1
ORDER BY (SELECT t.display_order FROM credential_types t WHERE t.id = c.credential_type_id), c.created_at`,
		fmt.Sprintf(credentialColumns, "c."+table.SubjectColumn()), table, table.SubjectColumn())
	var creds []models.Credential
	if err := r.db.SelectContext(ctx, &creds, query, subjectID); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

// Ensure returns the subject's credential for a type, creating a
// not_submitted placeholder when none exists yet.
func (r *CredentialRepository) Ensure(ctx context.Context, table models.CredentialTable, companyID, subjectID, typeID string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	existing, err := r.GetForSubjectAndType(ctx, table, subjectID, typeID)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	now := time.Now().UTC()
	insert := fmt.Sprintf(`INSERT INTO %s (id, %s, credential_type_id, company_id, status, submission_version, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 0, $6, $6)
ON CONFLICT (%s, credential_type_id) DO NOTHING`, table, table.SubjectColumn(), table.SubjectColumn())
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), subjectID, typeID, companyID, models.StatusNotSubmitted, now); err != nil {
		return nil, fmt.Errorf("ensure credential: %w", err)
	}
	// A concurrent ensure may have won the insert race; read back either way.
	return r.GetForSubjectAndType(ctx, table, subjectID, typeID)
}

// Submit moves the credential to pending_review with the driver's payload.
// The guard refuses to touch rows already awaiting review; callers translate
// sql.ErrNoRows into an invalid-transition error.
func (r *CredentialRepository) Submit(ctx context.Context, table models.CredentialTable, cred *models.Credential) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET
status = $2, document_url = $3, document_urls = $4, form_data = $5, signature_data = $6,
entered_date = $7, driver_expiration_date = $8, notes = $9,
submitted_at = $10, submission_version = submission_version + 1,
reviewed_at = NULL, reviewed_by = NULL, review_notes = NULL, rejection_reason = NULL,
expires_at = NULL, updated_at = $10
WHERE id = $1 AND status <> $11
RETURNING %s`, table, r.selectClause(table))
	now := time.Now().UTC()
	var updated models.Credential
	err := r.db.GetContext(ctx, &updated, query, cred.ID,
		models.StatusPendingReview, cred.DocumentURL, cred.DocumentURLs, cred.FormData, cred.SignatureData,
		cred.EnteredDate, cred.DriverExpirationDate, cred.Notes, now, models.StatusPendingReview)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Approve records an approval decision. Only pending_review rows qualify, so
// a stale decision against an already-reviewed row comes back as
// sql.ErrNoRows.
func (r *CredentialRepository) Approve(ctx context.Context, table models.CredentialTable, id, reviewerID string, expiresAt *time.Time, reviewNotes *string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET
status = $2, reviewed_at = $3, reviewed_by = $4, review_notes = $5, expires_at = $6,
rejection_reason = NULL, updated_at = $3
WHERE id = $1 AND status = $7
RETURNING %s`, table, r.selectClause(table))
	now := time.Now().UTC()
	var updated models.Credential
	err := r.db.GetContext(ctx, &updated, query, id,
		models.StatusApproved, now, reviewerID, reviewNotes, expiresAt, models.StatusPendingReview)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Reject records a rejection decision with its reason.
func (r *CredentialRepository) Reject(ctx context.Context, table models.CredentialTable, id, reviewerID, reason string, reviewNotes *string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET
status = $2, reviewed_at = $3, reviewed_by = $4, rejection_reason = $5, review_notes = $6,
expires_at = NULL, updated_at = $3
WHERE id = $1 AND status = $7
RETURNING %s`, table, r.selectClause(table))
	now := time.Now().UTC()
	var updated models.Credential
	err := r.db.GetContext(ctx, &updated, query, id,
		models.StatusRejected, now, reviewerID, reason, reviewNotes, models.StatusPendingReview)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Verify marks an admin-verified credential approved without a driver
// submission. Already-approved rows are refused.
func (r *CredentialRepository) Verify(ctx context.Context, table models.CredentialTable, id, adminID string, expiresAt *time.Time, notes *string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET
status = $2, verified_at = $3, verified_by = $4, reviewed_at = $3, reviewed_by = $4,
expires_at = $5, notes = COALESCE($6, notes), rejection_reason = NULL, updated_at = $3
WHERE id = $1 AND status <> $2
RETURNING %s`, table, r.selectClause(table))
	now := time.Now().UTC()
	var updated models.Credential
	err := r.db.GetContext(ctx, &updated, query, id, models.StatusApproved, now, adminID, expiresAt, notes)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Unverify reverses an admin verification back to not_submitted.
func (r *CredentialRepository) Unverify(ctx context.Context, table models.CredentialTable, id string) (*models.Credential, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`UPDATE %s SET
status = $2, verified_at = NULL, verified_by = NULL, reviewed_at = NULL, reviewed_by = NULL,
expires_at = NULL, updated_at = $3
WHERE id = $1 AND status = $4
RETURNING %s`, table, r.selectClause(table))
	now := time.Now().UTC()
	var updated models.Credential
	err := r.db.GetContext(ctx, &updated, query, id, models.StatusNotSubmitted, now, models.StatusApproved)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// ReviewQueue lists pending submissions for a company, oldest first, joined
// with type and subject names for the queue view.
func (r *CredentialRepository) ReviewQueue(ctx context.Context, table models.CredentialTable, companyID, typeID string, limit, offset int) ([]models.ReviewQueueItem, int, error) {
	if !table.Valid() {
		return nil, 0, fmt.Errorf("invalid credential table %q", table)
	}
	subjectJoin := `JOIN drivers d ON d.id = c.driver_id JOIN users u ON u.id = d.user_id`
	subjectName := `u.full_name`
	if table == models.TableVehicleCredentials {
		subjectJoin = `JOIN vehicles v ON v.id = c.vehicle_id`
		subjectName = `COALESCE(v.make || ' ' || v.model || ' ' || v.license_plate, v.id)`
	}
	where := `WHERE c.company_id = $1 AND c.status = $2`
	args := []interface{}{companyID, models.StatusPendingReview}
	if typeID != "" {
		where += fmt.Sprintf(" AND c.credential_type_id = $%d", len(args)+1)
		args = append(args, typeID)
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s c %s`, table, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count review queue: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s, t.name AS type_name, %s AS subject_name
FROM %s c
JOIN credential_types t ON t.id = c.credential_type_id
%s
%s
ORDER BY c.submitted_at ASC
LIMIT $%d OFFSET $%d`,
		fmt.Sprintf(credentialColumns, "c."+table.SubjectColumn()), subjectName, table, subjectJoin, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var items []models.ReviewQueueItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list review queue: %w", err)
	}
	for i := range items {
		items[i].Table = table
	}
	return items, total, nil
}

// ReviewStats summarizes the review workload across both tables.
func (r *CredentialRepository) ReviewStats(ctx context.Context, companyID string) (*models.ReviewStats, error) {
	const query = `SELECT
COALESCE(SUM(CASE WHEN status = 'pending_review' THEN 1 ELSE 0 END), 0) AS pending,
COALESCE(SUM(CASE WHEN status = 'approved' AND reviewed_at >= CURRENT_DATE THEN 1 ELSE 0 END), 0) AS approved_today,
COALESCE(SUM(CASE WHEN status = 'rejected' AND reviewed_at >= CURRENT_DATE THEN 1 ELSE 0 END), 0) AS rejected_today,
MIN(CASE WHEN status = 'pending_review' THEN submitted_at::text END) AS oldest_pending
FROM (
	SELECT status, reviewed_at, submitted_at FROM driver_credentials WHERE company_id = $1
	UNION ALL
	SELECT status, reviewed_at, submitted_at FROM vehicle_credentials WHERE company_id = $1
) all_creds`
	var stats models.ReviewStats
	if err := r.db.GetContext(ctx, &stats, query, companyID); err != nil {
		return nil, fmt.Errorf("review stats: %w", err)
	}
	return &stats, nil
}

// CountBySubjectStatuses returns, per status, how many credentials the
// subject holds against the given type IDs.
func (r *CredentialRepository) CountBySubjectStatuses(ctx context.Context, table models.CredentialTable, subjectID string) (map[models.CredentialStatus]int, error) {
	if !table.Valid() {
		return nil, fmt.Errorf("invalid credential table %q", table)
	}
	query := fmt.Sprintf(`SELECT status, COUNT(*) AS n FROM %s WHERE %s = $1 GROUP BY status`,
		table, table.SubjectColumn())
	rows, err := r.db.QueryxContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("count credentials: %w", err)
	}
	defer rows.Close()
	counts := make(map[models.CredentialStatus]int)
	for rows.Next() {
		var status models.CredentialStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
