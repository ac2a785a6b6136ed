package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

const credentialTypeColumns = `id, company_id, name, description, category, scope, broker_id,
employment_type, requirement, submission_type, requires_driver_action, expiration_type,
expiration_interval_days, expiration_warning_days, grace_period_days, effective_date, status,
instruction_config, display_order, is_active, created_by, created_at, updated_at`

// CredentialTypeRepository persists credential type definitions.
type CredentialTypeRepository struct {
	db *sqlx.DB
}

// NewCredentialTypeRepository constructs the repository.
func NewCredentialTypeRepository(db *sqlx.DB) *CredentialTypeRepository {
	return &CredentialTypeRepository{db: db}
}

// GetByID fetches a single credential type.
func (r *CredentialTypeRepository) GetByID(ctx context.Context, id string) (*models.CredentialType, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_types WHERE id = $1`, credentialTypeColumns)
	var t models.CredentialType
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns a company's credential types matching the filter, ordered by
// display order.
func (r *CredentialTypeRepository) List(ctx context.Context, companyID string, category models.CredentialCategory, status models.CredentialTypeStatus) ([]models.CredentialType, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_types WHERE company_id = $1`, credentialTypeColumns)
	args := []interface{}{companyID}
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, category)
	}
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, status)
	}
	query += " ORDER BY display_order ASC, name ASC"
	var types []models.CredentialType
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, fmt.Errorf("list credential types: %w", err)
	}
	return types, nil
}

// ListLiveForSubject returns the types a subject must satisfy right now:
// active or scheduled-and-effective, matching the subject's category and
// employment class.
func (r *CredentialTypeRepository) ListLiveForSubject(ctx context.Context, companyID string, category models.CredentialCategory, employment models.DriverEmploymentType) ([]models.CredentialType, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_types
WHERE company_id = $1 AND category = $2 AND is_active = TRUE
AND (
	(status = 'active' AND (effective_date IS NULL OR effective_date <= NOW()))
	OR (status = 'scheduled' AND effective_date <= NOW())
)`, credentialTypeColumns)
	args := []interface{}{companyID, category}
	if employment != "" {
		clause := "employment_type IN ('both', $3)"
		emp := "w2_only"
		if employment == models.Employment1099 {
			emp = "1099_only"
		}
		query += " AND " + clause
		args = append(args, emp)
	}
	query += " ORDER BY display_order ASC, name ASC"
	var types []models.CredentialType
	if err := r.db.SelectContext(ctx, &types, query, args...); err != nil {
		return nil, fmt.Errorf("list live credential types: %w", err)
	}
	return types, nil
}

// Create inserts a new credential type.
func (r *CredentialTypeRepository) Create(ctx context.Context, t *models.CredentialType) error {
	const query = `INSERT INTO credential_types (id, company_id, name, description, category, scope, broker_id,
employment_type, requirement, submission_type, requires_driver_action, expiration_type,
expiration_interval_days, expiration_warning_days, grace_period_days, effective_date, status,
instruction_config, display_order, is_active, created_by, created_at, updated_at)
VALUES (:id, :company_id, :name, :description, :category, :scope, :broker_id,
:employment_type, :requirement, :submission_type, :requires_driver_action, :expiration_type,
:expiration_interval_days, :expiration_warning_days, :grace_period_days, :effective_date, :status,
:instruction_config, :display_order, :is_active, :created_by, :created_at, :updated_at)`
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, t); err != nil {
		return fmt.Errorf("create credential type: %w", err)
	}
	return nil
}

// Update rewrites the mutable fields of a credential type.
func (r *CredentialTypeRepository) Update(ctx context.Context, t *models.CredentialType) error {
	const query = `UPDATE credential_types SET
name = :name, description = :description, requirement = :requirement,
employment_type = :employment_type, expiration_type = :expiration_type,
expiration_interval_days = :expiration_interval_days, expiration_warning_days = :expiration_warning_days,
grace_period_days = :grace_period_days, effective_date = :effective_date, status = :status,
instruction_config = :instruction_config, display_order = :display_order, is_active = :is_active,
updated_at = :updated_at
WHERE id = :id`
	t.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("update credential type: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("credential type %s not found", t.ID)
	}
	return nil
}

// Archive retires a type so it stops appearing in checklists.
func (r *CredentialTypeRepository) Archive(ctx context.Context, id string) error {
	const query = `UPDATE credential_types SET status = $2, is_active = FALSE, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.TypeStatusArchived, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("archive credential type: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("credential type %s not found", id)
	}
	return nil
}
