package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

const flagColumns = `id, key, name, description, category, default_enabled, internal, created_at, updated_at`
const overrideColumns = `id, company_id, flag_id, enabled, reason, created_by, created_at, updated_at`

// FeatureFlagRepository persists flag definitions and per-company overrides.
type FeatureFlagRepository struct {
	db *sqlx.DB
}

// NewFeatureFlagRepository constructs the repository.
func NewFeatureFlagRepository(db *sqlx.DB) *FeatureFlagRepository {
	return &FeatureFlagRepository{db: db}
}

// ListFlags returns all flag definitions.
func (r *FeatureFlagRepository) ListFlags(ctx context.Context) ([]models.FeatureFlag, error) {
	query := fmt.Sprintf(`SELECT %s FROM feature_flags ORDER BY key ASC`, flagColumns)
	var flags []models.FeatureFlag
	if err := r.db.SelectContext(ctx, &flags, query); err != nil {
		return nil, fmt.Errorf("list feature flags: %w", err)
	}
	return flags, nil
}

// GetFlagByKey fetches one flag definition.
func (r *FeatureFlagRepository) GetFlagByKey(ctx context.Context, key string) (*models.FeatureFlag, error) {
	query := fmt.Sprintf(`SELECT %s FROM feature_flags WHERE key = $1`, flagColumns)
	var flag models.FeatureFlag
	if err := r.db.GetContext(ctx, &flag, query, key); err != nil {
		return nil, err
	}
	return &flag, nil
}

// UpdateFlagDefault flips a flag's platform-wide default.
func (r *FeatureFlagRepository) UpdateFlagDefault(ctx context.Context, flagID string, enabled bool) error {
	const query = `UPDATE feature_flags SET default_enabled = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, flagID, enabled, time.Now().UTC()); err != nil {
		return fmt.Errorf("update flag default: %w", err)
	}
	return nil
}

// ListOverrides returns all of a company's overrides.
func (r *FeatureFlagRepository) ListOverrides(ctx context.Context, companyID string) ([]models.CompanyFeatureOverride, error) {
	query := fmt.Sprintf(`SELECT %s FROM company_feature_overrides WHERE company_id = $1`, overrideColumns)
	var overrides []models.CompanyFeatureOverride
	if err := r.db.SelectContext(ctx, &overrides, query, companyID); err != nil {
		return nil, fmt.Errorf("list flag overrides: %w", err)
	}
	return overrides, nil
}

// UpsertOverride pins a flag's value for one company.
func (r *FeatureFlagRepository) UpsertOverride(ctx context.Context, o *models.CompanyFeatureOverride) error {
	const query = `INSERT INTO company_feature_overrides (id, company_id, flag_id, enabled, reason, created_by, created_at, updated_at)
VALUES (:id, :company_id, :flag_id, :enabled, :reason, :created_by, :created_at, :updated_at)
ON CONFLICT (company_id, flag_id)
DO UPDATE SET enabled = EXCLUDED.enabled, reason = EXCLUDED.reason, updated_at = EXCLUDED.updated_at`
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, o); err != nil {
		return fmt.Errorf("upsert flag override: %w", err)
	}
	return nil
}

// DeleteOverride removes a company's override so the default applies again.
func (r *FeatureFlagRepository) DeleteOverride(ctx context.Context, companyID, flagID string) error {
	const query = `DELETE FROM company_feature_overrides WHERE company_id = $1 AND flag_id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, flagID); err != nil {
		return fmt.Errorf("delete flag override: %w", err)
	}
	return nil
}
