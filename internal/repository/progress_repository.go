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

const progressColumns = `id, driver_id, credential_type_id, company_id, current_step_id,
step_data, status, started_at, completed_at, submitted_at, created_at, updated_at`

// ProgressRepository persists in-flight instruction-flow progress.
type ProgressRepository struct {
	db *sqlx.DB
}

// NewProgressRepository constructs the repository.
func NewProgressRepository(db *sqlx.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// Get fetches a driver's progress for one credential type.
func (r *ProgressRepository) Get(ctx context.Context, driverID, typeID string) (*models.CredentialProgress, error) {
	query := fmt.Sprintf(`SELECT %s FROM credential_progress WHERE driver_id = $1 AND credential_type_id = $2`, progressColumns)
	var p models.CredentialProgress
	if err := r.db.GetContext(ctx, &p, query, driverID, typeID); err != nil {
		return nil, err
	}
	return &p, nil
}

// Ensure returns the driver's progress row for a type, creating a fresh
// in_progress row when none exists.
func (r *ProgressRepository) Ensure(ctx context.Context, companyID, driverID, typeID string) (*models.CredentialProgress, error) {
	existing, err := r.Get(ctx, driverID, typeID)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return nil, err
	}
	now := time.Now().UTC()
	const insert = `INSERT INTO credential_progress
(id, driver_id, credential_type_id, company_id, step_data, status, started_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $7)
ON CONFLICT (driver_id, credential_type_id) DO NOTHING`
	empty := models.StepProgressData{Steps: map[string]models.StepState{}}
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), driverID, typeID, companyID, empty, models.ProgressInProgress, now); err != nil {
		return nil, fmt.Errorf("ensure progress: %w", err)
	}
	return r.Get(ctx, driverID, typeID)
}

// SaveSteps rewrites the saved step data and current position.
func (r *ProgressRepository) SaveSteps(ctx context.Context, p *models.CredentialProgress) error {
	const query = `UPDATE credential_progress SET
current_step_id = $2, step_data = $3, status = $4, completed_at = $5, updated_at = $6
WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, p.ID, p.CurrentStepID, p.StepData, p.Status, p.CompletedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkSubmitted stamps the flow as handed off to review.
func (r *ProgressRepository) MarkSubmitted(ctx context.Context, id string) error {
	const query = `UPDATE credential_progress SET status = $2, submitted_at = $3, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, models.ProgressSubmitted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark progress submitted: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reset clears saved progress so a rejected submission can start over.
func (r *ProgressRepository) Reset(ctx context.Context, driverID, typeID string) error {
	const query = `UPDATE credential_progress SET
step_data = $3, current_step_id = NULL, status = $4, completed_at = NULL, submitted_at = NULL, updated_at = $5
WHERE driver_id = $1 AND credential_type_id = $2`
	empty := models.StepProgressData{Steps: map[string]models.StepState{}}
	if _, err := r.db.ExecContext(ctx, query, driverID, typeID, empty, models.ProgressInProgress, time.Now().UTC()); err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}
