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

const driverColumns = `d.id, d.user_id, d.company_id, d.employment_type, d.status, d.status_reason,
d.status_changed_at, d.date_of_birth, d.address_line1, d.city, d.state, d.zip,
d.license_number, d.license_state, d.license_expiration,
d.emergency_contact_name, d.emergency_contact_phone,
d.has_availability, d.has_payment_info, d.onboarding_completed_at, d.created_at, d.updated_at`

// DriverRepository persists driver profiles, availability, and payment info.
type DriverRepository struct {
	db *sqlx.DB
}

// NewDriverRepository constructs the repository.
func NewDriverRepository(db *sqlx.DB) *DriverRepository {
	return &DriverRepository{db: db}
}

// GetByID fetches one driver profile.
func (r *DriverRepository) GetByID(ctx context.Context, id string) (*models.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers d WHERE d.id = $1`, driverColumns)
	var d models.Driver
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByUserID fetches the profile belonging to a login identity.
func (r *DriverRepository) GetByUserID(ctx context.Context, userID string) (*models.Driver, error) {
	query := fmt.Sprintf(`SELECT %s FROM drivers d WHERE d.user_id = $1`, driverColumns)
	var d models.Driver
	if err := r.db.GetContext(ctx, &d, query, userID); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns drivers with identity fields, paginated.
func (r *DriverRepository) List(ctx context.Context, filter models.DriverFilter) ([]models.DriverWithUser, int, error) {
	where := "WHERE d.company_id = $1"
	args := []interface{}{filter.CompanyID}
	if filter.Status != "" {
		where += fmt.Sprintf(" AND d.status = $%d", len(args)+1)
		args = append(args, filter.Status)
	}
	if filter.EmploymentType != "" {
		where += fmt.Sprintf(" AND d.employment_type = $%d", len(args)+1)
		args = append(args, filter.EmploymentType)
	}
	if filter.Search != "" {
		where += fmt.Sprintf(" AND (u.full_name ILIKE $%d OR u.email ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM drivers d JOIN users u ON u.id = d.user_id %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count drivers: %w", err)
	}

	limit := filter.PageSize
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	query := fmt.Sprintf(`SELECT %s, u.full_name, u.email, u.phone, u.avatar_url
FROM drivers d JOIN users u ON u.id = d.user_id
%s ORDER BY u.full_name ASC LIMIT $%d OFFSET $%d`, driverColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	var drivers []models.DriverWithUser
	if err := r.db.SelectContext(ctx, &drivers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list drivers: %w", err)
	}
	return drivers, total, nil
}

// UpdateProfile rewrites the profile fields a driver edits during onboarding.
func (r *DriverRepository) UpdateProfile(ctx context.Context, d *models.Driver) error {
	const query = `UPDATE drivers SET
date_of_birth = :date_of_birth, address_line1 = :address_line1, city = :city, state = :state, zip = :zip,
license_number = :license_number, license_state = :license_state, license_expiration = :license_expiration,
emergency_contact_name = :emergency_contact_name, emergency_contact_phone = :emergency_contact_phone,
updated_at = :updated_at
WHERE id = :id`
	d.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, query, d)
	if err != nil {
		return fmt.Errorf("update driver profile: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus flips activation and records why.
func (r *DriverRepository) SetStatus(ctx context.Context, id string, status models.DriverStatus, reason *string) error {
	const query = `UPDATE drivers SET status = $2, status_reason = $3, status_changed_at = $4, updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set driver status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkOnboardingComplete stamps the first moment the checklist cleared. A
// second completion keeps the original timestamp.
func (r *DriverRepository) MarkOnboardingComplete(ctx context.Context, id string) error {
	const query = `UPDATE drivers SET onboarding_completed_at = COALESCE(onboarding_completed_at, $2), updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("mark onboarding complete: %w", err)
	}
	return nil
}

// EmailForDriver resolves a driver's login email for notifications.
func (r *DriverRepository) EmailForDriver(ctx context.Context, driverID string) (string, error) {
	const query = `SELECT u.email FROM drivers d JOIN users u ON u.id = d.user_id WHERE d.id = $1`
	var email string
	if err := r.db.GetContext(ctx, &email, query, driverID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("resolve driver email: %w", err)
	}
	return email, nil
}

// EmailForVehicleOwner resolves the owning driver's email for a vehicle.
// Company-owned vehicles have no owner and resolve to empty.
func (r *DriverRepository) EmailForVehicleOwner(ctx context.Context, vehicleID string) (string, error) {
	const query = `SELECT u.email FROM vehicles v
JOIN drivers d ON d.id = v.owner_driver_id
JOIN users u ON u.id = d.user_id
WHERE v.id = $1`
	var email string
	if err := r.db.GetContext(ctx, &email, query, vehicleID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("resolve vehicle owner email: %w", err)
	}
	return email, nil
}

// ReplaceAvailability swaps the driver's weekly windows in one transaction
// and keeps the has_availability denormalization in sync.
func (r *DriverRepository) ReplaceAvailability(ctx context.Context, driverID, companyID string, windows []models.DriverAvailability) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin availability tx: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM driver_availability WHERE driver_id = $1`, driverID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear availability: %w", err)
	}
	const insert = `INSERT INTO driver_availability (id, driver_id, company_id, day_of_week, start_time, end_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	now := time.Now().UTC()
	for _, w := range windows {
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), driverID, companyID, w.DayOfWeek, w.StartTime, w.EndTime, now); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert availability window: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE drivers SET has_availability = $2, updated_at = $3 WHERE id = $1`,
		driverID, len(windows) > 0, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update availability flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit availability tx: %w", err)
	}
	return nil
}

// UpsertPaymentInfo stores masked payout details and flips the denormalized
// has_payment_info flag.
func (r *DriverRepository) UpsertPaymentInfo(ctx context.Context, info *models.DriverPaymentInfo) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin payment info tx: %w", err)
	}
	const query = `INSERT INTO driver_payment_info
(id, driver_id, company_id, payment_method, bank_name, account_type, routing_last4, account_last4, created_at, updated_at)
VALUES (:id, :driver_id, :company_id, :payment_method, :bank_name, :account_type, :routing_last4, :account_last4, :created_at, :updated_at)
ON CONFLICT (driver_id)
DO UPDATE SET payment_method = EXCLUDED.payment_method, bank_name = EXCLUDED.bank_name,
              account_type = EXCLUDED.account_type, routing_last4 = EXCLUDED.routing_last4,
              account_last4 = EXCLUDED.account_last4, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	if info.ID == "" {
		info.ID = uuid.NewString()
	}
	info.CreatedAt = now
	info.UpdatedAt = now
	if _, err := tx.NamedExecContext(ctx, query, info); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert payment info: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE drivers SET has_payment_info = TRUE, updated_at = $2 WHERE id = $1`,
		info.DriverID, now); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update payment flag: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit payment info tx: %w", err)
	}
	return nil
}
