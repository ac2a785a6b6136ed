package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/fleetpass/fleet-compliance-api/internal/models"
)

const vehicleColumns = `id, company_id, owner_driver_id, vehicle_type, make, model, year, color,
license_plate, license_state, vin, exterior_photo_url, wheelchair_lift_photo_url, active, created_at, updated_at`

// VehicleRepository persists vehicles and driver-vehicle assignments.
type VehicleRepository struct {
	db *sqlx.DB
}

// NewVehicleRepository constructs the repository.
func NewVehicleRepository(db *sqlx.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

// GetByID fetches one vehicle.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE id = $1`, vehicleColumns)
	var v models.Vehicle
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		return nil, err
	}
	return &v, nil
}

// ListForDriver returns the vehicles relevant to a driver: owned vehicles
// for 1099 drivers plus any active assignments.
func (r *VehicleRepository) ListForDriver(ctx context.Context, driverID string) ([]models.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles v WHERE v.owner_driver_id = $1
UNION
SELECT %s FROM vehicles v
JOIN vehicle_assignments a ON a.vehicle_id = v.id AND a.driver_id = $1 AND a.ended_at IS NULL
ORDER BY created_at ASC`,
		qualify(vehicleColumns, "v"), qualify(vehicleColumns, "v"))
	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, driverID); err != nil {
		return nil, fmt.Errorf("list driver vehicles: %w", err)
	}
	return vehicles, nil
}

// ListForCompany returns all of a company's vehicles.
func (r *VehicleRepository) ListForCompany(ctx context.Context, companyID string) ([]models.Vehicle, error) {
	query := fmt.Sprintf(`SELECT %s FROM vehicles WHERE company_id = $1 ORDER BY created_at ASC`, vehicleColumns)
	var vehicles []models.Vehicle
	if err := r.db.SelectContext(ctx, &vehicles, query, companyID); err != nil {
		return nil, fmt.Errorf("list company vehicles: %w", err)
	}
	return vehicles, nil
}

// Create inserts a vehicle.
func (r *VehicleRepository) Create(ctx context.Context, v *models.Vehicle) error {
	const query = `INSERT INTO vehicles (id, company_id, owner_driver_id, vehicle_type, make, model, year, color,
license_plate, license_state, vin, exterior_photo_url, wheelchair_lift_photo_url, active, created_at, updated_at)
VALUES (:id, :company_id, :owner_driver_id, :vehicle_type, :make, :model, :year, :color,
:license_plate, :license_state, :vin, :exterior_photo_url, :wheelchair_lift_photo_url, :active, :created_at, :updated_at)`
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	if _, err := r.db.NamedExecContext(ctx, query, v); err != nil {
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// Update rewrites a vehicle's editable fields.
func (r *VehicleRepository) Update(ctx context.Context, v *models.Vehicle) error {
	const query = `UPDATE vehicles SET
vehicle_type = :vehicle_type, make = :make, model = :model, year = :year, color = :color,
license_plate = :license_plate, license_state = :license_state, vin = :vin,
exterior_photo_url = :exterior_photo_url, wheelchair_lift_photo_url = :wheelchair_lift_photo_url,
active = :active, updated_at = :updated_at
WHERE id = :id`
	v.UpdatedAt = time.Now().UTC()
	res, err := r.db.NamedExecContext(ctx, query, v)
	if err != nil {
		return fmt.Errorf("update vehicle: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// qualify prefixes every column in a comma-separated list with a table alias.
func qualify(cols, alias string) string {
	parts := strings.Split(cols, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
