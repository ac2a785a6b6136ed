package models

import "time"

// VehicleType distinguishes vehicles that need extra equipment photos.
type VehicleType string

const (
	VehicleStandard             VehicleType = "standard"
	VehicleWheelchairAccessible VehicleType = "wheelchair_accessible"
)

// Vehicle is a vehicle registered under a company, optionally owned by a
// 1099 driver.
type Vehicle struct {
	ID                     string      `db:"id" json:"id"`
	CompanyID              string      `db:"company_id" json:"company_id"`
	OwnerDriverID          *string     `db:"owner_driver_id" json:"owner_driver_id,omitempty"`
	VehicleType            VehicleType `db:"vehicle_type" json:"vehicle_type"`
	Make                   *string     `db:"make" json:"make,omitempty"`
	Model                  *string     `db:"model" json:"model,omitempty"`
	Year                   *int        `db:"year" json:"year,omitempty"`
	Color                  *string     `db:"color" json:"color,omitempty"`
	LicensePlate           *string     `db:"license_plate" json:"license_plate,omitempty"`
	LicenseState           *string     `db:"license_state" json:"license_state,omitempty"`
	VIN                    *string     `db:"vin" json:"vin,omitempty"`
	ExteriorPhotoURL       *string     `db:"exterior_photo_url" json:"exterior_photo_url,omitempty"`
	WheelchairLiftPhotoURL *string     `db:"wheelchair_lift_photo_url" json:"wheelchair_lift_photo_url,omitempty"`
	Active                 bool        `db:"active" json:"active"`
	CreatedAt              time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time   `db:"updated_at" json:"updated_at"`
}

// ProfileComplete reports whether the vehicle record itself is fully filled
// in, independent of its credentials. Wheelchair-accessible vehicles also
// need a lift photo.
func (v *Vehicle) ProfileComplete() bool {
	base := notEmpty(v.Make) && notEmpty(v.Model) && v.Year != nil &&
		notEmpty(v.LicensePlate) && notEmpty(v.LicenseState) && notEmpty(v.VIN) &&
		notEmpty(v.ExteriorPhotoURL)
	if !base {
		return false
	}
	if v.VehicleType == VehicleWheelchairAccessible {
		return notEmpty(v.WheelchairLiftPhotoURL)
	}
	return true
}

// VehicleAssignment links a W2 driver to a company vehicle.
type VehicleAssignment struct {
	ID        string     `db:"id" json:"id"`
	DriverID  string     `db:"driver_id" json:"driver_id"`
	VehicleID string     `db:"vehicle_id" json:"vehicle_id"`
	StartedAt time.Time  `db:"started_at" json:"started_at"`
	EndedAt   *time.Time `db:"ended_at" json:"ended_at,omitempty"`
}
