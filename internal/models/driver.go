package models

import (
	"strings"

	"gorm.io/gorm"
)

// Driver represents a fleet driver. VehicleType/VehicleID point at the
// vehicle currently assigned to the driver and are maintained by the
// vehicle handlers: assigning a vehicle sets them, reassigning the
// vehicle to another driver clears them on the old driver first.
type Driver struct {
	gorm.Model
	Name          string  `json:"name"`
	Phone         string  `json:"phone" gorm:"uniqueIndex"`
	Email         string  `json:"email" gorm:"index"`
	Password      string  `json:"-"` // bcrypt hash, set on signup
	LicenseNumber string  `json:"license_number"`
	VehicleType   *string `json:"vehicle_type"`
	VehicleID     *uint   `json:"vehicle_id"`
}

// BeforeCreate normalizes the phone number so OTP lookups and driver
// rows agree on the stored form.
func (d *Driver) BeforeCreate(tx *gorm.DB) error {
	d.Phone = strings.TrimSpace(d.Phone)
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	return nil
}

// DriverSignup is the request body for driver registration
type DriverSignup struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	LicenseNumber string `json:"license_number"`
}
