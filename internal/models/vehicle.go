package models

import "gorm.io/gorm"

// Vehicle type tags. VehicleProbeOrder is the lookup order used when a
// booking is accepted without a vehicle-type hint; which vehicle gets
// auto-booked for a multi-vehicle driver depends on it, so it must not
// be reordered.
const (
	VehicleTypeBus  = "bus"
	VehicleTypeCar  = "car"
	VehicleTypeBike = "bike"
)

var VehicleProbeOrder = []string{VehicleTypeBus, VehicleTypeCar, VehicleTypeBike}

// ValidVehicleType reports whether t names one of the vehicle tables
func ValidVehicleType(t string) bool {
	switch t {
	case VehicleTypeBus, VehicleTypeCar, VehicleTypeBike:
		return true
	}
	return false
}

// Bus is a fleet bus. DriverID is nullable; IsBooked flips true only as
// a side effect of a booking acceptance.
type Bus struct {
	gorm.Model
	LicensePlate string `json:"license_plate" gorm:"uniqueIndex"`
	Capacity     int    `json:"capacity"`
	DriverID     *uint  `json:"driver_id" gorm:"index"`
	ConductorID  *uint  `json:"conductor_id"`
	IsBooked     bool   `json:"is_booked" gorm:"default:false"`
}

type Car struct {
	gorm.Model
	LicensePlate string `json:"license_plate" gorm:"uniqueIndex"`
	Seats        int    `json:"seats"`
	DriverID     *uint  `json:"driver_id" gorm:"index"`
	IsBooked     bool   `json:"is_booked" gorm:"default:false"`
}

type Bike struct {
	gorm.Model
	LicensePlate string `json:"license_plate" gorm:"uniqueIndex"`
	DriverID     *uint  `json:"driver_id" gorm:"index"`
	IsBooked     bool   `json:"is_booked" gorm:"default:false"`
}

// VehicleRef identifies a row in one of the vehicle tables
type VehicleRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}
