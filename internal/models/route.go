package models

import (
	"time"

	"gorm.io/gorm"
)

// Route is a scheduled journey for a vehicle. One table serves all
// vehicle types; (VehicleType, VehicleID) points at the bus/car/bike row.
type Route struct {
	gorm.Model
	Name         string     `json:"name"`
	VehicleType  string     `json:"vehicle_type" gorm:"index:idx_route_vehicle"`
	VehicleID    uint       `json:"vehicle_id" gorm:"index:idx_route_vehicle"`
	FromLocation string     `json:"from_location"`
	ToLocation   string     `json:"to_location"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Polyline     string     `json:"polyline"`
	Distance     string     `json:"distance"`
	Duration     string     `json:"duration"`
}

// Checkpoint is a stop along a route
type Checkpoint struct {
	gorm.Model
	RouteID uint    `json:"route" gorm:"index"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}
