package models

import "gorm.io/gorm"

// Booking statuses. A booking is created pending and transitions exactly
// once to accepted or rejected.
const (
	BookingStatusPending  = "pending"
	BookingStatusAccepted = "accepted"
	BookingStatusRejected = "rejected"
)

// ValidDecision reports whether s is a terminal booking status
func ValidDecision(s string) bool {
	return s == BookingStatusAccepted || s == BookingStatusRejected
}

// Booking is a ride request from a user to a specific driver.
// Invariant: a user holds at most one accepted booking at a time; the
// decide transaction enforces it.
type Booking struct {
	gorm.Model
	UserID      uint   `json:"user" gorm:"not null;index"`
	DriverID    uint   `json:"driver" gorm:"not null;index"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Status      string `json:"status" gorm:"not null;default:pending;index"`
}

// BookingCreate is the request body for creating a booking
type BookingCreate struct {
	UserID      uint   `json:"user"`
	DriverID    uint   `json:"driver"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
}

// BookingDecision is the request body for deciding a pending booking
type BookingDecision struct {
	Status      string `json:"status"`
	VehicleType string `json:"vehicle_type"`
}
