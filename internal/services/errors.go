package services

import (
	"errors"
	"fmt"
)

// Domain errors. Handlers map these onto HTTP statuses; nothing here
// crashes the process and nothing is retried server-side.
var (
	ErrInvalidPhone  = errors.New("phone must be exactly 10 digits")
	ErrInvalidRole   = errors.New("invalid role")
	ErrRateLimited   = errors.New("rate limited")
	ErrOTPNotFound   = errors.New("phone number not found for this role")
	ErrOTPExpired    = errors.New("OTP expired")
	ErrTooManyTries  = errors.New("too many attempts, please request a new OTP")
	ErrInvalidCode   = errors.New("invalid OTP")
	ErrDeliveryFail  = errors.New("SMS delivery failed")
	ErrSMSConfigured = errors.New("twilio credentials are not configured")

	ErrBookingNotFound    = errors.New("booking not found")
	ErrInvalidDecision    = errors.New("invalid status, choose accepted or rejected")
	ErrInvalidVehicleType = errors.New("invalid vehicle type, choose bus, car or bike")
	ErrConflictingBooking = errors.New("this user already has an active ride with another driver")
	ErrAlreadyDecided     = errors.New("booking has already been decided")
	ErrNoVehicleForDriver = errors.New("no vehicle of the requested type found for this driver")

	ErrDriverNotFound = errors.New("driver not found")
	ErrUserNotFound   = errors.New("user not found")
)

// RateLimitError reports how long the caller must wait before the next
// OTP send. It matches ErrRateLimited under errors.Is.
type RateLimitError struct {
	WaitSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("please wait %ds before requesting another OTP", e.WaitSeconds)
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}
