package models

import (
	"time"

	"gorm.io/gorm"
)

// Role values accepted by the OTP and identity layers
const (
	RoleUser      = "user"
	RoleDriver    = "driver"
	RoleConductor = "conductor"
	RoleOperator  = "operator"
)

// ValidRole reports whether r is one of the recognized roles
func ValidRole(r string) bool {
	switch r {
	case RoleUser, RoleDriver, RoleConductor, RoleOperator:
		return true
	}
	return false
}

// PhoneOTP is the one-time-passcode record for a (phone, role) pair.
// At most one live row exists per pair; a resend overwrites the secret,
// expiry and counters in place instead of inserting a second row.
type PhoneOTP struct {
	gorm.Model
	Phone      string    `json:"phone" gorm:"not null;uniqueIndex:idx_otp_phone_role"`
	Role       string    `json:"role" gorm:"not null;uniqueIndex:idx_otp_phone_role"`
	CodeHash   string    `json:"-" gorm:"not null"` // bcrypt of the plaintext code, never serialized
	Verified   bool      `json:"verified" gorm:"default:false"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null"`
	Attempts   int       `json:"attempts" gorm:"default:0"`
	LastSentAt time.Time `json:"last_sent_at"`
}

// Expired reports whether the record is past its expiry at the given instant
func (o *PhoneOTP) Expired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}
