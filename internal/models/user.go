package models

import "gorm.io/gorm"

// AppUser is the identity record for the "user" and "operator" roles.
// Rows are created lazily at OTP verification: the first successful
// verify for a phone creates one keyed by that phone.
type AppUser struct {
	gorm.Model
	Phone string `json:"phone" gorm:"uniqueIndex;not null"`
	Name  string `json:"name"`
	Role  string `json:"role" gorm:"default:user"`
}

// Principal is the authenticated caller resolved from a bearer token:
// a (numeric id, role) pair plus the display name of the underlying
// role-scoped record.
type Principal struct {
	ID   uint   `json:"id"`
	Role string `json:"role"`
	Name string `json:"name"`
}
