package models

import (
	"strings"

	"gorm.io/gorm"
)

// Conductor represents a bus conductor
type Conductor struct {
	gorm.Model
	Name          string `json:"name"`
	Phone         string `json:"phone" gorm:"uniqueIndex"`
	Email         string `json:"email" gorm:"index"`
	Password      string `json:"-"`
	ContactNumber string `json:"contact_number"`
}

func (c *Conductor) BeforeCreate(tx *gorm.DB) error {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	return nil
}

// ConductorSignup is the request body for conductor registration
type ConductorSignup struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	ContactNumber string `json:"contact_number"`
}
