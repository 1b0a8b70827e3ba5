package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	store   storage.Store
	Version string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store storage.Store, version string) *HealthHandler {
	return &HealthHandler{store: store, Version: version}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "connected"
	if err := h.store.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
	}
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"service":  "TransitLink Fleet Backend",
		"version":  h.Version,
		"database": dbStatus,
	})
}
