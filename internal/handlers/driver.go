package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
	"github.com/transitlink/fleet-backend/pkg/validation"
)

// DriverHandler handles driver registration, login and lookup
type DriverHandler struct {
	store storage.Store
	auth  *services.AuthService
}

func NewDriverHandler(store storage.Store, auth *services.AuthService) *DriverHandler {
	return &DriverHandler{store: store, auth: auth}
}

// Signup handles POST /api/drivers/signup
func (h *DriverHandler) Signup(c *fiber.Ctx) error {
	var req models.DriverSignup
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Name == "" || req.Phone == "" || req.Email == "" || req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, phone, email, and password are required",
		})
	}
	if !validation.ValidatePhone(req.Phone) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "phone must be exactly 10 digits",
		})
	}

	if _, err := h.store.GetDriverByPhone(req.Phone); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Driver with this phone already exists",
		})
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register driver",
		})
	}

	driver := &models.Driver{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      hashed,
		LicenseNumber: req.LicenseNumber,
	}
	if err := h.store.CreateDriver(driver); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register driver",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Driver registered successfully",
		"driver":  driver,
	})
}

// Login handles POST /api/drivers/login
func (h *DriverHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tokens, driver, err := h.auth.LoginDriver(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"tokens":  tokens,
		"driver":  driver,
	})
}

// GetDriver handles GET /api/drivers/:id
func (h *DriverHandler) GetDriver(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}

	driver, err := h.store.GetDriver(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Driver not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(driver)
}

// UpdateDriver handles PUT /api/drivers/:id
func (h *DriverHandler) UpdateDriver(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	existing, err := h.store.GetDriver(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Driver not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var req models.DriverSignup
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name != "" {
		existing.Name = req.Name
	}
	if req.Email != "" {
		existing.Email = req.Email
	}
	if req.LicenseNumber != "" {
		existing.LicenseNumber = req.LicenseNumber
	}
	if req.Phone != "" {
		if !validation.ValidatePhone(req.Phone) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "phone must be exactly 10 digits",
			})
		}
		existing.Phone = req.Phone
	}
	if req.Password != "" {
		hashed, err := services.HashPassword(req.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update driver",
			})
		}
		existing.Password = hashed
	}

	if err := h.store.UpdateDriver(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update driver",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Driver updated successfully",
		"driver":  existing,
	})
}

// DeleteDriver handles DELETE /api/drivers/:id
func (h *DriverHandler) DeleteDriver(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	if err := h.store.DeleteDriver(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Driver not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Driver deleted successfully"})
}

// GetAllDrivers handles GET /api/drivers
func (h *DriverHandler) GetAllDrivers(c *fiber.Ctx) error {
	drivers, err := h.store.GetAllDrivers()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"drivers": drivers})
}
