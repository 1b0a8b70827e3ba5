package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
	"github.com/transitlink/fleet-backend/pkg/validation"
)

// ConductorHandler handles conductor registration, login and lookup
type ConductorHandler struct {
	store storage.Store
	auth  *services.AuthService
}

func NewConductorHandler(store storage.Store, auth *services.AuthService) *ConductorHandler {
	return &ConductorHandler{store: store, auth: auth}
}

// Signup handles POST /api/conductors/signup
func (h *ConductorHandler) Signup(c *fiber.Ctx) error {
	var req models.ConductorSignup
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

	if _, err := h.store.GetConductorByPhone(req.Phone); err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Conductor with this phone already exists",
		})
	}

	hashed, err := services.HashPassword(req.Password)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register conductor",
		})
	}

	conductor := &models.Conductor{
		Name:          req.Name,
		Phone:         req.Phone,
		Email:         req.Email,
		Password:      hashed,
		ContactNumber: req.ContactNumber,
	}
	if err := h.store.CreateConductor(conductor); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to register conductor",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "Conductor registered successfully",
		"conductor": conductor,
	})
}

// Login handles POST /api/conductors/login
func (h *ConductorHandler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tokens, conductor, err := h.auth.LoginConductor(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid email or password",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"tokens":    tokens,
		"conductor": conductor,
	})
}

// GetConductor handles GET /api/conductors/:id
func (h *ConductorHandler) GetConductor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conductor ID"})
	}

	conductor, err := h.store.GetConductor(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conductor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(conductor)
}

// UpdateConductor handles PUT /api/conductors/:id
func (h *ConductorHandler) UpdateConductor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conductor ID"})
	}
	existing, err := h.store.GetConductor(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conductor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var req models.ConductorSignup
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
	if req.ContactNumber != "" {
		existing.ContactNumber = req.ContactNumber
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
				"error": "Failed to update conductor",
			})
		}
		existing.Password = hashed
	}

	if err := h.store.UpdateConductor(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update conductor",
		})
	}
	return c.JSON(fiber.Map{
		"message":   "Conductor updated successfully",
		"conductor": existing,
	})
}

// DeleteConductor handles DELETE /api/conductors/:id
func (h *ConductorHandler) DeleteConductor(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conductor ID"})
	}
	if err := h.store.DeleteConductor(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conductor not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Conductor deleted successfully"})
}

// GetAllConductors handles GET /api/conductors
func (h *ConductorHandler) GetAllConductors(c *fiber.Ctx) error {
	conductors, err := h.store.GetAllConductors()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"conductors": conductors})
}
