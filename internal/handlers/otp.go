package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/pkg/validation"
)

// OTPHandler handles OTP send and verify requests
type OTPHandler struct {
	otp *services.OTPService
}

func NewOTPHandler(otp *services.OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// SendOTP handles POST /api/otp/send
func (h *OTPHandler) SendOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if errs := validateOTPRequest(req.Phone, req.Role); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	if _, err := h.otp.Send(req.Phone, req.Role); err != nil {
		var rateErr *services.RateLimitError
		if errors.As(err, &rateErr) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":        rateErr.Error(),
				"wait_seconds": rateErr.WaitSeconds,
			})
		}
		if errors.Is(err, services.ErrInvalidPhone) || errors.Is(err, services.ErrInvalidRole) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"message": "OTP sent successfully"})
}

// VerifyOTP handles POST /api/otp/verify
func (h *OTPHandler) VerifyOTP(c *fiber.Ctx) error {
	var req struct {
		Phone string `json:"phone"`
		OTP   string `json:"otp"`
		Role  string `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	errs := validateOTPRequest(req.Phone, req.Role)
	if !validation.ValidateOTPCode(req.OTP) {
		errs["otp"] = "OTP must be a short numeric code"
	}
	if len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": errs})
	}

	result, err := h.otp.Verify(req.Phone, req.Role, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOTPNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrTooManyTries):
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrOTPExpired), errors.Is(err, services.ErrInvalidCode):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "OTP verified",
		"tokens":  result.Tokens,
		"role":    result.Role,
		"id":      result.IdentityID,
	})
}

func validateOTPRequest(phone, role string) map[string]string {
	errs := make(map[string]string)
	if !validation.ValidatePhone(phone) {
		errs["phone"] = "phone must be exactly 10 digits"
	}
	if !models.ValidRole(role) {
		errs["role"] = "role must be one of user, driver, conductor, operator"
	}
	return errs
}
