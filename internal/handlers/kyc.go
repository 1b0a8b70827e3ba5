package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/middleware"
	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// KYCHandler handles the four KYC record types. Every route requires an
// authenticated principal; records are scoped to (principal id, role),
// and POST upserts so resubmitting a form replaces the earlier record.
type KYCHandler struct {
	store storage.Store
}

func NewKYCHandler(store storage.Store) *KYCHandler {
	return &KYCHandler{store: store}
}

func principal(c *fiber.Ctx) (*models.Principal, error) {
	p, ok := c.Locals(middleware.PrincipalKey).(*models.Principal)
	if !ok || p == nil {
		return nil, errors.New("missing principal")
	}
	return p, nil
}

// SavePersonalDetails handles POST /api/kyc/personal-details
func (h *KYCHandler) SavePersonalDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req models.PersonalDetails
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.OwnerID = p.ID
	req.OwnerRole = p.Role

	if err := h.store.SavePersonalDetails(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save personal details",
		})
	}
	return c.JSON(fiber.Map{
		"message":          "Personal details saved",
		"personal_details": req,
	})
}

// GetPersonalDetails handles GET /api/kyc/personal-details
func (h *KYCHandler) GetPersonalDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetPersonalDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Personal details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(record)
}

// DeletePersonalDetails handles DELETE /api/kyc/personal-details
func (h *KYCHandler) DeletePersonalDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetPersonalDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Personal details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeletePersonalDetails(record.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Personal details deleted"})
}

// SaveGSTDetails handles POST /api/kyc/gst-details
func (h *KYCHandler) SaveGSTDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req models.GSTDetails
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.OwnerID = p.ID
	req.OwnerRole = p.Role

	if err := h.store.SaveGSTDetails(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save GST details",
		})
	}
	return c.JSON(fiber.Map{
		"message":     "GST details saved",
		"gst_details": req,
	})
}

// GetGSTDetails handles GET /api/kyc/gst-details
func (h *KYCHandler) GetGSTDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetGSTDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "GST details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(record)
}

// DeleteGSTDetails handles DELETE /api/kyc/gst-details
func (h *KYCHandler) DeleteGSTDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetGSTDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "GST details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteGSTDetails(record.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "GST details deleted"})
}

// SaveDocumentsUpload handles POST /api/kyc/documents
func (h *KYCHandler) SaveDocumentsUpload(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req models.DocumentsUpload
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.OwnerID = p.ID
	req.OwnerRole = p.Role

	if err := h.store.SaveDocumentsUpload(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save documents",
		})
	}
	return c.JSON(fiber.Map{
		"message":   "Documents saved",
		"documents": req,
	})
}

// GetDocumentsUpload handles GET /api/kyc/documents
func (h *KYCHandler) GetDocumentsUpload(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetDocumentsUpload(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Documents not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(record)
}

// DeleteDocumentsUpload handles DELETE /api/kyc/documents
func (h *KYCHandler) DeleteDocumentsUpload(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetDocumentsUpload(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Documents not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteDocumentsUpload(record.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Documents deleted"})
}

// SaveBankDetails handles POST /api/kyc/bank-details
func (h *KYCHandler) SaveBankDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	var req models.BankDetails
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	req.OwnerID = p.ID
	req.OwnerRole = p.Role

	if err := h.store.SaveBankDetails(&req); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save bank details",
		})
	}
	return c.JSON(fiber.Map{
		"message":      "Bank details saved",
		"bank_details": req,
	})
}

// GetBankDetails handles GET /api/kyc/bank-details
func (h *KYCHandler) GetBankDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetBankDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bank details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(record)
}

// DeleteBankDetails handles DELETE /api/kyc/bank-details
func (h *KYCHandler) DeleteBankDetails(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	record, err := h.store.GetBankDetails(p.ID, p.Role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bank details not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteBankDetails(record.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Bank details deleted"})
}
