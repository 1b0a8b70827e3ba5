package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// BookingHandler handles ride booking requests and driver decisions
type BookingHandler struct {
	bookings *services.BookingService
	store    storage.Store
}

func NewBookingHandler(bookings *services.BookingService, store storage.Store) *BookingHandler {
	return &BookingHandler{bookings: bookings, store: store}
}

// CreateBooking handles POST /api/bookings
func (h *BookingHandler) CreateBooking(c *fiber.Ctx) error {
	var req models.BookingCreate
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.UserID == 0 || req.DriverID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "user and driver are required",
		})
	}

	booking, err := h.bookings.Create(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserNotFound), errors.Is(err, services.ErrDriverNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Booking created successfully",
		"booking": booking,
	})
}

// GetAllBookings handles GET /api/bookings. Pass ?driver_id= to scope to one driver.
func (h *BookingHandler) GetAllBookings(c *fiber.Ctx) error {
	if driverParam := c.Query("driver_id"); driverParam != "" {
		driverID, err := strconv.ParseUint(driverParam, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid driver_id",
			})
		}
		bookings, err := h.store.GetBookingsByDriver(uint(driverID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"bookings": bookings})
	}

	bookings, err := h.store.GetAllBookings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// GetBookingsByDriver handles GET /api/bookings/driver/:driverID
func (h *BookingHandler) GetBookingsByDriver(c *fiber.Ctx) error {
	driverID, err := parseParamID(c, "driverID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	bookings, err := h.store.GetBookingsByDriver(driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bookings": bookings})
}

// GetBooking handles GET /api/bookings/:id
func (h *BookingHandler) GetBooking(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	booking, err := h.store.GetBooking(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Booking not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"booking": booking})
}

// DecideBooking handles POST /api/bookings/:id/decide
func (h *BookingHandler) DecideBooking(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid booking ID"})
	}

	var req models.BookingDecision
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	result, err := h.bookings.Decide(id, req.Status, req.VehicleType)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrInvalidDecision), errors.Is(err, services.ErrInvalidVehicleType):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrConflictingBooking), errors.Is(err, services.ErrAlreadyDecided):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, services.ErrNoVehicleForDriver):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	resp := fiber.Map{
		"message": result.Message,
		"booking": result.Booking,
	}
	if result.Vehicle != nil {
		resp["vehicle_type"] = result.Vehicle.Type
		resp["vehicle_id"] = result.Vehicle.ID
	}
	return c.JSON(resp)
}

func parseID(c *fiber.Ctx) (uint, error) {
	return parseParamID(c, "id")
}

func parseParamID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
