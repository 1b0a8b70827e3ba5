package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// VehicleHandler handles bus, car and bike CRUD. Creating or updating a
// vehicle with a driver keeps the driver's assignment pointer in sync
// through the vehicle service.
type VehicleHandler struct {
	store    storage.Store
	vehicles *services.VehicleService
}

func NewVehicleHandler(store storage.Store, vehicles *services.VehicleService) *VehicleHandler {
	return &VehicleHandler{store: store, vehicles: vehicles}
}

// --- Buses ---

// CreateBus handles POST /api/buses
func (h *VehicleHandler) CreateBus(c *fiber.Ctx) error {
	var bus models.Bus
	if err := c.BodyParser(&bus); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if bus.LicensePlate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "License plate is required",
		})
	}

	if err := h.store.CreateBus(&bus); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create bus",
		})
	}
	if bus.DriverID != nil {
		if err := h.vehicles.AssignDriver(*bus.DriverID, models.VehicleTypeBus, bus.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Bus created successfully",
		"bus":     bus,
	})
}

// GetBus handles GET /api/buses/:id
func (h *VehicleHandler) GetBus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bus ID"})
	}
	bus, err := h.store.GetBus(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bus not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bus)
}

// GetAllBuses handles GET /api/buses
func (h *VehicleHandler) GetAllBuses(c *fiber.Ctx) error {
	buses, err := h.store.GetAllBuses()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"buses": buses})
}

// GetBusesByDriver handles GET /api/buses/driver/:driverID
func (h *VehicleHandler) GetBusesByDriver(c *fiber.Ctx) error {
	driverID, err := parseParamID(c, "driverID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	buses, err := h.store.GetBusesByDriver(driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"buses": buses})
}

// UpdateBus handles PUT /api/buses/:id
func (h *VehicleHandler) UpdateBus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bus ID"})
	}
	existing, err := h.store.GetBus(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bus not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	oldDriverID := existing.DriverID

	var req models.Bus
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	existing.LicensePlate = req.LicensePlate
	existing.Capacity = req.Capacity
	existing.DriverID = req.DriverID
	existing.ConductorID = req.ConductorID

	if err := h.store.UpdateBus(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bus",
		})
	}
	if err := h.vehicles.ReassignDriver(oldDriverID, existing.DriverID, models.VehicleTypeBus, existing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Bus updated successfully",
		"bus":     existing,
	})
}

// DeleteBus handles DELETE /api/buses/:id
func (h *VehicleHandler) DeleteBus(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bus ID"})
	}
	existing, err := h.store.GetBus(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bus not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteBus(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete bus",
		})
	}
	if existing.DriverID != nil {
		if err := h.vehicles.ClearDriver(*existing.DriverID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Bus deleted successfully"})
}

// --- Cars ---

// CreateCar handles POST /api/cars
func (h *VehicleHandler) CreateCar(c *fiber.Ctx) error {
	var car models.Car
	if err := c.BodyParser(&car); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if car.LicensePlate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "License plate is required",
		})
	}

	if err := h.store.CreateCar(&car); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create car",
		})
	}
	if car.DriverID != nil {
		if err := h.vehicles.AssignDriver(*car.DriverID, models.VehicleTypeCar, car.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Car created successfully",
		"car":     car,
	})
}

// GetCar handles GET /api/cars/:id
func (h *VehicleHandler) GetCar(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid car ID"})
	}
	car, err := h.store.GetCar(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Car not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(car)
}

// GetAllCars handles GET /api/cars
func (h *VehicleHandler) GetAllCars(c *fiber.Ctx) error {
	cars, err := h.store.GetAllCars()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cars": cars})
}

// GetCarsByDriver handles GET /api/cars/driver/:driverID
func (h *VehicleHandler) GetCarsByDriver(c *fiber.Ctx) error {
	driverID, err := parseParamID(c, "driverID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	cars, err := h.store.GetCarsByDriver(driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"cars": cars})
}

// UpdateCar handles PUT /api/cars/:id
func (h *VehicleHandler) UpdateCar(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid car ID"})
	}
	existing, err := h.store.GetCar(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Car not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	oldDriverID := existing.DriverID

	var req models.Car
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	existing.LicensePlate = req.LicensePlate
	existing.Seats = req.Seats
	existing.DriverID = req.DriverID

	if err := h.store.UpdateCar(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update car",
		})
	}
	if err := h.vehicles.ReassignDriver(oldDriverID, existing.DriverID, models.VehicleTypeCar, existing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Car updated successfully",
		"car":     existing,
	})
}

// DeleteCar handles DELETE /api/cars/:id
func (h *VehicleHandler) DeleteCar(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid car ID"})
	}
	existing, err := h.store.GetCar(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Car not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteCar(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete car",
		})
	}
	if existing.DriverID != nil {
		if err := h.vehicles.ClearDriver(*existing.DriverID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Car deleted successfully"})
}

// --- Bikes ---

// CreateBike handles POST /api/bikes
func (h *VehicleHandler) CreateBike(c *fiber.Ctx) error {
	var bike models.Bike
	if err := c.BodyParser(&bike); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if bike.LicensePlate == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "License plate is required",
		})
	}

	if err := h.store.CreateBike(&bike); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create bike",
		})
	}
	if bike.DriverID != nil {
		if err := h.vehicles.AssignDriver(*bike.DriverID, models.VehicleTypeBike, bike.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Bike created successfully",
		"bike":    bike,
	})
}

// GetBike handles GET /api/bikes/:id
func (h *VehicleHandler) GetBike(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bike ID"})
	}
	bike, err := h.store.GetBike(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bike not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(bike)
}

// GetAllBikes handles GET /api/bikes
func (h *VehicleHandler) GetAllBikes(c *fiber.Ctx) error {
	bikes, err := h.store.GetAllBikes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bikes": bikes})
}

// GetBikesByDriver handles GET /api/bikes/driver/:driverID
func (h *VehicleHandler) GetBikesByDriver(c *fiber.Ctx) error {
	driverID, err := parseParamID(c, "driverID")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid driver ID"})
	}
	bikes, err := h.store.GetBikesByDriver(driverID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"bikes": bikes})
}

// UpdateBike handles PUT /api/bikes/:id
func (h *VehicleHandler) UpdateBike(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bike ID"})
	}
	existing, err := h.store.GetBike(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bike not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	oldDriverID := existing.DriverID

	var req models.Bike
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	existing.LicensePlate = req.LicensePlate
	existing.DriverID = req.DriverID

	if err := h.store.UpdateBike(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update bike",
		})
	}
	if err := h.vehicles.ReassignDriver(oldDriverID, existing.DriverID, models.VehicleTypeBike, existing.ID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"message": "Bike updated successfully",
		"bike":    existing,
	})
}

// DeleteBike handles DELETE /api/bikes/:id
func (h *VehicleHandler) DeleteBike(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid bike ID"})
	}
	existing, err := h.store.GetBike(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Bike not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteBike(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete bike",
		})
	}
	if existing.DriverID != nil {
		if err := h.vehicles.ClearDriver(*existing.DriverID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "Bike deleted successfully"})
}
