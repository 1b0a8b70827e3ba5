package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// RouteHandler handles route and checkpoint CRUD
type RouteHandler struct {
	store storage.Store
}

func NewRouteHandler(store storage.Store) *RouteHandler {
	return &RouteHandler{store: store}
}

// vehicleExists checks the vehicle table named by vehicleType for id
func (h *RouteHandler) vehicleExists(vehicleType string, id uint) (bool, error) {
	var err error
	switch vehicleType {
	case models.VehicleTypeBus:
		_, err = h.store.GetBus(id)
	case models.VehicleTypeCar:
		_, err = h.store.GetCar(id)
	case models.VehicleTypeBike:
		_, err = h.store.GetBike(id)
	default:
		return false, nil
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateRoute handles POST /api/routes
func (h *RouteHandler) CreateRoute(c *fiber.Ctx) error {
	var route models.Route
	if err := c.BodyParser(&route); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if route.Name == "" || route.FromLocation == "" || route.ToLocation == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Name, from_location, and to_location are required",
		})
	}
	if !models.ValidVehicleType(route.VehicleType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vehicle_type must be one of bus, car, bike",
		})
	}
	ok, err := h.vehicleExists(route.VehicleType, route.VehicleID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Vehicle not found",
		})
	}

	if err := h.store.CreateRoute(&route); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create route",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Route created successfully",
		"route":   route,
	})
}

// GetRoute handles GET /api/routes/:id and includes the route's checkpoints
func (h *RouteHandler) GetRoute(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid route ID"})
	}

	route, err := h.store.GetRoute(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	checkpoints, err := h.store.GetCheckpointsByRoute(route.ID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"route":       route,
		"checkpoints": checkpoints,
	})
}

// GetAllRoutes handles GET /api/routes. Pass ?vehicle_type= and
// ?vehicle_id= to scope to one vehicle.
func (h *RouteHandler) GetAllRoutes(c *fiber.Ctx) error {
	vehicleType := c.Query("vehicle_type")
	if vehicleType != "" {
		if !models.ValidVehicleType(vehicleType) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "vehicle_type must be one of bus, car, bike",
			})
		}
		vehicleID := c.QueryInt("vehicle_id")
		if vehicleID <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid vehicle_id",
			})
		}
		routes, err := h.store.GetRoutesByVehicle(vehicleType, uint(vehicleID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"routes": routes})
	}

	routes, err := h.store.GetAllRoutes()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"routes": routes})
}

// UpdateRoute handles PUT /api/routes/:id
func (h *RouteHandler) UpdateRoute(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid route ID"})
	}
	existing, err := h.store.GetRoute(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var req models.Route
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.VehicleType != "" && !models.ValidVehicleType(req.VehicleType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "vehicle_type must be one of bus, car, bike",
		})
	}

	existing.Name = req.Name
	existing.FromLocation = req.FromLocation
	existing.ToLocation = req.ToLocation
	existing.StartDate = req.StartDate
	existing.EndDate = req.EndDate
	existing.Polyline = req.Polyline
	existing.Distance = req.Distance
	existing.Duration = req.Duration
	if req.VehicleType != "" {
		existing.VehicleType = req.VehicleType
		existing.VehicleID = req.VehicleID
	}

	if err := h.store.UpdateRoute(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update route",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Route updated successfully",
		"route":   existing,
	})
}

// DeleteRoute handles DELETE /api/routes/:id and removes the route's checkpoints
func (h *RouteHandler) DeleteRoute(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid route ID"})
	}
	if _, err := h.store.GetRoute(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	checkpoints, err := h.store.GetCheckpointsByRoute(id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	for _, cp := range checkpoints {
		if err := h.store.DeleteCheckpoint(cp.ID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	if err := h.store.DeleteRoute(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete route",
		})
	}
	return c.JSON(fiber.Map{"message": "Route deleted successfully"})
}

// CreateCheckpoint handles POST /api/checkpoints
func (h *RouteHandler) CreateCheckpoint(c *fiber.Ctx) error {
	var cp models.Checkpoint
	if err := c.BodyParser(&cp); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if _, err := h.store.GetRoute(cp.RouteID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Route not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if err := h.store.CreateCheckpoint(&cp); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create checkpoint",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Checkpoint created successfully",
		"checkpoint": cp,
	})
}

// GetAllCheckpoints handles GET /api/checkpoints. Pass ?route_id= to
// scope to one route.
func (h *RouteHandler) GetAllCheckpoints(c *fiber.Ctx) error {
	if routeID := c.QueryInt("route_id"); routeID > 0 {
		cps, err := h.store.GetCheckpointsByRoute(uint(routeID))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(fiber.Map{"checkpoints": cps})
	}

	cps, err := h.store.GetAllCheckpoints()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"checkpoints": cps})
}

// GetCheckpoint handles GET /api/checkpoints/:id
func (h *RouteHandler) GetCheckpoint(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid checkpoint ID"})
	}
	cp, err := h.store.GetCheckpoint(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Checkpoint not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(cp)
}

// UpdateCheckpoint handles PUT /api/checkpoints/:id
func (h *RouteHandler) UpdateCheckpoint(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid checkpoint ID"})
	}
	existing, err := h.store.GetCheckpoint(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Checkpoint not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	var req models.Checkpoint
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	existing.Address = req.Address
	existing.Lat = req.Lat
	existing.Lng = req.Lng

	if err := h.store.UpdateCheckpoint(existing); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update checkpoint",
		})
	}
	return c.JSON(fiber.Map{
		"message":    "Checkpoint updated successfully",
		"checkpoint": existing,
	})
}

// DeleteCheckpoint handles DELETE /api/checkpoints/:id
func (h *RouteHandler) DeleteCheckpoint(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid checkpoint ID"})
	}
	if _, err := h.store.GetCheckpoint(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Checkpoint not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if err := h.store.DeleteCheckpoint(id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete checkpoint",
		})
	}
	return c.JSON(fiber.Map{"message": "Checkpoint deleted successfully"})
}
