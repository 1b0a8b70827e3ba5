package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/services"
	"github.com/transitlink/fleet-backend/internal/storage"
)

func newBookingApp(t *testing.T) (*fiber.App, *storage.MemoryStore) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := services.NewBookingService(store, nil)

	app := fiber.New()
	h := NewBookingHandler(svc, store)
	app.Post("/api/bookings", h.CreateBooking)
	app.Get("/api/bookings", h.GetAllBookings)
	app.Get("/api/bookings/:id", h.GetBooking)
	app.Post("/api/bookings/:id/decide", h.DecideBooking)
	return app, store
}

func seedParties(t *testing.T, store *storage.MemoryStore) (*models.AppUser, *models.Driver) {
	t.Helper()
	user := &models.AppUser{Phone: "9000000001", Role: models.RoleUser}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	driver := &models.Driver{Phone: "9000000002"}
	if err := store.CreateDriver(driver); err != nil {
		t.Fatalf("CreateDriver failed: %v", err)
	}
	return user, driver
}

func TestCreateBookingEndpoint(t *testing.T) {
	app, store := newBookingApp(t)
	user, driver := seedParties(t, store)

	resp := postJSON(t, app, "/api/bookings", fiber.Map{
		"user":         user.ID,
		"driver":       driver.ID,
		"from_address": "Majestic",
		"to_address":   "Whitefield",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	// Unknown driver is a 404, not a silent pending booking
	resp = postJSON(t, app, "/api/bookings", fiber.Map{
		"user":   user.ID,
		"driver": 9999,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestDecideBookingEndpoint(t *testing.T) {
	app, store := newBookingApp(t)
	user, driver := seedParties(t, store)

	bike := &models.Bike{LicensePlate: "KA01XY9999", DriverID: &driver.ID}
	if err := store.CreateBike(bike); err != nil {
		t.Fatalf("CreateBike failed: %v", err)
	}

	resp := postJSON(t, app, "/api/bookings", fiber.Map{
		"user":   user.ID,
		"driver": driver.ID,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create failed with %d", resp.StatusCode)
	}
	created := decodeBody(t, resp)
	bookingID := int(created["booking"].(map[string]any)["ID"].(float64))
	decidePath := fmt.Sprintf("/api/bookings/%d/decide", bookingID)

	resp = postJSON(t, app, decidePath, fiber.Map{
		"status": "maybe",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a bad decision, got %d", resp.StatusCode)
	}

	resp = postJSON(t, app, decidePath, fiber.Map{
		"status": "accepted",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["vehicle_type"] != "bike" {
		t.Fatalf("expected auto-detected bike, got %v", body["vehicle_type"])
	}

	// Re-deciding an accepted booking is a conflict
	resp = postJSON(t, app, decidePath, fiber.Map{
		"status": "accepted",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}
