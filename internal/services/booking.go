package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/transitlink/fleet-backend/internal/events"
	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

// BookingService owns the pending→accepted|rejected transition and its
// one-accepted-booking-per-user invariant.
type BookingService struct {
	store  storage.Store
	events events.Publisher

	now func() time.Time
}

func NewBookingService(store storage.Store, publisher events.Publisher) *BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &BookingService{store: store, events: publisher, now: time.Now}
}

// Create registers a pending ride request after checking both parties exist
func (s *BookingService) Create(req *models.BookingCreate) (*models.Booking, error) {
	if _, err := s.store.GetUser(req.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if _, err := s.store.GetDriver(req.DriverID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDriverNotFound
		}
		return nil, err
	}

	booking := &models.Booking{
		UserID:      req.UserID,
		DriverID:    req.DriverID,
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Status:      models.BookingStatusPending,
	}
	if err := s.store.CreateBooking(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// DecisionResult reports what a decide call did
type DecisionResult struct {
	Booking      *models.Booking
	Vehicle      *models.VehicleRef
	AutoDetected bool
	// VehicleFound is false when an unhinted accept found no vehicle at
	// all; the acceptance stands and this is informational only.
	VehicleFound bool
	Message      string
}

// Decide resolves a pending booking. The whole read-check-write runs
// inside one store transaction with every booking row of the requester
// locked in a single id-ascending pass, so two concurrent decides for
// the same requester serialize behind each other: neither can pass the
// conflict check on stale state, and neither can deadlock the other by
// taking the same rows in opposite order.
//
// All checks, including the vehicle lookup for a hinted accept, happen
// before the first write: a hint naming a vehicle the driver does not
// have fails the decide and leaves the booking pending.
func (s *BookingService) Decide(bookingID uint, decision, vehicleTypeHint string) (*DecisionResult, error) {
	decision = strings.ToLower(strings.TrimSpace(decision))
	if !models.ValidDecision(decision) {
		return nil, ErrInvalidDecision
	}
	vehicleTypeHint = strings.ToLower(strings.TrimSpace(vehicleTypeHint))
	if vehicleTypeHint != "" && !models.ValidVehicleType(vehicleTypeHint) {
		return nil, ErrInvalidVehicleType
	}

	var result *DecisionResult
	err := s.store.Transaction(func(tx storage.Store) error {
		// Unlocked peek to learn the requester; a booking never changes
		// hands, so the user id cannot go stale before the locks land.
		peek, err := tx.GetBooking(bookingID)
		if errors.Is(err, storage.ErrNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		rows, err := tx.GetBookingsByUserForUpdate(peek.UserID)
		if err != nil {
			return err
		}

		// The locked snapshot is authoritative; the target's status and
		// the conflict check both read from it.
		var booking *models.Booking
		conflict := false
		for _, r := range rows {
			if r.ID == bookingID {
				booking = r
				continue
			}
			if r.Status == models.BookingStatusAccepted {
				conflict = true
			}
		}
		if booking == nil {
			return ErrBookingNotFound
		}

		if booking.Status != models.BookingStatusPending {
			// Re-applying the same terminal rejection is harmless and
			// idempotent; everything else is refused.
			if decision == models.BookingStatusRejected && booking.Status == models.BookingStatusRejected {
				result = &DecisionResult{Booking: booking, Message: "booking already rejected"}
				return nil
			}
			return ErrAlreadyDecided
		}

		if decision == models.BookingStatusRejected {
			booking.Status = models.BookingStatusRejected
			if err := tx.UpdateBooking(booking); err != nil {
				return err
			}
			result = &DecisionResult{Booking: booking, Message: "booking rejected"}
			return nil
		}

		// Accepting: the requester may never hold two accepted bookings.
		if conflict {
			return ErrConflictingBooking
		}

		var vehicle *models.VehicleRef
		autoDetected := false
		if vehicleTypeHint != "" {
			vehicle, err = tx.FindVehicleForDriver(vehicleTypeHint, booking.DriverID)
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNoVehicleForDriver
			}
			if err != nil {
				return err
			}
		} else {
			// Fixed probe order; which type gets auto-booked for a
			// multi-vehicle driver is client-visible behavior.
			for _, vt := range models.VehicleProbeOrder {
				ref, err := tx.FindVehicleForDriver(vt, booking.DriverID)
				if errors.Is(err, storage.ErrNotFound) {
					continue
				}
				if err != nil {
					return err
				}
				vehicle = ref
				autoDetected = true
				break
			}
		}

		booking.Status = models.BookingStatusAccepted
		if err := tx.UpdateBooking(booking); err != nil {
			return err
		}

		if vehicle == nil {
			result = &DecisionResult{
				Booking:      booking,
				VehicleFound: false,
				Message:      "booking accepted but no vehicle found for driver",
			}
			return nil
		}

		if err := tx.SetVehicleBooked(vehicle.Type, vehicle.ID, true); err != nil {
			return err
		}

		msg := fmt.Sprintf("booking accepted and %s marked as booked", vehicle.Type)
		if autoDetected {
			msg += " (auto-detected)"
		}
		result = &DecisionResult{
			Booking:      booking,
			Vehicle:      vehicle,
			AutoDetected: autoDetected,
			VehicleFound: true,
			Message:      msg,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishDecision(result)
	return result, nil
}

func (s *BookingService) publishDecision(result *DecisionResult) {
	evt := events.BookingDecided{
		BookingID: result.Booking.ID,
		UserID:    result.Booking.UserID,
		DriverID:  result.Booking.DriverID,
		Status:    result.Booking.Status,
		DecidedAt: s.now(),
	}
	if result.Vehicle != nil {
		evt.VehicleType = result.Vehicle.Type
		evt.VehicleID = result.Vehicle.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.events.BookingDecided(ctx, evt); err != nil {
		log.Printf("⚠️  Failed to publish booking event: %v", err)
	}
}
