package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/transitlink/fleet-backend/internal/models"
	"github.com/transitlink/fleet-backend/internal/storage"
)

func newBookingFixture(t *testing.T) (*BookingService, *storage.MemoryStore, *models.AppUser, *models.Driver) {
	t.Helper()
	store := storage.NewMemoryStore()
	svc := NewBookingService(store, nil)

	user := &models.AppUser{Phone: "9000000001", Name: "Asha", Role: models.RoleUser}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	driver := &models.Driver{Phone: "9000000002", Name: "Ravi"}
	if err := store.CreateDriver(driver); err != nil {
		t.Fatalf("CreateDriver failed: %v", err)
	}
	return svc, store, user, driver
}

func createBooking(t *testing.T, svc *BookingService, userID, driverID uint) *models.Booking {
	t.Helper()
	b, err := svc.Create(&models.BookingCreate{
		UserID:      userID,
		DriverID:    driverID,
		FromAddress: "Majestic",
		ToAddress:   "Whitefield",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.Status != models.BookingStatusPending {
		t.Fatalf("new booking should be pending, got %s", b.Status)
	}
	return b
}

func TestCreateBookingChecksParties(t *testing.T) {
	svc, _, user, driver := newBookingFixture(t)

	if _, err := svc.Create(&models.BookingCreate{UserID: 9999, DriverID: driver.ID}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.Create(&models.BookingCreate{UserID: user.ID, DriverID: 9999}); !errors.Is(err, ErrDriverNotFound) {
		t.Fatalf("expected ErrDriverNotFound, got %v", err)
	}
}

func TestDecideReject(t *testing.T) {
	svc, _, user, driver := newBookingFixture(t)
	b := createBooking(t, svc, user.ID, driver.ID)

	result, err := svc.Decide(b.ID, "rejected", "")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Booking.Status != models.BookingStatusRejected {
		t.Fatalf("expected rejected, got %s", result.Booking.Status)
	}
	if result.Message != "booking rejected" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	// Re-rejecting is idempotent
	result, err = svc.Decide(b.ID, "rejected", "")
	if err != nil {
		t.Fatalf("repeat reject failed: %v", err)
	}
	if result.Message != "booking already rejected" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	// But flipping to accepted is refused
	if _, err := svc.Decide(b.ID, "accepted", ""); !errors.Is(err, ErrAlreadyDecided) {
		t.Fatalf("expected ErrAlreadyDecided, got %v", err)
	}
}

func TestDecideAcceptWithHint(t *testing.T) {
	svc, store, user, driver := newBookingFixture(t)

	bus := &models.Bus{LicensePlate: "KA01AB1234", Capacity: 40, DriverID: &driver.ID}
	if err := store.CreateBus(bus); err != nil {
		t.Fatalf("CreateBus failed: %v", err)
	}
	bike := &models.Bike{LicensePlate: "KA01XY9999", DriverID: &driver.ID}
	if err := store.CreateBike(bike); err != nil {
		t.Fatalf("CreateBike failed: %v", err)
	}

	b := createBooking(t, svc, user.ID, driver.ID)

	result, err := svc.Decide(b.ID, "accepted", "bike")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Vehicle == nil || result.Vehicle.Type != models.VehicleTypeBike {
		t.Fatalf("expected the hinted bike, got %+v", result.Vehicle)
	}
	if result.AutoDetected {
		t.Fatal("hinted accept must not report auto-detection")
	}
	if result.Message != "booking accepted and bike marked as booked" {
		t.Fatalf("unexpected message %q", result.Message)
	}

	// Only the hinted vehicle flips; the bus stays free
	gotBike, _ := store.GetBike(bike.ID)
	if !gotBike.IsBooked {
		t.Fatal("bike should be booked")
	}
	gotBus, _ := store.GetBus(bus.ID)
	if gotBus.IsBooked {
		t.Fatal("bus should not be booked")
	}
}

func TestDecideAcceptAutoDetect(t *testing.T) {
	svc, store, user, driver := newBookingFixture(t)

	// Driver has a car and a bike; probe order picks the car
	car := &models.Car{LicensePlate: "KA02CD5678", Seats: 4, DriverID: &driver.ID}
	if err := store.CreateCar(car); err != nil {
		t.Fatalf("CreateCar failed: %v", err)
	}
	bike := &models.Bike{LicensePlate: "KA02EF1111", DriverID: &driver.ID}
	if err := store.CreateBike(bike); err != nil {
		t.Fatalf("CreateBike failed: %v", err)
	}

	b := createBooking(t, svc, user.ID, driver.ID)

	result, err := svc.Decide(b.ID, "accepted", "")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Vehicle == nil || result.Vehicle.Type != models.VehicleTypeCar {
		t.Fatalf("expected auto-detected car, got %+v", result.Vehicle)
	}
	if !result.AutoDetected {
		t.Fatal("expected auto-detection")
	}
	if !strings.HasSuffix(result.Message, "(auto-detected)") {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestDecideAcceptNoVehicle(t *testing.T) {
	svc, _, user, driver := newBookingFixture(t)
	b := createBooking(t, svc, user.ID, driver.ID)

	result, err := svc.Decide(b.ID, "accepted", "")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if result.Booking.Status != models.BookingStatusAccepted {
		t.Fatal("acceptance should stand without a vehicle")
	}
	if result.VehicleFound {
		t.Fatal("no vehicle should be found")
	}
	if result.Message != "booking accepted but no vehicle found for driver" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestDecideAcceptHintMissKeepsPending(t *testing.T) {
	svc, store, user, driver := newBookingFixture(t)

	bike := &models.Bike{LicensePlate: "KA03GH2222", DriverID: &driver.ID}
	if err := store.CreateBike(bike); err != nil {
		t.Fatalf("CreateBike failed: %v", err)
	}

	b := createBooking(t, svc, user.ID, driver.ID)

	// Hinting a type the driver does not have fails the whole decide
	if _, err := svc.Decide(b.ID, "accepted", "bus"); !errors.Is(err, ErrNoVehicleForDriver) {
		t.Fatalf("expected ErrNoVehicleForDriver, got %v", err)
	}

	got, _ := store.GetBooking(b.ID)
	if got.Status != models.BookingStatusPending {
		t.Fatalf("booking should stay pending, got %s", got.Status)
	}
}

func TestDecideConflict(t *testing.T) {
	svc, store, user, driver := newBookingFixture(t)

	other := &models.Driver{Phone: "9000000003", Name: "Vijay"}
	if err := store.CreateDriver(other); err != nil {
		t.Fatalf("CreateDriver failed: %v", err)
	}

	first := createBooking(t, svc, user.ID, driver.ID)
	second := createBooking(t, svc, user.ID, other.ID)

	if _, err := svc.Decide(first.ID, "accepted", ""); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	// The requester already holds an accepted booking
	if _, err := svc.Decide(second.ID, "accepted", ""); !errors.Is(err, ErrConflictingBooking) {
		t.Fatalf("expected ErrConflictingBooking, got %v", err)
	}

	got, _ := store.GetBooking(second.ID)
	if got.Status != models.BookingStatusPending {
		t.Fatalf("conflicting booking should stay pending, got %s", got.Status)
	}

	// Rejecting the conflicting one still works
	if _, err := svc.Decide(second.ID, "rejected", ""); err != nil {
		t.Fatalf("reject after conflict failed: %v", err)
	}
}

func TestDecideValidation(t *testing.T) {
	svc, _, user, driver := newBookingFixture(t)
	b := createBooking(t, svc, user.ID, driver.ID)

	if _, err := svc.Decide(b.ID, "maybe", ""); !errors.Is(err, ErrInvalidDecision) {
		t.Fatalf("expected ErrInvalidDecision, got %v", err)
	}
	if _, err := svc.Decide(b.ID, "accepted", "truck"); !errors.Is(err, ErrInvalidVehicleType) {
		t.Fatalf("expected ErrInvalidVehicleType, got %v", err)
	}
	if _, err := svc.Decide(9999, "accepted", ""); !errors.Is(err, ErrBookingNotFound) {
		t.Fatalf("expected ErrBookingNotFound, got %v", err)
	}

	// Decision casing and whitespace are normalized
	if _, err := svc.Decide(b.ID, "  ACCEPTED  ", ""); err != nil {
		t.Fatalf("normalized decide failed: %v", err)
	}
}

func TestConcurrentAcceptsSingleWinner(t *testing.T) {
	svc, store, user, _ := newBookingFixture(t)

	// One pending booking per driver, all for the same requester
	const n = 8
	ids := make([]uint, n)
	for i := 0; i < n; i++ {
		d := &models.Driver{Phone: "91000000" + string(rune('0'+i)) + "0"}
		if err := store.CreateDriver(d); err != nil {
			t.Fatalf("CreateDriver failed: %v", err)
		}
		ids[i] = createBooking(t, svc, user.ID, d.ID).ID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decide(ids[i], "accepted", "")
		}(i)
	}
	wg.Wait()

	accepted, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			accepted++
		case errors.Is(err, ErrConflictingBooking):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if accepted != 1 {
		t.Fatalf("expected exactly one accepted booking, got %d", accepted)
	}
	if conflicts != n-1 {
		t.Fatalf("expected %d conflicts, got %d", n-1, conflicts)
	}
}
