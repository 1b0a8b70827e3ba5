package storage

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/transitlink/fleet-backend/internal/models"
)

func TestUpsertOTPClaimsWindow(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	first := &models.PhoneOTP{
		Phone:      "9876543210",
		Role:       models.RoleUser,
		CodeHash:   "hash-1",
		ExpiresAt:  now.Add(5 * time.Minute),
		LastSentAt: now,
	}
	claimed, err := store.UpsertOTP(first, now.Add(-60*time.Second))
	if err != nil {
		t.Fatalf("UpsertOTP failed: %v", err)
	}
	if !claimed {
		t.Fatal("first upsert should claim the window")
	}

	// Inside the cooldown the write must not land
	second := &models.PhoneOTP{
		Phone:      "9876543210",
		Role:       models.RoleUser,
		CodeHash:   "hash-2",
		ExpiresAt:  now.Add(5 * time.Minute),
		LastSentAt: now.Add(time.Second),
	}
	claimed, err = store.UpsertOTP(second, now.Add(time.Second).Add(-60*time.Second))
	if err != nil {
		t.Fatalf("UpsertOTP failed: %v", err)
	}
	if claimed {
		t.Fatal("upsert inside the cooldown should not claim the window")
	}

	rec, err := store.GetOTP("9876543210", models.RoleUser)
	if err != nil {
		t.Fatalf("GetOTP failed: %v", err)
	}
	if rec.CodeHash != "hash-1" {
		t.Fatalf("losing upsert overwrote the record: %q", rec.CodeHash)
	}

	// After the cooldown the overwrite lands and resets attempts
	rec.Attempts = 3
	if err := store.UpdateOTP(rec); err != nil {
		t.Fatalf("UpdateOTP failed: %v", err)
	}
	later := now.Add(61 * time.Second)
	third := &models.PhoneOTP{
		Phone:      "9876543210",
		Role:       models.RoleUser,
		CodeHash:   "hash-3",
		ExpiresAt:  later.Add(5 * time.Minute),
		LastSentAt: later,
	}
	claimed, err = store.UpsertOTP(third, later.Add(-60*time.Second))
	if err != nil {
		t.Fatalf("UpsertOTP failed: %v", err)
	}
	if !claimed {
		t.Fatal("upsert after the cooldown should claim the window")
	}
	rec, _ = store.GetOTP("9876543210", models.RoleUser)
	if rec.CodeHash != "hash-3" || rec.Attempts != 0 {
		t.Fatalf("overwrite did not reset the record: %+v", rec)
	}
}

func TestUpsertOTPConcurrent(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	const n = 16
	var wg sync.WaitGroup
	wins := make([]bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec := &models.PhoneOTP{
				Phone:      "9876543210",
				Role:       models.RoleDriver,
				CodeHash:   "hash",
				ExpiresAt:  now.Add(5 * time.Minute),
				LastSentAt: now,
			}
			claimed, err := store.UpsertOTP(rec, now.Add(-60*time.Second))
			if err != nil {
				t.Errorf("UpsertOTP failed: %v", err)
				return
			}
			wins[i] = claimed
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, w := range wins {
		if w {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winner, got %d", winners)
	}
}

func TestOTPKeyIsPerRole(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()

	for _, role := range []string{models.RoleUser, models.RoleDriver} {
		rec := &models.PhoneOTP{
			Phone:      "9876543210",
			Role:       role,
			CodeHash:   "hash-" + role,
			ExpiresAt:  now.Add(5 * time.Minute),
			LastSentAt: now,
		}
		if claimed, err := store.UpsertOTP(rec, now.Add(-60*time.Second)); err != nil || !claimed {
			t.Fatalf("upsert for %s failed: claimed=%v err=%v", role, claimed, err)
		}
	}

	userRec, err := store.GetOTP("9876543210", models.RoleUser)
	if err != nil {
		t.Fatalf("GetOTP user failed: %v", err)
	}
	if userRec.CodeHash != "hash-user" {
		t.Fatalf("records not isolated per role: %q", userRec.CodeHash)
	}
}

func TestFindVehicleForDriver(t *testing.T) {
	store := NewMemoryStore()
	driverID := uint(10)

	if _, err := store.FindVehicleForDriver(models.VehicleTypeBus, driverID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Two cars for one driver: the lowest id wins, deterministically
	first := &models.Car{LicensePlate: "KA01AA0001", DriverID: &driverID}
	second := &models.Car{LicensePlate: "KA01AA0002", DriverID: &driverID}
	if err := store.CreateCar(first); err != nil {
		t.Fatalf("CreateCar failed: %v", err)
	}
	if err := store.CreateCar(second); err != nil {
		t.Fatalf("CreateCar failed: %v", err)
	}

	ref, err := store.FindVehicleForDriver(models.VehicleTypeCar, driverID)
	if err != nil {
		t.Fatalf("FindVehicleForDriver failed: %v", err)
	}
	if ref.ID != first.ID {
		t.Fatalf("expected lowest id %d, got %d", first.ID, ref.ID)
	}

	if err := store.SetVehicleBooked(models.VehicleTypeCar, ref.ID, true); err != nil {
		t.Fatalf("SetVehicleBooked failed: %v", err)
	}
	car, _ := store.GetCar(ref.ID)
	if !car.IsBooked {
		t.Fatal("car should be booked")
	}
}

func TestKYCUpsertPerOwner(t *testing.T) {
	store := NewMemoryStore()

	rec := &models.PersonalDetails{OwnerID: 1, OwnerRole: models.RoleDriver, FullName: "Ravi"}
	if err := store.SavePersonalDetails(rec); err != nil {
		t.Fatalf("SavePersonalDetails failed: %v", err)
	}

	// Saving again for the same owner replaces, not duplicates
	update := &models.PersonalDetails{OwnerID: 1, OwnerRole: models.RoleDriver, FullName: "Ravi Kumar"}
	if err := store.SavePersonalDetails(update); err != nil {
		t.Fatalf("SavePersonalDetails failed: %v", err)
	}

	got, err := store.GetPersonalDetails(1, models.RoleDriver)
	if err != nil {
		t.Fatalf("GetPersonalDetails failed: %v", err)
	}
	if got.FullName != "Ravi Kumar" {
		t.Fatalf("expected the updated name, got %q", got.FullName)
	}

	// Same id under another role is a different owner
	if _, err := store.GetPersonalDetails(1, models.RoleConductor); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for other role, got %v", err)
	}
}

func TestBookingQueries(t *testing.T) {
	store := NewMemoryStore()

	mk := func(userID, driverID uint, status string) *models.Booking {
		b := &models.Booking{UserID: userID, DriverID: driverID, Status: status}
		if err := store.CreateBooking(b); err != nil {
			t.Fatalf("CreateBooking failed: %v", err)
		}
		return b
	}

	accepted := mk(1, 10, models.BookingStatusAccepted)
	pending := mk(1, 11, models.BookingStatusPending)
	mk(2, 10, models.BookingStatusPending)

	rows, err := store.GetBookingsByUserForUpdate(1)
	if err != nil {
		t.Fatalf("GetBookingsByUserForUpdate failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 bookings for user 1, got %d", len(rows))
	}
	// id-ascending, same as the database store's ordered lock pass
	if rows[0].ID != accepted.ID || rows[1].ID != pending.ID {
		t.Fatalf("expected ids [%d %d], got [%d %d]", accepted.ID, pending.ID, rows[0].ID, rows[1].ID)
	}
	if rows[0].Status != models.BookingStatusAccepted {
		t.Fatalf("expected accepted status, got %q", rows[0].Status)
	}

	byDriver, err := store.GetBookingsByDriver(10)
	if err != nil {
		t.Fatalf("GetBookingsByDriver failed: %v", err)
	}
	if len(byDriver) != 2 {
		t.Fatalf("expected 2 bookings for driver 10, got %d", len(byDriver))
	}
}
