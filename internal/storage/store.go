package storage

import (
	"errors"
	"time"

	"github.com/transitlink/fleet-backend/internal/models"
)

// ErrNotFound is returned by every Get* method when no row matches
var ErrNotFound = errors.New("record not found")

// Store defines the interface for storage operations. DatabaseStore backs
// it with PostgreSQL; MemoryStore backs it with maps for tests and local
// development.
type Store interface {
	// OTP operations. UpsertOTP is an atomic create-or-overwrite keyed on
	// (phone, role): the write only lands if the existing row's
	// last_sent_at is not after notBefore, and the returned bool reports
	// whether this caller claimed the send window. Two concurrent sends
	// inside the cooldown cannot both claim it.
	// IncrementOTPAttempts bumps the failure counter atomically and
	// returns the post-increment value, so parallel wrong-code verifies
	// cannot read the same stale counter and overwrite each other's
	// increments.
	GetOTP(phone, role string) (*models.PhoneOTP, error)
	UpsertOTP(otp *models.PhoneOTP, notBefore time.Time) (bool, error)
	IncrementOTPAttempts(phone, role string) (int, error)
	UpdateOTP(otp *models.PhoneOTP) error

	// Driver operations
	CreateDriver(driver *models.Driver) error
	GetDriver(id uint) (*models.Driver, error)
	GetDriverByPhone(phone string) (*models.Driver, error)
	GetDriverByEmail(email string) (*models.Driver, error)
	GetAllDrivers() ([]*models.Driver, error)
	UpdateDriver(driver *models.Driver) error
	DeleteDriver(id uint) error

	// Conductor operations
	CreateConductor(conductor *models.Conductor) error
	GetConductor(id uint) (*models.Conductor, error)
	GetConductorByPhone(phone string) (*models.Conductor, error)
	GetConductorByEmail(email string) (*models.Conductor, error)
	GetAllConductors() ([]*models.Conductor, error)
	UpdateConductor(conductor *models.Conductor) error
	DeleteConductor(id uint) error

	// AppUser operations
	CreateUser(user *models.AppUser) error
	GetUser(id uint) (*models.AppUser, error)
	GetUserByPhone(phone string) (*models.AppUser, error)

	// Vehicle operations
	CreateBus(bus *models.Bus) error
	GetBus(id uint) (*models.Bus, error)
	GetAllBuses() ([]*models.Bus, error)
	GetBusesByDriver(driverID uint) ([]*models.Bus, error)
	UpdateBus(bus *models.Bus) error
	DeleteBus(id uint) error

	CreateCar(car *models.Car) error
	GetCar(id uint) (*models.Car, error)
	GetAllCars() ([]*models.Car, error)
	GetCarsByDriver(driverID uint) ([]*models.Car, error)
	UpdateCar(car *models.Car) error
	DeleteCar(id uint) error

	CreateBike(bike *models.Bike) error
	GetBike(id uint) (*models.Bike, error)
	GetAllBikes() ([]*models.Bike, error)
	GetBikesByDriver(driverID uint) ([]*models.Bike, error)
	UpdateBike(bike *models.Bike) error
	DeleteBike(id uint) error

	// FindVehicleForDriver probes a single vehicle-type table for a row
	// assigned to the driver; SetVehicleBooked flips its booked flag.
	FindVehicleForDriver(vehicleType string, driverID uint) (*models.VehicleRef, error)
	SetVehicleBooked(vehicleType string, id uint, booked bool) error

	// Route operations
	CreateRoute(route *models.Route) error
	GetRoute(id uint) (*models.Route, error)
	GetAllRoutes() ([]*models.Route, error)
	GetRoutesByVehicle(vehicleType string, vehicleID uint) ([]*models.Route, error)
	UpdateRoute(route *models.Route) error
	DeleteRoute(id uint) error

	// Checkpoint operations
	CreateCheckpoint(cp *models.Checkpoint) error
	GetCheckpoint(id uint) (*models.Checkpoint, error)
	GetAllCheckpoints() ([]*models.Checkpoint, error)
	GetCheckpointsByRoute(routeID uint) ([]*models.Checkpoint, error)
	UpdateCheckpoint(cp *models.Checkpoint) error
	DeleteCheckpoint(id uint) error

	// KYC operations. Save* upserts on (owner id, owner role).
	SavePersonalDetails(p *models.PersonalDetails) error
	GetPersonalDetails(ownerID uint, ownerRole string) (*models.PersonalDetails, error)
	DeletePersonalDetails(id uint) error

	SaveGSTDetails(g *models.GSTDetails) error
	GetGSTDetails(ownerID uint, ownerRole string) (*models.GSTDetails, error)
	DeleteGSTDetails(id uint) error

	SaveDocumentsUpload(d *models.DocumentsUpload) error
	GetDocumentsUpload(ownerID uint, ownerRole string) (*models.DocumentsUpload, error)
	DeleteDocumentsUpload(id uint) error

	SaveBankDetails(b *models.BankDetails) error
	GetBankDetails(ownerID uint, ownerRole string) (*models.BankDetails, error)
	DeleteBankDetails(id uint) error

	// Booking operations. GetBookingsByUserForUpdate row-locks every
	// booking of one user in id-ascending order inside a Transaction, so
	// concurrent decides for the same user serialize instead of
	// deadlocking on opposite lock order.
	CreateBooking(booking *models.Booking) error
	GetBooking(id uint) (*models.Booking, error)
	GetBookingsByUserForUpdate(userID uint) ([]*models.Booking, error)
	GetAllBookings() ([]*models.Booking, error)
	GetBookingsByDriver(driverID uint) ([]*models.Booking, error)
	UpdateBooking(booking *models.Booking) error

	// Transaction runs fn against a store view whose writes commit only
	// if fn returns nil. The booking decide read-check-write runs here.
	Transaction(fn func(tx Store) error) error

	// Ping reports backend health
	Ping() error
}
