package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/transitlink/fleet-backend/internal/models"
)

// DatabaseStore implements Store on top of GORM/PostgreSQL
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---------- OTP ----------

func (s *DatabaseStore) GetOTP(phone, role string) (*models.PhoneOTP, error) {
	var otp models.PhoneOTP
	if err := s.db.Where("phone = ? AND role = ?", phone, role).First(&otp).Error; err != nil {
		return nil, translate(err)
	}
	return &otp, nil
}

// UpsertOTP inserts the record, or overwrites the existing (phone, role)
// row provided its last_sent_at is not after notBefore. The conditional
// assignment makes the cooldown check atomic: of two concurrent sends
// only one gets RowsAffected > 0.
func (s *DatabaseStore) UpsertOTP(otp *models.PhoneOTP, notBefore time.Time) (bool, error) {
	res := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "phone"}, {Name: "role"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"code_hash":    otp.CodeHash,
			"verified":     false,
			"expires_at":   otp.ExpiresAt,
			"attempts":     0,
			"last_sent_at": otp.LastSentAt,
			"updated_at":   time.Now(),
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Lte{Column: clause.Column{Table: "phone_otps", Name: "last_sent_at"}, Value: notBefore},
		}},
	}).Create(otp)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IncrementOTPAttempts bumps the counter in a single UPDATE with a
// RETURNING clause, so concurrent wrong-code verifies each claim a
// distinct attempt instead of overwriting each other with a stale
// read-modify-write.
func (s *DatabaseStore) IncrementOTPAttempts(phone, role string) (int, error) {
	var otp models.PhoneOTP
	res := s.db.Model(&otp).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "attempts"}}}).
		Where("phone = ? AND role = ?", phone, role).
		Update("attempts", gorm.Expr("attempts + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return otp.Attempts, nil
}

func (s *DatabaseStore) UpdateOTP(otp *models.PhoneOTP) error {
	return s.db.Model(otp).Select("verified", "attempts").Updates(map[string]interface{}{
		"verified": otp.Verified,
		"attempts": otp.Attempts,
	}).Error
}

// ---------- Drivers ----------

func (s *DatabaseStore) CreateDriver(driver *models.Driver) error {
	return s.db.Create(driver).Error
}

func (s *DatabaseStore) GetDriver(id uint) (*models.Driver, error) {
	var d models.Driver
	if err := s.db.First(&d, id).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *DatabaseStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	var d models.Driver
	if err := s.db.Where("phone = ?", phone).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *DatabaseStore) GetDriverByEmail(email string) (*models.Driver, error) {
	var d models.Driver
	if err := s.db.Where("email = ?", email).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *DatabaseStore) GetAllDrivers() ([]*models.Driver, error) {
	var drivers []*models.Driver
	if err := s.db.Find(&drivers).Error; err != nil {
		return nil, err
	}
	return drivers, nil
}

func (s *DatabaseStore) UpdateDriver(driver *models.Driver) error {
	return s.db.Save(driver).Error
}

func (s *DatabaseStore) DeleteDriver(id uint) error {
	res := s.db.Delete(&models.Driver{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Conductors ----------

func (s *DatabaseStore) CreateConductor(conductor *models.Conductor) error {
	return s.db.Create(conductor).Error
}

func (s *DatabaseStore) GetConductor(id uint) (*models.Conductor, error) {
	var c models.Conductor
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *DatabaseStore) GetConductorByPhone(phone string) (*models.Conductor, error) {
	var c models.Conductor
	if err := s.db.Where("phone = ?", phone).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *DatabaseStore) GetConductorByEmail(email string) (*models.Conductor, error) {
	var c models.Conductor
	if err := s.db.Where("email = ?", email).First(&c).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *DatabaseStore) GetAllConductors() ([]*models.Conductor, error) {
	var conductors []*models.Conductor
	if err := s.db.Find(&conductors).Error; err != nil {
		return nil, err
	}
	return conductors, nil
}

func (s *DatabaseStore) UpdateConductor(conductor *models.Conductor) error {
	return s.db.Save(conductor).Error
}

func (s *DatabaseStore) DeleteConductor(id uint) error {
	res := s.db.Delete(&models.Conductor{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- AppUsers ----------

func (s *DatabaseStore) CreateUser(user *models.AppUser) error {
	return s.db.Create(user).Error
}

func (s *DatabaseStore) GetUser(id uint) (*models.AppUser, error) {
	var u models.AppUser
	if err := s.db.First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (s *DatabaseStore) GetUserByPhone(phone string) (*models.AppUser, error) {
	var u models.AppUser
	if err := s.db.Where("phone = ?", phone).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ---------- Vehicles ----------

func (s *DatabaseStore) CreateBus(bus *models.Bus) error { return s.db.Create(bus).Error }

func (s *DatabaseStore) GetBus(id uint) (*models.Bus, error) {
	var b models.Bus
	if err := s.db.First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *DatabaseStore) GetAllBuses() ([]*models.Bus, error) {
	var buses []*models.Bus
	if err := s.db.Find(&buses).Error; err != nil {
		return nil, err
	}
	return buses, nil
}

func (s *DatabaseStore) GetBusesByDriver(driverID uint) ([]*models.Bus, error) {
	var buses []*models.Bus
	if err := s.db.Where("driver_id = ?", driverID).Find(&buses).Error; err != nil {
		return nil, err
	}
	return buses, nil
}

func (s *DatabaseStore) UpdateBus(bus *models.Bus) error { return s.db.Save(bus).Error }

func (s *DatabaseStore) DeleteBus(id uint) error {
	res := s.db.Delete(&models.Bus{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) CreateCar(car *models.Car) error { return s.db.Create(car).Error }

func (s *DatabaseStore) GetCar(id uint) (*models.Car, error) {
	var c models.Car
	if err := s.db.First(&c, id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (s *DatabaseStore) GetAllCars() ([]*models.Car, error) {
	var cars []*models.Car
	if err := s.db.Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (s *DatabaseStore) GetCarsByDriver(driverID uint) ([]*models.Car, error) {
	var cars []*models.Car
	if err := s.db.Where("driver_id = ?", driverID).Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (s *DatabaseStore) UpdateCar(car *models.Car) error { return s.db.Save(car).Error }

func (s *DatabaseStore) DeleteCar(id uint) error {
	res := s.db.Delete(&models.Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) CreateBike(bike *models.Bike) error { return s.db.Create(bike).Error }

func (s *DatabaseStore) GetBike(id uint) (*models.Bike, error) {
	var b models.Bike
	if err := s.db.First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *DatabaseStore) GetAllBikes() ([]*models.Bike, error) {
	var bikes []*models.Bike
	if err := s.db.Find(&bikes).Error; err != nil {
		return nil, err
	}
	return bikes, nil
}

func (s *DatabaseStore) GetBikesByDriver(driverID uint) ([]*models.Bike, error) {
	var bikes []*models.Bike
	if err := s.db.Where("driver_id = ?", driverID).Find(&bikes).Error; err != nil {
		return nil, err
	}
	return bikes, nil
}

func (s *DatabaseStore) UpdateBike(bike *models.Bike) error { return s.db.Save(bike).Error }

func (s *DatabaseStore) DeleteBike(id uint) error {
	res := s.db.Delete(&models.Bike{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) FindVehicleForDriver(vehicleType string, driverID uint) (*models.VehicleRef, error) {
	var id uint
	var err error
	switch vehicleType {
	case models.VehicleTypeBus:
		var b models.Bus
		err = s.db.Where("driver_id = ?", driverID).First(&b).Error
		id = b.ID
	case models.VehicleTypeCar:
		var c models.Car
		err = s.db.Where("driver_id = ?", driverID).First(&c).Error
		id = c.ID
	case models.VehicleTypeBike:
		var b models.Bike
		err = s.db.Where("driver_id = ?", driverID).First(&b).Error
		id = b.ID
	default:
		return nil, fmt.Errorf("unknown vehicle type %q", vehicleType)
	}
	if err != nil {
		return nil, translate(err)
	}
	return &models.VehicleRef{Type: vehicleType, ID: id}, nil
}

func (s *DatabaseStore) SetVehicleBooked(vehicleType string, id uint, booked bool) error {
	var err error
	switch vehicleType {
	case models.VehicleTypeBus:
		err = s.db.Model(&models.Bus{}).Where("id = ?", id).Update("is_booked", booked).Error
	case models.VehicleTypeCar:
		err = s.db.Model(&models.Car{}).Where("id = ?", id).Update("is_booked", booked).Error
	case models.VehicleTypeBike:
		err = s.db.Model(&models.Bike{}).Where("id = ?", id).Update("is_booked", booked).Error
	default:
		err = fmt.Errorf("unknown vehicle type %q", vehicleType)
	}
	return err
}

// ---------- Routes ----------

func (s *DatabaseStore) CreateRoute(route *models.Route) error { return s.db.Create(route).Error }

func (s *DatabaseStore) GetRoute(id uint) (*models.Route, error) {
	var r models.Route
	if err := s.db.First(&r, id).Error; err != nil {
		return nil, translate(err)
	}
	return &r, nil
}

func (s *DatabaseStore) GetAllRoutes() ([]*models.Route, error) {
	var routes []*models.Route
	if err := s.db.Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *DatabaseStore) GetRoutesByVehicle(vehicleType string, vehicleID uint) ([]*models.Route, error) {
	var routes []*models.Route
	if err := s.db.Where("vehicle_type = ? AND vehicle_id = ?", vehicleType, vehicleID).Find(&routes).Error; err != nil {
		return nil, err
	}
	return routes, nil
}

func (s *DatabaseStore) UpdateRoute(route *models.Route) error { return s.db.Save(route).Error }

func (s *DatabaseStore) DeleteRoute(id uint) error {
	res := s.db.Delete(&models.Route{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Checkpoints ----------

func (s *DatabaseStore) CreateCheckpoint(cp *models.Checkpoint) error { return s.db.Create(cp).Error }

func (s *DatabaseStore) GetCheckpoint(id uint) (*models.Checkpoint, error) {
	var cp models.Checkpoint
	if err := s.db.First(&cp, id).Error; err != nil {
		return nil, translate(err)
	}
	return &cp, nil
}

func (s *DatabaseStore) GetAllCheckpoints() ([]*models.Checkpoint, error) {
	var cps []*models.Checkpoint
	if err := s.db.Find(&cps).Error; err != nil {
		return nil, err
	}
	return cps, nil
}

func (s *DatabaseStore) GetCheckpointsByRoute(routeID uint) ([]*models.Checkpoint, error) {
	var cps []*models.Checkpoint
	if err := s.db.Where("route_id = ?", routeID).Find(&cps).Error; err != nil {
		return nil, err
	}
	return cps, nil
}

func (s *DatabaseStore) UpdateCheckpoint(cp *models.Checkpoint) error { return s.db.Save(cp).Error }

func (s *DatabaseStore) DeleteCheckpoint(id uint) error {
	res := s.db.Delete(&models.Checkpoint{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- KYC ----------

func (s *DatabaseStore) SavePersonalDetails(p *models.PersonalDetails) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "owner_role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"full_name", "email", "phone_number", "address", "updated_at",
		}),
	}).Create(p).Error
}

func (s *DatabaseStore) GetPersonalDetails(ownerID uint, ownerRole string) (*models.PersonalDetails, error) {
	var p models.PersonalDetails
	if err := s.db.Where("owner_id = ? AND owner_role = ?", ownerID, ownerRole).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *DatabaseStore) DeletePersonalDetails(id uint) error {
	res := s.db.Delete(&models.PersonalDetails{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) SaveGSTDetails(g *models.GSTDetails) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "owner_role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"gst_number", "gst_certificate_url", "updated_at",
		}),
	}).Create(g).Error
}

func (s *DatabaseStore) GetGSTDetails(ownerID uint, ownerRole string) (*models.GSTDetails, error) {
	var g models.GSTDetails
	if err := s.db.Where("owner_id = ? AND owner_role = ?", ownerID, ownerRole).First(&g).Error; err != nil {
		return nil, translate(err)
	}
	return &g, nil
}

func (s *DatabaseStore) DeleteGSTDetails(id uint) error {
	res := s.db.Delete(&models.GSTDetails{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) SaveDocumentsUpload(d *models.DocumentsUpload) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "owner_role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"pan_card_url", "aadhaar_card_url", "supporting_documents_urls", "updated_at",
		}),
	}).Create(d).Error
}

func (s *DatabaseStore) GetDocumentsUpload(ownerID uint, ownerRole string) (*models.DocumentsUpload, error) {
	var d models.DocumentsUpload
	if err := s.db.Where("owner_id = ? AND owner_role = ?", ownerID, ownerRole).First(&d).Error; err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (s *DatabaseStore) DeleteDocumentsUpload(id uint) error {
	res := s.db.Delete(&models.DocumentsUpload{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *DatabaseStore) SaveBankDetails(b *models.BankDetails) error {
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "owner_role"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"bank_name", "branch_name", "account_number", "ifsc_code", "updated_at",
		}),
	}).Create(b).Error
}

func (s *DatabaseStore) GetBankDetails(ownerID uint, ownerRole string) (*models.BankDetails, error) {
	var b models.BankDetails
	if err := s.db.Where("owner_id = ? AND owner_role = ?", ownerID, ownerRole).First(&b).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (s *DatabaseStore) DeleteBankDetails(id uint) error {
	res := s.db.Delete(&models.BankDetails{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------- Bookings ----------

func (s *DatabaseStore) CreateBooking(booking *models.Booking) error {
	return s.db.Create(booking).Error
}

func (s *DatabaseStore) GetBooking(id uint) (*models.Booking, error) {
	var b models.Booking
	if err := s.db.First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// GetBookingsByUserForUpdate row-locks every booking of the user in
// id-ascending order. Meaningful only inside Transaction; the single
// ordered acquisition means two concurrent decides for the same user
// always lock rows in the same order, so the loser blocks on the
// winner instead of deadlocking.
func (s *DatabaseStore) GetBookingsByUserForUpdate(userID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	err := s.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Order("id").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetAllBookings() ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) GetBookingsByDriver(driverID uint) ([]*models.Booking, error) {
	var bookings []*models.Booking
	if err := s.db.Where("driver_id = ?", driverID).Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (s *DatabaseStore) UpdateBooking(booking *models.Booking) error {
	return s.db.Save(booking).Error
}

// ---------- Infrastructure ----------

func (s *DatabaseStore) Transaction(fn func(tx Store) error) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return fn(NewDatabaseStore(tx))
	})
}

func (s *DatabaseStore) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
