package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/transitlink/fleet-backend/internal/models"
)

// MemoryStore holds all data in memory. It backs tests and local
// development (USE_MEMORY_STORE=true); the database store is the
// production path.
type MemoryStore struct {
	otps        map[string]*models.PhoneOTP // keyed phone|role
	drivers     map[uint]*models.Driver
	conductors  map[uint]*models.Conductor
	users       map[uint]*models.AppUser
	buses       map[uint]*models.Bus
	cars        map[uint]*models.Car
	bikes       map[uint]*models.Bike
	routes      map[uint]*models.Route
	checkpoints map[uint]*models.Checkpoint
	bookings    map[uint]*models.Booking
	personal    map[string]*models.PersonalDetails // keyed ownerID|role
	gst         map[string]*models.GSTDetails
	documents   map[string]*models.DocumentsUpload
	bank        map[string]*models.BankDetails

	mu   sync.RWMutex // guards all maps
	txMu sync.Mutex   // serializes Transaction bodies

	counter uint // shared ID sequence
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		otps:        make(map[string]*models.PhoneOTP),
		drivers:     make(map[uint]*models.Driver),
		conductors:  make(map[uint]*models.Conductor),
		users:       make(map[uint]*models.AppUser),
		buses:       make(map[uint]*models.Bus),
		cars:        make(map[uint]*models.Car),
		bikes:       make(map[uint]*models.Bike),
		routes:      make(map[uint]*models.Route),
		checkpoints: make(map[uint]*models.Checkpoint),
		bookings:    make(map[uint]*models.Booking),
		personal:    make(map[string]*models.PersonalDetails),
		gst:         make(map[string]*models.GSTDetails),
		documents:   make(map[string]*models.DocumentsUpload),
		bank:        make(map[string]*models.BankDetails),
	}
}

func otpKey(phone, role string) string { return phone + "|" + role }

func ownerKey(id uint, role string) string { return fmt.Sprintf("%d|%s", id, role) }

// nextID must be called with mu held
func (m *MemoryStore) nextID() uint {
	m.counter++
	return m.counter
}

func stamp(model *gorm.Model, id uint) {
	now := time.Now()
	model.ID = id
	model.CreatedAt = now
	model.UpdatedAt = now
}

// ---------- OTP ----------

func (m *MemoryStore) GetOTP(phone, role string) (*models.PhoneOTP, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	otp, ok := m.otps[otpKey(phone, role)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *otp
	return &out, nil
}

func (m *MemoryStore) UpsertOTP(otp *models.PhoneOTP, notBefore time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := otpKey(otp.Phone, otp.Role)
	if existing, ok := m.otps[key]; ok {
		if existing.LastSentAt.After(notBefore) {
			return false, nil
		}
		existing.CodeHash = otp.CodeHash
		existing.Verified = false
		existing.ExpiresAt = otp.ExpiresAt
		existing.Attempts = 0
		existing.LastSentAt = otp.LastSentAt
		existing.UpdatedAt = time.Now()
		return true, nil
	}

	stamp(&otp.Model, m.nextID())
	stored := *otp
	m.otps[key] = &stored
	return true, nil
}

// IncrementOTPAttempts claims the attempt under the write lock so
// concurrent verifies never race a read-modify-write on the counter.
func (m *MemoryStore) IncrementOTPAttempts(phone, role string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.otps[otpKey(phone, role)]
	if !ok {
		return 0, ErrNotFound
	}
	existing.Attempts++
	existing.UpdatedAt = time.Now()
	return existing.Attempts, nil
}

func (m *MemoryStore) UpdateOTP(otp *models.PhoneOTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.otps[otpKey(otp.Phone, otp.Role)]
	if !ok {
		return ErrNotFound
	}
	existing.Verified = otp.Verified
	existing.Attempts = otp.Attempts
	existing.UpdatedAt = time.Now()
	return nil
}

// ---------- Drivers ----------

func (m *MemoryStore) CreateDriver(driver *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, d := range m.drivers {
		if d.Phone == driver.Phone {
			return fmt.Errorf("driver phone already registered")
		}
	}
	stamp(&driver.Model, m.nextID())
	stored := *driver
	m.drivers[driver.ID] = &stored
	return nil
}

func (m *MemoryStore) GetDriver(id uint) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.drivers[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

func (m *MemoryStore) GetDriverByPhone(phone string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.drivers {
		if d.Phone == phone {
			out := *d
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetDriverByEmail(email string) (*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, d := range m.drivers {
		if d.Email == email {
			out := *d
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAllDrivers() ([]*models.Driver, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	drivers := make([]*models.Driver, 0, len(m.drivers))
	for _, d := range m.drivers {
		out := *d
		drivers = append(drivers, &out)
	}
	return drivers, nil
}

func (m *MemoryStore) UpdateDriver(driver *models.Driver) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[driver.ID]; !ok {
		return ErrNotFound
	}
	driver.UpdatedAt = time.Now()
	stored := *driver
	m.drivers[driver.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteDriver(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.drivers[id]; !ok {
		return ErrNotFound
	}
	delete(m.drivers, id)
	return nil
}

// ---------- Conductors ----------

func (m *MemoryStore) CreateConductor(conductor *models.Conductor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.conductors {
		if c.Phone == conductor.Phone {
			return fmt.Errorf("conductor phone already registered")
		}
	}
	stamp(&conductor.Model, m.nextID())
	stored := *conductor
	m.conductors[conductor.ID] = &stored
	return nil
}

func (m *MemoryStore) GetConductor(id uint) (*models.Conductor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.conductors[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *MemoryStore) GetConductorByPhone(phone string) (*models.Conductor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.conductors {
		if c.Phone == phone {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetConductorByEmail(email string) (*models.Conductor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.conductors {
		if c.Email == email {
			out := *c
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetAllConductors() ([]*models.Conductor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	conductors := make([]*models.Conductor, 0, len(m.conductors))
	for _, c := range m.conductors {
		out := *c
		conductors = append(conductors, &out)
	}
	return conductors, nil
}

func (m *MemoryStore) UpdateConductor(conductor *models.Conductor) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conductors[conductor.ID]; !ok {
		return ErrNotFound
	}
	conductor.UpdatedAt = time.Now()
	stored := *conductor
	m.conductors[conductor.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteConductor(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.conductors[id]; !ok {
		return ErrNotFound
	}
	delete(m.conductors, id)
	return nil
}

// ---------- AppUsers ----------

func (m *MemoryStore) CreateUser(user *models.AppUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Phone == user.Phone {
			return fmt.Errorf("user phone already registered")
		}
	}
	stamp(&user.Model, m.nextID())
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *MemoryStore) GetUser(id uint) (*models.AppUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (m *MemoryStore) GetUserByPhone(phone string) (*models.AppUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, u := range m.users {
		if u.Phone == phone {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

// ---------- Vehicles ----------

func (m *MemoryStore) CreateBus(bus *models.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&bus.Model, m.nextID())
	stored := *bus
	m.buses[bus.ID] = &stored
	return nil
}

func (m *MemoryStore) GetBus(id uint) (*models.Bus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.buses[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) GetAllBuses() ([]*models.Bus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	buses := make([]*models.Bus, 0, len(m.buses))
	for _, b := range m.buses {
		out := *b
		buses = append(buses, &out)
	}
	return buses, nil
}

func (m *MemoryStore) GetBusesByDriver(driverID uint) ([]*models.Bus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var buses []*models.Bus
	for _, b := range m.buses {
		if b.DriverID != nil && *b.DriverID == driverID {
			out := *b
			buses = append(buses, &out)
		}
	}
	return buses, nil
}

func (m *MemoryStore) UpdateBus(bus *models.Bus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buses[bus.ID]; !ok {
		return ErrNotFound
	}
	bus.UpdatedAt = time.Now()
	stored := *bus
	m.buses[bus.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteBus(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.buses[id]; !ok {
		return ErrNotFound
	}
	delete(m.buses, id)
	return nil
}

func (m *MemoryStore) CreateCar(car *models.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&car.Model, m.nextID())
	stored := *car
	m.cars[car.ID] = &stored
	return nil
}

func (m *MemoryStore) GetCar(id uint) (*models.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.cars[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

func (m *MemoryStore) GetAllCars() ([]*models.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cars := make([]*models.Car, 0, len(m.cars))
	for _, c := range m.cars {
		out := *c
		cars = append(cars, &out)
	}
	return cars, nil
}

func (m *MemoryStore) GetCarsByDriver(driverID uint) ([]*models.Car, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cars []*models.Car
	for _, c := range m.cars {
		if c.DriverID != nil && *c.DriverID == driverID {
			out := *c
			cars = append(cars, &out)
		}
	}
	return cars, nil
}

func (m *MemoryStore) UpdateCar(car *models.Car) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cars[car.ID]; !ok {
		return ErrNotFound
	}
	car.UpdatedAt = time.Now()
	stored := *car
	m.cars[car.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteCar(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.cars[id]; !ok {
		return ErrNotFound
	}
	delete(m.cars, id)
	return nil
}

func (m *MemoryStore) CreateBike(bike *models.Bike) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&bike.Model, m.nextID())
	stored := *bike
	m.bikes[bike.ID] = &stored
	return nil
}

func (m *MemoryStore) GetBike(id uint) (*models.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bikes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) GetAllBikes() ([]*models.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bikes := make([]*models.Bike, 0, len(m.bikes))
	for _, b := range m.bikes {
		out := *b
		bikes = append(bikes, &out)
	}
	return bikes, nil
}

func (m *MemoryStore) GetBikesByDriver(driverID uint) ([]*models.Bike, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bikes []*models.Bike
	for _, b := range m.bikes {
		if b.DriverID != nil && *b.DriverID == driverID {
			out := *b
			bikes = append(bikes, &out)
		}
	}
	return bikes, nil
}

func (m *MemoryStore) UpdateBike(bike *models.Bike) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bikes[bike.ID]; !ok {
		return ErrNotFound
	}
	bike.UpdatedAt = time.Now()
	stored := *bike
	m.bikes[bike.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteBike(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bikes[id]; !ok {
		return ErrNotFound
	}
	delete(m.bikes, id)
	return nil
}

// FindVehicleForDriver picks the lowest-ID match so probing stays
// deterministic for drivers with several vehicles of the same type.
func (m *MemoryStore) FindVehicleForDriver(vehicleType string, driverID uint) (*models.VehicleRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best uint
	switch vehicleType {
	case models.VehicleTypeBus:
		for _, b := range m.buses {
			if b.DriverID != nil && *b.DriverID == driverID && (best == 0 || b.ID < best) {
				best = b.ID
			}
		}
	case models.VehicleTypeCar:
		for _, c := range m.cars {
			if c.DriverID != nil && *c.DriverID == driverID && (best == 0 || c.ID < best) {
				best = c.ID
			}
		}
	case models.VehicleTypeBike:
		for _, b := range m.bikes {
			if b.DriverID != nil && *b.DriverID == driverID && (best == 0 || b.ID < best) {
				best = b.ID
			}
		}
	default:
		return nil, fmt.Errorf("unknown vehicle type %q", vehicleType)
	}
	if best == 0 {
		return nil, ErrNotFound
	}
	return &models.VehicleRef{Type: vehicleType, ID: best}, nil
}

func (m *MemoryStore) SetVehicleBooked(vehicleType string, id uint, booked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch vehicleType {
	case models.VehicleTypeBus:
		if b, ok := m.buses[id]; ok {
			b.IsBooked = booked
			b.UpdatedAt = time.Now()
			return nil
		}
	case models.VehicleTypeCar:
		if c, ok := m.cars[id]; ok {
			c.IsBooked = booked
			c.UpdatedAt = time.Now()
			return nil
		}
	case models.VehicleTypeBike:
		if b, ok := m.bikes[id]; ok {
			b.IsBooked = booked
			b.UpdatedAt = time.Now()
			return nil
		}
	default:
		return fmt.Errorf("unknown vehicle type %q", vehicleType)
	}
	return ErrNotFound
}

// ---------- Routes ----------

func (m *MemoryStore) CreateRoute(route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&route.Model, m.nextID())
	stored := *route
	m.routes[route.ID] = &stored
	return nil
}

func (m *MemoryStore) GetRoute(id uint) (*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.routes[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *MemoryStore) GetAllRoutes() ([]*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	routes := make([]*models.Route, 0, len(m.routes))
	for _, r := range m.routes {
		out := *r
		routes = append(routes, &out)
	}
	return routes, nil
}

func (m *MemoryStore) GetRoutesByVehicle(vehicleType string, vehicleID uint) ([]*models.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var routes []*models.Route
	for _, r := range m.routes {
		if r.VehicleType == vehicleType && r.VehicleID == vehicleID {
			out := *r
			routes = append(routes, &out)
		}
	}
	return routes, nil
}

func (m *MemoryStore) UpdateRoute(route *models.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[route.ID]; !ok {
		return ErrNotFound
	}
	route.UpdatedAt = time.Now()
	stored := *route
	m.routes[route.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteRoute(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.routes[id]; !ok {
		return ErrNotFound
	}
	delete(m.routes, id)
	return nil
}

// ---------- Checkpoints ----------

func (m *MemoryStore) CreateCheckpoint(cp *models.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stamp(&cp.Model, m.nextID())
	stored := *cp
	m.checkpoints[cp.ID] = &stored
	return nil
}

func (m *MemoryStore) GetCheckpoint(id uint) (*models.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cp, ok := m.checkpoints[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *cp
	return &out, nil
}

func (m *MemoryStore) GetAllCheckpoints() ([]*models.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cps := make([]*models.Checkpoint, 0, len(m.checkpoints))
	for _, cp := range m.checkpoints {
		out := *cp
		cps = append(cps, &out)
	}
	return cps, nil
}

func (m *MemoryStore) GetCheckpointsByRoute(routeID uint) ([]*models.Checkpoint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var cps []*models.Checkpoint
	for _, cp := range m.checkpoints {
		if cp.RouteID == routeID {
			out := *cp
			cps = append(cps, &out)
		}
	}
	return cps, nil
}

func (m *MemoryStore) UpdateCheckpoint(cp *models.Checkpoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.checkpoints[cp.ID]; !ok {
		return ErrNotFound
	}
	cp.UpdatedAt = time.Now()
	stored := *cp
	m.checkpoints[cp.ID] = &stored
	return nil
}

func (m *MemoryStore) DeleteCheckpoint(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.checkpoints[id]; !ok {
		return ErrNotFound
	}
	delete(m.checkpoints, id)
	return nil
}

// ---------- KYC ----------

func (m *MemoryStore) SavePersonalDetails(p *models.PersonalDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey(p.OwnerID, p.OwnerRole)
	if existing, ok := m.personal[key]; ok {
		p.Model = existing.Model
		p.UpdatedAt = time.Now()
	} else {
		stamp(&p.Model, m.nextID())
	}
	stored := *p
	m.personal[key] = &stored
	return nil
}

func (m *MemoryStore) GetPersonalDetails(ownerID uint, ownerRole string) (*models.PersonalDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.personal[ownerKey(ownerID, ownerRole)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *p
	return &out, nil
}

func (m *MemoryStore) DeletePersonalDetails(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, p := range m.personal {
		if p.ID == id {
			delete(m.personal, key)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SaveGSTDetails(g *models.GSTDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey(g.OwnerID, g.OwnerRole)
	if existing, ok := m.gst[key]; ok {
		g.Model = existing.Model
		g.UpdatedAt = time.Now()
	} else {
		stamp(&g.Model, m.nextID())
	}
	stored := *g
	m.gst[key] = &stored
	return nil
}

func (m *MemoryStore) GetGSTDetails(ownerID uint, ownerRole string) (*models.GSTDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	g, ok := m.gst[ownerKey(ownerID, ownerRole)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *g
	return &out, nil
}

func (m *MemoryStore) DeleteGSTDetails(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, g := range m.gst {
		if g.ID == id {
			delete(m.gst, key)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SaveDocumentsUpload(d *models.DocumentsUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey(d.OwnerID, d.OwnerRole)
	if existing, ok := m.documents[key]; ok {
		d.Model = existing.Model
		d.UpdatedAt = time.Now()
	} else {
		stamp(&d.Model, m.nextID())
	}
	stored := *d
	m.documents[key] = &stored
	return nil
}

func (m *MemoryStore) GetDocumentsUpload(ownerID uint, ownerRole string) (*models.DocumentsUpload, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.documents[ownerKey(ownerID, ownerRole)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *d
	return &out, nil
}

func (m *MemoryStore) DeleteDocumentsUpload(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, d := range m.documents {
		if d.ID == id {
			delete(m.documents, key)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) SaveBankDetails(b *models.BankDetails) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := ownerKey(b.OwnerID, b.OwnerRole)
	if existing, ok := m.bank[key]; ok {
		b.Model = existing.Model
		b.UpdatedAt = time.Now()
	} else {
		stamp(&b.Model, m.nextID())
	}
	stored := *b
	m.bank[key] = &stored
	return nil
}

func (m *MemoryStore) GetBankDetails(ownerID uint, ownerRole string) (*models.BankDetails, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bank[ownerKey(ownerID, ownerRole)]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemoryStore) DeleteBankDetails(id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, b := range m.bank {
		if b.ID == id {
			delete(m.bank, key)
			return nil
		}
	}
	return ErrNotFound
}

// ---------- Bookings ----------

func (m *MemoryStore) CreateBooking(booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if booking.Status == "" {
		booking.Status = models.BookingStatusPending
	}
	stamp(&booking.Model, m.nextID())
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

func (m *MemoryStore) GetBooking(id uint) (*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	return &out, nil
}

// GetBookingsByUserForUpdate takes no row locks here; Transaction's
// mutex is what serializes concurrent decides against this store. The
// id-ascending order matches the database implementation.
func (m *MemoryStore) GetBookingsByUserForUpdate(userID uint) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			out := *b
			bookings = append(bookings, &out)
		}
	}
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].ID < bookings[j].ID })
	return bookings, nil
}

func (m *MemoryStore) GetAllBookings() ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	bookings := make([]*models.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		out := *b
		bookings = append(bookings, &out)
	}
	return bookings, nil
}

func (m *MemoryStore) GetBookingsByDriver(driverID uint) ([]*models.Booking, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var bookings []*models.Booking
	for _, b := range m.bookings {
		if b.DriverID == driverID {
			out := *b
			bookings = append(bookings, &out)
		}
	}
	return bookings, nil
}

func (m *MemoryStore) UpdateBooking(booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.bookings[booking.ID]; !ok {
		return ErrNotFound
	}
	booking.UpdatedAt = time.Now()
	stored := *booking
	m.bookings[booking.ID] = &stored
	return nil
}

// ---------- Infrastructure ----------

// Transaction serializes fn against all other transactions. There is no
// rollback: callers must finish their checks before their first write,
// which the booking decide flow does.
func (m *MemoryStore) Transaction(fn func(tx Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *MemoryStore) Ping() error { return nil }
