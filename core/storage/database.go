package storage

import (
	"time"

	"github.com/carlink-io/carlink/renault/kamereon"
	"github.com/carlink-io/carlink/util"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Sample is a recorded battery reading
type Sample struct {
	ID              uint64    `gorm:"primaryKey"`
	Time            time.Time `gorm:"index"`
	VIN             string    `gorm:"index"`
	BatteryLevel    *int
	BatteryAutonomy *float64
	AvailableEnergy *float64
	PlugStatus      *int
	ChargingStatus  *float64
	ChargingPower   *float64
}

// Store records vehicle telemetry in a sqlite database
type Store struct {
	db *gorm.DB
}

// Open opens or creates the database at path and migrates the schema
func Open(log *util.Logger, path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: &adapter{log: log},
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Sample{}); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// RecordBattery persists a battery reading for the given vehicle
func (s *Store) RecordBattery(vin string, status kamereon.BatteryStatus) error {
	sample := Sample{
		Time:            time.Now(),
		VIN:             vin,
		BatteryLevel:    status.BatteryLevel,
		BatteryAutonomy: status.BatteryAutonomy,
		AvailableEnergy: status.BatteryAvailableEnergy,
		PlugStatus:      status.PlugStatus,
		ChargingStatus:  status.ChargingStatus,
		ChargingPower:   status.ChargingInstantaneousPower,
	}

	return s.db.Create(&sample).Error
}

// Samples returns the recorded readings for the given vehicle since from,
// oldest first
func (s *Store) Samples(vin string, from time.Time) ([]Sample, error) {
	var res []Sample
	tx := s.db.Where("vin = ? AND time >= ?", vin, from).Order("time").Find(&res)
	return res, tx.Error
}
