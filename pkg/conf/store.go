package conf

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/eeprom"
)

// Base addresses of the configuration records in the variable storage.
const (
	MotorConfigBase uint16 = 1000
	AppConfigBase   uint16 = 2000
)

// MotorReleaser stops driving the motor.
type MotorReleaser interface {
	ReleaseMotor()
}

// WatchdogGate is suspended while records are written.
type WatchdogGate interface {
	Pause()
	Resume()
}

// WriteError reports the slot at which a store stopped.
// Slots before Addr hold the new record, the rest still hold the old one.
type WriteError struct {
	Addr uint16
	Err  error
}

// Error implements error.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write slot %d: %v", e.Addr, e.Err)
}

// Unwrap returns the storage error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Store loads and stores the configuration records.
type Store struct {
	Storage eeprom.Storage
	Drive   MotorReleaser
	Gate    WatchdogGate
}

// NewStore creates a Store.
func NewStore(storage eeprom.Storage, drive MotorReleaser) *Store {
	return &Store{Storage: storage, Drive: drive}
}

// WithGate sets the watchdog gate.
func (s *Store) WithGate(gate WatchdogGate) *Store {
	s.Gate = gate
	return s
}

// Addresses returns the virtual addresses of all slots in use.
func (s *Store) Addresses() []uint16 {
	mc, app := MotorConfigTable.Slots(), AppConfigTable.Slots()
	addrs := make([]uint16, 0, mc+app)
	for i := 0; i < mc; i++ {
		addrs = append(addrs, MotorConfigBase+uint16(i))
	}
	for i := 0; i < app; i++ {
		addrs = append(addrs, AppConfigBase+uint16(i))
	}
	return addrs
}

// ReadVariable reads one slot from the storage.
func (s *Store) ReadVariable(addr uint16) (uint16, error) {
	if s.Storage == nil {
		return 0, eeprom.ErrNotFound
	}
	return s.Storage.ReadVariable(addr)
}

// LoadMotorConfig reads the motor configuration. Any read failure yields
// the defaults.
func (s *Store) LoadMotorConfig() MotorConfig {
	var c MotorConfig
	slots, err := s.readSlots(MotorConfigBase, MotorConfigTable.Slots())
	if err == nil {
		err = MotorConfigTable.Unpack(slots, &c)
	}
	if err != nil {
		glog.V(1).Infof("motor configuration not loaded, using defaults: %v", err)
		return DefaultMotorConfig()
	}
	c.DeriveLimits()
	return c
}

// LoadAppConfig reads the application configuration. Any read failure
// yields the defaults.
func (s *Store) LoadAppConfig() AppConfig {
	var c AppConfig
	slots, err := s.readSlots(AppConfigBase, AppConfigTable.Slots())
	if err == nil {
		err = AppConfigTable.Unpack(slots, &c)
	}
	if err != nil {
		glog.V(1).Infof("app configuration not loaded, using defaults: %v", err)
		return DefaultAppConfig()
	}
	return c
}

// StoreMotorConfig writes the motor configuration.
// The motor is released before writing. A failed write is not rolled back.
func (s *Store) StoreMotorConfig(c MotorConfig) error {
	return s.writeSlots(MotorConfigBase, MotorConfigTable.Pack(&c))
}

// StoreAppConfig writes the application configuration.
func (s *Store) StoreAppConfig(c AppConfig) error {
	return s.writeSlots(AppConfigBase, AppConfigTable.Pack(&c))
}

func (s *Store) readSlots(base uint16, n int) ([]uint16, error) {
	slots := make([]uint16, n)
	for i := range slots {
		v, err := s.Storage.ReadVariable(base + uint16(i))
		if err != nil {
			return nil, fmt.Errorf("read slot %d: %w", base+uint16(i), err)
		}
		slots[i] = v
	}
	return slots, nil
}

func (s *Store) writeSlots(base uint16, slots []uint16) error {
	if s.Drive != nil {
		s.Drive.ReleaseMotor()
	}
	if s.Gate != nil {
		s.Gate.Pause()
		defer s.Gate.Resume()
	}
	for i, v := range slots {
		addr := base + uint16(i)
		if err := s.Storage.WriteVariable(addr, v); err != nil {
			glog.Errorf("store configuration at %d failed: %v", base, err)
			return &WriteError{Addr: addr, Err: err}
		}
	}
	return nil
}
