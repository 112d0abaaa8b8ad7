// Package sim provides the building blocks of the simulated motor drive.
package sim

import (
	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

// MotorParams describes the simulated motor and its supply.
// Speeds are electrical RPM (ERPM).
type MotorParams struct {
	// SupplyVoltage is the input voltage (V).
	SupplyVoltage float64
	// Resistance is the phase resistance (Ohm).
	Resistance float64
	// BEMFConstant is the back-EMF per ERPM (V).
	BEMFConstant float64
	// Acceleration is the ERPM/s gained per amp of motor current.
	Acceleration float64
	// Friction is the viscous drag (1/s).
	Friction float64
	// CycleIntLimit is the cycle integrator value of a coasting motor.
	CycleIntLimit float64
	// CouplingK is the back-EMF coupling factor of the windings.
	CouplingK float64
	// VinSenseGain converts input voltage to the raw sense reading.
	VinSenseGain float64
	// AmbientTemp is the resting temperature (C).
	AmbientTemp float64
	// ThermalGain is the temperature rise (C/s) per watt dissipated.
	ThermalGain float64
	// ThermalDecay is the cooling rate (1/s).
	ThermalDecay float64
}

// Defaults of a small outrunner on a 6S battery.
const (
	DefaultSupplyVoltage = 24
	DefaultResistance    = 0.05
	DefaultBEMFConstant  = 0.0004
	DefaultAcceleration  = 40000
	DefaultFriction      = 1
	DefaultCycleIntLimit = 62.5
	DefaultCouplingK     = 600
	DefaultVinSenseGain  = 4095 * 2.2 / (39 + 2.2) / 3.3
	DefaultAmbientTemp   = 25
	DefaultThermalGain   = 0.05
	DefaultThermalDecay  = 0.02
)

// DefaultMotorParams returns the default motor.
func DefaultMotorParams() MotorParams {
	return MotorParams{
		SupplyVoltage: DefaultSupplyVoltage,
		Resistance:    DefaultResistance,
		BEMFConstant:  DefaultBEMFConstant,
		Acceleration:  DefaultAcceleration,
		Friction:      DefaultFriction,
		CycleIntLimit: DefaultCycleIntLimit,
		CouplingK:     DefaultCouplingK,
		VinSenseGain:  DefaultVinSenseGain,
		AmbientTemp:   DefaultAmbientTemp,
		ThermalGain:   DefaultThermalGain,
		ThermalDecay:  DefaultThermalDecay,
	}
}

// FaultListener is notified when the drive enters a fault.
type FaultListener interface {
	RecordFault(mcpwm.FaultCode)
}

// RecordFaultFunc is the func form of FaultListener.
type RecordFaultFunc func(mcpwm.FaultCode)

// RecordFault implements FaultListener.
func (f RecordFaultFunc) RecordFault(code mcpwm.FaultCode) {
	f(code)
}

// FaultSubscriber subscribes fault notifications.
type FaultSubscriber interface {
	SubscribeFaults(FaultListener)
}
