// Package mcpwm defines the interface of the motor drive: the control
// loop generating PWM duty, commutating the motor and sampling its
// currents, voltages and temperatures.
package mcpwm

import "github.com/robotalks/bldc.go/pkg/conf"

// TempSensors is the number of temperature sensors: MOS1..MOS6 and PCB.
const TempSensors = 7

// FaultCode is the latched fault of the drive.
type FaultCode uint8

// Fault codes.
const (
	FaultNone FaultCode = iota
	FaultOverVoltage
	FaultUnderVoltage
	FaultDRV8302
	FaultAbsOverCurrent
	FaultOverTempFET
	FaultOverTempMotor
)

var faultNames = []string{
	"FAULT_CODE_NONE",
	"FAULT_CODE_OVER_VOLTAGE",
	"FAULT_CODE_UNDER_VOLTAGE",
	"FAULT_CODE_DRV8302",
	"FAULT_CODE_ABS_OVER_CURRENT",
	"FAULT_CODE_OVER_TEMP_FET",
	"FAULT_CODE_OVER_TEMP_MOTOR",
}

func (f FaultCode) String() string {
	if int(f) < len(faultNames) {
		return faultNames[f]
	}
	return "FAULT_CODE_UNKNOWN"
}

// Telemetry reads the measured state of the drive.
type Telemetry interface {
	Temperature(sensor int) float64
	ReadResetAvgMotorCurrent() float64
	ReadResetAvgInputCurrent() float64
	DutyCycleNow() float64
	RPM() float64
	InputVoltage() float64
	AmpHours(reset bool) float64
	AmpHoursCharged(reset bool) float64
	WattHours(reset bool) float64
	WattHoursCharged(reset bool) float64
	Tachometer(reset bool) int32
	TachometerAbs(reset bool) int32
	Fault() FaultCode
}

// Setpoints commands the drive.
type Setpoints interface {
	SetDuty(duty float64)
	SetCurrent(current float64)
	SetBrakeCurrent(current float64)
	SetPIDSpeed(rpm float64)
	SetDetect()
}

// Releaser stops driving the motor, letting it coast.
type Releaser interface {
	ReleaseMotor()
}

// Configurable holds the active motor configuration.
type Configurable interface {
	Configuration() conf.MotorConfig
	SetConfiguration(c conf.MotorConfig)
}

// Integrator exposes the sensorless commutation measurements.
type Integrator interface {
	// ReadResetAvgCycleIntegrator returns the average cycle integrator
	// value at commutation since the last call.
	ReadResetAvgCycleIntegrator() float64
	// VinSense returns the raw input voltage sense reading.
	VinSense() float64
}

// Drive is the complete motor drive.
type Drive interface {
	Telemetry
	Setpoints
	Releaser
	Configurable
	Integrator
}
