// Package bldc simulates a sensorless BLDC motor with its drive.
package bldc

import (
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
	"github.com/robotalks/bldc.go/pkg/sim"
)

// Drive limits.
const (
	MaxDuty = 0.95
	// MinBrakeERPM is the speed below which braking holds the motor.
	MinBrakeERPM = 10
	// PCBSensor is the temperature sensor on the board.
	PCBSensor = 6
)

type controlMode int

const (
	modeReleased controlMode = iota
	modeDuty
	modeCurrent
	modeBrake
	modeSpeed
	modeDetect
)

// SampleSink receives the samples captured by SamplePrint.
type SampleSink interface {
	SendSamples(data []byte)
}

// Drive simulates the motor drive. It implements mcpwm.Drive.
type Drive struct {
	sim.FaultCaster

	lock    sync.Mutex
	params  sim.MotorParams
	conf    conf.MotorConfig
	samples SampleSink

	mode     controlMode
	setpoint float64
	pidInteg float64
	pidErr   float64

	now        time.Duration
	erpm       float64
	position   float64
	current    float64
	duty       float64
	heat       float64
	fault      mcpwm.FaultCode
	faultUntil time.Duration

	tacho    int32
	tachoAbs int32

	motorCurrentSum float64
	motorCurrentCnt int
	inputCurrentSum float64
	inputCurrentCnt int
	cycleIntSum     float64
	cycleIntCnt     int

	ampHours         float64
	ampHoursCharged  float64
	wattHours        float64
	wattHoursCharged float64

	sampler sampler
}

// New creates a Drive.
func New(params sim.MotorParams, mc conf.MotorConfig) *Drive {
	return &Drive{params: params, conf: mc}
}

// WithSampleSink sets where SamplePrint captures go.
func (d *Drive) WithSampleSink(sink SampleSink) *Drive {
	d.samples = sink
	return d
}

// Params returns the motor parameters.
func (d *Drive) Params() sim.MotorParams {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.params
}

// SetSupplyVoltage changes the input voltage.
func (d *Drive) SetSupplyVoltage(v float64) {
	d.lock.Lock()
	d.params.SupplyVoltage = v
	d.lock.Unlock()
}

// Temperature implements mcpwm.Telemetry.
func (d *Drive) Temperature(sensor int) float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	switch {
	case sensor >= 0 && sensor < PCBSensor:
		return d.params.AmbientTemp + d.heat
	case sensor == PCBSensor:
		return d.params.AmbientTemp + d.heat/2
	}
	return d.params.AmbientTemp
}

// ReadResetAvgMotorCurrent implements mcpwm.Telemetry.
func (d *Drive) ReadResetAvgMotorCurrent() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	avg := d.current
	if d.motorCurrentCnt > 0 {
		avg = d.motorCurrentSum / float64(d.motorCurrentCnt)
	}
	d.motorCurrentSum, d.motorCurrentCnt = 0, 0
	return avg
}

// ReadResetAvgInputCurrent implements mcpwm.Telemetry.
func (d *Drive) ReadResetAvgInputCurrent() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	avg := d.current * d.duty
	if d.inputCurrentCnt > 0 {
		avg = d.inputCurrentSum / float64(d.inputCurrentCnt)
	}
	d.inputCurrentSum, d.inputCurrentCnt = 0, 0
	return avg
}

// DutyCycleNow implements mcpwm.Telemetry.
func (d *Drive) DutyCycleNow() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.duty
}

// RPM implements mcpwm.Telemetry.
func (d *Drive) RPM() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.erpm
}

// InputVoltage implements mcpwm.Telemetry.
func (d *Drive) InputVoltage() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.params.SupplyVoltage
}

func readReset(v *float64, reset bool) float64 {
	val := *v
	if reset {
		*v = 0
	}
	return val
}

// AmpHours implements mcpwm.Telemetry.
func (d *Drive) AmpHours(reset bool) float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return readReset(&d.ampHours, reset)
}

// AmpHoursCharged implements mcpwm.Telemetry.
func (d *Drive) AmpHoursCharged(reset bool) float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return readReset(&d.ampHoursCharged, reset)
}

// WattHours implements mcpwm.Telemetry.
func (d *Drive) WattHours(reset bool) float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return readReset(&d.wattHours, reset)
}

// WattHoursCharged implements mcpwm.Telemetry.
func (d *Drive) WattHoursCharged(reset bool) float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return readReset(&d.wattHoursCharged, reset)
}

// Tachometer implements mcpwm.Telemetry.
func (d *Drive) Tachometer(reset bool) int32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	v := d.tacho
	if reset {
		d.tacho = 0
	}
	return v
}

// TachometerAbs implements mcpwm.Telemetry.
func (d *Drive) TachometerAbs(reset bool) int32 {
	d.lock.Lock()
	defer d.lock.Unlock()
	v := d.tachoAbs
	if reset {
		d.tachoAbs = 0
	}
	return v
}

// Fault implements mcpwm.Telemetry.
func (d *Drive) Fault() mcpwm.FaultCode {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.fault
}

// RotorPosition returns the electrical rotor angle in degrees.
func (d *Drive) RotorPosition() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.angle().Degrees()
}

func (d *Drive) angle() sim.Angle {
	return sim.AngleFromSteps(d.position)
}

// setMode changes the control mode unless the drive is in fault.
func (d *Drive) setMode(mode controlMode, setpoint float64) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if d.fault != mcpwm.FaultNone {
		glog.V(2).Infof("drive in %s, command ignored", d.fault)
		return
	}
	if mode == modeSpeed && d.mode != modeSpeed {
		d.pidInteg, d.pidErr = 0, 0
	}
	d.mode, d.setpoint = mode, setpoint
}

// SetDuty implements mcpwm.Setpoints.
func (d *Drive) SetDuty(duty float64) {
	d.setMode(modeDuty, duty)
}

// SetCurrent implements mcpwm.Setpoints.
func (d *Drive) SetCurrent(current float64) {
	d.setMode(modeCurrent, current)
}

// SetBrakeCurrent implements mcpwm.Setpoints.
func (d *Drive) SetBrakeCurrent(current float64) {
	d.setMode(modeBrake, math.Abs(current))
}

// SetPIDSpeed implements mcpwm.Setpoints. Speeds under the minimum PID
// speed release the motor.
func (d *Drive) SetPIDSpeed(rpm float64) {
	d.lock.Lock()
	minRPM := d.conf.SPIDMinRPM
	d.lock.Unlock()
	if math.Abs(rpm) < minRPM {
		d.setMode(modeReleased, 0)
		return
	}
	d.setMode(modeSpeed, rpm)
}

// SetDetect implements mcpwm.Setpoints.
func (d *Drive) SetDetect() {
	d.setMode(modeDetect, 0)
}

// ReleaseMotor implements mcpwm.Releaser.
func (d *Drive) ReleaseMotor() {
	d.lock.Lock()
	d.mode, d.setpoint = modeReleased, 0
	d.lock.Unlock()
}

// Configuration implements mcpwm.Configurable.
func (d *Drive) Configuration() conf.MotorConfig {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.conf
}

// SetConfiguration implements mcpwm.Configurable.
func (d *Drive) SetConfiguration(c conf.MotorConfig) {
	d.lock.Lock()
	d.conf = c
	d.lock.Unlock()
}

// ReadResetAvgCycleIntegrator implements mcpwm.Integrator.
func (d *Drive) ReadResetAvgCycleIntegrator() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	var avg float64
	if d.cycleIntCnt > 0 {
		avg = d.cycleIntSum / float64(d.cycleIntCnt)
	}
	d.cycleIntSum, d.cycleIntCnt = 0, 0
	return avg
}

// VinSense implements mcpwm.Integrator.
func (d *Drive) VinSense() float64 {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.params.SupplyVoltage * d.params.VinSenseGain
}
