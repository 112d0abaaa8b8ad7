package commands

import (
	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

// Values is the telemetry snapshot reported by GET_VALUES.
type Values struct {
	Temps            [mcpwm.TempSensors]float64
	MotorCurrent     float64
	InputCurrent     float64
	Duty             float64
	RPM              float64
	InputVoltage     float64
	AmpHours         float64
	AmpHoursCharged  float64
	WattHours        float64
	WattHoursCharged float64
	Tachometer       int32
	TachometerAbs    int32
	Fault            mcpwm.FaultCode
}

// ReadValues samples the drive. The average currents are reset.
func ReadValues(drive mcpwm.Telemetry) Values {
	var v Values
	for n := range v.Temps {
		v.Temps[n] = drive.Temperature(n)
	}
	v.MotorCurrent = drive.ReadResetAvgMotorCurrent()
	v.InputCurrent = drive.ReadResetAvgInputCurrent()
	v.Duty = drive.DutyCycleNow()
	v.RPM = drive.RPM()
	v.InputVoltage = drive.InputVoltage()
	v.AmpHours = drive.AmpHours(false)
	v.AmpHoursCharged = drive.AmpHoursCharged(false)
	v.WattHours = drive.WattHours(false)
	v.WattHoursCharged = drive.WattHoursCharged(false)
	v.Tachometer = drive.Tachometer(false)
	v.TachometerAbs = drive.TachometerAbs(false)
	v.Fault = drive.Fault()
	return v
}

// Encode appends the wire form.
func (v *Values) Encode(w *codec.Writer) {
	for _, temp := range v.Temps {
		w.AppendScaled16(temp, ScaleTemp)
	}
	w.AppendScaled32(v.MotorCurrent, ScaleCurrent)
	w.AppendScaled32(v.InputCurrent, ScaleCurrent)
	w.AppendScaled16(v.Duty, ScaleDutyValue)
	w.AppendScaled32(v.RPM, 1)
	w.AppendScaled16(v.InputVoltage, ScaleVoltage)
	w.AppendScaled32(v.AmpHours, ScaleEnergy)
	w.AppendScaled32(v.AmpHoursCharged, ScaleEnergy)
	w.AppendScaled32(v.WattHours, ScaleEnergy)
	w.AppendScaled32(v.WattHoursCharged, ScaleEnergy)
	w.AppendInt32(v.Tachometer)
	w.AppendInt32(v.TachometerAbs)
	w.AppendUint8(uint8(v.Fault))
}

// Decode reads the wire form.
func (v *Values) Decode(r *codec.Reader) error {
	for n := range v.Temps {
		v.Temps[n] = r.Scaled16(ScaleTemp)
	}
	v.MotorCurrent = r.Scaled32(ScaleCurrent)
	v.InputCurrent = r.Scaled32(ScaleCurrent)
	v.Duty = r.Scaled16(ScaleDutyValue)
	v.RPM = r.Scaled32(1)
	v.InputVoltage = r.Scaled16(ScaleVoltage)
	v.AmpHours = r.Scaled32(ScaleEnergy)
	v.AmpHoursCharged = r.Scaled32(ScaleEnergy)
	v.WattHours = r.Scaled32(ScaleEnergy)
	v.WattHoursCharged = r.Scaled32(ScaleEnergy)
	v.Tachometer = r.Int32()
	v.TachometerAbs = r.Int32()
	v.Fault = mcpwm.FaultCode(r.Uint8())
	return r.Err()
}
