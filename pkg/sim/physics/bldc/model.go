package bldc

import (
	"math"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

// Step implements physics.Model, advancing the simulation by dt.
func (d *Drive) Step(dt time.Duration) {
	d.lock.Lock()
	fault := d.step(dt)
	captured := d.sampler.take()
	sink := d.samples
	d.lock.Unlock()

	if fault != mcpwm.FaultNone {
		d.RecordFault(fault)
	}
	if sink != nil {
		for _, data := range captured {
			sink.SendSamples(data)
		}
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// step returns the fault entered in this step.
func (d *Drive) step(dt time.Duration) (entered mcpwm.FaultCode) {
	secs := dt.Seconds()
	d.now += dt
	p := &d.params
	vin := p.SupplyVoltage

	var code mcpwm.FaultCode
	switch {
	case vin < d.conf.LMinVin:
		code = mcpwm.FaultUnderVoltage
	case vin > d.conf.LMaxVin:
		code = mcpwm.FaultOverVoltage
	}
	if code != mcpwm.FaultNone && d.fault != code {
		entered = d.enterFault(code)
	}

	bemf := p.BEMFConstant * d.erpm
	var current float64
	driven := true
	switch d.mode {
	case modeDuty:
		duty := clamp(d.setpoint, -MaxDuty, MaxDuty)
		current = clamp((duty*vin-bemf)/p.Resistance, d.conf.LoCurrentMin, d.conf.LoCurrentMax)
	case modeCurrent:
		current = d.limitERPM(clamp(d.setpoint, d.conf.LoCurrentMin, d.conf.LoCurrentMax))
	case modeBrake:
		if math.Abs(d.erpm) >= MinBrakeERPM {
			current = -math.Copysign(math.Min(d.setpoint, d.conf.LoCurrentMax), d.erpm)
		}
	case modeSpeed:
		current = d.limitERPM(d.speedControl(secs))
	default:
		driven = false
	}

	var duty float64
	if driven && vin > 0 {
		duty = (bemf + current*p.Resistance) / vin
		if math.Abs(duty) > MaxDuty {
			duty = math.Copysign(MaxDuty, duty)
			current = (duty*vin - bemf) / p.Resistance
		}
		if d.mode == modeBrake {
			duty = bemf / vin
		}
	}

	if math.Abs(current) > d.conf.LAbsCurrentMax {
		entered = d.enterFault(mcpwm.FaultAbsOverCurrent)
		current, duty = 0, 0
	}
	if code == mcpwm.FaultNone && d.fault != mcpwm.FaultNone && d.now >= d.faultUntil {
		glog.Infof("drive fault %s cleared", d.fault)
		d.fault = mcpwm.FaultNone
	}

	d.current, d.duty = current, duty
	prev := d.erpm
	d.erpm += (p.Acceleration*current - p.Friction*d.erpm) * secs
	if d.mode == modeBrake && (prev*d.erpm <= 0 || math.Abs(d.erpm) < MinBrakeERPM) {
		d.erpm = 0
	}
	d.commutate(d.erpm / 10 * secs)

	inputCurrent := current * duty
	d.motorCurrentSum += current
	d.motorCurrentCnt++
	d.inputCurrentSum += inputCurrent
	d.inputCurrentCnt++
	if ah := inputCurrent * secs / 3600; ah >= 0 {
		d.ampHours += ah
		d.wattHours += ah * vin
	} else {
		d.ampHoursCharged -= ah
		d.wattHoursCharged -= ah * vin
	}
	d.heat += (current*current*p.Resistance*p.ThermalGain - d.heat*p.ThermalDecay) * secs

	d.sampler.step(d, driven)
	return entered
}

func (d *Drive) enterFault(code mcpwm.FaultCode) mcpwm.FaultCode {
	glog.Warningf("drive fault %s", code)
	d.fault = code
	d.faultUntil = d.now + time.Duration(d.conf.MFaultStopTimeMs)*time.Millisecond
	d.mode, d.setpoint = modeReleased, 0
	return code
}

// limitERPM cuts accelerating current beyond the speed limits.
func (d *Drive) limitERPM(current float64) float64 {
	if (d.erpm > d.conf.LMaxERPM && current > 0) || (d.erpm < d.conf.LMinERPM && current < 0) {
		return 0
	}
	return current
}

// speedControl is the speed PID, its output scaled to the current limits.
func (d *Drive) speedControl(secs float64) float64 {
	err := d.setpoint - d.erpm
	d.pidInteg = clamp(d.pidInteg+err*d.conf.SPIDKi*secs, -1, 1)
	out := err*d.conf.SPIDKp + d.pidInteg
	if secs > 0 {
		out += (err - d.pidErr) * d.conf.SPIDKd / secs
	}
	d.pidErr = err
	out = clamp(out, -1, 1)
	if out < 0 {
		return -out * d.conf.LoCurrentMin
	}
	return out * d.conf.LoCurrentMax
}

// commutate advances the rotor by steps commutations and feeds the
// cycle integrator once per commutation.
func (d *Drive) commutate(steps float64) {
	before := math.Floor(d.position)
	d.position += steps
	n := int32(math.Floor(d.position) - before)
	if n == 0 {
		return
	}
	d.tacho += n
	if n < 0 {
		n = -n
	}
	d.tachoAbs += n

	p := &d.params
	value := p.CycleIntLimit
	if d.mode == modeDuty && math.Abs(d.erpm) > 1 {
		value += p.CouplingK * p.SupplyVoltage * p.VinSenseGain / math.Abs(d.erpm)
	}
	d.cycleIntSum += value * float64(n)
	d.cycleIntCnt += int(n)
}
