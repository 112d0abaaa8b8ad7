package bldc

import (
	"github.com/robotalks/bldc.go/pkg/codec"
)

// Scales of the sample fields.
const (
	SampleScaleCurrent = 100
	SampleScaleVoltage = 100
	SampleScaleDuty    = 1000
)

type sampler struct {
	armed      bool
	pending    int
	remaining  int
	decimation int
	counter    int
	captured   [][]byte
}

// SamplePrint captures samples of the phase currents and voltages,
// one every decimation steps, and sends them to the sample sink. With
// atStart the capture begins when the motor is next driven.
func (d *Drive) SamplePrint(atStart bool, samples uint16, decimation uint8) {
	d.lock.Lock()
	defer d.lock.Unlock()
	s := &d.sampler
	s.decimation = int(decimation)
	if s.decimation < 1 {
		s.decimation = 1
	}
	s.counter = 0
	if atStart {
		s.armed, s.pending, s.remaining = true, int(samples), 0
		return
	}
	s.armed, s.pending, s.remaining = false, 0, int(samples)
}

func (s *sampler) step(d *Drive, driven bool) {
	if s.armed && driven {
		s.armed, s.remaining, s.pending = false, s.pending, 0
	}
	if s.remaining <= 0 {
		return
	}
	if s.counter++; s.counter < s.decimation {
		return
	}
	s.counter = 0
	s.remaining--
	s.captured = append(s.captured, d.encodeSample())
}

func (s *sampler) take() [][]byte {
	captured := s.captured
	s.captured = nil
	return captured
}

// encodeSample encodes phase A and B currents, the three phase voltages,
// the duty cycle and the commutation sector.
func (d *Drive) encodeSample() []byte {
	angle := d.angle()
	vin := d.params.SupplyVoltage
	w := codec.NewWriterSize(16)
	w.AppendScaled16(d.current*angle.Cos(), SampleScaleCurrent).
		AppendScaled16(d.current*angle.AddDegrees(-120).Cos(), SampleScaleCurrent)
	for _, offset := range []float64{0, -120, 120} {
		v := d.duty * vin * (1 + angle.AddDegrees(offset).Cos()) / 2
		w.AppendScaled16(v, SampleScaleVoltage)
	}
	w.AppendScaled16(d.duty, SampleScaleDuty).
		AppendUint8(uint8(angle.Sector()))
	return w.Bytes()
}
