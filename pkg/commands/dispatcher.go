package commands

import (
	"bytes"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/detect"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

// Sink delivers an encoded packet to the host.
type Sink interface {
	SendPacket(data []byte) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(data []byte) error

// SendPacket implements Sink.
func (f SinkFunc) SendPacket(data []byte) error {
	return f(data)
}

// AppConfigurator holds the active application configuration.
type AppConfigurator interface {
	Configuration() conf.AppConfig
	SetConfiguration(conf.AppConfig)
}

// ConfigStore persists configuration records.
type ConfigStore interface {
	StoreMotorConfig(conf.MotorConfig) error
	StoreAppConfig(conf.AppConfig) error
}

// Timeout is the inactivity watchdog.
type Timeout interface {
	Reset()
	Configure(timeout time.Duration, brake float64)
}

// DetectTrigger arms a motor parameter detection run.
type DetectTrigger interface {
	Trigger(detect.Request)
}

// Sampler captures drive samples and sends them with SendSamples.
type Sampler interface {
	SamplePrint(atStart bool, samples uint16, decimation uint8)
}

// Terminal processes a terminal command line.
type Terminal interface {
	ProcessString(line string)
}

// Servo drives the servo output.
type Servo interface {
	SetServoOffset(offset uint8)
}

// Decoder provides a decoded input value.
type Decoder interface {
	Decoded() float64
}

// Rebooter halts the device until an external reset. Reboot never returns.
type Rebooter interface {
	Reboot()
}

// Collaborators are the components the Dispatcher works with.
// Only Drive is required.
type Collaborators struct {
	Drive    mcpwm.Drive
	App      AppConfigurator
	Store    ConfigStore
	Timeout  Timeout
	Detector DetectTrigger
	Sampler  Sampler
	Terminal Terminal
	Servo    Servo
	PPM      Decoder
	Chuk     Decoder
	Rebooter Rebooter
}

// Dispatcher processes packets from the host and emits packets to it.
type Dispatcher struct {
	Collaborators

	procLock sync.Mutex
	sinkLock sync.RWMutex
	sink     Sink
}

// New creates a Dispatcher.
func New(c Collaborators) *Dispatcher {
	return &Dispatcher{Collaborators: c}
}

// SetSink installs the sink used for all subsequent packets.
func (d *Dispatcher) SetSink(sink Sink) {
	d.sinkLock.Lock()
	d.sink = sink
	d.sinkLock.Unlock()
}

// HandlePacket installs sink and processes the packet.
func (d *Dispatcher) HandlePacket(sink Sink, data []byte) {
	d.procLock.Lock()
	defer d.procLock.Unlock()
	d.SetSink(sink)
	d.process(data)
}

// Process processes a single packet. Unknown opcodes and malformed
// payloads are ignored.
func (d *Dispatcher) Process(data []byte) {
	d.procLock.Lock()
	defer d.procLock.Unlock()
	d.process(data)
}

func (d *Dispatcher) process(data []byte) {
	if len(data) == 0 {
		return
	}
	op := Opcode(data[0])
	r := codec.NewReader(data[1:])
	glog.V(3).Infof("process %s, %d bytes", op, len(data)-1)

	switch op {
	case OpGetValues:
		v := ReadValues(d.Drive)
		d.reply(op, v.Encode)

	case OpSetDuty:
		if v := r.Scaled32(ScaleSetDuty); d.valid(op, r) {
			d.Drive.SetDuty(v)
			d.resetTimeout()
		}

	case OpSetCurrent:
		if v := r.Scaled32(ScaleSetCurrent); d.valid(op, r) {
			d.Drive.SetCurrent(v)
			d.resetTimeout()
		}

	case OpSetCurrentBrake:
		if v := r.Scaled32(ScaleSetCurrent); d.valid(op, r) {
			d.Drive.SetBrakeCurrent(v)
			d.resetTimeout()
		}

	case OpSetRPM:
		if v := r.Scaled32(ScaleSetRPM); d.valid(op, r) {
			d.Drive.SetPIDSpeed(v)
			d.resetTimeout()
		}

	case OpSetDetect:
		d.Drive.SetDetect()
		d.resetTimeout()

	case OpSetServoOffset:
		if v := r.Uint8(); d.valid(op, r) && d.Servo != nil {
			d.Servo.SetServoOffset(v)
		}

	case OpServoMove, OpServoMoveWithinTime, OpServoResetPos:
		// recognized, no servo motion support.

	case OpSetMCConf:
		mc := d.Drive.Configuration()
		if err := conf.DecodeMotorConfig(r, &mc); err != nil {
			d.valid(op, r)
			return
		}
		if d.Store != nil {
			if err := d.Store.StoreMotorConfig(mc); err != nil {
				glog.Errorf("store motor configuration failed: %v", err)
			}
		}
		d.Drive.SetConfiguration(mc)

	case OpGetMCConf:
		mc := d.Drive.Configuration()
		d.reply(op, func(w *codec.Writer) { conf.EncodeMotorConfig(w, &mc) })

	case OpSetAppConf:
		if d.App == nil {
			return
		}
		ac := d.App.Configuration()
		if err := conf.DecodeAppConfig(r, &ac); err != nil {
			d.valid(op, r)
			return
		}
		if d.Store != nil {
			if err := d.Store.StoreAppConfig(ac); err != nil {
				glog.Errorf("store app configuration failed: %v", err)
			}
		}
		d.App.SetConfiguration(ac)
		if d.Timeout != nil {
			d.Timeout.Configure(time.Duration(ac.TimeoutMsec)*time.Millisecond, ac.TimeoutBrakeCurrent)
		}

	case OpGetAppConf:
		if d.App == nil {
			return
		}
		ac := d.App.Configuration()
		d.reply(op, func(w *codec.Writer) { conf.EncodeAppConfig(w, &ac) })

	case OpSamplePrint:
		atStart, samples, decimation := r.Bool(), r.Uint16(), r.Uint8()
		if d.valid(op, r) && d.Sampler != nil {
			d.Sampler.SamplePrint(atStart, samples, decimation)
		}

	case OpTerminalCmd:
		line := r.Rest()
		if n := bytes.IndexByte(line, 0); n >= 0 {
			line = line[:n]
		}
		if d.Terminal != nil {
			d.Terminal.ProcessString(string(line))
		}

	case OpDetectMotorParam:
		var req detect.Request
		req.Current = r.Scaled32(ScaleDetect)
		req.MinRPM = r.Scaled32(ScaleDetect)
		req.LowDuty = r.Scaled32(ScaleDetect)
		if d.valid(op, r) && d.Detector != nil {
			d.Detector.Trigger(req)
		}

	case OpReboot:
		glog.Warning("reboot requested")
		glog.Flush()
		if d.Rebooter != nil {
			d.Rebooter.Reboot()
		}

	case OpAlive:
		d.resetTimeout()

	case OpGetDecodedPPM:
		d.replyDecoded(op, d.PPM)

	case OpGetDecodedChuk:
		d.replyDecoded(op, d.Chuk)

	default:
		glog.V(2).Infof("ignore unknown opcode %d", data[0])
	}
}

func (d *Dispatcher) valid(op Opcode, r *codec.Reader) bool {
	if err := r.Err(); err != nil {
		glog.V(2).Infof("ignore malformed %s: %v", op, err)
		return false
	}
	return true
}

func (d *Dispatcher) resetTimeout() {
	if d.Timeout != nil {
		d.Timeout.Reset()
	}
}

func (d *Dispatcher) replyDecoded(op Opcode, dec Decoder) {
	var v float64
	if dec != nil {
		v = dec.Decoded()
	}
	d.reply(op, func(w *codec.Writer) { w.AppendScaled32(v, ScaleDecoded) })
}

// reply builds a packet starting with op and sends it.
func (d *Dispatcher) reply(op Opcode, encode func(*codec.Writer)) {
	w := codec.NewWriter()
	w.AppendUint8(uint8(op))
	encode(w)
	d.send(op, w)
}

func (d *Dispatcher) send(op Opcode, w *codec.Writer) {
	if w.Overflowed() {
		glog.Warningf("drop %s: exceeds %d bytes", op, codec.MaxPacketSize)
		return
	}
	d.sinkLock.RLock()
	sink := d.sink
	d.sinkLock.RUnlock()
	if sink == nil {
		return
	}
	if err := sink.SendPacket(w.Bytes()); err != nil {
		glog.Errorf("send %s failed: %v", op, err)
	}
}
