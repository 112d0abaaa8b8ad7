package commands

import (
	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/detect"
)

// Packet builds a packet with op followed by the payload from encode.
func Packet(op Opcode, encode func(*codec.Writer)) []byte {
	w := codec.NewWriter()
	w.AppendUint8(uint8(op))
	if encode != nil {
		encode(w)
	}
	return w.Bytes()
}

// EncodeSetDuty builds a SET_DUTY packet.
func EncodeSetDuty(duty float64) []byte {
	return Packet(OpSetDuty, func(w *codec.Writer) { w.AppendScaled32(duty, ScaleSetDuty) })
}

// EncodeSetCurrent builds a SET_CURRENT packet.
func EncodeSetCurrent(current float64) []byte {
	return Packet(OpSetCurrent, func(w *codec.Writer) { w.AppendScaled32(current, ScaleSetCurrent) })
}

// EncodeSetCurrentBrake builds a SET_CURRENT_BRAKE packet.
func EncodeSetCurrentBrake(current float64) []byte {
	return Packet(OpSetCurrentBrake, func(w *codec.Writer) { w.AppendScaled32(current, ScaleSetCurrent) })
}

// EncodeSetRPM builds a SET_RPM packet.
func EncodeSetRPM(rpm float64) []byte {
	return Packet(OpSetRPM, func(w *codec.Writer) { w.AppendScaled32(rpm, ScaleSetRPM) })
}

// EncodeSetServoOffset builds a SET_SERVO_OFFSET packet.
func EncodeSetServoOffset(offset uint8) []byte {
	return Packet(OpSetServoOffset, func(w *codec.Writer) { w.AppendUint8(offset) })
}

// EncodeSetMCConf builds a SET_MCCONF packet.
func EncodeSetMCConf(c *conf.MotorConfig) []byte {
	return Packet(OpSetMCConf, func(w *codec.Writer) { conf.EncodeMotorConfig(w, c) })
}

// EncodeSetAppConf builds a SET_APPCONF packet.
func EncodeSetAppConf(c *conf.AppConfig) []byte {
	return Packet(OpSetAppConf, func(w *codec.Writer) { conf.EncodeAppConfig(w, c) })
}

// EncodeSamplePrint builds a SAMPLE_PRINT request.
func EncodeSamplePrint(atStart bool, samples uint16, decimation uint8) []byte {
	return Packet(OpSamplePrint, func(w *codec.Writer) {
		w.AppendBool(atStart).AppendUint16(samples).AppendUint8(decimation)
	})
}

// EncodeTerminalCmd builds a TERMINAL_CMD packet.
func EncodeTerminalCmd(line string) []byte {
	return Packet(OpTerminalCmd, func(w *codec.Writer) { w.AppendBytes([]byte(line)) })
}

// EncodeDetectMotorParam builds a DETECT_MOTOR_PARAM request.
func EncodeDetectMotorParam(req detect.Request) []byte {
	return Packet(OpDetectMotorParam, func(w *codec.Writer) {
		w.AppendScaled32(req.Current, ScaleDetect).
			AppendScaled32(req.MinRPM, ScaleDetect).
			AppendScaled32(req.LowDuty, ScaleDetect)
	})
}

// DecodeDetectResult decodes the payload of a DETECT_MOTOR_PARAM response.
func DecodeDetectResult(payload []byte) (detect.Result, error) {
	r := codec.NewReader(payload)
	res := detect.Result{
		CycleIntLimit: r.Scaled32(ScaleDetect),
		CouplingK:     r.Scaled32(ScaleDetect),
	}
	res.Success = res.CycleIntLimit != 0 || res.CouplingK != 0
	return res, r.Err()
}
