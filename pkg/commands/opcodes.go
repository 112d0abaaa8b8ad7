package commands

import "strconv"

// Opcode is the first byte of every packet.
type Opcode uint8

// Opcodes.
const (
	OpGetValues Opcode = iota
	OpSetDuty
	OpSetCurrent
	OpSetCurrentBrake
	OpSetRPM
	OpSetDetect
	OpSetServoOffset
	OpSetMCConf
	OpGetMCConf
	OpSetAppConf
	OpGetAppConf
	OpSamplePrint
	OpTerminalCmd
	OpPrint
	OpRotorPosition
	OpExperimentSample
	OpDetectMotorParam
	OpReboot
	OpAlive
	OpGetDecodedPPM
	OpGetDecodedChuk
	OpServoMove
	OpServoMoveWithinTime
	OpServoResetPos
)

// Wire scales of the packet fields.
const (
	ScaleTemp       = 10
	ScaleCurrent    = 100
	ScaleDutyValue  = 1000
	ScaleVoltage    = 10
	ScaleEnergy     = 10000
	ScaleSetDuty    = 100000
	ScaleSetCurrent = 1000
	ScaleSetRPM     = 1
	ScaleDetect     = 1000
	ScaleDecoded    = 1000000
	ScaleRotorPos   = 100000
	ScaleExperiment = 10000
	MaxPrintLen     = 254
)

var opcodeNames = []string{
	"GET_VALUES",
	"SET_DUTY",
	"SET_CURRENT",
	"SET_CURRENT_BRAKE",
	"SET_RPM",
	"SET_DETECT",
	"SET_SERVO_OFFSET",
	"SET_MCCONF",
	"GET_MCCONF",
	"SET_APPCONF",
	"GET_APPCONF",
	"SAMPLE_PRINT",
	"TERMINAL_CMD",
	"PRINT",
	"ROTOR_POSITION",
	"EXPERIMENT_SAMPLE",
	"DETECT_MOTOR_PARAM",
	"REBOOT",
	"ALIVE",
	"GET_DECODED_PPM",
	"GET_DECODED_CHUK",
	"SERVO_MOVE",
	"SERVO_MOVE_WITHIN_TIME",
	"SERVO_RESET_POS",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) {
		return opcodeNames[op]
	}
	return "OPCODE_" + strconv.Itoa(int(op))
}

// ParseOpcode finds the opcode by name.
func ParseOpcode(name string) (Opcode, bool) {
	for n, s := range opcodeNames {
		if s == name {
			return Opcode(n), true
		}
	}
	return 0, false
}
