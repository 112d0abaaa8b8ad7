// Package bldc provides shell commands for the motor controller.
package bldc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/bldc.go/pkg/cli/sh"
	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/commands"
	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/detect"
)

func query(op commands.Opcode) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		sh.DoCommand(c, commands.Packet(op, nil))
	})
}

func send(op commands.Opcode) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		sh.Send(c, commands.Packet(op, nil))
	})
}

func setpoint(name string, encode func(float64) []byte) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		vals, err := parseFloats(c.Args, name)
		if err != nil {
			c.Err(err)
			return
		}
		sh.Send(c, encode(vals[0]))
	})
}

func sendParsed(parse func([]string) ([]byte, error)) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		pkt, err := parse(c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		sh.Send(c, pkt)
	})
}

// configure reads the current record, applies the arguments and writes it back.
func configure[T any](table codec.Table[T], getOp commands.Opcode, encode func(*T) []byte) func(*ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		reply, err := sh.Request(c, commands.Packet(getOp, nil))
		if err != nil {
			c.Err(err)
			return
		}
		rec := table.Defaults()
		if err := table.DecodeWire(codec.NewReader(reply[1:]), &rec); err != nil {
			c.Err(fmt.Errorf("decode %s: %w", getOp, err))
			return
		}
		if err := setFields(table, &rec, c.Args); err != nil {
			c.Err(err)
			return
		}
		sh.Send(c, encode(&rec))
	})
}

var (
	valuesCmd = ishell.Cmd{
		Name:    "values",
		Aliases: []string{"v"},
		Help:    "read telemetry",
		Func:    query(commands.OpGetValues),
	}
	dutyCmd = ishell.Cmd{
		Name: "duty",
		Help: "DUTY: set duty cycle (-1..1)",
		Func: setpoint("duty", commands.EncodeSetDuty),
	}
	currentCmd = ishell.Cmd{
		Name: "current",
		Help: "AMPS: set motor current",
		Func: setpoint("amps", commands.EncodeSetCurrent),
	}
	brakeCmd = ishell.Cmd{
		Name: "brake",
		Help: "AMPS: set brake current",
		Func: setpoint("amps", commands.EncodeSetCurrentBrake),
	}
	rpmCmd = ishell.Cmd{
		Name: "rpm",
		Help: "ERPM: set speed",
		Func: setpoint("erpm", commands.EncodeSetRPM),
	}
	detectCmd = ishell.Cmd{
		Name: "detect",
		Help: "switch to detect mode",
		Func: send(commands.OpSetDetect),
	}
	servoCmd = ishell.Cmd{
		Name: "servo",
		Help: "OFFSET: set servo offset (0..255)",
		Func: sendParsed(func(args []string) ([]byte, error) {
			if len(args) != 1 {
				return nil, fmt.Errorf("expect OFFSET")
			}
			v, err := strconv.ParseUint(args[0], 0, 8)
			if err != nil {
				return nil, fmt.Errorf("invalid OFFSET: %q", args[0])
			}
			return commands.EncodeSetServoOffset(uint8(v)), nil
		}),
	}
	mcconfCmd = ishell.Cmd{
		Name: "mcconf",
		Help: "show motor configuration",
		Func: query(commands.OpGetMCConf),
	}
	mcconfSetCmd = ishell.Cmd{
		Name: "mcconf.set",
		Help: "NAME VALUE...: update motor configuration",
		Func: configure(conf.MotorConfigTable, commands.OpGetMCConf, commands.EncodeSetMCConf),
	}
	appconfCmd = ishell.Cmd{
		Name: "appconf",
		Help: "show application configuration",
		Func: query(commands.OpGetAppConf),
	}
	appconfSetCmd = ishell.Cmd{
		Name: "appconf.set",
		Help: "NAME VALUE...: update application configuration",
		Func: configure(conf.AppConfigTable, commands.OpGetAppConf, commands.EncodeSetAppConf),
	}
	sampleCmd = ishell.Cmd{
		Name: "sample",
		Help: "[start] SAMPLES [DECIMATION]: capture drive samples",
		Func: sendParsed(parseSample),
	}
	termCmd = ishell.Cmd{
		Name:    "term",
		Aliases: []string{"t"},
		Help:    "LINE: run terminal command",
		Func: sendParsed(func(args []string) ([]byte, error) {
			if len(args) == 0 {
				return nil, fmt.Errorf("expect LINE")
			}
			return commands.EncodeTerminalCmd(strings.Join(args, " ")), nil
		}),
	}
	detectParamsCmd = ishell.Cmd{
		Name: "detect-params",
		Help: "CURRENT MIN_RPM LOW_DUTY: detect motor parameters",
		Func: sendParsed(func(args []string) ([]byte, error) {
			vals, err := parseFloats(args, "current", "min_rpm", "low_duty")
			if err != nil {
				return nil, err
			}
			return commands.EncodeDetectMotorParam(detect.Request{
				Current: vals[0],
				MinRPM:  vals[1],
				LowDuty: vals[2],
			}), nil
		}),
	}
	rebootCmd = ishell.Cmd{
		Name: "reboot",
		Help: "halt the device until reset",
		Func: send(commands.OpReboot),
	}
	aliveCmd = ishell.Cmd{
		Name: "alive",
		Help: "reset the timeout",
		Func: send(commands.OpAlive),
	}
	ppmCmd = ishell.Cmd{
		Name: "ppm",
		Help: "read decoded PPM input",
		Func: query(commands.OpGetDecodedPPM),
	}
	chukCmd = ishell.Cmd{
		Name: "chuk",
		Help: "read decoded nunchuk input",
		Func: query(commands.OpGetDecodedChuk),
	}
	rawCmd = ishell.Cmd{
		Name: "raw",
		Help: "OPCODE [HEX...]: send raw packet",
		Func: sendParsed(parseRaw),
	}
)

func init() {
	sh.AddCmds(
		&valuesCmd,
		&dutyCmd,
		&currentCmd,
		&brakeCmd,
		&rpmCmd,
		&detectCmd,
		&servoCmd,
		&mcconfCmd,
		&mcconfSetCmd,
		&appconfCmd,
		&appconfSetCmd,
		&sampleCmd,
		&termCmd,
		&detectParamsCmd,
		&rebootCmd,
		&aliveCmd,
		&ppmCmd,
		&chukCmd,
		&rawCmd,
	)
}
