package bldc

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/commands"
)

func parseValue(s string) (float64, error) {
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", s)
	}
	if b {
		return 1, nil
	}
	return 0, nil
}

// parseFloats parses exactly len(names) arguments.
func parseFloats(args []string, names ...string) ([]float64, error) {
	if len(args) != len(names) {
		return nil, fmt.Errorf("expect %s", strings.ToUpper(strings.Join(names, " ")))
	}
	vals := make([]float64, len(args))
	for n, arg := range args {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %q", names[n], arg)
		}
		vals[n] = v
	}
	return vals, nil
}

// setFields applies NAME VALUE pairs to rec.
func setFields[T any](table codec.Table[T], rec *T, args []string) error {
	if len(args) == 0 || len(args)%2 != 0 {
		return fmt.Errorf("expect NAME VALUE [NAME VALUE ...]")
	}
	for n := 0; n < len(args); n += 2 {
		f, ok := table.Lookup(args[n])
		if !ok {
			return fmt.Errorf("unknown field %q", args[n])
		}
		if !f.Wire {
			return fmt.Errorf("field %q is not configurable", args[n])
		}
		v, err := parseValue(args[n+1])
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		f.Set(rec, v)
	}
	return nil
}

// parseSample parses [start] SAMPLES [DECIMATION].
func parseSample(args []string) ([]byte, error) {
	var atStart bool
	if len(args) > 0 && args[0] == "start" {
		atStart, args = true, args[1:]
	}
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("expect [start] SAMPLES [DECIMATION]")
	}
	samples, err := strconv.ParseUint(args[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid SAMPLES: %q", args[0])
	}
	decimation := uint64(1)
	if len(args) > 1 {
		if decimation, err = strconv.ParseUint(args[1], 10, 8); err != nil {
			return nil, fmt.Errorf("invalid DECIMATION: %q", args[1])
		}
	}
	return commands.EncodeSamplePrint(atStart, uint16(samples), uint8(decimation)), nil
}

// parseRaw builds a packet from an opcode name or number followed by
// hex encoded payload.
func parseRaw(args []string) ([]byte, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expect OPCODE [HEX...]")
	}
	op, ok := commands.ParseOpcode(strings.ToUpper(args[0]))
	if !ok {
		n, err := strconv.ParseUint(args[0], 0, 8)
		if err != nil {
			return nil, fmt.Errorf("unknown opcode %q", args[0])
		}
		op = commands.Opcode(n)
	}
	payload, err := hex.DecodeString(strings.Join(args[1:], ""))
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return append([]byte{byte(op)}, payload...), nil
}
