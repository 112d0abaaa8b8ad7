package commands

import (
	"fmt"
	"strings"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/conf"
)

// FormatPacket renders a packet for humans.
func FormatPacket(data []byte) string {
	if len(data) == 0 {
		return "<empty>"
	}
	op := Opcode(data[0])
	payload := data[1:]
	r := codec.NewReader(payload)
	var sb strings.Builder
	switch op {
	case OpGetValues:
		var v Values
		if v.Decode(r) != nil {
			break
		}
		fmt.Fprintf(&sb, "%s:\n", op)
		for n, temp := range v.Temps {
			fmt.Fprintf(&sb, "  temp[%d]           %.1f C\n", n, temp)
		}
		fmt.Fprintf(&sb, "  motor current     %.2f A\n", v.MotorCurrent)
		fmt.Fprintf(&sb, "  input current     %.2f A\n", v.InputCurrent)
		fmt.Fprintf(&sb, "  duty              %.3f\n", v.Duty)
		fmt.Fprintf(&sb, "  rpm               %.0f\n", v.RPM)
		fmt.Fprintf(&sb, "  input voltage     %.1f V\n", v.InputVoltage)
		fmt.Fprintf(&sb, "  amp hours         %.4f Ah (charged %.4f Ah)\n", v.AmpHours, v.AmpHoursCharged)
		fmt.Fprintf(&sb, "  watt hours        %.4f Wh (charged %.4f Wh)\n", v.WattHours, v.WattHoursCharged)
		fmt.Fprintf(&sb, "  tachometer        %d (abs %d)\n", v.Tachometer, v.TachometerAbs)
		fmt.Fprintf(&sb, "  fault             %s", v.Fault)
		return sb.String()
	case OpGetMCConf:
		mc := conf.DefaultMotorConfig()
		if conf.DecodeMotorConfig(r, &mc) != nil {
			break
		}
		fmt.Fprintf(&sb, "%s:", op)
		formatTable(&sb, conf.MotorConfigTable, &mc)
		return sb.String()
	case OpGetAppConf:
		ac := conf.DefaultAppConfig()
		if conf.DecodeAppConfig(r, &ac) != nil {
			break
		}
		fmt.Fprintf(&sb, "%s:", op)
		formatTable(&sb, conf.AppConfigTable, &ac)
		return sb.String()
	case OpPrint:
		return string(payload)
	case OpSamplePrint:
		return fmt.Sprintf("%s: %d bytes", op, len(payload))
	case OpRotorPosition:
		if v := r.Scaled32(ScaleRotorPos); r.Err() == nil {
			return fmt.Sprintf("%s: %.5f", op, v)
		}
	case OpExperimentSample:
		var samples []string
		for r.Remaining() >= 4 {
			samples = append(samples, fmt.Sprintf("%.4f", r.Scaled32(ScaleExperiment)))
		}
		return fmt.Sprintf("%s: [%s]", op, strings.Join(samples, " "))
	case OpDetectMotorParam:
		if res, err := DecodeDetectResult(payload); err == nil {
			return fmt.Sprintf("%s: cycle int limit %.3f, coupling k %.3f", op, res.CycleIntLimit, res.CouplingK)
		}
	case OpGetDecodedPPM, OpGetDecodedChuk:
		if v := r.Scaled32(ScaleDecoded); r.Err() == nil {
			return fmt.Sprintf("%s: %.6f", op, v)
		}
	}
	return fmt.Sprintf("%s: % x", op, payload)
}

func formatTable[T any](sb *strings.Builder, table codec.Table[T], rec *T) {
	for _, f := range table {
		if !f.Wire {
			continue
		}
		switch f.Kind {
		case codec.KindFloat:
			fmt.Fprintf(sb, "\n  %-32s %g", f.Name, f.Get(rec))
		default:
			fmt.Fprintf(sb, "\n  %-32s %d", f.Name, int64(f.Get(rec)))
		}
	}
}
