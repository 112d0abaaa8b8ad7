package bldc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/commands"
	"github.com/robotalks/bldc.go/pkg/conf"
)

func TestParseFloats(t *testing.T) {
	vals, err := parseFloats([]string{"1.5", "-2"}, "a", "b")
	require.NoError(t, err)
	require.Equal(t, []float64{1.5, -2}, vals)

	_, err = parseFloats([]string{"1"}, "a", "b")
	require.EqualError(t, err, "expect A B")
	_, err = parseFloats([]string{"x"}, "a")
	require.Error(t, err)
}

func TestSetFields(t *testing.T) {
	mc := conf.DefaultMotorConfig()
	require.NoError(t, setFields(conf.MotorConfigTable, &mc, []string{
		"l_current_max", "42.5",
		"sl_is_sensorless", "false",
		"m_fault_stop_time_ms", "100",
	}))
	require.Equal(t, 42.5, mc.LCurrentMax)
	require.False(t, mc.SlIsSensorless)
	require.Equal(t, int32(100), mc.MFaultStopTimeMs)

	ac := conf.DefaultAppConfig()
	require.NoError(t, setFields(conf.AppConfigTable, &ac, []string{"timeout_msec", "250"}))
	require.Equal(t, uint32(250), ac.TimeoutMsec)

	require.Error(t, setFields(conf.AppConfigTable, &ac, []string{"timeout_msec"}))
	require.Error(t, setFields(conf.AppConfigTable, &ac, []string{"nothing", "1"}))
	require.Error(t, setFields(conf.AppConfigTable, &ac, []string{"send_can_status", "1"}))
	require.Error(t, setFields(conf.AppConfigTable, &ac, []string{"timeout_msec", "soon"}))
}

func TestParseSample(t *testing.T) {
	pkt, err := parseSample([]string{"start", "100", "2"})
	require.NoError(t, err)
	require.Equal(t, commands.EncodeSamplePrint(true, 100, 2), pkt)

	pkt, err = parseSample([]string{"10"})
	require.NoError(t, err)
	require.Equal(t, commands.EncodeSamplePrint(false, 10, 1), pkt)

	_, err = parseSample(nil)
	require.Error(t, err)
	_, err = parseSample([]string{"70000"})
	require.Error(t, err)
}

func TestParseRaw(t *testing.T) {
	pkt, err := parseRaw([]string{"alive"})
	require.NoError(t, err)
	require.Equal(t, []byte{byte(commands.OpAlive)}, pkt)

	pkt, err = parseRaw([]string{"0x05", "01", "02ff"})
	require.NoError(t, err)
	require.Equal(t, []byte{5, 1, 2, 0xff}, pkt)

	_, err = parseRaw([]string{"bogus"})
	require.Error(t, err)
	_, err = parseRaw([]string{"alive", "zz"})
	require.Error(t, err)
}
