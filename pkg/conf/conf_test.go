package conf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/eeprom"
)

type testReleaser struct {
	released int
}

func (r *testReleaser) ReleaseMotor() {
	r.released++
}

type testGate struct {
	events []string
}

func (g *testGate) Pause()  { g.events = append(g.events, "pause") }
func (g *testGate) Resume() { g.events = append(g.events, "resume") }

func testMotorConfig() MotorConfig {
	c := DefaultMotorConfig()
	c.PWMMode = PWMModeBipolar
	c.CommMode = CommModeDelay
	c.LCurrentMax = 42.125
	c.LCurrentMin = -33.5
	c.LMaxERPMFbrakeCC = 1234.5
	c.SlBEMFCouplingK = 712.25
	c.SPIDKp = 0.000125
	c.HallDir = 1
	c.MFaultStopTimeMs = -5
	c.DeriveLimits()
	return c
}

func TestMotorConfigDefaults(t *testing.T) {
	c := DefaultMotorConfig()
	require.Equal(t, PWMModeSynchronous, c.PWMMode)
	require.Equal(t, CommModeIntegrate, c.CommMode)
	require.Equal(t, 60.0, c.LCurrentMax)
	require.Equal(t, c.LCurrentMax, c.LoCurrentMax)
	require.Equal(t, c.LInCurrentMin, c.LoInCurrentMin)
	require.True(t, c.SlIsSensorless)
	require.False(t, c.LSlowAbsCurrent)
	require.Equal(t, 0.8, c.SlPhaseAdvanceAtBR)
	require.Equal(t, int32(3000), c.MFaultStopTimeMs)
}

func TestAppConfigDefaults(t *testing.T) {
	c := DefaultAppConfig()
	require.Equal(t, uint32(1000), c.TimeoutMsec)
	require.Equal(t, AppNone, c.AppToUse)
	require.Equal(t, PPMCtrlCurrent, c.PPM.CtrlType)
	require.Equal(t, 15000.0, c.PPM.PIDMaxERPM)
	require.Equal(t, uint32(115200), c.UARTBaudrate)
	require.Equal(t, 0.25, c.Chuk.RampTimeNeg)
	require.True(t, c.SendCANStatus)
}

func TestMotorConfigWire(t *testing.T) {
	require.Equal(t, 120, MotorConfigTable.WireSize())

	c := DefaultMotorConfig()
	w := codec.NewWriter()
	EncodeMotorConfig(w, &c)
	require.False(t, w.Overflowed())
	require.Equal(t, 120, w.Len())
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x00, 0xea, 0x60}, w.Bytes()[:6])

	in := testMotorConfig()
	w = codec.NewWriter()
	EncodeMotorConfig(w, &in)
	out := DefaultMotorConfig()
	out.LMaxERPMFbrakeCC = 99
	require.NoError(t, DecodeMotorConfig(codec.NewReader(w.Bytes()), &out))
	require.Equal(t, 99.0, out.LMaxERPMFbrakeCC)
	out.LMaxERPMFbrakeCC = in.LMaxERPMFbrakeCC
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("wire round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAppConfigWire(t *testing.T) {
	require.Equal(t, 51, AppConfigTable.WireSize())

	in := DefaultAppConfig()
	in.TimeoutMsec = 500
	in.TimeoutBrakeCurrent = 2.5
	in.AppToUse = AppPPM
	in.PPM.CtrlType = PPMCtrlPID
	in.UARTBaudrate = 9600
	w := codec.NewWriter()
	EncodeAppConfig(w, &in)
	require.Equal(t, []byte{0x00, 0x00, 0x01, 0xf4, 0x00, 0x00, 0x09, 0xc4, 0x01, 0x06}, w.Bytes()[:10])

	out := DefaultAppConfig()
	require.NoError(t, DecodeAppConfig(codec.NewReader(w.Bytes()), &out))
	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("wire round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreLoadDefaults(t *testing.T) {
	s := NewStore(eeprom.NewMemory(), nil)
	if diff := cmp.Diff(DefaultMotorConfig(), s.LoadMotorConfig()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(DefaultAppConfig(), s.LoadAppConfig()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	releaser, gate := &testReleaser{}, &testGate{}
	s := NewStore(eeprom.NewMemory(), releaser).WithGate(gate)

	mc := testMotorConfig()
	require.NoError(t, s.StoreMotorConfig(mc))
	app := DefaultAppConfig()
	app.ControllerID = 7
	app.Chuk.RampTimePos = 0.75
	require.NoError(t, s.StoreAppConfig(app))

	require.Equal(t, 2, releaser.released)
	require.Equal(t, []string{"pause", "resume", "pause", "resume"}, gate.events)

	if diff := cmp.Diff(mc, s.LoadMotorConfig()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(app, s.LoadAppConfig()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestStoreLoadReadFailure(t *testing.T) {
	mem := eeprom.NewMemory()
	s := NewStore(mem, nil)
	require.NoError(t, s.StoreMotorConfig(testMotorConfig()))
	mem.FailReadAt(MotorConfigBase + 5)
	if diff := cmp.Diff(DefaultMotorConfig(), s.LoadMotorConfig()); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestStoreWriteFailure(t *testing.T) {
	mem := eeprom.NewMemory()
	releaser := &testReleaser{}
	s := NewStore(mem, releaser)

	oldConf, newConf := DefaultMotorConfig(), testMotorConfig()
	require.NoError(t, s.StoreMotorConfig(oldConf))
	mem.FailWriteAt(MotorConfigBase + 3)
	err := s.StoreMotorConfig(newConf)
	require.Error(t, err)
	we, ok := err.(*WriteError)
	require.True(t, ok)
	require.Equal(t, MotorConfigBase+3, we.Addr)
	require.Equal(t, 2, releaser.released)

	oldSlots, newSlots := MotorConfigTable.Pack(&oldConf), MotorConfigTable.Pack(&newConf)
	for i := range oldSlots {
		v, err := mem.ReadVariable(MotorConfigBase + uint16(i))
		require.NoError(t, err)
		if i < 3 {
			require.Equal(t, newSlots[i], v, "slot %d", i)
		} else {
			require.Equal(t, oldSlots[i], v, "slot %d", i)
		}
	}
}

func TestStoreAddresses(t *testing.T) {
	addrs := NewStore(nil, nil).Addresses()
	mc := MotorConfigTable.Slots()
	require.Len(t, addrs, mc+AppConfigTable.Slots())
	require.Equal(t, MotorConfigBase, addrs[0])
	require.Equal(t, MotorConfigBase+uint16(mc-1), addrs[mc-1])
	require.Equal(t, AppConfigBase, addrs[mc])
}
