package esc

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/codec"
	"github.com/robotalks/bldc.go/pkg/commands"
	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/eeprom"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
)

type packetRecorder struct {
	packets [][]byte
}

func (r *packetRecorder) SendPacket(data []byte) error {
	r.packets = append(r.packets, append([]byte(nil), data...))
	return nil
}

func (r *packetRecorder) last(t *testing.T) []byte {
	require.NotEmpty(t, r.packets)
	return r.packets[len(r.packets)-1]
}

func TestFirmwareDefaults(t *testing.T) {
	f := NewConfig().NewFirmware(eeprom.NewMemory(), nil)
	require.Equal(t, conf.DefaultMotorConfig(), f.Drive.Configuration())
	require.Equal(t, conf.DefaultAppConfig(), f.App.Configuration())

	var rec packetRecorder
	f.Dispatcher.HandlePacket(&rec, []byte{byte(commands.OpGetValues)})
	pkt := rec.last(t)
	require.Equal(t, byte(commands.OpGetValues), pkt[0])
	var v commands.Values
	require.NoError(t, v.Decode(codec.NewReader(pkt[1:])))
	require.Equal(t, mcpwm.FaultNone, v.Fault)
}

func TestFirmwarePersistsConfiguration(t *testing.T) {
	storage := eeprom.NewMemory()
	f := NewConfig().NewFirmware(storage, nil)

	mc := f.Drive.Configuration()
	mc.LCurrentMax = 42
	ac := f.App.Configuration()
	ac.TimeoutMsec = 250

	var rec packetRecorder
	f.Dispatcher.HandlePacket(&rec, commands.EncodeSetMCConf(&mc))
	f.Dispatcher.HandlePacket(&rec, commands.EncodeSetAppConf(&ac))
	require.Equal(t, 42.0, f.Drive.Configuration().LCurrentMax)
	timeout, _ := f.Watchdog.Settings()
	require.Equal(t, int64(250), timeout.Milliseconds())

	reloaded := NewConfig().NewFirmware(storage, nil)
	require.Equal(t, 42.0, reloaded.Drive.Configuration().LCurrentMax)
	require.Equal(t, uint32(250), reloaded.App.Configuration().TimeoutMsec)
}

func TestFirmwareTerminal(t *testing.T) {
	f := NewConfig().NewFirmware(eeprom.NewMemory(), nil)
	var rec packetRecorder
	f.Dispatcher.HandlePacket(&rec, commands.EncodeTerminalCmd("ping"))
	require.NotEmpty(t, rec.packets)
	for _, pkt := range rec.packets {
		require.Equal(t, byte(commands.OpPrint), pkt[0])
	}
}

func TestFirmwareInputOverride(t *testing.T) {
	f := NewConfig().NewFirmware(eeprom.NewMemory(), nil)
	var rec packetRecorder
	f.Dispatcher.HandlePacket(&rec, commands.EncodeTerminalCmd("ppm -0.25"))
	f.Dispatcher.HandlePacket(&rec, commands.EncodeTerminalCmd("chuk 0.5"))

	f.Dispatcher.HandlePacket(&rec, []byte{byte(commands.OpGetDecodedPPM)})
	pkt := rec.last(t)
	require.Equal(t, byte(commands.OpGetDecodedPPM), pkt[0])
	require.InDelta(t, -0.25, codec.NewReader(pkt[1:]).Scaled32(1e6), 1e-6)

	f.Dispatcher.HandlePacket(&rec, []byte{byte(commands.OpGetDecodedChuk)})
	pkt = rec.last(t)
	require.Equal(t, byte(commands.OpGetDecodedChuk), pkt[0])
	require.InDelta(t, 0.5, codec.NewReader(pkt[1:]).Scaled32(1e6), 1e-6)
}

func TestFirmwareStatusCommands(t *testing.T) {
	f := NewConfig().NewFirmware(eeprom.NewMemory(), nil)
	require.Equal(t, NewConfig().Motor, f.Drive.Params())

	var rec packetRecorder
	f.Dispatcher.HandlePacket(&rec, commands.EncodeTerminalCmd("timeout"))
	f.Dispatcher.HandlePacket(&rec, commands.EncodeTerminalCmd("eeprom"))
	var text strings.Builder
	for _, pkt := range rec.packets {
		require.Equal(t, byte(commands.OpPrint), pkt[0])
		text.Write(pkt[1:])
	}
	require.Contains(t, text.String(), "Expired: false\n")
	require.Contains(t, text.String(), "stored: 0\n")
	require.Equal(t, len(f.Store.Addresses()), conf.MotorConfigTable.Slots()+conf.AppConfigTable.Slots())
}

type rebootRecorder bool

func (r *rebootRecorder) Reboot() {
	*r = true
}

func TestFirmwareReboot(t *testing.T) {
	var rebooted rebootRecorder
	f := NewConfig().NewFirmware(eeprom.NewMemory(), &rebooted)
	f.Dispatcher.Process([]byte{byte(commands.OpReboot)})
	require.True(t, bool(rebooted))
}
