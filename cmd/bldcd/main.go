package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/l1/env/device"
	"github.com/robotalks/bldc.go/pkg/sim/bots/esc"
)

var loopInterval = 10 * time.Millisecond

// halt releases the motor and blocks until the process is restarted.
type halt struct {
	fw *esc.Firmware
}

func (h *halt) Reboot() {
	h.fw.Drive.ReleaseMotor()
	glog.Warning("halted, restart the process to reset")
	glog.Flush()
	select {}
}

func init() {
	device.SetupFlags()
	esc.SetupFlags()
	flag.DurationVar(&loopInterval, "loop-interval", loopInterval, "Interval of the control loop.")
}

func main() {
	flag.Parse()
	defer glog.Flush()

	env := device.NewConfig().MustNewEnv()
	defer env.Close()

	rebooter := &halt{}
	fw := esc.NewConfig().NewFirmware(env.Storage, rebooter)
	rebooter.fw = fw

	loop := fx.NewLoop().Add(env, fw)
	loop.Interval = loopInterval
	params := fw.Drive.Params()
	glog.Infof("%s started, supply %.1f V, resistance %.3f Ohm",
		env.Config.Info.Ref.Name(), params.SupplyVoltage, params.Resistance)
	if err := loop.RunUntilSignaled(); err != nil {
		glog.Exit(err)
	}
}
