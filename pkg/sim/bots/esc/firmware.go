package esc

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/bldc.go/pkg/app"
	"github.com/robotalks/bldc.go/pkg/commands"
	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/detect"
	"github.com/robotalks/bldc.go/pkg/eeprom"
	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/terminal"
	"github.com/robotalks/bldc.go/pkg/timeout"
)

// Firmware assembles command processing around the simulated drive.
type Firmware struct {
	*Controller

	Store      *conf.Store
	App        *app.App
	Watchdog   *timeout.Watchdog
	Detector   *detect.Detector
	Terminal   *terminal.Terminal
	Dispatcher *commands.Dispatcher
}

// NewFirmware loads the configurations from storage and creates the Firmware.
// rebooter may be nil.
func (c *Config) NewFirmware(storage eeprom.Storage, rebooter commands.Rebooter) *Firmware {
	f := &Firmware{Store: conf.NewStore(storage, nil)}
	f.Controller = c.NewController(f.Store.LoadMotorConfig())
	f.Store.Drive = f.Drive

	ac := f.Store.LoadAppConfig()
	f.App = app.New(ac)
	f.App.OnChange(func(ac conf.AppConfig) {
		glog.Infof("app configuration changed: app %d, timeout %d ms", ac.AppToUse, ac.TimeoutMsec)
	})
	f.Watchdog = timeout.New(f.Drive, time.Duration(ac.TimeoutMsec)*time.Millisecond, ac.TimeoutBrakeCurrent)
	f.Store.WithGate(f.Watchdog)

	f.Dispatcher = commands.New(commands.Collaborators{
		Drive:    f.Drive,
		App:      f.App,
		Store:    f.Store,
		Timeout:  f.Watchdog,
		Sampler:  f.Drive,
		PPM:      f.App.PPMDecoder(),
		Chuk:     f.App.ChukDecoder(),
		Rebooter: rebooter,
	})
	f.Detector = detect.New(f.Drive, f.Dispatcher)
	f.Terminal = terminal.New(f.Drive, f.Dispatcher).
		WithDetector(f.Detector).
		WithInputs(f.App).
		WithTimeout(f.Watchdog).
		WithVariables(f.Store)
	f.Dispatcher.Detector = f.Detector
	f.Dispatcher.Terminal = f.Terminal

	f.Drive.WithSampleSink(f.Dispatcher)
	f.SubscribeFaults(f.Terminal)
	return f
}

// AddToLoop implements LoopAdder.
func (f *Firmware) AddToLoop(l *fx.Loop) {
	l.Add(f.Controller, f.Watchdog, f.Dispatcher)
	l.AddRunnable(f.Detector)
}
