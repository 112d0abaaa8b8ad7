// Package esc assembles the simulated speed controller.
package esc

import (
	"sync"
	"time"

	"github.com/robotalks/bldc.go/pkg/conf"
	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
	"github.com/robotalks/bldc.go/pkg/sim"
	"github.com/robotalks/bldc.go/pkg/sim/physics"
	"github.com/robotalks/bldc.go/pkg/sim/physics/bldc"
)

// Controller runs the simulated drive and relays its faults from
// the Loop.
type Controller struct {
	Drive   *bldc.Drive
	Stepper *physics.Stepper

	sim.FaultCaster

	lock   sync.Mutex
	faults []mcpwm.FaultCode
}

// NewController creates the controller.
func NewController(params sim.MotorParams, mc conf.MotorConfig, interval time.Duration) *Controller {
	c := &Controller{Drive: bldc.New(params, mc)}
	c.Stepper = physics.NewStepper(c.Drive, interval)
	c.Drive.SubscribeFaults(sim.RecordFaultFunc(c.queueFault))
	return c
}

// Name implements Named.
func (c *Controller) Name() string {
	return "esc"
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(l *fx.Loop) {
	l.AddRunnable(c.Stepper)
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyFaults))
}

func (c *Controller) queueFault(code mcpwm.FaultCode) {
	c.lock.Lock()
	c.faults = append(c.faults, code)
	c.lock.Unlock()
}

// NotifyFaults casts faults raised since the last iteration.
func (c *Controller) NotifyFaults(cc fx.ControlContext) error {
	c.lock.Lock()
	faults := c.faults
	c.faults = nil
	c.lock.Unlock()
	for _, code := range faults {
		c.RecordFault(code)
	}
	return nil
}
