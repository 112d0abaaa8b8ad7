package esc

import (
	"flag"
	"time"

	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/sim"
	"github.com/robotalks/bldc.go/pkg/sim/physics"
)

// Config defines the configuration of the simulated controller.
type Config struct {
	Motor        sim.MotorParams
	StepInterval time.Duration
}

var defaultConfig = Config{
	Motor:        sim.DefaultMotorParams(),
	StepInterval: physics.DefaultInterval,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	m := &defaultConfig.Motor
	flag.Float64Var(&m.SupplyVoltage, "sim-vin", m.SupplyVoltage, "Supply voltage (V).")
	flag.Float64Var(&m.Resistance, "sim-resistance", m.Resistance, "Phase resistance (Ohm).")
	flag.Float64Var(&m.BEMFConstant, "sim-bemf", m.BEMFConstant, "Back-EMF (V) per ERPM.")
	flag.Float64Var(&m.Acceleration, "sim-accel", m.Acceleration, "Acceleration (ERPM/s) per amp.")
	flag.Float64Var(&m.Friction, "sim-friction", m.Friction, "Viscous friction (1/s).")
	flag.Float64Var(&m.CycleIntLimit, "sim-cycle-int-limit", m.CycleIntLimit, "Cycle integrator limit of the motor.")
	flag.Float64Var(&m.CouplingK, "sim-coupling-k", m.CouplingK, "Back-EMF coupling factor of the motor.")
	flag.DurationVar(&defaultConfig.StepInterval, "sim-step", defaultConfig.StepInterval, "Simulation step interval.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates the Controller driving a motor configured with mc.
func (c *Config) NewController(mc conf.MotorConfig) *Controller {
	return NewController(c.Motor, mc, c.StepInterval)
}
