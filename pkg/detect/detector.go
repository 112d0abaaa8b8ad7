package detect

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"gonum.org/v1/gonum/stat"

	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/mcpwm"
	"github.com/robotalks/bldc.go/pkg/timeutil"
)

// Phase budgets in polling iterations of PollInterval.
const (
	SpinUpBudget   = 5000
	CoastBudget    = 2000
	BaselineBudget = 3000
	SlowDownBudget = 5000
	RunningBudget  = 3000
	PollInterval   = time.Millisecond
)

// Phase exit conditions.
const (
	SpinUpDuty           = 0.6
	CoastCommutations    = 3
	BaselineCommutations = 50
	RunningCommutations  = 100
	PhaseCount           = 5
)

// Drive is the part of the motor drive used by the detector.
type Drive interface {
	mcpwm.Configurable
	mcpwm.Integrator
	SetCurrent(current float64)
	SetDuty(duty float64)
	DutyCycleNow() float64
	RPM() float64
	Tachometer(reset bool) int32
}

// Request is the parameters of a detection run.
type Request struct {
	Current float64
	MinRPM  float64
	LowDuty float64
}

// Result is the outcome of a detection run. On failure both
// measurements are zero.
type Result struct {
	Success       bool
	CycleIntLimit float64
	CouplingK     float64
}

// ResultHandler receives the result of each run.
type ResultHandler interface {
	HandleResult(Result)
}

// HandleResultFunc is the func form of ResultHandler.
type HandleResultFunc func(Result)

// HandleResult implements ResultHandler.
func (f HandleResultFunc) HandleResult(r Result) {
	f(r)
}

// Detector measures the sensorless commutation parameters of the motor.
// Runs are requested with Trigger and executed one at a time by Run.
type Detector struct {
	Drive   Drive
	Handler ResultHandler
	Clock   timeutil.Clock

	requestCh chan Request
	phase     int32
}

// New creates a Detector.
func New(drive Drive, handler ResultHandler) *Detector {
	return &Detector{
		Drive:     drive,
		Handler:   handler,
		Clock:     timeutil.RealClock{},
		requestCh: make(chan Request, 1),
	}
}

// WithClock replaces the clock used for polling.
func (d *Detector) WithClock(clock timeutil.Clock) *Detector {
	d.Clock = clock
	return d
}

// Name implements Named.
func (d *Detector) Name() string {
	return "detector"
}

// Phase returns the phase of the current run.
func (d *Detector) Phase() Phase {
	return Phase(atomic.LoadInt32(&d.phase))
}

// Trigger requests a run. It never blocks. A request not yet picked up
// by Run is replaced.
func (d *Detector) Trigger(req Request) {
	for {
		select {
		case d.requestCh <- req:
			return
		default:
		}
		select {
		case <-d.requestCh:
		default:
		}
	}
}

// Run implements Runnable. A run in progress is completed before
// cancellation is observed.
func (d *Detector) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-d.requestCh:
			result := d.Detect(req)
			if h := d.Handler; h != nil {
				h.HandleResult(result)
			}
		}
	}
}

// Detect executes a detection run synchronously. The run succeeds only
// when all phases complete and the input voltage sense reads non-zero.
func (d *Detector) Detect(req Request) Result {
	glog.Infof("detect motor parameters: current %.3f, min rpm %.1f, low duty %.3f",
		req.Current, req.MinRPM, req.LowDuty)

	drive := d.Drive
	saved := drive.Configuration()
	defer drive.SetConfiguration(saved)
	defer d.setPhase(PhaseIdle)

	mc := saved
	mc.CommMode = conf.CommModeDelay
	mc.SlPhaseAdvanceAtBR = 1.0
	mc.SlMinERPM = req.MinRPM
	drive.SetConfiguration(mc)

	okSteps := 0

	d.setPhase(PhaseSpinningUp)
	drive.SetCurrent(req.Current)
	if d.poll(SpinUpBudget, func() bool { return drive.DutyCycleNow() >= SpinUpDuty }) {
		okSteps++
	}

	d.setPhase(PhaseCoasting)
	drive.SetCurrent(0)
	if d.pollTacho(CoastBudget, CoastCommutations, nil) {
		okSteps++
	}

	d.setPhase(PhaseMeasuringBaseline)
	drive.ReadResetAvgCycleIntegrator()
	if d.pollTacho(BaselineBudget, BaselineCommutations, nil) {
		okSteps++
	}
	intLimit := drive.ReadResetAvgCycleIntegrator()

	d.setPhase(PhaseSlowingDown)
	if d.poll(SlowDownBudget, func() bool { return drive.DutyCycleNow() <= req.LowDuty }) {
		okSteps++
	}
	drive.SetDuty(req.LowDuty)

	d.setPhase(PhaseMeasuringRunning)
	drive.ReadResetAvgCycleIntegrator()
	var rpms []float64
	if d.pollTacho(RunningBudget, RunningCommutations, func() { rpms = append(rpms, drive.RPM()) }) {
		okSteps++
	}
	running := drive.ReadResetAvgCycleIntegrator()
	rpm := drive.RPM()
	if len(rpms) > 0 {
		rpm = stat.Mean(rpms, nil)
	}

	drive.SetCurrent(0)

	var couplingK float64
	if vin := drive.VinSense(); vin != 0 {
		couplingK = (running - intLimit) / vin * rpm
	} else {
		glog.Warning("detect motor parameters: no input voltage reading")
		okSteps = 0
	}

	if okSteps < PhaseCount {
		glog.Warningf("detect motor parameters failed: %d of %d phases completed", okSteps, PhaseCount)
		return Result{}
	}
	glog.Infof("detect motor parameters: cycle int limit %.3f, coupling k %.3f", intLimit, couplingK)
	return Result{Success: true, CycleIntLimit: intLimit, CouplingK: couplingK}
}

func (d *Detector) setPhase(p Phase) {
	atomic.StoreInt32(&d.phase, int32(p))
}

// poll sleeps in PollInterval steps until cond is met or budget iterations
// elapsed. It reports whether cond was met.
func (d *Detector) poll(budget int, cond func() bool) bool {
	for i := 0; i < budget; i++ {
		if cond() {
			return true
		}
		d.Clock.Sleep(PollInterval)
	}
	return false
}

// pollTacho waits for the tachometer to advance by count, invoking sample
// before each sleep.
func (d *Detector) pollTacho(budget int, count int32, sample func()) bool {
	start := d.Drive.Tachometer(false)
	return d.poll(budget, func() bool {
		if d.Drive.Tachometer(false)-start >= count {
			return true
		}
		if sample != nil {
			sample()
		}
		return false
	})
}
