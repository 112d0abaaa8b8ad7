package detect

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/bldc.go/pkg/conf"
	"github.com/robotalks/bldc.go/pkg/timeutil"
)

// scriptedDrive advances the tachometer by tachoStep on every sleep and
// reports a high duty while driven by current.
type scriptedDrive struct {
	conf        conf.MotorConfig
	confHistory []conf.MotorConfig

	current   float64
	duty      float64
	dutySet   []float64
	tacho     int32
	tachoStep int32
	rpm       float64
	vinSense  float64
	stuck     bool

	integrator []float64
	reads      int
}

func newScriptedDrive() *scriptedDrive {
	return &scriptedDrive{
		conf:       conf.DefaultMotorConfig(),
		tachoStep:  10,
		rpm:        1500,
		vinSense:   2000,
		integrator: []float64{0, 40, 0, 90},
	}
}

func (d *scriptedDrive) Configuration() conf.MotorConfig { return d.conf }
func (d *scriptedDrive) SetConfiguration(c conf.MotorConfig) {
	d.conf = c
	d.confHistory = append(d.confHistory, c)
}
func (d *scriptedDrive) SetCurrent(c float64) {
	d.current = c
	if d.stuck {
		return
	}
	if c > 0 {
		d.duty = 0.7
	} else {
		d.duty = 0.01
	}
}
func (d *scriptedDrive) SetDuty(duty float64)  { d.dutySet = append(d.dutySet, duty) }
func (d *scriptedDrive) DutyCycleNow() float64 { return d.duty }
func (d *scriptedDrive) RPM() float64          { return d.rpm }
func (d *scriptedDrive) Tachometer(bool) int32 { return d.tacho }
func (d *scriptedDrive) VinSense() float64     { return d.vinSense }
func (d *scriptedDrive) ReadResetAvgCycleIntegrator() float64 {
	var v float64
	if d.reads < len(d.integrator) {
		v = d.integrator[d.reads]
	}
	d.reads++
	return v
}

func (d *scriptedDrive) step(time.Duration) {
	if !d.stuck {
		d.tacho += d.tachoStep
	}
}

func newTestDetector(drive *scriptedDrive) (*Detector, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	clock.OnSleep = drive.step
	return New(drive, nil).WithClock(clock), clock
}

func TestDetectSuccess(t *testing.T) {
	drive := newScriptedDrive()
	saved := drive.conf
	det, clock := newTestDetector(drive)

	res := det.Detect(Request{Current: 5, MinRPM: 1200, LowDuty: 0.05})
	require.True(t, res.Success)
	require.InDelta(t, 40, res.CycleIntLimit, 1e-9)
	require.InDelta(t, (90.0-40.0)/2000*1500, res.CouplingK, 1e-9)
	require.Equal(t, 4, drive.reads)
	require.Equal(t, []float64{0.05}, drive.dutySet)
	require.Equal(t, 0.0, drive.current)
	require.Equal(t, PhaseIdle, det.Phase())

	require.Len(t, drive.confHistory, 2)
	tmp := drive.confHistory[0]
	require.Equal(t, conf.CommModeDelay, tmp.CommMode)
	require.Equal(t, 1.0, tmp.SlPhaseAdvanceAtBR)
	require.Equal(t, 1200.0, tmp.SlMinERPM)
	require.Equal(t, saved, drive.conf)

	// coast 1, baseline 5, running 10 sleeps.
	n, _ := clock.Sleeps()
	require.Equal(t, 16, n)
}

func TestDetectSpinUpTimeout(t *testing.T) {
	drive := newScriptedDrive()
	drive.stuck = true
	saved := drive.conf
	det, clock := newTestDetector(drive)

	res := det.Detect(Request{Current: 5, MinRPM: 1200, LowDuty: 0.05})
	require.False(t, res.Success)
	require.Equal(t, 0.0, res.CycleIntLimit)
	require.Equal(t, 0.0, res.CouplingK)
	require.Equal(t, saved, drive.conf)

	n, total := clock.Sleeps()
	require.Equal(t, SpinUpBudget+CoastBudget+BaselineBudget+RunningBudget, n)
	require.Equal(t, time.Duration(n)*PollInterval, total)
}

func TestDetectSingleRPMSample(t *testing.T) {
	drive := newScriptedDrive()
	drive.tachoStep = 1000
	det, clock := newTestDetector(drive)

	res := det.Detect(Request{Current: 5, MinRPM: 1200, LowDuty: 0.05})
	require.True(t, res.Success)
	require.InDelta(t, (90.0-40.0)/2000*1500, res.CouplingK, 1e-9)
	n, _ := clock.Sleeps()
	require.Equal(t, 3, n)
}

func TestDetectNoVinSense(t *testing.T) {
	drive := newScriptedDrive()
	drive.vinSense = 0
	det, _ := newTestDetector(drive)
	res := det.Detect(Request{Current: 5, MinRPM: 1200, LowDuty: 0.05})
	require.False(t, res.Success)
	require.Equal(t, Result{}, res)
}

func TestTriggerLatestWins(t *testing.T) {
	det := New(newScriptedDrive(), nil)
	det.Trigger(Request{Current: 1})
	det.Trigger(Request{Current: 2})
	det.Trigger(Request{Current: 3})
	require.Len(t, det.requestCh, 1)
	require.Equal(t, Request{Current: 3}, <-det.requestCh)
}

func TestRunReportsResult(t *testing.T) {
	drive := newScriptedDrive()
	resCh := make(chan Result, 1)
	det, _ := newTestDetector(drive)
	det.Handler = HandleResultFunc(func(r Result) { resCh <- r })

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	var runErr error
	go func() {
		defer wg.Done()
		runErr = det.Run(ctx)
	}()

	det.Trigger(Request{Current: 5, MinRPM: 1200, LowDuty: 0.05})
	select {
	case r := <-resCh:
		require.True(t, r.Success)
	case <-time.After(5 * time.Second):
		t.Fatal("no result reported")
	}
	cancel()
	wg.Wait()
	require.Equal(t, context.Canceled, runErr)
}

func TestPhaseString(t *testing.T) {
	require.Equal(t, "measuring-running", PhaseMeasuringRunning.String())
	require.Equal(t, "unknown", Phase(42).String())
}
