// Package timeout stops the motor when the host goes silent.
package timeout

import (
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/bldc.go/pkg/framework"
	"github.com/robotalks/bldc.go/pkg/timeutil"
)

// Braker applies a brake current.
type Braker interface {
	SetBrakeCurrent(current float64)
}

// Watchdog applies the brake current once when no Reset arrived within
// the timeout. A zero timeout disables it.
type Watchdog struct {
	Drive Braker
	Clock timeutil.Clock

	lock    sync.Mutex
	timeout time.Duration
	brake   float64
	last    time.Time
	expired bool
	paused  int
}

// New creates a Watchdog.
func New(drive Braker, timeout time.Duration, brake float64) *Watchdog {
	return &Watchdog{
		Drive:   drive,
		Clock:   timeutil.RealClock{},
		timeout: timeout,
		brake:   brake,
		last:    time.Now(),
	}
}

// WithClock replaces the clock.
func (w *Watchdog) WithClock(clock timeutil.Clock) *Watchdog {
	w.lock.Lock()
	w.Clock = clock
	w.last = clock.Now()
	w.lock.Unlock()
	return w
}

// Reset restarts the timeout.
func (w *Watchdog) Reset() {
	w.lock.Lock()
	w.last = w.Clock.Now()
	w.expired = false
	w.lock.Unlock()
}

// Configure changes the timeout and the brake current, and restarts.
func (w *Watchdog) Configure(timeout time.Duration, brake float64) {
	w.lock.Lock()
	w.timeout, w.brake = timeout, brake
	w.last = w.Clock.Now()
	w.expired = false
	w.lock.Unlock()
	glog.V(1).Infof("timeout configured: %v, brake current %.3f", timeout, brake)
}

// Settings returns the timeout and the brake current.
func (w *Watchdog) Settings() (time.Duration, float64) {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.timeout, w.brake
}

// Pause suspends expiry, e.g. during long storage writes.
func (w *Watchdog) Pause() {
	w.lock.Lock()
	w.paused++
	w.lock.Unlock()
}

// Resume re-enables expiry and restarts the timeout.
func (w *Watchdog) Resume() {
	w.lock.Lock()
	if w.paused > 0 {
		w.paused--
	}
	w.last = w.Clock.Now()
	w.lock.Unlock()
}

// Expired indicates the brake has been applied since the last Reset.
func (w *Watchdog) Expired() bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.expired
}

// Check applies the brake if the timeout elapsed. It reports whether
// the brake was applied by this call.
func (w *Watchdog) Check() bool {
	w.lock.Lock()
	if w.expired || w.paused > 0 || w.timeout <= 0 || w.Clock.Since(w.last) < w.timeout {
		w.lock.Unlock()
		return false
	}
	w.expired = true
	brake := w.brake
	w.lock.Unlock()

	glog.Warningf("no command within %v, braking with %.3f A", w.timeout, brake)
	w.Drive.SetBrakeCurrent(brake)
	return true
}

// Control implements Controller.
func (w *Watchdog) Control(fx.ControlContext) error {
	w.Check()
	return nil
}

// AddToLoop implements LoopAdder.
func (w *Watchdog) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvControl, w)
}
