// Package detect implements the sensorless motor parameter detection.
//
// A run spins the motor up with a test current, lets it coast to measure
// the cycle integrator limit, then drives it at a low duty cycle to
// measure the back-EMF coupling factor.
package detect

// Phase is the progress of a detection run.
type Phase int32

// Phases.
const (
	PhaseIdle Phase = iota
	PhaseSpinningUp
	PhaseCoasting
	PhaseMeasuringBaseline
	PhaseSlowingDown
	PhaseMeasuringRunning
)

var phaseNames = []string{
	"idle",
	"spinning-up",
	"coasting",
	"measuring-baseline",
	"slowing-down",
	"measuring-running",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}
