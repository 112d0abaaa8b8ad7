// Package physics runs time-stepped simulation models.
package physics

import (
	"context"
	"time"
)

// Model is advanced in fixed time steps.
type Model interface {
	Step(dt time.Duration)
}

// Stepper is a Runnable advancing a Model in real time.
type Stepper struct {
	Model    Model
	Interval time.Duration
}

// DefaultInterval is the step interval when none is specified.
const DefaultInterval = time.Millisecond

// NewStepper creates a Stepper.
func NewStepper(model Model, interval time.Duration) *Stepper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Stepper{Model: model, Interval: interval}
}

// Name implements Named.
func (s *Stepper) Name() string {
	return "stepper"
}

// Run implements Runnable. Each tick advances the model by the time
// elapsed since the previous one.
func (s *Stepper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Model.Step(now.Sub(last))
			last = now
		}
	}
}
