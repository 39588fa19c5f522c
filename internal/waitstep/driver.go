// Package waitstep simulates progress for a task's wait steps and
// advances the session once the simulated work completes.
package waitstep

import (
	"sync"
	"time"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/timing"
)

const (
	indeterminateDelay = 5 * time.Second
	determinateDelay   = 1 * time.Second
	tickInterval       = 100 * time.Millisecond
	progressPerTick    = 0.01
	totalTicks         = 100
)

// View is the surface the driver needs from the active wait step's
// display. Both calls are no-ops once the step is no longer frontmost,
// so a stale timer firing after the session ended is harmless.
type View interface {
	Advance()
	SetProgress(fraction float64, animated bool)
}

// state tracks the single wait step the driver is currently simulating.
type state struct {
	stepID string
	view   View
	ticks  int
	timer  timing.Timer
}

// Driver owns at most one wait step's simulated progress at a time.
// Starting a new wait step cancels whatever was pending before.
type Driver struct {
	clock timing.Clock

	mu     sync.Mutex
	active *state
}

// NewDriver creates a driver scheduling on the given clock.
func NewDriver(clock timing.Clock) *Driver {
	return &Driver{clock: clock}
}

// Recognizes reports whether the driver simulates progress for the
// given step identifier.
func Recognizes(stepID string) bool {
	return stepID == models.WaitStepIndeterminateID || stepID == models.WaitStepDeterminateID
}

// StepWillAppear starts simulation for a recognized wait step and is a
// no-op for any other identifier. Scheduling happens on the clock; the
// call itself never blocks.
func (d *Driver) StepWillAppear(stepID string, view View) {
	if !Recognizes(stepID) {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	s := &state{stepID: stepID, view: view}
	d.active = s

	switch stepID {
	case models.WaitStepIndeterminateID:
		s.timer = d.clock.AfterFunc(indeterminateDelay, func() { d.finish(s) })
	case models.WaitStepDeterminateID:
		s.timer = d.clock.AfterFunc(determinateDelay, func() { d.beginTicking(s) })
	}
}

// beginTicking starts the repeating tick after the initial delay, so
// the first progress report lands one interval after the delay.
func (d *Driver) beginTicking(s *state) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active != s {
		return
	}
	s.timer = d.clock.AfterFunc(tickInterval, func() { d.tick(s) })
}

// tick advances a determinate step by one increment, reports the
// updated fraction, and on the final tick advances the session.
func (d *Driver) tick(s *state) {
	d.mu.Lock()
	if d.active != s {
		// A newer wait step or Stop took over; this tick is stale.
		d.mu.Unlock()
		return
	}

	s.ticks++
	done := s.ticks >= totalTicks
	if done {
		// Clear before calling out so the advance can fire at most once.
		d.active = nil
	} else {
		s.timer = d.clock.AfterFunc(tickInterval, func() { d.tick(s) })
	}
	fraction := float64(s.ticks) * progressPerTick
	if fraction > 1.0 {
		fraction = 1.0
	}
	d.mu.Unlock()

	// Report the final value before advancing.
	s.view.SetProgress(fraction, true)
	if done {
		s.view.Advance()
	}
}

// finish completes an indeterminate step.
func (d *Driver) finish(s *state) {
	d.mu.Lock()
	if d.active != s {
		d.mu.Unlock()
		return
	}
	d.active = nil
	d.mu.Unlock()

	s.view.Advance()
}

// Stop invalidates any pending timer and clears the held state. Safe to
// call at any time, including when nothing is active.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Driver) stopLocked() {
	if d.active == nil {
		return
	}
	if d.active.timer != nil {
		d.active.timer.Stop()
	}
	d.active = nil
}
