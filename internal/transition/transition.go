// Package transition provides the time-driven linear interpolation used for
// per-character movement and for the camera zoning scroll.
package transition

import (
	"math"
	"time"
)

// Transition interpolates an integer value from a start to an end value over a
// duration. It tracks a single (update, complete) callback pair: starting a new
// run over an active one discards the previous callbacks without calling them.
type Transition struct {
	startValue int
	endValue   int
	duration   time.Duration
	startTime  time.Time
	inProgress bool

	onUpdate   func(value int)
	onComplete func()
}

// New returns an idle transition.
func New() *Transition {
	return &Transition{}
}

// Start arms the transition. Nothing fires until the next Step.
func (t *Transition) Start(now time.Time, onUpdate func(value int), onComplete func(), from, to int, duration time.Duration) {
	t.startTime = now
	t.onUpdate = onUpdate
	t.onComplete = onComplete
	t.startValue = from
	t.endValue = to
	t.duration = duration
	t.inProgress = true
}

// Step advances the transition to now. Before the duration has elapsed it
// calls onUpdate with the interpolated value; once it has, or the rounded
// value reaches the end, the transition goes idle and onComplete fires
// exactly once. Stepping an idle transition is a no-op.
func (t *Transition) Step(now time.Time) {
	if !t.inProgress {
		return
	}

	elapsed := now.Sub(t.startTime)
	if elapsed < 0 {
		elapsed = 0
	}
	v := t.valueAt(elapsed)
	if elapsed >= t.duration || v == t.endValue {
		// Go idle first: onComplete commonly starts the next run on this same transition.
		t.inProgress = false
		if t.onComplete != nil {
			t.onComplete()
		}
		return
	}

	if t.onUpdate != nil {
		t.onUpdate(v)
	}
}

// Restart re-arms the transition with new endpoints, keeping the callbacks and
// the duration of the previous run, and steps it once.
func (t *Transition) Restart(now time.Time, from, to int) {
	t.Start(now, t.onUpdate, t.onComplete, from, to, t.duration)
	t.Step(now)
}

// Stop makes the transition idle without calling onComplete.
func (t *Transition) Stop() {
	t.inProgress = false
}

// InProgress reports whether the transition is running.
func (t *Transition) InProgress() bool {
	return t.inProgress
}

// StartValue returns the value the current run started from.
func (t *Transition) StartValue() int {
	return t.startValue
}

// EndValue returns the value the current run ends at.
func (t *Transition) EndValue() int {
	return t.endValue
}

// Duration returns the length of the current run.
func (t *Transition) Duration() time.Duration {
	return t.duration
}

// valueAt rounds half up, so that negative ranges step like positive ones.
func (t *Transition) valueAt(elapsed time.Duration) int {
	if t.duration <= 0 {
		return t.endValue
	}
	if elapsed > t.duration {
		elapsed = t.duration
	}
	diff := float64(t.endValue - t.startValue)
	v := float64(t.startValue) + diff*float64(elapsed)/float64(t.duration)
	return int(math.Floor(v + 0.5))
}
