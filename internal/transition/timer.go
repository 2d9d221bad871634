package transition

import (
	"time"

	"golang.org/x/time/rate"
)

// Timer fires at most once per interval of simulation time. It is driven by
// the timestamps passed to IsOver, never by the wall clock, so it stays in step
// with the frame scheduler.
type Timer struct {
	interval time.Duration
	limiter  *rate.Limiter
}

// NewTimer creates a timer whose first firing is one interval after start.
func NewTimer(interval time.Duration, start time.Time) *Timer {
	l := rate.NewLimiter(rate.Every(interval), 1)
	l.AllowN(start, 1)
	return &Timer{interval: interval, limiter: l}
}

// IsOver reports whether an interval has passed since the last firing and, if
// so, starts the next interval at now.
func (t *Timer) IsOver(now time.Time) bool {
	return t.limiter.AllowN(now, 1)
}

// Interval returns the firing period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}
