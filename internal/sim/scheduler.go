package sim

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Ticker is what a Scheduler drives.
type Ticker interface {
	Tick(now time.Time)
}

// Scheduler calls Tick at a fixed frame rate.
type Scheduler struct {
	target   Ticker
	interval time.Duration
	ticker   *time.Ticker
	stopCh   chan struct{}
	stopOnce sync.Once
	ticks    atomic.Uint64
}

// DefaultInterval is 50 frames per second.
const DefaultInterval = 20 * time.Millisecond

// NewScheduler creates a scheduler ticking target every interval.
func NewScheduler(target Ticker, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Run ticks until ctx is canceled or Stop is called. Blocks.
func (s *Scheduler) Run(ctx context.Context) error {
	s.ticker = time.NewTicker(s.interval)
	defer s.ticker.Stop()

	slog.Info("frame scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("frame scheduler stopping", "ticks", s.ticks.Load())
			return ctx.Err()

		case <-s.stopCh:
			slog.Info("frame scheduler stopped", "ticks", s.ticks.Load())
			return nil

		case now := <-s.ticker.C:
			s.target.Tick(now)
			n := s.ticks.Add(1)
			if IsDebugEnabled() && n%uint64(max(1, time.Second/s.interval)) == 0 {
				slog.Debug("frame scheduler tick", "ticks", n)
			}
		}
	}
}

// Stop ends Run. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

// Ticks returns the number of completed ticks.
func (s *Scheduler) Ticks() uint64 {
	return s.ticks.Load()
}
