package sim

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/testutil"
)

type countingTicker struct {
	n atomic.Int64
}

func (c *countingTicker) Tick(time.Time) { c.n.Add(1) }

func TestSchedulerStop(t *testing.T) {
	target := &countingTicker{}
	s := NewScheduler(target, 5*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	require.Eventually(t, func() bool { return target.n.Load() >= 3 }, time.Second, time.Millisecond)
	s.Stop()
	s.Stop()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Equal(t, uint64(target.n.Load()), s.Ticks())
}

func TestSchedulerContextCancel(t *testing.T) {
	ctx := testutil.ContextWithTimeout(t, 50*time.Millisecond)
	s := NewScheduler(&countingTicker{}, 5*time.Millisecond)

	err := s.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, s.Ticks())
}

func TestSchedulerDefaultInterval(t *testing.T) {
	s := NewScheduler(&countingTicker{}, 0)
	assert.Equal(t, DefaultInterval, s.interval)
}

func TestRecordingOutbox(t *testing.T) {
	o := NewRecordingOutbox()
	o.Moved(3, 4)
	o.Checkpoint(9)
	o.Hurt(7)
	o.Hurt(8)

	assert.Equal(t, []IntentKind{IntentMoved, IntentCheckpoint, IntentHurt, IntentHurt}, o.Kinds())
	assert.Equal(t, 2, o.Count(IntentHurt))
	assert.Equal(t, Intent{Kind: IntentCheckpoint, Checkpoint: 9}, o.Intents()[1])

	o.Reset()
	assert.Empty(t, o.Intents())
}
