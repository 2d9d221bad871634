// Package zoning scrolls the camera by one page when the player steps onto
// the viewport boundary. Requests queue up and run strictly one at a time.
package zoning

import (
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/camera"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/transition"
)

// DefaultDuration is the length of an animated scroll.
const DefaultDuration = 500 * time.Millisecond

// Listener receives the side effects of zoning.
type Listener interface {
	// ZoneStarted is called once per zoning, before the camera moves.
	ZoneStarted(o model.Orientation)
	// ZoneScrolled is called after every intermediate camera move of a scroll.
	ZoneScrolled()
	// ZoneJumped is called after an instant jump in constrained mode, once the
	// zoning has ended. Everything visible must be redrawn.
	ZoneJumped()
	// ZoneReset is called when a zoning ends.
	ZoneReset()
}

// Queue is the FIFO of boundary steps awaiting a camera scroll.
type Queue struct {
	cam         *camera.Camera
	listener    Listener
	constrained bool
	duration    time.Duration

	pending     []model.Point
	scroll      *transition.Transition
	active      bool
	started     bool
	orientation model.Orientation
}

// New creates a queue. In constrained mode zonings complete instantly.
func New(cam *camera.Camera, constrained bool, duration time.Duration, listener Listener) *Queue {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Queue{
		cam:         cam,
		listener:    listener,
		constrained: constrained,
		duration:    duration,
		scroll:      transition.New(),
	}
}

// Enqueue records a boundary step at (x, y). The zoning starts at once when
// no other is pending.
func (q *Queue) Enqueue(x, y int) {
	q.pending = append(q.pending, model.Pt(x, y))
	if len(q.pending) == 1 {
		q.start(x, y)
	}
}

// Active reports whether a zoning is in progress.
func (q *Queue) Active() bool {
	return q.active
}

// Pending returns the number of queued zonings, the active one included.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// Orientation returns the direction of the current or last zoning.
func (q *Queue) Orientation() model.Orientation {
	return q.orientation
}

// Reset drops every queued zoning and stops the scroll.
func (q *Queue) Reset() {
	q.scroll.Stop()
	q.pending = q.pending[:0]
	q.active = false
	q.started = false
}

func (q *Queue) start(x, y int) {
	q.orientation = q.cam.ZoningOrientation(x, y)
	slog.Debug("zoning started", "x", x, "y", y, "orientation", q.orientation, "queued", len(q.pending))

	q.listener.ZoneStarted(q.orientation)

	if !q.constrained {
		q.active = true
		q.started = false
		return
	}

	offX := (q.cam.GridW() - 2) * q.cam.CellSize()
	offY := (q.cam.GridH() - 2) * q.cam.CellSize()
	x, y = q.cam.X(), q.cam.Y()
	switch q.orientation {
	case model.OrientationLeft:
		x -= offX
	case model.OrientationRight:
		x += offX
	case model.OrientationUp:
		y -= offY
	case model.OrientationDown:
		y += offY
	}
	q.cam.SetPosition(x, y)

	q.end()
	q.listener.ZoneJumped()
}

// Update starts the scroll of a freshly activated zoning. Call once per tick
// before stepping transitions.
func (q *Queue) Update(now time.Time) {
	if !q.active || q.started {
		return
	}
	q.started = true

	ts := q.cam.CellSize()
	c := q.cam

	var from, to int
	var onUpdate func(int)
	var onComplete func()

	switch q.orientation {
	case model.OrientationLeft, model.OrientationRight:
		offset := (c.GridW() - 2) * ts
		from, to = c.X()+ts, c.X()+offset
		if q.orientation == model.OrientationLeft {
			from, to = c.X()-ts, c.X()-offset
		}
		onUpdate = func(x int) {
			c.SetPosition(x, c.Y())
			q.listener.ZoneScrolled()
		}
		onComplete = func() {
			c.SetPosition(q.scroll.EndValue(), c.Y())
			q.end()
		}
	case model.OrientationUp, model.OrientationDown:
		offset := (c.GridH() - 2) * ts
		from, to = c.Y()+ts, c.Y()+offset
		if q.orientation == model.OrientationUp {
			from, to = c.Y()-ts, c.Y()-offset
		}
		onUpdate = func(y int) {
			c.SetPosition(c.X(), y)
			q.listener.ZoneScrolled()
		}
		onComplete = func() {
			c.SetPosition(c.X(), q.scroll.EndValue())
			q.end()
		}
	default:
		// Not on a boundary any more: nothing to scroll.
		q.end()
		return
	}

	q.scroll.Start(now, onUpdate, onComplete, from, to, q.duration)
}

// Step advances the running scroll.
func (q *Queue) Step(now time.Time) {
	if q.scroll.InProgress() {
		q.scroll.Step(now)
	}
}

// Scrolling reports whether the camera scroll transition is running.
func (q *Queue) Scrolling() bool {
	return q.scroll.InProgress()
}

func (q *Queue) end() {
	q.active = false
	q.started = false
	q.listener.ZoneReset()

	if len(q.pending) > 0 {
		q.pending = q.pending[1:]
	}
	if len(q.pending) > 0 {
		next := q.pending[0]
		q.start(next.X, next.Y)
	}
}
