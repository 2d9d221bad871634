package sim

import (
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
)

// render builds the frame of this tick and hands it to the surface. In
// constrained mode only dirty regions are sent and empty frames are skipped.
func (s *Simulation) render(now time.Time) {
	f := &surface.Frame{Time: now, View: s.View()}

	if s.tracker.Enabled() {
		b := s.tracker.Collect()
		f.Full = b.Full
		f.Clear = b.Clear
		for _, e := range b.Entities {
			f.Entities = append(f.Entities, s.sprite(e, now, e.OldDirtyRect))
		}
		for _, t := range b.Tiles {
			f.Tiles = append(f.Tiles, surface.Tile{X: t.X, Y: t.Y, ID: t.ID, Rect: t.DirtyRect})
		}
		if b.DrawTarget {
			f.Cursor = &surface.Cursor{X: b.Target.X, Y: b.Target.Y, Rect: b.TargetRect}
		}
		if f.Empty() {
			return
		}
	} else {
		f.Full = true
		s.forEachVisibleEntityByDepth(func(e *model.Entity) {
			f.Entities = append(f.Entities, s.sprite(e, now, s.tracker.EntityRect(e)))
			e.Dirty = false
		})
		for _, t := range s.tiles {
			f.Tiles = append(f.Tiles, surface.Tile{X: t.X, Y: t.Y, ID: t.ID, Rect: s.tracker.CellRect(t.X, t.Y)})
			t.Dirty = false
		}
		if s.cursorVisible {
			f.Cursor = &surface.Cursor{X: s.selected.X, Y: s.selected.Y, Rect: s.tracker.CellRect(s.selected.X, s.selected.Y)}
		}
	}

	s.frameSeq++
	f.Seq = s.frameSeq
	if err := s.surface.Present(f); err != nil {
		s.presentErrors.Add(1)
		slog.Warn("presenting frame", "seq", f.Seq, "error", err)
		return
	}
	s.frames.Add(1)
}

func (s *Simulation) sprite(e *model.Entity, now time.Time, r model.Rect) surface.Sprite {
	sp := surface.Sprite{
		ID:          e.ID,
		Kind:        e.Kind,
		GridX:       e.GridX,
		GridY:       e.GridY,
		X:           e.X,
		Y:           e.Y,
		Alpha:       1,
		Highlighted: e.Highlighted,
		Dying:       e.Dying,
		Rect:        r,
	}
	if e.Caps.IsCharacter() {
		sp.Orientation = e.Character.Orientation
	}
	if a := e.Animation; a != nil {
		sp.Animation = a.Name
		sp.Frame = a.Frame()
	}
	if e.Fading {
		sp.Alpha = min(1, float64(now.Sub(e.FadeStart))/float64(fadeDuration))
	}
	return sp
}
