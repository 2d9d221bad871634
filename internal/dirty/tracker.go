// Package dirty decides which screen regions must be redrawn in constrained
// rendering mode, where only changed sprites are cleared and drawn again.
package dirty

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/tileworld/internal/camera"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/world"
)

// DefaultRadius is the neighbourhood, in cells, scanned around a dirty rect.
const DefaultRadius = 2

// Mode selects how far invalidation spreads.
type Mode uint8

const (
	// Transitive keeps spreading from every newly dirtied sprite until nothing changes.
	Transitive Mode = iota
	// SingleHop only dirties direct neighbours of explicitly marked sprites.
	SingleHop
)

func (m Mode) String() string {
	if m == SingleHop {
		return "single_hop"
	}
	return "transitive"
}

// ParseMode reads a propagation mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "transitive":
		return Transitive, nil
	case "single_hop":
		return SingleHop, nil
	}
	return Transitive, fmt.Errorf("unknown dirty propagation mode %q", s)
}

type anchor struct {
	rect   model.Rect
	x, y   int
	source *model.Entity
	tile   bool
}

// Batch is the work of one constrained frame.
type Batch struct {
	// Full asks for a whole-screen redraw; the lists then hold everything visible.
	Full     bool
	Clear    []model.Rect
	Entities []*model.Entity
	Tiles    []*model.AnimatedTile

	DrawTarget bool
	Target     model.Point
	TargetRect model.Rect
}

// Tracker accumulates dirty marks between frames.
type Tracker struct {
	w       *world.World
	cam     *camera.Camera
	metrics SpriteMetrics
	scale   int
	radius  int
	mode    Mode
	enabled bool

	tiles   []*model.AnimatedTile
	anchors []anchor
	full    bool

	target      *model.Point
	lastTarget  *model.Point
	drawTarget  bool
	clearTarget bool
}

// Config holds the tracker parameters.
type Config struct {
	Enabled bool
	Mode    Mode
	Radius  int
	Scale   int
	Metrics SpriteMetrics
}

// NewTracker creates a tracker over the world as seen through cam.
func NewTracker(w *world.World, cam *camera.Camera, cfg Config) *Tracker {
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Metrics == nil {
		cfg.Metrics = DefaultMetrics()
	}
	return &Tracker{
		w:       w,
		cam:     cam,
		metrics: cfg.Metrics,
		scale:   cfg.Scale,
		radius:  cfg.Radius,
		mode:    cfg.Mode,
		enabled: cfg.Enabled,
	}
}

// Enabled reports whether rect tracking is on.
func (t *Tracker) Enabled() bool {
	return t.enabled
}

// Mode returns the propagation mode.
func (t *Tracker) Mode() Mode {
	return t.mode
}

// SetTiles replaces the animated tiles considered for invalidation.
func (t *Tracker) SetTiles(tiles []*model.AnimatedTile) {
	t.tiles = tiles
}

// EntityRect returns the screen rect of an entity's sprite.
func (t *Tracker) EntityRect(e *model.Entity) model.Rect {
	spr := t.metrics.Sprite(e.Kind)
	s := t.scale
	return model.RectXYWH(
		(e.X+spr.OffsetX-t.cam.X())*s,
		(e.Y+spr.OffsetY-t.cam.Y())*s,
		spr.Width*s,
		spr.Height*s,
	)
}

// CellRect returns the screen rect of a grid cell.
func (t *Tracker) CellRect(x, y int) model.Rect {
	ts := t.cam.CellSize()
	s := t.scale
	return model.RectXYWH((x*ts-t.cam.X())*s, (y*ts-t.cam.Y())*s, ts*s, ts*s)
}

// MarkEntity flags e for redraw and, when it is visible, records its rects
// as anchors for propagation.
func (t *Tracker) MarkEntity(e *model.Entity) {
	e.Dirty = true
	if !t.enabled || !t.cam.IsVisible(e) {
		return
	}
	e.DirtyRect = t.EntityRect(e)
	t.anchorEntity(e)
}

func (t *Tracker) anchorEntity(e *model.Entity) {
	t.anchors = append(t.anchors, anchor{rect: e.DirtyRect, x: e.GridX, y: e.GridY, source: e})
	if !e.OldDirtyRect.Empty() && e.OldDirtyRect != e.DirtyRect {
		t.anchors = append(t.anchors, anchor{rect: e.OldDirtyRect, x: e.GridX, y: e.GridY, source: e})
	}
}

// MarkTile flags an animated tile for redraw.
func (t *Tracker) MarkTile(tile *model.AnimatedTile) {
	tile.Dirty = true
	if !t.enabled {
		return
	}
	tile.DirtyRect = t.CellRect(tile.X, tile.Y)
	t.anchors = append(t.anchors, anchor{rect: tile.DirtyRect, x: tile.X, y: tile.Y, tile: true})
}

// SetTarget moves the selection cursor to (x, y).
func (t *Tracker) SetTarget(x, y int) {
	p := model.Pt(x, y)
	if t.target != nil && *t.target == p {
		return
	}
	if t.target != nil {
		t.lastTarget = t.target
		t.clearTarget = true
	}
	t.target = &p
	t.drawTarget = true
	if t.enabled {
		t.anchors = append(t.anchors, anchor{rect: t.CellRect(x, y), x: x, y: y})
	}
}

// ClearTarget hides the selection cursor.
func (t *Tracker) ClearTarget() {
	if t.target == nil {
		return
	}
	t.lastTarget = t.target
	t.clearTarget = true
	t.target = nil
	t.drawTarget = false
}

// Target returns the cursor cell, if any.
func (t *Tracker) Target() (model.Point, bool) {
	if t.target == nil {
		return model.Point{}, false
	}
	return *t.target, true
}

// Propagate dirties every clean sprite, animated tile and the cursor whose
// rect overlaps a pending anchor within the scan radius.
func (t *Tracker) Propagate() {
	for len(t.anchors) > 0 {
		a := t.anchors[0]
		t.anchors = t.anchors[1:]
		t.propagate(a)
	}
	t.anchors = nil
}

func (t *Tracker) propagate(a anchor) {
	t.w.ForEachEntityAround(a.x, a.y, t.radius, func(e *model.Entity) bool {
		if a.source != nil && e.ID == a.source.ID {
			return true
		}
		if e.Dirty || !t.cam.IsVisible(e) {
			return true
		}
		r := t.EntityRect(e)
		if !r.Overlaps(a.rect) {
			return true
		}
		e.Dirty = true
		e.DirtyRect = r
		if t.mode == Transitive {
			t.anchorEntity(e)
		}
		return true
	})

	if a.source != nil {
		for _, tile := range t.tiles {
			if tile.Dirty {
				continue
			}
			r := t.CellRect(tile.X, tile.Y)
			if !r.Overlaps(a.rect) {
				continue
			}
			tile.Dirty = true
			tile.DirtyRect = r
			if t.mode == Transitive {
				t.anchors = append(t.anchors, anchor{rect: r, x: tile.X, y: tile.Y, tile: true})
			}
		}
	}

	if !t.drawTarget && t.target != nil && t.cam.IsVisiblePosition(t.target.X, t.target.Y) {
		if t.CellRect(t.target.X, t.target.Y).Overlaps(a.rect) {
			t.drawTarget = true
		}
	}
}

// ClearAll drops pending work and makes the next Collect a full redraw.
func (t *Tracker) ClearAll() {
	t.anchors = nil
	t.full = true
	t.clearTarget = false
	t.lastTarget = nil
	t.drawTarget = t.target != nil
}

// Collect propagates pending anchors and returns the frame's clear and draw
// lists. Flags of everything returned are reset and rects rotated.
func (t *Tracker) Collect() Batch {
	t.Propagate()

	b := Batch{Full: t.full}
	seen := make(map[model.Rect]struct{})
	addClear := func(r model.Rect) {
		if r.Empty() {
			return
		}
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		b.Clear = append(b.Clear, r)
	}

	t.cam.ForEachVisiblePosition(func(x, y int) {
		for _, e := range t.w.EntitiesAt(x, y) {
			if !t.full && !e.Dirty {
				continue
			}
			if e.DirtyRect.Empty() {
				e.DirtyRect = t.EntityRect(e)
			}
			if !t.full {
				addClear(e.OldDirtyRect)
				addClear(e.DirtyRect)
			}
			b.Entities = append(b.Entities, e)
		}
	}, 0)

	for _, tile := range t.tiles {
		if !t.full && !tile.Dirty {
			continue
		}
		if tile.DirtyRect.Empty() {
			tile.DirtyRect = t.CellRect(tile.X, tile.Y)
		}
		if !t.full {
			addClear(tile.DirtyRect)
		}
		b.Tiles = append(b.Tiles, tile)
	}

	if t.clearTarget && t.lastTarget != nil && !t.full {
		addClear(t.CellRect(t.lastTarget.X, t.lastTarget.Y))
	}
	if t.target != nil && (t.drawTarget || t.full) {
		b.DrawTarget = true
		b.Target = *t.target
		b.TargetRect = t.CellRect(t.target.X, t.target.Y)
	}

	for _, e := range b.Entities {
		e.Dirty = false
		e.OldDirtyRect = e.DirtyRect
		e.DirtyRect = model.Rect{}
	}
	for _, tile := range b.Tiles {
		tile.Dirty = false
	}
	t.full = false
	t.drawTarget = false
	t.clearTarget = false
	t.lastTarget = nil

	if b.Full {
		slog.Debug("full redraw collected", "entities", len(b.Entities), "tiles", len(b.Tiles))
	}
	return b
}
