// Package world owns the entity table, the grid overlays and attack relations.
package world

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
)

var (
	// ErrDuplicateEntity is returned when adding an ID that is already present.
	ErrDuplicateEntity = errors.New("duplicate entity")
	// ErrUnknownEntity is returned for IDs not present in the world.
	ErrUnknownEntity = errors.New("unknown entity")
)

// World is the set of entities known to the client and their grid placement.
// It is not safe for concurrent use; the simulation tick owns it.
type World struct {
	m             *geo.Map
	width, height int

	pathing       geo.Grid
	entityGrid    cellSets
	itemGrid      cellSets
	renderingGrid cellSets

	entities map[model.ID]*model.Entity
	order    []model.ID

	attackers map[model.ID]mapset.Set[model.ID]
}

// New creates an empty world over the map. The pathing grid starts as the
// map's static collision layer.
func New(m *geo.Map) *World {
	cells := m.Width() * m.Height()
	return &World{
		m:             m,
		width:         m.Width(),
		height:        m.Height(),
		pathing:       m.CollisionGrid(),
		entityGrid:    make(cellSets, cells),
		itemGrid:      make(cellSets, cells),
		renderingGrid: make(cellSets, cells),
		entities:      make(map[model.ID]*model.Entity),
		attackers:     make(map[model.ID]mapset.Set[model.ID]),
	}
}

// Map returns the static map.
func (w *World) Map() *geo.Map {
	return w.m
}

// Pathing returns the live pathing grid.
func (w *World) Pathing() geo.Grid {
	return w.pathing
}

// Add inserts e and registers its position.
func (w *World) Add(e *model.Entity) error {
	if _, ok := w.entities[e.ID]; ok {
		return fmt.Errorf("adding entity %d: %w", e.ID, ErrDuplicateEntity)
	}

	w.entities[e.ID] = e
	i, _ := slices.BinarySearch(w.order, e.ID)
	w.order = slices.Insert(w.order, i, e.ID)
	w.RegisterPosition(e)
	return nil
}

// Remove unregisters and deletes an entity together with its relations.
func (w *World) Remove(id model.ID) error {
	e, ok := w.entities[id]
	if !ok {
		slog.Warn("removing unknown entity", "entity", id)
		return fmt.Errorf("removing entity %d: %w", id, ErrUnknownEntity)
	}

	w.UnregisterPosition(e)
	w.forget(e)
	return nil
}

// RemoveItem deletes a picked-up or despawned item.
func (w *World) RemoveItem(id model.ID) error {
	e, ok := w.entities[id]
	if !ok || !e.Caps.IsItem() {
		return fmt.Errorf("removing item %d: %w", id, ErrUnknownEntity)
	}

	w.RemoveFromItemGrid(e, e.GridX, e.GridY)
	w.RemoveFromRenderingGrid(e, e.GridX, e.GridY)
	w.forget(e)
	return nil
}

func (w *World) forget(e *model.Entity) {
	w.Disengage(e.ID)
	delete(w.attackers, e.ID)
	delete(w.entities, e.ID)
	if i, found := slices.BinarySearch(w.order, e.ID); found {
		w.order = slices.Delete(w.order, i, i+1)
	}
}

// Get returns an entity by ID.
func (w *World) Get(id model.ID) (*model.Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Len returns the number of entities.
func (w *World) Len() int {
	return len(w.entities)
}

// ForEach calls fn for every entity in ID order until fn returns false.
// fn may remove entities.
func (w *World) ForEach(fn func(*model.Entity) bool) {
	for _, id := range slices.Clone(w.order) {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		if !fn(e) {
			return
		}
	}
}

// ForEachMob calls fn for every mob in ID order until fn returns false.
func (w *World) ForEachMob(fn func(*model.Entity) bool) {
	w.ForEach(func(e *model.Entity) bool {
		if !e.Caps.Has(model.CapMob) {
			return true
		}
		return fn(e)
	})
}

// PathingString renders the pathing grid, one row per line: '#' static
// collision, 'x' blocked by an entity, '.' free.
func (w *World) PathingString() string {
	var b strings.Builder
	b.Grow((w.width + 1) * w.height)
	for y := range w.height {
		for x := range w.width {
			switch {
			case w.m.IsColliding(x, y):
				b.WriteByte('#')
			case w.pathing[y][x]:
				b.WriteByte('x')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
