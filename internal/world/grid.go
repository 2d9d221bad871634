package world

import (
	"log/slog"
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/tileworld/internal/model"
)

// cellSets is a dense overlay of ID sets, one per map cell, allocated on first use.
type cellSets []mapset.Set[model.ID]

func (w *World) cell(x, y int) (int, bool) {
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		return 0, false
	}
	return y*w.width + x, true
}

func (w *World) put(overlay cellSets, x, y int, id model.ID) {
	i, ok := w.cell(x, y)
	if !ok {
		return
	}
	if overlay[i].Size() == 0 {
		overlay[i] = mapset.Of(id)
		return
	}
	overlay[i].Put(id)
}

func (w *World) remove(overlay cellSets, x, y int, id model.ID) {
	if i, ok := w.cell(x, y); ok {
		overlay[i].Remove(id)
	}
}

// sortedIDs returns the IDs of a cell in ascending order.
func (w *World) sortedIDs(overlay cellSets, x, y int) []model.ID {
	i, ok := w.cell(x, y)
	if !ok || overlay[i].Size() == 0 {
		return nil
	}
	ids := make([]model.ID, 0, overlay[i].Size())
	overlay[i].Each(func(id model.ID) {
		ids = append(ids, id)
	})
	slices.Sort(ids)
	return ids
}

// RegisterPosition records e at its current cell. Occupants go to the entity
// grid, items to the item grid, blocking entities to the pathing grid and
// everything to the rendering grid.
func (w *World) RegisterPosition(e *model.Entity) {
	if e == nil {
		return
	}
	x, y := e.GridX, e.GridY

	if e.Caps.Has(model.CapOccupant) {
		w.put(w.entityGrid, x, y, e.ID)
		if e.Caps.Has(model.CapBlocking) {
			w.setPathing(x, y, true)
		}
	}
	if e.Caps.IsItem() {
		w.put(w.itemGrid, x, y, e.ID)
	}
	w.put(w.renderingGrid, x, y, e.ID)
}

// RegisterDualPosition records a moving entity at both its current and next
// cell. Only the next cell is blocked for pathing.
func (w *World) RegisterDualPosition(e *model.Entity) {
	if e == nil {
		return
	}

	w.put(w.entityGrid, e.GridX, e.GridY, e.ID)
	w.put(w.renderingGrid, e.GridX, e.GridY, e.ID)

	if e.HasNextCell() {
		w.put(w.entityGrid, e.NextGridX, e.NextGridY, e.ID)
		if e.Caps.Has(model.CapBlocking) {
			w.setPathing(e.NextGridX, e.NextGridY, true)
		}
	}
}

// UnregisterPosition removes e from every overlay at its current and next cells.
func (w *World) UnregisterPosition(e *model.Entity) {
	if e == nil {
		return
	}
	if known, ok := w.entities[e.ID]; !ok || known != e {
		slog.Debug("unregistering entity not in world", "entity", e.ID)
	}

	w.RemoveFromEntityGrid(e, e.GridX, e.GridY)
	w.RemoveFromItemGrid(e, e.GridX, e.GridY)
	w.RemoveFromPathingGrid(e.GridX, e.GridY)
	w.RemoveFromRenderingGrid(e, e.GridX, e.GridY)

	if e.HasNextCell() {
		w.RemoveFromEntityGrid(e, e.NextGridX, e.NextGridY)
		w.RemoveFromPathingGrid(e.NextGridX, e.NextGridY)
	}
}

// RemoveFromEntityGrid drops e from the entity grid at (x, y).
func (w *World) RemoveFromEntityGrid(e *model.Entity, x, y int) {
	w.remove(w.entityGrid, x, y, e.ID)
}

// RemoveFromItemGrid drops e from the item grid at (x, y).
func (w *World) RemoveFromItemGrid(e *model.Entity, x, y int) {
	w.remove(w.itemGrid, x, y, e.ID)
}

// RemoveFromRenderingGrid drops e from the rendering grid at (x, y).
func (w *World) RemoveFromRenderingGrid(e *model.Entity, x, y int) {
	w.remove(w.renderingGrid, x, y, e.ID)
}

// RemoveFromPathingGrid unblocks (x, y) back to its static collision value.
// The cell stays blocked while another blocking occupant registered there
// is not moving out of it.
func (w *World) RemoveFromPathingGrid(x, y int) {
	i, ok := w.cell(x, y)
	if !ok {
		return
	}

	blocked := w.m.IsColliding(x, y)
	if !blocked {
		w.entityGrid[i].Each(func(id model.ID) {
			if e, ok := w.entities[id]; ok && e.Caps.Has(model.CapBlocking) && e.OccupiedCell() == model.Pt(x, y) {
				blocked = true
			}
		})
	}
	w.pathing[y][x] = blocked
}

func (w *World) setPathing(x, y int, blocked bool) {
	if _, ok := w.cell(x, y); ok {
		w.pathing[y][x] = blocked
	}
}

// EntityAt returns the occupant at (x, y) with the smallest ID, falling back
// to the item there.
func (w *World) EntityAt(x, y int) *model.Entity {
	for _, id := range w.sortedIDs(w.entityGrid, x, y) {
		if e, ok := w.entities[id]; ok {
			return e
		}
	}
	return w.ItemAt(x, y)
}

// ItemAt returns the item at (x, y). Expendable items win over equipment.
func (w *World) ItemAt(x, y int) *model.Entity {
	var fallback *model.Entity
	for _, id := range w.sortedIDs(w.itemGrid, x, y) {
		e, ok := w.entities[id]
		if !ok {
			continue
		}
		if e.Caps.Has(model.CapExpendable) {
			return e
		}
		if fallback == nil {
			fallback = e
		}
	}
	return fallback
}

func (w *World) entityWith(x, y int, caps model.Capabilities) *model.Entity {
	e := w.EntityAt(x, y)
	if e != nil && e.Caps.Has(caps) {
		return e
	}
	return nil
}

// MobAt returns the mob at (x, y), if the cell's first occupant is one.
func (w *World) MobAt(x, y int) *model.Entity {
	return w.entityWith(x, y, model.CapMob)
}

// NpcAt returns the npc at (x, y).
func (w *World) NpcAt(x, y int) *model.Entity {
	return w.entityWith(x, y, model.CapNpc)
}

// ChestAt returns the chest at (x, y).
func (w *World) ChestAt(x, y int) *model.Entity {
	return w.entityWith(x, y, model.CapChest)
}

// IsEntityAt reports whether any occupant is registered at (x, y).
func (w *World) IsEntityAt(x, y int) bool {
	i, ok := w.cell(x, y)
	return ok && w.entityGrid[i].Size() > 0
}

// IsItemAt reports whether any item lies at (x, y).
func (w *World) IsItemAt(x, y int) bool {
	i, ok := w.cell(x, y)
	return ok && w.itemGrid[i].Size() > 0
}

// IsMobOnSameTile reports whether a mob other than mob occupies (x, y).
func (w *World) IsMobOnSameTile(mob *model.Entity, x, y int) bool {
	i, ok := w.cell(x, y)
	if !ok {
		return false
	}
	found := false
	w.entityGrid[i].Each(func(id model.ID) {
		if id == mob.ID {
			return
		}
		if e, ok := w.entities[id]; ok && e.Caps.Has(model.CapMob) {
			found = true
		}
	})
	return found
}

// EntitiesAt returns everything rendered at (x, y) in ID order.
func (w *World) EntitiesAt(x, y int) []*model.Entity {
	ids := w.sortedIDs(w.renderingGrid, x, y)
	out := make([]*model.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := w.entities[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

// ForEachEntityAround calls fn for every entity rendered within radius cells
// of (x, y). Returning false from fn stops the iteration.
func (w *World) ForEachEntityAround(x, y, radius int, fn func(*model.Entity) bool) {
	for i := x - radius; i <= x+radius; i++ {
		for j := y - radius; j <= y+radius; j++ {
			for _, e := range w.EntitiesAt(i, j) {
				if !fn(e) {
					return
				}
			}
		}
	}
}
