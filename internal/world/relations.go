package world

import (
	"slices"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/tileworld/internal/model"
)

// Engage points attacker at target, dropping any previous link of attacker.
// The player's links are one-way: the player is never listed as a target's attacker.
func (w *World) Engage(attacker, target model.ID) {
	a, ok := w.entities[attacker]
	if !ok || !a.Caps.IsCharacter() {
		return
	}
	if _, ok := w.entities[target]; !ok {
		return
	}

	w.Disengage(attacker)
	a.Character.Target = target
	if a.Caps.Has(model.CapPlayer) {
		return
	}

	set, ok := w.attackers[target]
	if !ok {
		set = mapset.New[model.ID]()
		w.attackers[target] = set
	}
	set.Put(attacker)
}

// Disengage clears the target of id and removes it from the target's attackers.
func (w *World) Disengage(id model.ID) {
	a, ok := w.entities[id]
	if !ok || !a.Caps.IsCharacter() || !a.Character.HasTarget() {
		return
	}

	if set, ok := w.attackers[a.Character.Target]; ok {
		set.Remove(id)
	}
	a.Character.Target = model.NoID
}

// RemoveAttacker drops attacker from target's attacker set without touching
// the attacker's own target.
func (w *World) RemoveAttacker(target, attacker model.ID) {
	if set, ok := w.attackers[target]; ok {
		set.Remove(attacker)
	}
}

// IsAttackedBy reports whether attacker is in target's attacker set.
func (w *World) IsAttackedBy(target, attacker model.ID) bool {
	set, ok := w.attackers[target]
	return ok && set.Has(attacker)
}

// Attackers returns the live attackers of id in ID order.
func (w *World) Attackers(id model.ID) []*model.Entity {
	set, ok := w.attackers[id]
	if !ok || set.Size() == 0 {
		return nil
	}

	ids := make([]model.ID, 0, set.Size())
	set.Each(func(a model.ID) {
		ids = append(ids, a)
	})
	slices.Sort(ids)

	out := make([]*model.Entity, 0, len(ids))
	for _, a := range ids {
		if e, ok := w.entities[a]; ok {
			out = append(out, e)
		}
	}
	return out
}

// HasAttackers reports whether any live entity attacks id.
func (w *World) HasAttackers(id model.ID) bool {
	return len(w.Attackers(id)) > 0
}

// Target returns the live target of id.
func (w *World) Target(id model.ID) *model.Entity {
	e, ok := w.entities[id]
	if !ok || !e.Caps.IsCharacter() || !e.Character.HasTarget() {
		return nil
	}
	t, ok := w.entities[e.Character.Target]
	if !ok {
		return nil
	}
	return t
}
