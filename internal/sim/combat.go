package sim

import (
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

// updateCombat runs once per tick for every live character after its
// movement was started.
func (s *Simulation) updateCombat(e *model.Entity, now time.Time) {
	c := &e.Character

	// A mob that stepped aside to avoid stacking resumes its attack.
	if c.PreviousTarget != model.NoID && !e.IsMoving() && e.Caps.Has(model.CapMob) {
		prev := c.PreviousTarget
		c.PreviousTarget = model.NoID
		if t, ok := s.w.Get(prev); ok && !t.Dying {
			s.createAttackLink(e, t)
			return
		}
	}

	if !c.Attacking || c.PreviousTarget != model.NoID {
		return
	}

	moving := s.tryMovingToADifferentTile(e)

	if s.canReachTarget(e) && c.CanAttack(now) {
		if moving {
			return
		}
		t := s.w.Target(e.ID)
		if t != nil && e.OrientationTo(t) != c.Orientation {
			s.lookAtTarget(e)
		}
		s.hit(e)

		if s.isPlayer(e) && t != nil {
			s.outbox.Hit(t.ID)
		}
		if t != nil && s.isPlayer(t) {
			s.outbox.Hurt(e.ID)
		}
		return
	}

	if t := s.w.Target(e.ID); t != nil && e.IsDiagonallyAdjacent(t) &&
		t.Caps.Has(model.CapPlayer) && !t.IsMoving() {
		s.follow(e, t)
	}
}

// tryMovingToADifferentTile keeps attackers of a player from piling up on
// one cell. It reports whether e was sent elsewhere.
func (s *Simulation) tryMovingToADifferentTile(e *model.Entity) bool {
	t := s.w.Target(e.ID)
	if t == nil || !t.Caps.Has(model.CapPlayer) || t.IsMoving() {
		return false
	}

	if e.DistanceTo(t) == 0 {
		o := t.Character.Orientation
		switch o {
		case model.OrientationUp, model.OrientationLeft, model.OrientationRight:
		default:
			o = model.OrientationDown
		}
		dx, dy := o.Delta()
		s.stepAside(e, t, t.GridX+dx, t.GridY+dy, o)
		return true
	}

	if e.IsAdjacentNonDiagonal(t) && s.w.IsMobOnSameTile(e, e.GridX, e.GridY) {
		pos, o, ok := s.freeAdjacentPosition(t)
		if !ok || t.Character.AdjacentClaims[model.ClaimIndex(o)] {
			return false
		}
		if p := s.Player(); p != nil && p.Character.Target == e.ID {
			return false
		}
		s.stepAside(e, t, pos.X, pos.Y, o)
		return true
	}
	return false
}

func (s *Simulation) stepAside(e, t *model.Entity, x, y int, o model.Orientation) {
	e.Character.PreviousTarget = t.ID
	s.disengage(e)
	s.idle(e)
	s.goToCell(e, x, y)
	if i := model.ClaimIndex(o); i >= 0 {
		t.Character.AdjacentClaims[i] = true
	}
}

// freeAdjacentPosition returns the first side of e that is walkable and has
// no mob on it.
func (s *Simulation) freeAdjacentPosition(e *model.Entity) (model.Point, model.Orientation, bool) {
	for _, pos := range e.AdjacentNonDiagonalPositions() {
		if s.m.IsColliding(pos.X, pos.Y) || s.w.MobAt(pos.X, pos.Y) != nil {
			continue
		}
		return pos.Point, pos.Orientation, true
	}
	return model.Point{}, model.OrientationNone, false
}

// updatePlayerAggro lets nearby aggressive mobs notice an idle player.
func (s *Simulation) updatePlayerAggro(now time.Time) {
	p := s.Player()
	if p == nil || p.Dying || p.IsMoving() || p.Character.Attacking {
		return
	}
	if !s.aggroTimer.IsOver(now) {
		return
	}

	s.w.ForEachMob(func(mob *model.Entity) bool {
		mc := &mob.Character
		if mob.Dying || !mc.Aggressive || mc.Attacking || !p.IsNear(mob, mc.AggroRange) {
			return true
		}
		if mc.WaitingToAttack || s.w.IsAttackedBy(p.ID, mob.ID) {
			return true
		}
		mc.WaitingToAttack = true
		s.outbox.Aggroed(mob.ID)
		slog.Debug("aggroed", "mob", mob.ID, "x", p.GridX, "y", p.GridY)
		return true
	})
}

// die starts the death of a character. It leaves the entity and pathing
// grids at once so others can walk through, and is removed for good after
// the death delay.
func (s *Simulation) die(e *model.Entity, now time.Time) {
	if e.Dying {
		return
	}

	attackers := s.w.Attackers(e.ID)
	s.disengage(e)
	s.stopMovingInPlace(e)

	e.Dying = true
	e.DiedAt = now
	e.Animation = nil
	s.animate(e, deathAnimation, deathSpeed, 1)

	if s.isPlayer(e) {
		for _, a := range attackers {
			s.disengage(a)
			s.idle(a)
		}
		slog.Info("player died", "player", e.ID, "x", e.GridX, "y", e.GridY)
		return
	}

	for _, a := range attackers {
		s.disengage(a)
	}
	if p := s.Player(); p != nil && p.Character.Target == e.ID {
		s.disengage(p)
	}

	s.w.RemoveFromEntityGrid(e, e.GridX, e.GridY)
	s.w.RemoveFromPathingGrid(e.GridX, e.GridY)
	s.deathPositions[e.ID] = model.Pt(e.GridX, e.GridY)
}

// stopMovingInPlace halts a walk and leaves e registered at its current cell only.
func (s *Simulation) stopMovingInPlace(e *model.Entity) {
	if !e.IsMoving() && !e.HasNextCell() {
		return
	}
	s.w.UnregisterPosition(e)
	s.stopMoving(e)
	s.w.RegisterPosition(e)
}

func (s *Simulation) openChest(e *model.Entity, now time.Time) {
	if e.Dying {
		return
	}
	e.Dying = true
	e.DiedAt = now
	e.Animation = nil
	s.animate(e, deathAnimation, deathSpeed, 1)
}
