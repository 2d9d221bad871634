package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/world"
)

// attackLinkDelay postpones links between two players closing on each other
// so they do not end up on the same cell.
const attackLinkDelay = 200 * time.Millisecond

// Event is an inbound session message applied at the start of a tick.
type Event interface {
	apply(s *Simulation, now time.Time) error
}

// Welcome creates the controlled player and points the camera at it.
type Welcome struct {
	ID   model.ID
	Name string
	X, Y int
}

func (ev Welcome) apply(s *Simulation, now time.Time) error {
	if p := s.Player(); p != nil {
		return fmt.Errorf("welcoming player %d: %w", ev.ID, world.ErrDuplicateEntity)
	}

	p := s.newEntity(ev.ID, model.KindWarrior, ev.X, ev.Y)
	p.Name = ev.Name
	s.idle(p)
	if err := s.w.Add(p); err != nil {
		return fmt.Errorf("welcoming player: %w", err)
	}
	s.playerID = p.ID
	s.resetCamera()
	if s.constrained {
		s.clearScreen()
	}

	slog.Info("player entered the world", "player", p.ID, "name", p.Name, "x", ev.X, "y", ev.Y)
	return nil
}

// SpawnCharacter adds a mob, npc or another player. A mob spawned with a
// target attacks it right away.
type SpawnCharacter struct {
	ID          model.ID
	Kind        model.Kind
	Name        string
	X, Y        int
	Orientation model.Orientation
	Target      model.ID
}

func (ev SpawnCharacter) apply(s *Simulation, now time.Time) error {
	if !model.CapabilitiesOf(ev.Kind).IsCharacter() {
		return fmt.Errorf("spawning character %d as %s: %w", ev.ID, ev.Kind, ErrWrongKind)
	}

	e := s.newEntity(ev.ID, ev.Kind, ev.X, ev.Y)
	e.Name = ev.Name
	if ev.Orientation != model.OrientationNone {
		e.Character.Orientation = ev.Orientation
	}
	s.idle(e)
	if err := s.addEntity(e, now); err != nil {
		return fmt.Errorf("spawning character: %w", err)
	}

	if ev.Target != model.NoID && e.Caps.Has(model.CapMob) {
		if t, ok := s.w.Get(ev.Target); ok {
			s.createAttackLink(e, t)
		}
	}
	return nil
}

// SpawnItem places an item. A dropped item lands where Mob died when that
// position is known.
type SpawnItem struct {
	ID      model.ID
	Kind    model.Kind
	X, Y    int
	Dropped bool
	Mob     model.ID
}

func (ev SpawnItem) apply(s *Simulation, now time.Time) error {
	if !model.CapabilitiesOf(ev.Kind).IsItem() {
		return fmt.Errorf("spawning item %d as %s: %w", ev.ID, ev.Kind, ErrWrongKind)
	}

	x, y := ev.X, ev.Y
	if ev.Dropped {
		pos, ok := s.deathPositions[ev.Mob]
		if !ok {
			return fmt.Errorf("dropping item %d from mob %d: %w", ev.ID, ev.Mob, world.ErrUnknownEntity)
		}
		delete(s.deathPositions, ev.Mob)
		x, y = pos.X, pos.Y
	}

	e := s.newEntity(ev.ID, ev.Kind, x, y)
	e.Dropped = ev.Dropped
	if err := s.addEntity(e, now); err != nil {
		return fmt.Errorf("spawning item: %w", err)
	}
	return nil
}

// SpawnChest places a chest.
type SpawnChest struct {
	ID   model.ID
	X, Y int
}

func (ev SpawnChest) apply(s *Simulation, now time.Time) error {
	e := s.newEntity(ev.ID, model.KindChest, ev.X, ev.Y)
	if err := s.addEntity(e, now); err != nil {
		return fmt.Errorf("spawning chest: %w", err)
	}
	return nil
}

// Despawn removes an entity the server no longer shows. Characters die,
// chests open and items vanish.
type Despawn struct {
	ID model.ID
}

func (ev Despawn) apply(s *Simulation, now time.Time) error {
	e, ok := s.w.Get(ev.ID)
	if !ok {
		return fmt.Errorf("despawning entity %d: %w", ev.ID, world.ErrUnknownEntity)
	}

	switch {
	case e.Caps.IsItem():
		s.removeItem(e)
	case e.Caps.IsCharacter():
		for _, a := range s.w.Attackers(e.ID) {
			if s.canReachTarget(a) {
				s.hit(a)
			}
		}
		s.die(e, now)
	case e.Caps.Has(model.CapChest):
		s.openChest(e, now)
	default:
		return s.w.Remove(e.ID)
	}
	return nil
}

// MoveTo walks a character other than the player to a cell.
type MoveTo struct {
	ID   model.ID
	X, Y int
}

func (ev MoveTo) apply(s *Simulation, now time.Time) error {
	if ev.ID == s.playerID {
		return nil
	}
	e, ok := s.w.Get(ev.ID)
	if !ok {
		return fmt.Errorf("moving entity %d: %w", ev.ID, world.ErrUnknownEntity)
	}
	if !e.Caps.IsCharacter() {
		return fmt.Errorf("moving entity %d: %w", ev.ID, ErrWrongKind)
	}

	s.disengage(e)
	s.idle(e)
	s.goToCell(e, ev.X, ev.Y)
	return nil
}

// Attack links an attacker other than the player to a target.
type Attack struct {
	Attacker model.ID
	Target   model.ID
}

func (ev Attack) apply(s *Simulation, now time.Time) error {
	if ev.Attacker == s.playerID {
		return nil
	}
	a, ok := s.w.Get(ev.Attacker)
	if !ok {
		return fmt.Errorf("linking attacker %d: %w", ev.Attacker, world.ErrUnknownEntity)
	}
	t, ok := s.w.Get(ev.Target)
	if !ok {
		return fmt.Errorf("linking target %d: %w", ev.Target, world.ErrUnknownEntity)
	}
	if !a.Caps.IsCharacter() {
		return fmt.Errorf("linking attacker %d: %w", ev.Attacker, ErrWrongKind)
	}

	// Two players walking at each other would meet on the same cell.
	if t.Caps.Has(model.CapPlayer) && !s.isPlayer(t) &&
		t.Character.Target == a.ID && a.DistanceTo(t) < 3 {
		s.deferred = append(s.deferred, deferredLink{at: now.Add(attackLinkDelay), attacker: a.ID, target: t.ID})
		return nil
	}
	s.createAttackLink(a, t)
	return nil
}

func (s *Simulation) runDeferred(now time.Time) {
	if len(s.deferred) == 0 {
		return
	}
	kept := s.deferred[:0]
	for _, d := range s.deferred {
		if now.Before(d.at) {
			kept = append(kept, d)
			continue
		}
		a, okA := s.w.Get(d.attacker)
		t, okT := s.w.Get(d.target)
		if okA && okT && !a.Dying && !t.Dying {
			s.createAttackLink(a, t)
		}
	}
	s.deferred = kept
}

// Teleport moves an entity to a cell without walking.
type Teleport struct {
	ID   model.ID
	X, Y int
}

func (ev Teleport) apply(s *Simulation, now time.Time) error {
	e, ok := s.w.Get(ev.ID)
	if !ok {
		return fmt.Errorf("teleporting entity %d: %w", ev.ID, world.ErrUnknownEntity)
	}
	if s.m.IsOutOfBounds(ev.X, ev.Y) {
		slog.Debug("teleport out of bounds ignored", "entity", ev.ID, "x", ev.X, "y", ev.Y)
		return nil
	}

	s.teleport(e, ev.X, ev.Y)
	if s.isPlayer(e) {
		s.resetCamera()
		if s.constrained {
			s.clearScreen()
		}
	}
	return nil
}

// Kill makes a character die, opens a chest or removes an item.
type Kill struct {
	ID model.ID
}

func (ev Kill) apply(s *Simulation, now time.Time) error {
	e, ok := s.w.Get(ev.ID)
	if !ok {
		return fmt.Errorf("killing entity %d: %w", ev.ID, world.ErrUnknownEntity)
	}

	switch {
	case e.Caps.IsCharacter():
		s.die(e, now)
	case e.Caps.Has(model.CapChest):
		s.openChest(e, now)
	default:
		s.removeItem(e)
	}
	return nil
}

// Populate applies a batch of events in order, as sent on zone entry.
type Populate struct {
	Events []Event
}

func (ev Populate) apply(s *Simulation, now time.Time) error {
	var errs []error
	for _, sub := range ev.Events {
		if err := sub.apply(s, now); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Click is the player selecting a cell: attack a mob, pick up an item, talk
// to an npc, open a chest or walk there.
type Click struct {
	X, Y int
}

func (ev Click) apply(s *Simulation, now time.Time) error {
	p := s.Player()
	if p == nil || p.Dying {
		return fmt.Errorf("clicking (%d, %d): %w", ev.X, ev.Y, ErrNoPlayer)
	}
	s.click(p, ev.X, ev.Y)
	return nil
}
