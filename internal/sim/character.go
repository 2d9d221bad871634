package sim

import (
	"log/slog"
	"math"
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

// Sprite animation speeds.
const (
	idleSpeed   = 450 * time.Millisecond
	walkSpeed   = 100 * time.Millisecond
	attackSpeed = 50 * time.Millisecond
	deathSpeed  = 120 * time.Millisecond

	fadeDuration = time.Second
)

const deathAnimation = "death"

func (s *Simulation) newEntity(id model.ID, kind model.Kind, x, y int) *model.Entity {
	e := model.NewEntity(id, kind)
	e.SetCellSize(s.cfg.CellSize)
	e.SetGridPosition(x, y)
	if e.Caps.IsCharacter() {
		e.Character.MoveSpeed = s.cfg.DefaultMoveSpeed
		e.Character.AttackRate = s.cfg.DefaultAttackRate
	}
	return e
}

func (s *Simulation) addEntity(e *model.Entity, now time.Time) error {
	if err := s.w.Add(e); err != nil {
		return err
	}
	if !(e.Caps.IsItem() && e.Dropped) && !s.constrained {
		e.FadeIn(now)
	}
	s.tracker.MarkEntity(e)
	return nil
}

func (s *Simulation) removeItem(item *model.Entity) {
	s.tracker.MarkEntity(item)
	if err := s.w.RemoveItem(item.ID); err != nil {
		slog.Warn("removing item", "item", item.ID, "error", err)
	}
}

// removeEntity deletes an entity whose death or opening has played out.
func (s *Simulation) removeEntity(e *model.Entity) {
	if err := s.w.Remove(e.ID); err != nil {
		return
	}
	if s.isPlayer(e) {
		slog.Info("player removed", "player", e.ID)
		s.playerID = model.NoID
	}
	if s.constrained {
		s.clearScreen()
	}
}

func (s *Simulation) animate(e *model.Entity, name string, speed time.Duration, count int) {
	if e.Animation != nil && e.Animation.Name == deathAnimation {
		return
	}
	if e.Caps.IsCharacter() && name != deathAnimation {
		name += "_" + e.Character.Orientation.String()
	}
	e.SetAnimation(name, speed, count)
	s.tracker.MarkEntity(e)
}

func (s *Simulation) idle(e *model.Entity) {
	s.animate(e, "idle", idleSpeed, 0)
}

func (s *Simulation) walk(e *model.Entity, o model.Orientation) {
	e.Character.Orientation = o
	s.animate(e, "walk", walkSpeed, 0)
}

func (s *Simulation) hit(e *model.Entity) {
	s.animate(e, "atk", attackSpeed, 1)
}

func (s *Simulation) turnTo(e *model.Entity, o model.Orientation) {
	e.Character.Orientation = o
	s.idle(e)
}

func (s *Simulation) lookAtTarget(e *model.Entity) {
	if t := s.w.Target(e.ID); t != nil {
		s.turnTo(e, e.OrientationTo(t))
	}
}

func (s *Simulation) hasMoved(e *model.Entity) {
	s.tracker.MarkEntity(e)
}

// goTo sends a character to (x, y), dropping its engagement first.
func (s *Simulation) goTo(e *model.Entity, x, y int) {
	c := &e.Character
	if c.Attacking {
		s.disengage(e)
	} else if c.Following {
		c.Following = false
		s.w.Disengage(e.ID)
	}
	s.moveTo(e, x, y)
}

// goToCell is goTo for cells that may lie outside the map.
func (s *Simulation) goToCell(e *model.Entity, x, y int) {
	if s.m.IsOutOfBounds(x, y) {
		slog.Debug("destination out of bounds", "entity", e.ID, "x", x, "y", y)
		return
	}
	s.goTo(e, x, y)
}

func (s *Simulation) moveTo(e *model.Entity, x, y int) {
	c := &e.Character
	dest := model.Pt(x, y)
	c.Destination = &dest
	c.ResetClaims()

	if e.IsMoving() {
		c.NewDestination = &dest
		return
	}
	s.followPath(e, s.requestPath(e, x, y))
}

func (s *Simulation) follow(e, target *model.Entity) {
	if target == nil {
		return
	}
	e.Character.Following = true
	s.moveTo(e, target.GridX, target.GridY)
}

func (s *Simulation) disengage(e *model.Entity) {
	e.Character.Attacking = false
	e.Character.Following = false
	s.w.Disengage(e.ID)
}

// createAttackLink makes attacker engage target and chase it.
func (s *Simulation) createAttackLink(attacker, target *model.Entity) {
	c := &attacker.Character
	s.w.Engage(attacker.ID, target.ID)
	c.Attacking = true
	c.WaitingToAttack = false
	s.follow(attacker, target)

	if IsDebugEnabled() {
		slog.Debug("attack link", "attacker", attacker.ID, "target", target.ID)
	}
}

// teleport moves e to (x, y) at once, abandoning any walk in progress.
func (s *Simulation) teleport(e *model.Entity, x, y int) {
	s.w.UnregisterPosition(e)
	if e.Caps.IsCharacter() {
		s.stopMoving(e)
	}
	e.SetGridPosition(x, y)
	s.w.RegisterPosition(e)
	s.tracker.MarkEntity(e)
}

func (s *Simulation) stopMoving(e *model.Entity) {
	c := &e.Character
	c.Movement.Stop()
	c.Path = nil
	c.Step = 0
	c.NewDestination = nil
	c.Interrupted = false
	e.ClearNextCell()
	e.SetGridPosition(e.GridX, e.GridY)
}

// requestPath returns a start-inclusive path from e's cell to (x, y), or nil.
func (s *Simulation) requestPath(e *model.Entity, x, y int) []model.Point {
	if s.m.IsColliding(x, y) {
		return nil
	}

	s.pf.IgnoreEntity(e)
	if s.isPlayer(e) {
		if t := s.w.Target(e.ID); t != nil {
			s.pf.IgnoreEntity(t)
		}
	} else {
		ignoreTarget := func(t *model.Entity) {
			s.pf.IgnoreEntity(t)
			for _, a := range s.w.Attackers(t.ID) {
				s.pf.IgnoreEntity(a)
			}
		}
		if t := s.w.Target(e.ID); t != nil {
			ignoreTarget(t)
		} else if prev, ok := s.w.Get(e.Character.PreviousTarget); ok {
			ignoreTarget(prev)
		}
	}

	from := model.Pt(e.GridX, e.GridY)
	path := s.pf.FindPath(s.w.Pathing(), from, model.Pt(x, y))
	if len(path) == 0 {
		return nil
	}
	return append([]model.Point{from}, path...)
}

// followPath starts walking path. Paths of a single cell are ignored; when
// following, the last cell belongs to the target and is dropped.
func (s *Simulation) followPath(e *model.Entity, path []model.Point) {
	if len(path) <= 1 {
		return
	}
	c := &e.Character
	if c.Following {
		path = path[:len(path)-1]
	}
	c.Path = path
	c.Step = 0

	if s.isPlayer(e) {
		s.playerStartedPathing(e, path)
	}
	s.nextStep(e)
}

// nextStep runs when e reaches the cell at its current step.
func (s *Simulation) nextStep(e *model.Entity) {
	if !e.IsMoving() {
		return
	}
	c := &e.Character

	s.w.UnregisterPosition(e)
	cur := c.Path[c.Step]
	e.SetGridPosition(cur.X, cur.Y)

	stop := false
	if c.Interrupted {
		stop = true
		c.Interrupted = false
	} else {
		if c.HasNextStep() {
			next := c.Path[c.Step+1]
			e.NextGridX, e.NextGridY = next.X, next.Y
		}

		if s.isPlayer(e) {
			s.playerStepped(e)
		} else {
			s.characterStepped(e)
		}

		switch {
		case c.HasChangedPath():
			dest := *c.NewDestination
			c.NewDestination = nil
			path := s.requestPath(e, dest.X, dest.Y)
			if len(path) < 2 {
				stop = true
			} else {
				s.followPath(e, path)
			}
		case c.HasNextStep():
			c.Step++
			prev, next := c.Path[c.Step-1], c.Path[c.Step]
			s.walk(e, model.OrientationFromDelta(next.X-prev.X, next.Y-prev.Y))
		default:
			stop = true
		}
	}

	if !stop {
		return
	}
	c.Path = nil
	c.Step = 0
	s.idle(e)
	if s.isPlayer(e) {
		s.playerStoppedPathing(e)
	} else {
		s.characterStoppedPathing(e)
	}
	e.ClearNextCell()
}

// updateCharacter starts the tween of the next tile when a step is pending.
func (s *Simulation) updateCharacter(e *model.Entity, now time.Time) {
	c := &e.Character
	if !e.IsMoving() || c.Movement.InProgress() || c.Step == 0 || c.Step >= len(c.Path) {
		return
	}

	next := c.Path[c.Step]
	dx, dy := next.X-e.GridX, next.Y-e.GridY
	cs := e.CellSize()
	x0, y0 := e.X, e.Y

	c.Movement.Start(now,
		func(v int) {
			e.SetPosition(x0+dx*v, y0+dy*v)
			s.hasMoved(e)
		},
		func() {
			v := c.Movement.EndValue()
			e.SetPosition(x0+dx*v, y0+dy*v)
			s.hasMoved(e)
			s.nextStep(e)
		},
		headStart(cs, c.MoveSpeed, s.cfg.FrameInterval()), cs, c.MoveSpeed)
	// Transitions were already stepped this tick.
	c.Movement.Step(now)
}

// headStart is the distance covered in one frame, so a step shows movement
// on the very frame it starts.
func headStart(cellSize int, moveSpeed, frame time.Duration) int {
	if frame <= 0 {
		return 0
	}
	frames := math.Round(float64(moveSpeed) / float64(frame))
	if frames < 1 {
		return cellSize
	}
	return int(math.Round(float64(cellSize) / frames))
}

func (s *Simulation) canReachTarget(e *model.Entity) bool {
	t := s.w.Target(e.ID)
	return t != nil && e.IsAdjacentNonDiagonal(t)
}

// reactToMove makes every attacker of e face it or chase it.
func (s *Simulation) reactToMove(e *model.Entity) {
	for _, a := range s.w.Attackers(e.ID) {
		if t := s.w.Target(a.ID); t != nil && a.IsAdjacent(t) {
			s.lookAtTarget(a)
		} else {
			s.follow(a, e)
		}
	}
}

func (s *Simulation) characterStepped(e *model.Entity) {
	if e.Dying {
		return
	}
	s.w.RegisterDualPosition(e)
	s.reactToMove(e)
}

func (s *Simulation) characterStoppedPathing(e *model.Entity) {
	if e.Dying {
		return
	}
	if t := s.w.Target(e.ID); t != nil && e.IsAdjacent(t) {
		s.lookAtTarget(e)
	}

	// Other players walking through a door vanish to its destination.
	if e.Caps.Has(model.CapPlayer) && e.Character.Destination != nil {
		d := *e.Character.Destination
		if door, ok := s.m.DoorDestination(d.X, d.Y); ok {
			s.w.UnregisterPosition(e)
			e.ClearNextCell()
			e.SetGridPosition(door.X, door.Y)
		}
	}

	for _, a := range s.w.Attackers(e.ID) {
		if !a.IsAdjacentNonDiagonal(e) && !s.isPlayer(a) {
			s.follow(a, e)
		}
	}

	s.w.UnregisterPosition(e)
	s.w.RegisterPosition(e)
}
