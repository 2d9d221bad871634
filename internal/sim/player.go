package sim

import (
	"log/slog"

	"github.com/udisondev/tileworld/internal/camera"
	"github.com/udisondev/tileworld/internal/model"
)

func (s *Simulation) playerStartedPathing(p *model.Entity, path []model.Point) {
	dest := path[len(path)-1]
	c := &p.Character
	if c.LootMoving {
		c.LootMoving = false
	} else if !c.Attacking {
		s.outbox.Moved(dest.X, dest.Y)
	}
	s.setCursor(dest.X, dest.Y)
}

func (s *Simulation) playerStepped(p *model.Entity) {
	if p.Character.HasNextStep() {
		s.w.RegisterDualPosition(p)
	}
	// A re-path re-runs the step hooks on the same cell; zone only once.
	cell := model.Pt(p.GridX, p.GridY)
	if s.cam.IsZoningTile(cell.X, cell.Y) {
		if s.zonedFrom == nil || *s.zonedFrom != cell {
			s.zonedFrom = &cell
			s.zones.Enqueue(cell.X, cell.Y)
		}
	} else {
		s.zonedFrom = nil
	}
	s.reactToMove(p)
	s.updatePlayerCheckpoint(p)

	if IsDebugEnabled() {
		slog.Debug("player step", "x", p.GridX, "y", p.GridY, "next_x", p.NextGridX, "next_y", p.NextGridY)
	}
}

func (s *Simulation) updatePlayerCheckpoint(p *model.Entity) {
	cp, ok := s.m.Checkpoint(p.GridX, p.GridY)
	if !ok || cp.ID == p.Character.LastCheckpoint {
		return
	}
	p.Character.LastCheckpoint = cp.ID
	s.outbox.Checkpoint(cp.ID)
}

func (s *Simulation) playerStoppedPathing(p *model.Entity) {
	x, y := p.GridX, p.GridY
	c := &p.Character

	if c.HasTarget() {
		s.lookAtTarget(p)
	}
	s.hideCursor()
	s.lastClick = nil

	if item := s.w.ItemAt(x, y); item != nil {
		s.outbox.Looted(item.ID)
		s.removeItem(item)
	}

	if !c.HasTarget() && s.m.IsDoor(x, y) {
		s.enterDoor(p, x, y)
	}

	if t := s.w.Target(p.ID); t != nil {
		switch {
		case t.Caps.Has(model.CapNpc):
			s.outbox.Talked(t.ID)
		case t.Caps.Has(model.CapChest):
			s.outbox.Opened(t.ID)
		}
	}

	for _, a := range s.w.Attackers(p.ID) {
		if !a.IsAdjacentNonDiagonal(p) {
			s.follow(a, p)
		}
	}

	s.w.UnregisterPosition(p)
	s.w.RegisterPosition(p)
}

// enterDoor moves the player to the destination of the door at (x, y).
func (s *Simulation) enterDoor(p *model.Entity, x, y int) {
	door, ok := s.m.DoorDestination(x, y)
	if !ok {
		return
	}

	s.w.UnregisterPosition(p)
	p.SetGridPosition(door.X, door.Y)
	p.NextGridX, p.NextGridY = door.X, door.Y
	s.turnTo(p, door.Orientation)
	s.outbox.Teleported(door.X, door.Y)

	if s.device == camera.DeviceMobile && door.CameraX != 0 && door.CameraY != 0 {
		s.cam.SetGridPosition(door.CameraX, door.CameraY)
		s.resetZone()
	} else {
		s.cam.FocusEntity(p)
		s.resetZone()
	}

	for _, a := range s.w.Attackers(p.ID) {
		s.disengage(a)
		s.idle(a)
	}

	if s.constrained {
		s.clearScreen()
	}

	slog.Debug("player entered door", "from_x", x, "from_y", y, "x", door.X, "y", door.Y, "portal", door.Portal)
}

// click interprets a selected cell for the player.
func (s *Simulation) click(p *model.Entity, x, y int) {
	pos := model.Pt(x, y)
	if s.lastClick != nil && *s.lastClick == pos {
		return
	}
	if s.zones.Active() || s.m.IsOutOfBounds(x, y) || s.m.IsColliding(x, y) {
		return
	}
	if p.HasNextCell() && s.cam.IsZoningTile(p.NextGridX, p.NextGridY) {
		return
	}
	s.lastClick = &pos

	e := s.w.EntityAt(x, y)
	switch {
	case e == nil || e.ID == p.ID:
		s.goToCell(p, x, y)
	case e.Caps.Has(model.CapMob):
		s.createAttackLink(p, e)
		s.outbox.Attacked(e.ID)
	case e.Caps.IsItem():
		p.Character.LootMoving = true
		s.goToCell(p, e.GridX, e.GridY)
		s.outbox.LootMoved(e.ID, e.GridX, e.GridY)
	case e.Caps.Has(model.CapNpc):
		if p.IsAdjacentNonDiagonal(e) {
			s.outbox.Talked(e.ID)
			s.lastClick = nil
			return
		}
		s.w.Engage(p.ID, e.ID)
		s.follow(p, e)
	case e.Caps.Has(model.CapChest):
		s.w.Engage(p.ID, e.ID)
		s.follow(p, e)
	default:
		s.goToCell(p, x, y)
	}
}
