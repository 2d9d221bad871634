package sim

import (
	"time"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/transition"
)

// Tick advances the world to now and presents a frame. It runs to
// completion on the calling goroutine.
func (s *Simulation) Tick(now time.Time) {
	s.now = now
	if s.aggroTimer == nil {
		s.aggroTimer = transition.NewTimer(s.cfg.AggroCheckInterval, now)
	}

	s.drainEvents(now)
	s.runDeferred(now)

	s.zones.Update(now)
	s.updateTransitions(now)
	s.updateCharacters(now)
	s.updatePlayerAggro(now)
	s.updateAnimations(now)
	s.updateAnimatedTiles(now)

	s.render(now)
	s.ticks.Add(1)
}

func (s *Simulation) updateCharacters(now time.Time) {
	s.w.ForEach(func(e *model.Entity) bool {
		if e.Dying {
			if now.Sub(e.DiedAt) >= s.cfg.DeathDuration {
				s.removeEntity(e)
			}
			return true
		}
		if e.Caps.IsCharacter() {
			s.updateCharacter(e, now)
			if _, ok := s.w.Get(e.ID); ok {
				s.updateCombat(e, now)
			}
		}
		if e.Fading && now.Sub(e.FadeStart) > fadeDuration {
			e.Fading = false
		}
		return true
	})
}

func (s *Simulation) updateTransitions(now time.Time) {
	s.w.ForEach(func(e *model.Entity) bool {
		if e.Caps.IsCharacter() && e.Character.Movement.InProgress() {
			e.Character.Movement.Step(now)
		}
		return true
	})
	s.zones.Step(now)
}

func (s *Simulation) updateAnimations(now time.Time) {
	s.w.ForEach(func(e *model.Entity) bool {
		a := e.Animation
		if a == nil || !a.Update(now) {
			return true
		}
		s.tracker.MarkEntity(e)
		// Counted animations fall back to idle once played, except death.
		if a.Done() && e.Caps.IsCharacter() && !e.Dying {
			s.idle(e)
		}
		return true
	})
}

func (s *Simulation) updateAnimatedTiles(now time.Time) {
	for _, t := range s.tiles {
		if t.Animate(now) {
			s.tracker.MarkTile(t)
		}
	}
}
