package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/sim"
)

// Intention is what the server has a mob doing.
type Intention uint8

const (
	IntentionIdle Intention = iota
	IntentionWander
	IntentionAttack
	IntentionDead
)

func (i Intention) String() string {
	switch i {
	case IntentionIdle:
		return "idle"
	case IntentionWander:
		return "wander"
	case IntentionAttack:
		return "attack"
	case IntentionDead:
		return "dead"
	}
	return "unknown"
}

// Spawn is a spawn point. Mobs wander within Radius cells of it.
type Spawn struct {
	Kind   model.Kind
	X, Y   int
	Radius int
}

type mob struct {
	id        model.ID
	spawn     Spawn
	x, y      int
	hp        int
	intention Intention
	diedAt    time.Time
}

func (m *mob) setIntention(i Intention) {
	if m.intention != i && sim.IsDebugEnabled() {
		slog.Debug("session: mob intention changed", "mob", m.id, "from", m.intention, "to", i)
	}
	m.intention = i
}

// Run ticks the server until ctx is canceled or Stop is called. Blocks.
func (s *Server) Run(ctx context.Context) error {
	s.ticker = time.NewTicker(s.cfg.TickInterval)
	defer s.ticker.Stop()

	slog.Info("session tick loop started", "interval", s.cfg.TickInterval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("session tick loop stopping")
			return ctx.Err()

		case <-s.stopCh:
			slog.Info("session tick loop stopped")
			return nil

		case <-s.ticker.C:
			s.Tick(s.now())
		}
	}
}

// Stop ends Run.
func (s *Server) Stop() {
	close(s.stopCh)
}

// Tick wanders idle mobs, respawns dead ones and revives the player.
func (s *Server) Tick(now time.Time) {
	var events []sim.Event

	s.mu.Lock()
	for id, m := range s.mobs {
		switch m.intention {
		case IntentionDead:
			if now.Sub(m.diedAt) < s.cfg.RespawnDelay {
				continue
			}
			delete(s.mobs, id)
			events = append(events, s.spawnLocked(m.spawn))

		case IntentionIdle, IntentionWander:
			if s.player.dead || s.rng.Float64() >= s.cfg.WanderChance {
				m.setIntention(IntentionIdle)
				continue
			}
			x, y, ok := s.wanderTarget(m)
			if !ok {
				continue
			}
			m.x, m.y = x, y
			m.setIntention(IntentionWander)
			events = append(events, sim.MoveTo{ID: id, X: x, Y: y})
		}
	}

	if s.player.dead && now.Sub(s.player.diedAt) >= s.cfg.RespawnDelay {
		s.player.dead = false
		s.player.hp = s.cfg.PlayerHP
		s.player.x, s.player.y = s.welcome.X, s.welcome.Y
		events = append(events, s.welcome)
		slog.Info("session: player respawned", "player", s.player.id)
	}
	s.mu.Unlock()

	s.send(events...)
}

// wanderTarget picks a walkable cell near the mob's spawn point.
func (s *Server) wanderTarget(m *mob) (int, int, bool) {
	r := max(1, m.spawn.Radius)
	for range 4 {
		x := m.spawn.X + s.rng.IntN(2*r+1) - r
		y := m.spawn.Y + s.rng.IntN(2*r+1) - r
		if (x == m.x && y == m.y) || s.m.IsOutOfBounds(x, y) || s.m.IsColliding(x, y) {
			continue
		}
		return x, y, true
	}
	return 0, 0, false
}

// MobIntention returns what the server has a mob doing.
func (s *Server) MobIntention(id model.ID) (Intention, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.mobs[id]
	if !ok {
		return IntentionIdle, false
	}
	return m.intention, true
}
