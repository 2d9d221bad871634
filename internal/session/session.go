// Package session is a loopback game server for running the simulator
// without a network peer. It answers the intents the simulation emits with
// the events a real server would send back, and drives mob wandering and
// respawns from its own tick loop.
package session

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/sim"
)

// Enqueuer receives the events the server sends.
type Enqueuer interface {
	Enqueue(events ...sim.Event)
}

// Config tunes the loopback server.
type Config struct {
	Seed         uint64
	TickInterval time.Duration
	RespawnDelay time.Duration
	// WanderChance is the chance per tick that an idle mob walks somewhere.
	WanderChance float64
	DropChance   float64
	PlayerHP     int
	PlayerDamage int
	MobHP        int
	MobDamage    int
}

// DefaultConfig returns values that keep a demo lively.
func DefaultConfig() Config {
	return Config{
		Seed:         1,
		TickInterval: time.Second,
		RespawnDelay: 5 * time.Second,
		WanderChance: 0.3,
		DropChance:   0.5,
		PlayerHP:     100,
		PlayerDamage: 10,
		MobHP:        30,
		MobDamage:    4,
	}
}

// firstSpawnID keeps server-made ids clear of the player id range.
const firstSpawnID model.ID = 100000

// Server is the loopback peer. Outbox methods run on the simulation's tick
// goroutine and Tick on the server's own; mu guards all state.
type Server struct {
	cfg  Config
	m    *geo.Map
	sink Enqueuer
	now  func() time.Time

	mu      sync.Mutex
	rng     *rand.Rand
	nextID  model.ID
	player  playerState
	mobs    map[model.ID]*mob
	items   map[model.ID]model.Kind
	chests  map[model.ID]model.Point
	welcome sim.Welcome

	ticker *time.Ticker
	stopCh chan struct{}

	intents atomic.Uint64
	sent    atomic.Uint64
}

type playerState struct {
	id         model.ID
	x, y       int
	hp         int
	dead       bool
	diedAt     time.Time
	checkpoint int
}

var _ sim.Outbox = (*Server)(nil)

// New creates a server over m sending events to sink.
func New(cfg Config, m *geo.Map, sink Enqueuer) *Server {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	return &Server{
		cfg:    cfg,
		m:      m,
		sink:   sink,
		now:    time.Now,
		rng:    rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		nextID: firstSpawnID,
		mobs:   make(map[model.ID]*mob),
		items:  make(map[model.ID]model.Kind),
		chests: make(map[model.ID]model.Point),
		stopCh: make(chan struct{}),
	}
}

// Start welcomes the player and populates the world from spawns.
func (s *Server) Start(welcome sim.Welcome, spawns []Spawn) {
	s.mu.Lock()
	s.welcome = welcome
	s.player = playerState{id: welcome.ID, x: welcome.X, y: welcome.Y, hp: s.cfg.PlayerHP, checkpoint: -1}

	var batch []sim.Event
	for _, sp := range spawns {
		batch = append(batch, s.spawnLocked(sp))
	}
	s.mu.Unlock()

	s.send(welcome, sim.Populate{Events: batch})
	slog.Info("session started", "player", welcome.ID, "spawns", len(spawns))
}

// spawnLocked creates the event for one spawn point. mu must be held.
func (s *Server) spawnLocked(sp Spawn) sim.Event {
	id := s.allocID()
	caps := model.CapabilitiesOf(sp.Kind)
	switch {
	case caps.Has(model.CapChest):
		s.chests[id] = model.Pt(sp.X, sp.Y)
		return sim.SpawnChest{ID: id, X: sp.X, Y: sp.Y}
	case caps.IsItem():
		s.items[id] = sp.Kind
		return sim.SpawnItem{ID: id, Kind: sp.Kind, X: sp.X, Y: sp.Y}
	case caps.Has(model.CapMob):
		s.mobs[id] = &mob{id: id, spawn: sp, x: sp.X, y: sp.Y, hp: s.cfg.MobHP}
	}
	return sim.SpawnCharacter{ID: id, Kind: sp.Kind, X: sp.X, Y: sp.Y}
}

func (s *Server) allocID() model.ID {
	id := s.nextID
	s.nextID++
	return id
}

func (s *Server) send(events ...sim.Event) {
	if len(events) == 0 {
		return
	}
	s.sent.Add(uint64(len(events)))
	s.sink.Enqueue(events...)
}

// Stats reports intents received and events sent.
func (s *Server) Stats() (intents, sent uint64) {
	return s.intents.Load(), s.sent.Load()
}

// PlayerHP returns the player's hit points.
func (s *Server) PlayerHP() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.hp
}

func (s *Server) Moved(x, y int) {
	s.intents.Add(1)
	s.mu.Lock()
	s.player.x, s.player.y = x, y
	s.mu.Unlock()
}

func (s *Server) LootMoved(_ model.ID, x, y int) {
	s.Moved(x, y)
}

func (s *Server) Attacked(target model.ID) {
	s.intents.Add(1)
	s.engage(target)
}

func (s *Server) Aggroed(id model.ID) {
	s.intents.Add(1)
	s.engage(id)
}

// engage makes a mob fight the player back.
func (s *Server) engage(id model.ID) {
	s.mu.Lock()
	m, ok := s.mobs[id]
	if !ok || m.intention == IntentionDead || m.intention == IntentionAttack || s.player.dead {
		s.mu.Unlock()
		return
	}
	m.setIntention(IntentionAttack)
	player := s.player.id
	s.mu.Unlock()

	s.send(sim.Attack{Attacker: id, Target: player})
}

func (s *Server) Zoned() {
	s.intents.Add(1)
	slog.Debug("session: player zoned")
}

func (s *Server) Hit(target model.ID) {
	s.intents.Add(1)

	s.mu.Lock()
	m, ok := s.mobs[target]
	if !ok || m.intention == IntentionDead {
		s.mu.Unlock()
		return
	}
	m.hp -= s.cfg.PlayerDamage
	if m.hp > 0 {
		s.mu.Unlock()
		return
	}

	m.setIntention(IntentionDead)
	m.diedAt = s.now()
	events := []sim.Event{sim.Kill{ID: target}}
	if s.rng.Float64() < s.cfg.DropChance {
		kind := model.KindFlask
		if s.rng.IntN(2) == 1 {
			kind = model.KindBurger
		}
		id := s.allocID()
		s.items[id] = kind
		events = append(events, sim.SpawnItem{ID: id, Kind: kind, Dropped: true, Mob: target})
	}
	s.mu.Unlock()

	slog.Debug("session: mob killed", "mob", target)
	s.send(events...)
}

func (s *Server) Hurt(attacker model.ID) {
	s.intents.Add(1)

	s.mu.Lock()
	if s.player.dead {
		s.mu.Unlock()
		return
	}
	s.player.hp -= s.cfg.MobDamage
	if s.player.hp > 0 {
		s.mu.Unlock()
		return
	}

	s.player.dead = true
	s.player.diedAt = s.now()
	for _, m := range s.mobs {
		if m.intention == IntentionAttack {
			m.setIntention(IntentionIdle)
		}
	}
	id := s.player.id
	s.mu.Unlock()

	slog.Info("session: player died", "killed_by", attacker)
	s.send(sim.Kill{ID: id})
}

func (s *Server) Teleported(x, y int) {
	s.Moved(x, y)
}

func (s *Server) Checkpoint(id int) {
	s.intents.Add(1)
	s.mu.Lock()
	s.player.checkpoint = id
	s.mu.Unlock()
}

func (s *Server) Looted(item model.ID) {
	s.intents.Add(1)

	s.mu.Lock()
	defer s.mu.Unlock()
	kind, ok := s.items[item]
	if !ok {
		return
	}
	delete(s.items, item)
	if model.CapabilitiesOf(kind).Has(model.CapHealing) {
		s.player.hp = s.cfg.PlayerHP
	}
}

func (s *Server) Opened(chest model.ID) {
	s.intents.Add(1)

	s.mu.Lock()
	pos, ok := s.chests[chest]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.chests, chest)
	id := s.allocID()
	s.items[id] = model.KindBurger
	s.mu.Unlock()

	s.send(sim.Despawn{ID: chest}, sim.SpawnItem{ID: id, Kind: model.KindBurger, X: pos.X, Y: pos.Y})
}

func (s *Server) Talked(npc model.ID) {
	s.intents.Add(1)
	slog.Debug("session: player talked", "npc", npc)
}

// LastCheckpoint returns the last checkpoint the player reported, or -1.
func (s *Server) LastCheckpoint() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.player.checkpoint
}
