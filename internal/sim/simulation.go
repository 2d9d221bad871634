// Package sim runs the client-side world: inbound events, character state
// machines, combat, zoning and the per-tick frame handed to a surface.
//
// Everything except Enqueue and the counters runs on the tick goroutine.
package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/udisondev/tileworld/internal/camera"
	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/dirty"
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
	"github.com/udisondev/tileworld/internal/transition"
	"github.com/udisondev/tileworld/internal/world"
	"github.com/udisondev/tileworld/internal/zoning"
)

var (
	// ErrWrongKind is returned by events naming a kind they cannot spawn.
	ErrWrongKind = errors.New("wrong kind for event")
	// ErrNoPlayer is returned by player input before the player exists.
	ErrNoPlayer = errors.New("no player")
)

// Simulation owns the world and everything that advances it.
type Simulation struct {
	cfg         config.Simulation
	device      camera.Device
	constrained bool

	m       *geo.Map
	w       *world.World
	pf      *geo.Pathfinder
	cam     *camera.Camera
	zones   *zoning.Queue
	tracker *dirty.Tracker
	surface surface.Surface
	outbox  Outbox

	playerID   model.ID
	aggroTimer *transition.Timer
	tiles      []*model.AnimatedTile

	// deathPositions remembers where mobs died so dropped items land there.
	deathPositions map[model.ID]model.Point
	deferred       []deferredLink

	selected      model.Point
	cursorVisible bool
	lastClick     *model.Point
	zonedFrom     *model.Point

	mu    sync.Mutex
	queue []Event

	now      time.Time
	frameSeq uint64

	ticks         atomic.Uint64
	events        atomic.Uint64
	eventErrors   atomic.Uint64
	frames        atomic.Uint64
	presentErrors atomic.Uint64
}

// deferredLink is an attack link applied once its time comes.
type deferredLink struct {
	at               time.Time
	attacker, target model.ID
}

// Stats is a snapshot of the simulation counters.
type Stats struct {
	Ticks         uint64
	Events        uint64
	EventErrors   uint64
	Frames        uint64
	PresentErrors uint64
}

// New builds a simulation over m. A nil surface or outbox discards output.
func New(cfg config.Simulation, m *geo.Map, surf surface.Surface, out Outbox) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating simulation: %w", err)
	}
	if surf == nil {
		surf = surface.Nop{}
	}
	if out == nil {
		out = NopOutbox{}
	}

	device := cfg.DeviceClass()
	w := world.New(m)
	cam := camera.New(device, cfg.CellSize)

	pf := geo.NewPathfinder(m, cfg.Movement(), cfg.MaxPathIterations)
	pf.FindIncomplete = cfg.IncompletePaths

	s := &Simulation{
		cfg:            cfg,
		device:         device,
		constrained:    device.Constrained(),
		m:              m,
		w:              w,
		pf:             pf,
		cam:            cam,
		surface:        surf,
		outbox:         out,
		deathPositions: make(map[model.ID]model.Point),
	}
	s.tracker = dirty.NewTracker(w, cam, dirty.Config{
		Enabled: s.constrained,
		Mode:    cfg.Propagation(),
		Radius:  cfg.DirtyRadius,
		Scale:   cfg.Scale,
		Metrics: cfg.SpriteMetrics(),
	})
	s.zones = zoning.New(cam, s.constrained, cfg.ZoningDuration, zoneHooks{s})

	slog.Info("simulation created",
		"device", device,
		"map_width", m.Width(),
		"map_height", m.Height(),
		"movement", pf.Movement(),
		"dirty_propagation", s.tracker.Mode())
	return s, nil
}

// World returns the entity table and grid index.
func (s *Simulation) World() *world.World { return s.w }

// Camera returns the camera.
func (s *Simulation) Camera() *camera.Camera { return s.cam }

// Map returns the static map.
func (s *Simulation) Map() *geo.Map { return s.m }

// Zoning returns the zoning queue.
func (s *Simulation) Zoning() *zoning.Queue { return s.zones }

// Tracker returns the dirty-region tracker.
func (s *Simulation) Tracker() *dirty.Tracker { return s.tracker }

// Now returns the time of the last tick.
func (s *Simulation) Now() time.Time { return s.now }

// PlayerID returns the controlled player's ID, or NoID before Welcome.
func (s *Simulation) PlayerID() model.ID { return s.playerID }

// Player returns the controlled player entity.
func (s *Simulation) Player() *model.Entity {
	if s.playerID == model.NoID {
		return nil
	}
	e, ok := s.w.Get(s.playerID)
	if !ok {
		return nil
	}
	return e
}

func (s *Simulation) isPlayer(e *model.Entity) bool {
	return e != nil && s.playerID != model.NoID && e.ID == s.playerID
}

// AnimatedTiles returns the animated tiles around the viewport.
func (s *Simulation) AnimatedTiles() []*model.AnimatedTile { return s.tiles }

// Stats returns the counters. Safe to call from any goroutine.
func (s *Simulation) Stats() Stats {
	return Stats{
		Ticks:         s.ticks.Load(),
		Events:        s.events.Load(),
		EventErrors:   s.eventErrors.Load(),
		Frames:        s.frames.Load(),
		PresentErrors: s.presentErrors.Load(),
	}
}

// View returns the camera state as a surface sees it.
func (s *Simulation) View() surface.View {
	return surface.View{
		X:        s.cam.X(),
		Y:        s.cam.Y(),
		GridX:    s.cam.GridX(),
		GridY:    s.cam.GridY(),
		GridW:    s.cam.GridW(),
		GridH:    s.cam.GridH(),
		CellSize: s.cam.CellSize(),
		Scale:    s.cfg.Scale,
	}
}

// Enqueue hands events to the next tick. Safe to call from any goroutine.
func (s *Simulation) Enqueue(events ...Event) {
	s.mu.Lock()
	s.queue = append(s.queue, events...)
	s.mu.Unlock()
}

// Pending returns the number of events waiting for the next tick.
func (s *Simulation) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Simulation) drainEvents(now time.Time) {
	s.mu.Lock()
	queue := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, ev := range queue {
		s.apply(ev, now)
	}
}

func (s *Simulation) apply(ev Event, now time.Time) {
	s.events.Add(1)
	if err := ev.apply(s, now); err != nil {
		s.eventErrors.Add(1)
		slog.Warn("event rejected", "event", fmt.Sprintf("%T", ev), "error", err)
	}
}

// resetCamera pages the camera onto the player.
func (s *Simulation) resetCamera() {
	if p := s.Player(); p != nil {
		s.cam.FocusEntity(p)
	}
	s.resetZone()
}

// resetZone rebuilds what depends on the camera position.
func (s *Simulation) resetZone() {
	s.initAnimatedTiles()
	s.surface.RenderStatic(s.View())
}

func (s *Simulation) initAnimatedTiles() {
	s.tiles = s.m.AnimatedTiles(func(yield func(x, y int)) {
		s.cam.ForEachVisiblePosition(yield, 1)
	})
	for _, t := range s.tiles {
		t.Dirty = true
	}
	s.tracker.SetTiles(s.tiles)
}

// clearScreen wipes the surface and forces a full redraw.
func (s *Simulation) clearScreen() {
	s.surface.ClearScreen()
	s.tracker.ClearAll()
}

func (s *Simulation) forEachVisibleEntityByDepth(fn func(*model.Entity)) {
	margin := 2
	if s.device == camera.DeviceMobile {
		margin = 0
	}
	s.cam.ForEachVisiblePosition(func(x, y int) {
		for _, e := range s.w.EntitiesAt(x, y) {
			fn(e)
		}
	}, margin)
}

func (s *Simulation) setCursor(x, y int) {
	s.selected = model.Pt(x, y)
	s.cursorVisible = true
	s.tracker.SetTarget(x, y)
}

func (s *Simulation) hideCursor() {
	s.cursorVisible = false
	s.tracker.ClearTarget()
}

// Cursor returns the selected cell and whether it is shown.
func (s *Simulation) Cursor() (model.Point, bool) {
	return s.selected, s.cursorVisible
}

// zoneHooks applies zoning side effects to the simulation.
type zoneHooks struct {
	s *Simulation
}

func (h zoneHooks) ZoneStarted(o model.Orientation) {
	h.s.outbox.Zoned()
	if IsDebugEnabled() {
		slog.Debug("zoning", "orientation", o, "camera_x", h.s.cam.GridX(), "camera_y", h.s.cam.GridY())
	}
}

func (h zoneHooks) ZoneScrolled() {
	h.s.initAnimatedTiles()
	h.s.surface.RenderStatic(h.s.View())
}

func (h zoneHooks) ZoneJumped() {
	h.s.clearScreen()
	h.s.forEachVisibleEntityByDepth(h.s.tracker.MarkEntity)
}

func (h zoneHooks) ZoneReset() {
	h.s.resetZone()
}
