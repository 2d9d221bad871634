package sim

import (
	"image"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/config"
	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
	"github.com/udisondev/tileworld/internal/testutil"
	"github.com/udisondev/tileworld/internal/world"
)

const frame = 20 * time.Millisecond

type fakeSurface struct {
	frames  []*surface.Frame
	clears  int
	statics int
}

func (f *fakeSurface) Present(fr *surface.Frame) error {
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeSurface) ClearScreen() { f.clears++ }

func (f *fakeSurface) RenderStatic(surface.View) { f.statics++ }

type harness struct {
	t    *testing.T
	sim  *Simulation
	out  *RecordingOutbox
	surf *fakeSurface
	now  time.Time
}

func newHarness(t *testing.T, device string, m *geo.Map) *harness {
	t.Helper()

	cfg := config.DefaultSimulation()
	cfg.Device = device
	h := &harness{t: t, out: NewRecordingOutbox(), surf: &fakeSurface{}, now: testutil.Epoch}

	s, err := New(cfg, m, h.surf, h.out)
	require.NoError(t, err)
	h.sim = s
	return h
}

// tick runs one frame at the current time, then advances the clock.
func (h *harness) tick() {
	h.sim.Tick(h.now)
	h.now = h.now.Add(frame)
}

// run ticks every frame up to and including now+d.
func (h *harness) run(d time.Duration) {
	end := h.now.Add(d)
	for !h.now.After(end) {
		h.tick()
	}
}

func (h *harness) apply(events ...Event) {
	h.sim.Enqueue(events...)
	h.tick()
}

func (h *harness) entity(id model.ID) *model.Entity {
	h.t.Helper()
	e, ok := h.sim.World().Get(id)
	require.True(h.t, ok, "entity %d not in world", id)
	return e
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.DefaultSimulation()
	cfg.Scale = 9

	_, err := New(cfg, testutil.NewOpenMap(10, 10), nil, nil)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestPlayerWalkUsesDualPosition(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(40, 20))
	h.apply(Welcome{ID: 1, Name: "hero", X: 2, Y: 2})
	p := h.entity(1)
	w := h.sim.World()

	h.apply(Click{X: 5, Y: 2})

	require.True(t, p.IsMoving())
	assert.Equal(t, model.Pt(2, 2), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, model.Pt(3, 2), model.Pt(p.NextGridX, p.NextGridY))
	assert.Same(t, p, w.EntityAt(2, 2))
	assert.Same(t, p, w.EntityAt(3, 2))
	assert.Equal(t, 2*16+3, p.X, "first frame carries the head start")
	assert.Equal(t, []Intent{{Kind: IntentMoved, X: 5, Y: 2}}, h.out.Intents())

	h.run(120 * time.Millisecond)

	assert.Equal(t, model.Pt(3, 2), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, model.Pt(4, 2), model.Pt(p.NextGridX, p.NextGridY))
	assert.Nil(t, w.EntityAt(2, 2), "the cell left behind is released")
	assert.Same(t, p, w.EntityAt(3, 2))
	assert.Same(t, p, w.EntityAt(4, 2))

	h.run(500 * time.Millisecond)

	assert.False(t, p.IsMoving())
	assert.Equal(t, model.Pt(5, 2), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, 5*16, p.X)
	assert.False(t, p.HasNextCell())
	assert.Same(t, p, w.EntityAt(5, 2))
	assert.Nil(t, w.EntityAt(4, 2))
	assert.Equal(t, model.OrientationRight, p.Character.Orientation)

	_, visible := h.sim.Cursor()
	assert.False(t, visible, "cursor hides on arrival")
}

func TestMobWalkBlocksNextCell(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(SpawnCharacter{ID: 10, Kind: model.KindRat, X: 2, Y: 5})
	grid := h.sim.World().Pathing()
	require.True(t, grid.Blocked(2, 5))

	h.apply(MoveTo{ID: 10, X: 4, Y: 5})

	assert.False(t, grid.Blocked(2, 5), "the cell being left is walkable")
	assert.True(t, grid.Blocked(3, 5), "the cell being entered is reserved")

	h.run(time.Second)

	mob := h.entity(10)
	assert.False(t, mob.IsMoving())
	assert.True(t, grid.Blocked(4, 5))
	assert.False(t, grid.Blocked(3, 5))
	assert.Same(t, mob, h.sim.World().MobAt(4, 5))
}

func TestMoveToIgnoresPlayerAndUnknownIDs(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(Welcome{ID: 1, X: 2, Y: 2})

	h.apply(MoveTo{ID: 1, X: 6, Y: 2}, MoveTo{ID: 77, X: 1, Y: 1})

	assert.False(t, h.entity(1).IsMoving(), "the server does not steer the player")
	assert.Equal(t, uint64(1), h.sim.Stats().EventErrors)
}

func TestEventQueue(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))

	var wg sync.WaitGroup
	for g := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				n := g*25 + i
				h.sim.Enqueue(SpawnItem{ID: model.ID(100 + n), Kind: model.KindFlask, X: n % 20, Y: n / 20})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 100, h.sim.Pending())

	h.tick()

	assert.Equal(t, 0, h.sim.Pending())
	assert.Equal(t, 100, h.sim.World().Len())
	assert.Equal(t, uint64(100), h.sim.Stats().Events)
	assert.Zero(t, h.sim.Stats().EventErrors)
}

func TestEventErrorsAreCounted(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))

	tests := []struct {
		name string
		ev   Event
		err  error
	}{
		{"unknown despawn", Despawn{ID: 999}, world.ErrUnknownEntity},
		{"duplicate chest", SpawnChest{ID: 5, X: 3, Y: 3}, world.ErrDuplicateEntity},
		{"item kind as character", SpawnCharacter{ID: 6, Kind: model.KindFlask}, ErrWrongKind},
		{"mob kind as item", SpawnItem{ID: 7, Kind: model.KindRat}, ErrWrongKind},
		{"drop from unknown mob", SpawnItem{ID: 8, Kind: model.KindFlask, Dropped: true, Mob: 42}, world.ErrUnknownEntity},
		{"click without player", Click{X: 1, Y: 1}, ErrNoPlayer},
	}

	h.apply(SpawnChest{ID: 5, X: 3, Y: 3})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.ev.apply(h.sim, h.now), tt.err)
		})
	}

	before := h.sim.Stats().EventErrors
	h.apply(Populate{Events: []Event{
		SpawnItem{ID: 20, Kind: model.KindBurger, X: 1, Y: 1},
		Despawn{ID: 404},
		SpawnChest{ID: 21, X: 4, Y: 4},
	}})
	assert.Equal(t, before+1, h.sim.Stats().EventErrors)
	assert.True(t, h.sim.World().IsItemAt(1, 1), "the rest of the batch applies")
	assert.NotNil(t, h.sim.World().ChestAt(4, 4))
}

func TestDoorTeleportsPlayer(t *testing.T) {
	m := testutil.NewOpenMap(60, 20)
	m.AddDoor(5, 2, geo.Door{X: 40, Y: 10, Orientation: model.OrientationUp})
	h := newHarness(t, "desktop", m)
	h.apply(Welcome{ID: 1, X: 3, Y: 2})
	p := h.entity(1)

	h.apply(Click{X: 5, Y: 2})
	h.run(500 * time.Millisecond)

	w := h.sim.World()
	assert.Equal(t, model.Pt(40, 10), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, model.OrientationUp, p.Character.Orientation)
	assert.Same(t, p, w.EntityAt(40, 10))
	assert.Nil(t, w.EntityAt(5, 2))
	assert.Nil(t, w.EntityAt(4, 2))
	assert.Equal(t, 1, h.out.Count(IntentTeleported))
	assert.Equal(t, 28, h.sim.Camera().GridX(), "camera pages onto the destination")
}

func TestCheckpointNotifiedOncePerChange(t *testing.T) {
	m := testutil.NewOpenMap(40, 20)
	m.AddCheckpoint(geo.Checkpoint{ID: 7, Area: image.Rect(4, 2, 7, 4)})
	h := newHarness(t, "desktop", m)
	h.apply(Welcome{ID: 1, X: 2, Y: 2})

	h.apply(Click{X: 8, Y: 2})
	h.run(time.Second)

	var got []int
	for _, in := range h.out.Intents() {
		if in.Kind == IntentCheckpoint {
			got = append(got, in.Checkpoint)
		}
	}
	assert.Equal(t, []int{7}, got)
	assert.Equal(t, 7, h.entity(1).Character.LastCheckpoint)
}

func TestZoningScrollsCamera(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(80, 20))
	h.apply(Welcome{ID: 1, X: 27, Y: 5})
	require.Equal(t, 0, h.sim.Camera().GridX())
	staticsBefore := h.surf.statics

	h.apply(Click{X: 29, Y: 5})
	h.run(time.Second)

	assert.Equal(t, 1, h.out.Count(IntentZoned))
	assert.Equal(t, 28, h.sim.Camera().GridX())
	assert.Equal(t, 28*16, h.sim.Camera().X())
	assert.False(t, h.sim.Zoning().Active())
	assert.Equal(t, 0, h.sim.Zoning().Pending())
	assert.Greater(t, h.surf.statics, staticsBefore, "static layers follow the scroll")
}

func TestConstrainedZoningJumps(t *testing.T) {
	h := newHarness(t, "mobile", testutil.NewOpenMap(40, 20))
	h.apply(Welcome{ID: 1, X: 13, Y: 3})
	require.Equal(t, 0, h.sim.Camera().GridX())
	clearsBefore := h.surf.clears

	h.apply(Click{X: 14, Y: 3})
	h.run(300 * time.Millisecond)

	assert.Equal(t, 13, h.sim.Camera().GridX())
	assert.Equal(t, 1, h.out.Count(IntentZoned))
	assert.Equal(t, clearsBefore+1, h.surf.clears)
	assert.False(t, h.sim.Zoning().Active())

	last := h.surf.frames[len(h.surf.frames)-1]
	full := false
	for _, f := range h.surf.frames {
		if f.Full && f.View.GridX == 13 {
			full = true
		}
	}
	assert.True(t, full, "the jump is followed by a full redraw")
	assert.Equal(t, 13, last.View.GridX)
}

func TestMobAttacksPlayer(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindRat, X: 6, Y: 5, Target: 1},
	)
	mob := h.entity(10)
	w := h.sim.World()

	assert.True(t, mob.Character.Attacking)
	assert.True(t, w.IsAttackedBy(1, 10))
	assert.Equal(t, model.OrientationLeft, mob.Character.Orientation)
	require.NotEmpty(t, h.out.Intents())
	assert.Equal(t, Intent{Kind: IntentHurt, ID: 10}, h.out.Intents()[0])

	h.run(time.Second)
	assert.Equal(t, 2, h.out.Count(IntentHurt), "one hit per attack cooldown")
}

func TestPlayerAttacksMob(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 2, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindGoblin, X: 6, Y: 5},
	)
	p := h.entity(1)

	h.apply(Click{X: 6, Y: 5})
	assert.Equal(t, 1, h.out.Count(IntentAttacked))
	assert.Zero(t, h.out.Count(IntentMoved), "walking to attack is not a move")

	h.run(time.Second)

	assert.Equal(t, model.Pt(5, 5), model.Pt(p.GridX, p.GridY), "the player stops next to its target")
	assert.Equal(t, model.OrientationRight, p.Character.Orientation)
	assert.GreaterOrEqual(t, h.out.Count(IntentHit), 1)
	w := h.sim.World()
	assert.Same(t, h.entity(10), w.Target(1))
	assert.False(t, w.IsAttackedBy(10, 1), "the player is not listed as an attacker")
	assert.False(t, w.IsAttackedBy(1, 10), "the mob only waits to attack")
}

func TestPlayerHitsOnTheTickItArrives(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 2, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindGoblin, X: 6, Y: 5},
	)
	p := h.entity(1)

	h.apply(Click{X: 6, Y: 5})
	require.True(t, p.IsMoving())

	for i := 0; p.IsMoving(); i++ {
		require.Less(t, i, 100, "the player never arrived")
		assert.Zero(t, h.out.Count(IntentHit), "no hit while walking")
		h.tick()
	}

	assert.Equal(t, model.Pt(5, 5), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, 1, h.out.Count(IntentHit), "the last step and the first hit share a tick")
}

func TestKillAndDrop(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindRat, X: 6, Y: 5, Target: 1},
	)
	w := h.sim.World()

	h.apply(Kill{ID: 10})

	mob := h.entity(10)
	assert.True(t, mob.Dying)
	assert.False(t, w.IsAttackedBy(1, 10))
	assert.Nil(t, w.EntityAt(6, 5), "a dying mob no longer occupies its cell")
	assert.False(t, w.Pathing().Blocked(6, 5))
	assert.Len(t, w.EntitiesAt(6, 5), 1, "it is still drawn while dying")

	h.run(1300 * time.Millisecond)
	_, ok := w.Get(10)
	assert.False(t, ok)
	assert.Empty(t, w.EntitiesAt(6, 5))

	h.apply(SpawnItem{ID: 20, Kind: model.KindFlask, X: 0, Y: 0, Dropped: true, Mob: 10})
	item := h.entity(20)
	assert.Equal(t, model.Pt(6, 5), model.Pt(item.GridX, item.GridY), "drops land where the mob died")
	assert.False(t, item.Fading, "dropped items do not fade in")
}

func TestLootOnArrival(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnItem{ID: 20, Kind: model.KindBurger, X: 8, Y: 5},
	)

	h.apply(Click{X: 8, Y: 5})
	h.run(time.Second)

	w := h.sim.World()
	_, ok := w.Get(20)
	assert.False(t, ok)
	assert.False(t, w.IsItemAt(8, 5))
	assert.Equal(t, []IntentKind{IntentLootMoved, IntentLooted}, h.out.Kinds())
	assert.False(t, h.entity(1).Character.LootMoving)
}

func TestNpcAndChestIntents(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 12))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnCharacter{ID: 30, Kind: model.KindGuard, X: 6, Y: 5},
		SpawnChest{ID: 40, X: 5, Y: 8},
	)

	h.apply(Click{X: 6, Y: 5})
	assert.Equal(t, []IntentKind{IntentTalked}, h.out.Kinds(), "adjacent npcs talk at once")

	h.out.Reset()
	h.apply(Click{X: 5, Y: 8})
	h.run(time.Second)

	p := h.entity(1)
	assert.Equal(t, model.Pt(5, 7), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, 1, h.out.Count(IntentOpened))

	h.apply(Despawn{ID: 40})
	assert.True(t, h.entity(40).Dying)
	h.run(1300 * time.Millisecond)
	assert.Nil(t, h.sim.World().ChestAt(5, 8))
}

func TestPlayerAggro(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindRat, X: 6, Y: 6},
		SpawnCharacter{ID: 11, Kind: model.KindRat, X: 9, Y: 5},
	)

	h.run(1200 * time.Millisecond)
	assert.Equal(t, []Intent{{Kind: IntentAggroed, ID: 10}}, h.out.Intents())
	assert.True(t, h.entity(10).Character.WaitingToAttack)

	h.run(2 * time.Second)
	assert.Equal(t, 1, h.out.Count(IntentAggroed), "a waiting mob is reported once")
}

func TestPlayerDeath(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(20, 10))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnCharacter{ID: 10, Kind: model.KindRat, X: 6, Y: 5, Target: 1},
	)

	h.apply(Kill{ID: 1})
	assert.False(t, h.entity(10).Character.Attacking, "attackers give up on a dead player")
	assert.Equal(t, "death", h.entity(1).Animation.Name)

	h.run(1300 * time.Millisecond)
	assert.Nil(t, h.sim.Player())
	assert.Equal(t, model.NoID, h.sim.PlayerID())
}

func TestTeleportEvent(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(60, 20))
	h.apply(Welcome{ID: 1, X: 5, Y: 5})
	h.apply(Click{X: 9, Y: 5})

	h.apply(Teleport{ID: 1, X: 40, Y: 10})

	p := h.entity(1)
	w := h.sim.World()
	assert.False(t, p.IsMoving())
	assert.False(t, p.HasNextCell())
	assert.Equal(t, model.Pt(40, 10), model.Pt(p.GridX, p.GridY))
	assert.Equal(t, 40*16, p.X)
	assert.Same(t, p, w.EntityAt(40, 10))
	assert.Nil(t, w.EntityAt(5, 5))
	assert.Nil(t, w.EntityAt(6, 5))
	assert.Equal(t, 28, h.sim.Camera().GridX())
}

func TestDesktopFramesAreFull(t *testing.T) {
	h := newHarness(t, "desktop", testutil.NewOpenMap(40, 20))
	h.apply(
		Welcome{ID: 1, X: 5, Y: 5},
		SpawnChest{ID: 40, X: 7, Y: 5},
		SpawnChest{ID: 41, X: 35, Y: 5},
	)

	require.NotEmpty(t, h.surf.frames)
	f := h.surf.frames[len(h.surf.frames)-1]
	assert.True(t, f.Full)
	assert.Empty(t, f.Clear)

	ids := make([]model.ID, 0, len(f.Entities))
	for _, sp := range f.Entities {
		ids = append(ids, sp.ID)
	}
	assert.Equal(t, []model.ID{1, 40}, ids, "row-major depth order, off-screen entities skipped")
	assert.Equal(t, 1.0, f.Entities[0].Alpha, "the player does not fade in")
	assert.Less(t, f.Entities[1].Alpha, 1.0, "spawned entities fade in on desktop")
}

func TestConstrainedFramesCarryDirtyRegions(t *testing.T) {
	h := newHarness(t, "mobile", testutil.NewOpenMap(40, 20))
	h.apply(Welcome{ID: 1, X: 5, Y: 3})

	require.NotEmpty(t, h.surf.frames)
	assert.True(t, h.surf.frames[0].Full)

	n := len(h.surf.frames)
	h.apply(Click{X: 7, Y: 3})
	h.run(100 * time.Millisecond)

	require.Greater(t, len(h.surf.frames), n)
	f := h.surf.frames[len(h.surf.frames)-1]
	assert.False(t, f.Full)
	assert.NotEmpty(t, f.Clear)
	require.NotEmpty(t, f.Entities)
	assert.Equal(t, model.ID(1), f.Entities[0].ID)
	assert.Equal(t, 1.0, f.Entities[0].Alpha, "no fade in constrained mode")
}

func TestHeadStart(t *testing.T) {
	tests := []struct {
		name      string
		moveSpeed time.Duration
		frame     time.Duration
		want      int
	}{
		{"default speed at 50 fps", 120 * time.Millisecond, 20 * time.Millisecond, 3},
		{"slow walk", 400 * time.Millisecond, 20 * time.Millisecond, 1},
		{"faster than a frame", 5 * time.Millisecond, 20 * time.Millisecond, 16},
		{"no frame rate", 120 * time.Millisecond, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, headStart(16, tt.moveSpeed, tt.frame))
		})
	}
}
