package term

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
	"github.com/udisondev/tileworld/internal/testutil"
)

func newSurface(t *testing.T) (*Surface, tcell.SimulationScreen) {
	t.Helper()

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 20)

	m := testutil.MapFromRows(t,
		"##########",
		"#........#",
		"#........#",
		"##########",
	)
	m.AddDoor(8, 2, geo.Door{X: 1, Y: 1})
	return New(screen, m), screen
}

func runeAt(screen tcell.SimulationScreen, x, y int) rune {
	r, _, _, _ := screen.GetContent(x, y)
	return r
}

func view() surface.View {
	return surface.View{GridW: 10, GridH: 4, CellSize: 16, Scale: 2}
}

func TestPresentFullFrame(t *testing.T) {
	s, screen := newSurface(t)

	err := s.Present(&surface.Frame{
		View: view(),
		Full: true,
		Entities: []surface.Sprite{
			{ID: 1, Kind: model.KindWarrior, GridX: 2, GridY: 1},
			{ID: 2, Kind: model.KindRat, GridX: 4, GridY: 1},
			{ID: 3, Kind: model.KindGuard, GridX: 5, GridY: 2},
			{ID: 4, Kind: model.KindFlask, GridX: 6, GridY: 2},
			{ID: 5, Kind: model.KindChest, GridX: 7, GridY: 1},
			{ID: 6, Kind: model.KindSkeleton, GridX: 3, GridY: 2, Dying: true},
		},
	})
	require.NoError(t, err)

	tests := []struct {
		x, y int
		want rune
	}{
		{0, 0, '#'},
		{1, 1, '.'},
		{8, 2, '+'},
		{2, 1, '@'},
		{4, 1, 'r'},
		{5, 2, 'G'},
		{6, 2, '!'},
		{7, 1, '='},
		{3, 2, '%'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(runeAt(screen, tt.x, tt.y)), "cell %d,%d", tt.x, tt.y)
	}
}

func TestPresentPartialFrameRestoresClearedCells(t *testing.T) {
	s, screen := newSurface(t)
	v := view()

	require.NoError(t, s.Present(&surface.Frame{
		View:     v,
		Full:     true,
		Entities: []surface.Sprite{{ID: 1, Kind: model.KindWarrior, GridX: 2, GridY: 1}},
	}))
	require.Equal(t, '@', runeAt(screen, 2, 1))

	require.NoError(t, s.Present(&surface.Frame{
		View:     v,
		Clear:    []model.Rect{model.RectXYWH(2*32, 1*32, 32, 32)},
		Entities: []surface.Sprite{{ID: 1, Kind: model.KindWarrior, GridX: 3, GridY: 1}},
	}))

	assert.Equal(t, '.', runeAt(screen, 2, 1))
	assert.Equal(t, '@', runeAt(screen, 3, 1))
}

func TestViewOffset(t *testing.T) {
	s, screen := newSurface(t)
	v := view()
	v.GridX, v.GridY = 5, 1

	require.NoError(t, s.Present(&surface.Frame{
		View:     v,
		Full:     true,
		Entities: []surface.Sprite{{ID: 1, Kind: model.KindWarrior, GridX: 6, GridY: 2}},
	}))

	assert.Equal(t, '@', runeAt(screen, 1, 1))
	assert.Equal(t, '+', runeAt(screen, 3, 1))
}

func TestInputClicks(t *testing.T) {
	s, _ := newSurface(t)
	v := view()
	v.GridX = 5
	require.NoError(t, s.Present(&surface.Frame{View: v, Full: true}))

	var clicks []model.Point
	click := func(x, y int) { clicks = append(clicks, model.Pt(x, y)) }

	require.NoError(t, s.handle(tcell.NewEventMouse(2, 1, tcell.Button1, tcell.ModNone), click))
	require.NoError(t, s.handle(tcell.NewEventMouse(3, 1, tcell.ButtonNone, tcell.ModNone), click))
	require.NoError(t, s.handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), click))
	require.NoError(t, s.handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), click))

	assert.Equal(t, []model.Point{model.Pt(7, 1), model.Pt(8, 1)}, clicks)
	assert.Equal(t, model.Pt(8, 1), s.Pointer())
}

func TestInputQuit(t *testing.T) {
	s, _ := newSurface(t)
	noop := func(int, int) {}

	assert.ErrorIs(t, s.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), noop), ErrQuit)
	assert.ErrorIs(t, s.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), noop), ErrQuit)
	assert.NoError(t, s.handle(tcell.NewEventKey(tcell.KeyRune, 'w', tcell.ModNone), noop))
}
