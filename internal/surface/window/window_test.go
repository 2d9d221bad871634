package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
	"github.com/udisondev/tileworld/internal/testutil"
)

func TestPresentKeepsScene(t *testing.T) {
	s := NewSurface(testutil.NewOpenMap(40, 20))
	v := surface.View{GridW: 30, GridH: 14, CellSize: 16, Scale: 2}

	require.NoError(t, s.Present(&surface.Frame{View: v, Full: true, Entities: []surface.Sprite{
		{ID: 1, GridX: 2, GridY: 2, Rect: model.RectXYWH(64, 64, 32, 32)},
		{ID: 2, GridX: 8, GridY: 2, Rect: model.RectXYWH(256, 64, 32, 32)},
	}}))
	assert.Len(t, s.sprites, 2)

	// Entity 1 moved a cell right; its old rect is cleared.
	require.NoError(t, s.Present(&surface.Frame{
		View:     v,
		Clear:    []model.Rect{model.RectXYWH(64, 64, 32, 32)},
		Entities: []surface.Sprite{{ID: 1, GridX: 3, GridY: 2, Rect: model.RectXYWH(96, 64, 32, 32)}},
	}))
	require.Len(t, s.sprites, 2)
	assert.Equal(t, 3, s.sprites[1].GridX)

	// Entity 2 left the view.
	require.NoError(t, s.Present(&surface.Frame{
		View:  v,
		Clear: []model.Rect{model.RectXYWH(256, 64, 32, 32)},
	}))
	assert.Len(t, s.sprites, 1)

	require.NoError(t, s.Present(&surface.Frame{View: v, Full: true}))
	assert.Empty(t, s.sprites)
}

func TestClearScreenDropsScene(t *testing.T) {
	s := NewSurface(testutil.NewOpenMap(10, 10))
	require.NoError(t, s.Present(&surface.Frame{
		Full:     true,
		Entities: []surface.Sprite{{ID: 1}},
		Cursor:   &surface.Cursor{X: 1, Y: 1},
	}))

	s.ClearScreen()

	assert.Empty(t, s.sprites)
	assert.Nil(t, s.cursor)
	assert.Equal(t, 1, s.clears)
}

func TestCellAt(t *testing.T) {
	s := NewSurface(testutil.NewOpenMap(80, 40))
	s.RenderStatic(surface.View{GridX: 28, GridY: 12, GridW: 30, GridH: 14, CellSize: 16, Scale: 2})

	tests := []struct {
		name   string
		px, py int
		x, y   int
		ok     bool
	}{
		{"origin", 0, 0, 28, 12, true},
		{"inside a cell", 40, 70, 29, 14, true},
		{"last cell", 30*32 - 1, 14*32 - 1, 57, 25, true},
		{"past the view", 30 * 32, 0, 0, 0, false},
		{"negative", -1, 5, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y, ok := s.cellAt(tt.px, tt.py)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.x, x)
				assert.Equal(t, tt.y, y)
			}
		})
	}

	w, h := s.Size()
	assert.Equal(t, 960, w)
	assert.Equal(t, 448, h)
}
