package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/world"
)

// Epoch is a fixed simulation start time.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// MapFromRows builds a map from ASCII rows: '#' is static collision, any
// other byte is open ground.
func MapFromRows(t testing.TB, rows ...string) *geo.Map {
	t.Helper()
	require.NotEmpty(t, rows, "map needs at least one row")

	m := geo.NewMap(len(rows[0]), len(rows), model.DefaultCellSize)
	for y, row := range rows {
		require.Len(t, row, m.Width(), "row %d has a different width", y)
		for x := range len(row) {
			m.SetColliding(x, y, row[x] == '#')
		}
	}
	return m
}

// NewOpenMap builds a map with no collision.
func NewOpenMap(width, height int) *geo.Map {
	return geo.NewMap(width, height, model.DefaultCellSize)
}

// NewWorld builds a world over MapFromRows(rows).
func NewWorld(t testing.TB, rows ...string) *world.World {
	t.Helper()
	return world.New(MapFromRows(t, rows...))
}

// NewEntity creates an entity of kind at cell (x, y).
func NewEntity(id model.ID, kind model.Kind, x, y int) *model.Entity {
	e := model.NewEntity(id, kind)
	e.SetGridPosition(x, y)
	return e
}

// AddEntity creates an entity at (x, y) and adds it to w.
func AddEntity(t testing.TB, w *world.World, id model.ID, kind model.Kind, x, y int) *model.Entity {
	t.Helper()

	e := NewEntity(id, kind, x, y)
	require.NoError(t, w.Add(e))
	return e
}
