package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoSpawnsAreWalkable(t *testing.T) {
	m := DemoMap()
	w := DemoWelcome()
	require.False(t, m.IsColliding(w.X, w.Y))

	for _, sp := range DemoSpawns() {
		assert.False(t, m.IsColliding(sp.X, sp.Y), "%s at %d,%d", sp.Kind, sp.X, sp.Y)
	}
}

func TestDemoMapLayout(t *testing.T) {
	m := DemoMap()

	assert.True(t, m.IsColliding(0, 0))
	assert.True(t, m.IsColliding(45, 5))
	assert.False(t, m.IsColliding(45, 19), "the dividing wall has a gap")

	d, ok := m.DoorDestination(20, 30)
	require.True(t, ok)
	assert.False(t, m.IsColliding(d.X, d.Y))

	cp, ok := m.Checkpoint(6, 5)
	require.True(t, ok)
	assert.Equal(t, 1, cp.ID)

	tiles := m.AnimatedTiles(func(yield func(x, y int)) { yield(12, 9) })
	assert.Len(t, tiles, 1)
}

func TestLoadMapFallsBackToDemo(t *testing.T) {
	m, demo, err := LoadMap(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.True(t, demo)
	assert.Equal(t, 90, m.Width())

	_, demo, err = LoadMap("")
	require.NoError(t, err)
	assert.True(t, demo)
}
