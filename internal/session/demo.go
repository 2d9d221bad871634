package session

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"time"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/sim"
)

// Demo map tile ids.
const (
	tileGrass = 1
	tileWall  = 2
	tileWater = 3
)

// DemoMap builds a small walled world with a pond, a dividing wall with a
// gap, a pair of doors and two checkpoints.
func DemoMap() *geo.Map {
	const w, h = 90, 40
	m := geo.NewMap(w, h, model.DefaultCellSize)

	for y := range h {
		for x := range w {
			m.SetTiles(x, y, tileGrass)
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				m.SetTiles(x, y, tileGrass, tileWall)
				m.SetColliding(x, y, true)
			}
		}
	}

	// Dividing wall with a gap.
	for y := 1; y < h-1; y++ {
		if y >= 18 && y <= 21 {
			continue
		}
		m.SetTiles(45, y, tileGrass, tileWall)
		m.SetColliding(45, y, true)
	}

	m.SetTileAnimation(tileWater, geo.TileAnimation{Length: 4, Delay: 250 * time.Millisecond})
	for y := 9; y <= 12; y++ {
		for x := 12; x <= 17; x++ {
			m.SetTiles(x, y, tileWater)
			m.SetColliding(x, y, true)
		}
	}

	m.AddDoor(20, 30, geo.Door{X: 80, Y: 31, Orientation: model.OrientationDown})
	m.AddDoor(82, 30, geo.Door{X: 22, Y: 31, Orientation: model.OrientationDown, Portal: true})

	m.AddCheckpoint(geo.Checkpoint{ID: 1, Area: image.Rect(2, 2, 12, 8)})
	m.AddCheckpoint(geo.Checkpoint{ID: 2, Area: image.Rect(76, 26, 88, 36)})
	return m
}

// DemoWelcome is the player of the demo world.
func DemoWelcome() sim.Welcome {
	return sim.Welcome{ID: 1, Name: "hero", X: 6, Y: 5}
}

// DemoSpawns populates the demo world.
func DemoSpawns() []Spawn {
	return []Spawn{
		{Kind: model.KindGuard, X: 8, Y: 3},
		{Kind: model.KindRat, X: 20, Y: 5, Radius: 3},
		{Kind: model.KindRat, X: 22, Y: 14, Radius: 3},
		{Kind: model.KindCrab, X: 11, Y: 14, Radius: 2},
		{Kind: model.KindGoblin, X: 32, Y: 18, Radius: 4},
		{Kind: model.KindSkeleton, X: 55, Y: 10, Radius: 4},
		{Kind: model.KindOgre, X: 65, Y: 25, Radius: 3},
		{Kind: model.KindVillager, X: 78, Y: 33},
		{Kind: model.KindChest, X: 28, Y: 6},
		{Kind: model.KindChest, X: 84, Y: 34},
		{Kind: model.KindFlask, X: 40, Y: 30},
	}
}

// LoadMap loads the map at path. A missing file or an empty path yields the
// demo map, reported by the second result.
func LoadMap(path string) (*geo.Map, bool, error) {
	if path == "" {
		return DemoMap(), true, nil
	}
	m, err := geo.LoadMap(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("map file not found, using demo map", "path", path)
		return DemoMap(), true, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading map: %w", err)
	}
	return m, false, nil
}
