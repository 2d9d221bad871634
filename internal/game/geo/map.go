// Package geo holds the static tile map and grid pathfinding.
package geo

import (
	"errors"
	"image"
	"time"

	"github.com/zyedidia/generic/mapset"

	"github.com/udisondev/tileworld/internal/model"
)

// ErrInvalidMap is returned when map data is inconsistent with its dimensions.
var ErrInvalidMap = errors.New("invalid map")

// DefaultTileAnimationDelay is used for animated tiles without an explicit delay.
const DefaultTileAnimationDelay = 100 * time.Millisecond

// Door teleports a player that stops on it.
type Door struct {
	X, Y        int
	Orientation model.Orientation
	// CameraX, CameraY is the camera grid origin after the jump.
	CameraX, CameraY int
	Portal           bool
}

// Checkpoint is a respawn area.
type Checkpoint struct {
	ID   int
	Area image.Rectangle
}

// Contains reports whether cell (x, y) is inside the checkpoint area.
func (c Checkpoint) Contains(x, y int) bool {
	return image.Pt(x, y).In(c.Area)
}

// TileAnimation describes an animated tile id.
type TileAnimation struct {
	Length int
	Delay  time.Duration
}

// Map is the static world: dimensions, collision, tile layers and triggers.
// Tile ids are 1-based as in the map file; 0 means no tile.
type Map struct {
	width, height int
	tileSize      int

	tiles     [][]int
	collision [][]bool
	plateau   [][]bool

	high        mapset.Set[int]
	animated    map[int]TileAnimation
	doors       map[int]Door
	checkpoints []Checkpoint
}

// NewMap creates an empty open map.
func NewMap(width, height, tileSize int) *Map {
	m := &Map{
		width:    width,
		height:   height,
		tileSize: tileSize,
		high:     mapset.New[int](),
		animated: make(map[int]TileAnimation),
		doors:    make(map[int]Door),
	}
	m.tiles = make([][]int, width*height)
	m.collision = newBoolGrid(width, height)
	m.plateau = newBoolGrid(width, height)
	return m
}

func newBoolGrid(width, height int) [][]bool {
	g := make([][]bool, height)
	for y := range g {
		g[y] = make([]bool, width)
	}
	return g
}

// Width returns the map width in cells.
func (m *Map) Width() int { return m.width }

// Height returns the map height in cells.
func (m *Map) Height() int { return m.height }

// TileSize returns the tileset cell size in pixels.
func (m *Map) TileSize() int { return m.tileSize }

// IsOutOfBounds reports whether (x, y) is outside the map.
func (m *Map) IsOutOfBounds(x, y int) bool {
	return x < 0 || x >= m.width || y < 0 || y >= m.height
}

// IsColliding reports static collision. Out-of-bounds cells do not collide.
func (m *Map) IsColliding(x, y int) bool {
	if m.IsOutOfBounds(x, y) {
		return false
	}
	return m.collision[y][x]
}

// SetColliding changes static collision of a cell.
func (m *Map) SetColliding(x, y int, colliding bool) {
	if m.IsOutOfBounds(x, y) {
		return
	}
	m.collision[y][x] = colliding
}

// IsPlateau reports whether the cell is on raised ground.
func (m *Map) IsPlateau(x, y int) bool {
	if m.IsOutOfBounds(x, y) {
		return false
	}
	return m.plateau[y][x]
}

// CollisionGrid returns a copy of the static collision layer.
func (m *Map) CollisionGrid() Grid {
	g := NewGrid(m.width, m.height)
	for y := range m.collision {
		copy(g[y], m.collision[y])
	}
	return g
}

// TileIndex converts a cell to its 0-based layer index.
func (m *Map) TileIndex(x, y int) int {
	return y*m.width + x
}

// GridPosition converts a 0-based layer index to a cell.
func (m *Map) GridPosition(index int) (x, y int) {
	return index % m.width, index / m.width
}

// TileAt returns the tile ids stacked on a cell, bottom first.
func (m *Map) TileAt(x, y int) []int {
	if m.IsOutOfBounds(x, y) {
		return nil
	}
	return m.tiles[m.TileIndex(x, y)]
}

// SetTiles replaces the tile stack of a cell.
func (m *Map) SetTiles(x, y int, ids ...int) {
	if m.IsOutOfBounds(x, y) {
		return
	}
	m.tiles[m.TileIndex(x, y)] = ids
}

// IsHighTile reports whether the tile is drawn above entities.
func (m *Map) IsHighTile(id int) bool {
	return m.high.Has(id)
}

// IsAnimatedTile reports whether the tile cycles through frames.
func (m *Map) IsAnimatedTile(id int) bool {
	_, ok := m.animated[id]
	return ok
}

// TileAnimation returns the animation parameters of a tile id.
func (m *Map) TileAnimation(id int) (TileAnimation, bool) {
	a, ok := m.animated[id]
	return a, ok
}

// SetTileAnimation marks a tile id as animated.
func (m *Map) SetTileAnimation(id int, a TileAnimation) {
	if a.Delay <= 0 {
		a.Delay = DefaultTileAnimationDelay
	}
	m.animated[id] = a
}

// AddDoor places a door at (x, y).
func (m *Map) AddDoor(x, y int, d Door) {
	if m.IsOutOfBounds(x, y) {
		return
	}
	m.doors[m.TileIndex(x, y)] = d
}

// IsDoor reports whether a door is placed at (x, y).
func (m *Map) IsDoor(x, y int) bool {
	_, ok := m.DoorDestination(x, y)
	return ok
}

// DoorDestination returns the door placed at (x, y).
func (m *Map) DoorDestination(x, y int) (Door, bool) {
	if m.IsOutOfBounds(x, y) {
		return Door{}, false
	}
	d, ok := m.doors[m.TileIndex(x, y)]
	return d, ok
}

// AddCheckpoint registers a checkpoint area.
func (m *Map) AddCheckpoint(c Checkpoint) {
	m.checkpoints = append(m.checkpoints, c)
}

// Checkpoint returns the first checkpoint containing (x, y).
func (m *Map) Checkpoint(x, y int) (Checkpoint, bool) {
	for _, c := range m.checkpoints {
		if c.Contains(x, y) {
			return c, true
		}
	}
	return Checkpoint{}, false
}

// AnimatedTiles builds the animated tile instances found on the given cells.
func (m *Map) AnimatedTiles(cells func(yield func(x, y int))) []*model.AnimatedTile {
	var out []*model.AnimatedTile
	cells(func(x, y int) {
		for _, id := range m.TileAt(x, y) {
			a, ok := m.animated[id]
			if !ok {
				continue
			}
			out = append(out, model.NewAnimatedTile(id, a.Length, a.Delay, m.TileIndex(x, y), x, y))
		}
	})
	return out
}
