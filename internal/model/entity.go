package model

import "time"

// DefaultCellSize is the tile edge in unscaled pixels.
const DefaultCellSize = 16

// Entity is anything positioned on the grid: characters, items, chests.
// It is owned by the World; grid cells refer to it by ID only.
type Entity struct {
	ID   ID
	Kind Kind
	Caps Capabilities
	Name string

	// GridX, GridY is the cell the entity currently occupies.
	GridX, GridY int
	// X, Y is the unscaled pixel position. It equals grid*cellSize except
	// while a movement transition tweens it between cells.
	X, Y int
	// NextGridX, NextGridY is the cell being stepped into, or -1 when idle.
	NextGridX, NextGridY int

	Dirty        bool
	DirtyRect    Rect
	OldDirtyRect Rect

	Visible     bool
	Highlighted bool
	Fading      bool
	FadeStart   time.Time

	Animation *Animation

	Dying  bool
	DiedAt time.Time

	// Dropped marks an item that fell from a mob rather than spawning on the map.
	Dropped bool

	Character Character

	cellSize int
}

// NewEntity creates an entity at cell (0, 0). Movable kinds get a movement
// transition and the default character parameters.
func NewEntity(id ID, kind Kind) *Entity {
	e := &Entity{
		ID:        id,
		Kind:      kind,
		Caps:      CapabilitiesOf(kind),
		NextGridX: -1,
		NextGridY: -1,
		Visible:   true,
		Dirty:     true,
		cellSize:  DefaultCellSize,
	}
	if e.Caps.IsCharacter() {
		e.Character = newCharacter(e.Caps)
	}
	return e
}

// SetCellSize changes the pixel/grid ratio and re-derives the pixel position.
func (e *Entity) SetCellSize(size int) {
	if size <= 0 {
		return
	}
	e.cellSize = size
	e.SetGridPosition(e.GridX, e.GridY)
}

// CellSize returns the pixel/grid ratio.
func (e *Entity) CellSize() int {
	return e.cellSize
}

// SetPosition sets the pixel position only.
func (e *Entity) SetPosition(x, y int) {
	e.X = x
	e.Y = y
}

// SetGridPosition moves the entity to a cell and snaps its pixel position.
func (e *Entity) SetGridPosition(x, y int) {
	e.GridX = x
	e.GridY = y
	e.SetPosition(x*e.cellSize, y*e.cellSize)
}

// HasNextCell reports whether the entity is registered at a next cell.
func (e *Entity) HasNextCell() bool {
	return e.NextGridX >= 0 && e.NextGridY >= 0
}

// ClearNextCell forgets the next cell.
func (e *Entity) ClearNextCell() {
	e.NextGridX = -1
	e.NextGridY = -1
}

// OccupiedCell returns the next cell while moving, else the current cell.
func (e *Entity) OccupiedCell() Point {
	if e.IsMoving() && e.HasNextCell() {
		return Point{X: e.NextGridX, Y: e.NextGridY}
	}
	return Point{X: e.GridX, Y: e.GridY}
}

// IsMoving reports whether the entity is following a path.
func (e *Entity) IsMoving() bool {
	return e.Caps.IsCharacter() && e.Character.Path != nil
}

// FadeIn starts the spawn fade.
func (e *Entity) FadeIn(now time.Time) {
	e.Fading = true
	e.FadeStart = now
}

// SetAnimation switches to a named animation unless it is already playing.
// Attack animations always restart from their first frame.
func (e *Entity) SetAnimation(name string, speed time.Duration, count int) {
	if e.Animation != nil && e.Animation.Name == name {
		return
	}
	e.Animation = NewAnimation(name, DefaultAnimationLength(name), speed, count)
}

// DistanceTo returns the Chebyshev grid distance to other.
func (e *Entity) DistanceTo(other *Entity) int {
	dx := abs(other.GridX - e.GridX)
	dy := abs(other.GridY - e.GridY)
	return max(dx, dy)
}

// IsAdjacent reports whether other is within one cell, diagonals included.
func (e *Entity) IsAdjacent(other *Entity) bool {
	return other != nil && e.DistanceTo(other) <= 1
}

// IsAdjacentNonDiagonal reports whether other is within one cell on a shared row or column.
func (e *Entity) IsAdjacentNonDiagonal(other *Entity) bool {
	return e.IsAdjacent(other) && !(e.GridX != other.GridX && e.GridY != other.GridY)
}

// IsDiagonallyAdjacent reports whether other touches only by a corner.
func (e *Entity) IsDiagonallyAdjacent(other *Entity) bool {
	return e.IsAdjacent(other) && !e.IsAdjacentNonDiagonal(other)
}

// IsNear reports whether other is within distance cells on both axes.
func (e *Entity) IsNear(other *Entity, distance int) bool {
	if other == nil {
		return false
	}
	dx := abs(e.GridX - other.GridX)
	dy := abs(e.GridY - other.GridY)
	return dx <= distance && dy <= distance
}

// IsCloseTo reports whether other is within the rough size of a screen.
func (e *Entity) IsCloseTo(other *Entity) bool {
	if other == nil {
		return false
	}
	dx := abs(other.GridX - e.GridX)
	dy := abs(other.GridY - e.GridY)
	return dx < 30 && dy < 14
}

// OrientationTo returns the facing from e toward other.
func (e *Entity) OrientationTo(other *Entity) Orientation {
	switch {
	case e.GridX < other.GridX:
		return OrientationRight
	case e.GridX > other.GridX:
		return OrientationLeft
	case e.GridY > other.GridY:
		return OrientationUp
	}
	return OrientationDown
}

// AdjacentNonDiagonalPositions returns the four neighbouring cells with the
// orientation each lies in, in left, up, right, down order.
func (e *Entity) AdjacentNonDiagonalPositions() [4]struct {
	Point
	Orientation Orientation
} {
	var out [4]struct {
		Point
		Orientation Orientation
	}
	for i, o := range Orientations {
		dx, dy := o.Delta()
		out[i].Point = Point{X: e.GridX + dx, Y: e.GridY + dy}
		out[i].Orientation = o
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
