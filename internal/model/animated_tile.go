package model

import "time"

// AnimatedTile is a map tile whose tileset id cycles over Length frames.
type AnimatedTile struct {
	StartID int
	ID      int
	Length  int
	Speed   time.Duration
	// Index is the 0-based cell index in the map's tile layer.
	Index int
	X, Y  int

	Dirty     bool
	DirtyRect Rect

	lastTime time.Time
}

// NewAnimatedTile creates a tile at cell (x, y).
func NewAnimatedTile(id, length int, speed time.Duration, index, x, y int) *AnimatedTile {
	return &AnimatedTile{
		StartID: id,
		ID:      id,
		Length:  length,
		Speed:   speed,
		Index:   index,
		X:       x,
		Y:       y,
	}
}

func (t *AnimatedTile) tick() {
	if t.ID-t.StartID < t.Length-1 {
		t.ID++
	} else {
		t.ID = t.StartID
	}
}

// Animate advances the tile when its delay has elapsed and reports whether it changed.
func (t *AnimatedTile) Animate(now time.Time) bool {
	if now.Sub(t.lastTime) > t.Speed {
		t.tick()
		t.lastTime = now
		return true
	}
	return false
}
