// Package surface defines what the simulator hands to a drawing backend each
// frame. Backends live in the subpackages.
package surface

import (
	"time"

	"github.com/udisondev/tileworld/internal/model"
)

// Surface draws frames. Calls come from the tick goroutine only.
type Surface interface {
	// Present draws one frame.
	Present(f *Frame) error
	// ClearScreen wipes the whole drawing area. The next frame is a full redraw.
	ClearScreen()
	// RenderStatic redraws the static map layers for a camera position.
	RenderStatic(v View)
}

// View is the camera state a frame was built with.
type View struct {
	X        int `msgpack:"x"`
	Y        int `msgpack:"y"`
	GridX    int `msgpack:"gx"`
	GridY    int `msgpack:"gy"`
	GridW    int `msgpack:"gw"`
	GridH    int `msgpack:"gh"`
	CellSize int `msgpack:"cs"`
	Scale    int `msgpack:"sc"`
}

// Contains reports whether cell (x, y) is inside the view.
func (v View) Contains(x, y int) bool {
	return x >= v.GridX && x < v.GridX+v.GridW && y >= v.GridY && y < v.GridY+v.GridH
}

// Sprite is one entity to draw.
type Sprite struct {
	ID          model.ID          `msgpack:"id"`
	Kind        model.Kind        `msgpack:"k"`
	GridX       int               `msgpack:"gx"`
	GridY       int               `msgpack:"gy"`
	X           int               `msgpack:"x"`
	Y           int               `msgpack:"y"`
	Orientation model.Orientation `msgpack:"o"`
	Animation   string            `msgpack:"a,omitempty"`
	Frame       int               `msgpack:"f"`
	Alpha       float64           `msgpack:"al"`
	Highlighted bool              `msgpack:"h,omitempty"`
	Dying       bool              `msgpack:"d,omitempty"`
	Rect        model.Rect        `msgpack:"r"`
}

// Tile is an animated tile to draw.
type Tile struct {
	X    int        `msgpack:"x"`
	Y    int        `msgpack:"y"`
	ID   int        `msgpack:"id"`
	Rect model.Rect `msgpack:"r"`
}

// Cursor is the selected cell marker.
type Cursor struct {
	X    int        `msgpack:"x"`
	Y    int        `msgpack:"y"`
	Rect model.Rect `msgpack:"r"`
}

// Frame is the draw work of one tick. With Full set the lists hold
// everything visible and Clear is empty; otherwise only dirty regions are
// listed and Clear names the rects to wipe first.
type Frame struct {
	Seq      uint64       `msgpack:"seq"`
	Time     time.Time    `msgpack:"t"`
	View     View         `msgpack:"v"`
	Full     bool         `msgpack:"full"`
	Clear    []model.Rect `msgpack:"clr,omitempty"`
	Entities []Sprite     `msgpack:"ents,omitempty"`
	Tiles    []Tile       `msgpack:"tiles,omitempty"`
	Cursor   *Cursor      `msgpack:"cur,omitempty"`
}

// Empty reports whether the frame has nothing to draw or clear.
func (f *Frame) Empty() bool {
	return !f.Full && len(f.Clear) == 0 && len(f.Entities) == 0 && len(f.Tiles) == 0 && f.Cursor == nil
}

// Nop discards everything. It is the headless surface.
type Nop struct{}

func (Nop) Present(*Frame) error { return nil }
func (Nop) ClearScreen() {}
func (Nop) RenderStatic(View) {}
