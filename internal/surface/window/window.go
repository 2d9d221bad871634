// Package window draws frames in a desktop window with ebiten. The
// simulation ticks from the window's Update, so drawing and ticking share one
// goroutine.
package window

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
)

var (
	colorVoid   = color.RGBA{0x10, 0x10, 0x14, 0xff}
	colorFloor  = color.RGBA{0x3a, 0x5a, 0x2c, 0xff}
	colorWall   = color.RGBA{0x4a, 0x40, 0x38, 0xff}
	colorDoor   = color.RGBA{0x2c, 0x7a, 0x7a, 0xff}
	colorWater  = color.RGBA{0x2a, 0x4a, 0xa0, 0xff}
	colorPlayer = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	colorMob    = color.RGBA{0xc0, 0x30, 0x30, 0xff}
	colorNpc    = color.RGBA{0xe0, 0xc0, 0x30, 0xff}
	colorItem   = color.RGBA{0x40, 0xd0, 0x60, 0xff}
	colorChest  = color.RGBA{0x90, 0x60, 0x20, 0xff}
	colorCursor = color.RGBA{0xff, 0xff, 0xff, 0xc0}
)

// Surface keeps the latest scene for Draw. Partial frames update it in
// place.
type Surface struct {
	m       *geo.Map
	view    surface.View
	sprites map[model.ID]surface.Sprite
	tiles   map[model.Point]surface.Tile
	cursor  *surface.Cursor
	seq     uint64
	clears  int
}

var _ surface.Surface = (*Surface)(nil)

// NewSurface creates an empty scene over m.
func NewSurface(m *geo.Map) *Surface {
	return &Surface{
		m:       m,
		sprites: make(map[model.ID]surface.Sprite),
		tiles:   make(map[model.Point]surface.Tile),
	}
}

// Present folds a frame into the scene.
func (s *Surface) Present(f *surface.Frame) error {
	s.view = f.View
	s.seq = f.Seq

	if f.Full {
		clear(s.sprites)
		clear(s.tiles)
	} else {
		for id, sp := range s.sprites {
			for _, r := range f.Clear {
				if sp.Rect.Overlaps(r) {
					delete(s.sprites, id)
					break
				}
			}
		}
	}

	for _, sp := range f.Entities {
		s.sprites[sp.ID] = sp
	}
	for _, t := range f.Tiles {
		s.tiles[model.Pt(t.X, t.Y)] = t
	}
	s.cursor = f.Cursor
	return nil
}

// ClearScreen drops the whole scene.
func (s *Surface) ClearScreen() {
	clear(s.sprites)
	clear(s.tiles)
	s.cursor = nil
	s.clears++
}

// RenderStatic records the view. The map layer is drawn from the map on
// every Draw.
func (s *Surface) RenderStatic(v surface.View) {
	s.view = v
}

// cellAt converts a window pixel to a map cell.
func (s *Surface) cellAt(px, py int) (int, int, bool) {
	v := s.view
	size := v.CellSize * max(1, v.Scale)
	if size <= 0 || px < 0 || py < 0 {
		return 0, 0, false
	}
	x, y := v.GridX+px/size, v.GridY+py/size
	return x, y, v.Contains(x, y)
}

// Size returns the window size in pixels for the current view.
func (s *Surface) Size() (int, int) {
	size := s.view.CellSize * max(1, s.view.Scale)
	return s.view.GridW * size, s.view.GridH * size
}

func (s *Surface) draw(screen *ebiten.Image) {
	screen.Fill(colorVoid)

	v := s.view
	scale := float32(max(1, v.Scale))
	cell := float32(v.CellSize) * scale

	for y := v.GridY; y < v.GridY+v.GridH; y++ {
		for x := v.GridX; x < v.GridX+v.GridW; x++ {
			c := colorFloor
			switch {
			case s.m.IsOutOfBounds(x, y):
				continue
			case s.m.IsDoor(x, y):
				c = colorDoor
			case s.m.IsColliding(x, y):
				c = colorWall
			}
			vector.DrawFilledRect(screen, float32(x-v.GridX)*cell, float32(y-v.GridY)*cell, cell, cell, c, false)
		}
	}

	for _, t := range s.tiles {
		vector.DrawFilledRect(screen, float32(t.X-v.GridX)*cell, float32(t.Y-v.GridY)*cell, cell, cell, colorWater, false)
	}

	// Row-major so lower sprites overlap upper ones.
	for y := v.GridY - 1; y <= v.GridY+v.GridH; y++ {
		for _, sp := range s.sprites {
			if sp.GridY != y {
				continue
			}
			c := spriteColor(sp)
			inset := cell / 8
			px := float32(sp.X-v.X)*scale + inset
			py := float32(sp.Y-v.Y)*scale + inset
			vector.DrawFilledRect(screen, px, py, cell-2*inset, cell-2*inset, c, true)
		}
	}

	if c := s.cursor; c != nil {
		vector.StrokeRect(screen, float32(c.X-v.GridX)*cell, float32(c.Y-v.GridY)*cell, cell, cell, scale, colorCursor, false)
	}
}

func spriteColor(sp surface.Sprite) color.Color {
	caps := model.CapabilitiesOf(sp.Kind)
	var c color.RGBA
	switch {
	case caps.Has(model.CapPlayer):
		c = colorPlayer
	case caps.Has(model.CapMob):
		c = colorMob
	case caps.Has(model.CapNpc):
		c = colorNpc
	case caps.Has(model.CapChest):
		c = colorChest
	default:
		c = colorItem
	}
	alpha := sp.Alpha
	if sp.Dying {
		alpha /= 2
	}
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(min(1, max(0, alpha)) * 0xff)}
}

// Ticker advances a simulation.
type Ticker interface {
	Tick(now time.Time)
}

// Game runs a simulation inside an ebiten window.
type Game struct {
	sim   Ticker
	surf  *Surface
	click func(x, y int)
	clock func() time.Time
}

var _ ebiten.Game = (*Game)(nil)

// NewGame wires a simulation drawing on surf. click receives map cells.
func NewGame(sim Ticker, surf *Surface, click func(x, y int)) *Game {
	return &Game{sim: sim, surf: surf, click: click, clock: time.Now}
}

// Update handles input, then ticks the simulation once.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		if x, y, ok := g.surf.cellAt(ebiten.CursorPosition()); ok {
			g.click(x, y)
		}
	}
	g.sim.Tick(g.clock())
	return nil
}

// Draw paints the latest scene.
func (g *Game) Draw(screen *ebiten.Image) {
	g.surf.draw(screen)
	v := g.surf.view
	ebitenutil.DebugPrint(screen, fmt.Sprintf("frame %d  camera %d,%d  fps %.0f", g.surf.seq, v.GridX, v.GridY, ebiten.ActualFPS()))
}

// Layout keeps a fixed logical size matching the camera.
func (g *Game) Layout(int, int) (int, int) {
	w, h := g.surf.Size()
	if w == 0 || h == 0 {
		return 640, 480
	}
	return w, h
}

// Run opens the window and blocks until it closes. tps is the tick rate.
func Run(g *Game, title string, tps int) error {
	w, h := g.Layout(0, 0)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle(title)
	ebiten.SetTPS(tps)
	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return nil
}
