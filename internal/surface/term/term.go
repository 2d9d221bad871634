// Package term draws frames on a terminal, one character cell per map cell,
// and turns mouse and keyboard input into clicks.
package term

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/tileworld/internal/game/geo"
	"github.com/udisondev/tileworld/internal/model"
	"github.com/udisondev/tileworld/internal/surface"
)

// ErrQuit is returned by Input when the user asks to leave.
var ErrQuit = errors.New("quit requested")

var (
	styleFloor   = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleWall    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleDoor    = tcell.StyleDefault.Foreground(tcell.ColorTeal)
	styleWater   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	stylePlayer  = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleMob     = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleNpc     = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleItem    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleChest   = tcell.StyleDefault.Foreground(tcell.ColorOlive)
	styleDying   = tcell.StyleDefault.Foreground(tcell.ColorDarkRed)
	styleCursor  = tcell.StyleDefault.Reverse(true)
	stylePointer = tcell.StyleDefault.Foreground(tcell.ColorFuchsia).Reverse(true)
	styleStatus  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// Surface draws on a tcell screen. Present runs on the tick goroutine and
// Input on its own; the shared view and pointer are guarded by mu.
type Surface struct {
	screen tcell.Screen
	m      *geo.Map

	mu      sync.Mutex
	view    surface.View
	pointer model.Point
	frames  uint64
}

var _ surface.Surface = (*Surface)(nil)

// New wraps an initialized screen.
func New(screen tcell.Screen, m *geo.Map) *Surface {
	screen.EnableMouse()
	screen.HideCursor()
	return &Surface{screen: screen, m: m}
}

// Present draws a frame. Full frames repaint everything; partial frames
// restore the static layer under each cleared rect first.
func (s *Surface) Present(f *surface.Frame) error {
	s.mu.Lock()
	moved := s.view.GridX != f.View.GridX || s.view.GridY != f.View.GridY
	s.view = f.View
	if moved || s.pointer == (model.Point{}) {
		s.pointer = model.Pt(f.View.GridX+f.View.GridW/2, f.View.GridY+f.View.GridH/2)
	}
	pointer := s.pointer
	s.frames++
	frames := s.frames
	s.mu.Unlock()

	v := f.View
	if f.Full {
		s.drawStatic(v)
	} else {
		for _, r := range f.Clear {
			s.restore(v, r)
		}
	}

	for _, t := range f.Tiles {
		s.put(v, t.X, t.Y, '~', styleWater)
	}
	for _, sp := range f.Entities {
		r, st := glyph(sp)
		s.put(v, sp.GridX, sp.GridY, r, st)
	}
	if c := f.Cursor; c != nil {
		s.highlight(v, c.X, c.Y, styleCursor)
	}
	s.highlight(v, pointer.X, pointer.Y, stylePointer)

	s.status(v, fmt.Sprintf(" frame %d  camera %d,%d  pointer %d,%d ", frames, v.GridX, v.GridY, pointer.X, pointer.Y))
	s.screen.Show()
	return nil
}

// ClearScreen blanks the terminal.
func (s *Surface) ClearScreen() {
	s.screen.Clear()
}

// RenderStatic repaints the map layer for a camera position.
func (s *Surface) RenderStatic(v surface.View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
	s.drawStatic(v)
}

func (s *Surface) drawStatic(v surface.View) {
	for y := v.GridY; y < v.GridY+v.GridH; y++ {
		for x := v.GridX; x < v.GridX+v.GridW; x++ {
			s.drawCell(v, x, y)
		}
	}
}

// restore repaints the static layer under a pixel rect.
func (s *Surface) restore(v surface.View, r model.Rect) {
	px := v.CellSize * max(1, v.Scale)
	if px <= 0 {
		return
	}
	x0, y0 := v.GridX+r.Min.X/px, v.GridY+r.Min.Y/px
	x1, y1 := v.GridX+(r.Max.X+px-1)/px, v.GridY+(r.Max.Y+px-1)/px
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if v.Contains(x, y) {
				s.drawCell(v, x, y)
			}
		}
	}
}

func (s *Surface) drawCell(v surface.View, x, y int) {
	switch {
	case s.m.IsOutOfBounds(x, y):
		s.put(v, x, y, ' ', tcell.StyleDefault)
	case s.m.IsDoor(x, y):
		s.put(v, x, y, '+', styleDoor)
	case s.m.IsColliding(x, y):
		s.put(v, x, y, '#', styleWall)
	default:
		s.put(v, x, y, '.', styleFloor)
	}
}

func (s *Surface) put(v surface.View, x, y int, r rune, st tcell.Style) {
	if !v.Contains(x, y) {
		return
	}
	s.screen.SetContent(x-v.GridX, y-v.GridY, r, nil, st)
}

func (s *Surface) highlight(v surface.View, x, y int, st tcell.Style) {
	if !v.Contains(x, y) {
		return
	}
	r, _, _, _ := s.screen.GetContent(x-v.GridX, y-v.GridY)
	s.screen.SetContent(x-v.GridX, y-v.GridY, r, nil, st)
}

func (s *Surface) status(v surface.View, text string) {
	row := v.GridH
	col := 0
	for _, r := range text {
		s.screen.SetContent(col, row, r, nil, styleStatus)
		col++
	}
	w, _ := s.screen.Size()
	for ; col < w; col++ {
		s.screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
	}
}

// glyph picks the character and style of a sprite.
func glyph(sp surface.Sprite) (rune, tcell.Style) {
	caps := model.CapabilitiesOf(sp.Kind)
	if sp.Dying {
		return '%', styleDying
	}
	letter, _ := utf8.DecodeRuneInString(sp.Kind.String())

	switch {
	case caps.Has(model.CapPlayer):
		return '@', stylePlayer
	case caps.Has(model.CapMob):
		return unicode.ToLower(letter), styleMob
	case caps.Has(model.CapNpc):
		return unicode.ToUpper(letter), styleNpc
	case caps.Has(model.CapChest):
		return '=', styleChest
	case caps.IsItem():
		return '!', styleItem
	}
	return '?', tcell.StyleDefault
}

// Input reads terminal events until ctx ends or the user quits. Mouse clicks
// and Enter on the pointer call click with map coordinates; arrow keys move
// the pointer.
func (s *Surface) Input(ctx context.Context, click func(x, y int)) error {
	events := make(chan tcell.Event, 64)
	go func() {
		for {
			ev := s.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if err := s.handle(ev, click); err != nil {
				return err
			}
		}
	}
}

func (s *Surface) handle(ev tcell.Event, click func(x, y int)) error {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return ErrQuit
		case tcell.KeyUp:
			s.movePointer(0, -1)
		case tcell.KeyDown:
			s.movePointer(0, 1)
		case tcell.KeyLeft:
			s.movePointer(-1, 0)
		case tcell.KeyRight:
			s.movePointer(1, 0)
		case tcell.KeyEnter:
			p := s.Pointer()
			click(p.X, p.Y)
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return ErrQuit
			}
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return nil
		}
		col, row := ev.Position()
		s.mu.Lock()
		v := s.view
		s.mu.Unlock()
		x, y := v.GridX+col, v.GridY+row
		if v.Contains(x, y) {
			s.mu.Lock()
			s.pointer = model.Pt(x, y)
			s.mu.Unlock()
			click(x, y)
		}

	case *tcell.EventResize:
		s.screen.Sync()
	}
	return nil
}

func (s *Surface) movePointer(dx, dy int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, y := s.pointer.X+dx, s.pointer.Y+dy
	if s.view.Contains(x, y) {
		s.pointer = model.Pt(x, y)
	}
}

// Pointer returns the keyboard pointer cell.
func (s *Surface) Pointer() model.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pointer
}
