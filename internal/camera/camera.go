// Package camera tracks the visible viewport window over the tile grid.
package camera

import (
	"log/slog"

	"github.com/udisondev/tileworld/internal/model"
)

// Base viewport extent in cells. Desktop and tablet targets double it.
const (
	baseGridW = 15
	baseGridH = 7
)

// Camera is the viewport. Pixel and grid origins are kept consistent:
// grid = floor(pixel / cellSize).
type Camera struct {
	x, y         int
	gridX, gridY int
	gridW, gridH int
	cellSize     int
}

// New creates a camera at the origin sized for the device.
func New(device Device, cellSize int) *Camera {
	c := &Camera{cellSize: cellSize}
	c.Rescale(device)
	return c
}

// Rescale sets the viewport extent for the device class.
func (c *Camera) Rescale(device Device) {
	factor := 2
	if device == DeviceMobile {
		factor = 1
	}
	c.gridW = baseGridW * factor
	c.gridH = baseGridH * factor

	slog.Debug("camera rescaled", "device", device, "grid_w", c.gridW, "grid_h", c.gridH)
}

// X returns the pixel origin X.
func (c *Camera) X() int { return c.x }

// Y returns the pixel origin Y.
func (c *Camera) Y() int { return c.y }

// GridX returns the grid origin X.
func (c *Camera) GridX() int { return c.gridX }

// GridY returns the grid origin Y.
func (c *Camera) GridY() int { return c.gridY }

// GridW returns the viewport width in cells.
func (c *Camera) GridW() int { return c.gridW }

// GridH returns the viewport height in cells.
func (c *Camera) GridH() int { return c.gridH }

// CellSize returns the cell size in pixels.
func (c *Camera) CellSize() int { return c.cellSize }

// SetPosition moves the camera to a pixel origin.
func (c *Camera) SetPosition(x, y int) {
	c.x = x
	c.y = y
	c.gridX = floorDiv(x, c.cellSize)
	c.gridY = floorDiv(y, c.cellSize)
}

// SetGridPosition moves the camera to a grid origin.
func (c *Camera) SetGridPosition(x, y int) {
	c.gridX = x
	c.gridY = y
	c.x = x * c.cellSize
	c.y = y * c.cellSize
}

// LookAt centers the viewport on the entity's pixel position.
func (c *Camera) LookAt(e *model.Entity) {
	x := e.X - (c.gridW/2)*c.cellSize
	y := e.Y - (c.gridH/2)*c.cellSize
	c.SetPosition(x, y)
}

// FocusEntity snaps the viewport to the page containing the entity. Pages
// overlap by one cell on each side so that zoning boundaries stay aligned.
func (c *Camera) FocusEntity(e *model.Entity) {
	w := c.gridW - 2
	h := c.gridH - 2
	x := floorDiv(e.GridX-1, w) * w
	y := floorDiv(e.GridY-1, h) * h
	c.SetGridPosition(x, y)
}

// IsVisible reports whether the entity's cell is inside the viewport.
func (c *Camera) IsVisible(e *model.Entity) bool {
	return c.IsVisiblePosition(e.GridX, e.GridY)
}

// IsVisiblePosition is a half-open range test against the viewport.
func (c *Camera) IsVisiblePosition(x, y int) bool {
	return y >= c.gridY && y < c.gridY+c.gridH &&
		x >= c.gridX && x < c.gridX+c.gridW
}

// ForEachVisiblePosition calls fn for every cell of the viewport extended by
// margin cells on each side, in row-major order.
func (c *Camera) ForEachVisiblePosition(fn func(x, y int), margin int) {
	for y := c.gridY - margin; y < c.gridY+c.gridH+margin; y++ {
		for x := c.gridX - margin; x < c.gridX+c.gridW+margin; x++ {
			fn(x, y)
		}
	}
}

// IsZoningTile reports whether (x, y) lies on the viewport's outer ring.
func (c *Camera) IsZoningTile(x, y int) bool {
	x -= c.gridX
	y -= c.gridY
	return x == 0 || y == 0 || x == c.gridW-1 || y == c.gridH-1
}

// ZoningOrientation returns the direction of the scroll triggered by stepping
// on the boundary cell (x, y), or OrientationNone for interior cells.
func (c *Camera) ZoningOrientation(x, y int) model.Orientation {
	x -= c.gridX
	y -= c.gridY

	switch {
	case x == 0:
		return model.OrientationLeft
	case y == 0:
		return model.OrientationUp
	case x == c.gridW-1:
		return model.OrientationRight
	case y == c.gridH-1:
		return model.OrientationDown
	}
	return model.OrientationNone
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
