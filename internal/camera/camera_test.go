package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udisondev/tileworld/internal/model"
)

func TestNew_ViewportByDevice(t *testing.T) {
	tests := []struct {
		device Device
		w, h   int
	}{
		{DeviceDesktop, 30, 14},
		{DeviceTablet, 30, 14},
		{DeviceMobile, 15, 7},
	}

	for _, tt := range tests {
		t.Run(tt.device.String(), func(t *testing.T) {
			c := New(tt.device, 16)
			assert.Equal(t, tt.w, c.GridW())
			assert.Equal(t, tt.h, c.GridH())
		})
	}
}

func TestCamera_SetPosition(t *testing.T) {
	tests := []struct {
		name         string
		x, y         int
		gridX, gridY int
	}{
		{name: "aligned", x: 32, y: 48, gridX: 2, gridY: 3},
		{name: "mid cell", x: 40, y: 17, gridX: 2, gridY: 1},
		{name: "negative", x: -1, y: -17, gridX: -1, gridY: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(DeviceDesktop, 16)
			c.SetPosition(tt.x, tt.y)
			assert.Equal(t, tt.gridX, c.GridX())
			assert.Equal(t, tt.gridY, c.GridY())
		})
	}
}

func TestCamera_FocusEntity(t *testing.T) {
	c := New(DeviceMobile, 16)
	e := model.NewEntity(1, model.KindWarrior)

	e.SetGridPosition(20, 3)
	c.FocusEntity(e)
	assert.Equal(t, 13, c.GridX())
	assert.Equal(t, 0, c.GridY())
	assert.True(t, c.IsVisible(e))
	assert.False(t, c.IsZoningTile(e.GridX, e.GridY))
}

func TestCamera_LookAt(t *testing.T) {
	c := New(DeviceMobile, 16)
	e := model.NewEntity(1, model.KindWarrior)
	e.SetGridPosition(20, 10)

	c.LookAt(e)
	assert.Equal(t, 13, c.GridX())
	assert.Equal(t, 7, c.GridY())
}

func TestCamera_IsVisiblePosition(t *testing.T) {
	c := New(DeviceMobile, 16)
	c.SetGridPosition(10, 10)

	assert.True(t, c.IsVisiblePosition(10, 10))
	assert.True(t, c.IsVisiblePosition(24, 16))
	assert.False(t, c.IsVisiblePosition(25, 16), "right edge is exclusive")
	assert.False(t, c.IsVisiblePosition(10, 17), "bottom edge is exclusive")
	assert.False(t, c.IsVisiblePosition(9, 10))
}

func TestCamera_ForEachVisiblePosition(t *testing.T) {
	c := New(DeviceMobile, 16)
	c.SetGridPosition(0, 0)

	var count int
	var first, last model.Point
	c.ForEachVisiblePosition(func(x, y int) {
		if count == 0 {
			first = model.Pt(x, y)
		}
		last = model.Pt(x, y)
		count++
	}, 1)

	assert.Equal(t, 17*9, count)
	assert.Equal(t, model.Pt(-1, -1), first)
	assert.Equal(t, model.Pt(15, 7), last)
}

func TestCamera_ZoningOrientation(t *testing.T) {
	c := New(DeviceMobile, 16)
	c.SetGridPosition(0, 0)

	tests := []struct {
		name string
		x, y int
		want model.Orientation
	}{
		{name: "left edge", x: 0, y: 3, want: model.OrientationLeft},
		{name: "top edge", x: 5, y: 0, want: model.OrientationUp},
		{name: "right edge", x: 14, y: 3, want: model.OrientationRight},
		{name: "bottom edge", x: 5, y: 6, want: model.OrientationDown},
		{name: "corner prefers left", x: 0, y: 0, want: model.OrientationLeft},
		{name: "interior", x: 5, y: 3, want: model.OrientationNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ZoningOrientation(tt.x, tt.y))
			assert.Equal(t, tt.want != model.OrientationNone, c.IsZoningTile(tt.x, tt.y))
		})
	}
}
