package geo

import (
	"testing"

	"github.com/udisondev/tileworld/internal/model"
)

// benchMap is a 90x40 map with a wall down the middle and a gap near the
// bottom, so searches have to detour.
func benchMap() *Map {
	m := NewMap(90, 40, model.DefaultCellSize)
	for y := range 36 {
		m.SetColliding(45, y, true)
	}
	return m
}

func BenchmarkFindPath_FourWay(b *testing.B) {
	m := benchMap()
	pf := NewPathfinder(m, FourWay, 0)
	grid := m.CollisionGrid()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_ = pf.FindPath(grid, model.Pt(5, 5), model.Pt(85, 5))
	}
}

func BenchmarkFindPath_EightWay(b *testing.B) {
	m := benchMap()
	pf := NewPathfinder(m, EightWay, 0)
	grid := m.CollisionGrid()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_ = pf.FindPath(grid, model.Pt(5, 5), model.Pt(85, 5))
	}
}

func BenchmarkFindPath_Unreachable(b *testing.B) {
	m := NewMap(90, 40, model.DefaultCellSize)
	for y := range 40 {
		m.SetColliding(45, y, true)
	}
	pf := NewPathfinder(m, FourWay, 0)
	grid := m.CollisionGrid()

	b.ResetTimer()
	b.ReportAllocs()

	for range b.N {
		_ = pf.FindPath(grid, model.Pt(5, 5), model.Pt(85, 5))
	}
}
