package geo

import (
	"container/heap"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/tileworld/internal/model"
)

// mapFromRows builds a map where '#' marks static collision.
func mapFromRows(t *testing.T, rows ...string) *Map {
	t.Helper()
	require.NotEmpty(t, rows)

	m := NewMap(len(rows[0]), len(rows), model.DefaultCellSize)
	for y, row := range rows {
		require.Len(t, row, m.Width(), "row %d", y)
		for x, c := range row {
			m.SetColliding(x, y, c == '#')
		}
	}
	return m
}

type cell model.Point

func (c cell) OccupiedCell() model.Point { return model.Point(c) }

func assertContiguous(t *testing.T, from model.Point, path []model.Point, diagonal bool) {
	t.Helper()
	prev := from
	for _, p := range path {
		dx, dy := abs(p.X-prev.X), abs(p.Y-prev.Y)
		if diagonal {
			assert.LessOrEqual(t, max(dx, dy), 1, "step %v -> %v", prev, p)
		} else {
			assert.Equal(t, 1, dx+dy, "step %v -> %v", prev, p)
		}
		prev = p
	}
}

func TestFindPath_OpenGrid(t *testing.T) {
	m := NewMap(20, 20, 16)

	tests := []struct {
		name     string
		movement MovementModel
		from, to model.Point
		wantLen  int
	}{
		{name: "four way straight", movement: FourWay, from: model.Pt(1, 1), to: model.Pt(7, 1), wantLen: 6},
		{name: "four way manhattan", movement: FourWay, from: model.Pt(2, 3), to: model.Pt(9, 12), wantLen: 16},
		{name: "eight way chebyshev", movement: EightWay, from: model.Pt(2, 3), to: model.Pt(9, 12), wantLen: 9},
		{name: "eight way diagonal", movement: EightWay, from: model.Pt(0, 0), to: model.Pt(5, 5), wantLen: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pf := NewPathfinder(m, tt.movement, 0)
			path := pf.FindPath(m.CollisionGrid(), tt.from, tt.to)

			require.Len(t, path, tt.wantLen)
			assert.Equal(t, tt.to, path[len(path)-1])
			assert.NotEqual(t, tt.from, path[0], "path excludes the start cell")
			assertContiguous(t, tt.from, path, tt.movement == EightWay)
		})
	}
}

func TestFindPath_StaticDestinationBlocked(t *testing.T) {
	m := mapFromRows(t,
		".....",
		"..#..",
		".....",
	)
	pf := NewPathfinder(m, FourWay, 0)

	assert.Empty(t, pf.FindPath(m.CollisionGrid(), model.Pt(0, 0), model.Pt(2, 1)))
}

func TestFindPath_SameCell(t *testing.T) {
	m := NewMap(4, 4, 16)
	pf := NewPathfinder(m, FourWay, 0)

	assert.Empty(t, pf.FindPath(m.CollisionGrid(), model.Pt(1, 1), model.Pt(1, 1)))
}

func TestFindPath_OutOfBounds(t *testing.T) {
	m := NewMap(4, 4, 16)
	pf := NewPathfinder(m, FourWay, 0)

	assert.Empty(t, pf.FindPath(m.CollisionGrid(), model.Pt(1, 1), model.Pt(4, 1)))
	assert.Empty(t, pf.FindPath(m.CollisionGrid(), model.Pt(-1, 1), model.Pt(2, 1)))
}

func TestFindPath_DetoursAroundWall(t *testing.T) {
	m := mapFromRows(t,
		"......",
		".####.",
		"......",
	)
	pf := NewPathfinder(m, FourWay, 0)

	path := pf.FindPath(m.CollisionGrid(), model.Pt(1, 0), model.Pt(1, 2))
	require.Len(t, path, 4)
	assertContiguous(t, model.Pt(1, 0), path, false)
	for _, p := range path {
		assert.False(t, m.IsColliding(p.X, p.Y))
	}
}

func TestFindPath_EightWayDoesNotCutCorners(t *testing.T) {
	m := mapFromRows(t,
		"...",
		".#.",
		"...",
	)
	pf := NewPathfinder(m, EightWay, 0)

	path := pf.FindPath(m.CollisionGrid(), model.Pt(0, 1), model.Pt(1, 0))
	require.Len(t, path, 2)
	assert.Equal(t, model.Pt(0, 0), path[0])
}

func TestFindPath_IgnoreList(t *testing.T) {
	m := NewMap(5, 5, 16)
	pf := NewPathfinder(m, FourWay, 0)

	// Mover at (2,2) boxed in by four blocking characters, target below.
	grid := m.CollisionGrid()
	grid[2][2] = true
	grid[1][2] = true
	grid[3][2] = true
	grid[2][1] = true
	grid[2][3] = true

	assert.Empty(t, pf.FindPath(grid, model.Pt(2, 2), model.Pt(2, 3)),
		"target cell is blocked without the ignore list")

	pf.IgnoreEntity(cell{2, 2})
	pf.IgnoreEntity(cell{2, 3})
	path := pf.FindPath(grid, model.Pt(2, 2), model.Pt(2, 3))
	assert.Equal(t, []model.Point{{X: 2, Y: 3}}, path)

	assert.True(t, grid[2][2], "ignored cells are restored")
	assert.True(t, grid[3][2], "ignored cells are restored")

	assert.Empty(t, pf.FindPath(grid, model.Pt(2, 2), model.Pt(2, 3)),
		"ignore list is cleared after a search")
}

func TestFindPath_IgnoreRestoresExactValue(t *testing.T) {
	m := NewMap(3, 3, 16)
	pf := NewPathfinder(m, FourWay, 0)
	grid := m.CollisionGrid()

	pf.IgnoreEntity(cell{1, 1})
	pf.IgnoreEntity(cell{1, 1})
	pf.FindPath(grid, model.Pt(0, 0), model.Pt(2, 2))

	assert.False(t, grid[1][1], "open cell stays open")
}

func TestFindPath_Incomplete(t *testing.T) {
	m := NewMap(8, 3, 16)
	grid := m.CollisionGrid()
	// Destination held by a blocking character.
	grid[1][7] = true

	pf := NewPathfinder(m, FourWay, 0)
	assert.Empty(t, pf.FindPath(grid, model.Pt(0, 1), model.Pt(7, 1)))

	pf.FindIncomplete = true
	path := pf.FindPath(grid, model.Pt(0, 1), model.Pt(7, 1))
	require.NotEmpty(t, path)
	assert.Equal(t, model.Pt(6, 1), path[len(path)-1])
}

func TestFindPath_IncompleteRespectsWalls(t *testing.T) {
	m := mapFromRows(t,
		".....#...",
		".....#...",
		".........",
	)
	grid := m.CollisionGrid()
	grid[1][6] = true

	pf := NewPathfinder(m, FourWay, 0)
	pf.FindIncomplete = true

	path := pf.FindPath(grid, model.Pt(1, 1), model.Pt(6, 1))
	require.NotEmpty(t, path)
	assert.Equal(t, model.Pt(6, 2), path[len(path)-1], "the approach goes round the wall")
	assertContiguous(t, model.Pt(1, 1), path, false)
}

func TestFindPath_MaxIterations(t *testing.T) {
	m := NewMap(50, 50, 16)
	pf := NewPathfinder(m, FourWay, 10)

	assert.Empty(t, pf.FindPath(m.CollisionGrid(), model.Pt(0, 0), model.Pt(49, 49)))
}

func TestNodeHeap(t *testing.T) {
	h := &nodeHeap{}

	n1 := &pathNode{x: 1, fCost: 10, hCost: 3}
	n2 := &pathNode{x: 2, fCost: 5, hCost: 5}
	n3 := &pathNode{x: 3, fCost: 10, hCost: 1}

	*h = append(*h, n1, n2, n3)
	for i := range *h {
		(*h)[i].index = i
	}
	heap.Init(h)

	var order []int
	for h.Len() > 0 {
		order = append(order, heap.Pop(h).(*pathNode).x)
	}
	assert.Equal(t, []int{2, 3, 1}, order)
}

func TestParseMovementModel(t *testing.T) {
	m, err := ParseMovementModel("eight_way")
	require.NoError(t, err)
	assert.Equal(t, EightWay, m)

	_, err = ParseMovementModel("hex")
	assert.Error(t, err)
}

func BenchmarkFindPath(b *testing.B) {
	m := NewMap(100, 100, 16)
	for y := 10; y < 90; y++ {
		m.SetColliding(50, y, true)
	}
	pf := NewPathfinder(m, FourWay, 0)
	grid := m.CollisionGrid()

	b.ResetTimer()
	for b.Loop() {
		pf.FindPath(grid, model.Pt(10, 50), model.Pt(90, 50))
	}
}
