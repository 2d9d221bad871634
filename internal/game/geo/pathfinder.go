package geo

import (
	"container/heap"
	"fmt"

	"github.com/udisondev/tileworld/internal/model"
)

// DefaultMaxPathIterations bounds node expansions per search.
const DefaultMaxPathIterations = 10000

// Grid is a pathing layer indexed [y][x]; true means blocked.
type Grid [][]bool

// NewGrid creates an open grid.
func NewGrid(width, height int) Grid {
	return newBoolGrid(width, height)
}

// Blocked reports whether (x, y) is blocked. Out-of-bounds cells are blocked.
func (g Grid) Blocked(x, y int) bool {
	if !g.Contains(x, y) {
		return true
	}
	return g[y][x]
}

// Contains reports whether (x, y) is inside the grid.
func (g Grid) Contains(x, y int) bool {
	return y >= 0 && y < len(g) && x >= 0 && x < len(g[y])
}

// MovementModel selects the neighbourhood used by the search.
type MovementModel uint8

const (
	// FourWay moves along rows and columns only.
	FourWay MovementModel = iota
	// EightWay adds diagonal steps that do not cut corners.
	EightWay
)

func (m MovementModel) String() string {
	if m == EightWay {
		return "eight_way"
	}
	return "four_way"
}

// ParseMovementModel reads a movement model name.
func ParseMovementModel(s string) (MovementModel, error) {
	switch s {
	case "", "four_way":
		return FourWay, nil
	case "eight_way":
		return EightWay, nil
	}
	return FourWay, fmt.Errorf("unknown movement model %q", s)
}

// Occupant is anything that holds a pathing cell the search may ignore.
type Occupant interface {
	OccupiedCell() model.Point
}

// Pathfinder runs A* over a pathing grid the size of its map.
type Pathfinder struct {
	m *Map

	movement      MovementModel
	maxIterations int

	// FindIncomplete makes failed searches fall back to the reachable
	// waypoint closest to the destination.
	FindIncomplete bool

	ignored []Occupant
}

// NewPathfinder creates a pathfinder for the map.
func NewPathfinder(m *Map, movement MovementModel, maxIterations int) *Pathfinder {
	if maxIterations <= 0 {
		maxIterations = DefaultMaxPathIterations
	}
	return &Pathfinder{
		m:             m,
		movement:      movement,
		maxIterations: maxIterations,
	}
}

// Movement returns the configured movement model.
func (p *Pathfinder) Movement() MovementModel {
	return p.movement
}

// IgnoreEntity clears o's occupied cell for the next search.
func (p *Pathfinder) IgnoreEntity(o Occupant) {
	if o != nil {
		p.ignored = append(p.ignored, o)
	}
}

// ClearIgnoreList drops pending ignores without searching.
func (p *Pathfinder) ClearIgnoreList() {
	p.ignored = p.ignored[:0]
}

type ignoredCell struct {
	x, y int
	prev bool
}

// FindPath returns the cells from (excluded) to (included), or nil when no path
// exists. The ignore list is applied to grid for the duration of the search,
// then grid is restored and the list cleared.
func (p *Pathfinder) FindPath(grid Grid, from, to model.Point) []model.Point {
	defer p.ClearIgnoreList()

	if p.m.IsOutOfBounds(to.X, to.Y) || p.m.IsOutOfBounds(from.X, from.Y) {
		return nil
	}
	if p.m.IsColliding(to.X, to.Y) {
		return nil
	}
	if from == to {
		return nil
	}

	restore := p.applyIgnoreList(grid)
	defer restore()

	path := p.astar(grid, from, to)
	if path == nil && p.FindIncomplete {
		path = p.findIncompletePath(grid, from, to)
	}
	return path
}

func (p *Pathfinder) applyIgnoreList(grid Grid) func() {
	saved := make([]ignoredCell, 0, len(p.ignored))
	for _, o := range p.ignored {
		c := o.OccupiedCell()
		if !grid.Contains(c.X, c.Y) {
			continue
		}
		saved = append(saved, ignoredCell{x: c.X, y: c.Y, prev: grid[c.Y][c.X]})
		grid[c.Y][c.X] = false
	}

	return func() {
		// Reverse order so a cell ignored twice gets its original value back.
		for i := len(saved) - 1; i >= 0; i-- {
			s := saved[i]
			grid[s.y][s.x] = s.prev
		}
	}
}

// findIncompletePath walks the ideal path, computed on static collisions only,
// backward from the destination and paths to the first waypoint that is free
// on the real grid.
func (p *Pathfinder) findIncompletePath(grid Grid, from, to model.Point) []model.Point {
	// perfect excludes from, so every index is a candidate.
	perfect := p.astar(p.m.CollisionGrid(), from, to)
	for i := len(perfect) - 1; i >= 0; i-- {
		w := perfect[i]
		if !grid.Blocked(w.X, w.Y) {
			return p.astar(grid, from, w)
		}
	}
	return nil
}

type pathNode struct {
	x, y   int
	parent *pathNode
	gCost  int
	hCost  int
	fCost  int
	seq    int
	index  int
}

var (
	cardinalSteps = [4][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	diagonalSteps = [4]struct {
		dx, dy     int
		adj1, adj2 int
	}{
		{1, -1, 0, 1},
		{1, 1, 1, 2},
		{-1, 1, 2, 3},
		{-1, -1, 3, 0},
	}
)

func (p *Pathfinder) heuristic(x, y, tx, ty int) int {
	dx := abs(x - tx)
	dy := abs(y - ty)
	if p.movement == EightWay {
		return max(dx, dy)
	}
	return dx + dy
}

// astar searches grid for a path; the start cell itself is never tested.
func (p *Pathfinder) astar(grid Grid, from, to model.Point) []model.Point {
	width := p.m.Width()
	height := p.m.Height()

	best := make([]int, width*height)
	for i := range best {
		best[i] = -1
	}
	closed := make([]bool, width*height)

	seq := 0
	start := &pathNode{x: from.X, y: from.Y}
	start.hCost = p.heuristic(from.X, from.Y, to.X, to.Y)
	start.fCost = start.hCost
	best[from.Y*width+from.X] = 0

	openList := &nodeHeap{}
	heap.Init(openList)
	heap.Push(openList, start)

	push := func(current *pathNode, nx, ny int) {
		key := ny*width + nx
		if closed[key] {
			return
		}
		g := current.gCost + 1
		if best[key] >= 0 && best[key] <= g {
			return
		}
		best[key] = g
		seq++
		h := p.heuristic(nx, ny, to.X, to.Y)
		heap.Push(openList, &pathNode{
			x: nx, y: ny,
			parent: current,
			gCost:  g,
			hCost:  h,
			fCost:  g + h,
			seq:    seq,
		})
	}

	for range p.maxIterations {
		if openList.Len() == 0 {
			return nil
		}

		current := heap.Pop(openList).(*pathNode)
		if current.x == to.X && current.y == to.Y {
			return buildPath(current)
		}

		key := current.y*width + current.x
		if closed[key] {
			continue
		}
		closed[key] = true

		var open [4]bool
		for i, s := range cardinalSteps {
			nx, ny := current.x+s[0], current.y+s[1]
			if grid.Blocked(nx, ny) {
				continue
			}
			open[i] = true
			push(current, nx, ny)
		}

		if p.movement != EightWay {
			continue
		}
		for _, d := range diagonalSteps {
			if !open[d.adj1] || !open[d.adj2] {
				continue
			}
			nx, ny := current.x+d.dx, current.y+d.dy
			if grid.Blocked(nx, ny) {
				continue
			}
			push(current, nx, ny)
		}
	}

	return nil
}

// buildPath unwinds parents, dropping the start node.
func buildPath(end *pathNode) []model.Point {
	n := 0
	for node := end; node.parent != nil; node = node.parent {
		n++
	}
	path := make([]model.Point, n)
	for node := end; node.parent != nil; node = node.parent {
		n--
		path[n] = model.Point{X: node.x, Y: node.y}
	}
	return path
}

// nodeHeap is a min-heap on fCost; ties prefer the node closer to the target,
// then the earlier one.
type nodeHeap []*pathNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	if h[i].fCost != h[j].fCost {
		return h[i].fCost < h[j].fCost
	}
	if h[i].hCost != h[j].hCost {
		return h[i].hCost < h[j].hCost
	}
	return h[i].seq < h[j].seq
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *nodeHeap) Push(x any)   { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*h = old[:n-1]
	return node
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
