package gridgen

import (
	"math/rand"
	"time"

	"github.com/lixenwraith/sightline/los"
)

type MazeConfig struct {
	Width, Height int

	// Braiding: 0.0 (perfect maze) to 1.0 (no dead ends).
	// Opens a wall next to a dead end with this probability, never creating a 2x2 room.
	Braiding float64

	Seed int64 // 0 = time based
}

// Maze carves a recursive-backtracker maze. Rooms sit on odd coordinates, so even sizes
// are rounded down to the nearest odd size of at least 3.
func Maze(cfg MazeConfig) *los.Grid {
	cols, rows := ensureOdd(cfg.Width), ensureOdd(cfg.Height)
	g, _ := los.NewEmptyGrid(los.Dims{Width: cols, Height: rows})
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			_ = g.Set(x, y, true)
		}
	}

	rng := newRand(cfg.Seed)
	carve(g, los.Point{X: 1, Y: 1}, rng)
	if cfg.Braiding > 0 {
		braid(g, cfg.Braiding, rng)
	}
	return g
}

var jumps = []los.Point{{X: 0, Y: -2}, {X: 0, Y: 2}, {X: -2, Y: 0}, {X: 2, Y: 0}}

func carve(g *los.Grid, start los.Point, rng *rand.Rand) {
	d := g.Dims()
	stack := []los.Point{start}
	_ = g.Set(start.X, start.Y, false)

	for len(stack) > 0 {
		curr := stack[len(stack)-1]
		candidates := make([]los.Point, 0, 4)
		for _, j := range jumps {
			nx, ny := curr.X+j.X, curr.Y+j.Y
			// keep a one cell border of walls
			if nx > 0 && nx < d.Width-1 && ny > 0 && ny < d.Height-1 && g.Opaque(nx, ny) {
				candidates = append(candidates, j)
			}
		}

		if len(candidates) == 0 {
			stack = stack[:len(stack)-1]
			continue
		}
		j := candidates[rng.Intn(len(candidates))]
		_ = g.Set(curr.X+j.X/2, curr.Y+j.Y/2, false)
		next := los.Point{X: curr.X + j.X, Y: curr.Y + j.Y}
		_ = g.Set(next.X, next.Y, false)
		stack = append(stack, next)
	}
}

func braid(g *los.Grid, probability float64, rng *rand.Rand) {
	d := g.Dims()
	for y := 1; y < d.Height-1; y += 2 {
		for x := 1; x < d.Width-1; x += 2 {
			if g.Opaque(x, y) || exits(g, x, y) != 1 || rng.Float64() >= probability {
				continue
			}

			candidates := make([]los.Point, 0, 4)
			for _, j := range jumps {
				nx, ny := x+j.X, y+j.Y
				wx, wy := x+j.X/2, y+j.Y/2
				if !d.Contains(nx, ny) || g.Opaque(nx, ny) || !g.Opaque(wx, wy) {
					continue
				}
				if opensRoom(g, wx, wy) {
					continue
				}
				candidates = append(candidates, los.Point{X: wx, Y: wy})
			}
			if len(candidates) > 0 {
				c := candidates[rng.Intn(len(candidates))]
				_ = g.Set(c.X, c.Y, false)
			}
		}
	}
}

func exits(g *los.Grid, x, y int) int {
	n := 0
	for _, p := range [4]los.Point{{X: x, Y: y - 1}, {X: x, Y: y + 1}, {X: x - 1, Y: y}, {X: x + 1, Y: y}} {
		if !g.Opaque(p.X, p.Y) {
			n++
		}
	}
	return n
}

// opensRoom reports whether clearing (x, y) completes a 2x2 clear block
func opensRoom(g *los.Grid, x, y int) bool {
	open := func(cx, cy int) bool { return !g.Opaque(cx, cy) }
	for _, q := range [4][2]int{{-1, -1}, {0, -1}, {-1, 0}, {0, 0}} {
		ox, oy := x+q[0], y+q[1]
		n := 0
		for _, c := range [4][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}} {
			cx, cy := ox+c[0], oy+c[1]
			if cx == x && cy == y {
				continue
			}
			if open(cx, cy) {
				n++
			}
		}
		if n == 3 {
			return true
		}
	}
	return false
}

func ensureOdd(n int) int {
	if n < 3 {
		return 3
	}
	if n%2 == 0 {
		return n - 1
	}
	return n
}

func newRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
