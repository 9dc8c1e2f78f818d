package los

// Opacity is any source of per-cell blocking information
type Opacity interface {
	Opaque(x, y int) bool
}

// OpacityFunc adapts a plain predicate to Opacity
type OpacityFunc func(x, y int) bool

// Opaque calls f(x, y)
func (f OpacityFunc) Opaque(x, y int) bool {
	return f(x, y)
}

// Exclusion selects which probed cells are skipped because of their relation to the target
type Exclusion uint8

const (
	// ExcludeSharedAxis skips any single-cell probe that shares a row or a column with the
	// target. Straight orthogonal lines are therefore never blocked.
	ExcludeSharedAxis Exclusion = iota
	// ExcludeTargetOnly skips only the target cell itself
	ExcludeTargetOnly
)

// String returns the policy name used in scenario files and the viewer status line
func (e Exclusion) String() string {
	switch e {
	case ExcludeTargetOnly:
		return "cell"
	default:
		return "axis"
	}
}

// ParseExclusion maps "axis" and "cell" back to a policy
func ParseExclusion(s string) (Exclusion, bool) {
	switch s {
	case "", "axis":
		return ExcludeSharedAxis, true
	case "cell":
		return ExcludeTargetOnly, true
	default:
		return ExcludeSharedAxis, false
	}
}

// Tracer runs supercover line-of-sight traces under an exclusion policy.
// The zero value uses ExcludeSharedAxis.
type Tracer struct {
	Exclusion Exclusion
}

// HasLineOfSight reports whether no opaque intermediate cell lies between from and to.
// Both endpoints must lie inside g; every probed cell lies in their bounding box.
func (t Tracer) HasLineOfSight(g *Grid, from, to Point) (bool, error) {
	if !g.dims.Contains(from.X, from.Y) {
		return false, outOfRange(from.X, from.Y, g.dims)
	}
	if !g.dims.Contains(to.X, to.Y) {
		return false, outOfRange(to.X, to.Y, g.dims)
	}
	return t.Trace(g, from, to), nil
}

// Trace walks the supercover line from from to to, probing op, without bounds checks.
// Start and end cells are never probed.
func (t Tracer) Trace(op Opacity, from, to Point) bool {
	if from == to {
		return true
	}

	dx := to.X - from.X
	dy := to.Y - from.Y
	xstep, ystep := 1, 1
	if dx < 0 {
		xstep = -1
		dx = -dx
	}
	if dy < 0 {
		ystep = -1
		dy = -dy
	}

	w := walker{op: op, exclusion: t.Exclusion, target: to}
	var major, minor int
	if dx >= dy {
		w.u, w.v = from.X, from.Y
		w.ustep, w.vstep = xstep, ystep
		major, minor = dx, dy
	} else {
		w.steep = true
		w.u, w.v = from.Y, from.X
		w.ustep, w.vstep = ystep, xstep
		major, minor = dy, dx
	}

	dMajor, dMinor := 2*major, 2*minor
	err, prevErr := major, major
	for i := 0; i < major; i++ {
		w.u += w.ustep
		err += dMinor
		if err > dMajor {
			w.v += w.vstep
			err -= dMajor
			switch sum := err + prevErr; {
			case sum < dMajor:
				// line clips the flank reached by the major step alone
				if w.blocks(w.u, w.v-w.vstep) {
					return false
				}
			case sum > dMajor:
				// line clips the flank reached by the minor step alone
				if w.blocks(w.u-w.ustep, w.v) {
					return false
				}
			default:
				// exact corner crossing squeezes through unless both flanks are opaque
				lower := w.opaque(w.u, w.v-w.vstep)
				side := w.opaque(w.u-w.ustep, w.v)
				if lower && side {
					return false
				}
			}
		}
		if w.blocks(w.u, w.v) {
			return false
		}
		prevErr = err
	}
	return true
}

// walker holds a trace in major/minor space; u is the major axis, v the minor
type walker struct {
	op        Opacity
	exclusion Exclusion
	target    Point
	steep     bool

	u, v         int
	ustep, vstep int
}

func (w *walker) cell(u, v int) (int, int) {
	if w.steep {
		return v, u
	}
	return u, v
}

func (w *walker) opaque(u, v int) bool {
	x, y := w.cell(u, v)
	return w.op.Opaque(x, y)
}

// blocks probes a single cell subject to the exclusion policy
func (w *walker) blocks(u, v int) bool {
	x, y := w.cell(u, v)
	switch w.exclusion {
	case ExcludeTargetOnly:
		if x == w.target.X && y == w.target.Y {
			return false
		}
	default:
		if x == w.target.X || y == w.target.Y {
			return false
		}
	}
	return w.op.Opaque(x, y)
}

// HasLineOfSight traces from to to on g with the default exclusion policy
func HasLineOfSight(g *Grid, from, to Point) (bool, error) {
	return Tracer{}.HasLineOfSight(g, from, to)
}

// HasLineOfSightFlat traces over a flat column-major table of the given height
func HasLineOfSightFlat(x1, y1, x2, y2 int, cells []bool, height int) (bool, error) {
	g, err := FromFlat(cells, height)
	if err != nil {
		return false, err
	}
	return HasLineOfSight(g, Point{X: x1, Y: y1}, Point{X: x2, Y: y2})
}

// Trace runs an unchecked trace over op with the default exclusion policy
func Trace(op Opacity, from, to Point) bool {
	return Tracer{}.Trace(op, from, to)
}
