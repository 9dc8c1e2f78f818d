package sight

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/sightline/los"
)

// Mask is a per-cell visibility table laid out like los.Grid
type Mask struct {
	dims    los.Dims
	visible []bool
}

// Dims returns the mask extent
func (m *Mask) Dims() los.Dims {
	return m.dims
}

// Visible reports whether (x, y) was seen; cells outside the mask are not
func (m *Mask) Visible(x, y int) bool {
	if !m.dims.Contains(x, y) {
		return false
	}
	return m.visible[x*m.dims.Height+y]
}

// Count returns the number of visible cells
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.visible {
		if v {
			n++
		}
	}
	return n
}

// FieldOptions tunes Field
type FieldOptions struct {
	Tracer  los.Tracer
	Workers int // 0 = GOMAXPROCS
}

// Field traces from observer to every cell within radius (Manhattan; <= 0 means the whole
// grid). Columns are spread over a bounded worker pool and the context is checked between
// columns, so a cancelled field returns ctx.Err() with a partial mask discarded.
func Field(ctx context.Context, g *los.Grid, observer los.Point, radius int, opts FieldOptions) (*Mask, error) {
	d := g.Dims()
	if _, err := g.IsOpaque(observer.X, observer.Y); err != nil {
		return nil, err
	}

	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	m := &Mask{dims: d, visible: make([]bool, d.Cells())}
	minX, maxX := 0, d.Width-1
	if radius > 0 {
		minX = max(minX, observer.X-radius)
		maxX = min(maxX, observer.X+radius)
	}

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for x := minX; x <= maxX; x++ {
		if gctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each column owns its own slots of m.visible
			for y := 0; y < d.Height; y++ {
				target := los.Point{X: x, Y: y}
				if radius > 0 && Distance(observer, target) > radius {
					continue
				}
				m.visible[x*d.Height+y] = opts.Tracer.Trace(g, observer, target)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
