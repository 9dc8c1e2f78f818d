// Package los answers line-of-sight queries on column-major opacity grids.
package los

import (
	"github.com/pkg/errors"
)

// ErrIndexOutOfRange is returned when a coordinate or linear index falls outside the grid
var ErrIndexOutOfRange = errors.New("index out of range")

// Point is a grid coordinate
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Dims carries the grid extent so indexing never depends on a loose height argument
type Dims struct {
	Width, Height int
}

// Contains reports whether (x, y) lies inside the extent
func (d Dims) Contains(x, y int) bool {
	return x >= 0 && x < d.Width && y >= 0 && y < d.Height
}

// Cells returns the number of cells the extent covers
func (d Dims) Cells() int {
	return d.Width * d.Height
}

// Grid is a read-only opacity table.
// Cell (x, y) lives at x*Height + y: one column occupies Height consecutive slots.
type Grid struct {
	dims  Dims
	cells []bool
}

// NewGrid borrows cells as the opacity table for dims.
// The slice is not copied; callers must not mutate it while queries are in flight.
func NewGrid(dims Dims, cells []bool) (*Grid, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "invalid grid dims %dx%d", dims.Width, dims.Height)
	}
	if len(cells) != dims.Cells() {
		return nil, errors.Wrapf(ErrIndexOutOfRange,
			"grid dims %dx%d need %d cells, got %d", dims.Width, dims.Height, dims.Cells(), len(cells))
	}
	return &Grid{dims: dims, cells: cells}, nil
}

// NewEmptyGrid allocates a fully transparent grid
func NewEmptyGrid(dims Dims) (*Grid, error) {
	if dims.Width <= 0 || dims.Height <= 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "invalid grid dims %dx%d", dims.Width, dims.Height)
	}
	return &Grid{dims: dims, cells: make([]bool, dims.Cells())}, nil
}

// FromFlat wraps a flat table addressed by x*height + y, deriving the width from its length
func FromFlat(cells []bool, height int) (*Grid, error) {
	if height <= 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "invalid height %d", height)
	}
	if len(cells)%height != 0 {
		return nil, errors.Wrapf(ErrIndexOutOfRange,
			"%d cells do not divide into columns of height %d", len(cells), height)
	}
	return NewGrid(Dims{Width: len(cells) / height, Height: height}, cells)
}

// Dims returns the grid extent
func (g *Grid) Dims() Dims {
	return g.dims
}

// Index returns the linear slot of (x, y)
func (g *Grid) Index(x, y int) int {
	return x*g.dims.Height + y
}

// IsOpaque reports whether the cell blocks sight, failing on coordinates outside the grid
func (g *Grid) IsOpaque(x, y int) (bool, error) {
	if !g.dims.Contains(x, y) {
		return false, outOfRange(x, y, g.dims)
	}
	return g.cells[g.Index(x, y)], nil
}

// Opaque is the unchecked lookup used on hot paths; cells outside the grid read as opaque
func (g *Grid) Opaque(x, y int) bool {
	if !g.dims.Contains(x, y) {
		return true
	}
	return g.cells[g.Index(x, y)]
}

// Set marks a cell opaque or clear. Only for grid construction, never during queries.
func (g *Grid) Set(x, y int, opaque bool) error {
	if !g.dims.Contains(x, y) {
		return outOfRange(x, y, g.dims)
	}
	g.cells[g.Index(x, y)] = opaque
	return nil
}

// IsOpaque looks up (x, y) in a flat column-major table of the given height
func IsOpaque(x, y int, cells []bool, height int) (bool, error) {
	if height <= 0 || x < 0 || y < 0 || y >= height {
		return false, errors.Wrapf(ErrIndexOutOfRange, "cell (%d,%d) invalid for height %d", x, y, height)
	}
	idx := x*height + y
	if idx >= len(cells) {
		return false, errors.Wrapf(ErrIndexOutOfRange, "index %d of cell (%d,%d) exceeds %d cells", idx, x, y, len(cells))
	}
	return cells[idx], nil
}

func outOfRange(x, y int, d Dims) error {
	return errors.Wrapf(ErrIndexOutOfRange, "cell (%d,%d) outside %dx%d grid", x, y, d.Width, d.Height)
}
