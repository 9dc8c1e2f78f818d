// Package gridgen builds opacity grids from ASCII maps and procedural generators.
package gridgen

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"

	"github.com/lixenwraith/sightline/los"
)

// Map glyphs
const (
	WallRune  = '#'
	FloorRune = '.'
)

// ErrBadMap is returned for empty or ragged ASCII maps
var ErrBadMap = errors.New("bad map")

// FromRows parses an ASCII map. Row index is y, rune index is x; '#' is opaque,
// every other rune is clear.
func FromRows(rows []string) (*los.Grid, error) {
	if len(rows) == 0 {
		return nil, errors.Wrap(ErrBadMap, "no rows")
	}
	width := utf8.RuneCountInString(rows[0])
	if width == 0 {
		return nil, errors.Wrap(ErrBadMap, "empty first row")
	}

	g, err := los.NewEmptyGrid(los.Dims{Width: width, Height: len(rows)})
	if err != nil {
		return nil, err
	}
	for y, row := range rows {
		if n := utf8.RuneCountInString(row); n != width {
			return nil, errors.Wrapf(ErrBadMap, "row %d has %d cells, want %d", y, n, width)
		}
		x := 0
		for _, r := range row {
			if r == WallRune {
				_ = g.Set(x, y, true)
			}
			x++
		}
	}
	return g, nil
}

// Rows renders g back into ASCII, one string per y
func Rows(g *los.Grid) []string {
	d := g.Dims()
	rows := make([]string, d.Height)
	var sb strings.Builder
	for y := 0; y < d.Height; y++ {
		sb.Reset()
		for x := 0; x < d.Width; x++ {
			if g.Opaque(x, y) {
				sb.WriteRune(WallRune)
			} else {
				sb.WriteRune(FloorRune)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}
