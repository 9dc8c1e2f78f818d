// Package sight answers range-limited visibility questions for many cells at once,
// built on single line-of-sight traces.
package sight

import (
	"github.com/lixenwraith/sightline/los"
)

// Distance is the Manhattan distance between two cells
func Distance(a, b los.Point) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Vantage is a viewpoint with a personal sight bonus added to the default range
type Vantage struct {
	Pos   los.Point
	Range int
}

// Lit returns the targets visible from any source within maxRange, in target order.
// A target that is itself a source is always lit.
func Lit(tr los.Tracer, g *los.Grid, sources, targets []los.Point, maxRange int) ([]los.Point, error) {
	isSource := make(map[los.Point]struct{}, len(sources))
	for _, s := range sources {
		isSource[s] = struct{}{}
	}

	lit := make([]los.Point, 0, len(targets))
	for _, t := range targets {
		if _, ok := isSource[t]; ok {
			lit = append(lit, t)
			continue
		}
		for _, s := range sources {
			if Distance(s, t) > maxRange {
				continue
			}
			ok, err := tr.HasLineOfSight(g, s, t)
			if err != nil {
				return nil, err
			}
			if ok {
				lit = append(lit, t)
				break
			}
		}
	}
	return lit, nil
}

// CanSee reports whether any vantage sees target within defaultRange plus its own bonus
func CanSee(tr los.Tracer, g *los.Grid, vantages []Vantage, target los.Point, defaultRange int) (bool, error) {
	for _, v := range vantages {
		if v.Pos == target {
			return true, nil
		}
		if Distance(v.Pos, target) > defaultRange+v.Range {
			continue
		}
		ok, err := tr.HasLineOfSight(g, v.Pos, target)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
