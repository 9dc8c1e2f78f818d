package gridgen

import (
	"github.com/lixenwraith/sightline/los"
)

// WallConfig drives random straight wall segments on an open floor
type WallConfig struct {
	Width, Height int

	Segments          int
	MinLen, MaxLen    int
	ThicknessVariance int // extra cells added on each side, chosen in [0, variance]

	// Cells within this Chebyshev radius of Keep stay clear
	Keep       *los.Point
	KeepRadius int

	Seed int64 // 0 = time based
}

// Walls scatters horizontal and vertical wall segments, leaving a clear one cell border
func Walls(cfg WallConfig) (*los.Grid, error) {
	g, err := los.NewEmptyGrid(los.Dims{Width: cfg.Width, Height: cfg.Height})
	if err != nil {
		return nil, err
	}
	if cfg.Width < 5 || cfg.Height < 5 {
		return g, nil
	}

	rng := newRand(cfg.Seed)
	lengthRange := cfg.MaxLen - cfg.MinLen + 1
	if lengthRange <= 0 {
		lengthRange = 1
	}
	for s := 0; s < cfg.Segments; s++ {
		length := cfg.MinLen + rng.Intn(lengthRange)
		thickness := 0
		if cfg.ThicknessVariance > 0 {
			thickness = rng.Intn(cfg.ThicknessVariance + 1)
		}

		dx, dy := 0, 1
		if rng.Intn(2) == 0 {
			dx, dy = 1, 0
		}
		perpX, perpY := dy, dx
		cx := rng.Intn(cfg.Width-4) + 2
		cy := rng.Intn(cfg.Height-4) + 2

		for l := 0; l < length; l++ {
			if cx <= 0 || cx >= cfg.Width-1 || cy <= 0 || cy >= cfg.Height-1 {
				break
			}
			for t := -thickness; t <= thickness; t++ {
				placeWall(g, cfg, cx+perpX*t, cy+perpY*t)
			}
			cx += dx
			cy += dy
		}
	}
	return g, nil
}

func placeWall(g *los.Grid, cfg WallConfig, x, y int) {
	if x <= 0 || x >= cfg.Width-1 || y <= 0 || y >= cfg.Height-1 {
		return
	}
	if cfg.Keep != nil && abs(x-cfg.Keep.X) <= cfg.KeepRadius && abs(y-cfg.Keep.Y) <= cfg.KeepRadius {
		return
	}
	_ = g.Set(x, y, true)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
