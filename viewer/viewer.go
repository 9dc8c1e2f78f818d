// Package viewer is an interactive terminal explorer for line-of-sight on a grid.
package viewer

import (
	"context"
	"fmt"
	"log"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sightline/los"
	"github.com/lixenwraith/sightline/sight"
)

const statusRows = 1

var (
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleFloor    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleHidden   = tcell.StyleDefault.Foreground(tcell.ColorDarkSlateGray)
	styleObserver = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleSeen     = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleBlocked  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleProbe    = tcell.StyleDefault.Background(tcell.ColorNavy)
	styleStatus   = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
)

type Options struct {
	Tracer  los.Tracer
	Radius  int // 0 = unlimited
	Workers int
}

// Viewer owns the explorer state; the screen is only touched by Draw and Run
type Viewer struct {
	screen tcell.Screen
	grid   *los.Grid
	opts   Options

	observer los.Point
	cursor   los.Point

	mask     *sight.Mask
	probes   map[los.Point]struct{}
	rayClear bool
}

func New(screen tcell.Screen, g *los.Grid, observer los.Point, opts Options) *Viewer {
	return &Viewer{
		screen:   screen,
		grid:     g,
		opts:     opts,
		observer: observer,
		cursor:   observer,
		probes:   make(map[los.Point]struct{}),
	}
}

// Refresh recomputes the visibility mask around the observer and the observer->cursor ray
func (v *Viewer) Refresh(ctx context.Context) error {
	m, err := sight.Field(ctx, v.grid, v.observer, v.opts.Radius, sight.FieldOptions{
		Tracer:  v.opts.Tracer,
		Workers: v.opts.Workers,
	})
	if err != nil {
		return err
	}
	v.mask = m

	rec := los.NewRecorder(v.grid)
	ok, err := v.opts.Tracer.HasLineOfSight(v.grid, v.observer, v.cursor)
	if err != nil {
		return err
	}
	v.opts.Tracer.Trace(rec, v.observer, v.cursor)
	clear(v.probes)
	for _, p := range rec.Probed {
		v.probes[p] = struct{}{}
	}
	v.rayClear = ok
	log.Printf("viewer: observer %v cursor %v visible=%t cells=%d", v.observer, v.cursor, ok, m.Count())
	return nil
}

// HandleKey applies one key press and reports whether the viewer should quit
func (v *Viewer) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyLeft:
		v.moveObserver(-1, 0)
	case tcell.KeyRight:
		v.moveObserver(1, 0)
	case tcell.KeyUp:
		v.moveObserver(0, -1)
	case tcell.KeyDown:
		v.moveObserver(0, 1)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return true
		case 'h':
			v.moveObserver(-1, 0)
		case 'l':
			v.moveObserver(1, 0)
		case 'k':
			v.moveObserver(0, -1)
		case 'j':
			v.moveObserver(0, 1)
		case 'H':
			v.moveCursor(-1, 0)
		case 'L':
			v.moveCursor(1, 0)
		case 'K':
			v.moveCursor(0, -1)
		case 'J':
			v.moveCursor(0, 1)
		case 'x':
			if v.opts.Tracer.Exclusion == los.ExcludeSharedAxis {
				v.opts.Tracer.Exclusion = los.ExcludeTargetOnly
			} else {
				v.opts.Tracer.Exclusion = los.ExcludeSharedAxis
			}
		case '+':
			v.opts.Radius++
		case '-':
			if v.opts.Radius > 0 {
				v.opts.Radius--
			}
		}
	}
	return false
}

// Observer cannot step into walls
func (v *Viewer) moveObserver(dx, dy int) {
	next := los.Point{X: v.observer.X + dx, Y: v.observer.Y + dy}
	if v.grid.Opaque(next.X, next.Y) {
		return
	}
	v.observer = next
}

// Cursor roams anywhere inside the grid
func (v *Viewer) moveCursor(dx, dy int) {
	next := los.Point{X: v.cursor.X + dx, Y: v.cursor.Y + dy}
	if !v.grid.Dims().Contains(next.X, next.Y) {
		return
	}
	v.cursor = next
}

// Cell returns the glyph and style for grid cell (x, y)
func (v *Viewer) Cell(x, y int) (rune, tcell.Style) {
	p := los.Point{X: x, Y: y}
	switch {
	case p == v.observer:
		return '@', styleObserver
	case p == v.cursor:
		if v.rayClear {
			return '+', styleSeen
		}
		return '+', styleBlocked
	}

	glyph, style := '.', styleFloor
	if v.grid.Opaque(x, y) {
		glyph, style = '#', styleWall
	}
	if v.mask == nil || !v.mask.Visible(x, y) {
		style = styleHidden
		if glyph == '.' {
			glyph = ' '
		}
	}
	if _, ok := v.probes[p]; ok {
		style = style.Background(tcell.ColorNavy)
		if glyph == ' ' {
			style = styleProbe
		}
	}
	return glyph, style
}

// Status is the one-line summary drawn above the grid
func (v *Viewer) Status() string {
	seen := "blocked"
	if v.rayClear {
		seen = "clear"
	}
	radius := "inf"
	if v.opts.Radius > 0 {
		radius = fmt.Sprint(v.opts.Radius)
	}
	count := 0
	if v.mask != nil {
		count = v.mask.Count()
	}
	return fmt.Sprintf(" @(%d,%d) -> +(%d,%d) %s | exclusion=%s radius=%s visible=%d | hjkl move HJKL aim x policy +/- radius q quit",
		v.observer.X, v.observer.Y, v.cursor.X, v.cursor.Y, seen,
		v.opts.Tracer.Exclusion, radius, count)
}

// Draw paints the status line and the visible part of the grid
func (v *Viewer) Draw() {
	v.screen.Clear()
	sw, sh := v.screen.Size()

	x := 0
	for _, r := range v.Status() {
		if x >= sw {
			break
		}
		v.screen.SetContent(x, 0, r, nil, styleStatus)
		x++
	}

	d := v.grid.Dims()
	for gy := 0; gy < d.Height && gy+statusRows < sh; gy++ {
		for gx := 0; gx < d.Width && gx < sw; gx++ {
			r, style := v.Cell(gx, gy)
			v.screen.SetContent(gx, gy+statusRows, r, nil, style)
		}
	}
	v.screen.Show()
}

// Run draws and handles input until the user quits or the screen is finalized
func (v *Viewer) Run(ctx context.Context) error {
	if err := v.Refresh(ctx); err != nil {
		return err
	}
	for {
		v.Draw()
		switch ev := v.screen.PollEvent().(type) {
		case nil:
			return nil
		case *tcell.EventResize:
			v.screen.Sync()
		case *tcell.EventKey:
			if v.HandleKey(ev.Key(), ev.Rune()) {
				return nil
			}
			if err := v.Refresh(ctx); err != nil {
				return err
			}
		}
	}
}
