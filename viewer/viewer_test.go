package viewer

import (
	"context"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/sightline/gridgen"
	"github.com/lixenwraith/sightline/los"
)

func newTestViewer(t *testing.T) *Viewer {
	t.Helper()
	g, err := gridgen.FromRows([]string{
		".....",
		".....",
		"..#..",
		".....",
		".....",
	})
	if err != nil {
		t.Fatalf("FromRows failed: %v", err)
	}
	v := New(nil, g, los.Point{X: 0, Y: 0}, Options{Workers: 2})
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	return v
}

func TestCellShowsObserverAndFog(t *testing.T) {
	v := newTestViewer(t)

	if r, style := v.Cell(0, 0); r != '@' || style != styleObserver {
		t.Errorf("Expected observer glyph at origin, got %q", r)
	}
	if r, _ := v.Cell(2, 2); r != '#' {
		t.Errorf("Expected visible pillar glyph, got %q", r)
	}
	if r, style := v.Cell(4, 4); r != ' ' || style != styleHidden {
		t.Errorf("Expected hidden floor behind pillar, got %q", r)
	}
	if r, style := v.Cell(4, 0); r != '.' || style != styleFloor {
		t.Errorf("Expected visible floor along the top row, got %q", r)
	}
}

func TestCursorRayHighlight(t *testing.T) {
	v := newTestViewer(t)

	for i := 0; i < 4; i++ {
		v.HandleKey(tcell.KeyRune, 'L')
		v.HandleKey(tcell.KeyRune, 'J')
	}
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if v.cursor != (los.Point{X: 4, Y: 4}) {
		t.Fatalf("Expected cursor at (4,4), got %v", v.cursor)
	}
	if v.rayClear {
		t.Error("Expected ray to the far corner to be blocked")
	}
	if r, style := v.Cell(4, 4); r != '+' || style != styleBlocked {
		t.Errorf("Expected blocked cursor glyph, got %q", r)
	}
	if _, style := v.Cell(1, 1); style != styleFloor.Background(tcell.ColorNavy) {
		t.Error("Expected probed cell (1,1) to be highlighted")
	}
	if !strings.Contains(v.Status(), "blocked") {
		t.Errorf("Expected status to report blocked ray, got %q", v.Status())
	}
}

func TestObserverCannotEnterWalls(t *testing.T) {
	v := newTestViewer(t)
	v.observer = los.Point{X: 2, Y: 1}

	v.HandleKey(tcell.KeyDown, 0)
	if v.observer != (los.Point{X: 2, Y: 1}) {
		t.Errorf("Expected observer to stay out of the wall, got %v", v.observer)
	}

	v.HandleKey(tcell.KeyRune, 'h')
	if v.observer != (los.Point{X: 1, Y: 1}) {
		t.Errorf("Expected observer to move left, got %v", v.observer)
	}

	v.observer = los.Point{X: 0, Y: 0}
	v.HandleKey(tcell.KeyUp, 0)
	if v.observer != (los.Point{X: 0, Y: 0}) {
		t.Errorf("Expected observer to stay inside the grid, got %v", v.observer)
	}
}

func TestCursorStaysInsideGrid(t *testing.T) {
	v := newTestViewer(t)

	v.HandleKey(tcell.KeyRune, 'H')
	v.HandleKey(tcell.KeyRune, 'K')
	if v.cursor != (los.Point{X: 0, Y: 0}) {
		t.Errorf("Expected cursor clamped at origin, got %v", v.cursor)
	}
}

func TestPolicyAndRadiusKeys(t *testing.T) {
	v := newTestViewer(t)

	v.HandleKey(tcell.KeyRune, 'x')
	if v.opts.Tracer.Exclusion != los.ExcludeTargetOnly {
		t.Error("Expected x to switch to target-only exclusion")
	}
	v.HandleKey(tcell.KeyRune, 'x')
	if v.opts.Tracer.Exclusion != los.ExcludeSharedAxis {
		t.Error("Expected x to switch back to shared-axis exclusion")
	}

	v.HandleKey(tcell.KeyRune, '-')
	if v.opts.Radius != 0 {
		t.Errorf("Expected radius to stay at 0, got %d", v.opts.Radius)
	}
	v.HandleKey(tcell.KeyRune, '+')
	v.HandleKey(tcell.KeyRune, '+')
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if v.mask.Count() != 6 {
		t.Errorf("Expected 6 visible cells at radius 2, got %d", v.mask.Count())
	}
	if !strings.Contains(v.Status(), "radius=2") {
		t.Errorf("Expected status to show radius, got %q", v.Status())
	}
}

func TestQuitKeys(t *testing.T) {
	v := newTestViewer(t)

	if !v.HandleKey(tcell.KeyRune, 'q') {
		t.Error("Expected q to quit")
	}
	if !v.HandleKey(tcell.KeyEscape, 0) {
		t.Error("Expected Escape to quit")
	}
	if !v.HandleKey(tcell.KeyCtrlC, 0) {
		t.Error("Expected Ctrl-C to quit")
	}
	if v.HandleKey(tcell.KeyRune, 'j') {
		t.Error("Expected movement not to quit")
	}
}
