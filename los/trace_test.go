package los

import (
	"reflect"
	"sync"
	"testing"

	"github.com/pkg/errors"
)

func mustSee(t *testing.T, tr Tracer, g *Grid, from, to Point) bool {
	t.Helper()
	ok, err := tr.HasLineOfSight(g, from, to)
	if err != nil {
		t.Fatalf("HasLineOfSight(%v, %v) failed: %v", from, to, err)
	}
	return ok
}

func TestReflexiveIgnoresOwnOpacity(t *testing.T) {
	g := gridWith(t, 5, 5, Point{0, 0}, Point{3, 2})

	for x := 0; x < 5; x++ {
		for y := 0; y < 5; y++ {
			p := Point{x, y}
			if !mustSee(t, Tracer{}, g, p, p) {
				t.Errorf("Expected cell %v to see itself", p)
			}
		}
	}
}

func TestClearDiagonal(t *testing.T) {
	g := gridWith(t, 5, 5)

	if !mustSee(t, Tracer{}, g, Point{0, 0}, Point{4, 4}) {
		t.Error("Expected clear diagonal on empty grid")
	}
}

func TestDiagonalBlockedByCenter(t *testing.T) {
	g := gridWith(t, 5, 5, Point{2, 2})

	if mustSee(t, Tracer{}, g, Point{0, 0}, Point{4, 4}) {
		t.Error("Expected (2,2) to block the diagonal")
	}
	if mustSee(t, Tracer{}, g, Point{4, 4}, Point{0, 0}) {
		t.Error("Expected (2,2) to block the reversed diagonal")
	}
	if mustSee(t, Tracer{}, g, Point{0, 4}, Point{4, 0}) {
		t.Error("Expected (2,2) to block the anti-diagonal")
	}
}

func TestCornerSqueeze(t *testing.T) {
	from, to := Point{0, 0}, Point{4, 4}

	// Both flanks of the corner between (1,1) and (2,2)
	both := gridWith(t, 5, 5, Point{1, 2}, Point{2, 1})
	if mustSee(t, Tracer{}, both, from, to) {
		t.Error("Expected corner with both flanks opaque to block")
	}
	if mustSee(t, Tracer{}, both, to, from) {
		t.Error("Expected corner with both flanks opaque to block in reverse")
	}

	for _, flank := range []Point{{1, 2}, {2, 1}} {
		g := gridWith(t, 5, 5, flank)
		if !mustSee(t, Tracer{}, g, from, to) {
			t.Errorf("Expected line to squeeze past single opaque flank %v", flank)
		}
		if !mustSee(t, Tracer{}, g, to, from) {
			t.Errorf("Expected reversed line to squeeze past single opaque flank %v", flank)
		}
	}
}

func TestCornerFlanksIgnoreExclusion(t *testing.T) {
	// Last corner before the target: flanks (2,1) and (1,2) share an axis with (2,2)
	g := gridWith(t, 3, 3, Point{2, 1}, Point{1, 2})

	if mustSee(t, Tracer{}, g, Point{0, 0}, Point{2, 2}) {
		t.Error("Expected doubly opaque corner next to the target to block")
	}
}

// Single probes sharing a row or a column with the target are skipped by default,
// so an orthogonal line never tests anything.
func TestSharesRowWithTargetPartialExclusion(t *testing.T) {
	row := gridWith(t, 5, 5, Point{2, 0})
	col := gridWith(t, 5, 5, Point{0, 2})

	if !mustSee(t, Tracer{}, row, Point{0, 0}, Point{4, 0}) {
		t.Error("Expected horizontal line to skip probes sharing the target row")
	}
	if !mustSee(t, Tracer{}, col, Point{0, 0}, Point{0, 4}) {
		t.Error("Expected vertical line to skip probes sharing the target column")
	}

	strict := Tracer{Exclusion: ExcludeTargetOnly}
	if mustSee(t, strict, row, Point{0, 0}, Point{4, 0}) {
		t.Error("Expected horizontal blocker to block with target-only exclusion")
	}
	if mustSee(t, strict, col, Point{0, 0}, Point{0, 4}) {
		t.Error("Expected vertical blocker to block with target-only exclusion")
	}
	if !mustSee(t, strict, row, Point{0, 0}, Point{2, 0}) {
		t.Error("Expected opaque target cell itself to stay visible")
	}
}

func TestProbesShallowSideFlank(t *testing.T) {
	got := Tracer{}.Probes(Point{0, 0}, Point{4, 1})
	want := []Point{{1, 0}, {2, 0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected probes %v, got %v", want, got)
	}

	got = Tracer{Exclusion: ExcludeTargetOnly}.Probes(Point{0, 0}, Point{4, 1})
	want = []Point{{1, 0}, {2, 0}, {2, 1}, {3, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected target-only probes %v, got %v", want, got)
	}
}

func TestProbesLowerAndSideFlanks(t *testing.T) {
	got := Tracer{}.Probes(Point{0, 0}, Point{4, 3})
	want := []Point{{1, 0}, {1, 1}, {2, 1}, {2, 2}, {3, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected probes %v, got %v", want, got)
	}

	got = Tracer{Exclusion: ExcludeTargetOnly}.Probes(Point{0, 0}, Point{4, 3})
	want = []Point{{1, 0}, {1, 1}, {2, 1}, {2, 2}, {3, 2}, {3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected target-only probes %v, got %v", want, got)
	}
}

func TestProbesSteepMirrorsShallow(t *testing.T) {
	shallow := Tracer{}.Probes(Point{0, 0}, Point{4, 3})
	steep := Tracer{}.Probes(Point{0, 0}, Point{3, 4})

	if len(shallow) != len(steep) {
		t.Fatalf("Expected %d steep probes, got %d", len(shallow), len(steep))
	}
	for i, p := range shallow {
		if steep[i] != (Point{p.Y, p.X}) {
			t.Errorf("Probe %d: expected %v, got %v", i, Point{p.Y, p.X}, steep[i])
		}
	}
}

func TestProbesCornerTestsBothFlanks(t *testing.T) {
	got := Tracer{}.Probes(Point{0, 0}, Point{2, 2})
	want := []Point{{1, 0}, {0, 1}, {1, 1}, {2, 1}, {1, 2}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Expected probes %v, got %v", want, got)
	}
}

func TestBlockedFlankOnShallowLine(t *testing.T) {
	// (1,0) is the lower flank of the first minor step toward (4,3)
	g := gridWith(t, 5, 4, Point{1, 0})
	if mustSee(t, Tracer{}, g, Point{0, 0}, Point{4, 3}) {
		t.Error("Expected lower flank (1,0) to block")
	}

	// (2,2) is the side flank of the third step
	g = gridWith(t, 5, 4, Point{2, 2})
	if mustSee(t, Tracer{}, g, Point{0, 0}, Point{4, 3}) {
		t.Error("Expected side flank (2,2) to block")
	}

	// (3,3) shares the target row and is only probed with target-only exclusion
	g = gridWith(t, 5, 4, Point{3, 3})
	if !mustSee(t, Tracer{}, g, Point{0, 0}, Point{4, 3}) {
		t.Error("Expected (3,3) to be skipped under shared-axis exclusion")
	}
	if mustSee(t, Tracer{Exclusion: ExcludeTargetOnly}, g, Point{0, 0}, Point{4, 3}) {
		t.Error("Expected (3,3) to block under target-only exclusion")
	}
}

func TestSymmetricOnClearGrid(t *testing.T) {
	g := gridWith(t, 7, 5)

	for ax := 0; ax < 7; ax++ {
		for ay := 0; ay < 5; ay++ {
			for bx := 0; bx < 7; bx++ {
				for by := 0; by < 5; by++ {
					a, b := Point{ax, ay}, Point{bx, by}
					if !mustSee(t, Tracer{}, g, a, b) || !mustSee(t, Tracer{}, g, b, a) {
						t.Fatalf("Expected clear sight between %v and %v", a, b)
					}
				}
			}
		}
	}
}

func TestBoundsSafety(t *testing.T) {
	g := gridWith(t, 5, 5)

	cases := []struct {
		from, to Point
	}{
		{Point{0, 0}, Point{5, 0}},
		{Point{0, 0}, Point{0, 5}},
		{Point{-1, 0}, Point{2, 2}},
		{Point{7, 7}, Point{7, 7}},
	}
	for _, c := range cases {
		ok, err := HasLineOfSight(g, c.from, c.to)
		if errors.Cause(err) != ErrIndexOutOfRange {
			t.Errorf("Expected ErrIndexOutOfRange for %v -> %v, got %v", c.from, c.to, err)
		}
		if ok {
			t.Errorf("Expected false alongside error for %v -> %v", c.from, c.to)
		}
	}
}

func TestHasLineOfSightFlat(t *testing.T) {
	cells := make([]bool, 25)

	ok, err := HasLineOfSightFlat(0, 0, 4, 4, cells, 5)
	if err != nil || !ok {
		t.Errorf("Expected clear flat diagonal, got %v, %v", ok, err)
	}

	cells[2*5+2] = true
	ok, err = HasLineOfSightFlat(0, 0, 4, 4, cells, 5)
	if err != nil || ok {
		t.Errorf("Expected blocked flat diagonal, got %v, %v", ok, err)
	}

	ok, err = HasLineOfSightFlat(0, 0, 0, 0, cells, 5)
	if err != nil || !ok {
		t.Errorf("Expected reflexive flat query to pass, got %v, %v", ok, err)
	}

	_, err = HasLineOfSightFlat(0, 0, 5, 0, cells, 5)
	if errors.Cause(err) != ErrIndexOutOfRange {
		t.Errorf("Expected ErrIndexOutOfRange, got %v", err)
	}

	_, err = HasLineOfSightFlat(0, 0, 1, 1, cells, 7)
	if errors.Cause(err) != ErrIndexOutOfRange {
		t.Errorf("Expected ErrIndexOutOfRange for mismatched height, got %v", err)
	}
}

func TestTraceWithPredicate(t *testing.T) {
	walls := map[Point]bool{{2, 2}: true}
	blocked := OpacityFunc(func(x, y int) bool { return walls[Point{x, y}] })

	if Trace(blocked, Point{0, 0}, Point{4, 4}) {
		t.Error("Expected predicate wall to block")
	}
	if !Trace(blocked, Point{0, 4}, Point{4, 4}) {
		t.Error("Expected row trace to pass")
	}
}

func TestRecorderReset(t *testing.T) {
	g := gridWith(t, 5, 5)
	rec := NewRecorder(g)

	Trace(rec, Point{0, 0}, Point{2, 2})
	if len(rec.Probed) != 5 {
		t.Errorf("Expected 5 probes, got %d", len(rec.Probed))
	}
	rec.Reset()
	if len(rec.Probed) != 0 {
		t.Errorf("Expected no probes after reset, got %d", len(rec.Probed))
	}
}

func TestParseExclusion(t *testing.T) {
	for _, e := range []Exclusion{ExcludeSharedAxis, ExcludeTargetOnly} {
		got, ok := ParseExclusion(e.String())
		if !ok || got != e {
			t.Errorf("Expected %v to round trip, got %v (%v)", e, got, ok)
		}
	}
	if _, ok := ParseExclusion("diagonal"); ok {
		t.Error("Expected unknown policy to be rejected")
	}
}

func TestConcurrentQueries(t *testing.T) {
	g := gridWith(t, 16, 16, Point{8, 8}, Point{4, 9}, Point{12, 3})

	want := make(map[[2]Point]bool)
	for x := 0; x < 16; x++ {
		to := Point{x, 15}
		want[[2]Point{{0, 0}, to}] = mustSee(t, Tracer{}, g, Point{0, 0}, to)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	mismatches := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key, expected := range want {
				ok, err := HasLineOfSight(g, key[0], key[1])
				if err != nil || ok != expected {
					mu.Lock()
					mismatches++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if mismatches != 0 {
		t.Errorf("Expected consistent concurrent results, got %d mismatches", mismatches)
	}
}

func BenchmarkHasLineOfSight(b *testing.B) {
	g, _ := NewEmptyGrid(Dims{Width: 64, Height: 64})
	from, to := Point{1, 2}, Point{63, 41}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = HasLineOfSight(g, from, to)
	}
}
