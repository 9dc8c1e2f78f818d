package los

// Recorder wraps an Opacity and remembers every cell a trace probed, in probe order
type Recorder struct {
	Source Opacity
	Probed []Point
}

// NewRecorder wraps src
func NewRecorder(src Opacity) *Recorder {
	return &Recorder{Source: src}
}

// Opaque records the probe and forwards it
func (r *Recorder) Opaque(x, y int) bool {
	r.Probed = append(r.Probed, Point{X: x, Y: y})
	return r.Source.Opaque(x, y)
}

// Reset clears recorded probes, keeping the backing array
func (r *Recorder) Reset() {
	r.Probed = r.Probed[:0]
}

// Probes returns the cells a trace from from to to would probe on an all-clear grid.
// Corner crossings contribute both flanks.
func (t Tracer) Probes(from, to Point) []Point {
	rec := NewRecorder(OpacityFunc(func(int, int) bool { return false }))
	t.Trace(rec, from, to)
	return rec.Probed
}
