// Package scenario loads TOML map files with line-of-sight expectations and checks them.
package scenario

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/lixenwraith/sightline/gridgen"
	"github.com/lixenwraith/sightline/los"
)

// ErrInvalid marks a scenario that decodes but cannot be run
var ErrInvalid = errors.New("invalid scenario")

// Scenario is one map plus the queries expected against it.
//
//	name = "pillar"
//	exclusion = "axis"
//	observer = [0, 0]
//	rows = ["....", ".#..", "...."]
//
//	[[query]]
//	from = [0, 0]
//	to = [3, 2]
//	visible = false
type Scenario struct {
	Name      string   `toml:"name,omitempty"`
	Exclusion string   `toml:"exclusion,omitempty"`
	Observer  []int    `toml:"observer,omitempty"`
	Rows      []string `toml:"rows"`
	Queries   []Query  `toml:"query,omitempty"`
}

// Query is a single expectation; Visible is nil when only the answer is wanted
type Query struct {
	From    []int `toml:"from"`
	To      []int `toml:"to"`
	Visible *bool `toml:"visible"`
}

// Load reads and decodes a scenario file
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read scenario (%s)", path)
	}
	s, err := Decode(data)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", path)
	}
	return s, nil
}

// Decode parses scenario TOML and validates its shape
func Decode(data []byte) (*Scenario, error) {
	var s Scenario
	if _, err := toml.Decode(string(data), &s); err != nil {
		return nil, errors.Wrap(err, "could not decode scenario")
	}
	if _, ok := los.ParseExclusion(s.Exclusion); !ok {
		return nil, errors.Wrapf(ErrInvalid, "unknown exclusion %q", s.Exclusion)
	}
	if s.Observer != nil {
		if _, err := point(s.Observer); err != nil {
			return nil, errors.Wrap(err, "observer")
		}
	}
	for i, q := range s.Queries {
		if _, err := point(q.From); err != nil {
			return nil, errors.Wrapf(err, "query %d from", i)
		}
		if _, err := point(q.To); err != nil {
			return nil, errors.Wrapf(err, "query %d to", i)
		}
	}
	return &s, nil
}

// Grid builds the opacity grid from the scenario rows
func (s *Scenario) Grid() (*los.Grid, error) {
	return gridgen.FromRows(s.Rows)
}

// Tracer returns a tracer configured with the scenario exclusion policy
func (s *Scenario) Tracer() los.Tracer {
	e, _ := los.ParseExclusion(s.Exclusion)
	return los.Tracer{Exclusion: e}
}

// ObserverPoint returns the configured observer, or the grid center
func (s *Scenario) ObserverPoint(d los.Dims) los.Point {
	if p, err := point(s.Observer); err == nil {
		return p
	}
	return los.Point{X: d.Width / 2, Y: d.Height / 2}
}

// Result is the outcome of one query
type Result struct {
	From, To los.Point
	Visible  bool
	Expected *bool
}

// Passed reports whether the query had no expectation or met it
func (r Result) Passed() bool {
	return r.Expected == nil || *r.Expected == r.Visible
}

func (r Result) String() string {
	return fmt.Sprintf("(%d,%d) -> (%d,%d) visible=%t", r.From.X, r.From.Y, r.To.X, r.To.Y, r.Visible)
}

// Report collects all query results of a run
type Report struct {
	Name    string
	Results []Result
}

// Failed returns the results that missed their expectation
func (r Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}

// Run evaluates every query. Out-of-range coordinates abort the run.
func (s *Scenario) Run() (Report, error) {
	rep := Report{Name: s.Name}
	g, err := s.Grid()
	if err != nil {
		return rep, err
	}
	tr := s.Tracer()

	for i, q := range s.Queries {
		from, _ := point(q.From)
		to, _ := point(q.To)
		ok, err := tr.HasLineOfSight(g, from, to)
		if err != nil {
			return rep, errors.Wrapf(err, "query %d", i)
		}
		rep.Results = append(rep.Results, Result{From: from, To: to, Visible: ok, Expected: q.Visible})
	}
	return rep, nil
}

func point(v []int) (los.Point, error) {
	if len(v) != 2 {
		return los.Point{}, errors.Wrapf(ErrInvalid, "want [x, y], got %v", v)
	}
	return los.Point{X: v[0], Y: v[1]}, nil
}
