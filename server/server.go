// Package server exposes line-of-sight queries over HTTP for one loaded grid.
package server

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/lixenwraith/sightline/los"
	"github.com/lixenwraith/sightline/sight"
)

// Service answers queries against a read-only grid
type Service struct {
	grid    *los.Grid
	tracer  los.Tracer
	workers int
}

func NewService(g *los.Grid, tr los.Tracer, workers int) *Service {
	return &Service{grid: g, tracer: tr, workers: workers}
}

// Handler returns the routed API wrapped in an access log written to logw
func (s *Service) Handler(logw io.Writer) http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/healthz", s.health).Methods("GET")
	router.HandleFunc("/los", s.lineOfSight).Methods("GET")
	router.HandleFunc("/field", s.field).Methods("GET")
	return handlers.CombinedLoggingHandler(logw, router)
}

type losResponse struct {
	From    los.Point `json:"from"`
	To      los.Point `json:"to"`
	Visible bool      `json:"visible"`
}

type fieldResponse struct {
	At      los.Point   `json:"at"`
	Radius  int         `json:"radius"`
	Visible []los.Point `json:"visible"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) health(w http.ResponseWriter, r *http.Request) {
	d := s.grid.Dims()
	writeJSON(w, http.StatusOK, map[string]any{
		"width":     d.Width,
		"height":    d.Height,
		"exclusion": s.tracer.Exclusion.String(),
	})
}

func (s *Service) lineOfSight(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parsePoint(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "from"))
		return
	}
	to, err := parsePoint(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "to"))
		return
	}

	ok, err := s.tracer.HasLineOfSight(s.grid, from, to)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, losResponse{From: from, To: to, Visible: ok})
}

func (s *Service) field(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	at, err := parsePoint(q.Get("at"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrap(err, "at"))
		return
	}
	radius := 0
	if raw := q.Get("radius"); raw != "" {
		radius, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "radius"))
			return
		}
	}

	m, err := sight.Field(r.Context(), s.grid, at, radius, sight.FieldOptions{Tracer: s.tracer, Workers: s.workers})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	d := m.Dims()
	visible := make([]los.Point, 0, m.Count())
	for x := 0; x < d.Width; x++ {
		for y := 0; y < d.Height; y++ {
			if m.Visible(x, y) {
				visible = append(visible, los.Point{X: x, Y: y})
			}
		}
	}
	writeJSON(w, http.StatusOK, fieldResponse{At: at, Radius: radius, Visible: visible})
}

var errBadPoint = errors.New("want x,y")

func parsePoint(raw string) (los.Point, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if !ok {
		return los.Point{}, errors.Wrapf(errBadPoint, "got %q", raw)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return los.Point{}, errors.Wrapf(errBadPoint, "got %q", raw)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return los.Point{}, errors.Wrapf(errBadPoint, "got %q", raw)
	}
	return los.Point{X: x, Y: y}, nil
}

func statusFor(err error) int {
	if errors.Cause(err) == los.ErrIndexOutOfRange {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: write response: %v", err)
	}
}
