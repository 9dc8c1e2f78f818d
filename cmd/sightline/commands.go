package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/ttacon/chalk"
	"github.com/urfave/cli"

	"github.com/lixenwraith/sightline/gridgen"
	"github.com/lixenwraith/sightline/los"
	"github.com/lixenwraith/sightline/scenario"
	"github.com/lixenwraith/sightline/server"
	"github.com/lixenwraith/sightline/viewer"
)

// world is the grid a command works on plus where to stand by default
type world struct {
	grid     *los.Grid
	tracer   los.Tracer
	observer los.Point
	name     string
}

func loadWorld(c *cli.Context) (*world, error) {
	w := &world{}
	if path := c.String("scenario"); path != "" {
		s, err := scenario.Load(path)
		if err != nil {
			return nil, err
		}
		g, err := s.Grid()
		if err != nil {
			return nil, errors.Wrapf(err, "scenario %s", path)
		}
		w.grid, w.tracer, w.name = g, s.Tracer(), s.Name
		w.observer = s.ObserverPoint(g.Dims())
	} else {
		g, err := generate(c)
		if err != nil {
			return nil, err
		}
		w.grid, w.name = g, c.String("gen")
		w.observer = los.Point{X: 1, Y: 1}
	}

	if raw := c.String("exclusion"); raw != "" {
		e, ok := los.ParseExclusion(raw)
		if !ok {
			return nil, errors.Errorf("unknown exclusion %q", raw)
		}
		w.tracer.Exclusion = e
	}
	log.Printf("world %q: %dx%d, exclusion=%s", w.name, w.grid.Dims().Width, w.grid.Dims().Height, w.tracer.Exclusion)
	return w, nil
}

func generate(c *cli.Context) (*los.Grid, error) {
	width, height, seed := c.Int("width"), c.Int("height"), c.Int64("seed")
	switch c.String("gen") {
	case "maze":
		return gridgen.Maze(gridgen.MazeConfig{
			Width:    width,
			Height:   height,
			Braiding: c.Float64("braid"),
			Seed:     seed,
		}), nil
	case "walls":
		keep := los.Point{X: 1, Y: 1}
		return gridgen.Walls(gridgen.WallConfig{
			Width:             width,
			Height:            height,
			Segments:          c.Int("segments"),
			MinLen:            3,
			MaxLen:            max(3, width/3),
			ThicknessVariance: 1,
			Keep:              &keep,
			KeepRadius:        1,
			Seed:              seed,
		})
	default:
		return nil, errors.Errorf("unknown generator %q", c.String("gen"))
	}
}

func parsePoint(raw string) (los.Point, error) {
	xs, ys, ok := strings.Cut(raw, ",")
	if ok {
		x, errX := strconv.Atoi(strings.TrimSpace(xs))
		y, errY := strconv.Atoi(strings.TrimSpace(ys))
		if errX == nil && errY == nil {
			return los.Point{X: x, Y: y}, nil
		}
	}
	return los.Point{}, errors.Errorf("bad point %q, want X,Y", raw)
}

func queryAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.NewExitError("query needs two points: X1,Y1 X2,Y2", 2)
	}
	from, err := parsePoint(c.Args().Get(0))
	if err != nil {
		return err
	}
	to, err := parsePoint(c.Args().Get(1))
	if err != nil {
		return err
	}

	w, err := loadWorld(c)
	if err != nil {
		return err
	}
	ok, err := w.tracer.HasLineOfSight(w.grid, from, to)
	if err != nil {
		return err
	}

	verdict := chalk.Red.Color("blocked")
	if ok {
		verdict = chalk.Green.Color("visible")
	}
	fmt.Printf("(%d,%d) -> (%d,%d): %s\n", from.X, from.Y, to.X, to.Y, verdict)
	return nil
}

func checkAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return cli.NewExitError("check needs at least one scenario file", 2)
	}
	failures, err := runChecks(os.Stdout, c.Args())
	if err != nil {
		return err
	}
	if failures > 0 {
		return cli.NewExitError(fmt.Sprintf("%d queries failed", failures), 1)
	}
	return nil
}

// runChecks prints a PASS/FAIL line per query and returns the number of failures
func runChecks(out io.Writer, paths []string) (int, error) {
	failures := 0
	for _, path := range paths {
		s, err := scenario.Load(path)
		if err != nil {
			return failures, err
		}
		rep, err := s.Run()
		if err != nil {
			return failures, errors.Wrapf(err, "scenario %s", path)
		}

		fmt.Fprintf(out, "%s (%s)\n", chalk.Bold.TextStyle(rep.Name), path)
		for _, res := range rep.Results {
			switch {
			case res.Expected == nil:
				fmt.Fprintf(out, "  %s %s\n", chalk.Blue.Color("INFO"), res)
			case res.Passed():
				fmt.Fprintf(out, "  %s %s\n", chalk.Green.Color("PASS"), res)
			default:
				failures++
				fmt.Fprintf(out, "  %s %s\n", chalk.Red.Color("FAIL"), res)
			}
		}
	}
	return failures, nil
}

func genAction(c *cli.Context, out io.Writer) error {
	g, err := generate(c)
	if err != nil {
		return err
	}
	s := scenario.Scenario{
		Name:      c.String("gen"),
		Exclusion: c.String("exclusion"),
		Observer:  []int{1, 1},
		Rows:      gridgen.Rows(g),
	}
	return toml.NewEncoder(out).Encode(s)
}

func viewAction(c *cli.Context) (err error) {
	w, err := loadWorld(c)
	if err != nil {
		return err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return errors.Wrap(err, "could not create screen")
	}
	if err := screen.Init(); err != nil {
		return errors.Wrap(err, "could not initialize screen")
	}
	// Restore the terminal before reporting a crash
	defer func() {
		if r := recover(); r != nil {
			screen.Fini()
			log.Printf("viewer crashed: %v\n%s", r, debug.Stack())
			err = errors.Errorf("viewer crashed: %v", r)
			return
		}
		screen.Fini()
	}()

	v := viewer.New(screen, w.grid, w.observer, viewer.Options{
		Tracer:  w.tracer,
		Radius:  c.Int("radius"),
		Workers: c.Int("workers"),
	})
	return v.Run(context.Background())
}

func serveAction(c *cli.Context) error {
	w, err := loadWorld(c)
	if err != nil {
		return err
	}
	addr := c.String("addr")
	svc := server.NewService(w.grid, w.tracer, c.Int("workers"))

	fmt.Println(chalk.Green.Color(fmt.Sprintf("serving %q on %s", w.name, addr)))
	return http.ListenAndServe(addr, svc.Handler(os.Stdout))
}
