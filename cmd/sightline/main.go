package main

import (
	"fmt"
	"os"

	"github.com/ttacon/chalk"
	"github.com/urfave/cli"
)

func main() {
	app := makeApp()
	if err := app.Run(os.Args); err != nil {
		failWith(err)
	}
}

func failWith(err error) {
	if exit, ok := err.(cli.ExitCoder); ok {
		if msg := exit.Error(); msg != "" {
			fmt.Fprintln(os.Stderr, chalk.Red.Color(msg))
		}
		os.Exit(exit.ExitCode())
	}
	fmt.Fprintln(os.Stderr, chalk.Red.Color("error: "+err.Error()))
	os.Exit(1)
}

func makeApp() *cli.App {
	app := cli.NewApp()
	app.Name = "sightline"
	app.Usage = "line-of-sight queries on tile grids"

	var logFile *os.File
	app.Flags = []cli.Flag{
		cli.BoolFlag{Name: "debug", Usage: "Write debug logs to logs/sightline.log"},
	}
	app.Before = func(c *cli.Context) error {
		logFile = setupLogging(c.Bool("debug"))
		return nil
	}
	app.After = func(c *cli.Context) error {
		if logFile != nil {
			return logFile.Close()
		}
		return nil
	}

	gridFlags := []cli.Flag{
		cli.StringFlag{Name: "scenario, s", Usage: "TOML scenario file providing the map"},
		cli.StringFlag{Name: "gen", Value: "maze", Usage: "Generator when no scenario is given: maze or walls"},
		cli.IntFlag{Name: "width", Value: 41, Usage: "Generated map width"},
		cli.IntFlag{Name: "height", Value: 21, Usage: "Generated map height"},
		cli.Int64Flag{Name: "seed", Usage: "Generator seed (0 = random)"},
		cli.Float64Flag{Name: "braid", Value: 0.3, Usage: "Maze braiding factor [0-1]"},
		cli.IntFlag{Name: "segments", Value: 12, Usage: "Wall segments for the walls generator"},
		cli.StringFlag{Name: "exclusion", Usage: "Override exclusion policy: axis or cell"},
	}

	app.Commands = []cli.Command{
		{
			Name:      "query",
			Aliases:   []string{"q"},
			Usage:     "Trace one line of sight",
			ArgsUsage: "X1,Y1 X2,Y2",
			Flags:     gridFlags,
			Action:    queryAction,
		},
		{
			Name:      "check",
			Usage:     "Run the queries of scenario files against their expectations",
			ArgsUsage: "FILE...",
			Action:    checkAction,
		},
		{
			Name:  "gen",
			Usage: "Generate a map and print it as a scenario file",
			Flags: gridFlags[1:],
			Action: func(c *cli.Context) error {
				return genAction(c, os.Stdout)
			},
		},
		{
			Name:  "view",
			Usage: "Explore line of sight interactively in the terminal",
			Flags: append(gridFlags,
				cli.IntFlag{Name: "radius", Usage: "Sight radius (0 = unlimited)"},
				cli.IntFlag{Name: "workers", Usage: "Field workers (0 = GOMAXPROCS)"},
			),
			Action: viewAction,
		},
		{
			Name:  "serve",
			Usage: "Serve line-of-sight queries over HTTP",
			Flags: append(gridFlags,
				cli.StringFlag{Name: "addr", Value: ":8080", Usage: "Listen address"},
				cli.IntFlag{Name: "workers", Usage: "Field workers per request (0 = GOMAXPROCS)"},
			),
			Action: serveAction,
		},
	}
	return app
}
