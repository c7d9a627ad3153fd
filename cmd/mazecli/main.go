// Command mazecli generates, solves and checks mazes offline.
//
// Mazes are exchanged as codec strings ("width,height,base64"), so the output
// of one command can be piped into another:
//
//	mazecli generate -a kruskal -W 41 -H 21 --seed 7 --quiet | mazecli solve -a astar
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/maze-lab/game/codec"
	"github.com/wricardo/maze-lab/game/config"
	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

var errNoRoute = errors.New("no route")

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.SetFlags(0)
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "mazecli",
		Usage: "generate, solve and verify perfect mazes",
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "carve a new maze and print it with its codec string",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "algorithm", Aliases: []string{"a"}, Value: string(generator.DFS), Usage: "dfs, prim, kruskal or recursive_division"},
					&cli.IntFlag{Name: "width", Aliases: []string{"W"}, Value: 31, Usage: "odd width"},
					&cli.IntFlag{Name: "height", Aliases: []string{"H"}, Value: 31, Usage: "odd height"},
					&cli.IntFlag{Name: "seed", Usage: "random seed, 0 picks one"},
					&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "print only the codec string"},
				},
				Action: generateAction,
			},
			{
				Name:      "solve",
				Usage:     "search a route through an encoded maze",
				ArgsUsage: "[encoded]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "algorithm", Aliases: []string{"a"}, Value: string(pathfinder.AStar), Usage: "dfs, bfs, dijkstra, gbfs, astar, bidirectional_dfs or bidirectional_bfs"},
					&cli.StringFlag{Name: "start", Usage: "start cell as x,y (default 1,1)"},
					&cli.StringFlag{Name: "end", Usage: "end cell as x,y (default bottom-right room)"},
				},
				Action: solveAction,
			},
			{
				Name:      "verify",
				Usage:     "check that an encoded maze is a perfect maze",
				ArgsUsage: "[encoded]",
				Action:    verifyAction,
			},
			{
				Name:      "decode",
				Usage:     "draw an encoded maze",
				ArgsUsage: "[encoded]",
				Action:    decodeAction,
			},
			{
				Name:  "encode",
				Usage: "read a maze drawn with '#' walls from stdin and print its codec string",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					g, err := parseDrawing(cmd.Root().Reader)
					if err != nil {
						return err
					}
					fmt.Fprintln(cmd.Root().Writer, codec.Encode(g))
					return nil
				},
			},
			{
				Name:  "presets",
				Usage: "list the maze presets of a directory",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Value: "configs", Sources: cli.EnvVars("CONFIG_DIR")},
				},
				Action: presetsAction,
			},
		},
	}
}

func generateAction(ctx context.Context, cmd *cli.Command) error {
	alg, err := generator.ParseAlgorithm(cmd.String("algorithm"))
	if err != nil {
		return err
	}

	g, err := grid.New(int(cmd.Int("width")), int(cmd.Int("height")))
	if err != nil {
		return err
	}

	var src generator.Source
	if seed := cmd.Int("seed"); seed != 0 {
		src = generator.NewSeededSource(uint64(seed))
	}

	events := 0
	started := time.Now()
	err = generator.New(src).Generate(ctx, alg, g, instrument.SinkFunc(func(instrument.CellEvent) { events++ }))
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	if !cmd.Bool("quiet") {
		start, end := defaultEndpoints(g)
		fmt.Fprint(out, engine.RenderSnapshot(engine.Snapshot{Grid: g, Start: start, End: end}))
		fmt.Fprintf(out, "%s %dx%d: %d events in %s\n\n", alg, g.Width(), g.Height(), events, time.Since(started).Round(time.Microsecond))
	}
	fmt.Fprintln(out, codec.Encode(g))
	return nil
}

func solveAction(ctx context.Context, cmd *cli.Command) error {
	alg, err := pathfinder.ParseAlgorithm(cmd.String("algorithm"))
	if err != nil {
		return err
	}

	g, err := readMaze(cmd)
	if err != nil {
		return err
	}

	start, end := defaultEndpoints(g)
	if s := cmd.String("start"); s != "" {
		if start, err = parseCoord(s); err != nil {
			return err
		}
	}
	if s := cmd.String("end"); s != "" {
		if end, err = parseCoord(s); err != nil {
			return err
		}
	}

	rec := instrument.NewRecorder()
	started := time.Now()
	route, err := pathfinder.Find(ctx, alg, g, start, end, rec)
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	fmt.Fprint(out, engine.RenderSnapshot(engine.Snapshot{Grid: g, Start: start, End: end, Route: route}))
	if route == nil {
		fmt.Fprintf(out, "%s: %d cells visited\n", alg, rec.Count(instrument.TagVisited))
		return fmt.Errorf("%w from %s to %s", errNoRoute, start, end)
	}
	fmt.Fprintf(out, "%s: route of %d steps, %d cells visited in %s\n", alg, len(route), rec.Count(instrument.TagVisited), time.Since(started).Round(time.Microsecond))
	return nil
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	g, err := readMaze(cmd)
	if err != nil {
		return err
	}
	if err := engine.VerifyPerfectMaze(g); err != nil {
		return fmt.Errorf("not a perfect maze: %w", err)
	}
	fmt.Fprintf(cmd.Root().Writer, "perfect maze: %dx%d, %d rooms\n", g.Width(), g.Height(), len(g.Rooms()))
	return nil
}

func decodeAction(ctx context.Context, cmd *cli.Command) error {
	g, err := readMaze(cmd)
	if err != nil {
		return err
	}
	start, end := defaultEndpoints(g)
	fmt.Fprint(cmd.Root().Writer, engine.RenderSnapshot(engine.Snapshot{Grid: g, Start: start, End: end}))
	return nil
}

func presetsAction(ctx context.Context, cmd *cli.Command) error {
	manager, err := config.NewManager(cmd.String("dir"))
	if err != nil {
		return err
	}
	presets, err := manager.ListConfigs()
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	for _, p := range presets {
		fmt.Fprintf(out, "%-12s %3dx%-3d %-18s %-18s %4dms  %s\n",
			p.ConfigID, p.Width, p.Height, p.Generator, p.Pathfinder, p.DelayMS, p.Description)
	}
	return nil
}

// readMaze decodes the first argument, or the first non-empty stdin line when there is none
func readMaze(cmd *cli.Command) (*grid.Grid, error) {
	encoded := cmd.Args().First()
	if encoded == "" || encoded == "-" {
		scanner := bufio.NewScanner(cmd.Root().Reader)
		scanner.Buffer(make([]byte, 64*1024), 1024*1024)
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				encoded = line
			}
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	if encoded == "" || encoded == "-" {
		return nil, errors.New("no encoded maze given")
	}
	return codec.Decode(encoded)
}

// parseDrawing reads rows where '#' is a wall and any other rune is open
func parseDrawing(r io.Reader) (*grid.Grid, error) {
	var rows [][]rune
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, []rune(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("empty drawing")
	}

	width, height := len(rows[0]), len(rows)
	cells := make([]grid.Kind, 0, width*height)
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", y, len(row), width)
		}
		for _, r := range row {
			if r == '#' {
				cells = append(cells, grid.Wall)
			} else {
				cells = append(cells, grid.Open)
			}
		}
	}
	return grid.FromCells(width, height, cells)
}

func parseCoord(s string) (grid.Coord, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Coord{}, fmt.Errorf("bad coordinate %q, want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Coord{}, fmt.Errorf("bad coordinate %q: %w", s, err)
	}
	return grid.Coord{X: x, Y: y}, nil
}

func defaultEndpoints(g *grid.Grid) (grid.Coord, grid.Coord) {
	return grid.Coord{X: 1, Y: 1}, grid.Coord{X: g.Width() - 2, Y: g.Height() - 2}
}
