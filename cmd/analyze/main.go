// Command analyze prints quick, human-readable statistics about the maze
// presets in the project's configs directory. For each preset it carves one
// maze with a fixed seed, runs every pathfinder over it and compares how many
// cells each one visited before reaching the end.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// SearchStats is the cost of one pathfinder on one maze
type SearchStats struct {
	Algorithm pathfinder.Algorithm
	Steps     int
	Visited   int
	Frontier  int
	Events    int
	Elapsed   time.Duration
}

// MazeAnalysis summarizes one generated maze and every search over it
type MazeAnalysis struct {
	Config    *engine.MazeConfig
	Rooms     int
	DeadEnds  int
	Junctions int
	Searches  []SearchStats
}

func main() {
	configDir := flag.String("dir", "configs", "Directory containing maze presets")
	seed := flag.Uint64("seed", 1, "Seed used to carve each maze")
	flag.Parse()

	var files []string
	for _, pattern := range []string{"*.json", "*.toml"} {
		matches, _ := filepath.Glob(filepath.Join(*configDir, pattern))
		files = append(files, matches...)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		if err := analyzeConfig(os.Stdout, file, *seed); err != nil {
			fmt.Printf("Error: %v\n", err)
		}
	}
}

func analyzeConfig(w io.Writer, path string, seed uint64) error {
	config, err := engine.LoadMazeConfig(path)
	if err != nil {
		return err
	}

	analysis, err := analyzeMaze(context.Background(), config, seed)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "Name: %s\n", config.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", config.Width, config.Height)
	fmt.Fprintf(w, "Generator: %s\n", config.Generator)
	fmt.Fprintf(w, "Rooms: %d  Dead ends: %d  Junctions: %d\n", analysis.Rooms, analysis.DeadEnds, analysis.Junctions)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tSTEPS\tVISITED\tFRONTIER\tEVENTS\tTIME")
	for _, s := range analysis.Searches {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\n", s.Algorithm, s.Steps, s.Visited, s.Frontier, s.Events, s.Elapsed.Round(time.Microsecond))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	best := analysis.Searches[0]
	for _, s := range analysis.Searches[1:] {
		if s.Visited < best.Visited {
			best = s
		}
	}
	fmt.Fprintf(w, "✅ %s reached the end after visiting the fewest cells (%d)\n", best.Algorithm, best.Visited)
	if string(best.Algorithm) != config.Pathfinder {
		fmt.Fprintf(w, "⚠️  preset pathfinder is %s\n", config.Pathfinder)
	}
	return nil
}

// analyzeMaze carves the preset's maze and runs every pathfinder from the
// top-left room to the bottom-right room
func analyzeMaze(ctx context.Context, config *engine.MazeConfig, seed uint64) (*MazeAnalysis, error) {
	alg, err := config.GeneratorAlgorithm()
	if err != nil {
		return nil, err
	}
	g, err := grid.New(config.Width, config.Height)
	if err != nil {
		return nil, err
	}
	if err := generator.New(generator.NewSeededSource(seed)).Generate(ctx, alg, g, nil); err != nil {
		return nil, err
	}

	analysis := &MazeAnalysis{Config: config}
	rooms := g.Rooms()
	analysis.Rooms = len(rooms)
	for _, room := range rooms {
		switch openNeighbors(g, room) {
		case 1:
			analysis.DeadEnds++
		case 3, 4:
			analysis.Junctions++
		}
	}

	start := grid.Coord{X: 1, Y: 1}
	end := grid.Coord{X: g.Width() - 2, Y: g.Height() - 2}
	for _, info := range pathfinder.Algorithms() {
		rec := instrument.NewRecorder()
		began := time.Now()
		route, err := pathfinder.Find(ctx, info.Algorithm, g, start, end, rec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", info.Algorithm, err)
		}
		analysis.Searches = append(analysis.Searches, SearchStats{
			Algorithm: info.Algorithm,
			Steps:     len(route),
			Visited:   rec.Count(instrument.TagVisited),
			Frontier:  rec.Count(instrument.TagFrontier),
			Events:    rec.Len(),
			Elapsed:   time.Since(began),
		})
	}
	return analysis, nil
}

func openNeighbors(g *grid.Grid, c grid.Coord) int {
	n := 0
	for _, d := range grid.Directions {
		if next := c.Add(d); g.InBounds(next) && g.IsOpen(next) {
			n++
		}
	}
	return n
}
