// Command validate checks the maze preset files (JSON or TOML) in the
// ../configs directory. For every preset it checks:
//   - the file parses and names a preset
//   - dimensions are odd and within bounds
//   - the generator and pathfinder are known algorithms
//   - delay_ms is within the allowed range
//   - the generator carves a perfect maze at the preset size
//   - the pathfinder finds the unique route between the default endpoints
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/maze-lab/game/engine"
	"github.com/wricardo/maze-lab/game/generator"
	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/pathfinder"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...any) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateConfig loads a preset file and runs it end to end with a fixed seed
func validateConfig(filePath string, seed uint64) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	config, err := engine.LoadMazeConfig(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	result.info("%s: %dx%d, %s + %s, %dms", config.Name, config.Width, config.Height, config.Generator, config.Pathfinder, config.DelayMS)

	if id := strings.TrimSuffix(result.File, filepath.Ext(result.File)); id != config.Name {
		result.info("file %s is listed as %q but names itself %q", result.File, id, config.Name)
	}

	r := validateMaze(config, seed)
	result.Valid = result.Valid && r.Valid
	result.Errors = append(result.Errors, r.Errors...)
	return result
}

// validateMaze generates the preset's maze and solves it with the preset's pathfinder
func validateMaze(config *engine.MazeConfig, seed uint64) ValidationResult {
	result := ValidationResult{Valid: true, Errors: []string{}}

	genAlg, err := config.GeneratorAlgorithm()
	if err != nil {
		result.fail("%v", err)
		return result
	}
	pfAlg, err := config.PathfinderAlgorithm()
	if err != nil {
		result.fail("%v", err)
		return result
	}

	g, err := grid.New(config.Width, config.Height)
	if err != nil {
		result.fail("%v", err)
		return result
	}
	ctx := context.Background()
	if err := generator.New(generator.NewSeededSource(seed)).Generate(ctx, genAlg, g, nil); err != nil {
		result.fail("generation failed: %v", err)
		return result
	}
	if err := engine.VerifyPerfectMaze(g); err != nil {
		result.fail("%s did not carve a perfect maze: %v", genAlg, err)
		return result
	}
	result.info("%s carved a perfect maze with %d rooms", genAlg, len(g.Rooms()))

	start := grid.Coord{X: 1, Y: 1}
	end := grid.Coord{X: g.Width() - 2, Y: g.Height() - 2}
	route, err := pathfinder.Find(ctx, pfAlg, g, start, end, nil)
	switch {
	case err != nil:
		result.fail("search failed: %v", err)
	case route == nil:
		result.fail("%s found no route from %s to %s", pfAlg, start, end)
	case route[0] != start || route[len(route)-1] != end:
		result.fail("%s route runs %s -> %s, expected %s -> %s", pfAlg, route[0], route[len(route)-1], start, end)
	default:
		result.info("%s found a route of %d steps", pfAlg, len(route))
	}
	return result
}

// presetFiles lists the JSON and TOML files of dir in name order
func presetFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.toml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// main validates every preset of the config directory, printing a concise
// report and exiting with non-zero status if any are invalid.
func main() {
	configDir := flag.String("dir", "../configs", "Directory containing maze presets")
	seed := flag.Uint64("seed", 1, "Seed used for the trial generation")
	flag.Parse()

	files, err := presetFiles(*configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No presets found in %s\n", *configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file, *seed)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All presets are valid!")
	} else {
		fmt.Println("❌ Some presets have errors")
		os.Exit(1)
	}
}
