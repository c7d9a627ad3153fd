// Package generator carves perfect mazes into a grid.
//
// The generator package implements four randomized spanning-tree algorithms:
//   - DFS: randomized depth-first backtracker over an explicit stack
//   - Prim: randomized Prim over a frontier of wall-candidates
//   - Kruskal: shuffled edge list joined through a union-find
//   - RecursiveDivision: cross-shaped walls with three of four openings
//
// Every algorithm leaves the border walled, keeps rooms (odd/odd cells) open
// and opens exactly rooms-1 wall-candidates, so any two rooms are joined by a
// single simple path.
//
// Usage:
//
//	g, _ := grid.New(31, 31)
//	gen := generator.New(generator.NewSeededSource(42))
//	err := gen.Generate(ctx, generator.Prim, g, sink)
//
// Randomness:
//
// Without a seeded source the package-level generator draws from the
// process-wide math/rand/v2 source, so repeated calls produce different mazes.
//
// Concurrency:
//
// A Generator may be shared only when its Source is safe for concurrent use.
// The default source is; sources from NewSeededSource are not.
package generator
