package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
	"github.com/wricardo/maze-lab/game/unionfind"
)

// ErrUnknownAlgorithm is returned for an algorithm name the package does not implement
var ErrUnknownAlgorithm = errors.New("unknown generation algorithm")

// Generator carves mazes using a configurable random source
type Generator struct {
	rng Source
}

// New creates a generator. A nil source uses DefaultSource.
func New(rng Source) *Generator {
	if rng == nil {
		rng = DefaultSource()
	}
	return &Generator{rng: rng}
}

var defaultGenerator = New(nil)

// Generate carves a maze with the package-level generator
func Generate(ctx context.Context, alg Algorithm, g *grid.Grid, sink instrument.Sink) error {
	return defaultGenerator.Generate(ctx, alg, g, sink)
}

// Generate resets the interior of g to open and carves a perfect maze into it,
// reporting every cell it marks to sink. On cancellation it returns ctx.Err()
// and g holds a partial maze.
func (gen *Generator) Generate(ctx context.Context, alg Algorithm, g *grid.Grid, sink instrument.Sink) error {
	if err := grid.ValidateDimensions(g.Width(), g.Height()); err != nil {
		return err
	}
	if sink == nil {
		sink = instrument.Discard
	}

	c := &carver{ctx: ctx, g: g, sink: sink, rng: gen.rng}
	c.clearInterior()

	switch alg {
	case DFS:
		return c.dfs()
	case Prim:
		return c.prim()
	case Kruskal:
		return c.kruskal()
	case RecursiveDivision:
		return c.division()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
}

// carver holds the state of one generation call
type carver struct {
	ctx  context.Context
	g    *grid.Grid
	sink instrument.Sink
	rng  Source
}

func (c *carver) emit(at grid.Coord, tag instrument.Tag) {
	c.sink.Emit(instrument.At(at, tag))
}

func (c *carver) mark(at grid.Coord, k grid.Kind, tag instrument.Tag) {
	c.g.Set(at, k)
	c.emit(at, tag)
}

func (c *carver) clearInterior() {
	for y := 1; y < c.g.Height()-1; y++ {
		for x := 1; x < c.g.Width()-1; x++ {
			c.g.Set(grid.Coord{X: x, Y: y}, grid.Open)
		}
	}
}

// fillWalls closes every interior wall-candidate: even columns first, then even rows.
// Cells where the two meet are written twice.
func (c *carver) fillWalls() {
	w, h := c.g.Width(), c.g.Height()
	for x := 2; x < w-1; x += 2 {
		for y := 1; y < h-1; y++ {
			c.mark(grid.Coord{X: x, Y: y}, grid.Wall, instrument.TagWall)
		}
	}
	for y := 2; y < h-1; y += 2 {
		for x := 1; x < w-1; x++ {
			c.mark(grid.Coord{X: x, Y: y}, grid.Wall, instrument.TagWall)
		}
	}
}

func (c *carver) randomRoom() grid.Coord {
	return grid.Coord{
		X: 1 + 2*c.rng.IntN((c.g.Width()-1)/2),
		Y: 1 + 2*c.rng.IntN((c.g.Height()-1)/2),
	}
}

func (c *carver) dfs() error {
	c.fillWalls()

	start := c.randomRoom()
	stack := []grid.Coord{start}
	visited := map[grid.Coord]bool{start: true}
	dirs := grid.Directions

	for len(stack) > 0 {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		cur := stack[len(stack)-1]
		c.emit(cur, instrument.TagVisited)

		c.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

		advanced := false
		for _, d := range dirs {
			next := cur.Scale(d, 2)
			if !c.g.InInterior(next) || visited[next] {
				continue
			}
			c.mark(cur.Add(d), grid.Open, instrument.TagPath)
			c.emit(next, instrument.TagCurrent)
			stack = append(stack, next)
			visited[next] = true
			advanced = true
			break
		}

		if !advanced {
			stack = stack[:len(stack)-1]
			c.emit(cur, instrument.TagPath)
		}
	}
	return nil
}

// frontierWall is a wall-candidate plus the direction leading to the room it would connect
type frontierWall struct {
	wall grid.Coord
	dir  grid.Direction
}

func (c *carver) prim() error {
	c.fillWalls()

	start := c.randomRoom()
	visited := map[grid.Coord]bool{start: true}

	var frontier []frontierWall
	for _, d := range grid.Directions {
		n := start.Add(d)
		if c.g.InInterior(n) {
			frontier = append(frontier, frontierWall{wall: n, dir: d})
			c.emit(n, instrument.TagFrontier)
		}
	}

	for len(frontier) > 0 {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		i := c.rng.IntN(len(frontier))
		fw := frontier[i]
		last := len(frontier) - 1
		frontier[i] = frontier[last]
		frontier = frontier[:last]

		c.emit(fw.wall, instrument.TagCurrent)

		room := fw.wall.Add(fw.dir)
		if visited[room] {
			c.emit(fw.wall, instrument.TagWall)
			continue
		}

		c.mark(fw.wall, grid.Open, instrument.TagPath)
		visited[room] = true
		for _, d := range grid.Directions {
			n := room.Add(d)
			if c.g.InInterior(n) && !visited[n.Add(d)] {
				frontier = append(frontier, frontierWall{wall: n, dir: d})
				c.emit(n, instrument.TagFrontier)
			}
		}
	}
	return nil
}

// edge joins two rooms through the wall-candidate between them
type edge struct {
	a, b grid.Coord
	wall grid.Coord
}

var (
	right = grid.Direction{DX: 1}
	down  = grid.Direction{DY: 1}
)

func (c *carver) kruskal() error {
	c.fillWalls()

	rooms := c.g.Rooms()
	sets := unionfind.New(rooms...)

	edges := make([]edge, 0, 2*len(rooms))
	for _, r := range rooms {
		for _, d := range []grid.Direction{right, down} {
			if other := r.Scale(d, 2); c.g.InInterior(other) {
				edges = append(edges, edge{a: r, b: other, wall: r.Add(d)})
			}
		}
	}
	c.rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })

	for _, e := range edges {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		c.emit(e.wall, instrument.TagCurrent)
		if sets.Union(e.a, e.b) {
			c.mark(e.wall, grid.Open, instrument.TagPath)
		} else {
			c.emit(e.wall, instrument.TagWall)
		}
	}
	return nil
}

// region is an inclusive rectangle whose edges lie on walls
type region struct {
	x1, x2, y1, y2 int
}

func (c *carver) division() error {
	stack := []region{{x1: 0, x2: c.g.Width() - 1, y1: 0, y2: c.g.Height() - 1}}

	for len(stack) > 0 {
		if err := c.ctx.Err(); err != nil {
			return err
		}

		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if r.x2-r.x1 < 4 || r.y2-r.y1 < 4 {
			continue
		}

		px := r.x1 + 2 + 2*c.rng.IntN((r.x2-r.x1-2)/2)
		py := r.y1 + 2 + 2*c.rng.IntN((r.y2-r.y1-2)/2)

		for y := r.y1 + 1; y < r.y2; y++ {
			c.mark(grid.Coord{X: px, Y: y}, grid.Wall, instrument.TagWall)
		}
		for x := r.x1 + 1; x < r.x2; x++ {
			c.mark(grid.Coord{X: x, Y: py}, grid.Wall, instrument.TagWall)
		}

		openings := [4]grid.Coord{
			{X: r.x1 + 1 + 2*c.rng.IntN((px-r.x1)/2), Y: py},
			{X: px, Y: r.y1 + 1 + 2*c.rng.IntN((py-r.y1)/2)},
			{X: px + 1 + 2*c.rng.IntN((r.x2-px)/2), Y: py},
			{X: px, Y: py + 1 + 2*c.rng.IntN((r.y2-py)/2)},
		}
		order := [4]int{0, 1, 2, 3}
		c.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, i := range order[:3] {
			c.g.Set(openings[i], grid.Open)
			c.emit(openings[i], instrument.TagCurrent)
			c.emit(openings[i], instrument.TagPath)
		}

		// Pushed in reverse so the top-left quadrant is carved first.
		stack = append(stack,
			region{x1: px, x2: r.x2, y1: py, y2: r.y2},
			region{x1: r.x1, x2: px, y1: py, y2: r.y2},
			region{x1: px, x2: r.x2, y1: r.y1, y2: py},
			region{x1: r.x1, x2: px, y1: r.y1, y2: py},
		)
	}
	return nil
}
