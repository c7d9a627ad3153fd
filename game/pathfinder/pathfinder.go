package pathfinder

import (
	"context"
	"errors"
	"fmt"

	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
)

var (
	// ErrUnknownAlgorithm is returned for an algorithm name the package does not implement
	ErrUnknownAlgorithm = errors.New("unknown pathfinding algorithm")
	// ErrInvalidEndpoint is returned when Start or End lies outside the grid
	ErrInvalidEndpoint = errors.New("endpoint outside grid")
)

// Find searches g for a route from start to end, reporting progress to sink.
// It returns a nil route and nil error when end is unreachable, and ctx.Err()
// when cancelled.
func Find(ctx context.Context, alg Algorithm, g *grid.Grid, start, end grid.Coord, sink instrument.Sink) ([]grid.Coord, error) {
	if _, ok := Describe(alg); !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, alg)
	}
	if !g.InBounds(start) || !g.InBounds(end) {
		return nil, fmt.Errorf("%w: start %s, end %s, grid %dx%d", ErrInvalidEndpoint, start, end, g.Width(), g.Height())
	}
	if !g.IsOpen(start) || !g.IsOpen(end) {
		return nil, nil
	}
	if start == end {
		return []grid.Coord{start}, nil
	}
	if sink == nil {
		sink = instrument.Discard
	}

	s := &search{ctx: ctx, g: g, start: start, end: end, sink: sink}
	switch alg {
	case DFS:
		return s.dfs()
	case BFS:
		return s.bfs()
	case Dijkstra:
		return s.cheapestFirst(false)
	case GBFS:
		return s.greedy()
	case AStar:
		return s.cheapestFirst(true)
	case BidirectionalDFS:
		return s.bidirectionalDFS()
	default:
		return s.bidirectionalBFS()
	}
}

// search holds the state of one Find call
type search struct {
	ctx        context.Context
	g          *grid.Grid
	start, end grid.Coord
	sink       instrument.Sink
	buf        [4]grid.Coord
}

func (s *search) emit(c grid.Coord, tag instrument.Tag) {
	if c == s.start || c == s.end {
		return
	}
	s.sink.Emit(instrument.At(c, tag))
}

// neighbors returns the open neighbors of c in fixed order. The slice is
// reused by the next call.
func (s *search) neighbors(c grid.Coord) []grid.Coord {
	out := s.buf[:0]
	for _, d := range grid.Directions {
		n := c.Add(d)
		if s.g.InBounds(n) && s.g.IsOpen(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s *search) heuristic(c grid.Coord) int {
	return grid.ManhattanDistance(c, s.end)
}

// trace follows prev from end back to start and returns the route start..end
func trace(prev map[grid.Coord]grid.Coord, start, end grid.Coord) []grid.Coord {
	route := []grid.Coord{end}
	for cur := end; cur != start; {
		cur = prev[cur]
		route = append(route, cur)
	}
	for i, j := 0, len(route)-1; i < j; i, j = i+1, j-1 {
		route[i], route[j] = route[j], route[i]
	}
	return route
}

func (s *search) dfs() ([]grid.Coord, error) {
	stack := []grid.Coord{s.start}
	visited := map[grid.Coord]bool{s.start: true}

	for len(stack) > 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		cur := stack[len(stack)-1]
		s.emit(cur, instrument.TagVisited)

		advanced := false
		for _, n := range s.neighbors(cur) {
			if visited[n] {
				continue
			}
			stack = append(stack, n)
			visited[n] = true
			s.emit(n, instrument.TagCurrent)
			if n == s.end {
				return append([]grid.Coord(nil), stack...), nil
			}
			advanced = true
			break
		}

		if !advanced {
			stack = stack[:len(stack)-1]
			s.emit(cur, instrument.TagPath)
		}
	}
	return nil, nil
}

func (s *search) bfs() ([]grid.Coord, error) {
	queue := []grid.Coord{s.start}
	prev := map[grid.Coord]grid.Coord{}
	visited := map[grid.Coord]bool{s.start: true}

	for head := 0; head < len(queue); head++ {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		cur := queue[head]
		s.emit(cur, instrument.TagVisited)

		for _, n := range s.neighbors(cur) {
			if visited[n] {
				continue
			}
			queue = append(queue, n)
			prev[n] = cur
			visited[n] = true
			s.emit(n, instrument.TagFrontier)
			if n == s.end {
				return trace(prev, s.start, s.end), nil
			}
		}
	}
	return nil, nil
}

// cheapestFirst runs Dijkstra, or A* when guided is set. The heap is lazy:
// improved cells are pushed again and stale entries are expanded when popped.
func (s *search) cheapestFirst(guided bool) ([]grid.Coord, error) {
	open := &cellHeap{}
	open.push(0, s.start)
	prev := map[grid.Coord]grid.Coord{}
	cost := map[grid.Coord]int{s.start: 0}

	for open.Len() > 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		cur := open.pop().cell
		if cur == s.end {
			return trace(prev, s.start, s.end), nil
		}
		s.emit(cur, instrument.TagVisited)

		for _, n := range s.neighbors(cur) {
			tentative := cost[cur] + 1
			if known, ok := cost[n]; ok && tentative >= known {
				continue
			}
			prev[n] = cur
			cost[n] = tentative
			priority := tentative
			if guided {
				priority += s.heuristic(n)
			}
			open.push(priority, n)
			s.emit(n, instrument.TagFrontier)
		}
	}
	return nil, nil
}

func (s *search) greedy() ([]grid.Coord, error) {
	open := &cellHeap{}
	open.push(s.heuristic(s.start), s.start)
	prev := map[grid.Coord]grid.Coord{}
	visited := map[grid.Coord]bool{s.start: true}

	for open.Len() > 0 {
		if err := s.ctx.Err(); err != nil {
			return nil, err
		}

		cur := open.pop().cell
		if cur == s.end {
			return trace(prev, s.start, s.end), nil
		}
		s.emit(cur, instrument.TagVisited)

		for _, n := range s.neighbors(cur) {
			if visited[n] {
				continue
			}
			visited[n] = true
			prev[n] = cur
			open.push(s.heuristic(n), n)
			s.emit(n, instrument.TagFrontier)
		}
	}
	return nil, nil
}

// side is one half of a bidirectional search
type side struct {
	root     grid.Coord
	frontier []grid.Coord
	prev     map[grid.Coord]grid.Coord
	seen     map[grid.Coord]bool
}

func newSide(root grid.Coord) *side {
	return &side{
		root:     root,
		frontier: []grid.Coord{root},
		prev:     map[grid.Coord]grid.Coord{},
		seen:     map[grid.Coord]bool{root: true},
	}
}

// join builds start..meet from the forward side and meet..end from the backward side
func join(fwd, bwd *side, meet grid.Coord) []grid.Coord {
	route := trace(fwd.prev, fwd.root, meet)
	for cur := meet; cur != bwd.root; {
		cur = bwd.prev[cur]
		route = append(route, cur)
	}
	return route
}

// stepDFS advances one stack step and reports a cell the other side already knows
func (s *search) stepDFS(own, other *side) (grid.Coord, bool) {
	cur := own.frontier[len(own.frontier)-1]
	s.emit(cur, instrument.TagVisited)

	for _, n := range s.neighbors(cur) {
		if own.seen[n] {
			continue
		}
		own.frontier = append(own.frontier, n)
		own.seen[n] = true
		own.prev[n] = cur
		s.emit(n, instrument.TagCurrent)
		return n, other.seen[n]
	}

	own.frontier = own.frontier[:len(own.frontier)-1]
	s.emit(cur, instrument.TagPath)
	return grid.Coord{}, false
}

func (s *search) bidirectionalDFS() ([]grid.Coord, error) {
	fwd, bwd := newSide(s.start), newSide(s.end)

	for {
		for _, pair := range [2][2]*side{{fwd, bwd}, {bwd, fwd}} {
			if err := s.ctx.Err(); err != nil {
				return nil, err
			}
			own, other := pair[0], pair[1]
			if len(own.frontier) == 0 {
				return nil, nil
			}
			if meet, ok := s.stepDFS(own, other); ok {
				return join(fwd, bwd, meet), nil
			}
		}
	}
}

// stepBFS expands one full layer and reports the first cell the other side already knows
func (s *search) stepBFS(own, other *side) (grid.Coord, bool, error) {
	layer := own.frontier
	own.frontier = nil

	for _, cur := range layer {
		if err := s.ctx.Err(); err != nil {
			return grid.Coord{}, false, err
		}
		s.emit(cur, instrument.TagVisited)

		for _, n := range s.neighbors(cur) {
			if own.seen[n] {
				continue
			}
			own.frontier = append(own.frontier, n)
			own.seen[n] = true
			own.prev[n] = cur
			s.emit(n, instrument.TagFrontier)
			if other.seen[n] {
				return n, true, nil
			}
		}
	}
	return grid.Coord{}, false, nil
}

func (s *search) bidirectionalBFS() ([]grid.Coord, error) {
	fwd, bwd := newSide(s.start), newSide(s.end)

	for {
		for _, pair := range [2][2]*side{{fwd, bwd}, {bwd, fwd}} {
			own, other := pair[0], pair[1]
			if len(own.frontier) == 0 {
				return nil, nil
			}
			meet, ok, err := s.stepBFS(own, other)
			if err != nil {
				return nil, err
			}
			if ok {
				return join(fwd, bwd, meet), nil
			}
		}
	}
}
