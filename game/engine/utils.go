package engine

import (
	"fmt"

	"github.com/wricardo/maze-lab/game/grid"
)

// CountOpenWalls counts open wall-candidate cells (cells with an even coordinate)
func CountOpenWalls(g *grid.Grid) int {
	count := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := grid.Coord{X: x, Y: y}
			if !grid.IsRoom(c) && g.IsOpen(c) {
				count++
			}
		}
	}
	return count
}

// VerifyPerfectMaze checks that g is a perfect maze: walled border, open rooms,
// rooms-1 open wall-candidates and every open cell reachable from the first room.
func VerifyPerfectMaze(g *grid.Grid) error {
	if err := grid.ValidateDimensions(g.Width(), g.Height()); err != nil {
		return err
	}

	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := grid.Coord{X: x, Y: y}
			if !g.InInterior(c) && g.IsOpen(c) {
				return fmt.Errorf("border cell %s is open", c)
			}
			if grid.IsRoom(c) && !g.IsOpen(c) {
				return fmt.Errorf("room %s is walled", c)
			}
			if x%2 == 0 && y%2 == 0 && g.IsOpen(c) {
				return fmt.Errorf("wall intersection %s is open", c)
			}
		}
	}

	rooms := g.Rooms()
	if open := CountOpenWalls(g); open != len(rooms)-1 {
		return fmt.Errorf("expected %d open walls for %d rooms, got %d", len(rooms)-1, len(rooms), open)
	}

	reached := Reachable(g, rooms[0])
	if len(reached) != g.CountOpen() {
		return fmt.Errorf("only %d of %d open cells are reachable from %s", len(reached), g.CountOpen(), rooms[0])
	}
	return nil
}

// Reachable returns every open cell connected to from
func Reachable(g *grid.Grid, from grid.Coord) map[grid.Coord]bool {
	seen := map[grid.Coord]bool{}
	if !g.InBounds(from) || !g.IsOpen(from) {
		return seen
	}

	seen[from] = true
	queue := []grid.Coord{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, d := range grid.Directions {
			n := cur.Add(d)
			if g.InBounds(n) && g.IsOpen(n) && !seen[n] {
				seen[n] = true
				queue = append(queue, n)
			}
		}
	}
	return seen
}

// RenderSnapshot draws the maze with S, E and '.' for the route
func RenderSnapshot(s Snapshot) string {
	overlay := make(map[grid.Coord]rune, len(s.Route)+2)
	for _, c := range s.Route {
		overlay[c] = '.'
	}
	overlay[s.Start] = 'S'
	overlay[s.End] = 'E'
	return s.Grid.Render(overlay)
}
