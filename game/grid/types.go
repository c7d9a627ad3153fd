package grid

import "fmt"

// Kind is the state of a single grid cell
type Kind uint8

const (
	Open Kind = 0
	Wall Kind = 1

	// Validation constants
	MinDimension = 5
	MaxDimension = 101
)

// String returns a readable cell kind
func (k Kind) String() string {
	if k == Wall {
		return "wall"
	}
	return "open"
}

// Coord represents x,y coordinates
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns c moved by d
func (c Coord) Add(d Direction) Coord {
	return Coord{X: c.X + d.DX, Y: c.Y + d.DY}
}

// Scale returns c moved n times by d
func (c Coord) Scale(d Direction, n int) Coord {
	return Coord{X: c.X + d.DX*n, Y: c.Y + d.DY*n}
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

// Direction is a unit axis step
type Direction struct {
	DX int
	DY int
}

// Directions is the fixed neighbor order: left, up, right, down.
// Callers that need a random order must shuffle a copy.
var Directions = [4]Direction{
	{DX: -1, DY: 0},
	{DX: 0, DY: -1},
	{DX: 1, DY: 0},
	{DX: 0, DY: 1},
}

// ManhattanDistance calculates the Manhattan distance between two coordinates
func ManhattanDistance(from, to Coord) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}
