package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDimensions is returned when a width or height is even, too small or too large.
var ErrInvalidDimensions = errors.New("invalid maze dimensions")

// Grid is a width × height array of cells stored row-major
type Grid struct {
	width  int
	height int
	cells  []Kind
}

// ValidateDimensions checks that width and height are odd and within bounds
func ValidateDimensions(width, height int) error {
	if width%2 == 0 || height%2 == 0 {
		return fmt.Errorf("%w: dimensions must be odd, got %dx%d", ErrInvalidDimensions, width, height)
	}
	if width < MinDimension || height < MinDimension {
		return fmt.Errorf("%w: dimensions must be at least %d, got %dx%d", ErrInvalidDimensions, MinDimension, width, height)
	}
	if width > MaxDimension || height > MaxDimension {
		return fmt.Errorf("%w: dimensions must be at most %d, got %dx%d", ErrInvalidDimensions, MaxDimension, width, height)
	}
	return nil
}

// New creates a grid with a walled border and an open interior
func New(width, height int) (*Grid, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return nil, err
	}

	g := &Grid{
		width:  width,
		height: height,
		cells:  make([]Kind, width*height),
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				g.cells[y*width+x] = Wall
			}
		}
	}
	return g, nil
}

// FromCells builds a grid of any positive size from row-major cells.
// It performs no maze invariant checks and is used when restoring encoded grids.
func FromCells(width, height int, cells []Kind) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", width, height)
	}
	if len(cells) != width*height {
		return nil, fmt.Errorf("grid needs %d cells, got %d", width*height, len(cells))
	}

	g := &Grid{width: width, height: height, cells: make([]Kind, len(cells))}
	copy(g.cells, cells)
	return g, nil
}

// Width returns the number of columns
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows
func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether c lies inside the grid
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// InInterior reports whether c lies strictly inside the border ring
func (g *Grid) InInterior(c Coord) bool {
	return c.X > 0 && c.X < g.width-1 && c.Y > 0 && c.Y < g.height-1
}

// At returns the cell kind at c. It panics when c is out of range.
func (g *Grid) At(c Coord) Kind {
	return g.cells[g.index(c)]
}

// IsOpen reports whether the cell at c is open
func (g *Grid) IsOpen(c Coord) bool {
	return g.At(c) == Open
}

// Set changes the cell kind at c. It panics when c is out of range.
func (g *Grid) Set(c Coord, k Kind) {
	g.cells[g.index(c)] = k
}

// Cells returns a row-major copy of all cells
func (g *Grid) Cells() []Kind {
	out := make([]Kind, len(g.cells))
	copy(out, g.cells)
	return out
}

// Clone returns a deep copy of the grid
func (g *Grid) Clone() *Grid {
	return &Grid{width: g.width, height: g.height, cells: g.Cells()}
}

// Equal reports whether both grids have the same size and cells
func (g *Grid) Equal(other *Grid) bool {
	if other == nil || g.width != other.width || g.height != other.height {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Rooms returns every room coordinate in row-major order
func (g *Grid) Rooms() []Coord {
	rooms := make([]Coord, 0, ((g.width-1)/2)*((g.height-1)/2))
	for y := 1; y < g.height-1; y += 2 {
		for x := 1; x < g.width-1; x += 2 {
			rooms = append(rooms, Coord{X: x, Y: y})
		}
	}
	return rooms
}

// CountOpen counts open cells in the grid
func (g *Grid) CountOpen() int {
	count := 0
	for _, k := range g.cells {
		if k == Open {
			count++
		}
	}
	return count
}

// String renders the grid as ASCII, '#' for walls and ' ' for open cells
func (g *Grid) String() string {
	return g.Render(nil)
}

// Render draws the grid as ASCII with optional overlay runes per coordinate
func (g *Grid) Render(overlay map[Coord]rune) string {
	var b strings.Builder
	b.Grow((g.width + 1) * g.height)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			c := Coord{X: x, Y: y}
			if r, ok := overlay[c]; ok {
				b.WriteRune(r)
				continue
			}
			if g.cells[y*g.width+x] == Wall {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// IsRoom reports whether c sits on odd/odd coordinates
func IsRoom(c Coord) bool {
	return c.X%2 == 1 && c.Y%2 == 1
}

func (g *Grid) index(c Coord) int {
	if !g.InBounds(c) {
		panic(fmt.Sprintf("grid: coordinate %s out of range %dx%d", c, g.width, g.height))
	}
	return c.Y*g.width + c.X
}
