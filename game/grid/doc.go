// Package grid provides the cell grid that mazes are carved into.
//
// The grid package implements:
//   - Coordinates and the four axis directions
//   - Open/Wall cells stored row-major
//   - Dimension validation for generated mazes
//   - Room and wall-candidate classification
//
// Layout:
//
// Rooms live at coordinates where both x and y are odd. Every other interior
// cell is a wall-candidate that generators toggle between Wall and Open. The
// outermost ring of a grid built with New is always Wall.
//
// Usage:
//
//	g, err := grid.New(31, 31)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if g.IsOpen(grid.Coord{X: 1, Y: 1}) {
//		// ...
//	}
//
// Ownership:
//
// A Grid is not safe for concurrent mutation. The engine lends it to a
// generator or path finder for the duration of one call.
package grid
