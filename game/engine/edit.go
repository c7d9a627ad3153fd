package engine

import (
	"fmt"

	"github.com/wricardo/maze-lab/game/grid"
	"github.com/wricardo/maze-lab/game/instrument"
)

// SetStart moves Start onto an open interior cell other than End
func (e *MazeEngine) SetStart(c grid.Coord) error {
	return e.moveEndpoint(c, true)
}

// SetEnd moves End onto an open interior cell other than Start
func (e *MazeEngine) SetEnd(c grid.Coord) error {
	return e.moveEndpoint(c, false)
}

func (e *MazeEngine) moveEndpoint(c grid.Coord, isStart bool) error {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return ErrRunInProgress
	}
	if !e.grid.InInterior(c) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s is outside the maze interior", ErrInvalidEndpoint, c)
	}
	if !e.grid.IsOpen(c) {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s is a wall", ErrInvalidEndpoint, c)
	}
	if c == e.start || c == e.end {
		e.mu.Unlock()
		return fmt.Errorf("%w: %s is already an endpoint", ErrInvalidEndpoint, c)
	}

	var old grid.Coord
	tag := instrument.TagStart
	if isStart {
		old, e.start = e.start, c
	} else {
		old, e.end = e.end, c
		tag = instrument.TagEnd
	}
	e.route = nil
	sink := e.sink
	e.mu.Unlock()

	sink.Emit(instrument.At(old, instrument.TagPath))
	sink.Emit(instrument.At(c, tag))
	return nil
}

// SetCell writes one interior cell. The border, Start and End are protected.
func (e *MazeEngine) SetCell(c grid.Coord, kind grid.Kind) error {
	_, err := e.editCell(c, func(grid.Kind) grid.Kind { return kind })
	return err
}

// ToggleCell flips one interior cell between wall and open and returns its new kind
func (e *MazeEngine) ToggleCell(c grid.Coord) (grid.Kind, error) {
	return e.editCell(c, func(k grid.Kind) grid.Kind {
		if k == grid.Wall {
			return grid.Open
		}
		return grid.Wall
	})
}

func (e *MazeEngine) editCell(c grid.Coord, next func(grid.Kind) grid.Kind) (grid.Kind, error) {
	e.mu.Lock()
	if e.state != Idle {
		e.mu.Unlock()
		return 0, ErrRunInProgress
	}
	if !e.grid.InInterior(c) {
		e.mu.Unlock()
		return 0, fmt.Errorf("%w: %s is not an interior cell", ErrProtectedCell, c)
	}
	if c == e.start || c == e.end {
		e.mu.Unlock()
		return 0, fmt.Errorf("%w: %s is an endpoint", ErrProtectedCell, c)
	}

	kind := next(e.grid.At(c))
	e.grid.Set(c, kind)
	e.route = nil
	sink := e.sink
	e.mu.Unlock()

	tag := instrument.TagPath
	if kind == grid.Wall {
		tag = instrument.TagWall
	}
	sink.Emit(instrument.At(c, tag))
	return kind, nil
}

// Load replaces the grid with a copy of g and resets Start and End.
// g must have maze dimensions; on error nothing changes.
func (e *MazeEngine) Load(g *grid.Grid) error {
	if err := grid.ValidateDimensions(g.Width(), g.Height()); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return ErrRunInProgress
	}

	e.grid = g.Clone()
	e.start, e.end = defaultEndpoints(e.grid)
	e.route = nil
	return nil
}

// Restore loads g with explicit Start and End, as saved by a session store.
// Both endpoints must be distinct open interior cells of g.
func (e *MazeEngine) Restore(g *grid.Grid, start, end grid.Coord) error {
	if err := grid.ValidateDimensions(g.Width(), g.Height()); err != nil {
		return err
	}
	for _, c := range []grid.Coord{start, end} {
		if !g.InInterior(c) || !g.IsOpen(c) {
			return fmt.Errorf("%w: %s is not an open interior cell", ErrInvalidEndpoint, c)
		}
	}
	if start == end {
		return fmt.Errorf("%w: start and end are both %s", ErrInvalidEndpoint, start)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Idle {
		return ErrRunInProgress
	}

	e.grid = g.Clone()
	e.start, e.end = start, end
	e.route = nil
	return nil
}
