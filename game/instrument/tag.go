package instrument

import (
	"fmt"
	"strings"

	"github.com/wricardo/maze-lab/game/grid"
)

// Tag is the semantic label of a cell event
type Tag string

const (
	TagWall     Tag = "wall"
	TagPath     Tag = "path"
	TagVisited  Tag = "visited"
	TagCurrent  Tag = "current"
	TagFrontier Tag = "frontier"
	TagSolution Tag = "solution"
	TagStart    Tag = "start"
	TagEnd      Tag = "end"
)

var allTags = []Tag{TagWall, TagPath, TagVisited, TagCurrent, TagFrontier, TagSolution, TagStart, TagEnd}

// Tags returns every known tag
func Tags() []Tag {
	out := make([]Tag, len(allTags))
	copy(out, allTags)
	return out
}

// ParseTag converts a case-insensitive name into a Tag
func ParseTag(s string) (Tag, error) {
	t := Tag(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range allTags {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown cell tag %q", s)
}

// CellEvent is one observable change of a cell
type CellEvent struct {
	X   int `json:"x"`
	Y   int `json:"y"`
	Tag Tag `json:"tag"`
}

// At builds an event for coordinate c
func At(c grid.Coord, tag Tag) CellEvent {
	return CellEvent{X: c.X, Y: c.Y, Tag: tag}
}

// Coord returns the event coordinate
func (e CellEvent) Coord() grid.Coord {
	return grid.Coord{X: e.X, Y: e.Y}
}
