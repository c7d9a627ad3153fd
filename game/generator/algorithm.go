package generator

import (
	"fmt"
	"strings"
)

// Algorithm names a maze generation algorithm
type Algorithm string

const (
	DFS               Algorithm = "dfs"
	Prim              Algorithm = "prim"
	Kruskal           Algorithm = "kruskal"
	RecursiveDivision Algorithm = "recursive_division"
)

// Info describes an algorithm for help views and tool listings
type Info struct {
	Algorithm   Algorithm `json:"algorithm"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

var catalog = []Info{
	{DFS, "Randomized DFS", "Backtracking depth-first walk over rooms in shuffled direction order. Long winding corridors, few branches."},
	{Prim, "Randomized Prim", "Grows the maze from a random room by opening random frontier walls. Many short dead ends."},
	{Kruskal, "Randomized Kruskal", "Opens shuffled walls that join rooms from different sets of a union-find. Uniform texture."},
	{RecursiveDivision, "Recursive division", "Splits regions with a cross of walls and opens three of its four arms. Visible long straight walls."},
}

// Algorithms lists every generation algorithm in display order
func Algorithms() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// Describe returns the catalog entry for a
func Describe(a Algorithm) (Info, bool) {
	for _, info := range catalog {
		if info.Algorithm == a {
			return info, true
		}
	}
	return Info{}, false
}

// ParseAlgorithm accepts canonical names and common spellings such as
// "DFS", "RecursiveDivision" or "division".
func ParseAlgorithm(s string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "dfs", "depthfirst", "backtracker", "recursivebacktracker":
		return DFS, nil
	case "prim":
		return Prim, nil
	case "kruskal":
		return Kruskal, nil
	case "recursivedivision", "division", "recursive":
		return RecursiveDivision, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) String() string {
	return string(a)
}
