package pathfinder

import (
	"fmt"
	"strings"
)

// Algorithm names a pathfinding strategy
type Algorithm string

const (
	DFS              Algorithm = "dfs"
	BFS              Algorithm = "bfs"
	Dijkstra         Algorithm = "dijkstra"
	GBFS             Algorithm = "gbfs"
	AStar            Algorithm = "astar"
	BidirectionalDFS Algorithm = "bidirectional_dfs"
	BidirectionalBFS Algorithm = "bidirectional_bfs"
)

// Info describes an algorithm for help views and tool listings
type Info struct {
	Algorithm   Algorithm `json:"algorithm"`
	Name        string    `json:"name"`
	Frontier    string    `json:"frontier"`
	Shortest    bool      `json:"shortest"`
	Description string    `json:"description"`
}

var catalog = []Info{
	{DFS, "Depth-first search", "stack", false, "Follows the first open neighbor until it dead-ends, then backtracks."},
	{BFS, "Breadth-first search", "queue", true, "Expands cells in order of distance from Start; the first arrival at End wins."},
	{Dijkstra, "Dijkstra", "priority queue (cost)", true, "Relaxes neighbors by cumulative cost; equivalent to BFS on a unit-cost grid."},
	{GBFS, "Greedy best-first search", "priority queue (heuristic)", false, "Always expands the cell closest to End by Manhattan distance."},
	{AStar, "A*", "priority queue (cost + heuristic)", true, "Dijkstra guided by the Manhattan distance to End."},
	{BidirectionalDFS, "Bidirectional DFS", "two stacks", false, "Two depth-first searches from Start and End, one step each in turn, joined at the first overlap."},
	{BidirectionalBFS, "Bidirectional BFS", "two queues", true, "Two breadth-first searches expanding one layer each in turn, joined at the first overlap."},
}

// Algorithms lists every pathfinding algorithm in display order
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
// "AStar", "A*" or "BidirectionalBFS".
func ParseAlgorithm(s string) (Algorithm, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("*", "star", "_", "", "-", "", " ", "").Replace(key)
	switch key {
	case "dfs", "depthfirst":
		return DFS, nil
	case "bfs", "breadthfirst":
		return BFS, nil
	case "dijkstra":
		return Dijkstra, nil
	case "gbfs", "greedy", "greedybestfirst":
		return GBFS, nil
	case "astar":
		return AStar, nil
	case "bidirectionaldfs", "bidfs":
		return BidirectionalDFS, nil
	case "bidirectionalbfs", "bibfs":
		return BidirectionalBFS, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) String() string {
	return string(a)
}
