// Package pathfinder finds a route between two open cells of a grid.
//
// The pathfinder package implements seven search strategies:
//   - DFS and BFS over an explicit stack and FIFO queue
//   - Dijkstra, greedy best-first (GBFS) and A* over a binary heap
//   - bidirectional DFS and bidirectional BFS meeting at the first overlap
//
// Neighbors are always explored in the fixed order left, up, right, down, so a
// search over a given grid is deterministic. Heap ties are broken on x, then y.
//
// Events:
//
// Searches report Visited when a cell is taken from the frontier, Frontier when
// a queue or heap search discovers a cell, Current when a stack search pushes a
// cell and Path when DFS backtracks out of one. Start and End never receive
// events from a search.
//
// Results:
//
// A route lists every cell from Start to End inclusive. A nil route with a nil
// error means End is unreachable; that is a normal outcome.
package pathfinder
