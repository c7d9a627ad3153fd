package pathfinder

import (
	"container/heap"

	"github.com/wricardo/maze-lab/game/grid"
)

type heapItem struct {
	priority int
	cell     grid.Coord
}

// cellHeap orders items by priority, then x, then y
type cellHeap []heapItem

func (h cellHeap) Len() int { return len(h) }

func (h cellHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.priority != b.priority {
		return a.priority < b.priority
	}
	if a.cell.X != b.cell.X {
		return a.cell.X < b.cell.X
	}
	return a.cell.Y < b.cell.Y
}

func (h cellHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *cellHeap) Push(x any) { *h = append(*h, x.(heapItem)) }

func (h *cellHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

func (h *cellHeap) push(priority int, c grid.Coord) {
	heap.Push(h, heapItem{priority: priority, cell: c})
}

func (h *cellHeap) pop() heapItem {
	return heap.Pop(h).(heapItem)
}
