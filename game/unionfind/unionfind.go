// Package unionfind provides a disjoint-set forest keyed by arbitrary comparable values.
//
// Find compresses paths iteratively so deep chains on large grids never grow the
// call stack. Union links one root under the other without a rank heuristic.
package unionfind

// UnionFind tracks a partition of elements into disjoint sets
type UnionFind[T comparable] struct {
	parent map[T]T
	sets   int
}

// New creates a union-find with every element in its own singleton set
func New[T comparable](elements ...T) *UnionFind[T] {
	uf := &UnionFind[T]{parent: make(map[T]T, len(elements))}
	for _, e := range elements {
		uf.Add(e)
	}
	return uf
}

// Add inserts e as a singleton set. Adding an existing element is a no-op.
func (uf *UnionFind[T]) Add(e T) {
	if _, ok := uf.parent[e]; ok {
		return
	}
	uf.parent[e] = e
	uf.sets++
}

// Find returns the representative of e's set and whether e is known
func (uf *UnionFind[T]) Find(e T) (T, bool) {
	if _, ok := uf.parent[e]; !ok {
		var zero T
		return zero, false
	}

	root := e
	for uf.parent[root] != root {
		root = uf.parent[root]
	}

	// Point every node on the walked path straight at the root.
	for e != root {
		next := uf.parent[e]
		uf.parent[e] = root
		e = next
	}
	return root, true
}

// Connected reports whether a and b belong to the same set
func (uf *UnionFind[T]) Connected(a, b T) bool {
	ra, okA := uf.Find(a)
	rb, okB := uf.Find(b)
	return okA && okB && ra == rb
}

// Union merges the sets of a and b. It returns false when they were already
// joined or either element is unknown.
func (uf *UnionFind[T]) Union(a, b T) bool {
	ra, okA := uf.Find(a)
	rb, okB := uf.Find(b)
	if !okA || !okB || ra == rb {
		return false
	}
	uf.parent[ra] = rb
	uf.sets--
	return true
}

// Sets returns the number of disjoint sets
func (uf *UnionFind[T]) Sets() int {
	return uf.sets
}

// Len returns the number of elements
func (uf *UnionFind[T]) Len() int {
	return len(uf.parent)
}
