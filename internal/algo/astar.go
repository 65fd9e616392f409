// Package algo implements the cooperative path-planning solvers: LRA*,
// windowed cooperative A* (WHCA*), and operator decomposition (OD), on top
// of a shared generic A* engine and space-time reservation table.
package algo

import "container/heap"

// Policy bundles the problem-specific pieces a search needs. S is the state
// type (a position, a position-time, or an OD joint state); it must be
// comparable so it can key the closed/open-dedup maps.
type Policy[S comparable] struct {
	// Successors returns the states reachable from s in one step.
	Successors func(s S) []S
	// Cost returns the cost of moving from a to b, where b is one of
	// Successors(a).
	Cost func(a, b S) float64
	// Heuristic estimates the remaining cost from s to any goal. Must be
	// admissible for the search to guarantee shortest paths.
	Heuristic func(s S) float64
	// IsGoal reports whether s is an acceptable terminal state. Supports
	// both single-target search and windowed/multi-target termination.
	IsGoal func(s S) bool
	// CloseFull reports whether s should be permanently closed once
	// expanded, so it is never popped and expanded again. Nil means every
	// state closes, which is correct whenever S's comparable identity
	// fully determines the state (a bare position, a position-time). OD
	// sets this so that only complete per-tick states close; its
	// partial per-agent-assignment states stay open for re-expansion,
	// since more than one assignment order can reach the same partial
	// state without actually being equivalent.
	CloseFull func(s S) bool
}

// astarNode is a priority-queue entry, pointer-identity so the heap can fix
// up indices on Swap.
type astarNode[S comparable] struct {
	state  S
	g      float64
	f      float64
	parent *astarNode[S]
	index  int
}

type astarHeap[S comparable] []*astarNode[S]

func (h astarHeap[S]) Len() int           { return len(h) }
func (h astarHeap[S]) Less(i, j int) bool { return h[i].f < h[j].f }
func (h astarHeap[S]) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *astarHeap[S]) Push(x any) {
	n := x.(*astarNode[S])
	n.index = len(*h)
	*h = append(*h, n)
}
func (h *astarHeap[S]) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[0 : n-1]
	return x
}

// Result is the outcome of a bounded A* search.
type Result[S comparable] struct {
	Path     []S // start-to-goal order
	Cost     float64
	Expanded int
	Found    bool
}

// Search runs a standard forward A* from start until Policy.IsGoal is
// satisfied or the open set is exhausted or cancel reports true. cancel may
// be nil.
func Search[S comparable](p Policy[S], start S, cancel func() bool) Result[S] {
	open := &astarHeap[S]{}
	heap.Init(open)
	heap.Push(open, &astarNode[S]{state: start, g: 0, f: p.Heuristic(start)})

	best := make(map[S]float64)
	best[start] = 0
	closed := make(map[S]bool)

	expanded := 0
	for open.Len() > 0 {
		if cancel != nil && cancel() {
			return Result[S]{Expanded: expanded}
		}
		cur := heap.Pop(open).(*astarNode[S])
		if closed[cur.state] {
			continue
		}
		if p.CloseFull == nil || p.CloseFull(cur.state) {
			closed[cur.state] = true
		}
		expanded++

		if p.IsGoal(cur.state) {
			return Result[S]{Path: reconstruct(cur), Cost: cur.g, Expanded: expanded, Found: true}
		}

		for _, next := range p.Successors(cur.state) {
			g := cur.g + p.Cost(cur.state, next)
			if prev, ok := best[next]; ok && prev <= g {
				continue
			}
			best[next] = g
			heap.Push(open, &astarNode[S]{
				state:  next,
				g:      g,
				f:      g + p.Heuristic(next),
				parent: cur,
			})
		}
	}
	return Result[S]{Expanded: expanded}
}

func reconstruct[S comparable](n *astarNode[S]) []S {
	var path []S
	for cur := n; cur != nil; cur = cur.parent {
		path = append([]S{cur.state}, path...)
	}
	return path
}

// ReverseSearch is a resumable Dijkstra-like search outward from a single
// source, used to answer repeated find_distance(source, x) queries without
// re-expanding the frontier from scratch each time. Successive calls to
// DistanceTo reuse and extend the same open set, mirroring the paused
// reverse searches the cooperative solvers use to build admissible
// heuristics on demand.
type ReverseSearch[S comparable] struct {
	successors func(s S) []S
	cost       func(a, b S) float64

	open   *astarHeap[S]
	dist   map[S]float64
	closed map[S]bool
}

// NewReverseSearch creates a paused search rooted at source. successors and
// cost should walk the state graph backwards from the caller's point of
// view (e.g. "what states can reach s" rather than "what states can s
// reach"), so that repeated calls compute true distances to source.
func NewReverseSearch[S comparable](source S, successors func(s S) []S, cost func(a, b S) float64) *ReverseSearch[S] {
	open := &astarHeap[S]{}
	heap.Init(open)
	heap.Push(open, &astarNode[S]{state: source, g: 0, f: 0})
	return &ReverseSearch[S]{
		successors: successors,
		cost:       cost,
		open:       open,
		dist:       map[S]float64{source: 0},
		closed:     make(map[S]bool),
	}
}

// DistanceTo returns the shortest distance from target to the search's
// source, expanding the frontier as far as necessary. Returns false if
// target is unreachable (the open set drained without finding it).
func (r *ReverseSearch[S]) DistanceTo(target S) (float64, bool) {
	if r.closed[target] {
		return r.dist[target], true
	}
	for r.open.Len() > 0 {
		cur := heap.Pop(r.open).(*astarNode[S])
		if r.closed[cur.state] {
			continue
		}
		r.closed[cur.state] = true
		r.dist[cur.state] = cur.g

		found := cur.state == target
		for _, next := range r.successors(cur.state) {
			g := cur.g + r.cost(cur.state, next)
			if prev, ok := r.dist[next]; ok && prev <= g {
				continue
			}
			r.dist[next] = g
			heap.Push(r.open, &astarNode[S]{state: next, g: g, f: g})
		}
		if found {
			return cur.g, true
		}
	}
	return 0, false
}
