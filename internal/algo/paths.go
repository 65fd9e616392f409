package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// pathCache holds one in-progress path per agent, keyed by agent ID (stable
// across ticks, unlike position), and is shared by every solver that plans
// full paths and walks them one step per tick (LRA* and WHCA*) rather than
// replanning from scratch every tick (Greedy, OD).
type pathCache struct {
	paths map[core.AgentID]core.Path
}

func newPathCache() *pathCache {
	return &pathCache{paths: make(map[core.AgentID]core.Path)}
}

// take removes and returns the cached path for id, if any.
func (c *pathCache) take(id core.AgentID) (core.Path, bool) {
	p, ok := c.paths[id]
	if ok {
		delete(c.paths, id)
	}
	return p, ok
}

// peek returns the cached path for id without removing it, for GetPath.
func (c *pathCache) peek(id core.AgentID) core.Path {
	return c.paths[id]
}

// put stores p under id, replacing whatever was there.
func (c *pathCache) put(id core.AgentID, p core.Path) {
	c.paths[id] = p
}

// separatePaths drives the shared shape of LRA* and WHCA*: for every agent
// not already at its target, reuse a cached path if its next step is still
// valid, otherwise ask findPath for a fresh one, passing along whatever
// path was just invalidated (or none) so a recalculator that can exploit it
// (WHCA*'s rejoin optimization) has something to rejoin to; take one step;
// cache the remainder. findPath is the only thing that differs between the
// two solvers (unconstrained space search vs. reservation-constrained
// search).
type separatePaths struct {
	*stats
	cache    *pathCache
	findPath func(from core.Position, w *core.World, old core.Path) core.Path
	onCommit func(from, to core.Position, remaining core.Path)
}

func newSeparatePaths(findPath func(core.Position, *core.World, core.Path) core.Path) *separatePaths {
	return &separatePaths{
		stats:    newStats("times_without_path", "recalculations", "path_invalid", "nodes_expanded"),
		cache:    newPathCache(),
		findPath: findPath,
	}
}

// getPath returns id's currently committed plan, soonest step first, or
// nil if it has none cached.
func (s *separatePaths) getPath(id core.AgentID) []core.Position {
	return s.cache.peek(id).Reverse()
}

func (s *separatePaths) step(w *core.World, rng *rand.Rand) (*core.World, error) {
	next := w.Clone()

	for _, pos := range shuffledAgents(w, rng) {
		a, ok := next.GetAgent(pos)
		if !ok || pos == a.Target {
			continue
		}

		old, cached := s.cache.take(a.ID)
		valid := cached && old.Len() > 0
		if valid {
			step, _ := old.Next()
			dir := core.DirectionTo(pos, step)
			if !freeForMove(next, core.Action{From: pos, Dir: dir}) {
				valid = false
			}
		}

		var p core.Path
		if valid {
			p = old
		} else {
			s.inc("recalculations")
			p = s.findPath(pos, next, old)
		}
		if p.Len() == 0 {
			s.inc("times_without_path")
			continue
		}

		step, _ := p.Next()
		dir := core.DirectionTo(pos, step)
		act := core.Action{From: pos, Dir: dir}
		if !freeForMove(next, act) {
			s.inc("path_invalid")
			continue
		}

		next.MoveAgent(pos, step)
		remaining := p.Advance()
		if s.onCommit != nil {
			s.onCommit(pos, step, remaining)
		}
		s.cache.put(a.ID, remaining)
	}

	return next, nil
}

// toReversePath converts a forward start-to-goal slice into the reverse
// (goal-first, next-step-last) core.Path orientation, dropping the starting
// cell itself since a path never names the position the agent already
// occupies.
func toReversePath(forward []core.Position) core.Path {
	if len(forward) <= 1 {
		return nil
	}
	return reversePath(forward[1:])
}

// reversePath converts a forward sequence of steps (not including the
// agent's current position) into the reverse core.Path orientation.
func reversePath(forward []core.Position) core.Path {
	out := make(core.Path, len(forward))
	for i, p := range forward {
		out[len(forward)-1-i] = p
	}
	return out
}
