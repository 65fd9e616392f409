package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// agitationWindow is the recalculation-interval threshold (in ticks) below
// which an agent is considered to be thrashing against the same obstacle:
// Δ < agitationWindow raises agitation, Δ >= agitationWindow resets it.
const agitationWindow = 5

// agitationState is LRA*'s per-agent agent_data: when an agent last had to
// recalculate its path, and how agitated it currently is.
type agitationState struct {
	lastRecalculation core.Tick
	hasLast           bool
	agitation         float64
}

// LRA implements uncooperative "local repair A*": each agent plans a path
// ignoring every other agent, replanning from scratch whenever its next
// step turns out to be blocked. Walls are never passable; a cell next to
// the agent must be free, while cells farther away count as passable even
// when an agent or obstacle holds them now. Recalculating too
// often raises the agent's agitation, which perturbs its heuristic with
// noise so it breaks out of retracing the same blocked route tick after
// tick instead of thrashing in place.
type LRA struct {
	sep *separatePaths
	rng *rand.Rand

	agitation map[core.AgentID]*agitationState
}

// NewLRA returns an LRA* solver seeded from rng.
func NewLRA(rng *rand.Rand) *LRA {
	l := &LRA{rng: rng, agitation: make(map[core.AgentID]*agitationState)}
	l.sep = newSeparatePaths(l.findPath)
	return l
}

func (l *LRA) Name() string { return "LRA*" }

func (l *LRA) Step(w *core.World) (*core.World, error) {
	return l.sep.step(w, l.rng)
}

func (l *LRA) StatNames() []string { return l.sep.StatNames() }
func (l *LRA) Stats() []int64      { return l.sep.Stats() }

func (l *LRA) GetPath(id core.AgentID) []core.Position { return l.sep.getPath(id) }

func (l *LRA) GetObstacleField() map[core.PositionTime]float64 { return nil }

// SetWindow is a no-op: LRA* has no notion of a planning horizon, each
// search runs all the way to the agent's target.
func (l *LRA) SetWindow(int) {}

// recalculate updates and returns id's agitation following the Δ<5 ⇒
// agitation += 5/Δ, else reset rule, given that a recalculation is
// happening right now at tick.
func (l *LRA) recalculate(id core.AgentID, tick core.Tick) float64 {
	st, ok := l.agitation[id]
	if !ok {
		st = &agitationState{}
		l.agitation[id] = st
	}
	if st.hasLast {
		delta := tick - st.lastRecalculation
		if delta == 0 {
			delta = 1
		}
		if delta < agitationWindow {
			st.agitation += float64(agitationWindow) / float64(delta)
		} else {
			st.agitation = 0
		}
	}
	st.lastRecalculation = tick
	st.hasLast = true
	return st.agitation
}

// findPath runs a plain A* from from to the agent's target, where a cell is
// passable if it is not a wall and is either free or not an immediate
// neighbour of from (so occupants farther out, which may have moved by the
// time the agent gets there, do not block the plan). The heuristic adds a noisy term sized by the agent's current
// agitation, so an agent stuck replanning every tick stops retracing the
// exact same shortest path into the same wall.
func (l *LRA) findPath(from core.Position, w *core.World, _ core.Path) core.Path {
	a, ok := w.GetAgent(from)
	if !ok {
		return nil
	}
	target := a.Target
	agitation := l.recalculate(a.ID, w.Tick())

	passable := func(p core.Position) bool {
		return w.Get(p) == core.Free || !core.Neighbours(p, from)
	}

	result := Search(Policy[core.Position]{
		Successors: func(p core.Position) []core.Position {
			var out []core.Position
			for _, d := range core.AllDirections {
				np := core.Translate(p, d)
				if w.Map().InBounds(np) && w.Map().Get(np) != core.Wall && passable(np) {
					out = append(out, np)
				}
			}
			return out
		},
		Cost: func(core.Position, core.Position) float64 { return 1 },
		Heuristic: func(p core.Position) float64 {
			h := float64(core.ManhattanDistance(p, target))
			if agitation > 0 {
				h += l.rng.Float64() * agitation
			}
			return h
		},
		IsGoal: func(p core.Position) bool { return p == target },
	}, from, nil)

	l.sep.add("nodes_expanded", int64(result.Expanded))
	if !result.Found {
		return nil
	}
	return toReversePath(result.Path)
}
