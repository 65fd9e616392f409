package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// Greedy is the non-planning baseline: each tick, with probability
// randomMoveChance every agent tries a step in a uniformly random direction
// instead of a goal-directed one; otherwise it steps along whichever axis
// has the larger remaining offset to its target, falling back to a
// random-direction attempt if that move is blocked. A random attempt whose
// cell is not free leaves the agent in place. It never looks more than one step ahead and never
// reserves anything, so it serves as the lower bound other solvers are
// compared against.
type Greedy struct {
	rng *rand.Rand
}

// randomMoveChance mirrors greedy::get_action's std::discrete_distribution
// weights of {0.99 goal-directed, 0.01 random}.
const randomMoveChance = 0.01

// NewGreedy returns a Greedy solver driven by rng.
func NewGreedy(rng *rand.Rand) *Greedy {
	return &Greedy{rng: rng}
}

func (*Greedy) Name() string        { return "Greedy" }
func (*Greedy) StatNames() []string { return nil }
func (*Greedy) Stats() []int64      { return nil }

// GetPath always returns nil: Greedy replans fresh every tick and commits
// to nothing beyond its next single step.
func (*Greedy) GetPath(core.AgentID) []core.Position { return nil }

// GetObstacleField always returns nil: Greedy never consults a predictor.
func (*Greedy) GetObstacleField() map[core.PositionTime]float64 { return nil }

// SetWindow is a no-op: Greedy has no planning horizon.
func (*Greedy) SetWindow(int) {}

func (g *Greedy) Step(w *core.World) (*core.World, error) {
	next := w.Clone()

	for _, pos := range shuffledAgents(w, g.rng) {
		a, ok := next.GetAgent(pos)
		if !ok || pos == a.Target {
			continue
		}

		if g.rng.Float64() < randomMoveChance {
			g.tryRandomMove(next, pos)
			continue
		}

		dx := a.Target.X - pos.X
		dy := a.Target.Y - pos.Y
		var d core.Direction
		if abs(dx) > abs(dy) {
			if dx > 0 {
				d = core.East
			} else {
				d = core.West
			}
		} else {
			if dy > 0 {
				d = core.South
			} else {
				d = core.North
			}
		}

		act := core.Action{From: pos, Dir: d}
		if freeForMove(next, act) {
			next.MoveAgent(pos, act.To())
		} else {
			g.tryRandomMove(next, pos)
		}
	}

	return next, nil
}

func (g *Greedy) tryRandomMove(w *core.World, from core.Position) {
	d := core.AllDirections[g.rng.Intn(len(core.AllDirections))]
	act := core.Action{From: from, Dir: d}
	if freeForMove(w, act) {
		w.MoveAgent(from, act.To())
	}
}

// freeForMove reports whether act's destination is currently unoccupied and
// otherwise legal, for solvers that resolve agents one at a time against a
// world they mutate as they go rather than building a single JointAction.
func freeForMove(w *core.World, act core.Action) bool {
	return core.ValidMove(w, act) && w.Get(act.To()) == core.Free
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
