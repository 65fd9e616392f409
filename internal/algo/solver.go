package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// Solver advances a world by one joint step, planning cooperatively for
// every agent still short of its target. All three cooperative solvers
// (LRA*, WHCA*, OD) and the Greedy baseline implement this.
type Solver interface {
	// Name identifies the solver for logging and stats output.
	Name() string
	// Step computes and applies one joint move for every agent in w,
	// returning the resulting world. w is not mutated.
	Step(w *core.World) (*core.World, error)
	// StatNames lists the solver's counters, in the order Stats returns
	// their values. Stable across calls.
	StatNames() []string
	// Stats returns the current value of each counter named by StatNames,
	// cumulative since the solver was constructed.
	Stats() []int64
	// GetPath returns id's currently committed plan, soonest step first,
	// or nil if it has none (already at target, or a solver that
	// replans fresh every tick and keeps no persistent plan).
	GetPath(id core.AgentID) []core.Position
	// GetObstacleField returns the solver's current predicted obstacle
	// occupancy, keyed by position and tick, or nil if it consults no
	// predictor.
	GetObstacleField() map[core.PositionTime]float64
	// SetWindow adjusts the planning horizon of windowed solvers. A no-op
	// on solvers with no notion of a window.
	SetWindow(w int)
}

// stats is an embeddable named-counter map shared by every solver
// implementation, avoiding four separate copies of the same bookkeeping.
type stats struct {
	names  []string
	values map[string]int64
}

func newStats(names ...string) *stats {
	s := &stats{names: names, values: make(map[string]int64, len(names))}
	for _, n := range names {
		s.values[n] = 0
	}
	return s
}

func (s *stats) add(name string, n int64) {
	s.values[name] += n
}

func (s *stats) inc(name string) {
	s.values[name]++
}

func (s *stats) StatNames() []string {
	return s.names
}

func (s *stats) Stats() []int64 {
	out := make([]int64, len(s.names))
	for i, n := range s.names {
		out[i] = s.values[n]
	}
	return out
}

// shuffledAgents returns the world's agent positions in a random order, so
// repeated Step calls don't systematically favor low-ID agents when
// resolving contention.
func shuffledAgents(w *core.World, rng *rand.Rand) []core.Position {
	var positions []core.Position
	w.Agents(func(p core.Position, _ *core.Agent) {
		positions = append(positions, p)
	})
	rng.Shuffle(len(positions), func(i, j int) {
		positions[i], positions[j] = positions[j], positions[i]
	})
	return positions
}
