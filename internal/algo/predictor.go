package algo

import "github.com/elektrokombinacija/gridmapf/internal/core"

// Predictor estimates where moving obstacles will be in the future, letting
// a solver plan around them probabilistically instead of only around their
// currently observed positions. Implementations are free to ignore
// UpdateObstacles entirely (NullPredictor does) or to fit a model to
// observed obstacle movement over time.
type Predictor interface {
	// UpdateObstacles is called once per tick with the current world state,
	// before any planning happens against it.
	UpdateObstacles(w *core.World)
	// Predict returns the probability, in [0, 1], that pt is occupied by an
	// obstacle.
	Predict(pt core.PositionTime) float64
	// Field returns a snapshot of predicted occupancy probability for every
	// position the predictor currently has an opinion about, at the tick
	// passed to the most recent UpdateObstacles call. Intended for
	// diagnostics and visualization, not for use inside a hot search loop.
	Field() map[core.Position]float64
}

// NullPredictor never predicts any obstacle presence. It is the default
// when no obstacle model is configured.
type NullPredictor struct{}

func (NullPredictor) UpdateObstacles(*core.World)       {}
func (NullPredictor) Predict(core.PositionTime) float64 { return 0 }
func (NullPredictor) Field() map[core.Position]float64  { return nil }

// FrequencyPredictor estimates obstacle occupancy by how often each
// position has been occupied by an obstacle across observed ticks, giving
// positions obstacles visit often a higher predicted probability at any
// future time regardless of the exact tick. This is a coarse model: it
// ignores obstacle identity and motion direction, trading precision for
// requiring no per-obstacle tracking.
type FrequencyPredictor struct {
	visits   map[core.Position]int
	observed int
}

// NewFrequencyPredictor returns a predictor with no observations yet.
func NewFrequencyPredictor() *FrequencyPredictor {
	return &FrequencyPredictor{visits: make(map[core.Position]int)}
}

func (f *FrequencyPredictor) UpdateObstacles(w *core.World) {
	f.observed++
	w.Obstacles(func(p core.Position, _ *core.Obstacle) {
		f.visits[p]++
	})
}

func (f *FrequencyPredictor) Predict(pt core.PositionTime) float64 {
	if f.observed == 0 {
		return 0
	}
	return float64(f.visits[pt.Pos]) / float64(f.observed)
}

func (f *FrequencyPredictor) Field() map[core.Position]float64 {
	out := make(map[core.Position]float64, len(f.visits))
	for p, n := range f.visits {
		out[p] = float64(n) / float64(f.observed)
	}
	return out
}

// ObstaclePenaltyWeight scales predicted obstacle probability into an
// additive heuristic penalty: h' = h + Predict(pt)*ObstaclePenaltyWeight.
const ObstaclePenaltyWeight = 50.0

// ObstacleImpassableThreshold is the predicted-probability above which a
// cell is treated as impassable rather than merely penalized.
const ObstacleImpassableThreshold = 0.9

// PenalizedHeuristic wraps h so that cells a predictor considers likely to
// hold an obstacle are costed higher, without being ruled out outright.
func PenalizedHeuristic(p Predictor, pt core.PositionTime, h float64) float64 {
	return h + p.Predict(pt)*ObstaclePenaltyWeight
}

// PredictedImpassable reports whether a predictor considers pt too likely
// to be obstacle-occupied to plan through.
func PredictedImpassable(p Predictor, pt core.PositionTime) bool {
	return p.Predict(pt) > ObstacleImpassableThreshold
}

// fieldOverWindow projects p's per-position field across the ticks
// [from, from+horizon), giving Solver.GetObstacleField its position-time
// shape even for a predictor like FrequencyPredictor whose underlying
// model doesn't vary with time. Not meant for use inside a hot search
// loop, only diagnostics.
func fieldOverWindow(p Predictor, from core.Tick, horizon int) map[core.PositionTime]float64 {
	if horizon <= 0 {
		horizon = 1
	}
	base := p.Field()
	if len(base) == 0 {
		return nil
	}
	out := make(map[core.PositionTime]float64, len(base)*horizon)
	for pos := range base {
		for t := 0; t < horizon; t++ {
			pt := core.PositionTime{Pos: pos, Time: from + core.Tick(t)}
			out[pt] = p.Predict(pt)
		}
	}
	return out
}

// windowOrOne normalizes a solver's Window field (which may be <= 0,
// meaning "search to the true goal, no horizon") into a usable positive
// lookahead for fieldOverWindow.
func windowOrOne(w int) int {
	if w <= 0 {
		return 1
	}
	return w
}
