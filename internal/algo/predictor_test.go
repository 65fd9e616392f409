package algo

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

func TestNullPredictorNeverPredicts(t *testing.T) {
	p := NullPredictor{}
	pt := core.PositionTime{Pos: core.Position{X: 1, Y: 1}, Time: 3}
	if p.Predict(pt) != 0 {
		t.Error("NullPredictor should never predict occupancy")
	}
	if p.Field() != nil {
		t.Error("NullPredictor should report an empty field")
	}
}

func TestFrequencyPredictorLearnsFromObservations(t *testing.T) {
	m := openMap(3, 3)
	world := core.NewWorld(m)
	rng := rand.New(rand.NewSource(1))
	hot := core.Position{X: 1, Y: 1}
	world.PutObstacle(hot, 2, 0, rng)

	pred := NewFrequencyPredictor()
	pred.UpdateObstacles(world)
	pred.UpdateObstacles(world)

	pt := core.PositionTime{Pos: hot, Time: 0}
	if got := pred.Predict(pt); got != 1 {
		t.Errorf("Predict = %v, want 1 after every observation saw the obstacle there", got)
	}

	cold := core.PositionTime{Pos: core.Position{X: 0, Y: 0}, Time: 0}
	if got := pred.Predict(cold); got != 0 {
		t.Errorf("Predict = %v, want 0 for a never-visited cell", got)
	}

	field := pred.Field()
	if field[hot] != 1 {
		t.Errorf("Field()[hot] = %v, want 1", field[hot])
	}
}

func TestPenalizedHeuristicAddsWeight(t *testing.T) {
	m := openMap(3, 3)
	world := core.NewWorld(m)
	rng := rand.New(rand.NewSource(1))
	hot := core.Position{X: 1, Y: 1}
	world.PutObstacle(hot, 2, 0, rng)

	pred := NewFrequencyPredictor()
	pred.UpdateObstacles(world)

	pt := core.PositionTime{Pos: hot, Time: 0}
	base := 10.0
	got := PenalizedHeuristic(pred, pt, base)
	want := base + ObstaclePenaltyWeight
	if got != want {
		t.Errorf("PenalizedHeuristic = %v, want %v", got, want)
	}
}

func TestPredictedImpassableThreshold(t *testing.T) {
	m := openMap(3, 3)
	world := core.NewWorld(m)
	rng := rand.New(rand.NewSource(1))
	hot := core.Position{X: 1, Y: 1}
	world.PutObstacle(hot, 2, 0, rng)

	pred := NewFrequencyPredictor()
	pred.UpdateObstacles(world)

	pt := core.PositionTime{Pos: hot, Time: 0}
	if !PredictedImpassable(pred, pt) {
		t.Error("a cell observed occupied every time should be predicted impassable")
	}

	cold := core.PositionTime{Pos: core.Position{X: 0, Y: 0}, Time: 0}
	if PredictedImpassable(pred, cold) {
		t.Error("a never-visited cell should not be predicted impassable")
	}
}
