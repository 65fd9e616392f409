package algo

import (
	"math/rand"
	"testing"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

func TestODSingleAgentReachesTarget(t *testing.T) {
	m := openMap(5, 5)
	world := core.NewWorld(m)
	world.PutAgent(core.Position{X: 0, Y: 0}, &core.Agent{ID: 0, Target: core.Position{X: 4, Y: 4}})

	rng := rand.New(rand.NewSource(2))
	solver := NewOD(rng, 6, nil)

	for i := 0; i < 30 && !core.Solved(world); i++ {
		next, err := solver.Step(world)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
		world = next
	}

	if !core.Solved(world) {
		t.Error("OD did not bring a single agent to its target")
	}
}

func TestODMergesStuckGroupsInNarrowCorridor(t *testing.T) {
	m := openMap(3, 1)
	world := core.NewWorld(m)
	left := core.Position{X: 0, Y: 0}
	right := core.Position{X: 2, Y: 0}
	world.PutAgent(left, &core.Agent{ID: 0, Target: right})
	world.PutAgent(right, &core.Agent{ID: 1, Target: left})

	rng := rand.New(rand.NewSource(4))
	solver := NewOD(rng, 4, nil)

	for i := 0; i < 10; i++ {
		next, err := solver.Step(world)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
		world = next
	}

	if solver.maxGroupSize < 2 {
		t.Errorf("maxGroupSize = %d, want >= 2 after a corridor deadlock", solver.maxGroupSize)
	}
}

func TestODNeverDoubleOccupiesACell(t *testing.T) {
	m := openMap(4, 4)
	world := core.NewWorld(m)
	world.PutAgent(core.Position{X: 0, Y: 0}, &core.Agent{ID: 0, Target: core.Position{X: 3, Y: 3}})
	world.PutAgent(core.Position{X: 3, Y: 0}, &core.Agent{ID: 1, Target: core.Position{X: 0, Y: 3}})
	world.PutAgent(core.Position{X: 0, Y: 3}, &core.Agent{ID: 2, Target: core.Position{X: 3, Y: 0}})

	rng := rand.New(rand.NewSource(5))
	solver := NewOD(rng, 4, nil)

	for i := 0; i < 15; i++ {
		next, err := solver.Step(world)
		if err != nil {
			t.Fatalf("Step returned error: %v", err)
		}
		if next.NumAgents() != 3 {
			t.Fatalf("agent count changed to %d", next.NumAgents())
		}
		world = next
		if core.Solved(world) {
			break
		}
	}
}
