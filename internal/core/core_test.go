package core

import (
	"math/rand"
	"testing"
)

func smallMap() *Map {
	m := NewMap(5, 5)
	m.SetWall(Position{X: 2, Y: 0})
	m.SetWall(Position{X: 2, Y: 1})
	return m
}

func TestDirectionInverse(t *testing.T) {
	cases := map[Direction]Direction{North: South, South: North, East: West, West: East}
	for d, want := range cases {
		if got := d.Inverse(); got != want {
			t.Errorf("%v.Inverse() = %v, want %v", d, got, want)
		}
	}
}

func TestTranslateAndDirectionTo(t *testing.T) {
	p := Position{X: 2, Y: 2}
	for _, d := range AllDirections {
		np := Translate(p, d)
		if !Neighbours(p, np) {
			t.Fatalf("Translate(%v, %v) = %v, not a neighbour", p, d, np)
		}
		if got := DirectionTo(p, np); got != d {
			t.Errorf("DirectionTo(%v, %v) = %v, want %v", p, np, got, d)
		}
	}
}

func TestDirectionToPanicsOnNonNeighbours(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for non-adjacent positions")
		}
	}()
	DirectionTo(Position{X: 0, Y: 0}, Position{X: 5, Y: 5})
}

func TestPositionTimeLessTotalOrder(t *testing.T) {
	a := PositionTime{Pos: Position{X: 1, Y: 2}, Time: 3}
	b := PositionTime{Pos: Position{X: 1, Y: 2}, Time: 4}
	c := PositionTime{Pos: Position{X: 2, Y: 2}, Time: 3}
	if !a.Less(b) {
		t.Error("expected a < b by time")
	}
	if b.Less(a) {
		t.Error("expected !(b < a)")
	}
	if !a.Less(c) {
		t.Error("expected a < c by X at equal time")
	}
	if a.Less(a) {
		t.Error("expected !(a < a)")
	}
}

func TestMapGetOutOfBoundsIsWall(t *testing.T) {
	m := smallMap()
	if got := m.Get(Position{X: -1, Y: 0}); got != Wall {
		t.Errorf("out-of-bounds Get = %v, want Wall", got)
	}
	if got := m.Get(Position{X: 2, Y: 0}); got != Wall {
		t.Errorf("wall Get = %v, want Wall", got)
	}
	if got := m.Get(Position{X: 0, Y: 0}); got != Free {
		t.Errorf("free Get = %v, want Free", got)
	}
}

func TestWorldPutAgentRejectsOccupiedTile(t *testing.T) {
	w := NewWorld(smallMap())
	w.PutAgent(Position{X: 0, Y: 0}, &Agent{ID: 0, Target: Position{X: 4, Y: 4}})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic placing agent on occupied tile")
		}
	}()
	w.PutAgent(Position{X: 0, Y: 0}, &Agent{ID: 1, Target: Position{X: 4, Y: 0}})
}

func TestWorldMoveAgent(t *testing.T) {
	w := NewWorld(smallMap())
	start := Position{X: 0, Y: 0}
	w.PutAgent(start, &Agent{ID: 0, Target: Position{X: 1, Y: 0}})

	w.MoveAgent(start, Position{X: 1, Y: 0})

	if _, ok := w.GetAgent(start); ok {
		t.Error("agent still present at old position")
	}
	a, ok := w.GetAgent(Position{X: 1, Y: 0})
	if !ok || a.ID != 0 {
		t.Error("agent not found at new position")
	}
}

func TestSolved(t *testing.T) {
	w := NewWorld(smallMap())
	target := Position{X: 4, Y: 4}
	w.PutAgent(Position{X: 0, Y: 0}, &Agent{ID: 0, Target: target})
	if Solved(w) {
		t.Error("Solved reported true before agent reached target")
	}
	w.MoveAgent(Position{X: 0, Y: 0}, target)
	if !Solved(w) {
		t.Error("Solved reported false after agent reached target")
	}
}

func TestJointActionRejectsSwap(t *testing.T) {
	w := NewWorld(smallMap())
	p1, p2 := Position{X: 0, Y: 0}, Position{X: 1, Y: 0}
	w.PutAgent(p1, &Agent{ID: 0, Target: p2})
	w.PutAgent(p2, &Agent{ID: 1, Target: p1})

	j := NewJointAction()
	j.Add(w, Action{From: p1, Dir: East})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on swap move")
		}
	}()
	j.Add(w, Action{From: p2, Dir: West})
}

func TestJointActionRejectsDuplicateSource(t *testing.T) {
	w := NewWorld(smallMap())
	p1 := Position{X: 0, Y: 0}
	w.PutAgent(p1, &Agent{ID: 0, Target: p1})

	j := NewJointAction()
	j.Add(w, Action{From: p1, Wait: true})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate source")
		}
	}()
	j.Add(w, Action{From: p1, Dir: East})
}

func TestApplyAppliesAllMovesSimultaneously(t *testing.T) {
	w := NewWorld(smallMap())
	p1, p2 := Position{X: 0, Y: 0}, Position{X: 4, Y: 0}
	w.PutAgent(p1, &Agent{ID: 0, Target: Position{X: 1, Y: 0}})
	w.PutAgent(p2, &Agent{ID: 1, Target: Position{X: 3, Y: 0}})

	j := NewJointAction()
	j.Add(w, Action{From: p1, Dir: East})
	j.Add(w, Action{From: p2, Dir: West})

	next := Apply(w, j)
	if _, ok := next.GetAgent(Position{X: 1, Y: 0}); !ok {
		t.Error("agent 0 did not move east")
	}
	if _, ok := next.GetAgent(Position{X: 3, Y: 0}); !ok {
		t.Error("agent 1 did not move west")
	}
	if w.NumAgents() != 2 {
		t.Error("original world was mutated by Apply")
	}
}

func TestMoveAgentsAppliesFollowChainSimultaneously(t *testing.T) {
	w := NewWorld(NewMap(4, 1))
	a, b, c := Position{X: 0, Y: 0}, Position{X: 1, Y: 0}, Position{X: 2, Y: 0}
	w.PutAgent(a, &Agent{ID: 0, Target: Position{X: 3, Y: 0}})
	w.PutAgent(b, &Agent{ID: 1, Target: Position{X: 3, Y: 0}})
	w.PutAgent(c, &Agent{ID: 2, Target: Position{X: 3, Y: 0}})

	// Each agent steps into the cell the next agent in line is vacating this
	// same tick; applying in slice order (a before b before c) must not panic.
	w.MoveAgents([]Action{
		{From: a, Dir: East},
		{From: b, Dir: East},
		{From: c, Dir: East},
	})

	if _, ok := w.GetAgent(b); !ok {
		t.Error("agent 0 did not land where agent 1 used to be")
	}
	if _, ok := w.GetAgent(c); !ok {
		t.Error("agent 1 did not land where agent 2 used to be")
	}
	if _, ok := w.GetAgent(Position{X: 3, Y: 0}); !ok {
		t.Error("agent 2 did not advance")
	}
	if w.NumAgents() != 3 {
		t.Errorf("NumAgents() = %d, want 3", w.NumAgents())
	}
}

func TestMoveAgentsRejectsSharedDestination(t *testing.T) {
	w := NewWorld(NewMap(3, 2))
	a, b := Position{X: 0, Y: 0}, Position{X: 1, Y: 1}
	w.PutAgent(a, &Agent{ID: 0, Target: Position{X: 1, Y: 0}})
	w.PutAgent(b, &Agent{ID: 1, Target: Position{X: 1, Y: 0}})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on shared destination")
		}
	}()
	w.MoveAgents([]Action{
		{From: a, Dir: East},  // (0,0) -> (1,0)
		{From: b, Dir: North}, // (1,1) -> (1,0)
	})
}

func TestPathNextAndAdvance(t *testing.T) {
	goal := Position{X: 3, Y: 3}
	start := Position{X: 0, Y: 0}
	p := Path{goal, {X: 2, Y: 2}, {X: 1, Y: 1}, start}

	step, ok := p.Next()
	if !ok || step != start {
		t.Fatalf("Next() = %v, %v, want %v, true", step, ok, start)
	}
	p = p.Advance()
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}
	g, ok := p.Goal()
	if !ok || g != goal {
		t.Errorf("Goal() = %v, want %v", g, goal)
	}
}

func TestPathReverseIsForwardOrder(t *testing.T) {
	goal := Position{X: 2, Y: 0}
	mid := Position{X: 1, Y: 0}
	start := Position{X: 0, Y: 0}
	p := Path{goal, mid, start}

	fwd := p.Reverse()
	want := []Position{start, mid, goal}
	for i := range want {
		if fwd[i] != want[i] {
			t.Fatalf("Reverse()[%d] = %v, want %v", i, fwd[i], want[i])
		}
	}
}

func TestObstacleRescheduleStaysNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	o := NewObstacle(0, 0, 0, 0.1, rng)
	if o.NextMove < 0 {
		t.Errorf("NextMove = %d, want >= 0", o.NextMove)
	}
}

func TestWorldAdvanceObstaclesMovesOrStays(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	w := NewWorld(smallMap())
	p := Position{X: 0, Y: 0}
	w.PutObstacle(p, 0, 0.01, rng)

	for i := 0; i < 5; i++ {
		w.AdvanceObstacles(rng)
	}

	count := 0
	w.Obstacles(func(Position, *Obstacle) { count++ })
	if count != 1 {
		t.Errorf("obstacle count = %d, want 1", count)
	}
}
