package algo

import "testing"

// line is a trivial 1-D grid 0..9 used to exercise the generic engine
// without pulling in core.
func lineSuccessors(n int) func(int) []int {
	return func(s int) []int {
		var out []int
		if s > 0 {
			out = append(out, s-1)
		}
		if s < n-1 {
			out = append(out, s+1)
		}
		return out
	}
}

func TestSearchFindsShortestPath(t *testing.T) {
	result := Search(Policy[int]{
		Successors: lineSuccessors(10),
		Cost:       func(int, int) float64 { return 1 },
		Heuristic:  func(s int) float64 { return float64(abs(9 - s)) },
		IsGoal:     func(s int) bool { return s == 9 },
	}, 0, nil)

	if !result.Found {
		t.Fatal("expected path to be found")
	}
	if result.Cost != 9 {
		t.Errorf("Cost = %v, want 9", result.Cost)
	}
	if result.Path[0] != 0 || result.Path[len(result.Path)-1] != 9 {
		t.Errorf("Path = %v, want to start at 0 and end at 9", result.Path)
	}
}

func TestSearchReportsNotFound(t *testing.T) {
	result := Search(Policy[int]{
		Successors: func(int) []int { return nil },
		Cost:       func(int, int) float64 { return 1 },
		Heuristic:  func(int) float64 { return 0 },
		IsGoal:     func(s int) bool { return s == 99 },
	}, 0, nil)

	if result.Found {
		t.Fatal("expected no path to be found")
	}
}

func TestSearchRespectsCancel(t *testing.T) {
	calls := 0
	result := Search(Policy[int]{
		Successors: lineSuccessors(1000),
		Cost:       func(int, int) float64 { return 1 },
		Heuristic:  func(int) float64 { return 0 },
		IsGoal:     func(s int) bool { return s == 999 },
	}, 0, func() bool {
		calls++
		return calls > 2
	})

	if result.Found {
		t.Fatal("expected cancellation to stop the search before completion")
	}
}

func TestReverseSearchComputesDistance(t *testing.T) {
	rs := NewReverseSearch(9, lineSuccessors(10), func(int, int) float64 { return 1 })
	d, ok := rs.DistanceTo(0)
	if !ok || d != 9 {
		t.Errorf("DistanceTo(0) = %v, %v, want 9, true", d, ok)
	}
	d, ok = rs.DistanceTo(5)
	if !ok || d != 4 {
		t.Errorf("DistanceTo(5) = %v, %v, want 4, true", d, ok)
	}
}
