package scenario

import (
	"encoding/json"
	"testing"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

func TestBroadcastWithNoSubscribersDoesNotPanic(t *testing.T) {
	m := core.NewMap(3, 3)
	w := core.NewWorld(m)
	w.PutAgent(core.Position{X: 0, Y: 0}, &core.Agent{ID: 0, Target: core.Position{X: 2, Y: 2}})

	feed := NewLiveFeed("run-1")
	feed.Broadcast(w)
}

func TestTickMessageWireFormat(t *testing.T) {
	m := core.NewMap(3, 3)
	w := core.NewWorld(m)
	w.PutAgent(core.Position{X: 0, Y: 0}, &core.Agent{ID: 0, Target: core.Position{X: 2, Y: 2}})

	msg := tickMessage{
		Type:   "tick",
		RunID:  "run-1",
		Tick:   uint64(w.Tick()),
		Solved: core.Solved(w),
		Agents: []agentSnapshot{{ID: 0, Position: core.Position{X: 0, Y: 0}, Target: core.Position{X: 2, Y: 2}}},
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var decoded tickMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if decoded.Type != "tick" || decoded.RunID != "run-1" {
		t.Errorf("round-tripped message mismatch: %+v", decoded)
	}
	if len(decoded.Agents) != 1 || decoded.Agents[0].ID != 0 {
		t.Errorf("round-tripped agents mismatch: %+v", decoded.Agents)
	}
}

func TestUnsubscribeUnknownIDIsNoOp(t *testing.T) {
	feed := NewLiveFeed("run-1")
	feed.Unsubscribe("never-registered")
}
