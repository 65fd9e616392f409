package scenario

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

const writeWait = 5 * time.Second

// LiveFeed broadcasts world snapshots to every subscribed WebSocket
// connection, one subscriber per watching client, so a dashboard or replay
// tool can follow a solver run tick by tick without polling.
type LiveFeed struct {
	mu          sync.Mutex
	subscribers map[string]*feedSubscriber
	runID       string
}

type feedSubscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NewLiveFeed returns a feed for the given run.
func NewLiveFeed(runID string) *LiveFeed {
	return &LiveFeed{
		subscribers: make(map[string]*feedSubscriber),
		runID:       runID,
	}
}

// Subscribe registers conn under id, closing and replacing any existing
// connection registered under the same id.
func (f *LiveFeed) Subscribe(id string, conn *websocket.Conn) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.subscribers[id]; ok {
		existing.conn.Close()
	}
	f.subscribers[id] = &feedSubscriber{conn: conn}
}

// Unsubscribe removes and closes the connection registered under id.
func (f *LiveFeed) Unsubscribe(id string) {
	f.mu.Lock()
	sub, ok := f.subscribers[id]
	delete(f.subscribers, id)
	f.mu.Unlock()
	if ok {
		sub.conn.Close()
	}
}

// tickMessage is the wire shape pushed to every subscriber once per tick.
type tickMessage struct {
	Type      string          `json:"type"`
	RunID     string          `json:"run_id"`
	Tick      uint64          `json:"tick"`
	Agents    []agentSnapshot `json:"agents"`
	Obstacles []core.Position `json:"obstacles"`
	Solved    bool            `json:"solved"`
}

type agentSnapshot struct {
	ID       core.AgentID  `json:"id"`
	Position core.Position `json:"position"`
	Target   core.Position `json:"target"`
}

// Broadcast sends a snapshot of w to every current subscriber, dropping and
// unsubscribing any connection whose write fails.
func (f *LiveFeed) Broadcast(w *core.World) {
	msg := tickMessage{
		Type:   "tick",
		RunID:  f.runID,
		Tick:   uint64(w.Tick()),
		Solved: core.Solved(w),
	}
	w.Agents(func(p core.Position, a *core.Agent) {
		msg.Agents = append(msg.Agents, agentSnapshot{ID: a.ID, Position: p, Target: a.Target})
	})
	w.Obstacles(func(p core.Position, _ *core.Obstacle) {
		msg.Obstacles = append(msg.Obstacles, p)
	})

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	f.mu.Lock()
	subs := make(map[string]*feedSubscriber, len(f.subscribers))
	for id, sub := range f.subscribers {
		subs[id] = sub
	}
	f.mu.Unlock()

	for id, sub := range subs {
		sub.mu.Lock()
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := sub.conn.WriteMessage(websocket.TextMessage, data)
		sub.mu.Unlock()
		if err != nil {
			f.Unsubscribe(id)
		}
	}
}
