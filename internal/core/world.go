package core

import "math/rand"

// World is the mutable simulation state: a fixed Map plus the agents and
// obstacles currently occupying it, and the current tick.
type World struct {
	m *Map

	agents    map[Position]*Agent
	obstacles map[Position]*Obstacle

	tick Tick

	nextObstacleID ObstacleID
}

// NewWorld creates an empty world over m. m is not copied; callers must not
// mutate it afterwards.
func NewWorld(m *Map) *World {
	return &World{
		m:         m,
		agents:    make(map[Position]*Agent),
		obstacles: make(map[Position]*Obstacle),
	}
}

// Map returns the world's permanent map.
func (w *World) Map() *Map { return w.m }

// Tick returns the current simulation tick.
func (w *World) Tick() Tick { return w.tick }

// Get classifies the cell at p: Wall if outside the map or a permanent wall,
// Agent or Obstacle if occupied, Free otherwise.
func (w *World) Get(p Position) Tile {
	if w.m.Get(p) == Wall {
		return Wall
	}
	if _, ok := w.agents[p]; ok {
		return TileAgent
	}
	if _, ok := w.obstacles[p]; ok {
		return TileObstacle
	}
	return Free
}

// GetAgent returns the agent at p, if any.
func (w *World) GetAgent(p Position) (*Agent, bool) {
	a, ok := w.agents[p]
	return a, ok
}

// GetObstacle returns the obstacle at p, if any.
func (w *World) GetObstacle(p Position) (*Obstacle, bool) {
	o, ok := w.obstacles[p]
	return o, ok
}

// Agents calls fn for every (position, agent) pair. Iteration order is
// unspecified; callers needing determinism should collect and sort.
func (w *World) Agents(fn func(Position, *Agent)) {
	for p, a := range w.agents {
		fn(p, a)
	}
}

// Obstacles calls fn for every (position, obstacle) pair.
func (w *World) Obstacles(fn func(Position, *Obstacle)) {
	for p, o := range w.obstacles {
		fn(p, o)
	}
}

// NumAgents returns the number of agents currently in the world.
func (w *World) NumAgents() int { return len(w.agents) }

// PutAgent places a into the world at p. Panics if p is not free or a's ID
// already occupies some other cell.
func (w *World) PutAgent(p Position, a *Agent) {
	if w.Get(p) != Free {
		panicInvariant("core: cannot place agent on non-free tile %v", p)
	}
	w.agents[p] = a
}

// RemoveAgent removes whatever agent occupies p. Panics if there is none.
func (w *World) RemoveAgent(p Position) *Agent {
	a, ok := w.agents[p]
	if !ok {
		panicInvariant("core: no agent at %v to remove", p)
	}
	delete(w.agents, p)
	return a
}

// MoveAgent relocates the agent at from to to, which must be free. Panics if
// there is no agent at from or to is occupied.
func (w *World) MoveAgent(from, to Position) {
	a, ok := w.agents[from]
	if !ok {
		panicInvariant("core: no agent at %v to move", from)
	}
	if from != to && w.Get(to) != Free {
		panicInvariant("core: cannot move agent onto non-free tile %v", to)
	}
	delete(w.agents, from)
	w.agents[to] = a
}

// MoveAgents relocates every agent named in moves at once: every source cell
// is vacated before any destination is claimed, so a move whose destination
// is being vacated by another move in the same batch (two agents following
// each other one cell apart) succeeds regardless of slice order. Panics if a
// move's source has no agent, if two moves share a destination, or if a
// destination is a wall, an obstacle, or an agent not itself vacating this
// batch.
func (w *World) MoveAgents(moves []Action) {
	type dest struct {
		a    *Agent
		from Position
	}
	toAgent := make(map[Position]dest, len(moves))
	vacating := make(map[Position]bool, len(moves))
	for _, mv := range moves {
		a, ok := w.agents[mv.From]
		if !ok {
			panicInvariant("core: no agent at %v to move", mv.From)
		}
		to := mv.To()
		if _, dup := toAgent[to]; dup {
			panicInvariant("core: destination %v claimed by more than one move", to)
		}
		toAgent[to] = dest{a: a, from: mv.From}
		vacating[mv.From] = true
	}
	for to, d := range toAgent {
		if to == d.from {
			continue
		}
		if w.m.Get(to) == Wall {
			panicInvariant("core: cannot move agent onto wall %v", to)
		}
		if _, occupied := w.agents[to]; occupied && !vacating[to] {
			panicInvariant("core: cannot move agent onto non-free tile %v", to)
		}
		if _, occupied := w.obstacles[to]; occupied {
			panicInvariant("core: cannot move agent onto non-free tile %v", to)
		}
	}
	for from := range vacating {
		delete(w.agents, from)
	}
	for to, d := range toAgent {
		w.agents[to] = d.a
	}
}

// PutObstacle places o into the world at p, assigning it a fresh ID. Panics
// if p is not free.
func (w *World) PutObstacle(p Position, mean, stdDev float64, rng *rand.Rand) *Obstacle {
	if w.Get(p) != Free {
		panicInvariant("core: cannot place obstacle on non-free tile %v", p)
	}
	o := NewObstacle(w.nextObstacleID, w.tick, mean, stdDev, rng)
	w.nextObstacleID++
	w.obstacles[p] = o
	return o
}

// RemoveObstacle removes whatever obstacle occupies p. Panics if there is
// none.
func (w *World) RemoveObstacle(p Position) *Obstacle {
	o, ok := w.obstacles[p]
	if !ok {
		panicInvariant("core: no obstacle at %v to remove", p)
	}
	delete(w.obstacles, p)
	return o
}

// AdvanceObstacles advances the tick counter and gives every obstacle whose
// NextMove has arrived a chance to step to a free cardinal neighbour, chosen
// uniformly among the free neighbours available. An obstacle with no free
// neighbour stays put but is still rescheduled.
func (w *World) AdvanceObstacles(rng *rand.Rand) {
	w.tick++

	var due []Position
	for p, o := range w.obstacles {
		if o.NextMove <= w.tick {
			due = append(due, p)
		}
	}
	rng.Shuffle(len(due), func(i, j int) { due[i], due[j] = due[j], due[i] })

	// Each obstacle's destination is decided and committed against the live
	// map before the next one is considered, so an already-moved obstacle's
	// vacated cell is immediately available and no two obstacles can ever be
	// assigned the same destination.
	for _, p := range due {
		o, ok := w.obstacles[p]
		if !ok {
			continue
		}
		var free []Position
		for _, d := range AllDirections {
			np := Translate(p, d)
			if w.m.Get(np) != Wall && w.Get(np) == Free {
				free = append(free, np)
			}
		}
		to := p
		if len(free) > 0 {
			to = free[rng.Intn(len(free))]
		}
		if to != p {
			delete(w.obstacles, p)
			w.obstacles[to] = o
		}
		o.Reschedule(w.tick, rng)
	}
}

// Clone returns a deep copy of the world. The underlying Map is shared, since
// it is immutable.
func (w *World) Clone() *World {
	cp := &World{
		m:              w.m,
		agents:         make(map[Position]*Agent, len(w.agents)),
		obstacles:      make(map[Position]*Obstacle, len(w.obstacles)),
		tick:           w.tick,
		nextObstacleID: w.nextObstacleID,
	}
	for p, a := range w.agents {
		cpA := *a
		cp.agents[p] = &cpA
	}
	for p, o := range w.obstacles {
		cpO := *o
		cp.obstacles[p] = &cpO
	}
	return cp
}

// Solved reports whether every agent in w currently occupies its target.
func Solved(w *World) bool {
	for p, a := range w.agents {
		if p != a.Target {
			return false
		}
	}
	return true
}
