package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// timedState is the search state for reservation-aware planning: a cell at
// a specific tick, since cooperative search must reason about when an agent
// occupies a cell, not just where.
type timedState struct {
	pos  core.Position
	tick core.Tick
}

// defaultRejoinLimit bounds the node budget of a rejoin-to-old-path search:
// small enough that a failed rejoin attempt is cheap relative to a full
// replan, but large enough to cross a short-lived obstacle.
const defaultRejoinLimit = 64

// WHCA implements windowed hierarchical cooperative A*: agents plan against
// a shared space-time reservation table so their paths never collide, using
// a per-agent cached reverse search for an admissible distance heuristic,
// and an obstacle predictor that both penalizes the heuristic and rules out
// cells it considers too likely occupied. Window caps how many ticks ahead
// a single search commits to before the agent must replan against newer
// reservations; Window <= 0 means search to the true goal every time.
type WHCA struct {
	sep         *separatePaths
	rejoinStats *stats
	rng         *rand.Rand
	Window      int
	RejoinLimit int
	now         core.Tick
	table       *ReservationTable
	predictor   Predictor
	heurs       map[core.AgentID]*ReverseSearch[core.Position]
}

// NewWHCA returns a WHCA* solver with reservations seeded from w's current
// agent placement, matching cooperative_a_star's constructor, which treats
// every agent's starting cell as permanently reserved until it first
// replans. predictor may be nil, which is treated as NullPredictor.
func NewWHCA(w *core.World, rng *rand.Rand, window int, predictor Predictor) *WHCA {
	if predictor == nil {
		predictor = NullPredictor{}
	}
	h := &WHCA{
		rejoinStats: newStats("rejoin_attempts", "rejoin_successes", "rejoin_nodes"),
		rng:         rng,
		Window:      window,
		RejoinLimit: defaultRejoinLimit,
		predictor:   predictor,
		table:       NewReservationTable(),
		heurs:       make(map[core.AgentID]*ReverseSearch[core.Position]),
	}
	w.Agents(func(p core.Position, a *core.Agent) {
		h.table.ReservePermanent(p, Owner(a.ID), w.Tick())
	})
	h.sep = newSeparatePaths(h.findPath)
	return h
}

func (h *WHCA) Name() string { return "WHCA*" }

func (h *WHCA) Step(w *core.World) (*core.World, error) {
	h.now = w.Tick()
	h.predictor.UpdateObstacles(w)
	return h.sep.step(w, h.rng)
}

func (h *WHCA) StatNames() []string {
	return append(h.sep.StatNames(), h.rejoinStats.StatNames()...)
}

func (h *WHCA) Stats() []int64 {
	return append(h.sep.Stats(), h.rejoinStats.Stats()...)
}

func (h *WHCA) GetPath(id core.AgentID) []core.Position { return h.sep.getPath(id) }

func (h *WHCA) GetObstacleField() map[core.PositionTime]float64 {
	return fieldOverWindow(h.predictor, h.now, windowOrOne(h.Window))
}

func (h *WHCA) SetWindow(w int) { h.Window = w }

func (h *WHCA) findPath(from core.Position, w *core.World, old core.Path) core.Path {
	a, ok := w.GetAgent(from)
	if !ok {
		return nil
	}
	owner := Owner(a.ID)
	h.unreserve(owner)
	now := w.Tick()

	if spliced := h.tryRejoin(from, w, owner, old, now); spliced != nil {
		h.reserve(owner, from, spliced, now)
		return spliced
	}

	heur := h.heuristicFor(a.ID, a.Target, w)
	window := h.Window

	result := Search(Policy[timedState]{
		Successors: h.successorsOf(w, from, owner),
		Cost:       func(a, b timedState) float64 { return 1 },
		Heuristic: func(s timedState) float64 {
			d, ok := heur.DistanceTo(s.pos)
			if !ok {
				d = 1e9
			}
			return PenalizedHeuristic(h.predictor, core.PositionTime{Pos: s.pos, Time: s.tick}, d)
		},
		IsGoal: func(s timedState) bool {
			if s.pos == a.Target {
				return true
			}
			return window > 0 && int(s.tick-now) >= window
		},
	}, timedState{pos: from, tick: now}, nil)

	h.sep.add("nodes_expanded", int64(result.Expanded))
	if !result.Found {
		return nil
	}

	forward := make([]core.Position, len(result.Path))
	for i, s := range result.Path {
		forward[i] = s.pos
	}
	path := toReversePath(forward)
	h.reserve(owner, from, path, now)
	return path
}

// tryRejoin attempts to reconnect to old, the agent's path from before the
// cached-step check invalidated it, instead of replanning a full path from
// scratch. It runs a bounded search (RejoinLimit nodes) outward from from
// toward any cell still on old's route, using plain Manhattan distance to
// the nearest such cell as its heuristic since the target is "any of
// these" rather than a single point, and the same reservation/predictor
// passability rules as the full search. On success it splices the winning
// join path onto whatever of old comes after the rejoin point.
func (h *WHCA) tryRejoin(from core.Position, w *core.World, owner Owner, old core.Path, now core.Tick) core.Path {
	if h.RejoinLimit <= 0 || old.Len() == 0 {
		return nil
	}
	h.rejoinStats.inc("rejoin_attempts")

	remaining := old.Reverse()
	onOld := make(map[core.Position]bool, len(remaining))
	for _, p := range remaining {
		onOld[p] = true
	}

	expansions := 0
	result := Search(Policy[timedState]{
		Successors: h.successorsOf(w, from, owner),
		Cost:       func(a, b timedState) float64 { return 1 },
		Heuristic:  func(s timedState) float64 { return nearestManhattan(s.pos, remaining) },
		IsGoal:     func(s timedState) bool { return onOld[s.pos] },
	}, timedState{pos: from, tick: now}, func() bool {
		expansions++
		return expansions > h.RejoinLimit
	})
	h.rejoinStats.add("rejoin_nodes", int64(result.Expanded))
	if !result.Found {
		return nil
	}
	h.rejoinStats.inc("rejoin_successes")

	joinForward := make([]core.Position, 0, len(result.Path)-1)
	for _, s := range result.Path[1:] {
		joinForward = append(joinForward, s.pos)
	}
	joinPos := result.Path[len(result.Path)-1].pos

	idx := 0
	for i, p := range remaining {
		if p == joinPos {
			idx = i
			break
		}
	}
	tail := remaining[idx+1:]

	return reversePath(append(joinForward, tail...))
}

// successorsOf returns the timedState successor function shared by the
// primary search and the rejoin search: in bounds, not a wall, not holding
// another agent if it is an immediate neighbour of the mover's current cell
// (the mover's own cell and cells farther out are not subject to that
// check), not reserved by someone else at the arrival tick, no edge swap,
// and not too likely obstacle-occupied by the predictor.
func (h *WHCA) successorsOf(w *core.World, from core.Position, owner Owner) func(timedState) []timedState {
	passable := func(p core.Position) bool {
		if w.Map().Get(p) != core.Free {
			return false
		}
		return !core.Neighbours(p, from) || w.Get(p) != core.TileAgent
	}
	return func(s timedState) []timedState {
		var out []timedState
		for _, d := range core.AllDirections {
			np := core.Translate(s.pos, d)
			if !w.Map().InBounds(np) || !passable(np) {
				continue
			}
			nt := timedState{pos: np, tick: s.tick + 1}
			pt := core.PositionTime{Pos: np, Time: nt.tick}
			if h.table.Occupied(pt, owner) {
				continue
			}
			if h.table.Swapped(s.pos, pt, owner) {
				continue
			}
			if PredictedImpassable(h.predictor, pt) {
				continue
			}
			out = append(out, nt)
		}
		return out
	}
}

// reserve claims every cell of path at the tick it's occupied (path's
// steps are one tick apart starting at now+1) and holds the final cell
// permanently from the tick the path ends.
func (h *WHCA) reserve(owner Owner, from core.Position, path core.Path, now core.Tick) {
	forward := path.Reverse()
	prev := from
	t := now
	for _, p := range forward {
		t++
		h.table.Reserve(core.PositionTime{Pos: p, Time: t}, owner, prev, true)
		prev = p
	}
	if len(forward) > 0 {
		h.table.ReservePermanent(forward[len(forward)-1], owner, t)
	}
}

// heuristicFor returns (creating if necessary) the per-agent reverse search
// used to answer admissible distance queries to target without rerunning a
// full search for every successor evaluated.
func (h *WHCA) heuristicFor(id core.AgentID, target core.Position, w *core.World) *ReverseSearch[core.Position] {
	if r, ok := h.heurs[id]; ok {
		return r
	}
	successors := func(p core.Position) []core.Position {
		var out []core.Position
		for _, d := range core.AllDirections {
			np := core.Translate(p, d)
			if w.Map().InBounds(np) && w.Map().Get(np) != core.Wall {
				out = append(out, np)
			}
		}
		return out
	}
	r := NewReverseSearch(target, successors, func(core.Position, core.Position) float64 { return 1 })
	h.heurs[id] = r
	return r
}

func (h *WHCA) unreserve(owner Owner) {
	for pt, r := range h.table.byTime {
		if r.owner == owner {
			delete(h.table.byTime, pt)
		}
	}
	for p, r := range h.table.perm {
		if r.owner == owner {
			delete(h.table.perm, p)
		}
	}
}

// nearestManhattan returns the smallest Manhattan distance from p to any
// position in targets, or 0 if targets is empty.
func nearestManhattan(p core.Position, targets []core.Position) float64 {
	best := -1
	for _, t := range targets {
		if d := core.ManhattanDistance(p, t); best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return 0
	}
	return float64(best)
}
