package algo

import (
	"math/rand"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// AgentAction names what a single agent did to reach its post-move position
// in one operator-decomposition tick. Ordinals 0-3 intentionally match
// core.Direction so the two enumerate the same four cardinal moves.
type AgentAction int

const (
	ActionNorth AgentAction = iota
	ActionEast
	ActionSouth
	ActionWest
	ActionStay
	ActionUnassigned
)

// agentRecord is one group member's position within a partial or complete
// joint step, plus the real-world cell it started this tick from (where
// every replan of the tick starts, and needed to apply the eventual
// one-step move).
type agentRecord struct {
	id       core.AgentID
	target   core.Position
	pos      core.Position
	startPos core.Position
	action   AgentAction
}

// odState is operator decomposition's search state: a vector of per-agent
// records plus an index into that vector naming whose move is being
// decided next. Assigning the last unassigned agent's move immediately
// wraps to next == 0 and tick+1, so a state with next == 0 always marks a
// genuine tick boundary rather than a separate "all assigned" node.
type odState struct {
	agents []agentRecord
	next   int
	tick   core.Tick
}

// odKey gives odState a comparable, hashable identity for the generic
// search engine's open/closed maps, since a slice field makes the struct
// itself incomparable. Two states with the same key are the same state for
// dedup purposes.
//
// For an already-assigned agent (index < next) the key includes its
// action, not just its post-move position: two branches can put an
// assigned agent at the same post-move cell by two different actions
// (hence two different pre-move positions), and whether that distinction
// matters downstream depends on whether some still-unassigned agent is
// adjacent to either pre-move cell. Rather than reconstruct that adjacency
// check here, the key conservatively treats differing actions as differing
// states, so two genuinely different joint configurations never collapse
// into one even when they happen to share every agent's post-move
// position.
type odKey struct {
	packed string
	next   int
	tick   core.Tick
}

func (s odState) key() odKey {
	buf := make([]byte, 0, len(s.agents)*5)
	for i, a := range s.agents {
		buf = append(buf, byte(a.pos.X), byte(a.pos.X>>8), byte(a.pos.Y), byte(a.pos.Y>>8))
		if i < s.next {
			buf = append(buf, byte(a.action))
		} else {
			buf = append(buf, 0xff)
		}
	}
	return odKey{packed: string(buf), next: s.next, tick: s.tick}
}

// group is a set of agents planned jointly because independent planning
// could not find them all conflict-free moves.
type group struct {
	agents []agentRecord
}

// OD implements operator decomposition: agents are planned independently
// when possible, branching on one agent's move at a time within a joint
// search rather than generating the full cross product of moves up front,
// and merged into a single jointly-searched group only when independent
// planning gets stuck against another group's reservations.
type OD struct {
	*stats
	rng       *rand.Rand
	window    int
	predictor Predictor
	now       core.Tick

	groups   []*group
	table    *ReservationTable
	heurs    map[core.AgentID]*ReverseSearch[core.Position]
	lastPath map[core.AgentID]core.Path

	maxGroupSize int
}

// NewOD returns an operator-decomposition solver. window bounds how many
// ticks ahead a single joint search commits to; predictor may be nil, which
// is treated as NullPredictor.
func NewOD(rng *rand.Rand, window int, predictor Predictor) *OD {
	if predictor == nil {
		predictor = NullPredictor{}
	}
	return &OD{
		stats: newStats("replans", "plan_invalid", "nodes_primary", "nodes_heuristic",
			"nodes_expanded", "max_group_size", "group_infeasible"),
		rng:       rng,
		window:    window,
		predictor: predictor,
		table:     NewReservationTable(),
		heurs:     make(map[core.AgentID]*ReverseSearch[core.Position]),
		lastPath:  make(map[core.AgentID]core.Path),
	}
}

func (o *OD) Name() string { return "OD" }

// SetWindow updates the planning horizon for subsequent replans.
func (o *OD) SetWindow(w int) { o.window = w }

func (o *OD) GetPath(id core.AgentID) []core.Position {
	return o.lastPath[id].Reverse()
}

func (o *OD) GetObstacleField() map[core.PositionTime]float64 {
	return fieldOverWindow(o.predictor, o.now, windowOrOne(o.window))
}

func (o *OD) Step(w *core.World) (*core.World, error) {
	o.now = w.Tick()
	o.predictor.UpdateObstacles(w)
	o.regroup(w)
	o.replan(w)

	next := w.Clone()
	var moves []core.Action
	for _, g := range o.groups {
		for _, rec := range g.agents {
			if rec.pos != rec.startPos {
				moves = append(moves, core.Action{From: rec.startPos, Dir: core.DirectionTo(rec.startPos, rec.pos)})
			}
		}
	}
	if len(moves) > 0 {
		next.MoveAgents(moves)
	}
	return next, nil
}

// regroup rebuilds the group list from the world's current agents, carrying
// over existing multi-agent groups (so agents merged on a prior tick stay
// merged) but dropping any agent that has reached its target.
func (o *OD) regroup(w *core.World) {
	active := make(map[core.AgentID]agentRecord)
	w.Agents(func(p core.Position, a *core.Agent) {
		if p == a.Target {
			delete(o.lastPath, a.ID)
			return
		}
		active[a.ID] = agentRecord{id: a.ID, target: a.Target, pos: p, startPos: p}
	})

	var rebuilt []*group
	seen := make(map[core.AgentID]bool)
	for _, g := range o.groups {
		var members []agentRecord
		for _, old := range g.agents {
			if rec, ok := active[old.id]; ok && !seen[old.id] {
				members = append(members, rec)
				seen[old.id] = true
			}
		}
		if len(members) > 0 {
			rebuilt = append(rebuilt, &group{agents: members})
		}
	}
	for id, rec := range active {
		if !seen[id] {
			rebuilt = append(rebuilt, &group{agents: []agentRecord{rec}})
			seen[id] = true
		}
	}
	o.groups = rebuilt
}

// replan plans every group, merging groups that get stuck against each
// other's reservations and retrying, up to once per group to bound the
// work.
func (o *OD) replan(w *core.World) {
	attempts := len(o.groups) + 1
	for attempts > 0 {
		attempts--
		stuckA, stuckB, done := o.replanGroups(w)
		if done {
			break
		}
		if stuckA == nil {
			break
		}
		o.mergeGroups(stuckA, stuckB)
	}

	for _, g := range o.groups {
		if len(g.agents) > o.maxGroupSize {
			o.maxGroupSize = len(g.agents)
		}
	}
	o.values["max_group_size"] = int64(o.maxGroupSize)
}

// replanGroups attempts to plan every group against a fresh reservation
// table, in a shuffled order. If a singleton group cannot find any plan, it
// returns that group and the group holding the reservation its search could
// not get past, so the caller can merge them and retry; when even a merged
// group's search fails, the stuck group's agents stay in place for this
// tick, incrementing group_infeasible rather than failing the whole tick's
// plan outright.
func (o *OD) replanGroups(w *core.World) (stuck, conflicting *group, done bool) {
	o.table = NewReservationTable()
	order := append([]*group(nil), o.groups...)
	o.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, g := range order {
		oneStep, boundaries, blockedBy, ok := o.replanGroup(w, g)
		o.inc("replans")
		if !ok {
			if blockedBy != nil && len(g.agents) == 1 {
				return g, blockedBy, false
			}
			o.inc("group_infeasible")
			o.inc("plan_invalid")
			for i := range g.agents {
				g.agents[i].pos = g.agents[i].startPos
				delete(o.lastPath, g.agents[i].id)
			}
			o.reserveStay(g)
			continue
		}
		o.reserveGroup(g, boundaries)
		o.recordPaths(g, boundaries)
		g.agents = oneStep.agents
	}
	return nil, nil, true
}

// recordPaths caches g's winning multi-tick plan (every boundary from the
// immediate one onward) per agent ID, so GetPath can answer with the plan OD
// already committed to beyond this single tick, not just its next step.
func (o *OD) recordPaths(g *group, boundaries []odState) {
	for j, rec := range g.agents {
		var forward []core.Position
		for _, b := range boundaries[1:] {
			forward = append(forward, b.agents[j].pos)
		}
		if len(forward) == 0 {
			delete(o.lastPath, rec.id)
			continue
		}
		o.lastPath[rec.id] = reversePath(forward)
	}
}

// mergeGroups combines a and b into a single group, replacing both entries
// in o.groups.
func (o *OD) mergeGroups(a, b *group) {
	merged := &group{agents: append(append([]agentRecord{}, a.agents...), b.agents...)}
	var rebuilt []*group
	for _, g := range o.groups {
		if g == a || g == b {
			continue
		}
		rebuilt = append(rebuilt, g)
	}
	rebuilt = append(rebuilt, merged)
	o.groups = rebuilt
}

// replanGroup runs the joint operator-decomposition search for g's agents.
// On success it returns the state to apply for this single real tick
// (oneStep), every tick-boundary state along the winning path in order
// (boundaries, used to reserve the whole committed plan, not just the
// first step), and ok == true. On failure it returns the group owning the
// reservation on the first rejected move whose cell has an owner (nil if
// none did), as a best-effort merge candidate.
func (o *OD) replanGroup(w *core.World, g *group) (oneStep odState, boundaries []odState, blockedBy *group, ok bool) {
	start := odState{agents: append([]agentRecord{}, g.agents...), next: 0, tick: w.Tick()}
	for i := range start.agents {
		start.agents[i].pos = start.agents[i].startPos
		start.agents[i].action = ActionUnassigned
	}

	states := map[odKey]odState{start.key(): start}

	policy := Policy[odKey]{
		Successors: func(k odKey) []odKey {
			cur := states[k]
			rec := cur.agents[cur.next]
			var out []odKey
			for a := ActionNorth; a <= ActionStay; a++ {
				np := stepPosition(rec.pos, a)
				if !o.groupMovePassable(w, g, cur, rec, np) {
					if blockedBy == nil {
						blockedBy = o.conflictingGroup(np, cur.tick+1)
					}
					continue
				}
				nxt := advance(cur, a, np)
				states[nxt.key()] = nxt
				out = append(out, nxt.key())
			}
			return out
		},
		Cost: func(a, b odKey) float64 {
			if states[b].tick != states[a].tick {
				return 1
			}
			return 0
		},
		Heuristic: func(k odKey) float64 {
			cur := states[k]
			var h float64
			for _, rec := range cur.agents {
				d, ok := o.heuristicFor(rec.id, rec.target, w).DistanceTo(rec.pos)
				if ok {
					h += d
				}
			}
			return h
		},
		IsGoal: func(k odKey) bool {
			cur := states[k]
			if cur.next != 0 {
				return false
			}
			if allAtTarget(cur) {
				return true
			}
			return o.window > 0 && int(cur.tick-w.Tick()) >= o.window
		},
		// Only full (next == 0, tick-boundary) states permanently close.
		// A partial state can be reached again, legitimately distinctly,
		// by a different assignment order within the same tick; closing
		// it early would prune paths the conservative key in odState.key
		// deliberately keeps apart.
		CloseFull: func(k odKey) bool { return states[k].next == 0 },
	}

	result := Search(policy, start.key(), nil)
	o.add("nodes_primary", int64(result.Expanded))
	o.add("nodes_expanded", int64(result.Expanded))

	if !result.Found {
		return odState{}, nil, blockedBy, false
	}

	for _, k := range result.Path {
		s := states[k]
		if s.next == 0 {
			boundaries = append(boundaries, s)
		}
	}
	if len(boundaries) < 2 {
		return boundaries[0], boundaries, nil, true
	}
	return boundaries[1], boundaries, nil, true
}

// groupMovePassable reports whether moving rec to np is legal: in bounds,
// not a wall, not occupied within this tick by an earlier-assigned
// group-mate, and not claimed by another group's reservation at the
// resulting tick (including swap conflicts).
func (o *OD) groupMovePassable(w *core.World, g *group, cur odState, rec agentRecord, np core.Position) bool {
	if !w.Map().InBounds(np) || w.Map().Get(np) == core.Wall {
		return false
	}
	for i := 0; i < cur.next; i++ {
		if cur.agents[i].pos == np {
			return false
		}
	}
	nextTick := cur.tick + 1
	pt := core.PositionTime{Pos: np, Time: nextTick}
	owner := groupOwner(g)
	if o.table.Occupied(pt, owner) {
		return false
	}
	if o.table.Swapped(rec.pos, pt, owner) {
		return false
	}
	if PredictedImpassable(o.predictor, pt) {
		return false
	}
	return true
}

func (o *OD) conflictingGroup(p core.Position, tick core.Tick) *group {
	owner, ok := o.table.OwnerAt(core.PositionTime{Pos: p, Time: tick})
	if !ok {
		return nil
	}
	for _, g := range o.groups {
		if groupOwner(g) == owner {
			return g
		}
	}
	return nil
}

// reserveGroup claims every cell g's winning plan occupies at each
// tick-boundary along boundaries[1:], and marks the final boundary's cells
// as held permanently from that tick on.
func (o *OD) reserveGroup(g *group, boundaries []odState) {
	if len(boundaries) < 2 {
		return
	}
	owner := groupOwner(g)
	for i := 1; i < len(boundaries); i++ {
		prev, cur := boundaries[i-1], boundaries[i]
		for j, rec := range cur.agents {
			pt := core.PositionTime{Pos: rec.pos, Time: cur.tick}
			o.table.Reserve(pt, owner, prev.agents[j].pos, true)
		}
	}
	last := boundaries[len(boundaries)-1]
	for _, rec := range last.agents {
		o.table.ReservePermanent(rec.pos, owner, last.tick)
	}
}

func (o *OD) reserveStay(g *group) {
	owner := groupOwner(g)
	for _, rec := range g.agents {
		o.table.ReservePermanent(rec.pos, owner, 0)
	}
}

func (o *OD) heuristicFor(id core.AgentID, target core.Position, w *core.World) *ReverseSearch[core.Position] {
	if r, ok := o.heurs[id]; ok {
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
	o.heurs[id] = r
	return r
}

func groupOwner(g *group) Owner {
	if len(g.agents) == 0 {
		return Owner(-1)
	}
	return Owner(g.agents[0].id)
}

func stepPosition(p core.Position, a AgentAction) core.Position {
	switch a {
	case ActionNorth:
		return core.Translate(p, core.North)
	case ActionEast:
		return core.Translate(p, core.East)
	case ActionSouth:
		return core.Translate(p, core.South)
	case ActionWest:
		return core.Translate(p, core.West)
	default:
		return p
	}
}

// advance returns the successor state produced by assigning action a to
// cur's next agent, putting it at np. When that was the last unassigned
// agent, the tick completes: next wraps to 0 and tick increments.
func advance(cur odState, a AgentAction, np core.Position) odState {
	next := odState{agents: append([]agentRecord{}, cur.agents...), next: cur.next, tick: cur.tick}
	next.agents[cur.next].pos = np
	next.agents[cur.next].action = a
	if cur.next+1 == len(cur.agents) {
		next.next = 0
		next.tick = cur.tick + 1
	} else {
		next.next = cur.next + 1
	}
	return next
}

func allAtTarget(s odState) bool {
	for _, a := range s.agents {
		if a.pos != a.target {
			return false
		}
	}
	return true
}
