package algo

import "github.com/elektrokombinacija/gridmapf/internal/core"

// Owner identifies who holds a reservation: an agent ID for WHCA*, or the
// ID of a group's first agent for operator decomposition. Both solvers share this single
// table shape rather than keeping two bespoke ones.
type Owner int

// ReservationTable tracks which (position, tick) cells are claimed, plus a
// from-pointer per cell so edge (swap) conflicts can be detected, and a
// separate table of permanent reservations for agents that have already
// reached and are holding their goal.
type ReservationTable struct {
	byTime map[core.PositionTime]reservation
	perm   map[core.Position]permReservation
}

type reservation struct {
	owner   Owner
	from    core.Position
	hasFrom bool
}

type permReservation struct {
	owner    Owner
	fromTime core.Tick
}

// NewReservationTable returns an empty table.
func NewReservationTable() *ReservationTable {
	return &ReservationTable{
		byTime: make(map[core.PositionTime]reservation),
		perm:   make(map[core.Position]permReservation),
	}
}

// Reserve claims pt for owner, optionally recording the cell moved from so
// that edge conflicts (two agents swapping) can be detected by Swapped.
func (t *ReservationTable) Reserve(pt core.PositionTime, owner Owner, from core.Position, hasFrom bool) {
	t.byTime[pt] = reservation{owner: owner, from: from, hasFrom: hasFrom}
}

// Unreserve releases a previously claimed cell.
func (t *ReservationTable) Unreserve(pt core.PositionTime) {
	delete(t.byTime, pt)
}

// ReservePermanent marks p as held by owner from fromTime onward, for an
// agent that has reached its goal and must not be displaced by a later
// plan.
func (t *ReservationTable) ReservePermanent(p core.Position, owner Owner, fromTime core.Tick) {
	t.perm[p] = permReservation{owner: owner, fromTime: fromTime}
}

// UnreservePermanent releases a permanent hold.
func (t *ReservationTable) UnreservePermanent(p core.Position) {
	delete(t.perm, p)
}

// Occupied reports whether pt is claimed by any owner other than except, via
// either the time-indexed or the permanent table.
func (t *ReservationTable) Occupied(pt core.PositionTime, except Owner) bool {
	if r, ok := t.byTime[pt]; ok && r.owner != except {
		return true
	}
	if r, ok := t.perm[pt.Pos]; ok && r.owner != except && pt.Time >= r.fromTime {
		return true
	}
	return false
}

// Swapped reports whether moving from `from` to pt.Pos at pt.Time would swap
// positions with another owner's reserved move (the standard edge conflict:
// someone else reserved `from` at pt.Time, arriving there from pt.Pos).
func (t *ReservationTable) Swapped(from core.Position, pt core.PositionTime, except Owner) bool {
	prior := core.PositionTime{Pos: from, Time: pt.Time}
	r, ok := t.byTime[prior]
	return ok && r.owner != except && r.hasFrom && r.from == pt.Pos
}

// OwnerAt returns the owner holding pt, if any.
func (t *ReservationTable) OwnerAt(pt core.PositionTime) (Owner, bool) {
	if r, ok := t.byTime[pt]; ok {
		return r.owner, true
	}
	if r, ok := t.perm[pt.Pos]; ok && pt.Time >= r.fromTime {
		return r.owner, true
	}
	return 0, false
}
