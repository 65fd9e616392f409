package core

// Path is a sequence of cells an agent will visit, stored in reverse: the
// final goal is at index 0 and the next step to take is at the end, so
// popping the next step is O(1). An empty path means the agent has arrived.
type Path []Position

// Next returns the next cell to move to, and true if the path is non-empty.
func (p Path) Next() (Position, bool) {
	if len(p) == 0 {
		return Position{}, false
	}
	return p[len(p)-1], true
}

// Advance drops the next step, returning the remainder.
func (p Path) Advance() Path {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

// Goal returns the path's final destination, and true if the path is
// non-empty.
func (p Path) Goal() (Position, bool) {
	if len(p) == 0 {
		return Position{}, false
	}
	return p[0], true
}

// Len reports the number of steps remaining.
func (p Path) Len() int { return len(p) }

// Reverse returns the path in forward (start-to-goal) order, for display or
// serialization. It does not mutate p.
func (p Path) Reverse() []Position {
	out := make([]Position, len(p))
	for i, pos := range p {
		out[len(p)-1-i] = pos
	}
	return out
}
