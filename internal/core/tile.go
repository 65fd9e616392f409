package core

// Tile classifies what currently occupies a cell. Wall is permanent;
// Obstacle and Agent are derived from the moving occupants tracked by World.
type Tile int

const (
	Free Tile = iota
	Wall
	TileObstacle
	TileAgent
)

func (t Tile) String() string {
	switch t {
	case Free:
		return "free"
	case Wall:
		return "wall"
	case TileObstacle:
		return "obstacle"
	case TileAgent:
		return "agent"
	default:
		return "unknown"
	}
}

// Traversable reports whether a tile can ever be entered, ignoring the
// current occupants of the cell (a wall never is; everything else can be,
// subject to the occupant check performed by World.Get/solvers).
func Traversable(t Tile) bool {
	return t != Wall
}
