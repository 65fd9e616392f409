// Package scenario builds in-memory worlds and agent sets for solver runs,
// and streams their progress to live subscribers. It deliberately does not
// parse scenarios from files: callers construct a Builder programmatically
// (from a CLI flag, a generated benchmark, or a test), and Builder is the
// single place that turns that description into a valid core.World.
package scenario

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/elektrokombinacija/gridmapf/internal/core"
)

// Builder accumulates wall positions, explicit agents, and obstacle
// settings, then produces a ready-to-run core.World wrapped in an Episode.
type Builder struct {
	width, height int
	walls         []core.Position
	agents        []plannedAgent
	obstacles     core.ObstacleSettings
	agentSettings core.AgentSettings
}

type plannedAgent struct {
	start, target core.Position
}

// NewBuilder starts a builder for a width x height grid.
func NewBuilder(width, height int) *Builder {
	return &Builder{
		width:     width,
		height:    height,
		obstacles: core.DefaultObstacleSettings(),
	}
}

// Wall marks p as permanently impassable.
func (b *Builder) Wall(p core.Position) *Builder {
	b.walls = append(b.walls, p)
	return b
}

// Agent schedules an agent starting at start with target target.
func (b *Builder) Agent(start, target core.Position) *Builder {
	b.agents = append(b.agents, plannedAgent{start: start, target: target})
	return b
}

// WithObstacles configures obstacle seeding and movement.
func (b *Builder) WithObstacles(s core.ObstacleSettings) *Builder {
	b.obstacles = s
	return b
}

// WithRandomAgents configures random agent placement, used in addition to
// (not instead of) any agents added via Agent.
func (b *Builder) WithRandomAgents(s core.AgentSettings) *Builder {
	b.agentSettings = s
	return b
}

// Episode is a built scenario ready to hand to a solver loop, tagged with a
// fresh run identifier for correlating logs and live-feed messages across a
// single solve attempt.
type Episode struct {
	RunID string
	World *core.World
}

// Build validates the accumulated description and constructs the world.
// Returns a *FormatError if any position is out of bounds, a wall overlaps
// an agent, or two agents share a start cell.
func (b *Builder) Build(rng *rand.Rand) (*Episode, error) {
	m := core.NewMap(b.width, b.height)
	for _, p := range b.walls {
		if !m.InBounds(p) {
			return nil, formatErrorf("scenario: wall %v out of bounds (%dx%d)", p, b.width, b.height)
		}
		m.SetWall(p)
	}

	w := core.NewWorld(m)

	nextID := core.AgentID(0)
	for _, pa := range b.agents {
		if !m.InBounds(pa.start) || !m.InBounds(pa.target) {
			return nil, formatErrorf("scenario: agent start %v or target %v out of bounds", pa.start, pa.target)
		}
		if m.Get(pa.start) == core.Wall || m.Get(pa.target) == core.Wall {
			return nil, formatErrorf("scenario: agent start %v or target %v on a wall", pa.start, pa.target)
		}
		if w.Get(pa.start) != core.Free {
			return nil, formatErrorf("scenario: duplicate agent start at %v", pa.start)
		}
		w.PutAgent(pa.start, &core.Agent{ID: nextID, Target: pa.target})
		nextID++
	}

	if err := b.placeRandomAgents(w, &nextID, rng); err != nil {
		return nil, err
	}
	if err := b.placeObstacles(w, rng); err != nil {
		return nil, err
	}

	return &Episode{RunID: uuid.NewString(), World: w}, nil
}

func (b *Builder) placeRandomAgents(w *core.World, nextID *core.AgentID, rng *rand.Rand) error {
	n := b.agentSettings.RandomAgentNumber
	if n <= 0 {
		return nil
	}
	free := b.freeCells(w)
	if len(free) < n {
		return formatErrorf("scenario: not enough free cells (%d) for %d random agents", len(free), n)
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	goals := b.agentSettings.GoalPoints
	if len(goals) == 0 {
		goals = free
	}

	for i := 0; i < n; i++ {
		start := free[i]
		target := goals[rng.Intn(len(goals))]
		w.PutAgent(start, &core.Agent{ID: *nextID, Target: target})
		*nextID++
	}
	return nil
}

func (b *Builder) placeObstacles(w *core.World, rng *rand.Rand) error {
	switch b.obstacles.Mode {
	case core.ObstacleModeNone:
		return nil
	case core.ObstacleModeFixed:
		for _, p := range b.obstacles.SpawnPoints {
			if w.Get(p) != core.Free {
				continue
			}
			w.PutObstacle(p, b.obstacles.MoveMean, b.obstacles.MoveStdDev, rng)
		}
		return nil
	case core.ObstacleModeUniform:
		for _, p := range b.freeCells(w) {
			if rng.Float64() < b.obstacles.TileProbability {
				w.PutObstacle(p, b.obstacles.MoveMean, b.obstacles.MoveStdDev, rng)
			}
		}
		return nil
	default:
		return formatErrorf("scenario: unknown obstacle mode %v", b.obstacles.Mode)
	}
}

func (b *Builder) freeCells(w *core.World) []core.Position {
	var free []core.Position
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			p := core.Position{X: x, Y: y}
			if w.Get(p) == core.Free {
				free = append(free, p)
			}
		}
	}
	return free
}
