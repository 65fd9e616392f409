package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/gridmapf/internal/algo"
	"github.com/elektrokombinacija/gridmapf/internal/core"
	"github.com/elektrokombinacija/gridmapf/internal/obslog"
	"github.com/elektrokombinacija/gridmapf/internal/scenario"
)

// maxTicksFactor bounds how long a run loop is allowed to go on relative to
// the grid's area, so a genuinely unsolvable instance stops instead of
// spinning forever.
const maxTicksFactor = 20

func newRunCmd() *cobra.Command {
	var solverName string
	var window int
	var predictorName string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a solver to completion on a randomly generated scenario",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(solverName, window, predictorName)
		},
	}
	cmd.Flags().StringVar(&solverName, "solver", "whca", "solver: lra, whca, od, greedy")
	cmd.Flags().IntVar(&window, "window", 16, "planning window in ticks, for whca and od")
	cmd.Flags().StringVar(&predictorName, "predictor", "frequency", "obstacle predictor for whca and od: frequency, none")
	return cmd
}

func runOnce(solverName string, window int, predictorName string) error {
	width := cfg.GetInt("width")
	height := cfg.GetInt("height")
	numAgents := cfg.GetInt("agents")
	seed := cfg.GetInt64("seed")

	rng := rand.New(rand.NewSource(seed))

	ep, err := scenario.NewBuilder(width, height).
		WithRandomAgents(core.AgentSettings{RandomAgentNumber: numAgents}).
		Build(rng)
	if err != nil {
		return fmt.Errorf("gridmapf: building scenario: %w", err)
	}

	log := obslog.New(obslog.Config{Level: logLevel(), Format: cfg.GetString("log-format")}, ep.RunID)
	feed := scenario.NewLiveFeed(ep.RunID)

	predictor, err := newPredictor(predictorName)
	if err != nil {
		return err
	}
	solver, err := newSolver(solverName, ep.World, rng, window, predictor)
	if err != nil {
		return err
	}

	w := ep.World
	maxTicks := width * height * maxTicksFactor
	for tick := 0; tick < maxTicks; tick++ {
		if core.Solved(w) {
			log.LogSolved(int64(tick))
			break
		}
		w.AdvanceObstacles(rng)
		next, err := solver.Step(w)
		if err != nil {
			return fmt.Errorf("gridmapf: %s step: %w", solver.Name(), err)
		}
		w = next
		feed.Broadcast(w)
		log.WithTick(int64(tick)).Debug("tick complete")
	}

	fmt.Printf("solver=%s solved=%v ticks=%d\n", solver.Name(), core.Solved(w), w.Tick())
	for i, name := range solver.StatNames() {
		fmt.Printf("  %s=%d\n", name, solver.Stats()[i])
	}
	return nil
}

func newSolver(name string, w *core.World, rng *rand.Rand, window int, predictor algo.Predictor) (algo.Solver, error) {
	switch name {
	case "lra":
		return algo.NewLRA(rng), nil
	case "whca":
		return algo.NewWHCA(w, rng, window, predictor), nil
	case "od":
		return algo.NewOD(rng, window, predictor), nil
	case "greedy":
		return algo.NewGreedy(rng), nil
	default:
		return nil, fmt.Errorf("gridmapf: unknown solver %q", name)
	}
}

// newPredictor builds the obstacle predictor named by the --predictor flag.
// "frequency" wires algo.FrequencyPredictor through to whca and od instead
// of leaving them with no obstacle model; "none" opts back out.
func newPredictor(name string) (algo.Predictor, error) {
	switch name {
	case "frequency":
		return algo.NewFrequencyPredictor(), nil
	case "none":
		return algo.NullPredictor{}, nil
	default:
		return nil, fmt.Errorf("gridmapf: unknown predictor %q", name)
	}
}
