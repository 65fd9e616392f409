package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/elektrokombinacija/gridmapf/internal/core"
	"github.com/elektrokombinacija/gridmapf/internal/scenario"
)

func newBenchCmd() *cobra.Command {
	var runs int
	var window int
	var predictorName string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run every solver over a batch of scenarios and report makespans",
		RunE: func(cmd *cobra.Command, args []string) error {
			return benchAll(runs, window, predictorName)
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 5, "scenarios per solver")
	cmd.Flags().IntVar(&window, "window", 16, "planning window in ticks, for whca and od")
	cmd.Flags().StringVar(&predictorName, "predictor", "frequency", "obstacle predictor for whca and od: frequency, none")
	return cmd
}

func benchAll(runs, window int, predictorName string) error {
	width := cfg.GetInt("width")
	height := cfg.GetInt("height")
	numAgents := cfg.GetInt("agents")
	seed := cfg.GetInt64("seed")

	for _, name := range []string{"lra", "whca", "od", "greedy"} {
		var solved int
		var totalTicks int64
		var totalElapsed time.Duration

		for run := 0; run < runs; run++ {
			rng := rand.New(rand.NewSource(seed + int64(run)))
			ep, err := scenario.NewBuilder(width, height).
				WithRandomAgents(core.AgentSettings{RandomAgentNumber: numAgents}).
				Build(rng)
			if err != nil {
				return fmt.Errorf("gridmapf: building scenario: %w", err)
			}

			predictor, err := newPredictor(predictorName)
			if err != nil {
				return err
			}
			solver, err := newSolver(name, ep.World, rng, window, predictor)
			if err != nil {
				return err
			}

			w := ep.World
			maxTicks := width * height * maxTicksFactor
			start := time.Now()
			for tick := 0; tick < maxTicks; tick++ {
				if core.Solved(w) {
					solved++
					break
				}
				w.AdvanceObstacles(rng)
				w, err = solver.Step(w)
				if err != nil {
					return fmt.Errorf("gridmapf: %s step: %w", name, err)
				}
			}
			totalElapsed += time.Since(start)
			totalTicks += int64(w.Tick())
		}

		fmt.Printf("%-8s solved=%d/%d avg_ticks=%.1f avg_time=%s\n",
			name, solved, runs, float64(totalTicks)/float64(runs), totalElapsed/time.Duration(runs))
	}
	return nil
}
