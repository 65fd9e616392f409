// Command gridmapf runs and benchmarks the grid MAPF solvers: LRA*, WHCA*,
// OD, and the Greedy baseline.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
