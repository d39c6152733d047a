package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "plverify",
	Short: "plverify - piecewise-linear verification query solver",
	Long: `plverify decides SAT/UNSAT/TIMEOUT/ERROR for conjunctions of linear
equalities, interval bounds, and piecewise-linear constraints (ReLU,
AbsoluteValue, Max, Disjunction, Sign) using an interleaved simplex LP
core, a DPLL-style case-split search, and a Sum-of-Infeasibilities
local-search heuristic.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags can be added here
	// rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
}
