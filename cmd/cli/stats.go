package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"plverify/internal/stats"
	"plverify/internal/wiring"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recently recorded solver runs",
	Run: func(cmd *cobra.Command, args []string) {
		runStats()
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "limit", 20, "maximum number of runs to show")
	rootCmd.AddCommand(statsCmd)
}

func runStats() {
	app := fx.New(
		fx.NopLogger,
		wiring.CoreModule,
		fx.Invoke(func(log *zap.Logger, sink *stats.Sink) {
			runs, err := sink.Recent(statsLimit)
			if err != nil {
				fmt.Fprintf(os.Stderr, "plverify: %v\n", err)
				return
			}
			if len(runs) == 0 {
				fmt.Println("no runs recorded yet")
				return
			}
			fmt.Printf("%-36s %-12s %-10s %8s %8s %8s\n", "ID", "VERDICT", "WALL(ms)", "PIVOTS", "SPLITS", "RESTORE")
			for _, r := range runs {
				fmt.Printf("%-36s %-12s %-10d %8d %8d %8d\n",
					r.ID, r.Verdict, r.WallTimeMillis, r.NumSimplexPivots, r.NumVisitedTreeStates, r.NumPrecisionRestorations)
			}
		}),
	)
	runFxOneShot(app)
}
