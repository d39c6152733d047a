package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"plverify/internal/nlr"
	"plverify/internal/query"
	"plverify/internal/shared"
	"plverify/internal/solver/engine"
	"plverify/internal/stats"
	"plverify/internal/wiring"
)

var solveCmd = &cobra.Command{
	Use:   "solve [query.json]",
	Short: "Decide SAT/UNSAT/TIMEOUT/ERROR for a single input query",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runSolve(args[0]))
	},
}

func init() {
	rootCmd.AddCommand(solveCmd)
}

// runSolve loads queryPath, runs the engine over it, records the
// outcome to the statistics sink, and returns the process exit code
// spec.md §6 fixes (SAT=1, UNSAT=2, ERROR=3, TIMEOUT=4, QUIT_REQUESTED=5).
func runSolve(queryPath string) int {
	exitCode := shared.ErrorOutcome.ExitCode()

	app := fx.New(
		fx.NopLogger,
		wiring.CoreModule,
		fx.Invoke(func(log *zap.Logger, engCfg engine.Config, sink *stats.Sink) {
			exitCode = solveOne(log, engCfg, sink, queryPath)
		}),
	)
	runFxOneShot(app)
	return exitCode
}

func solveOne(log *zap.Logger, engCfg engine.Config, sink *stats.Sink, queryPath string) int {
	q, err := query.Load(queryPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "plverify: %v\n", err)
		return shared.ErrorOutcome.ExitCode()
	}

	eng := engine.New(engCfg, log, nlr.New(0, 0))

	start := time.Now()
	ctx := context.Background()
	if engCfg.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(engCfg.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	outcome, solveErr := eng.Solve(ctx, q)
	elapsed := time.Since(start)

	if solveErr != nil && outcome == shared.ErrorOutcome {
		artifactPath := strings.TrimSuffix(queryPath, ".json") + "-failed.ipq"
		if saveErr := q.SaveQuery(artifactPath); saveErr != nil {
			log.Warn("failed to write failure artifact", zap.Error(saveErr))
		} else {
			fmt.Fprintf(os.Stderr, "plverify: error, query state written to %s\n", artifactPath)
		}
		fmt.Fprintf(os.Stderr, "plverify: %v\n", solveErr)
	}

	fmt.Println(outcome.String())

	st := eng.Statistics()
	run := &stats.Run{
		QueryPath:                queryPath,
		Verdict:                  outcome.String(),
		WallTimeMillis:           elapsed.Milliseconds(),
		NumSimplexPivots:         st.NumSimplexPivots,
		NumVisitedTreeStates:     st.NumVisitedTreeStates,
		NumTableauPivots:         st.NumTableauPivots,
		MaxDegradation:           st.MaxDegradation,
		NumPrecisionRestorations: st.NumPrecisionRestorations,
	}
	if err := sink.Record(run); err != nil {
		log.Warn("failed to record run statistics", zap.Error(err))
	}

	return outcome.ExitCode()
}
