package cmd

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"plverify/internal/cache"
	"plverify/internal/nlr"
	"plverify/internal/query"
	"plverify/internal/solver/engine"
	"plverify/internal/stats"
	"plverify/internal/wiring"
)

var batchCmd = &cobra.Command{
	Use:   "batch [directory]",
	Short: "Solve every query under a directory, sharing verdicts through the result cache",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runBatch(args[0])
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
}

// runBatch exercises the split-and-conquer coordination scenario of
// spec.md §8 test 6: solving many partitioned sub-queries one after
// another and using the shared cache so identical sub-queries are only solved
// once.
func runBatch(dir string) {
	app := fx.New(
		fx.NopLogger,
		wiring.CoreModule,
		fx.Invoke(func(log *zap.Logger, engCfg engine.Config, sink *stats.Sink, c *cache.Cache) {
			runBatchDir(log, engCfg, sink, c, dir)
		}),
	)
	runFxOneShot(app)
}

func runBatchDir(log *zap.Logger, engCfg engine.Config, sink *stats.Sink, c *cache.Cache, dir string) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "plverify: %v\n", err)
		return
	}
	if len(matches) == 0 {
		fmt.Println("no queries found")
		return
	}

	for _, path := range matches {
		verdict := solveWithCache(log, engCfg, sink, c, path)
		fmt.Printf("%s\t%s\n", path, verdict)
	}
}

func solveWithCache(log *zap.Logger, engCfg engine.Config, sink *stats.Sink, c *cache.Cache, path string) string {
	q, err := query.Load(path)
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}

	ctx := context.Background()
	hash := queryHash(q)

	if c != nil {
		if entry, ok := c.Get(ctx, hash); ok {
			log.Info("batch: cache hit", zap.String("path", path), zap.String("hash", hash))
			return entry.Verdict
		}
	}

	eng := engine.New(engCfg, log, nlr.New(0, 0))
	start := time.Now()
	outcome, _ := eng.Solve(ctx, q)
	elapsed := time.Since(start)

	st := eng.Statistics()
	_ = sink.Record(&stats.Run{
		QueryPath:                path,
		Verdict:                  outcome.String(),
		WallTimeMillis:           elapsed.Milliseconds(),
		NumSimplexPivots:         st.NumSimplexPivots,
		NumVisitedTreeStates:     st.NumVisitedTreeStates,
		NumTableauPivots:         st.NumTableauPivots,
		MaxDegradation:           st.MaxDegradation,
		NumPrecisionRestorations: st.NumPrecisionRestorations,
	})

	if c != nil {
		c.Set(ctx, hash, cache.Entry{Outcome: outcome, Verdict: outcome.String()})
	}
	return outcome.String()
}

// queryHash fingerprints a query's structural content so identical
// sub-queries produced by different split-and-conquer workers share a
// cache entry.
func queryHash(q *query.InputQuery) string {
	data, _ := json.Marshal(q)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
