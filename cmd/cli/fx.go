package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"
)

// runFxOneShot starts app, waits for its fx.Invoke functions to run,
// and stops it — the CLI's equivalent of the teacher's long-running
// fx.Application().Run(), adapted for one-shot commands that exit
// after a single unit of work instead of serving requests forever.
func runFxOneShot(app *fx.App) {
	startCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		fmt.Fprintf(os.Stderr, "plverify: failed to start: %v\n", err)
		os.Exit(1)
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()
	_ = app.Stop(stopCtx)
}
