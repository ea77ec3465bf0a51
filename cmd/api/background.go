package main

import (
	"context"
	"time"
)

// runVerificationLoop runs the review reconciliation on its cadence until
// ctx is cancelled. The lease inside the verifier keeps overlapping runs
// out even if a manual verify-run fires at the same time.
func (app *application) runVerificationLoop(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run once immediately
		app.runVerificationOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				app.runVerificationOnce(ctx)
			}
		}
	}()
}

func (app *application) runVerificationOnce(ctx context.Context) {
	verified, err := app.verifier.Run(ctx)
	if err != nil {
		app.logger.Errorw("verification run failed", "error", err)
		return
	}
	if verified > 0 {
		app.logger.Infow("verification run finished", "newly_verified", verified)
	}
}
