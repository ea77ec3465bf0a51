package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"theatreops/internal/reviewsrc"
	"theatreops/internal/verifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingLocker struct {
	acquisitions atomic.Int64
}

func (l *countingLocker) TryAcquire(ctx context.Context, name string) (func(), bool, error) {
	l.acquisitions.Add(1)
	return func() {}, true, nil
}

type stubFetcher struct{}

func (stubFetcher) FetchRecent(ctx context.Context) ([]reviewsrc.Review, error) {
	return nil, nil
}

func TestVerificationLoopStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	app, _, _, _ := newTestApp(t)
	locks := &countingLocker{}
	app.verifier = verifier.New(newFakeReviewRequests(), locks, stubFetcher{},
		verifier.Config{Method: reviewsrc.Name, Threshold: 0.2}, app.logger)

	ctx, cancel := context.WithCancel(context.Background())
	app.runVerificationLoop(ctx, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return locks.acquisitions.Load() >= 2
	}, time.Second, time.Millisecond, "loop should run immediately and again on the next tick")

	cancel()
	time.Sleep(25 * time.Millisecond)
	settled := locks.acquisitions.Load()
	time.Sleep(25 * time.Millisecond)
	assert.Equal(t, settled, locks.acquisitions.Load(), "no runs after cancellation")
}
