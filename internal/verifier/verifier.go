package verifier

import (
	"context"
	"time"

	"theatreops/internal/matching"
	"theatreops/internal/reviewsrc"
	"theatreops/internal/store"

	"go.uber.org/zap"
)

// lockName keys the advisory lease so two reconciliation passes never
// overlap: both could otherwise commit the same match.
const lockName = "review-verification"

const defaultFetchTimeout = 15 * time.Second

// RequestStore is the slice of the review request store the job needs.
type RequestStore interface {
	ListUnresolved(ctx context.Context) ([]store.ReviewRequest, error)
	MarkVerified(ctx context.Context, id int64, v store.Verification) (bool, error)
}

// Locker hands out the job lease.
type Locker interface {
	TryAcquire(ctx context.Context, name string) (release func(), acquired bool, err error)
}

type Config struct {
	Source reviewsrc.Config
	// Threshold is the minimum Jaccard score an identity candidate must
	// reach to be accepted. The identity filter already narrows the field;
	// this guards against same-named reviewers.
	Threshold float64
	// Method tags verified requests with the integration that matched them.
	Method       string
	FetchTimeout time.Duration
}

// Verifier reconciles unresolved review requests against the public review
// feed. It audits customer self-reports: confirm records a claim, Run looks
// for the evidence.
type Verifier struct {
	requests RequestStore
	locks    Locker
	fetcher  reviewsrc.Fetcher
	cfg      Config
	logger   *zap.SugaredLogger

	// onVerified, when set, fires after each successful promotion.
	// Failures there never affect the run.
	onVerified func(ctx context.Context, rr store.ReviewRequest)
}

func New(requests RequestStore, locks Locker, fetcher reviewsrc.Fetcher, cfg Config, logger *zap.SugaredLogger) *Verifier {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
	return &Verifier{
		requests: requests,
		locks:    locks,
		fetcher:  fetcher,
		cfg:      cfg,
		logger:   logger,
	}
}

// OnVerified installs a post-commit hook, e.g. a staff push notification.
func (v *Verifier) OnVerified(fn func(ctx context.Context, rr store.ReviewRequest)) {
	v.onVerified = fn
}

// Run executes one reconciliation pass and returns how many requests it
// newly verified. Missing configuration and upstream failures degrade to a
// zero-verified run; the next scheduled run is the retry. Only storage and
// lease errors are returned.
func (v *Verifier) Run(ctx context.Context) (int, error) {
	release, acquired, err := v.locks.TryAcquire(ctx, lockName)
	if err != nil {
		return 0, err
	}
	if !acquired {
		v.logger.Infow("verification run already in progress, skipping")
		return 0, nil
	}
	defer release()

	if !v.cfg.Source.Configured() {
		v.logger.Warnw("review source not configured, skipping verification run")
		return 0, nil
	}

	// Fetch fully before touching any row, so an upstream failure leaves
	// the table untouched. One attempt per run, bounded.
	fetchCtx, cancel := context.WithTimeout(ctx, v.cfg.FetchTimeout)
	defer cancel()

	reviews, err := v.fetcher.FetchRecent(fetchCtx)
	if err != nil {
		v.logger.Errorw("fetching public reviews", "error", err)
		return 0, nil
	}
	if len(reviews) == 0 {
		return 0, nil
	}

	candidates := make([]matching.Candidate, 0, len(reviews))
	for _, r := range reviews {
		candidates = append(candidates, matching.Candidate{
			Author:     r.AuthorDisplayName,
			Text:       r.Text,
			ExternalID: r.ExternalID,
		})
	}

	unresolved, err := v.requests.ListUnresolved(ctx)
	if err != nil {
		return 0, err
	}

	verified := 0
	for _, rr := range unresolved {
		hints := matching.Hints{
			Name:  rr.CustomerName,
			Phone: rr.CustomerPhone,
			Note:  rr.Note,
		}

		best, score, ok := matching.Best(hints, candidates, v.cfg.Threshold)
		if !ok {
			continue
		}

		advanced, err := v.requests.MarkVerified(ctx, rr.ID, store.Verification{
			Method:    v.cfg.Method,
			ReviewRef: best.ExternalID,
			SourceRef: v.cfg.Source.PlaceID,
		})
		if err != nil {
			// Partial progress is fine: verified rows drop out of the
			// next run's unresolved scan.
			v.logger.Errorw("promoting review request", "request", rr.PublicID, "error", err)
			continue
		}
		if !advanced {
			continue
		}

		verified++
		v.logger.Infow("review request verified",
			"request", rr.PublicID,
			"booking", rr.BookingID,
			"score", score,
			"review", best.ExternalID,
		)

		if v.onVerified != nil {
			v.onVerified(ctx, rr)
		}
	}

	return verified, nil
}
