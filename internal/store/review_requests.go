package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Review request lifecycle. Transitions are monotonic: a row only ever moves
// forward through pending -> submitted -> verified, and verified is terminal.
const (
	StatusPending   = "pending"
	StatusSubmitted = "submitted"
	StatusVerified  = "verified"
)

// ReviewRequest tracks one attempt to collect a public review for a booking.
// Token is the bearer secret embedded in the customer's link; possession of
// it authorizes confirmation and nothing else.
type ReviewRequest struct {
	ID                 int64      `json:"-"`
	PublicID           string     `json:"id"`
	BookingID          int64      `json:"booking_id"`
	CustomerName       string     `json:"customer_name,omitempty"`
	CustomerPhone      string     `json:"customer_phone,omitempty"`
	CustomerEmail      string     `json:"-"`
	Token              string     `json:"-"`
	Status             string     `json:"status"`
	Note               string     `json:"note,omitempty"`
	VerificationMethod string     `json:"verification_method,omitempty"`
	ExternalReviewRef  string     `json:"external_review_ref,omitempty"`
	ExternalSourceRef  string     `json:"external_source_ref,omitempty"`
	RequestedAt        time.Time  `json:"requested_at"`
	SubmittedAt        *time.Time `json:"submitted_at,omitempty"`
	VerifiedAt         *time.Time `json:"verified_at,omitempty"`
}

// Verification carries what the reconciliation job writes on a match.
type Verification struct {
	Method    string
	ReviewRef string
	SourceRef string
}

type ReviewRequestStore struct {
	db *pgxpool.Pool
}

// Create inserts a new pending request. The token column has a unique index;
// a collision (astronomically unlikely with 256-bit tokens) surfaces as
// ErrConflict so the caller can regenerate.
func (s *ReviewRequestStore) Create(ctx context.Context, rr *ReviewRequest) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        INSERT INTO review_requests
            (public_id, booking_id, customer_name, customer_phone, customer_email, token, status)
        VALUES ($1, $2, $3, $4, $5, $6, 'pending')
        RETURNING id, status, requested_at
    `
	err := s.db.QueryRow(ctx, query,
		rr.PublicID,
		rr.BookingID,
		rr.CustomerName,
		rr.CustomerPhone,
		rr.CustomerEmail,
		rr.Token,
	).Scan(&rr.ID, &rr.Status, &rr.RequestedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert review request: %w", err)
	}
	return nil
}

const reviewRequestColumns = `
    id, public_id, booking_id,
    COALESCE(customer_name, ''), COALESCE(customer_phone, ''), COALESCE(customer_email, ''),
    token, status, COALESCE(note, ''),
    COALESCE(verification_method, ''), COALESCE(external_review_ref, ''), COALESCE(external_source_ref, ''),
    requested_at, submitted_at, verified_at`

func scanReviewRequest(row pgx.Row, rr *ReviewRequest) error {
	return row.Scan(
		&rr.ID,
		&rr.PublicID,
		&rr.BookingID,
		&rr.CustomerName,
		&rr.CustomerPhone,
		&rr.CustomerEmail,
		&rr.Token,
		&rr.Status,
		&rr.Note,
		&rr.VerificationMethod,
		&rr.ExternalReviewRef,
		&rr.ExternalSourceRef,
		&rr.RequestedAt,
		&rr.SubmittedAt,
		&rr.VerifiedAt,
	)
}

// GetByToken looks a request up by its bearer token. Unknown and malformed
// tokens are indistinguishable to the caller: both come back ErrNotFound.
func (s *ReviewRequestStore) GetByToken(ctx context.Context, token string) (*ReviewRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `SELECT` + reviewRequestColumns + ` FROM review_requests WHERE token = $1`

	var rr ReviewRequest
	if err := scanReviewRequest(s.db.QueryRow(ctx, query, token), &rr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rr, nil
}

// MarkSubmitted advances a pending request to submitted, recording the
// customer's note and the submission time. The WHERE clause is the
// compare-and-advance guard: a request already past pending is left alone,
// so a late confirm can never undo a verification. Returns whether this
// call performed the transition.
func (s *ReviewRequestStore) MarkSubmitted(ctx context.Context, id int64, note string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        UPDATE review_requests
        SET status = 'submitted', note = $2, submitted_at = NOW()
        WHERE id = $1 AND status = 'pending'
    `
	tag, err := s.db.Exec(ctx, query, id, note)
	if err != nil {
		return false, fmt.Errorf("mark submitted: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkVerified promotes a request to verified with the matched review's
// references. Both pending and submitted rows qualify; verified rows are
// terminal and never rewritten, which also makes a resumed job run
// idempotent. Returns whether this call performed the transition.
func (s *ReviewRequestStore) MarkVerified(ctx context.Context, id int64, v Verification) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        UPDATE review_requests
        SET status = 'verified',
            verified_at = NOW(),
            verification_method = $2,
            external_review_ref = $3,
            external_source_ref = $4
        WHERE id = $1 AND status IN ('pending', 'submitted')
    `
	tag, err := s.db.Exec(ctx, query, id, v.Method, v.ReviewRef, v.SourceRef)
	if err != nil {
		return false, fmt.Errorf("mark verified: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListUnresolved returns every request the reconciliation job should still
// consider. Verified rows are excluded here so a past match is never
// re-evaluated.
func (s *ReviewRequestStore) ListUnresolved(ctx context.Context) ([]ReviewRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT` + reviewRequestColumns + `
        FROM review_requests
        WHERE status <> 'verified'
        ORDER BY requested_at
    `
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviewRequests(rows)
}

func (s *ReviewRequestStore) ListByBooking(ctx context.Context, bookingID int64) ([]ReviewRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT` + reviewRequestColumns + `
        FROM review_requests
        WHERE booking_id = $1
        ORDER BY requested_at DESC
    `
	rows, err := s.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviewRequests(rows)
}

// List returns a page of requests for the admin dashboard, optionally
// filtered by status, plus the total row count for pagination metadata.
func (s *ReviewRequestStore) List(ctx context.Context, status string, limit, offset int) ([]ReviewRequest, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT` + reviewRequestColumns + `, COUNT(*) OVER() AS total
        FROM review_requests
        WHERE ($1 = '' OR status = $1)
        ORDER BY requested_at DESC
        LIMIT $2 OFFSET $3
    `
	rows, err := s.db.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		requests []ReviewRequest
		total    int
	)
	for rows.Next() {
		var rr ReviewRequest
		if err := rows.Scan(
			&rr.ID,
			&rr.PublicID,
			&rr.BookingID,
			&rr.CustomerName,
			&rr.CustomerPhone,
			&rr.CustomerEmail,
			&rr.Token,
			&rr.Status,
			&rr.Note,
			&rr.VerificationMethod,
			&rr.ExternalReviewRef,
			&rr.ExternalSourceRef,
			&rr.RequestedAt,
			&rr.SubmittedAt,
			&rr.VerifiedAt,
			&total,
		); err != nil {
			return nil, 0, err
		}
		requests = append(requests, rr)
	}
	return requests, total, rows.Err()
}

func collectReviewRequests(rows pgx.Rows) ([]ReviewRequest, error) {
	var requests []ReviewRequest
	for rows.Next() {
		var rr ReviewRequest
		if err := scanReviewRequest(rows, &rr); err != nil {
			return nil, err
		}
		requests = append(requests, rr)
	}
	return requests, rows.Err()
}
