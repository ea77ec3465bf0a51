package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Booking is the slice of the bookings table this service cares about. The
// rest of the dashboard owns the entity; here it is only a foreign key plus
// the denormalized review_flag.
//
// ReviewFlag records that the customer self-reported leaving a review. It is
// a UI gating cache, not proof: ground truth lives in the review request's
// status.
type Booking struct {
	ID            int64     `json:"id"`
	CustomerName  string    `json:"customer_name"`
	CustomerPhone string    `json:"customer_phone"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	ShowName      string    `json:"show_name"`
	ShowAt        time.Time `json:"show_at"`
	Seats         int       `json:"seats"`
	ReviewFlag    bool      `json:"review_flag"`
	CreatedAt     time.Time `json:"created_at"`
}

// BookingRow is the admin list view: the booking plus the furthest review
// request status reached for it, so the dashboard can show "asked",
// "customer says done" and "confirmed" side by side.
type BookingRow struct {
	Booking
	ReviewStatus string `json:"review_status,omitempty"`
}

type BookingStore struct {
	db *pgxpool.Pool
}

func (s *BookingStore) GetByID(ctx context.Context, id int64) (*Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	query := `
        SELECT id, customer_name, COALESCE(customer_phone, ''), COALESCE(customer_email, ''),
               show_name, show_at, seats, review_flag, created_at
        FROM bookings
        WHERE id = $1
    `
	var b Booking
	err := s.db.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.ShowName,
		&b.ShowAt,
		&b.Seats,
		&b.ReviewFlag,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// SetReviewFlag writes the self-report cache. Callers treat this as
// best-effort denormalization; the flag is safe to set repeatedly.
func (s *BookingStore) SetReviewFlag(ctx context.Context, bookingID int64, flag bool) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	tag, err := s.db.Exec(ctx, `UPDATE bookings SET review_flag = $2 WHERE id = $1`, bookingID, flag)
	if err != nil {
		return fmt.Errorf("set review flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingStore) List(ctx context.Context, limit, offset int) ([]BookingRow, int, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	// The status CASE picks the furthest state any of the booking's requests
	// reached, matching the pending < submitted < verified ordering.
	query := `
        SELECT b.id, b.customer_name, COALESCE(b.customer_phone, ''), COALESCE(b.customer_email, ''),
               b.show_name, b.show_at, b.seats, b.review_flag, b.created_at,
               COALESCE(rs.status, '') AS review_status,
               COUNT(*) OVER() AS total
        FROM bookings b
        LEFT JOIN LATERAL (
            SELECT status
            FROM review_requests
            WHERE booking_id = b.id
            ORDER BY CASE status
                WHEN 'verified' THEN 3
                WHEN 'submitted' THEN 2
                ELSE 1
            END DESC
            LIMIT 1
        ) rs ON TRUE
        ORDER BY b.show_at DESC
        LIMIT $1 OFFSET $2
    `
	rows, err := s.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var (
		bookings []BookingRow
		total    int
	)
	for rows.Next() {
		var row BookingRow
		if err := rows.Scan(
			&row.ID,
			&row.CustomerName,
			&row.CustomerPhone,
			&row.CustomerEmail,
			&row.ShowName,
			&row.ShowAt,
			&row.Seats,
			&row.ReviewFlag,
			&row.CreatedAt,
			&row.ReviewStatus,
			&total,
		); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, row)
	}
	return bookings, total, rows.Err()
}
