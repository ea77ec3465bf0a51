package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound          = errors.New("resource not found")
	ErrConflict          = errors.New("resource already exists")
	QueryTimeoutDuration = time.Second * 5
)

type Storage struct {
	ReviewRequests interface {
		Create(context.Context, *ReviewRequest) error
		GetByToken(context.Context, string) (*ReviewRequest, error)
		MarkSubmitted(ctx context.Context, id int64, note string) (bool, error)
		MarkVerified(ctx context.Context, id int64, v Verification) (bool, error)
		ListUnresolved(context.Context) ([]ReviewRequest, error)
		ListByBooking(ctx context.Context, bookingID int64) ([]ReviewRequest, error)
		List(ctx context.Context, status string, limit, offset int) ([]ReviewRequest, int, error)
	}
	Bookings interface {
		GetByID(context.Context, int64) (*Booking, error)
		SetReviewFlag(ctx context.Context, bookingID int64, flag bool) error
		List(ctx context.Context, limit, offset int) ([]BookingRow, int, error)
	}
	Staff interface {
		GetByEmail(context.Context, string) (*StaffUser, error)
		GetByID(context.Context, int64) (*StaffUser, error)
	}
	PushTokens interface {
		Add(ctx context.Context, staffID int64, token string) error
		Remove(ctx context.Context, staffID int64, token string) error
		ListAll(context.Context) ([]string, error)
	}
	JobLocks interface {
		TryAcquire(ctx context.Context, name string) (release func(), acquired bool, err error)
	}
}

func NewStorage(db *pgxpool.Pool) Storage {
	return Storage{
		ReviewRequests: &ReviewRequestStore{db},
		Bookings:       &BookingStore{db},
		Staff:          &StaffStore{db},
		PushTokens:     &PushTokenStore{db},
		JobLocks:       &LockStore{db},
	}
}
