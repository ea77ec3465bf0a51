package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PushTokenStore keeps the Expo device tokens of staff who opted into
// verification alerts.
type PushTokenStore struct {
	db *pgxpool.Pool
}

func (s *PushTokenStore) Add(ctx context.Context, staffID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `
        INSERT INTO staff_push_tokens (staff_id, expo_push_token, last_updated)
        VALUES ($1, $2, NOW())
        ON CONFLICT (staff_id, expo_push_token)
        DO UPDATE SET last_updated = NOW()
    `
	_, err := s.db.Exec(ctx, q, staffID, token)
	return err
}

func (s *PushTokenStore) Remove(ctx context.Context, staffID int64, token string) error {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	q := `DELETE FROM staff_push_tokens WHERE staff_id = $1 AND expo_push_token = $2`
	_, err := s.db.Exec(ctx, q, staffID, token)
	return err
}

func (s *PushTokenStore) ListAll(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeoutDuration)
	defer cancel()

	rows, err := s.db.Query(ctx, `SELECT expo_push_token FROM staff_push_tokens`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
