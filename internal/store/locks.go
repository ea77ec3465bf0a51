package store

import (
	"context"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LockStore exposes Postgres advisory locks as named job leases. Session
// locks live on a single connection, so an acquired lease pins one pooled
// connection until released.
type LockStore struct {
	db *pgxpool.Pool
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return int64(h.Sum64())
}

// TryAcquire attempts the lease without blocking. When acquired is true the
// caller must invoke release exactly once; when false another holder has the
// lease and the caller should skip its run.
func (s *LockStore) TryAcquire(ctx context.Context, name string) (release func(), acquired bool, err error) {
	conn, err := s.db.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	key := lockKey(name)

	var got bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&got); err != nil {
		conn.Release()
		return nil, false, err
	}
	if !got {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on a fresh context: the run's context may already be done.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		conn.Release()
	}
	return release, true, nil
}
