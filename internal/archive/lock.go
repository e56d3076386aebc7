package archive

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// advisoryLockKey identifies the archival job's run lock across instances.
const advisoryLockKey = int64(7241350021)

// RunLock serializes archival sweeps across service instances using a
// postgres advisory lock. The lock is session scoped, so the acquired
// connection is pinned until release.
type RunLock struct {
	pool *pgxpool.Pool
}

func NewRunLock(pool *pgxpool.Pool) *RunLock {
	return &RunLock{pool: pool}
}

// TryAcquire attempts to take the lock without blocking. On success the
// returned release function must be called to free the lock and the pinned
// connection.
func (l *RunLock) TryAcquire(ctx context.Context) (release func(), acquired bool, err error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, advisoryLockKey).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}

	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
		conn.Release()
	}

	return release, true, nil
}
