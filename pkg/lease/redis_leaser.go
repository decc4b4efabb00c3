package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long a crashed runner can block a job before the
// lease expires on its own.
const DefaultTTL = 10 * time.Minute

// RedisLeaser holds leases in Redis so multiple API instances agree on which
// jobs are running.
type RedisLeaser struct {
	rdb   *redis.Client
	owner string
	ttl   time.Duration
}

func NewRedisLeaser(rdb *redis.Client, ttl time.Duration) *RedisLeaser {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisLeaser{
		rdb:   rdb,
		owner: uuid.NewString(),
		ttl:   ttl,
	}
}

func leaseKey(jobID uuid.UUID) string {
	return fmt.Sprintf("ingestion:lease:%s", jobID)
}

func (l *RedisLeaser) Acquire(ctx context.Context, jobID uuid.UUID) error {
	ok, err := l.rdb.SetNX(ctx, leaseKey(jobID), l.owner, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire lease: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

// releaseScript deletes the lease only when this instance still owns it, so
// an expired-and-reacquired lease is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *RedisLeaser) Release(ctx context.Context, jobID uuid.UUID) error {
	if err := releaseScript.Run(ctx, l.rdb, []string{leaseKey(jobID)}, l.owner).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lease: %w", err)
	}
	return nil
}
