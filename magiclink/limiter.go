package magiclink

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

// RedisLimiter allows at most max sends per email in a fixed window.
type RedisLimiter struct {
	rdb    *goredis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(rdb *goredis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{rdb: rdb, max: max, window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := limiterKey(email)
	n, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("incr %s: %w", key, err)
	}
	if n == 1 {
		if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
			return false, fmt.Errorf("expire %s: %w", key, err)
		}
	}
	return n <= int64(l.max), nil
}

func limiterKey(email string) string {
	return "bracket:login_links:" + email
}

// countingStore is satisfied by *store.DB.
type countingStore interface {
	CountMagicLinksSince(email string, since time.Time) (int, error)
}

// StoreLimiter counts issued links in the database. It is used when no
// Redis is configured.
type StoreLimiter struct {
	db     countingStore
	max    int
	window time.Duration
	clock  clockwork.Clock
}

// NewStoreLimiter builds a limiter over db. A nil clock uses real time.
func NewStoreLimiter(db countingStore, max int, window time.Duration, clock clockwork.Clock) *StoreLimiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &StoreLimiter{db: db, max: max, window: window, clock: clock}
}

func (l *StoreLimiter) Allow(ctx context.Context, email string) (bool, error) {
	n, err := l.db.CountMagicLinksSince(email, l.clock.Now().Add(-l.window))
	if err != nil {
		return false, err
	}
	return n < l.max, nil
}
