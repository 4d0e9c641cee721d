package pkg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DistributedLimiter combines local rate.Limiter buckets per client key with
// Redis counters for global enforcement across replicas. Keys are typically
// client IPs; the Redis key is "<prefix>:<client key>".
type DistributedLimiter struct {
	mu          sync.Mutex
	buckets     map[string]*rate.Limiter
	redisClient *redis.Client
	prefix      string // e.g. "payment_api:general"
	limit       rate.Limit
	burst       int
	ttl         time.Duration // counter expiry window
	logger      *zap.Logger
}

// NewDistributedLimiter creates a limiter; if limit=0, it's unlimited.
func NewDistributedLimiter(redisClient *redis.Client, prefix string, limit float64, burst int, ttl time.Duration, logger *zap.Logger) *DistributedLimiter {
	return &DistributedLimiter{
		buckets:     make(map[string]*rate.Limiter),
		redisClient: redisClient,
		prefix:      prefix,
		limit:       rate.Limit(limit),
		burst:       burst,
		ttl:         ttl,
		logger:      logger,
	}
}

// Allow checks if a token is available for the given client key; uses Redis
// for the distributed increment and falls back to the local bucket when Redis
// is unavailable.
func (d *DistributedLimiter) Allow(ctx context.Context, key string) bool {
	if d.limit == 0 {
		return true // Unlimited
	}

	// Local check first (fast path)
	if !d.bucket(key).Allow() {
		return false
	}

	redisKey := fmt.Sprintf("%s:%s", d.prefix, key)
	pipe := d.redisClient.Pipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, d.ttl)
	_, err := pipe.Exec(ctx)
	if err != nil {
		d.logger.Error("redis rate limit error; falling back to local", zap.Error(err))
		return true
	}

	count := incr.Val()
	if count > int64(d.burst) {
		d.logger.Warn("global rate limit exceeded", zap.String("key", key), zap.Int64("count", count))
		return false
	}
	return true
}

func (d *DistributedLimiter) bucket(key string) *rate.Limiter {
	d.mu.Lock()
	defer d.mu.Unlock()
	if l, ok := d.buckets[key]; ok {
		return l
	}
	l := rate.NewLimiter(d.limit, d.burst)
	d.buckets[key] = l
	return l
}
