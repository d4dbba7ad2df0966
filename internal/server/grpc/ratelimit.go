package grpc

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter decides whether key may make one more request.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Limiter is a RateLimiter over ulule/limiter.
type Limiter struct {
	instance *limiter.Limiter
}

// NewLimiter parses a rate such as "600-M". With an empty redisURL counters
// live in process memory; otherwise they are shared through Redis.
func NewLimiter(rate, redisURL string) (*Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("parse rate %q: %w", rate, err)
	}

	var store limiter.Store
	if redisURL == "" {
		store = memory.NewStore()
	} else {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		store, err = redisstore.NewStore(redis.NewClient(opts))
		if err != nil {
			return nil, fmt.Errorf("redis limiter store: %w", err)
		}
	}

	return &Limiter{instance: limiter.New(store, r)}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	res, err := l.instance.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return !res.Reached, nil
}
