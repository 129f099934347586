package limiter

import (
	"context"
	"errors"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

var ErrRateLimited = errors.New("rate limited")

type Limiter struct {
	instance *redis_rate.Limiter
}

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

// Allow consumes one token from the sliding window identified by key and
// fails with ErrRateLimited when the window is exhausted.
func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.instance.Allow(ctx, key, limit)
	if err != nil {
		return err
	}

	if res.Allowed == 0 {
		return ErrRateLimited
	}

	return nil
}
