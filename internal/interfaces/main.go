package interfaces

import (
	"context"

	"greenloop/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Notifier is the outbound side-channel. Every call is best-effort: the
// caller logs failures and never lets them affect the primary mutation.
type Notifier interface {
	Notify(ctx context.Context, kind string, payload *models.NotificationPayload) error
}
