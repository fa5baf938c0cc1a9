package locker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrNotAcquired is returned when ctx ends before the lock could be taken.
var ErrNotAcquired = errors.New("lock not acquired")

// Locker serializes work on a key.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// New builds the locker selected by cfg.Driver.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Locker, error) {
	retry := time.Duration(cfg.RetryMillis) * time.Millisecond
	if retry <= 0 {
		retry = 200 * time.Millisecond
	}

	switch strings.ToLower(cfg.Driver) {
	case "", "local":
		return NewLocal(), nil
	case "file":
		return NewFile(cfg.Dir, retry)
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		ttl := time.Duration(cfg.TTLSeconds) * time.Second
		return NewRedis(client, cfg.Prefix, ttl, retry, logger), nil
	default:
		return nil, fmt.Errorf("unknown locker driver: %s", cfg.Driver)
	}
}
