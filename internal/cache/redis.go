// Package cache wraps the Redis client used for rate limiting and
// cache-aside reads. All helpers degrade gracefully when Redis is
// unavailable.
package cache

import (
	"context"
	"log/slog"
	"time"

	"inkwell/internal/middleware"

	"github.com/redis/go-redis/v9"
)

// Client is the shared Redis client. Nil when Redis is unreachable.
var Client *redis.Client

// InitRedis connects to Redis at addr. The application continues
// without caching when the connection fails.
func InitRedis(addr string) {
	Client = redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed, continuing without cache", slog.String("error", err.Error()))
		Client = nil
	} else {
		middleware.Logger.Info("Redis connected")
	}
}

// GetClient returns the shared Redis client, or nil when unavailable.
func GetClient() *redis.Client {
	return Client
}
