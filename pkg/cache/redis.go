package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/umarmf343/vea-2025-sub005/pkg/config"
)

const pingTimeout = 5 * time.Second

// NewRedis returns a verified Redis client. Redis backs both the
// dashboard cache and the report job store, so the connection is pinged
// before anything is wired to it.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       cfg.Addr(),
		Password:   cfg.Password,
		DB:         cfg.DB,
		ClientName: "student-gateway",
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr(), err)
	}

	return client, nil
}
