package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// InitRedis connects to Redis when an address is configured. A nil client is
// returned otherwise; callers treat Redis as an optional accelerator.
func InitRedis(cfg *Config, log *zap.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		log.Info("redis not configured, caching and pub/sub disabled")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, continuing without cache", zap.Error(err))
		return nil
	}

	log.Info("connected to Redis")
	return rdb
}
