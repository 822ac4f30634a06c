package config

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var RedisClient *redis.Client

// InitRedis connects to Redis. A missing or unreachable Redis is not fatal:
// the returned client is nil and callers run without cache and distributed locks.
func InitRedis(ctx context.Context, cfg *Config) *redis.Client {
	var opt *redis.Options
	if cfg.RedisURL != "" {
		parsed, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			Logger().Warn("failed to parse redis url, running without cache", zap.Error(err))
			return nil
		}
		opt = parsed
	} else {
		opt = &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		}
	}

	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		Logger().Warn("redis connection failed, running without cache", zap.Error(err))
		_ = client.Close()
		return nil
	}

	RedisClient = client
	Logger().Info("redis connected", zap.String("addr", opt.Addr))
	return client
}

func CloseRedis() {
	if RedisClient != nil {
		_ = RedisClient.Close()
	}
}
