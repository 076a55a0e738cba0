package database

import (
	"context"
	"time"

	"github.com/cashora/backend/internal/logging"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RedisOptions resolves the redis.* keys into client options.
func RedisOptions() *redis.Options {
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", "6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	return &redis.Options{
		Addr:     viper.GetString("redis.host") + ":" + viper.GetString("redis.port"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	}
}

// InitRedis returns nil when Redis is unreachable; callers fall back to
// in-memory chat history and skip the token blacklist.
func InitRedis(ctx context.Context) *redis.Client {
	log := logging.L().Named("redis")
	opts := RedisOptions()
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn("redis connection failed, continuing without redis",
			zap.String("addr", opts.Addr),
			zap.Error(err),
		)
		rdb.Close()
		return nil
	}

	log.Info("redis connection established", zap.String("addr", opts.Addr))
	return rdb
}
