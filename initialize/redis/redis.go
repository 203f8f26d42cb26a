package redis

import (
	"context"
	"fmt"
	"time"

	"leave/global"
	"leave/initialize/viper"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// Init 连接 redis 并放进 global.GLOBAL_REDIS，只有 storage.driver 为 redis 时调用
func Init(cfg *viper.RedisConfig) (err error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err = rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return errors.Wrap(err, "redis ping")
	}
	global.GLOBAL_REDIS = rdb
	return nil
}

func Close() {
	if global.GLOBAL_REDIS != nil {
		_ = global.GLOBAL_REDIS.Close()
	}
}
