package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// newRedisCmdable 创建 session 存储使用的 redis 客户端。
func newRedisCmdable(zapLogger *zap.Logger, lifecycle fx.Lifecycle) (redis.Cmdable, error) {
	type config struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`

		PoolSize     int           `mapstructure:"pool_size"`
		DialTimeout  time.Duration `mapstructure:"dial_timeout"`
		ReadTimeout  time.Duration `mapstructure:"read_timeout"`
		WriteTimeout time.Duration `mapstructure:"write_timeout"`
	}

	cfg := config{}
	if err := viper.UnmarshalKey("redis", &cfg); err != nil {
		return nil, err
	}
	if cfg.Addr == "" {
		return nil, errors.New("redis addr is required")
	}

	// 零值使用 go-redis 的默认值。
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := rdb.Ping(ctx).Err(); err != nil {
				zapLogger.Error("[connector-redis] failed to ping redis", zap.String("addr", cfg.Addr), zap.Error(err))
				return fmt.Errorf("failed to ping redis: %w", err)
			}

			zapLogger.Info("[connector-redis] successfully connected to redis", zap.String("addr", cfg.Addr))
			return nil
		},
		OnStop: func(_ context.Context) error {
			if err := rdb.Close(); err != nil {
				zapLogger.Error("[connector-redis] failed to close redis", zap.Error(err))
				return fmt.Errorf("failed to close redis: %w", err)
			}

			zapLogger.Info("[connector-redis] redis closed")
			return nil
		},
	})

	return rdb, nil
}
