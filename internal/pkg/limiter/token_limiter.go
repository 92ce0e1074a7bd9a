package limiter

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid token limiter config")

type TokenLimiterConfig struct {
	InitCapacity     int64         `mapstructure:"init_capacity"`
	MaxCapacity      int64         `mapstructure:"max_capacity"`
	IncreaseStep     int64         `mapstructure:"increase_step"`
	IncreaseInterval time.Duration `mapstructure:"increase_interval"`
}

// DefaultConfig 返回默认配置。
//
// 从初始容量扩容到最大容量需要：
//
//	|-- 增量：20000 - 1000 = 19000
//	|-- 次数：19000 ÷ 500 = 38 次
//	|-- 时间：38 × 2 秒 = 76 秒
func DefaultConfig() TokenLimiterConfig {
	return TokenLimiterConfig{
		InitCapacity:     1000,
		MaxCapacity:      20000,
		IncreaseStep:     500,
		IncreaseInterval: 2 * time.Second,
	}
}

func (cfg TokenLimiterConfig) Validate() error {
	switch {
	case cfg.InitCapacity <= 0:
		return fmt.Errorf("%w: init capacity must be greater than 0", ErrInvalidConfig)
	case cfg.MaxCapacity <= 0:
		return fmt.Errorf("%w: max capacity must be greater than 0", ErrInvalidConfig)
	case cfg.InitCapacity > cfg.MaxCapacity:
		return fmt.Errorf("%w: init capacity must be less than max capacity", ErrInvalidConfig)
	case cfg.IncreaseStep <= 0:
		return fmt.Errorf("%w: increase step must be greater than 0", ErrInvalidConfig)
	case cfg.IncreaseInterval <= 0:
		return fmt.Errorf("%w: increase interval must be greater than 0", ErrInvalidConfig)
	}
	return nil
}

// TokenLimiter 限制同时处理中的客户端连接数。
// 容量从 InitCapacity 开始，按 IncreaseInterval 逐步扩容到 MaxCapacity，避免启动时瞬间涌入大量连接。
type TokenLimiter struct {
	cfg TokenLimiterConfig

	tokens       chan struct{}
	currCapacity atomic.Int64

	ctx        context.Context
	cancelFunc context.CancelFunc

	logger *zap.Logger
}

// Start 逐步增加桶的容量，阻塞直到达到最大容量或 ctx 结束。
func (l *TokenLimiter) Start(ctx context.Context) {
	ticker := time.NewTicker(l.cfg.IncreaseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.ctx.Done():
			return
		case <-ticker.C:
			curr := l.currCapacity.Load()
			if curr >= l.cfg.MaxCapacity {
				l.logger.Info("[connector-limiter] capacity reached max", zap.Int64("capacity", curr))
				return
			}

			newCap := min(curr+l.cfg.IncreaseStep, l.cfg.MaxCapacity)
			for range newCap - curr {
				l.tokens <- struct{}{}
			}
			l.currCapacity.Store(newCap)

			l.logger.Debug(
				"[connector-limiter] capacity increased",
				zap.Int64("from", curr),
				zap.Int64("to", newCap),
			)
		}
	}
}

// Acquire 尝试获取令牌，成功获取返回 true。
// 注：
//
//	这是一个非阻塞操作，如果当前没有可用令牌会立即返回 false。
func (l *TokenLimiter) Acquire() bool {
	select {
	case <-l.tokens:
		return true
	default:
		return false
	}
}

// Release 归还令牌，同样是一个非阻塞操作。
func (l *TokenLimiter) Release() bool {
	select {
	case l.tokens <- struct{}{}:
		return true
	default:
		// Release 的调用次数超过了 Acquire。
		l.logger.Warn("[connector-limiter] failed to release token, bucket is full")
		return false
	}
}

func (l *TokenLimiter) Close() error {
	l.cancelFunc()
	return nil
}

func (l *TokenLimiter) Cap() int64 {
	return l.currCapacity.Load()
}

func NewTokenLimiter(cfg TokenLimiterConfig, logger *zap.Logger) (*TokenLimiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	tl := &TokenLimiter{
		cfg:    cfg,
		tokens: make(chan struct{}, cfg.MaxCapacity),

		ctx:        ctx,
		cancelFunc: cancel,

		logger: logger,
	}

	for range cfg.InitCapacity {
		tl.tokens <- struct{}{}
	}
	tl.currCapacity.Store(cfg.InitCapacity)
	return tl, nil
}
