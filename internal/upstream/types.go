// Package upstream 维护 connector 到 transfer 的上行 WebSocket 连接。
//
// 一个 connector 进程只有一条上行连接。
// 首次建连失败会按退避策略重试，连接建立后断开不再重连，由 app 退出进程。
package upstream

import "time"

const (
	DefaultDialTimeout     = 3 * time.Second
	DefaultMaxDialAttempts = 5

	DefaultWriteTimeout = 5 * time.Second

	DefaultInitRetryInterval = 100 * time.Millisecond
	DefaultMaxRetryInterval  = time.Second
	DefaultMaxRetryCount     = int32(3)

	DefaultSendBufferSize = 256
)

// Config 为上行连接配置，对应配置项 connector.transfer。
type Config struct {
	Addr string `mapstructure:"addr"`

	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	MaxDialAttempts uint          `mapstructure:"max_dial_attempts"`

	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	InitRetryInterval time.Duration `mapstructure:"init_retry_interval"`
	MaxRetryInterval  time.Duration `mapstructure:"max_retry_interval"`
	MaxRetryCount     int32         `mapstructure:"max_retry_count"`

	SendBufferSize int  `mapstructure:"send_buffer_size"`
	Compression    bool `mapstructure:"compression"`
}

func (cfg *Config) withDefaults() {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.MaxDialAttempts == 0 {
		cfg.MaxDialAttempts = DefaultMaxDialAttempts
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.InitRetryInterval <= 0 {
		cfg.InitRetryInterval = DefaultInitRetryInterval
	}
	if cfg.MaxRetryInterval <= 0 {
		cfg.MaxRetryInterval = DefaultMaxRetryInterval
	}
	if cfg.MaxRetryCount <= 0 {
		cfg.MaxRetryCount = DefaultMaxRetryCount
	}
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = DefaultSendBufferSize
	}
}
