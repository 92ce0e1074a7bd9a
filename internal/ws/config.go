package ws

import (
	"fmt"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/limiter"
)

const (
	defaultHost    = "0.0.0.0"
	defaultPort    = 17001
	defaultNetwork = "tcp4"

	defaultAcceptBackoffInit = 10 * time.Millisecond
	defaultAcceptBackoffMax  = time.Second
)

// Config 为 WebSocket 网关的相关配置。
type Config struct {
	Host    string `mapstructure:"host"`    // IP 地址，默认 0.0.0.0
	Port    int    `mapstructure:"port"`    // 端口号，默认 17001
	Network string `mapstructure:"network"` // 网络协议，默认 tcp4

	// AdvertiseAddr 为注册到 etcd 的对外地址，为空时使用 Address()。
	AdvertiseAddr string `mapstructure:"advertise_addr"`

	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout"`

	// 获取连接令牌失败时的退避参数。
	AcceptBackoffInit time.Duration `mapstructure:"accept_backoff_init"`
	AcceptBackoffMax  time.Duration `mapstructure:"accept_backoff_max"`

	Compression compression.Config         `mapstructure:"compression"`
	Limiter     limiter.TokenLimiterConfig `mapstructure:"limiter"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:              defaultHost,
		Port:              defaultPort,
		Network:           defaultNetwork,
		AcceptBackoffInit: defaultAcceptBackoffInit,
		AcceptBackoffMax:  defaultAcceptBackoffMax,
		Limiter:           limiter.DefaultConfig(),
	}
}

func (cfg Config) Address() string {
	if cfg.Network == "unix" {
		// 如果是 unix，
		// 那么启动方式为 unix domain socket，
		// Host 为 file。
		return cfg.Host
	}

	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

func (cfg Config) Advertise() string {
	if cfg.AdvertiseAddr != "" {
		return cfg.AdvertiseAddr
	}
	return cfg.Address()
}
