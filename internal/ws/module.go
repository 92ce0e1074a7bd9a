package ws

import (
	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/auth"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var WsConfigFxModule = fx.Module("ws-config", fx.Provide(newWsConfig))

var WsUpgraderFxModule = fx.Module(
	"ws-upgrader",
	fx.Provide(
		fx.Annotate(
			newWsUpgrader,
			fx.As(new(connector.Upgrader)),
		),
	),
)

var WsServerFxModule = fx.Module(
	"ws-server",
	fx.Provide(
		NewServer,
		func(s *Server) connector.Server { return s },
	),
)

func newWsConfig() (*Config, error) {
	cfg := DefaultConfig()
	if err := viper.UnmarshalKey("connector.websocket", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newWsUpgrader(cfg *Config, builder session.Builder, validator auth.Validator, logger *zap.Logger) *Upgrader {
	return NewUpgrader(builder, validator, cfg.Compression, cfg.HandshakeTimeout, logger)
}
