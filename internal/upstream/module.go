package upstream

import (
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ClientFxModule = fx.Module(
	"upstream-client",
	fx.Provide(newClient),
)

func newClient(handler *transfer.Handler, logger *zap.Logger) (*Client, error) {
	cfg := Config{}
	if err := viper.UnmarshalKey("connector.transfer", &cfg); err != nil {
		return nil, err
	}
	return NewClient(cfg, handler, logger)
}
