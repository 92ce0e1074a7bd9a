package conn

import (
	"github.com/JrMarcco/connector"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ConnManagerFxModule = fx.Module(
	"ws-conn-manager",
	fx.Provide(
		newConnManager,
		func(m *ConnManager) connector.ConnManager { return m },
	),
)

func newConnManager(zapLogger *zap.Logger) (*ConnManager, error) {
	cfg := DefaultConfig()
	if err := viper.UnmarshalKey("connector.conn.manager", cfg); err != nil {
		return nil, err
	}
	return NewConnManager(zapLogger, ConnManagerWithConfig(cfg)), nil
}
