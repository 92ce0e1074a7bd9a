package providers

import (
	"context"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

func newRetransmitManager(pushFunc retransmit.PushFunc, lifecycle fx.Lifecycle) (*retransmit.Manager, error) {
	type config struct {
		Interval time.Duration `mapstructure:"interval"`
		MaxRetry int32         `mapstructure:"max_retry"`
	}

	cfg := config{}
	if err := viper.UnmarshalKey("connector.retransmit", &cfg); err != nil {
		return nil, err
	}

	manager := retransmit.NewManager(cfg.Interval, cfg.MaxRetry, pushFunc)

	lifecycle.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			manager.Close()
			return nil
		},
	})

	return manager, nil
}
