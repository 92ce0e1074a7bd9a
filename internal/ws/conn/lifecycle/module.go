package lifecycle

import (
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/internal/pkg/message/upstream"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ConnLcHandlerFxModule = fx.Module(
	"ws-conn-lifecycle-handler",
	fx.Provide(
		fx.Annotate(
			newConnLcHandler,
			fx.As(new(connector.Handler)),
		),
	),
)

type connHandlerFxParams struct {
	fx.In

	Codec        codec.Codec
	UMsgHandlers []upstream.UMsgHandler `group:"upstream-message-handler"`

	ConnManager connector.ConnManager
	Retransmit  *retransmit.Manager

	Logger *zap.Logger
}

func newConnLcHandler(params connHandlerFxParams) (*Handler, error) {
	type config struct {
		SessionRequestTimeout time.Duration `mapstructure:"session_request_timeout"`
	}

	cfg := config{}
	if err := viper.UnmarshalKey("connector.conn.handler", &cfg); err != nil {
		return nil, err
	}

	return NewHandler(
		params.Codec,
		params.UMsgHandlers,
		params.ConnManager,
		params.Retransmit,
		cfg.SessionRequestTimeout,
		params.Logger,
	), nil
}
