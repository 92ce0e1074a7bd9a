package transfer

import (
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var HandlerFxModule = fx.Module(
	"transfer-handler",
	fx.Provide(
		Shared,
		newHandler,
	),
)

func newHandler(svc ConnectorService, logger *zap.Logger) *Handler {
	return NewHandler(svc, logger)
}
