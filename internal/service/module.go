package service

import (
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/message/downstream"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	"github.com/JrMarcco/connector/internal/pkg/xmq/produce"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ConnectorServiceFxModule = fx.Module(
	"connector-service",
	fx.Provide(
		newConnectorService,
		func(s *ConnectorService) transfer.ConnectorService { return s },
	),
)

var StatusSyncerFxModule = fx.Module(
	"status-syncer",
	fx.Provide(newStatusSyncer),
)

type connectorServiceFxParams struct {
	fx.In

	ConnManager connector.ConnManager
	DMsgHandler downstream.DMsgHandler
	Retransmit  *retransmit.Manager
	Producer    produce.Producer
	Slot        *transfer.LinkSlot

	Logger *zap.Logger
}

func newConnectorService(params connectorServiceFxParams) (*ConnectorService, error) {
	type config struct {
		Topic          string        `mapstructure:"topic"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
	}

	cfg := config{}
	if err := viper.UnmarshalKey("connector.offline", &cfg); err != nil {
		return nil, err
	}

	return NewConnectorService(
		params.ConnManager,
		params.DMsgHandler,
		params.Retransmit,
		params.Producer,
		params.Slot,
		params.Logger,
		ServiceWithOfflineTopic(cfg.Topic),
		ServiceWithRequestTimeout(cfg.RequestTimeout),
	), nil
}

func newStatusSyncer(handler *transfer.Handler, slot *transfer.LinkSlot, connManager connector.ConnManager, logger *zap.Logger) (*StatusSyncer, error) {
	type config struct {
		Interval time.Duration `mapstructure:"interval"`
		Timeout  time.Duration `mapstructure:"timeout"`
	}

	cfg := config{}
	if err := viper.UnmarshalKey("connector.status_sync", &cfg); err != nil {
		return nil, err
	}

	return NewStatusSyncer(
		handler,
		slot,
		connManager,
		logger,
		SyncerWithInterval(cfg.Interval),
		SyncerWithTimeout(cfg.Timeout),
	), nil
}
