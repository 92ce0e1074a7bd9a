package main

import (
	"github.com/JrMarcco/connector/internal/app"
	"github.com/JrMarcco/connector/internal/pkg/providers"
	"github.com/JrMarcco/connector/internal/service"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/internal/upstream"
	"github.com/JrMarcco/connector/internal/ws"
	"github.com/JrMarcco/connector/internal/ws/conn"
	"github.com/JrMarcco/connector/internal/ws/conn/lifecycle"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	initViper()

	fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),

		// 初始化 zap.Logger。
		providers.ZapLoggerFxModule,

		// 初始化 redis.Cmdable。
		providers.RedisFxModule,

		// 初始化 etcd client 以及 connector 注册。
		providers.EtcdFxModule,
		providers.RegistryFxModule,

		// 初始化 kafka。
		providers.KafkaFxModule,
		providers.KafkaProducerFxModule,

		// 初始化 token validator。
		providers.ValidatorFxModule,

		// 初始化 session builder。
		providers.SessionBuilderFxModule,

		// 初始化 codec。
		providers.CodecFxModule,

		// 初始化 message push func。
		providers.MessagePushFuncFxModule,

		// 初始化 retransmit manager。
		providers.RetransmitFxModule,

		// 初始化 message handler。
		providers.MessageHandlerFxModule,

		// 初始化 conn manager。
		conn.ConnManagerFxModule,

		// 初始化 conn lifecycle handler 。
		lifecycle.ConnLcHandlerFxModule,

		// 初始化 websocket 网关。
		ws.WsConfigFxModule,
		ws.WsUpgraderFxModule,
		ws.WsServerFxModule,

		// 初始化 connector service。
		service.ConnectorServiceFxModule,
		service.StatusSyncerFxModule,

		// 初始化 transfer 上行连接。
		transfer.HandlerFxModule,
		upstream.ClientFxModule,

		// 初始化 app。
		app.AppFxModule,
	).Run()
}

func initViper() {
	configFile := pflag.String("config", "etc/config.yaml", "path to config file")
	pflag.Parse()

	viper.SetConfigFile(*configFile)
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}
}
