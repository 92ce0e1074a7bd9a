package providers

import (
	"github.com/JrMarcco/connector/internal/pkg/auth"
	"github.com/JrMarcco/connector/internal/pkg/message"
	"github.com/JrMarcco/connector/internal/pkg/message/downstream"
	"github.com/JrMarcco/connector/internal/pkg/message/upstream"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/internal/pkg/xmq/produce"
	"go.uber.org/fx"
)

var (
	ZapLoggerFxModule       = fx.Module("zap-logger", fx.Provide(newLogger))
	RedisFxModule           = fx.Module("redis", fx.Provide(newRedisCmdable))
	CodecFxModule           = fx.Module("codec", fx.Provide(newCodec))
	MessagePushFuncFxModule = fx.Module("message-push-func", fx.Provide(message.DefaultMessagePushFunc))
	RetransmitFxModule      = fx.Module("retransmit", fx.Provide(newRetransmitManager))
	EtcdFxModule            = fx.Module("etcd", fx.Provide(newEtcdClient))
	RegistryFxModule        = fx.Module("registry", fx.Provide(newRegistry))
)

var (
	KafkaFxModule         = fx.Module("kafka", fx.Provide(newKafkaWriter))
	KafkaProducerFxModule = fx.Module(
		"kafka-producer",
		fx.Provide(
			fx.Annotate(
				newKafkaProducer,
				fx.As(new(produce.Producer)),
			),
		),
	)
)

var (
	ValidatorFxModule = fx.Module(
		"validator",
		fx.Provide(
			fx.Annotate(
				newValidator,
				fx.As(new(auth.Validator)),
			),
		),
	)

	SessionBuilderFxModule = fx.Module(
		"session-builder",
		fx.Provide(
			fx.Annotate(
				newSessionBuilder,
				fx.As(new(session.Builder)),
			),
		),
	)

	MessageHandlerFxModule = fx.Module(
		"message-handler",
		fx.Provide(
			// 客户端聊天消息处理器。
			fx.Annotate(
				newChatMsgHandler,
				fx.As(new(upstream.UMsgHandler)),
				fx.ResultTags(`group:"upstream-message-handler"`),
			),

			// 客户端 ack 消息处理器。
			fx.Annotate(
				newAckMsgHandler,
				fx.As(new(upstream.UMsgHandler)),
				fx.ResultTags(`group:"upstream-message-handler"`),
			),

			// 下行聊天消息处理器。
			fx.Annotate(
				downstream.NewChatMsgHandler,
				fx.As(new(downstream.DMsgHandler)),
			),
		),
	)
)
