package providers

import (
	"github.com/JrMarcco/connector/internal/pkg/message/upstream"
	"github.com/JrMarcco/connector/internal/service"
	"go.uber.org/zap"
)

// 客户端上行的聊天消息和 ack 消息都交给 ConnectorService 处理。

func newChatMsgHandler(svc *service.ConnectorService, logger *zap.Logger) *upstream.ChatMsgHandler {
	return upstream.NewChatMsgHandler(svc, logger)
}

func newAckMsgHandler(svc *service.ConnectorService) *upstream.AckMsgHandler {
	return upstream.NewAckMsgHandler(svc)
}
