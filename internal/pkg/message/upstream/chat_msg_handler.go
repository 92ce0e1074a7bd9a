package upstream

import (
	"fmt"

	"github.com/JrMarcco/connector"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
	"go.uber.org/zap"
)

var _ UMsgHandler = (*ChatMsgHandler)(nil)

// ChatMsgHandler 处理客户端发送的聊天消息，将其转发给 transfer。
type ChatMsgHandler struct {
	forwarder Forwarder
	logger    *zap.Logger
}

func (h *ChatMsgHandler) Handle(conn connector.Conn, msg messagev1.Message) error {
	// 接收到客户端消息，更新连接活跃时间。
	conn.UpdateActivityTime()

	if err := h.forwarder.Forward(conn.Session().User(), msg); err != nil {
		h.logger.Error(
			"[connector-chat-msg-handler] failed to forward chat message to transfer",
			zap.String("conn_id", conn.ID()),
			zap.Any("message", msg),
			zap.Error(err),
		)
		return fmt.Errorf("failed to forward chat message: %w", err)
	}
	return nil
}

func (h *ChatMsgHandler) Kind() messagev1.Kind {
	return messagev1.KindChat
}

func NewChatMsgHandler(forwarder Forwarder, logger *zap.Logger) *ChatMsgHandler {
	return &ChatMsgHandler{
		forwarder: forwarder,
		logger:    logger,
	}
}
