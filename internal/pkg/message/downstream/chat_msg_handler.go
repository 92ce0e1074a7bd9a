package downstream

import (
	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
	"go.uber.org/zap"
)

var _ DMsgHandler = (*ChatMsgHandler)(nil)

// ChatMsgHandler 负责将 transfer 转发来的聊天消息推送给客户端。
type ChatMsgHandler struct {
	pushFunc          retransmit.PushFunc
	retransmitManager *retransmit.Manager
	logger            *zap.Logger
}

func (h *ChatMsgHandler) Handle(conns []connector.Conn, msg *messagev1.ChatMsg) []connector.Conn {
	delivered := make([]connector.Conn, 0, len(conns))
	for _, conn := range conns {
		if err := h.pushFunc(conn, msg); err != nil {
			h.logger.Warn(
				"[connector-chat-msg-handler] failed to push chat message",
				zap.String("conn_id", conn.ID()),
				zap.Int64("message_id", msg.Id),
				zap.Error(err),
			)
			continue
		}

		// 成功发送消息到客户端，更新连接活跃时间。
		conn.UpdateActivityTime()
		delivered = append(delivered, conn)
	}

	// 设置重试。
	// 当客户端返回 ack 消息后，停止重试。
	if len(delivered) > 0 {
		h.retransmitManager.Start(delivered, msg)
	}
	return delivered
}

func NewChatMsgHandler(
	pushFunc retransmit.PushFunc,
	retransmitManager *retransmit.Manager,
	logger *zap.Logger,
) *ChatMsgHandler {
	return &ChatMsgHandler{
		pushFunc:          pushFunc,
		retransmitManager: retransmitManager,
		logger:            logger,
	}
}
