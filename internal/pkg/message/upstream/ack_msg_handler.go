package upstream

import (
	"fmt"
	"log/slog"

	"github.com/JrMarcco/connector"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
)

var _ UMsgHandler = (*AckMsgHandler)(nil)

// AckMsgHandler 处理客户端对下发消息的确认。
type AckMsgHandler struct {
	acker Acker
}

func (h *AckMsgHandler) Handle(conn connector.Conn, msg messagev1.Message) error {
	ack, ok := msg.(*messagev1.AckMsg)
	if !ok {
		return fmt.Errorf("unexpected message type %T for ack handler", msg)
	}

	slog.Debug(
		"[connector-ack-msg-handler] received ack message",
		"conn_id", conn.ID(),
		"ack_msg_id", ack.AckMsgId,
		"ack_type", ack.MsgType,
	)

	conn.UpdateActivityTime()
	return h.acker.Ack(conn, ack)
}

func (h *AckMsgHandler) Kind() messagev1.Kind {
	return messagev1.KindAck
}

func NewAckMsgHandler(acker Acker) *AckMsgHandler {
	return &AckMsgHandler{
		acker: acker,
	}
}
