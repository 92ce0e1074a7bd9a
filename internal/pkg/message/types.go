package message

import (
	"errors"
	"fmt"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
	"go.uber.org/zap"
)

var ErrMarshalMessage = errors.New("failed to marshal message")

// DefaultMessagePushFunc 创建推送消息到客户端的函数的默认实现。
// 该函数将消息编码后通过 Conn.Send 发送，同时用于首次推送和 retransmit.Manager 的重传。
func DefaultMessagePushFunc(cc codec.Codec, logger *zap.Logger) retransmit.PushFunc {
	return func(conn connector.Conn, msg *messagev1.ChatMsg) error {
		payload, err := cc.Marshal(msg)
		if err != nil {
			logger.Error(
				"[connector] failed to marshal message",
				zap.String("codec_name", cc.Name()),
				zap.Stringer("message", msg),
				zap.Error(err),
			)
			return fmt.Errorf("%w: %w", ErrMarshalMessage, err)
		}

		if err = conn.Send(payload); err != nil {
			logger.Error(
				"[connector] failed to send message",
				zap.String("connection_id", conn.ID()),
				zap.Error(err),
			)
			return err
		}
		return nil
	}
}
