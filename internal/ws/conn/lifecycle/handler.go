// Package lifecycle 处理客户端连接的生命周期事件。
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/internal/pkg/message/upstream"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
	"go.uber.org/zap"
)

const (
	DefaultSessionRequestTimeout = 3 * time.Second

	// SessionFieldConnID 为会话中记录当前连接 id 的字段。
	SessionFieldConnID = "conn_id"
)

var ErrUnknownMessage = errors.New("unknown client message")

var _ connector.Handler = (*Handler)(nil)

type Handler struct {
	codec       codec.Codec
	uMsgHandler map[messagev1.Kind]upstream.UMsgHandler

	connManager connector.ConnManager
	retransmit  *retransmit.Manager

	sessionRequestTimeout time.Duration

	logger *zap.Logger
}

func (h *Handler) OnConnect(conn connector.Conn) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.sessionRequestTimeout)
	defer cancel()

	if err := conn.Session().Set(ctx, SessionFieldConnID, conn.ID()); err != nil {
		return fmt.Errorf("failed to record connection in session: %w", err)
	}

	h.logger.Info(
		"[connector-conn-lc-handler] client connected",
		zap.String("conn_id", conn.ID()),
		zap.Any("user", conn.Session().User()),
	)
	return nil
}

// OnDisconnect 清理连接的重传任务。
// 连接仍是用户该设备的当前连接时，同时删除会话。
func (h *Handler) OnDisconnect(conn connector.Conn) error {
	h.retransmit.ClearByConn(conn)

	user := conn.Session().User()
	if current, ok := h.connManager.FindConn(user); !ok || current != conn {
		// 已被同设备的新连接替换 ( 或已被强制下线 )，会话不属于该连接。
		h.logger.Info(
			"[connector-conn-lc-handler] client disconnected, connection already replaced",
			zap.String("conn_id", conn.ID()),
			zap.Any("user", user),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.sessionRequestTimeout)
	defer cancel()

	if err := conn.Session().Destroy(ctx); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}

	h.logger.Info(
		"[connector-conn-lc-handler] client disconnected",
		zap.String("conn_id", conn.ID()),
		zap.Any("user", user),
	)
	return nil
}

// OnReceive 解码客户端消息，校验方向后按消息类型分发。
func (h *Handler) OnReceive(conn connector.Conn, payload []byte) error {
	msg, err := h.codec.Unmarshal(payload)
	if err != nil {
		h.logger.Error(
			"[connector-conn-lc-handler] failed to unmarshal client message",
			zap.String("conn_id", conn.ID()),
			zap.String("codec_name", h.codec.Name()),
			zap.Error(err),
		)
		return err
	}

	if err = messagev1.CheckFrom(msg, messagev1.Module_CLIENT); err != nil {
		return err
	}
	if err = messagev1.CheckDest(msg, messagev1.Module_CONNECTOR); err != nil {
		return err
	}

	handler, ok := h.uMsgHandler[msg.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMessage, msg.Kind())
	}
	return handler.Handle(conn, msg)
}

func NewHandler(
	cc codec.Codec,
	uMsgHandlers []upstream.UMsgHandler,
	connManager connector.ConnManager,
	retransmitManager *retransmit.Manager,
	sessionRequestTimeout time.Duration,
	logger *zap.Logger,
) *Handler {
	if sessionRequestTimeout <= 0 {
		sessionRequestTimeout = DefaultSessionRequestTimeout
	}

	uMsgHandlerMap := make(map[messagev1.Kind]upstream.UMsgHandler, len(uMsgHandlers))
	for _, handler := range uMsgHandlers {
		uMsgHandlerMap[handler.Kind()] = handler
	}

	return &Handler{
		codec:                 cc,
		uMsgHandler:           uMsgHandlerMap,
		connManager:           connManager,
		retransmit:            retransmitManager,
		sessionRequestTimeout: sessionRequestTimeout,
		logger:                logger,
	}
}
