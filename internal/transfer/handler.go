package transfer

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/collector"
	"github.com/JrMarcco/connector/internal/pkg/idgen"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/JrMarcco/jit/bean/option"
	"go.uber.org/zap"
)

const greetVersion = 1

type UserStatusCollector = collector.ResponseCollector[*message.InternalMsg]

// Handler 是 connector 到 transfer 连接的 connector 端处理器。
// 一个进程只有一个 Handler，连接重建时复用同一个 Handler。
type Handler struct {
	connectorID string
	idGen       idgen.Generator
	now         func() time.Time

	svc    ConnectorService
	parser *msgParser

	// 同一时刻最多只有一个等待 ACK 的 user status 同步请求。
	userStatusCollector atomic.Pointer[UserStatusCollector]

	slot *LinkSlot

	logger *zap.Logger
}

// OnActive 在连接建立后调用。
// 先发送 GREET 再记录连接，保证 GREET 是新连接上的第一帧。
func (h *Handler) OnActive(link Link) error {
	greet := h.greet()
	if err := link.Write(greet); err != nil {
		h.logger.Error(
			"[connector-transfer-handler] failed to write greet message",
			zap.String("link_id", link.ID()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write greet message: %w", err)
	}

	h.slot.Store(link)

	h.logger.Info(
		"[connector-transfer-handler] connect success",
		zap.String("link_id", link.ID()),
		zap.String("connector_id", h.connectorID),
		zap.Int64("greet_id", greet.Id),
	)
	return nil
}

func (h *Handler) greet() *message.InternalMsg {
	return &message.InternalMsg{
		Id:         h.idGen.NextID(),
		Version:    greetVersion,
		MsgType:    message.InternalMsgType_GREET,
		MsgBody:    h.connectorID,
		From:       message.Module_CONNECTOR,
		Dest:       message.Module_TRANSFER,
		CreateTime: h.now().UnixMilli(),
	}
}

// OnMessage 处理 transfer 下发的一帧消息。
// 注：
//
//	返回 error 只代表该帧被丢弃，连接保持不变。
//	同一连接上的消息是串行处理的。
func (h *Handler) OnMessage(link Link, msg message.Message) error {
	h.logger.Debug(
		"[connector-transfer-handler] get message",
		zap.String("link_id", link.ID()),
		zap.Stringer("kind", msg.Kind()),
		zap.Any("message", msg),
	)

	err := message.CheckFrom(msg, message.Module_TRANSFER)
	if err == nil {
		err = message.CheckDest(msg, message.Module_CONNECTOR)
	}
	if err == nil {
		err = h.parser.parse(link, msg)
	}

	if err != nil {
		h.logger.Error(
			"[connector-transfer-handler] failed to handle message, drop it",
			zap.String("link_id", link.ID()),
			zap.Stringer("kind", msg.Kind()),
			zap.Any("message", msg),
			zap.Error(err),
		)
		return err
	}
	return nil
}

// OnClose 在连接关闭后调用。
func (h *Handler) OnClose(link Link) {
	if h.slot.CompareAndDelete(link) {
		h.logger.Warn("[connector-transfer-handler] link closed", zap.String("link_id", link.ID()))
	}
}

// CreateUserStatusMsgCollector 创建等待 user status 同步 ACK 的收集器。
//
// 已有未完成的收集器时返回 ErrPendingRequestInProgress。
// 已有收集器超过截止时间仍未完成时，会被新的收集器替换，旧收集器以 collector.ErrReclaimed 结束。
func (h *Handler) CreateUserStatusMsgCollector(timeout time.Duration) (*UserStatusCollector, error) {
	c := collector.NewAt[*message.InternalMsg](h.now(), timeout)

	for {
		if h.userStatusCollector.CompareAndSwap(nil, c) {
			return c, nil
		}

		prev := h.userStatusCollector.Load()
		if prev == nil {
			// 在 CAS 与重新读取之间，上一个收集器刚好被 ACK 清空，重试即可。
			// userStatusSyncDone 只会清空不会重新占用，所以重试一定会收敛。
			continue
		}

		if !prev.Expired(h.now()) {
			return nil, ErrPendingRequestInProgress
		}

		if h.userStatusCollector.CompareAndSwap(prev, c) {
			prev.Fail(collector.ErrReclaimed)

			h.logger.Warn(
				"[connector-transfer-handler] reclaimed expired user status collector",
				zap.Time("expired_deadline", prev.Deadline()),
				zap.Duration("timeout", prev.Timeout()),
			)
			return c, nil
		}
	}
}

// userStatusSyncDone 使用 ACK 完成当前的收集器。
// 先清空再完成，保证完成回调中可以直接发起下一次请求。
func (h *Handler) userStatusSyncDone(msg *message.InternalMsg) error {
	c := h.userStatusCollector.Load()
	if c == nil || !h.userStatusCollector.CompareAndSwap(c, nil) {
		return fmt.Errorf("%w: %s", ErrUnexpectedAck, msg)
	}

	c.Complete(msg)
	return nil
}

// CancelUserStatusCollector 放弃尚未收到 ACK 的收集器，c 以 err 结束。
// c 已经不是当前收集器时返回 false。
func (h *Handler) CancelUserStatusCollector(c *UserStatusCollector, err error) bool {
	if !h.userStatusCollector.CompareAndSwap(c, nil) {
		return false
	}

	c.Fail(err)
	return true
}

// ConnectorID 返回 GREET 中携带的 connector id，同时用作上行连接和注册的标识。
func (h *Handler) ConnectorID() string {
	return h.connectorID
}

func HandlerWithConnectorID(connectorID string) option.Opt[Handler] {
	return func(h *Handler) {
		h.connectorID = connectorID
	}
}

func HandlerWithIDGenerator(idGen idgen.Generator) option.Opt[Handler] {
	return func(h *Handler) {
		h.idGen = idGen
	}
}

func HandlerWithClock(now func() time.Time) option.Opt[Handler] {
	return func(h *Handler) {
		h.now = now
	}
}

// HandlerWithLinkSlot 替换进程级的 LinkSlot，主要用于测试。
func HandlerWithLinkSlot(slot *LinkSlot) option.Opt[Handler] {
	return func(h *Handler) {
		h.slot = slot
	}
}

func NewHandler(svc ConnectorService, logger *zap.Logger, opts ...option.Opt[Handler]) *Handler {
	h := &Handler{
		connectorID: idgen.ConnectorID(),
		idGen:       idgen.GeneratorFunc(idgen.NextID),
		now:         time.Now,

		svc:  svc,
		slot: sharedSlot,

		logger: logger,
	}

	option.Apply(h, opts...)

	h.parser = newFromTransferParser(h)
	return h
}
