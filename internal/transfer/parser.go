package transfer

import (
	"fmt"
	"strconv"

	"github.com/JrMarcco/connector/pkg/message"
)

// MsgHandleFunc 处理一条已经通过方向校验的消息。
type MsgHandleFunc func(link Link, msg message.Message) error

// msgParser 按消息类型 ( 帧的 Kind ) 分发消息。
// 注册只在构造时进行，之后只读，不需要同步。
type msgParser struct {
	handlers map[message.Kind]MsgHandleFunc
}

func (p *msgParser) parse(link Link, msg message.Message) error {
	fn, ok := p.handlers[msg.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s ( %T )", ErrUnroutableMessage, msg.Kind(), msg)
	}
	return fn(link, msg)
}

func newMsgParser() *msgParser {
	return &msgParser{handlers: make(map[message.Kind]MsgHandleFunc)}
}

// register 注册某一具体消息类型的处理函数。
func register[T message.Message](p *msgParser, kind message.Kind, fn func(link Link, msg T) error) {
	p.handlers[kind] = func(link Link, msg message.Message) error {
		typed, ok := msg.(T)
		if !ok {
			return fmt.Errorf("%w: kind %s carried by %T", ErrUnroutableMessage, kind, msg)
		}
		return fn(link, typed)
	}
}

type internalMsgHandleFunc func(link Link, msg *message.InternalMsg) error

// internalMsgParser 按 InternalMsgType 对内部消息做二级分发。
type internalMsgParser struct {
	// depth 沿用 transfer 侧 parser 的构造参数，对分发结果没有影响。
	depth    int
	handlers map[message.InternalMsgType]internalMsgHandleFunc
}

func (p *internalMsgParser) register(msgType message.InternalMsgType, fn internalMsgHandleFunc) {
	p.handlers[msgType] = fn
}

// handleFunc 生成注册到 msgParser 的处理函数。
func (p *internalMsgParser) handleFunc() func(link Link, msg *message.InternalMsg) error {
	return func(link Link, msg *message.InternalMsg) error {
		fn, ok := p.handlers[msg.MsgType]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnhandledInternalSubtype, msg.MsgType)
		}
		return fn(link, msg)
	}
}

func newInternalMsgParser(depth int) *internalMsgParser {
	return &internalMsgParser{
		depth:    depth,
		handlers: make(map[message.InternalMsgType]internalMsgHandleFunc),
	}
}

const internalParserDepth = 3

// newFromTransferParser 构建 transfer 下发消息的分发表：
//
//	ChatMsg                      -> ConnectorService.DoChat
//	InternalMsg ( ACK )          -> userStatusSyncDone
//	InternalMsg ( FORCE_OFFLINE ) -> ConnectorService.ForceOffline
func newFromTransferParser(h *Handler) *msgParser {
	internalParser := newInternalMsgParser(internalParserDepth)
	internalParser.register(message.InternalMsgType_ACK, func(_ Link, msg *message.InternalMsg) error {
		return h.userStatusSyncDone(msg)
	})
	internalParser.register(message.InternalMsgType_FORCE_OFFLINE, func(_ Link, msg *message.InternalMsg) error {
		userID, err := strconv.ParseInt(msg.MsgBody, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: force offline body %q: %w", ErrInvalidMsgBody, msg.MsgBody, err)
		}
		return h.svc.ForceOffline(userID)
	})

	p := newMsgParser()
	register(p, message.KindChat, func(_ Link, msg *message.ChatMsg) error {
		return h.svc.DoChat(msg)
	})
	register(p, message.KindInternal, internalParser.handleFunc())
	return p
}
