package upstream

import (
	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/session"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
)

//go:generate mockgen -source=./types.go -destination=./mock/upstream.mock.go -package=upstreammock -typed UMsgHandler

// UMsgHandler 是 upstream 消息处理器的接口。
type UMsgHandler interface {
	// Handle 处理消息。
	// 注：
	//	Handle 方法没有 context.Context 参数是因为消息处理通常在 connector.Conn 的上下文中进行。
	Handle(conn connector.Conn, msg messagev1.Message) error

	// Kind 返回处理的消息类型。
	Kind() messagev1.Kind
}

// Forwarder 将客户端消息转发给 transfer。
type Forwarder interface {
	Forward(user session.User, msg messagev1.Message) error
}

// Acker 处理客户端对下发消息的确认。
type Acker interface {
	Ack(conn connector.Conn, msg *messagev1.AckMsg) error
}
