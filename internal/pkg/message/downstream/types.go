package downstream

import (
	"github.com/JrMarcco/connector"
	messagev1 "github.com/JrMarcco/connector/pkg/message"
)

//go:generate mockgen -source=types.go -destination=mock/downstream.mock.go -package=downstreammock -typed DMsgHandler

// DMsgHandler 是 downstream 消息处理器的接口。
type DMsgHandler interface {
	// Handle 将消息推送给用户的连接，返回推送成功的连接。
	// 注：
	//	Handle 方法没有 context.Context 参数是因为消息处理通常在 connector.Conn 的上下文中进行。
	Handle(conns []connector.Conn, msg *messagev1.ChatMsg) []connector.Conn
}
