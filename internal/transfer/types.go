// Package transfer 实现 connector 与 transfer 之间长连接的 connector 端处理逻辑。
//
// Handler 负责：
//
//	1. 连接建立时向 transfer 发送 GREET，告知本 connector 的 id。
//	2. 校验 transfer 下发的每一帧消息的来源与目标，并按消息类型分发。
//	3. 协调 user status 同步请求，同一时刻最多只有一个未完成的请求。
//
// 连接本身由 upstream 包维护，通过 LinkSlot 共享给进程内的其它组件。
package transfer

import (
	"errors"

	"github.com/JrMarcco/connector/pkg/message"
)

var (
	ErrUnroutableMessage        = errors.New("unroutable message")
	ErrUnhandledInternalSubtype = errors.New("unhandled internal message type")
	ErrUnexpectedAck            = errors.New("unexpected response received")
	ErrPendingRequestInProgress = errors.New("still waiting for init response from server")
	ErrInvalidMsgBody           = errors.New("invalid message body")
	ErrNotConnected             = errors.New("not connected to transfer")
)

//go:generate mockgen -source=./types.go -destination=./mock/transfer.mock.go -package=transfermock -typed Link,ConnectorService

// Link 是 connector 到 transfer 的上行连接句柄。
// 注：
//
//	Write 是异步的，只负责将消息放入发送队列。
//	持有 Link 的组件不能假设写入时连接仍然可用。
type Link interface {
	ID() string
	Write(msg message.Message) error
	Closed() <-chan struct{}
}

// ConnectorService 是 transfer 下发消息对应的本地业务逻辑。
type ConnectorService interface {
	// DoChat 将聊天消息投递给本地客户端。
	DoChat(msg *message.ChatMsg) error
	// ForceOffline 强制用户下线。
	ForceOffline(userID int64) error
}
