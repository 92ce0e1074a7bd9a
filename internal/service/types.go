// Package service 实现 connector 的本地业务逻辑：
// transfer 下发消息的本地投递，客户端消息的上行转发，以及在线用户状态的同步。
package service

import (
	"errors"
	"time"

	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
)

var ErrUnsupportedMessage = errors.New("unsupported client message")

//go:generate mockgen -source=./types.go -destination=./mock/service.mock.go -package=servicemock -typed

// UpstreamWriter 将消息写入到 transfer 的上行连接。
// *transfer.LinkSlot 实现了该接口。
type UpstreamWriter interface {
	Write(msg message.Message) error
}

// StatusCoordinator 协调 user status 同步请求与 transfer 的 ACK。
// *transfer.Handler 实现了该接口。
type StatusCoordinator interface {
	CreateUserStatusMsgCollector(timeout time.Duration) (*transfer.UserStatusCollector, error)
	CancelUserStatusCollector(c *transfer.UserStatusCollector, err error) bool
}

var (
	_ UpstreamWriter    = (*transfer.LinkSlot)(nil)
	_ StatusCoordinator = (*transfer.Handler)(nil)
)
