// Package connector 定义 connector 客户端网关各组件之间的接口。
package connector

import (
	"context"
	"net"

	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
)

//go:generate mockgen -source=./types.go -destination=./mock/connector.mock.go -package=connectormock -typed

// Server 为客户端 WebSocket 网关。
type Server interface {
	Start() error
	GracefulShutdown() error
}

// Upgrader 是连接升级器，用于将 HTTP 连接升级为 WebSocket 连接。
type Upgrader interface {
	Name() string
	Upgrade(conn net.Conn) (session.Session, *compression.State, error)
}

// Conn 是客户端连接的抽象，封装了底层的 WebSocket 连接。
type Conn interface {
	ID() string
	Session() session.Session

	// Send 将编码后的消息放入发送队列。
	Send(payload []byte) error
	Receive() <-chan []byte

	UpdateActivityTime()

	Closed() <-chan struct{}
	Close() error
}

// ConnManager 管理本 connector 上的全部客户端连接。
// 一个用户可以同时有多个设备连接，同一设备只保留最新的连接。
type ConnManager interface {
	NewConn(ctx context.Context, netConn net.Conn, sess session.Session, compressionState *compression.State) (Conn, error)

	// RemoveConn 移除并关闭用户某一设备的连接。
	RemoveConn(user session.User) bool
	// ReleaseConn 在连接结束后移除连接，连接已被同设备的新连接替换时不做任何操作。
	ReleaseConn(conn Conn) bool
	// RemoveUserConn 移除并关闭用户的全部连接，返回被移除的连接。
	RemoveUserConn(uid int64) []Conn

	FindConn(user session.User) (Conn, bool)
	FindUserConn(uid int64) ([]Conn, bool)

	// OnlineUsers 返回当前有连接的全部用户。
	OnlineUsers() []int64
}

// Handler 是客户端连接生命周期事件的回调接口。
type Handler interface {
	OnConnect(conn Conn) error
	OnDisconnect(conn Conn) error

	// OnReceive 处理客户端发送的一条消息。
	OnReceive(conn Conn, payload []byte) error
}
