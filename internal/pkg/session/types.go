package session

import (
	"context"
	"fmt"
	"strconv"
)

//go:generate mockgen -source=./types.go -destination=./mock/session.mock.go -package=sessionmock -typed Session

// Session 为客户端连接的会话，保存在 redis 中。
type Session interface {
	User() User

	Set(ctx context.Context, key string, val string) error
	Get(ctx context.Context, key string) (string, error)

	// Destroy 删除会话。
	Destroy(ctx context.Context) error
}

// Builder 为 Session 的构建器。
type Builder interface {
	// Build 新建一个 Session 或 返回一个已存在的 Session。
	// bool 参数表示返回的 Session 是否是新建的。
	Build(ctx context.Context, user User) (Session, bool, error)
}

type Device string

const (
	DeviceUnknown Device = "unknown"
	DeviceMobile  Device = "mobile"
	DeviceTablet  Device = "tablet"
	DevicePC      Device = "pc"
)

// User 为 Session 的用户信息。
// 同一用户的不同设备各自持有一个连接和一个 Session。
type User struct {
	UID       int64  `json:"uid"`
	Device    Device `json:"device"`
	AutoClose bool   `json:"auto_close"` // 空闲时是否自动关闭连接
}

// ConnKey 为用户维度的连接 key。
func (u User) ConnKey() string {
	return strconv.FormatInt(u.UID, 10)
}

// ConnID 为设备维度的连接 id。
func (u User) ConnID() string {
	return fmt.Sprintf("%d:%s", u.UID, u.Device)
}

func (u User) SessionKey() string {
	return fmt.Sprintf("connector:session:%d:%s", u.UID, u.Device)
}
