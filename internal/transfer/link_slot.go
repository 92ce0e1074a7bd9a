package transfer

import (
	"fmt"
	"sync/atomic"

	"github.com/JrMarcco/connector/pkg/message"
)

// linkRef 包装 Link 接口以便使用 atomic.Pointer。
type linkRef struct {
	link Link
}

// LinkSlot 保存当前的上行连接。
// 写入只发生在连接激活 ( 以及连接关闭 ) 时，读取可以发生在任意 goroutine。
type LinkSlot struct {
	ref atomic.Pointer[linkRef]
}

// Load 返回最近一次记录的连接，false 表示当前未连接。
func (s *LinkSlot) Load() (Link, bool) {
	ref := s.ref.Load()
	if ref == nil {
		return nil, false
	}
	return ref.link, true
}

// Store 记录新的连接，覆盖旧值。
func (s *LinkSlot) Store(link Link) {
	s.ref.Store(&linkRef{link: link})
}

// CompareAndDelete 仅当当前记录的连接为 link 时清空。
// 防止旧连接的关闭事件覆盖掉新连接。
func (s *LinkSlot) CompareAndDelete(link Link) bool {
	ref := s.ref.Load()
	if ref == nil || ref.link != link {
		return false
	}
	return s.ref.CompareAndSwap(ref, nil)
}

// Write 通过当前连接发送消息。
func (s *LinkSlot) Write(msg message.Message) error {
	link, ok := s.Load()
	if !ok {
		return ErrNotConnected
	}

	if err := link.Write(msg); err != nil {
		return fmt.Errorf("failed to write to link [ %s ]: %w", link.ID(), err)
	}
	return nil
}

// sharedSlot 为进程级的上行连接。
// 一个 connector 进程只有一条到 transfer 的连接。
var sharedSlot = &LinkSlot{}

// Shared 返回进程级的 LinkSlot。
func Shared() *LinkSlot {
	return sharedSlot
}

// SharedLink 返回进程级的当前连接。
func SharedLink() (Link, bool) {
	return sharedSlot.Load()
}

// WriteUpstream 通过进程级的当前连接发送消息。
// 未连接时返回 ErrNotConnected。
func WriteUpstream(msg message.Message) error {
	return sharedSlot.Write(msg)
}
