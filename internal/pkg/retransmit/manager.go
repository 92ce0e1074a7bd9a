// Package retransmit 负责下发给客户端的聊天消息的重传。
package retransmit

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/JrMarcco/jit/xsync"
)

const (
	DefaultRetryInterval = 8 * time.Second
	DefaultMaxRetryCnt   = 3
)

// PushFunc 将聊天消息推送给客户端连接。
type PushFunc func(conn connector.Conn, msg *message.ChatMsg) error

// Task 为重传任务。
// 每个消息需要一个重传任务，一个重传任务只能对应一个消息。
type Task struct {
	key  string
	conn connector.Conn
	msg  *message.ChatMsg

	timerPtr      atomic.Pointer[time.Timer] // 重传定时器
	retransmitCnt atomic.Int32               // 重传次数

	manager *Manager
}

func (t *Task) run() {
	// 尝试加载任务，如果不存在说明已被停止。
	if current, ok := t.manager.tasks.Load(t.key); !ok || current != t {
		return
	}

	cnt := t.retransmitCnt.Add(1)

	// 检查重传次数。
	if cnt > t.manager.maxRetryCnt {
		slog.Warn(
			"[connector-retransmit-manager] retransmit task reach max retry cnt",
			"conn_id", t.conn.ID(),
			"message_id", t.msg.Id,
			"retransmit_count", cnt-1,
		)
		_ = t.manager.stopAndDelete(t.key)
		return
	}

	err := t.manager.pushFunc(t.conn, t.msg)
	if err != nil {
		slog.Error(
			"[connector-retransmit-manager] failed to retransmit message",
			"conn_id", t.conn.ID(),
			"message_id", t.msg.Id,
			"retransmit_count", cnt,
			"error", err.Error(),
		)

		// 重传失败，直接停止重传任务。
		_ = t.manager.stopAndDelete(t.key)
		return
	}

	t.conn.UpdateActivityTime()
	slog.Debug(
		"[connector-retransmit-manager] successfully retransmit message",
		"conn_id", t.conn.ID(),
		"message_id", t.msg.Id,
		"retransmit_count", cnt,
	)

	t.timerPtr.Store(time.AfterFunc(t.manager.retryInterval, t.run))
}

func (t *Task) stop() {
	if timer := t.timerPtr.Load(); timer != nil {
		timer.Stop()
	}
}

// Manager 为重传管理器，负责管理重传任务。
// 重传使用固定间隔重试，直到客户端确认或达到最大重传次数。
type Manager struct {
	tasks *xsync.Map[string, *Task] // key (connID:messageID) -> retransmit.Task

	totalTaskCnt  atomic.Int64
	retryInterval time.Duration // 重传间隔
	maxRetryCnt   int32         // 最大重传次数

	pushFunc PushFunc
	closed   atomic.Bool
}

func (m *Manager) Start(conns []connector.Conn, msg *message.ChatMsg) {
	for _, conn := range conns {
		m.start(conn, msg)
	}
}

func (m *Manager) start(conn connector.Conn, msg *message.ChatMsg) {
	if m.closed.Load() {
		return
	}

	task := &Task{
		key:     m.taskKey(conn.ID(), msg.Id),
		conn:    conn,
		msg:     msg,
		manager: m,
	}

	if _, loaded := m.tasks.LoadOrStore(task.key, task); loaded {
		return
	}

	task.timerPtr.Store(time.AfterFunc(m.retryInterval, task.run))
	m.totalTaskCnt.Add(1)

	slog.Debug(
		"[connector-retransmit-manager] successfully start retransmit task",
		"conn_id", conn.ID(),
		"message_id", msg.Id,
		"retry_interval", m.retryInterval,
		"max_retry_cnt", m.maxRetryCnt,
	)
}

// Stop 停止指定消息的重传任务。
func (m *Manager) Stop(connID string, messageID int64) {
	key := m.taskKey(connID, messageID)
	if task, ok := m.tasks.Load(key); ok {
		if !m.stopAndDelete(key) {
			return
		}

		slog.Debug(
			"[connector-retransmit-manager] successfully stop retransmit task",
			"conn_id", connID,
			"message_id", messageID,
			"retransmit_count", task.retransmitCnt.Load(),
		)
	}
}

func (m *Manager) taskKey(connID string, messageID int64) string {
	return fmt.Sprintf("%s:%d", connID, messageID)
}

func (m *Manager) TotalTaskCnt() int64 {
	return m.totalTaskCnt.Load()
}

// ClearByConn 清除指定连接的重传任务。
// 注：
//
//	同一设备的新旧连接 id 相同，所以按连接实例而不是连接 id 匹配。
func (m *Manager) ClearByConn(conn connector.Conn) {
	var cnt int
	m.tasks.Range(func(key string, task *Task) bool {
		if task.conn == conn && m.stopAndDelete(key) {
			cnt++
		}
		return true
	})

	if cnt > 0 {
		slog.Info(
			"[connector-retransmit-manager] successfully clear retransmit tasks by connection",
			"conn_id", conn.ID(),
			"task_cleared_cnt", cnt,
		)
	}
}

func (m *Manager) stopAndDelete(key string) bool {
	if task, ok := m.tasks.LoadAndDelete(key); ok {
		task.stop()
		m.totalTaskCnt.Add(-1)
		return true
	}
	return false
}

// Close 关闭重传管理器。
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}

	var cnt int
	m.tasks.Range(func(key string, _ *Task) bool {
		if m.stopAndDelete(key) {
			cnt++
		}
		return true
	})

	slog.Info(
		"[connector-retransmit-manager] retransmit manager closed",
		"task_cleared_cnt", cnt,
	)
}

func NewManager(retryInterval time.Duration, maxRetryCnt int32, pushFunc PushFunc) *Manager {
	if retryInterval <= 0 {
		retryInterval = DefaultRetryInterval
	}
	if maxRetryCnt <= 0 {
		maxRetryCnt = DefaultMaxRetryCnt
	}

	if pushFunc == nil {
		pushFunc = func(_ connector.Conn, _ *message.ChatMsg) error {
			return nil
		}
	}

	return &Manager{
		tasks:         &xsync.Map[string, *Task]{},
		retryInterval: retryInterval,
		maxRetryCnt:   maxRetryCnt,
		pushFunc:      pushFunc,
	}
}
