package retransmit

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ connector.Conn = (*fakeConn)(nil)

type fakeConn struct {
	id          string
	activityCnt atomic.Int32
}

func (c *fakeConn) ID() string { return c.id }
func (c *fakeConn) Session() session.Session { return nil }
func (c *fakeConn) Send(_ []byte) error { return nil }
func (c *fakeConn) Receive() <-chan []byte { return nil }
func (c *fakeConn) UpdateActivityTime() { c.activityCnt.Add(1) }
func (c *fakeConn) Closed() <-chan struct{} { return nil }
func (c *fakeConn) Close() error { return nil }

type recorder struct {
	mu     sync.Mutex
	pushed map[string]int
	err    error
}

func (r *recorder) push(conn connector.Conn, _ *message.ChatMsg) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pushed == nil {
		r.pushed = make(map[string]int)
	}
	r.pushed[conn.ID()]++
	return r.err
}

func (r *recorder) count(connID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.pushed[connID]
}

func TestManager_RetransmitUntilMaxRetry(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := NewManager(5*time.Millisecond, 3, rec.push)
	defer m.Close()

	conn := &fakeConn{id: "1:pc"}
	m.Start([]connector.Conn{conn}, &message.ChatMsg{Id: 100})
	assert.Equal(t, int64(1), m.TotalTaskCnt())

	require.Eventually(t, func() bool {
		return m.TotalTaskCnt() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 3, rec.count("1:pc"))
	assert.Equal(t, int32(3), conn.activityCnt.Load())
}

func TestManager_Stop(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	m := NewManager(20*time.Millisecond, 3, rec.push)
	defer m.Close()

	pc := &fakeConn{id: "1:pc"}
	mobile := &fakeConn{id: "1:mobile"}
	msg := &message.ChatMsg{Id: 100}

	m.Start([]connector.Conn{pc, mobile}, msg)
	// 重复启动同一消息的任务会被忽略。
	m.Start([]connector.Conn{pc}, msg)
	assert.Equal(t, int64(2), m.TotalTaskCnt())

	m.Stop("1:pc", 100)
	m.Stop("1:pc", 100)
	assert.Equal(t, int64(1), m.TotalTaskCnt())

	require.Eventually(t, func() bool {
		return m.TotalTaskCnt() == 0
	}, time.Second, 5*time.Millisecond)

	assert.Zero(t, rec.count("1:pc"))
	assert.Equal(t, 3, rec.count("1:mobile"))
}

func TestManager_PushFailed(t *testing.T) {
	t.Parallel()

	rec := &recorder{err: errors.New("conn closed")}
	m := NewManager(5*time.Millisecond, 3, rec.push)
	defer m.Close()

	m.Start([]connector.Conn{&fakeConn{id: "1:pc"}}, &message.ChatMsg{Id: 1})

	require.Eventually(t, func() bool {
		return m.TotalTaskCnt() == 0
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, rec.count("1:pc"))
}

func TestManager_ClearByConn(t *testing.T) {
	t.Parallel()

	m := NewManager(time.Minute, 3, nil)
	defer m.Close()

	oldConn := &fakeConn{id: "1:pc"}
	newConn := &fakeConn{id: "1:pc"}

	m.Start([]connector.Conn{oldConn}, &message.ChatMsg{Id: 1})
	m.Start([]connector.Conn{oldConn}, &message.ChatMsg{Id: 2})
	m.Start([]connector.Conn{newConn}, &message.ChatMsg{Id: 3})
	assert.Equal(t, int64(3), m.TotalTaskCnt())

	m.ClearByConn(oldConn)
	assert.Equal(t, int64(1), m.TotalTaskCnt())
}

func TestManager_Close(t *testing.T) {
	t.Parallel()

	m := NewManager(time.Minute, 3, nil)

	m.Start([]connector.Conn{&fakeConn{id: "1:pc"}}, &message.ChatMsg{Id: 1})
	m.Close()
	m.Close()
	assert.Zero(t, m.TotalTaskCnt())

	// 关闭后不再接受新的任务。
	m.Start([]connector.Conn{&fakeConn{id: "1:pc"}}, &message.ChatMsg{Id: 2})
	assert.Zero(t, m.TotalTaskCnt())
}
