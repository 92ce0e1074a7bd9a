package service

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/internal/pkg/xmq"
	"github.com/JrMarcco/connector/pkg/message"
)

var errSendFailed = errors.New("send failed")

type fakeSession struct {
	user      session.User
	destroyed bool
}

func (s *fakeSession) User() session.User { return s.user }

func (s *fakeSession) Set(context.Context, string, string) error { return nil }

func (s *fakeSession) Get(context.Context, string) (string, error) { return "", nil }

func (s *fakeSession) Destroy(context.Context) error {
	s.destroyed = true
	return nil
}

type fakeConn struct {
	id      string
	sess    *fakeSession
	sendErr error

	mu   sync.Mutex
	sent [][]byte
}

func newFakeConn(uid int64, device session.Device) *fakeConn {
	user := session.User{UID: uid, Device: device}
	return &fakeConn{id: user.ConnID(), sess: &fakeSession{user: user}}
}

func (c *fakeConn) ID() string { return c.id }
func (c *fakeConn) Session() session.Session { return c.sess }
func (c *fakeConn) Receive() <-chan []byte { return nil }
func (c *fakeConn) UpdateActivityTime() {}
func (c *fakeConn) Closed() <-chan struct{} { return nil }
func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendErr != nil {
		return c.sendErr
	}
	c.sent = append(c.sent, payload)
	return nil
}

func (c *fakeConn) payloads() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([][]byte(nil), c.sent...)
}

var _ connector.ConnManager = (*fakeConnManager)(nil)

type fakeConnManager struct {
	mu    sync.Mutex
	conns map[int64][]connector.Conn
}

func newFakeConnManager(conns ...*fakeConn) *fakeConnManager {
	m := &fakeConnManager{conns: make(map[int64][]connector.Conn)}
	for _, c := range conns {
		uid := c.sess.user.UID
		m.conns[uid] = append(m.conns[uid], c)
	}
	return m
}

func (m *fakeConnManager) NewConn(context.Context, net.Conn, session.Session, *compression.State) (connector.Conn, error) {
	return nil, errors.New("not implemented")
}

func (m *fakeConnManager) RemoveConn(session.User) bool { return false }

func (m *fakeConnManager) ReleaseConn(connector.Conn) bool { return false }

func (m *fakeConnManager) RemoveUserConn(uid int64) []connector.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns := m.conns[uid]
	delete(m.conns, uid)
	return conns
}

func (m *fakeConnManager) FindConn(session.User) (connector.Conn, bool) { return nil, false }

func (m *fakeConnManager) FindUserConn(uid int64) ([]connector.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conns, ok := m.conns[uid]
	return conns, ok
}

func (m *fakeConnManager) OnlineUsers() []int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	uids := make([]int64, 0, len(m.conns))
	for uid := range m.conns {
		uids = append(uids, uid)
	}
	return uids
}

type fakeProducer struct {
	mu   sync.Mutex
	msgs []*xmq.Message
	err  error
}

func (p *fakeProducer) Produce(_ context.Context, msg *xmq.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msg)
	return nil
}

type fakeUpstream struct {
	mu      sync.Mutex
	msgs    []message.Message
	err     error
	onWrite func(msg message.Message)
}

func (u *fakeUpstream) Write(msg message.Message) error {
	u.mu.Lock()
	if u.err != nil {
		u.mu.Unlock()
		return u.err
	}
	u.msgs = append(u.msgs, msg)
	onWrite := u.onWrite
	u.mu.Unlock()

	if onWrite != nil {
		onWrite(msg)
	}
	return nil
}

func (u *fakeUpstream) written() []message.Message {
	u.mu.Lock()
	defer u.mu.Unlock()

	return append([]message.Message(nil), u.msgs...)
}
