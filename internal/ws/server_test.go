package ws

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/auth"
	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
	wsc "github.com/JrMarcco/connector/internal/ws/conn"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordHandler struct {
	mu           sync.Mutex
	connected    []string
	disconnected []string

	received chan []byte
}

func (h *recordHandler) OnConnect(conn connector.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connected = append(h.connected, conn.ID())
	return nil
}

func (h *recordHandler) OnDisconnect(conn connector.Conn) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.disconnected = append(h.disconnected, conn.ID())
	return nil
}

func (h *recordHandler) OnReceive(conn connector.Conn, payload []byte) error {
	h.received <- payload

	// 原样回写。
	return conn.Send(payload)
}

func (h *recordHandler) disconnectedIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return append([]string(nil), h.disconnected...)
}

func newTestServer(t *testing.T) (*Server, *wsc.ConnManager, *recordHandler) {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Network = "tcp"
	cfg.Host = "127.0.0.1"
	cfg.Port = 0

	connManager := wsc.NewConnManager(zap.NewNop())
	handler := &recordHandler{received: make(chan []byte, 8)}
	upgrader := NewUpgrader(
		&fakeBuilder{},
		auth.NewHmacJwtValidator(testSecret, testIssuer),
		cfg.Compression,
		time.Second,
		zap.NewNop(),
	)

	svr, err := NewServer(cfg, upgrader, connManager, handler, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, svr.Start())
	return svr, connManager, handler
}

func TestServer_HandleConn(t *testing.T) {
	t.Parallel()

	svr, connManager, handler := newTestServer(t)

	url := fmt.Sprintf("ws://%s/?token=%s&device=pc", svr.Addr().String(), signToken(t, 1001))
	conn, _, _, err := ws.Dialer{Timeout: time.Second}.Dial(t.Context(), url)
	require.NoError(t, err)

	require.NoError(t, wsutil.WriteClientBinary(conn, []byte("ping")))

	select {
	case payload := <-handler.received:
		assert.Equal(t, []byte("ping"), payload)
	case <-time.After(time.Second):
		t.Fatal("server did not receive client message")
	}

	echo, err := wsutil.ReadServerBinary(conn)
	require.NoError(t, err)
	assert.Equal(t, []byte("ping"), echo)

	_, ok := connManager.FindConn(session.User{UID: 1001, Device: session.DevicePC})
	assert.True(t, ok)

	// 客户端断开后连接被释放。
	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		_, found := connManager.FindConn(session.User{UID: 1001, Device: session.DevicePC})
		return !found && len(handler.disconnectedIDs()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, svr.GracefulShutdown())
}

func TestServer_GracefulShutdownClosesConn(t *testing.T) {
	t.Parallel()

	svr, connManager, handler := newTestServer(t)

	url := fmt.Sprintf("ws://%s/?token=%s&device=mobile", svr.Addr().String(), signToken(t, 1002))
	conn, _, _, err := ws.Dialer{Timeout: time.Second}.Dial(t.Context(), url)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	assert.Eventually(t, func() bool {
		_, found := connManager.FindConn(session.User{UID: 1002, Device: session.DeviceMobile})
		return found
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, svr.GracefulShutdown())

	assert.Equal(t, []string{"1002:mobile"}, handler.disconnectedIDs())
	assert.Empty(t, connManager.OnlineUsers())

	// 服务端关闭后客户端读到 EOF。
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	_, err = wsutil.ReadServerBinary(conn)
	assert.Error(t, err)
}

func TestServer_GracefulShutdownNotStarted(t *testing.T) {
	t.Parallel()

	svr, err := NewServer(DefaultConfig(), nil, nil, nil, zap.NewNop())
	require.NoError(t, err)
	assert.ErrorIs(t, svr.GracefulShutdown(), ErrServerNotStarted)
}

// gatedListener 的 Accept 阻塞到 release 关闭后才返回连接。
type gatedListener struct {
	accepting chan struct{}
	release   chan struct{}
	conn      net.Conn
	once      sync.Once
}

func (l *gatedListener) Accept() (net.Conn, error) {
	l.once.Do(func() { close(l.accepting) })
	<-l.release
	return l.conn, nil
}

func (l *gatedListener) Close() error { return nil }

func (l *gatedListener) Addr() net.Addr { return l.conn.LocalAddr() }

type countingUpgrader struct {
	calls atomic.Int32
}

func (u *countingUpgrader) Name() string { return "counting" }

func (u *countingUpgrader) Upgrade(net.Conn) (session.Session, *compression.State, error) {
	u.calls.Add(1)
	return nil, nil, errors.New("unexpected upgrade")
}

func TestServer_AcceptAfterShutdown(t *testing.T) {
	t.Parallel()

	serverSide, clientSide := net.Pipe()
	defer func() { _ = clientSide.Close() }()

	ln := &gatedListener{
		accepting: make(chan struct{}),
		release:   make(chan struct{}),
		conn:      serverSide,
	}
	upgrader := &countingUpgrader{}

	svr, err := NewServer(DefaultConfig(), upgrader, wsc.NewConnManager(zap.NewNop()), &recordHandler{}, zap.NewNop())
	require.NoError(t, err)
	svr.listener = ln

	done := make(chan struct{})
	go func() {
		defer close(done)
		svr.acceptConn()
	}()

	<-ln.accepting
	require.NoError(t, svr.Shutdown())

	// 停止接收之后 Accept 才返回连接。
	close(ln.release)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("accept loop should stop after shutdown")
	}

	// 连接直接被关闭，不会进入处理流程。
	_, err = clientSide.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
	assert.Zero(t, upgrader.calls.Load())

	require.NoError(t, svr.GracefulShutdown())
}
