package upstream

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/cenkalti/backoff/v5"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordService struct {
	mu           sync.Mutex
	chats        []*message.ChatMsg
	forceOffline chan int64
}

func (s *recordService) DoChat(msg *message.ChatMsg) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.chats = append(s.chats, msg)
	return nil
}

func (s *recordService) ForceOffline(userID int64) error {
	s.forceOffline <- userID
	return nil
}

func newPipeDial(t *testing.T) (DialFunc, net.Conn) {
	t.Helper()

	local, remote := net.Pipe()
	t.Cleanup(func() {
		_ = remote.Close()
	})

	return func(context.Context) (net.Conn, bool, error) {
		return local, false, nil
	}, remote
}

func writeToConnector(t *testing.T, remote net.Conn, msg message.Message) {
	t.Helper()

	frame, err := message.Encode(msg)
	require.NoError(t, err)
	require.NoError(t, wsutil.WriteServerMessage(remote, ws.OpBinary, frame))
}

func readFromConnector(t *testing.T, remote net.Conn) message.Message {
	t.Helper()

	payload, op, err := wsutil.ReadClientData(remote)
	require.NoError(t, err)
	require.Equal(t, ws.OpBinary, op)

	msg, err := message.Decode(payload)
	require.NoError(t, err)
	return msg
}

func TestClient_Run(t *testing.T) {
	slot := &transfer.LinkSlot{}
	svc := &recordService{forceOffline: make(chan int64, 1)}
	logger := zaptest.NewLogger(t)

	handler := transfer.NewHandler(
		svc, logger,
		transfer.HandlerWithConnectorID("c-7"),
		transfer.HandlerWithLinkSlot(slot),
	)

	dial, remote := newPipeDial(t)
	client, err := NewClient(Config{Addr: "ws://transfer.test"}, handler, logger, ClientWithDialFunc(dial))
	require.NoError(t, err)

	runErr := make(chan error, 1)
	go func() {
		runErr <- client.Run(t.Context())
	}()

	// 第一帧一定是 GREET。
	greet, ok := readFromConnector(t, remote).(*message.InternalMsg)
	require.True(t, ok)
	assert.Equal(t, message.InternalMsgType_GREET, greet.MsgType)
	assert.Equal(t, "c-7", greet.MsgBody)
	assert.Equal(t, message.Module_CONNECTOR, greet.From)
	assert.Equal(t, message.Module_TRANSFER, greet.Dest)

	// 无法解码的帧被丢弃，连接继续可用。
	require.NoError(t, wsutil.WriteServerMessage(remote, ws.OpBinary, []byte{0x7f}))

	writeToConnector(t, remote, &message.InternalMsg{
		Id:      2,
		MsgType: message.InternalMsgType_FORCE_OFFLINE,
		MsgBody: "1001",
		From:    message.Module_TRANSFER,
		Dest:    message.Module_CONNECTOR,
	})

	select {
	case uid := <-svc.forceOffline:
		assert.EqualValues(t, 1001, uid)
	case <-time.After(time.Second):
		t.Fatal("force offline not dispatched")
	}

	link, ok := slot.Load()
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(link.ID(), "c-7->"))
	require.NoError(t, slot.Write(&message.InternalMsg{
		MsgType: message.InternalMsgType_USER_STATUS,
		MsgBody: "1,2",
		From:    message.Module_CONNECTOR,
		Dest:    message.Module_TRANSFER,
	}))
	status, ok := readFromConnector(t, remote).(*message.InternalMsg)
	require.True(t, ok)
	assert.Equal(t, "1,2", status.MsgBody)

	// transfer 关闭连接。
	require.NoError(t, wsutil.WriteServerMessage(remote, ws.OpClose, ws.NewCloseFrameBody(ws.StatusNormalClosure, "")))
	go func() {
		for {
			if _, _, err := wsutil.ReadClientData(remote); err != nil {
				return
			}
		}
	}()

	select {
	case err = <-runErr:
		assert.ErrorIs(t, err, ErrConnClosed)
	case <-time.After(time.Second):
		t.Fatal("client should stop after transfer closed the link")
	}

	<-link.Closed()
	_, ok = slot.Load()
	assert.False(t, ok)
	assert.ErrorIs(t, link.Write(&message.InternalMsg{}), ErrConnClosed)
}

func TestClient_RunCanceled(t *testing.T) {
	slot := &transfer.LinkSlot{}
	logger := zaptest.NewLogger(t)
	handler := transfer.NewHandler(&recordService{}, logger, transfer.HandlerWithLinkSlot(slot))

	dial, remote := newPipeDial(t)
	client, err := NewClient(Config{Addr: "ws://transfer.test"}, handler, logger, ClientWithDialFunc(dial))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	runErr := make(chan error, 1)
	go func() {
		runErr <- client.Run(ctx)
	}()

	_ = readFromConnector(t, remote)
	cancel()

	select {
	case err = <-runErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("client should stop after ctx canceled")
	}

	_, ok := slot.Load()
	assert.False(t, ok)
}

func TestClient_DialRetry(t *testing.T) {
	dialErr := errors.New("connection refused")

	var attempts int
	client, err := NewClient(
		Config{Addr: "ws://transfer.test", MaxDialAttempts: 3},
		transfer.NewHandler(&recordService{}, zaptest.NewLogger(t), transfer.HandlerWithLinkSlot(&transfer.LinkSlot{})),
		zaptest.NewLogger(t),
		ClientWithDialFunc(func(context.Context) (net.Conn, bool, error) {
			attempts++
			return nil, false, dialErr
		}),
		ClientWithBackOff(func() backoff.BackOff {
			return &backoff.ZeroBackOff{}
		}),
	)
	require.NoError(t, err)

	err = client.Run(t.Context())
	assert.ErrorIs(t, err, dialErr)
	assert.Equal(t, 3, attempts)
}

func TestNewClient_InvalidConfig(t *testing.T) {
	_, err := NewClient(Config{}, nil, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
