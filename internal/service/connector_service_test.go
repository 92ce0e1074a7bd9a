package service

import (
	"errors"
	"testing"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/codec"
	"github.com/JrMarcco/connector/internal/pkg/idgen"
	msghandler "github.com/JrMarcco/connector/internal/pkg/message"
	"github.com/JrMarcco/connector/internal/pkg/message/downstream"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/testing/protocmp"
)

type serviceFixture struct {
	svc        *ConnectorService
	manager    *fakeConnManager
	retransmit *retransmit.Manager
	producer   *fakeProducer
	upstream   *fakeUpstream
}

func newServiceFixture(t *testing.T, conns ...*fakeConn) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		manager:    newFakeConnManager(conns...),
		retransmit: retransmit.NewManager(time.Minute, 3, nil),
		producer:   &fakeProducer{},
		upstream:   &fakeUpstream{},
	}
	t.Cleanup(f.retransmit.Close)

	pushFunc := msghandler.DefaultMessagePushFunc(codec.NewProtoCodec(), zap.NewNop())
	f.svc = NewConnectorService(
		f.manager,
		downstream.NewChatMsgHandler(pushFunc, f.retransmit, zap.NewNop()),
		f.retransmit,
		f.producer,
		f.upstream,
		zap.NewNop(),
		ServiceWithConnectorID("c-1"),
		ServiceWithIDGenerator(idgen.GeneratorFunc(func() int64 { return 9001 })),
		ServiceWithClock(func() time.Time { return time.UnixMilli(1700000000000) }),
	)
	return f
}

func chatFromTransfer() *message.ChatMsg {
	return &message.ChatMsg{
		Id:         100,
		FromId:     7,
		DestId:     42,
		MsgType:    message.ChatMsgType_TEXT,
		DestType:   message.DestType_SINGLE,
		Body:       []byte("hello"),
		CreateTime: 1700000000000,
		Version:    1,
		From:       message.Module_TRANSFER,
		Dest:       message.Module_CONNECTOR,
	}
}

func TestConnectorService_DoChatDelivered(t *testing.T) {
	t.Parallel()

	pc := newFakeConn(42, session.DevicePC)
	mobile := newFakeConn(42, session.DeviceMobile)
	f := newServiceFixture(t, pc, mobile)

	msg := chatFromTransfer()
	require.NoError(t, f.svc.DoChat(msg))

	want := proto.Clone(msg).(*message.ChatMsg)
	want.From, want.Dest = message.Module_CONNECTOR, message.Module_CLIENT

	cc := codec.NewProtoCodec()
	for _, conn := range []*fakeConn{pc, mobile} {
		payloads := conn.payloads()
		require.Len(t, payloads, 1)

		got, err := cc.Unmarshal(payloads[0])
		require.NoError(t, err)
		assert.Empty(t, cmp.Diff(want, got, protocmp.Transform()))
	}

	// 原消息不会被修改。
	assert.Equal(t, message.Module_TRANSFER, msg.From)

	assert.Equal(t, int64(2), f.retransmit.TotalTaskCnt())
	assert.Empty(t, f.producer.msgs)
}

func TestConnectorService_DoChatOffline(t *testing.T) {
	t.Parallel()

	failed := newFakeConn(42, session.DevicePC)
	failed.sendErr = errSendFailed

	tcs := []struct {
		name  string
		conns []*fakeConn
	}{
		{name: "no connection"},
		{name: "all connections failed", conns: []*fakeConn{failed}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t, tc.conns...)

			msg := chatFromTransfer()
			require.NoError(t, f.svc.DoChat(msg))

			require.Len(t, f.producer.msgs, 1)
			produced := f.producer.msgs[0]
			assert.Equal(t, DefaultOfflineTopic, produced.Topic)
			assert.Equal(t, []byte("42"), produced.Key)
			assert.Equal(t, "c-1", produced.Headers[headerConnectorID])

			decoded, err := message.Decode(produced.Val)
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(msg, decoded, protocmp.Transform()))

			assert.Zero(t, f.retransmit.TotalTaskCnt())
		})
	}
}

func TestConnectorService_DoChatProduceFailed(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	produceErr := errors.New("broker unavailable")
	f.producer.err = produceErr

	assert.ErrorIs(t, f.svc.DoChat(chatFromTransfer()), produceErr)
}

func TestConnectorService_ForceOffline(t *testing.T) {
	t.Parallel()

	pc := newFakeConn(42, session.DevicePC)
	mobile := newFakeConn(42, session.DeviceMobile)
	other := newFakeConn(43, session.DevicePC)
	f := newServiceFixture(t, pc, mobile, other)

	require.NoError(t, f.svc.DoChat(chatFromTransfer()))
	require.Equal(t, int64(2), f.retransmit.TotalTaskCnt())

	require.NoError(t, f.svc.ForceOffline(42))

	assert.True(t, pc.sess.destroyed)
	assert.True(t, mobile.sess.destroyed)
	assert.False(t, other.sess.destroyed)
	assert.Zero(t, f.retransmit.TotalTaskCnt())

	_, ok := f.manager.FindUserConn(42)
	assert.False(t, ok)

	// 用户已经没有连接。
	assert.NoError(t, f.svc.ForceOffline(42))
}

func TestConnectorService_Forward(t *testing.T) {
	t.Parallel()

	user := session.User{UID: 42, Device: session.DevicePC}

	tcs := []struct {
		name string
		msg  message.Message
		want message.Message
	}{
		{
			name: "chat",
			msg: &message.ChatMsg{
				FromId: 1, // 客户端填写的发送者会被覆盖
				DestId: 43,
				Body:   []byte("hi"),
				From:   message.Module_CLIENT,
				Dest:   message.Module_CONNECTOR,
			},
			want: &message.ChatMsg{
				Id:         9001,
				FromId:     42,
				DestId:     43,
				Body:       []byte("hi"),
				CreateTime: 1700000000000,
				From:       message.Module_CONNECTOR,
				Dest:       message.Module_TRANSFER,
			},
		},
		{
			name: "ack keeps client id",
			msg: &message.AckMsg{
				Id:         77,
				DestId:     7,
				MsgType:    message.AckMsgType_READ,
				AckMsgId:   100,
				CreateTime: 1600000000000,
				From:       message.Module_CLIENT,
				Dest:       message.Module_CONNECTOR,
			},
			want: &message.AckMsg{
				Id:         77,
				FromId:     42,
				DestId:     7,
				MsgType:    message.AckMsgType_READ,
				AckMsgId:   100,
				CreateTime: 1600000000000,
				From:       message.Module_CONNECTOR,
				Dest:       message.Module_TRANSFER,
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newServiceFixture(t)
			require.NoError(t, f.svc.Forward(user, tc.msg))

			written := f.upstream.written()
			require.Len(t, written, 1)
			assert.Empty(t, cmp.Diff(tc.want, written[0], protocmp.Transform()))
		})
	}
}

func TestConnectorService_ForwardRejected(t *testing.T) {
	t.Parallel()

	user := session.User{UID: 42, Device: session.DevicePC}

	f := newServiceFixture(t)
	err := f.svc.Forward(user, &message.InternalMsg{MsgType: message.InternalMsgType_GREET})
	assert.ErrorIs(t, err, ErrUnsupportedMessage)

	f.upstream.err = transfer.ErrNotConnected
	err = f.svc.Forward(user, &message.ChatMsg{DestId: 43})
	assert.ErrorIs(t, err, transfer.ErrNotConnected)
}

func TestConnectorService_Ack(t *testing.T) {
	t.Parallel()

	pc := newFakeConn(42, session.DevicePC)
	f := newServiceFixture(t, pc)

	require.NoError(t, f.svc.DoChat(chatFromTransfer()))
	require.Equal(t, int64(1), f.retransmit.TotalTaskCnt())

	// 已读确认不停止重传。
	require.NoError(t, f.svc.Ack(pc, &message.AckMsg{MsgType: message.AckMsgType_READ, AckMsgId: 100}))
	assert.Equal(t, int64(1), f.retransmit.TotalTaskCnt())

	require.NoError(t, f.svc.Ack(pc, &message.AckMsg{MsgType: message.AckMsgType_DELIVERED, AckMsgId: 100}))
	assert.Zero(t, f.retransmit.TotalTaskCnt())

	assert.Len(t, f.upstream.written(), 2)
}
