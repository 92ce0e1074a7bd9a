package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/idgen"
	"github.com/JrMarcco/connector/internal/pkg/message/downstream"
	"github.com/JrMarcco/connector/internal/pkg/retransmit"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/internal/pkg/xmq"
	"github.com/JrMarcco/connector/internal/pkg/xmq/produce"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/JrMarcco/jit/bean/option"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

const (
	DefaultOfflineTopic   = "connector_offline_chat"
	DefaultRequestTimeout = 3 * time.Second

	headerConnectorID = "connector_id"
)

var _ transfer.ConnectorService = (*ConnectorService)(nil)

// ConnectorService 处理 transfer 下发到本 connector 的消息，同时负责将客户端消息转发给 transfer。
type ConnectorService struct {
	connectorID string

	connManager connector.ConnManager
	dMsgHandler downstream.DMsgHandler
	retransmit  *retransmit.Manager

	producer     produce.Producer
	offlineTopic string

	upstream UpstreamWriter
	idGen    idgen.Generator
	now      func() time.Time

	requestTimeout time.Duration

	logger *zap.Logger
}

// DoChat 将聊天消息投递给目标用户在本 connector 上的全部连接。
// 投递成功的连接由 DMsgHandler 开启重传，直到客户端确认。
// 用户没有可用连接时，消息写入离线 topic。
func (s *ConnectorService) DoChat(msg *message.ChatMsg) error {
	downstream := proto.Clone(msg).(*message.ChatMsg)
	downstream.From = message.Module_CONNECTOR
	downstream.Dest = message.Module_CLIENT

	if conns, ok := s.connManager.FindUserConn(msg.DestId); ok {
		if delivered := s.dMsgHandler.Handle(conns, downstream); len(delivered) > 0 {
			return nil
		}
	}

	return s.produceOffline(msg)
}

func (s *ConnectorService) produceOffline(msg *message.ChatMsg) error {
	val, err := message.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode offline chat message: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	err = s.producer.Produce(ctx, &xmq.Message{
		Headers: xmq.Headers{headerConnectorID: s.connectorID},
		Topic:   s.offlineTopic,
		Key:     []byte(strconv.FormatInt(msg.DestId, 10)),
		Val:     val,
	})
	if err != nil {
		s.logger.Error(
			"[connector-service] failed to produce offline chat message",
			zap.Int64("message_id", msg.Id),
			zap.Int64("dest_id", msg.DestId),
			zap.Error(err),
		)
		return err
	}

	s.logger.Debug(
		"[connector-service] user offline, chat message produced",
		zap.Int64("message_id", msg.Id),
		zap.Int64("dest_id", msg.DestId),
	)
	return nil
}

// ForceOffline 关闭用户在本 connector 上的全部连接，并删除对应的会话。
func (s *ConnectorService) ForceOffline(userID int64) error {
	conns := s.connManager.RemoveUserConn(userID)
	if len(conns) == 0 {
		s.logger.Info(
			"[connector-service] force offline user without connection",
			zap.Int64("user_id", userID),
		)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.requestTimeout)
	defer cancel()

	var err error
	for _, conn := range conns {
		s.retransmit.ClearByConn(conn)
		err = multierr.Append(err, conn.Session().Destroy(ctx))
	}

	s.logger.Info(
		"[connector-service] force offline user",
		zap.Int64("user_id", userID),
		zap.Int("conn_cnt", len(conns)),
		zap.Error(err),
	)
	return err
}

// Forward 将客户端发送的消息转发给 transfer。
// 只有聊天消息和 ACK 可以转发，来源与发送者由 connector 重新标记。
func (s *ConnectorService) Forward(user session.User, msg message.Message) error {
	var upstream message.Message
	switch m := msg.(type) {
	case *message.ChatMsg:
		cp := proto.Clone(m).(*message.ChatMsg)
		cp.Id = s.ensureID(cp.Id)
		cp.FromId = user.UID
		cp.From, cp.Dest = message.Module_CONNECTOR, message.Module_TRANSFER
		if cp.CreateTime == 0 {
			cp.CreateTime = s.now().UnixMilli()
		}
		upstream = cp
	case *message.AckMsg:
		cp := proto.Clone(m).(*message.AckMsg)
		cp.Id = s.ensureID(cp.Id)
		cp.FromId = user.UID
		cp.From, cp.Dest = message.Module_CONNECTOR, message.Module_TRANSFER
		if cp.CreateTime == 0 {
			cp.CreateTime = s.now().UnixMilli()
		}
		upstream = cp
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedMessage, msg.Kind())
	}

	if err := s.upstream.Write(upstream); err != nil {
		return fmt.Errorf("failed to forward %s message of user [ %d ]: %w", msg.Kind(), user.UID, err)
	}
	return nil
}

func (s *ConnectorService) ensureID(id int64) int64 {
	if id != 0 {
		return id
	}
	return s.idGen.NextID()
}

// Ack 处理客户端对下发消息的确认：停止重传并将确认转发给 transfer。
func (s *ConnectorService) Ack(conn connector.Conn, msg *message.AckMsg) error {
	if msg.MsgType == message.AckMsgType_DELIVERED {
		s.retransmit.Stop(conn.ID(), msg.AckMsgId)
	}
	return s.Forward(conn.Session().User(), msg)
}

func ServiceWithConnectorID(connectorID string) option.Opt[ConnectorService] {
	return func(s *ConnectorService) {
		s.connectorID = connectorID
	}
}

func ServiceWithOfflineTopic(topic string) option.Opt[ConnectorService] {
	return func(s *ConnectorService) {
		if topic != "" {
			s.offlineTopic = topic
		}
	}
}

func ServiceWithRequestTimeout(timeout time.Duration) option.Opt[ConnectorService] {
	return func(s *ConnectorService) {
		if timeout > 0 {
			s.requestTimeout = timeout
		}
	}
}

func ServiceWithIDGenerator(idGen idgen.Generator) option.Opt[ConnectorService] {
	return func(s *ConnectorService) {
		s.idGen = idGen
	}
}

func ServiceWithClock(now func() time.Time) option.Opt[ConnectorService] {
	return func(s *ConnectorService) {
		s.now = now
	}
}

func NewConnectorService(
	connManager connector.ConnManager,
	dMsgHandler downstream.DMsgHandler,
	retransmitManager *retransmit.Manager,
	producer produce.Producer,
	upstream UpstreamWriter,
	logger *zap.Logger,
	opts ...option.Opt[ConnectorService],
) *ConnectorService {
	s := &ConnectorService{
		connectorID:    idgen.ConnectorID(),
		connManager:    connManager,
		dMsgHandler:    dMsgHandler,
		retransmit:     retransmitManager,
		producer:       producer,
		offlineTopic:   DefaultOfflineTopic,
		upstream:       upstream,
		idGen:          idgen.NewMonotonicGenerator(),
		now:            time.Now,
		requestTimeout: DefaultRequestTimeout,
		logger:         logger,
	}
	option.Apply(s, opts...)
	return s
}
