package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/idgen"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/JrMarcco/jit/bean/option"
	"go.uber.org/zap"
)

const (
	DefaultSyncInterval = 30 * time.Second
	DefaultSyncTimeout  = 5 * time.Second
)

// StatusSyncer 定期将本 connector 的在线用户同步给 transfer。
// 每次同步都要等待 transfer 的 ACK，同一时刻最多只有一个同步请求。
type StatusSyncer struct {
	coordinator StatusCoordinator
	upstream    UpstreamWriter
	connManager connector.ConnManager

	idGen idgen.Generator
	now   func() time.Time

	interval time.Duration
	timeout  time.Duration

	logger *zap.Logger
}

// Sync 发起一次 user status 同步并等待 ACK。
func (s *StatusSyncer) Sync(ctx context.Context) (*message.InternalMsg, error) {
	c, err := s.coordinator.CreateUserStatusMsgCollector(s.timeout)
	if err != nil {
		return nil, err
	}

	msg := &message.InternalMsg{
		Id:         s.idGen.NextID(),
		MsgType:    message.InternalMsgType_USER_STATUS,
		MsgBody:    joinUIDs(s.connManager.OnlineUsers()),
		From:       message.Module_CONNECTOR,
		Dest:       message.Module_TRANSFER,
		CreateTime: s.now().UnixMilli(),
	}

	if err = s.upstream.Write(msg); err != nil {
		// 请求没有发出，不会有 ACK，立即释放收集器。
		s.coordinator.CancelUserStatusCollector(c, err)
		return nil, err
	}

	ack, err := c.Wait(ctx)
	if err != nil {
		// 超时或 ctx 结束后不再等待 ACK，释放收集器。
		s.coordinator.CancelUserStatusCollector(c, err)
		return nil, fmt.Errorf("failed to wait user status ack of message [ %d ]: %w", msg.Id, err)
	}
	return ack, nil
}

// Run 按固定间隔同步，直到 ctx 结束。
func (s *StatusSyncer) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.syncOnce(ctx)
		}
	}
}

func (s *StatusSyncer) syncOnce(ctx context.Context) {
	ack, err := s.Sync(ctx)
	switch {
	case err == nil:
		s.logger.Debug(
			"[connector-status-syncer] user status synced",
			zap.Int64("ack_id", ack.Id),
		)
	case errors.Is(err, transfer.ErrPendingRequestInProgress), errors.Is(err, transfer.ErrNotConnected):
		s.logger.Info("[connector-status-syncer] skip user status sync", zap.Error(err))
	case ctx.Err() != nil:
	default:
		s.logger.Warn("[connector-status-syncer] failed to sync user status", zap.Error(err))
	}
}

func joinUIDs(uids []int64) string {
	slices.Sort(uids)

	strs := make([]string, 0, len(uids))
	for _, uid := range uids {
		strs = append(strs, strconv.FormatInt(uid, 10))
	}
	return strings.Join(strs, ",")
}

func SyncerWithInterval(interval time.Duration) option.Opt[StatusSyncer] {
	return func(s *StatusSyncer) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func SyncerWithTimeout(timeout time.Duration) option.Opt[StatusSyncer] {
	return func(s *StatusSyncer) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func SyncerWithIDGenerator(idGen idgen.Generator) option.Opt[StatusSyncer] {
	return func(s *StatusSyncer) {
		s.idGen = idGen
	}
}

func NewStatusSyncer(
	coordinator StatusCoordinator,
	upstream UpstreamWriter,
	connManager connector.ConnManager,
	logger *zap.Logger,
	opts ...option.Opt[StatusSyncer],
) *StatusSyncer {
	s := &StatusSyncer{
		coordinator: coordinator,
		upstream:    upstream,
		connManager: connManager,
		idGen:       idgen.NewMonotonicGenerator(),
		now:         time.Now,
		interval:    DefaultSyncInterval,
		timeout:     DefaultSyncTimeout,
		logger:      logger,
	}
	option.Apply(s, opts...)
	return s
}
