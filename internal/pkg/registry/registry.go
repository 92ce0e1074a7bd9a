// Package registry 将 connector 注册到 etcd，供 transfer 发现。
package registry

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"

	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/zap"
)

const (
	DefaultPrefix = "/im/connectors"
	DefaultTTL    = 10 // 秒
)

var ErrNotRegistered = errors.New("connector not registered")

// Registry 负责单个 connector 实例的注册。
// 注册信息挂在 lease 上，connector 异常退出时 lease 过期，注册信息自动删除。
type Registry struct {
	kv    clientv3.KV
	lease clientv3.Lease

	key string
	val string
	ttl int64

	mu            sync.Mutex
	leaseID       clientv3.LeaseID
	stopKeepAlive context.CancelFunc
	keepAliveDone chan struct{}

	logger *zap.Logger
}

// Key 返回注册的 etcd key。
func (r *Registry) Key() string {
	return r.key
}

// Register 创建 lease 并写入注册信息，之后在后台持续续约。
func (r *Registry) Register(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	grant, err := r.lease.Grant(ctx, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to grant etcd lease: %w", err)
	}

	if _, err = r.kv.Put(ctx, r.key, r.val, clientv3.WithLease(grant.ID)); err != nil {
		return fmt.Errorf("failed to put connector key [ %s ]: %w", r.key, err)
	}

	// keepalive 的生命周期与 Register 的 ctx 无关，由 Deregister 停止。
	kaCtx, cancel := context.WithCancel(context.Background())
	kaCh, err := r.lease.KeepAlive(kaCtx, grant.ID)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to keep alive etcd lease: %w", err)
	}

	r.leaseID = grant.ID
	r.stopKeepAlive = cancel
	r.keepAliveDone = make(chan struct{})

	go r.drainKeepAlive(kaCtx, kaCh, r.keepAliveDone)

	r.logger.Info(
		"[connector-registry] successfully registered connector",
		zap.String("key", r.key),
		zap.String("value", r.val),
		zap.Int64("lease_id", int64(grant.ID)),
		zap.Int64("ttl", r.ttl),
	)
	return nil
}

func (r *Registry) drainKeepAlive(ctx context.Context, kaCh <-chan *clientv3.LeaseKeepAliveResponse, done chan struct{}) {
	defer close(done)

	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-kaCh:
			if !ok {
				if ctx.Err() == nil {
					r.logger.Error(
						"[connector-registry] lease keepalive channel closed, connector registration will expire",
						zap.String("key", r.key),
					)
				}
				return
			}
			r.logger.Debug(
				"[connector-registry] lease keepalive",
				zap.Int64("lease_id", int64(resp.ID)),
				zap.Int64("ttl", resp.TTL),
			)
		}
	}
}

// Deregister 停止续约并撤销 lease，注册信息随 lease 一起删除。
func (r *Registry) Deregister(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopKeepAlive == nil {
		return ErrNotRegistered
	}

	r.stopKeepAlive()
	<-r.keepAliveDone
	r.stopKeepAlive = nil

	if _, err := r.lease.Revoke(ctx, r.leaseID); err != nil {
		return fmt.Errorf("failed to revoke etcd lease: %w", err)
	}

	r.logger.Info(
		"[connector-registry] successfully deregistered connector",
		zap.String("key", r.key),
	)
	return nil
}

func NewRegistry(kv clientv3.KV, lease clientv3.Lease, prefix string, connectorID string, addr string, ttl int64, logger *zap.Logger) *Registry {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Registry{
		kv:     kv,
		lease:  lease,
		key:    path.Join(prefix, connectorID),
		val:    addr,
		ttl:    ttl,
		logger: logger,
	}
}
