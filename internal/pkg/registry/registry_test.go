package registry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeKV struct {
	clientv3.KV

	mu   sync.Mutex
	vals map[string]string
	err  error
}

func (kv *fakeKV) Put(_ context.Context, key, val string, _ ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()

	if kv.err != nil {
		return nil, kv.err
	}
	if kv.vals == nil {
		kv.vals = make(map[string]string)
	}
	kv.vals[key] = val
	return &clientv3.PutResponse{}, nil
}

type fakeLease struct {
	clientv3.Lease

	mu      sync.Mutex
	granted []clientv3.LeaseID
	revoked []clientv3.LeaseID
	kaCh    chan *clientv3.LeaseKeepAliveResponse
}

func (l *fakeLease) Grant(_ context.Context, ttl int64) (*clientv3.LeaseGrantResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := clientv3.LeaseID(len(l.granted) + 1)
	l.granted = append(l.granted, id)
	return &clientv3.LeaseGrantResponse{ID: id, TTL: ttl}, nil
}

func (l *fakeLease) KeepAlive(_ context.Context, _ clientv3.LeaseID) (<-chan *clientv3.LeaseKeepAliveResponse, error) {
	return l.kaCh, nil
}

func (l *fakeLease) Revoke(_ context.Context, id clientv3.LeaseID) (*clientv3.LeaseRevokeResponse, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.revoked = append(l.revoked, id)
	return &clientv3.LeaseRevokeResponse{}, nil
}

func TestRegistry_RegisterAndDeregister(t *testing.T) {
	t.Parallel()

	kv := &fakeKV{}
	lease := &fakeLease{kaCh: make(chan *clientv3.LeaseKeepAliveResponse, 1)}
	r := NewRegistry(kv, lease, "", "c-1", "10.0.0.1:8080", 0, zap.NewNop())

	assert.Equal(t, "/im/connectors/c-1", r.Key())
	assert.ErrorIs(t, r.Deregister(t.Context()), ErrNotRegistered)

	require.NoError(t, r.Register(t.Context()))
	assert.Equal(t, "10.0.0.1:8080", kv.vals["/im/connectors/c-1"])

	lease.kaCh <- &clientv3.LeaseKeepAliveResponse{ID: 1, TTL: DefaultTTL}

	require.NoError(t, r.Deregister(t.Context()))
	assert.Equal(t, []clientv3.LeaseID{1}, lease.revoked)

	assert.ErrorIs(t, r.Deregister(t.Context()), ErrNotRegistered)
}

func TestRegistry_KeepAliveChannelClosed(t *testing.T) {
	t.Parallel()

	lease := &fakeLease{kaCh: make(chan *clientv3.LeaseKeepAliveResponse)}
	r := NewRegistry(&fakeKV{}, lease, "/test/connectors", "c-2", "addr", 5, zap.NewNop())

	require.NoError(t, r.Register(t.Context()))
	close(lease.kaCh)

	require.NoError(t, r.Deregister(t.Context()))
}

func TestRegistry_PutFailed(t *testing.T) {
	t.Parallel()

	putErr := errors.New("etcd unavailable")
	r := NewRegistry(&fakeKV{err: putErr}, &fakeLease{}, "", "c-3", "addr", 5, zap.NewNop())

	assert.ErrorIs(t, r.Register(t.Context()), putErr)
	assert.ErrorIs(t, r.Deregister(t.Context()), ErrNotRegistered)
}
