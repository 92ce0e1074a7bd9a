package conn

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/jit/bean/option"
	"github.com/JrMarcco/jit/xsync"
	"go.uber.org/zap"
)

const (
	// 默认读写超时时间
	DefaultReadTimeout  = 15 * time.Second
	DefaultWriteTimeout = 10 * time.Second

	// 默认缓冲大小
	DefaultSendBufferSize    = 256
	DefaultReceiveBufferSize = 256

	// 默认重试策略
	DefaultInitRetryInterval = 1 * time.Second
	DefaultMaxRetryInterval  = 5 * time.Second
	DefaultMaxRetryCount     = 3

	DefaultIdleTimeout = 5 * time.Minute
	DefaultRateLimit   = 10
)

// DeviceConns 管理单个用户的多设备连接。
// 这里不直接使用 sync.Map 是因为一个用户最多只会有 3 个设备连接。
// 相比起直接使用 sync.Map 性能更好且内存占用更低。
type DeviceConns struct {
	mu    sync.RWMutex
	conns map[session.Device]connector.Conn
}

func newDeviceConns() *DeviceConns {
	return &DeviceConns{
		// 一个用户最多只会有 3 个设备连接。
		conns: make(map[session.Device]connector.Conn, 3),
	}
}

// add 保存设备连接，返回被替换的旧连接。
func (dc *DeviceConns) add(device session.Device, conn connector.Conn) (connector.Conn, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	old, ok := dc.conns[device]
	dc.conns[device] = conn
	return old, ok
}

// remove 移除设备连接，同时返回移除后剩余的连接数。
func (dc *DeviceConns) remove(device session.Device) (connector.Conn, int, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	conn, ok := dc.conns[device]
	if ok {
		delete(dc.conns, device)
	}
	return conn, len(dc.conns), ok
}

// compareAndRemove 只有当前保存的连接就是 conn 时才移除。
func (dc *DeviceConns) compareAndRemove(device session.Device, conn connector.Conn) (int, bool) {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	current, ok := dc.conns[device]
	if !ok || current != conn {
		return len(dc.conns), false
	}
	delete(dc.conns, device)
	return len(dc.conns), true
}

func (dc *DeviceConns) find(device session.Device) (connector.Conn, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	conn, ok := dc.conns[device]
	return conn, ok
}

func (dc *DeviceConns) findAll() ([]connector.Conn, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()

	conns := make([]connector.Conn, 0, len(dc.conns))
	for _, conn := range dc.conns {
		conns = append(conns, conn)
	}
	return conns, len(conns) > 0
}

func (dc *DeviceConns) clear() []connector.Conn {
	dc.mu.Lock()
	defer dc.mu.Unlock()

	conns := make([]connector.Conn, 0, len(dc.conns))
	for _, conn := range dc.conns {
		conns = append(conns, conn)
	}
	clear(dc.conns)
	return conns
}

// Config 为客户端连接的配置。
type Config struct {
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	InitRetryInterval time.Duration `mapstructure:"init_retry_interval"`
	MaxRetryInterval  time.Duration `mapstructure:"max_retry_interval"`
	MaxRetryCount     int32         `mapstructure:"max_retry_count"`

	SendBufferSize    int `mapstructure:"send_buffer_size"`
	ReceiveBufferSize int `mapstructure:"receive_buffer_size"`

	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	RateLimit   int           `mapstructure:"rate_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		InitRetryInterval: DefaultInitRetryInterval,
		MaxRetryInterval:  DefaultMaxRetryInterval,
		MaxRetryCount:     DefaultMaxRetryCount,
		SendBufferSize:    DefaultSendBufferSize,
		ReceiveBufferSize: DefaultReceiveBufferSize,
		IdleTimeout:       DefaultIdleTimeout,
		RateLimit:         DefaultRateLimit,
	}
}

var _ connector.ConnManager = (*ConnManager)(nil)

type ConnManager struct {
	cfg *Config

	conns   *xsync.Map[int64, *DeviceConns]
	mu      sync.Mutex // 保护 DeviceConns 的创建与回收
	connCnt atomic.Int64
	userCnt atomic.Int64

	logger *zap.Logger
}

func (m *ConnManager) NewConn(ctx context.Context, netConn net.Conn, sess session.Session, compressionState *compression.State) (connector.Conn, error) {
	user := sess.User()

	connID := user.ConnID()
	newConn := NewConn(ctx, connID, sess, netConn, m.convertToConnOpts(user, compressionState)...)

	// 同一设备已有连接时，新连接替换旧连接，旧连接被关闭。
	if old, replaced := m.storeConn(user, newConn); replaced {
		m.logger.Info(
			"[connector-conn-manager] found existing connection for same device, closing old connection",
			zap.String("conn_id", connID),
			zap.Any("user", user),
		)
		m.closeConn(old)
	}

	m.logger.Info(
		"[connector-conn-manager] successfully create connection",
		zap.String("conn_id", connID),
		zap.Any("user", user),
	)
	return newConn, nil
}

func (m *ConnManager) storeConn(user session.User, conn connector.Conn) (connector.Conn, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dc, loaded := m.conns.LoadOrStore(user.UID, newDeviceConns())
	if !loaded {
		// LoadOrStore 返回 false 代表新创建了 DeviceConns。
		// 用户数 +1。
		m.userCnt.Add(1)
	}

	old, replaced := dc.add(user.Device, conn)
	if !replaced {
		m.connCnt.Add(1)
	}
	return old, replaced
}

func (m *ConnManager) convertToConnOpts(user session.User, compressionState *compression.State) []option.Opt[Conn] {
	opts := []option.Opt[Conn]{ConnWithLogger(m.logger)}

	if compressionState != nil {
		opts = append(opts, ConnWithCompression(compressionState))
	}

	if m.cfg.ReadTimeout > 0 {
		opts = append(opts, ConnWithReadTimeout(m.cfg.ReadTimeout))
	}
	if m.cfg.WriteTimeout > 0 {
		opts = append(opts, ConnWithWriteTimeout(m.cfg.WriteTimeout))
	}

	if m.cfg.SendBufferSize > 0 {
		opts = append(opts, ConnWithWriteBuffer(m.cfg.SendBufferSize))
	}
	if m.cfg.ReceiveBufferSize > 0 {
		opts = append(opts, ConnWithReadBuffer(m.cfg.ReceiveBufferSize))
	}

	if m.cfg.InitRetryInterval > 0 && m.cfg.MaxRetryInterval > 0 && m.cfg.MaxRetryCount > 0 {
		opts = append(opts, ConnWithRetry(m.cfg.InitRetryInterval, m.cfg.MaxRetryInterval, m.cfg.MaxRetryCount))
	}

	opts = append(
		opts,
		ConnWithAutoClose(user.AutoClose, m.cfg.IdleTimeout),
		ConnWithRateLimit(m.cfg.RateLimit),
	)

	return opts
}

func (m *ConnManager) closeConn(conn connector.Conn) {
	if err := conn.Close(); err != nil {
		m.logger.Warn(
			"[connector-conn-manager] failed to close connection",
			zap.String("conn_id", conn.ID()),
			zap.Error(err),
		)
	}
}

func (m *ConnManager) RemoveConn(user session.User) bool {
	m.mu.Lock()
	dc, ok := m.conns.Load(user.UID)
	if !ok {
		m.mu.Unlock()
		return false
	}

	conn, remain, ok := dc.remove(user.Device)
	if ok {
		m.connCnt.Add(-1)
		if remain == 0 {
			m.conns.Delete(user.UID)
			m.userCnt.Add(-1)
		}
	}
	m.mu.Unlock()

	if ok {
		m.closeConn(conn)
	}
	return ok
}

// ReleaseConn 在连接断开后调用，只有 ConnManager 中保存的仍是该连接时才会移除。
// 已被同设备新连接替换的旧连接不会影响新连接。
func (m *ConnManager) ReleaseConn(conn connector.Conn) bool {
	user := conn.Session().User()

	m.mu.Lock()
	defer m.mu.Unlock()

	dc, ok := m.conns.Load(user.UID)
	if !ok {
		return false
	}

	remain, ok := dc.compareAndRemove(user.Device, conn)
	if ok {
		m.connCnt.Add(-1)
		if remain == 0 {
			m.conns.Delete(user.UID)
			m.userCnt.Add(-1)
		}
	}
	return ok
}

func (m *ConnManager) RemoveUserConn(uid int64) []connector.Conn {
	m.mu.Lock()
	dc, ok := m.conns.LoadAndDelete(uid)
	if !ok {
		m.mu.Unlock()
		return nil
	}
	m.userCnt.Add(-1)

	conns := dc.clear()
	m.connCnt.Add(-int64(len(conns)))
	m.mu.Unlock()

	for _, conn := range conns {
		m.closeConn(conn)
	}
	return conns
}

func (m *ConnManager) FindConn(user session.User) (connector.Conn, bool) {
	dc, ok := m.conns.Load(user.UID)
	if !ok {
		return nil, false
	}
	return dc.find(user.Device)
}

func (m *ConnManager) FindUserConn(uid int64) ([]connector.Conn, bool) {
	dc, ok := m.conns.Load(uid)
	if !ok {
		return nil, false
	}
	return dc.findAll()
}

func (m *ConnManager) OnlineUsers() []int64 {
	uids := make([]int64, 0, m.userCnt.Load())
	m.conns.Range(func(uid int64, _ *DeviceConns) bool {
		uids = append(uids, uid)
		return true
	})
	return uids
}

// Stats 返回当前的用户数和连接数。
func (m *ConnManager) Stats() (userCnt int64, connCnt int64) {
	return m.userCnt.Load(), m.connCnt.Load()
}

// CloseAll 关闭全部连接，用于 connector 停机。
func (m *ConnManager) CloseAll() {
	for _, uid := range m.OnlineUsers() {
		m.RemoveUserConn(uid)
	}
}

func ConnManagerWithConfig(cfg *Config) option.Opt[ConnManager] {
	return func(m *ConnManager) {
		if cfg != nil {
			m.cfg = cfg
		}
	}
}

func NewConnManager(logger *zap.Logger, opts ...option.Opt[ConnManager]) *ConnManager {
	m := &ConnManager{
		cfg:    DefaultConfig(),
		conns:  &xsync.Map[int64, *DeviceConns]{},
		logger: logger,
	}
	option.Apply(m, opts...)
	return m
}
