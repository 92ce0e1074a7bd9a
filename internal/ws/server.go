package ws

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/limiter"
	wsc "github.com/JrMarcco/connector/internal/ws/conn"
	"github.com/JrMarcco/jit/bean/option"
	"github.com/cenkalti/backoff/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrServerNotStarted = errors.New("server not started")

var _ connector.Server = (*Server)(nil)

// Server 是面向客户端的 WebSocket 网关。
type Server struct {
	config *Config

	listener net.Listener

	upgrader    connector.Upgrader
	connManager connector.ConnManager
	connHandler connector.Handler

	connLimiter *limiter.TokenLimiter
	backoff     *backoff.ExponentialBackOff

	// mu 保证 handling.Add 与关闭接收互斥，
	// Shutdown 返回后不会再有新的 handling.Add。
	mu            sync.Mutex
	acceptNewConn atomic.Bool
	handling      sync.WaitGroup

	ctx        context.Context
	cancelFunc context.CancelFunc

	logger *zap.Logger
}

// Start 启动 WebSocket 服务器。
func (s *Server) Start() error {
	// 端口启用并监听 upgrade 请求，
	// 完成 WebSocket 的初始化工作。
	ln, err := net.Listen(s.config.Network, s.config.Address())
	if err != nil {
		return err
	}

	s.listener = ln

	// 令牌桶逐步扩容。
	go s.connLimiter.Start(s.ctx)
	go s.acceptConn()

	s.logger.Info("[connector-server] websocket server started", zap.String("addr", ln.Addr().String()))
	return nil
}

// Addr 返回实际监听的地址，未启动时返回 nil。
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// acceptConn 接收 WebSocket 连接。
func (s *Server) acceptConn() {
	for {
		// 判断是否接收新连接。
		if !s.acceptNewConn.Load() {
			s.logger.Info("[connector-server] server is not accepting new connections")
			return
		}

		// 接收连接前先获取令牌。
		if !s.connLimiter.Acquire() {
			next := s.backoff.NextBackOff()

			s.logger.Warn(
				"[connector-server] connection limit reached, reject new connection",
				zap.Duration("next_backoff", next),
			)

			select {
			case <-time.After(next):
			case <-s.ctx.Done():
				return
			}
			continue
		}

		// 成功获取令牌，重置退避策略。
		s.backoff.Reset()

		conn, err := s.listener.Accept()
		if err != nil {
			// 接收连接失败，归还令牌。
			s.connLimiter.Release()

			if errors.Is(err, net.ErrClosed) {
				// net.ErrClosed 表示 listener 已关闭，
				// 此时可以退出。
				return
			}

			s.logger.Error("[connector-server] failed to accept connection", zap.Error(err))
			continue
		}

		// Accept 与 Shutdown 并发时，连接可能在停止接收之后才返回。
		if !s.track() {
			s.connLimiter.Release()
			if err := conn.Close(); err != nil {
				s.logger.Warn("[connector-server] failed to close net connection", zap.Error(err))
			}
			s.logger.Info("[connector-server] server is shutting down, drop accepted connection")
			return
		}

		// goroutine : connection = 1 : 1。
		go func() {
			defer s.handling.Done()
			s.handleConn(conn)
		}()
	}
}

// track 在仍接收新连接时登记一个处理中的连接。
func (s *Server) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.acceptNewConn.Load() {
		return false
	}
	s.handling.Add(1)
	return true
}

// handleConn 处理 WebSocket 连接。
func (s *Server) handleConn(conn net.Conn) {
	// 归还令牌。
	defer s.connLimiter.Release()

	// 关闭连接。
	defer func() {
		err := conn.Close()
		if err != nil && !errors.Is(err, net.ErrClosed) {
			s.logger.Warn("[connector-server] failed to close net connection", zap.Error(err))
		}
	}()

	// 处理 upgrade 请求。
	sess, compressionState, err := s.upgrader.Upgrade(conn)
	if err != nil {
		s.logger.Warn(
			"[connector-server] failed to upgrade connection from HTTP to WebSocket",
			zap.String("remote_addr", conn.RemoteAddr().String()),
			zap.Error(err),
		)
		return
	}

	// 注意，这里的连接指的是 connector.Conn 接口，并不是 net.Conn 接口。
	wsConn, err := s.connManager.NewConn(s.ctx, conn, sess, compressionState)
	if err != nil {
		s.logger.Error("[connector-server] failed to create connection", zap.Error(err))
		return
	}

	defer func() {
		// 注：
		//  同一设备重复登录时旧连接已被新连接替换，
		//  这里只移除自己，避免误删新连接。
		s.connManager.ReleaseConn(wsConn)
		if err := wsConn.Close(); err != nil {
			s.logger.Error(
				"[connector-server] failed to close connection",
				zap.String("conn_id", wsConn.ID()),
				zap.Error(err),
			)
		}
	}()

	// 处理 on connect & on disconnect 事件。
	if err := s.connHandler.OnConnect(wsConn); err != nil {
		s.logger.Error(
			"[connector-server] failed to handle on connect lifecycle event",
			zap.String("conn_id", wsConn.ID()),
			zap.Error(err),
		)
		// on connect 事件失败，直接返回。
		return
	}
	defer func() {
		if err := s.connHandler.OnDisconnect(wsConn); err != nil {
			s.logger.Error(
				"[connector-server] failed to handle on disconnect lifecycle event",
				zap.String("conn_id", wsConn.ID()),
				zap.Error(err),
			)
		}
	}()

	for {
		select {
		case payload, ok := <-wsConn.Receive():
			if !ok {
				return
			}
			if err := s.connHandler.OnReceive(wsConn, payload); err != nil {
				s.logger.Warn(
					"[connector-server] failed to handle client message",
					zap.String("conn_id", wsConn.ID()),
					zap.Error(err),
				)

				// 如果连接已关闭，则直接返回 ( wsc => internal/ws/conn )。
				if errors.Is(err, wsc.ErrConnClosed) {
					return
				}
			}
		case <-wsConn.Closed():
			s.logger.Info("[connector-server] connection has been closed", zap.String("conn_id", wsConn.ID()))
			return
		case <-s.ctx.Done():
			return
		}
	}
}

// Shutdown 立即关闭服务器，不等待连接处理结束。
func (s *Server) Shutdown() error {
	s.mu.Lock()
	s.acceptNewConn.Store(false)
	s.mu.Unlock()

	s.cancelFunc()

	var err error
	if s.listener != nil {
		if closeErr := s.listener.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			err = closeErr
		}
	}

	// 关闭限流器。
	if closeErr := s.connLimiter.Close(); closeErr != nil {
		s.logger.Error("[connector-server] failed to close connection limiter", zap.Error(closeErr))
		err = multierr.Append(err, closeErr)
	}
	return err
}

// GracefulShutdown 停止接收新连接，关闭现有连接并等待全部连接处理结束。
func (s *Server) GracefulShutdown() error {
	if s.listener == nil {
		return ErrServerNotStarted
	}

	err := s.Shutdown()
	s.handling.Wait()

	s.logger.Info("[connector-server] websocket server stopped")
	return err
}

func NewServer(
	config *Config,
	upgrader connector.Upgrader,
	connManager connector.ConnManager,
	connHandler connector.Handler,
	logger *zap.Logger,
	opts ...option.Opt[Server],
) (*Server, error) {
	connLimiter, err := limiter.NewTokenLimiter(config.Limiter, logger)
	if err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	if config.AcceptBackoffInit > 0 {
		bo.InitialInterval = config.AcceptBackoffInit
	}
	if config.AcceptBackoffMax > 0 {
		bo.MaxInterval = config.AcceptBackoffMax
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,

		upgrader:    upgrader,
		connManager: connManager,
		connHandler: connHandler,

		connLimiter: connLimiter,
		backoff:     bo,

		ctx:        ctx,
		cancelFunc: cancel,

		logger: logger,
	}
	s.acceptNewConn.Store(true)

	option.Apply(s, opts...)
	return s, nil
}
