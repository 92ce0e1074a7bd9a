package conn

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/JrMarcco/connector/internal/pkg/xws"
	"github.com/JrMarcco/jit/bean/option"
	"github.com/JrMarcco/jit/retry"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

var ErrConnClosed = errors.New("connection closed")

var _ connector.Conn = (*Conn)(nil)

// Conn 代表一个客户端 WebSocket 连接。
// Conn 封装了 net.Conn，只负责消息的读写。
type Conn struct {
	id   string
	sess session.Session

	netConn net.Conn

	reader      *xws.Reader
	readTimeout time.Duration

	writer       *xws.Writer
	writeTimeout time.Duration

	compressionState *compression.State

	// 重试策略
	initRetryInterval time.Duration
	maxRetryInterval  time.Duration
	maxRetryCount     int32

	// 通信通道
	sendChan    chan []byte
	receiveChan chan []byte

	// 空闲连接管理
	mu           sync.RWMutex
	autoClose    bool
	idleTimeout  time.Duration
	activityTime time.Time

	// 限流:
	//
	// 	使用 uber 的 ratelimit ( 漏桶算法 )。
	// 	客户端消息需要平滑处理，避免突发消息阻塞 receiveChan。
	// 	达到限流时阻塞等待。
	limitRate int
	limiter   ratelimit.Limiter

	ctx        context.Context
	cancelFunc context.CancelFunc

	closeOnce sync.Once

	logger *zap.Logger
}

func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) Session() session.Session {
	return c.sess
}

func (c *Conn) Send(payload []byte) error {
	if c.ctx.Err() != nil {
		return ErrConnClosed
	}

	select {
	case <-c.ctx.Done():
		return ErrConnClosed
	case c.sendChan <- payload:
		return nil
	}
}

func (c *Conn) Receive() <-chan []byte {
	return c.receiveChan
}

func (c *Conn) UpdateActivityTime() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ctx.Err() == nil {
		c.activityTime = time.Now()
	}
}

func (c *Conn) idle() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.autoClose && time.Since(c.activityTime) > c.idleTimeout
}

func (c *Conn) Closed() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancelFunc()
		err = c.netConn.Close()

		c.logger.Debug(
			"[connector-conn] connection closed",
			zap.String("connection_id", c.id),
			zap.Any("user", c.sess.User()),
		)
	})
	return err
}

func (c *Conn) sendLoop() {
	defer func() {
		_ = c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case payload := <-c.sendChan:
			if !c.trySend(payload) {
				// 发送失败，关闭连接。
				return
			}
		}
	}
}

// trySend 是实际发送消息给客户端的逻辑。
// 发送超时时按指数退避策略重试，最终重试失败才会返回 false。
// 注：
//
//	只允许在发生超时时进行重试。
func (c *Conn) trySend(payload []byte) bool {
	// 创建 Conn 时已经确保重试策略的参数正确。
	retryStrategy, _ := retry.NewExponentialBackoffStrategy(
		c.initRetryInterval, c.maxRetryInterval, c.maxRetryCount,
	)

	for {
		select {
		case <-c.ctx.Done():
			return false
		default:
		}

		_ = c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout))

		_, err := c.writer.Write(payload)
		if err == nil {
			c.UpdateActivityTime()
			return true
		}

		c.logger.Error(
			"[connector-conn] failed to send message to client",
			zap.String("connection_id", c.id),
			zap.Any("user", c.sess.User()),
			zap.Int("payload_len", len(payload)),
			zap.Error(err),
		)

		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			return false
		}

		duration, ok := retryStrategy.Next()
		if !ok {
			c.logger.Error(
				"[connector-conn] failed to resend message to client, retry reach max",
				zap.String("connection_id", c.id),
				zap.Any("user", c.sess.User()),
			)
			return false
		}

		select {
		case <-c.ctx.Done():
			return false
		case <-time.After(duration):
		}
	}
}

func (c *Conn) receiveLoop() {
	defer func() {
		close(c.receiveChan)
		_ = c.Close()
	}()

	for {
		if c.limiter != nil {
			c.limiter.Take()
		}

		select {
		case <-c.ctx.Done():
			return
		default:
		}

		_ = c.netConn.SetReadDeadline(time.Now().Add(c.readTimeout))

		payload, err := c.reader.Read()
		if err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				if c.idle() {
					c.logger.Info(
						"[connector-conn] close idle connection",
						zap.String("connection_id", c.id),
						zap.Any("user", c.sess.User()),
						zap.Duration("idle_timeout", c.idleTimeout),
					)
					return
				}
				continue
			}

			var wsErr wsutil.ClosedError
			if errors.As(err, &wsErr) && (wsErr.Code == ws.StatusNoStatusRcvd || wsErr.Code == ws.StatusGoingAway || wsErr.Code == ws.StatusNormalClosure) {
				c.logger.Info(
					"[connector-conn] client closed connection",
					zap.String("connection_id", c.id),
					zap.Any("user", c.sess.User()),
				)
				return
			}

			if c.ctx.Err() == nil {
				c.logger.Error(
					"[connector-conn] failed to read message from client",
					zap.String("connection_id", c.id),
					zap.Any("user", c.sess.User()),
					zap.Error(err),
				)
			}
			return
		}

		c.UpdateActivityTime()

		select {
		case <-c.ctx.Done():
			return
		case c.receiveChan <- payload:
		}
	}
}

func ConnWithReadTimeout(readTimeout time.Duration) option.Opt[Conn] {
	return func(c *Conn) {
		c.readTimeout = readTimeout
	}
}

func ConnWithWriteTimeout(writeTimeout time.Duration) option.Opt[Conn] {
	return func(c *Conn) {
		c.writeTimeout = writeTimeout
	}
}

func ConnWithCompression(state *compression.State) option.Opt[Conn] {
	return func(c *Conn) {
		c.compressionState = state
	}
}

func ConnWithRetry(initRetryInterval, maxRetryInterval time.Duration, maxRetryCount int32) option.Opt[Conn] {
	return func(c *Conn) {
		c.initRetryInterval = initRetryInterval
		c.maxRetryInterval = maxRetryInterval
		c.maxRetryCount = maxRetryCount
	}
}

func ConnWithReadBuffer(receiveBufferSize int) option.Opt[Conn] {
	return func(c *Conn) {
		c.receiveChan = make(chan []byte, receiveBufferSize)
	}
}

func ConnWithWriteBuffer(sendBufferSize int) option.Opt[Conn] {
	return func(c *Conn) {
		c.sendChan = make(chan []byte, sendBufferSize)
	}
}

// ConnWithAutoClose 开启后，连接空闲超过 idleTimeout 会被关闭。
func ConnWithAutoClose(autoClose bool, idleTimeout time.Duration) option.Opt[Conn] {
	return func(c *Conn) {
		c.autoClose = autoClose
		if idleTimeout > 0 {
			c.idleTimeout = idleTimeout
		}
	}
}

// ConnWithRateLimit 限流器 option。
// rate 为每秒处理的消息上限。
func ConnWithRateLimit(rate int) option.Opt[Conn] {
	return func(c *Conn) {
		if rate > 0 {
			c.limitRate = rate
			c.limiter = ratelimit.New(rate)
		}
	}
}

func ConnWithLogger(logger *zap.Logger) option.Opt[Conn] {
	return func(c *Conn) {
		c.logger = logger
	}
}

func NewConn(
	parentCtx context.Context,
	id string,
	sess session.Session,
	netConn net.Conn,
	opts ...option.Opt[Conn],
) *Conn {
	ctx, cancel := context.WithCancel(parentCtx)

	c := &Conn{
		id:      id,
		sess:    sess,
		netConn: netConn,

		readTimeout:  DefaultReadTimeout,
		writeTimeout: DefaultWriteTimeout,

		initRetryInterval: DefaultInitRetryInterval,
		maxRetryInterval:  DefaultMaxRetryInterval,
		maxRetryCount:     DefaultMaxRetryCount,

		sendChan:    make(chan []byte, DefaultSendBufferSize),
		receiveChan: make(chan []byte, DefaultReceiveBufferSize),

		idleTimeout:  DefaultIdleTimeout,
		activityTime: time.Now(),

		ctx:        ctx,
		cancelFunc: cancel,

		logger: zap.NewNop(),
	}

	option.Apply(c, opts...)

	// 在 option 应用之后才能确定 compressionState。
	// 所以只能在这里初始化 writer 和 reader。
	var (
		compressionEnabled bool
		compressLevel      int
	)
	if c.compressionState != nil {
		compressionEnabled = c.compressionState.Enabled
		compressLevel = c.compressionState.Level
	}
	c.reader = xws.NewServerSideReader(netConn)
	c.writer = xws.NewServerSideWriter(netConn, compressionEnabled, compressLevel)

	go c.sendLoop()
	go c.receiveLoop()

	return c
}
