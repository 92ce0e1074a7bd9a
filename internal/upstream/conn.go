package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/xws"
	"github.com/JrMarcco/connector/internal/transfer"
	"github.com/JrMarcco/connector/pkg/message"
	"github.com/JrMarcco/jit/bean/option"
	"github.com/JrMarcco/jit/retry"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"
)

var ErrConnClosed = errors.New("upstream connection closed")

var _ transfer.Link = (*Conn)(nil)

// LinkHandler 处理上行连接的生命周期事件和下发消息。
type LinkHandler interface {
	// ConnectorID 返回本 connector 的 id，用于标记连接。
	ConnectorID() string

	OnActive(link transfer.Link) error
	OnMessage(link transfer.Link, msg message.Message) error
	OnClose(link transfer.Link)
}

// Conn 是 connector 到 transfer 的 WebSocket 连接。
// 写入的消息先编码再放入发送队列，由 sendLoop 按入队顺序写出。
type Conn struct {
	id string

	netConn net.Conn
	reader  *xws.Reader
	writer  *xws.Writer

	writeTimeout time.Duration

	initRetryInterval time.Duration
	maxRetryInterval  time.Duration
	maxRetryCount     int32

	sendChan chan []byte

	ctx        context.Context
	cancelFunc context.CancelFunc

	closeOnce sync.Once
	sendDone  chan struct{}

	logger *zap.Logger
}

func (c *Conn) ID() string {
	return c.id
}

// Write 编码消息并放入发送队列。
// 编码失败或连接已关闭时返回 error，不会阻塞到消息真正写出。
func (c *Conn) Write(msg message.Message) error {
	frame, err := message.Encode(msg)
	if err != nil {
		return fmt.Errorf("failed to encode upstream message: %w", err)
	}

	if c.ctx.Err() != nil {
		return ErrConnClosed
	}

	select {
	case <-c.ctx.Done():
		return ErrConnClosed
	case c.sendChan <- frame:
		return nil
	}
}

func (c *Conn) Closed() <-chan struct{} {
	return c.ctx.Done()
}

func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancelFunc()
		err = c.netConn.Close()
	})
	return err
}

func (c *Conn) sendLoop() {
	defer func() {
		close(c.sendDone)
		_ = c.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case frame := <-c.sendChan:
			if !c.trySend(frame) {
				return
			}
		}
	}
}

// trySend 写出一帧数据，只在写超时时按指数退避重试。
func (c *Conn) trySend(frame []byte) bool {
	// 参数在 NewClient 时已校验。
	retryStrategy, _ := retry.NewExponentialBackoffStrategy(
		c.initRetryInterval, c.maxRetryInterval, c.maxRetryCount,
	)

	for {
		select {
		case <-c.ctx.Done():
			return false
		default:
		}

		if c.writeTimeout > 0 {
			_ = c.netConn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		}

		_, err := c.writer.Write(frame)
		if err == nil {
			return true
		}

		var netErr net.Error
		if !errors.As(err, &netErr) || !netErr.Timeout() {
			c.logger.Error(
				"[connector-upstream-conn] failed to send message to transfer",
				zap.String("link_id", c.id),
				zap.Int("frame_len", len(frame)),
				zap.Error(err),
			)
			return false
		}

		duration, ok := retryStrategy.Next()
		if !ok {
			c.logger.Error(
				"[connector-upstream-conn] failed to resend message to transfer, retry reach max",
				zap.String("link_id", c.id),
				zap.Int("frame_len", len(frame)),
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

// receiveLoop 串行读取并分发 transfer 下发的消息，直到连接关闭。
// 对端正常关闭或连接被主动关闭时返回 nil。
func (c *Conn) receiveLoop(handler LinkHandler) error {
	defer func() {
		_ = c.Close()
	}()

	for {
		payload, err := c.reader.Read()
		if err != nil {
			if c.ctx.Err() != nil {
				return nil
			}

			var closedErr wsutil.ClosedError
			if errors.As(err, &closedErr) &&
				(closedErr.Code == ws.StatusNormalClosure || closedErr.Code == ws.StatusGoingAway || closedErr.Code == ws.StatusNoStatusRcvd) {
				c.logger.Info(
					"[connector-upstream-conn] transfer closed connection",
					zap.String("link_id", c.id),
					zap.Int("code", int(closedErr.Code)),
				)
				return nil
			}
			return fmt.Errorf("%w: %w", ErrConnClosed, err)
		}

		msg, err := message.Decode(payload)
		if err != nil {
			c.logger.Error(
				"[connector-upstream-conn] failed to decode message from transfer, drop it",
				zap.String("link_id", c.id),
				zap.Int("payload_len", len(payload)),
				zap.Error(err),
			)
			continue
		}

		// 处理失败只影响当前帧，handler 已记录日志。
		_ = handler.OnMessage(c, msg)
	}
}

// watch 在 ctx 结束时关闭连接，使阻塞中的读操作返回。
func (c *Conn) watch() {
	<-c.ctx.Done()
	_ = c.Close()
}

func ConnWithWriteTimeout(writeTimeout time.Duration) option.Opt[Conn] {
	return func(c *Conn) {
		c.writeTimeout = writeTimeout
	}
}

func ConnWithRetry(initRetryInterval, maxRetryInterval time.Duration, maxRetryCount int32) option.Opt[Conn] {
	return func(c *Conn) {
		c.initRetryInterval = initRetryInterval
		c.maxRetryInterval = maxRetryInterval
		c.maxRetryCount = maxRetryCount
	}
}

func ConnWithSendBuffer(size int) option.Opt[Conn] {
	return func(c *Conn) {
		if size > 0 {
			c.sendChan = make(chan []byte, size)
		}
	}
}

// ConnWithCompression 在握手协商出 permessage-deflate 时开启压缩写。
func ConnWithCompression(compressed bool) option.Opt[Conn] {
	return func(c *Conn) {
		c.writer = xws.NewClientSideWriter(c.netConn, compressed)
	}
}

// NewConn 创建连接并启动发送 goroutine。
// 接收由 Client.Run 在调用方 goroutine 中进行。
func NewConn(parentCtx context.Context, id string, netConn net.Conn, logger *zap.Logger, opts ...option.Opt[Conn]) *Conn {
	ctx, cancel := context.WithCancel(parentCtx)

	c := &Conn{
		id:      id,
		netConn: netConn,
		reader:  xws.NewClientSideReader(netConn),
		writer:  xws.NewClientSideWriter(netConn, false),

		writeTimeout: DefaultWriteTimeout,

		initRetryInterval: DefaultInitRetryInterval,
		maxRetryInterval:  DefaultMaxRetryInterval,
		maxRetryCount:     DefaultMaxRetryCount,

		sendChan: make(chan []byte, DefaultSendBufferSize),

		ctx:        ctx,
		cancelFunc: cancel,
		sendDone:   make(chan struct{}),

		logger: logger,
	}

	option.Apply(c, opts...)

	go c.sendLoop()
	go c.watch()
	return c
}
