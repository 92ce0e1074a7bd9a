package upstream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/JrMarcco/jit/bean/option"
	"github.com/JrMarcco/jit/retry"
	"github.com/cenkalti/backoff/v5"
	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsflate"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("invalid upstream config")

// DialFunc 建立到 transfer 的连接。
// 返回的 net.Conn 必须已经完成 WebSocket 握手。
type DialFunc func(ctx context.Context) (netConn net.Conn, compressed bool, err error)

// Client 负责建立上行连接并驱动连接上的事件。
type Client struct {
	cfg     Config
	handler LinkHandler
	dial    DialFunc

	newBackOff func() backoff.BackOff

	logger *zap.Logger
}

// Run 建立连接并阻塞读取，直到连接断开或 ctx 结束。
// ctx 结束导致的关闭返回 nil。
func (c *Client) Run(ctx context.Context) error {
	netConn, compressed, err := c.dialWithRetry(ctx)
	if err != nil {
		return err
	}

	linkID := fmt.Sprintf("%s->%s", c.handler.ConnectorID(), netConn.RemoteAddr())
	conn := NewConn(
		ctx, linkID, netConn, c.logger,
		ConnWithWriteTimeout(c.cfg.WriteTimeout),
		ConnWithRetry(c.cfg.InitRetryInterval, c.cfg.MaxRetryInterval, c.cfg.MaxRetryCount),
		ConnWithSendBuffer(c.cfg.SendBufferSize),
		ConnWithCompression(compressed),
	)

	if err = c.handler.OnActive(conn); err != nil {
		_ = conn.Close()
		<-conn.sendDone
		return err
	}

	err = conn.receiveLoop(c.handler)
	<-conn.sendDone

	c.handler.OnClose(conn)

	if err != nil {
		c.logger.Error(
			"[connector-upstream-client] upstream link broken",
			zap.String("link_id", linkID),
			zap.Error(err),
		)
		return err
	}
	if ctx.Err() == nil {
		return ErrConnClosed
	}
	return nil
}

func (c *Client) dialWithRetry(ctx context.Context) (net.Conn, bool, error) {
	type dialResult struct {
		netConn    net.Conn
		compressed bool
	}

	res, err := backoff.Retry(
		ctx,
		func() (dialResult, error) {
			netConn, compressed, err := c.dial(ctx)
			if err != nil {
				return dialResult{}, err
			}
			return dialResult{netConn: netConn, compressed: compressed}, nil
		},
		backoff.WithBackOff(c.newBackOff()),
		backoff.WithMaxTries(c.cfg.MaxDialAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn(
				"[connector-upstream-client] failed to dial transfer, retrying",
				zap.String("addr", c.cfg.Addr),
				zap.Duration("next", next),
				zap.Error(err),
			)
		}),
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to dial transfer [ %s ]: %w", c.cfg.Addr, err)
	}
	return res.netConn, res.compressed, nil
}

// wsDial 使用 gobwas/ws 完成握手。
func (c *Client) wsDial(ctx context.Context) (net.Conn, bool, error) {
	dialer := ws.Dialer{
		Timeout: c.cfg.DialTimeout,
	}
	if c.cfg.Compression {
		dialer.Extensions = []httphead.Option{
			wsflate.DefaultParameters.Option(),
		}
	}

	netConn, br, hs, err := dialer.Dial(ctx, c.cfg.Addr)
	if err != nil {
		return nil, false, err
	}

	compressed := false
	for _, opt := range hs.Extensions {
		if string(opt.Name) == wsflate.ExtensionName {
			compressed = true
			break
		}
	}

	if br != nil {
		// 握手响应之后可能已经读入了部分帧数据。
		return &bufferedConn{Conn: netConn, br: br}, compressed, nil
	}
	return netConn, compressed, nil
}

type bufferedConn struct {
	net.Conn
	br *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.br.Read(p)
}

// ClientWithDialFunc 替换默认的 WebSocket 拨号，主要用于测试。
func ClientWithDialFunc(dial DialFunc) option.Opt[Client] {
	return func(c *Client) {
		c.dial = dial
	}
}

func ClientWithBackOff(newBackOff func() backoff.BackOff) option.Opt[Client] {
	return func(c *Client) {
		c.newBackOff = newBackOff
	}
}

func NewClient(cfg Config, handler LinkHandler, logger *zap.Logger, opts ...option.Opt[Client]) (*Client, error) {
	cfg.withDefaults()

	if _, err := retry.NewExponentialBackoffStrategy(
		cfg.InitRetryInterval, cfg.MaxRetryInterval, cfg.MaxRetryCount,
	); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c := &Client{
		cfg:     cfg,
		handler: handler,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		logger: logger,
	}
	c.dial = c.wsDial

	option.Apply(c, opts...)

	if c.cfg.Addr == "" {
		return nil, fmt.Errorf("%w: empty transfer addr", ErrInvalidConfig)
	}
	return c, nil
}
