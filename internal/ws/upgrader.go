package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/JrMarcco/connector"
	"github.com/JrMarcco/connector/internal/pkg/auth"
	"github.com/JrMarcco/connector/internal/pkg/compression"
	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsflate"
	"go.uber.org/zap"
)

const (
	defaultHandshakeTimeout = 5 * time.Second

	headerAutoClose = "x-auto-close"
)

var (
	ErrTokenRequired = errors.New("token is required")
	ErrInvalidUri    = errors.New("invalid uri")
	ErrInvalidToken  = errors.New("invalid token")
)

var _ connector.Upgrader = (*Upgrader)(nil)

// Upgrader 是 WebSocket 升级器，用于将 HTTP 请求升级为 WebSocket 连接。
// 升级过程中校验 token，创建会话，同时协商 permessage-deflate 压缩。
type Upgrader struct {
	sessionBuilder session.Builder

	validator         auth.Validator
	compressionConfig compression.Config

	handshakeTimeout time.Duration

	logger *zap.Logger
}

func (u *Upgrader) Name() string {
	return "connector.upgrader"
}

func (u *Upgrader) Upgrade(conn net.Conn) (session.Session, *compression.State, error) {
	var ext *wsflate.Extension
	if u.compressionConfig.Enabled {
		// 启用压缩时，创建压缩扩展。
		ext = &wsflate.Extension{Parameters: u.compressionConfig.ToParameters()}
	}

	var (
		user      session.User
		sess      session.Session
		autoClose bool
	)
	upgrader := ws.Upgrader{
		// 协商过程，这里主要是压缩相关的协商（是否启用以及压缩参数）。
		Negotiate: func(opt httphead.Option) (httphead.Option, error) {
			if ext != nil {
				return ext.Negotiate(opt)
			}
			return httphead.Option{}, nil
		},
		OnRequest: func(uri []byte) error {
			// 验证 token 并提取用户信息。
			var err error
			if user, err = u.extractUserInfo(uri); err != nil {
				return err
			}
			return nil
		},
		OnHeader: func(key, value []byte) error {
			// 解析 auto close 参数。
			if strings.EqualFold(string(key), headerAutoClose) {
				autoClose = string(value) == "true"
			}
			return nil
		},
		OnBeforeUpgrade: func() (ws.HandshakeHeader, error) {
			user.AutoClose = autoClose

			// 初始化 session。
			ctx, cancel := context.WithTimeout(context.Background(), u.handshakeTimeout)
			defer cancel()

			createdSession, isNew, err := u.sessionBuilder.Build(ctx, user)
			if err != nil {
				u.logger.Error("[connector-upgrader] failed to build session", zap.Any("user", user), zap.Error(err))
				return nil, err
			}

			if !isNew {
				u.logger.Warn("[connector-upgrader] session already exists", zap.Any("user", user))
			}

			sess = createdSession
			return ws.HandshakeHeaderString(""), nil
		},
	}

	_ = conn.SetDeadline(time.Now().Add(u.handshakeTimeout))
	if _, err := upgrader.Upgrade(conn); err != nil {
		return nil, nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	state := &compression.State{Enabled: false}

	// 检查协商压缩的结果。
	if ext != nil {
		if params, accepted := ext.Accepted(); accepted {
			state.Enabled = true
			state.Ext = ext
			state.Params = params
			state.Level = u.compressionConfig.CompressLevel()

			u.logger.Debug(
				"[connector-upgrader] successfully negotiated compression",
				zap.Any("negotiated_params", params),
			)
			return sess, state, nil
		}

		u.logger.Debug("[connector-upgrader] client does not support compression, downgrade to no compression")
	}

	return sess, state, nil
}

// extractToken 从 URI 中提取 token。
func (u *Upgrader) extractToken(parsedURL *url.URL) (string, error) {
	token := parsedURL.Query().Get("token")
	if token == "" {
		return "", ErrTokenRequired
	}
	return token, nil
}

// extractDevice 从 URI 中提取设备类型。
func (u *Upgrader) extractDevice(parsedURL *url.URL) session.Device {
	queryParam := parsedURL.Query().Get("device")
	if queryParam == "" {
		return session.DeviceUnknown
	}

	// 校验并转换设备类型。
	device := session.Device(queryParam)
	switch device {
	case session.DeviceMobile, session.DeviceTablet, session.DevicePC:
		return device
	default:
		u.logger.Warn(
			"[connector-upgrader] invalid device type, using unknown",
			zap.String("device", string(device)),
		)
		return session.DeviceUnknown
	}
}

// extractUserInfo 从 URI 中获取用户信息。
func (u *Upgrader) extractUserInfo(uri []byte) (session.User, error) {
	parsedURL, err := url.ParseRequestURI(string(uri))
	if err != nil {
		return session.User{}, ErrInvalidUri
	}

	token, err := u.extractToken(parsedURL)
	if err != nil {
		u.logger.Error("[connector-upgrader] failed to extract token from uri", zap.Error(err))
		return session.User{}, err
	}

	user, err := u.validator.Validate(context.Background(), token)
	if err != nil {
		u.logger.Error("[connector-upgrader] failed to validate token", zap.Error(err))
		return session.User{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	user.Device = u.extractDevice(parsedURL)
	return user, nil
}

func NewUpgrader(
	sessionBuilder session.Builder,
	validator auth.Validator,
	compressionConfig compression.Config,
	handshakeTimeout time.Duration,
	logger *zap.Logger,
) *Upgrader {
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	return &Upgrader{
		sessionBuilder:    sessionBuilder,
		validator:         validator,
		compressionConfig: compressionConfig,
		handshakeTimeout:  handshakeTimeout,
		logger:            logger,
	}
}
