package redis

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/redis/go-redis/v9"
)

var (
	//go:embed lua/session_create.lua
	sessionCreateLua string

	//go:embed lua/session_destroy.lua
	sessionDestroyLua string
)

var (
	ErrSessionExists   = errors.New("session exists")
	ErrSessionCreate   = errors.New("failed to create session")
	ErrSessionNotFound = errors.New("session field not found")
)

const (
	FieldConnectorID = "connector_id"
	FieldDevice      = "device"
	FieldSignInTime  = "sign_in_time"
)

var _ session.Session = (*RedisSession)(nil)

// RedisSession 为 Session 的 Redis 实现，会话数据保存为一个 hash。
type RedisSession struct {
	rdb redis.Cmdable

	key         string
	user        session.User
	connectorID string
}

func (s *RedisSession) User() session.User {
	return s.user
}

func (s *RedisSession) Set(ctx context.Context, key string, val string) error {
	return s.rdb.HSet(ctx, s.key, key, val).Err()
}

func (s *RedisSession) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.HGet(ctx, s.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrSessionNotFound, key)
	}
	return val, err
}

// Destroy 删除会话。
// 注：
//
//	用户在其它 connector 上重新登录后，会话已属于新的 connector，此时不会删除。
func (s *RedisSession) Destroy(ctx context.Context) error {
	return s.rdb.Eval(ctx, sessionDestroyLua, []string{s.key}, s.connectorID).Err()
}

// saveToRedis 将 Session 保存到 redis 中。
// 如果 Session 已存在，则返回 ErrSessionExists。
func (s *RedisSession) saveToRedis(ctx context.Context, expiration time.Duration, now time.Time) error {
	args := []any{
		expiration.Milliseconds(),
		s.connectorID,
		string(s.user.Device),
		now.Format(time.RFC3339Nano),
	}

	// 使用 lua 脚本保证原子性。
	res, err := s.rdb.Eval(ctx, sessionCreateLua, []string{s.key}, args...).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionCreate, err)
	}

	if res == "ok" {
		return nil
	}
	return ErrSessionExists
}

func newRedisSession(rdb redis.Cmdable, user session.User, connectorID string) *RedisSession {
	return &RedisSession{
		rdb:         rdb,
		key:         user.SessionKey(),
		user:        user,
		connectorID: connectorID,
	}
}

var _ session.Builder = (*RedisSessionBuilder)(nil)

type RedisSessionBuilder struct {
	rdb redis.Cmdable

	connectorID string
	expiration  time.Duration
	now         func() time.Time
}

func (b *RedisSessionBuilder) Build(ctx context.Context, user session.User) (session.Session, bool, error) {
	sess := newRedisSession(b.rdb, user, b.connectorID)

	err := sess.saveToRedis(ctx, b.expiration, b.now())
	if err == nil {
		return sess, true, nil
	}

	if errors.Is(err, ErrSessionExists) {
		return sess, false, nil
	}
	return nil, false, err
}

func NewRedisSessionBuilder(rdb redis.Cmdable, connectorID string, expiration time.Duration) *RedisSessionBuilder {
	return &RedisSessionBuilder{
		rdb:         rdb,
		connectorID: connectorID,
		expiration:  expiration,
		now:         time.Now,
	}
}
