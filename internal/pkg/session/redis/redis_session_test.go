package redis

import (
	"testing"
	"time"

	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RedisSessionSuite struct {
	suite.Suite

	mr  *miniredis.Miniredis
	rdb *redis.Client
}

func (s *RedisSessionSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
}

func (s *RedisSessionSuite) TearDownTest() {
	_ = s.rdb.Close()
}

func (s *RedisSessionSuite) TestBuild() {
	t := s.T()

	user := session.User{UID: 1001, Device: session.DevicePC}
	builder := NewRedisSessionBuilder(s.rdb, "c-7", time.Hour)
	builder.now = func() time.Time { return time.UnixMilli(1700000000000).UTC() }

	sess, isNew, err := builder.Build(t.Context(), user)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Equal(t, user, sess.User())

	assert.Equal(t, "c-7", s.mr.HGet(user.SessionKey(), FieldConnectorID))
	assert.Equal(t, "pc", s.mr.HGet(user.SessionKey(), FieldDevice))
	assert.Equal(t, "2023-11-14T22:13:20Z", s.mr.HGet(user.SessionKey(), FieldSignInTime))
	assert.Equal(t, time.Hour, s.mr.TTL(user.SessionKey()))

	// 同一设备再次登录时复用会话，connector id 更新为最新的 connector。
	other := NewRedisSessionBuilder(s.rdb, "c-8", time.Hour)
	_, isNew, err = other.Build(t.Context(), user)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, "c-8", s.mr.HGet(user.SessionKey(), FieldConnectorID))
	assert.Equal(t, "2023-11-14T22:13:20Z", s.mr.HGet(user.SessionKey(), FieldSignInTime))
}

func (s *RedisSessionSuite) TestSetGetDestroy() {
	t := s.T()

	user := session.User{UID: 1002, Device: session.DeviceMobile}
	sess, _, err := NewRedisSessionBuilder(s.rdb, "c-7", 0).Build(t.Context(), user)
	require.NoError(t, err)

	require.NoError(t, sess.Set(t.Context(), "last_active", "now"))
	val, err := sess.Get(t.Context(), "last_active")
	require.NoError(t, err)
	assert.Equal(t, "now", val)

	_, err = sess.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, sess.Destroy(t.Context()))
	assert.False(t, s.mr.Exists(user.SessionKey()))
}

func (s *RedisSessionSuite) TestDestroyByOtherConnector() {
	t := s.T()

	user := session.User{UID: 1003, Device: session.DevicePC}
	oldSess, _, err := NewRedisSessionBuilder(s.rdb, "c-1", 0).Build(t.Context(), user)
	require.NoError(t, err)

	// 用户在另一个 connector 上重新登录。
	_, created, err := NewRedisSessionBuilder(s.rdb, "c-2", 0).Build(t.Context(), user)
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, oldSess.Destroy(t.Context()))
	assert.True(t, s.mr.Exists(user.SessionKey()))
	assert.Equal(t, "c-2", s.mr.HGet(user.SessionKey(), FieldConnectorID))
}

func TestRedisSession(t *testing.T) {
	t.Parallel()

	suite.Run(t, new(RedisSessionSuite))
}
