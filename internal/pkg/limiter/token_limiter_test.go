package limiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestTokenLimiter(t *testing.T) {
	t.Parallel()

	l, err := NewTokenLimiter(TokenLimiterConfig{
		InitCapacity:     2,
		MaxCapacity:      4,
		IncreaseStep:     2,
		IncreaseInterval: 10 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	assert.True(t, l.Acquire())
	assert.True(t, l.Acquire())
	assert.False(t, l.Acquire())

	assert.True(t, l.Release())
	assert.True(t, l.Acquire())

	// 扩容到最大容量后 Start 返回。
	l.Start(t.Context())
	assert.EqualValues(t, 4, l.Cap())
	assert.True(t, l.Acquire())
	assert.True(t, l.Acquire())
	assert.False(t, l.Acquire())
}

func TestTokenLimiterConfig_Validate(t *testing.T) {
	t.Parallel()

	tcs := []struct {
		name string
		cfg  TokenLimiterConfig
	}{
		{name: "zero init", cfg: TokenLimiterConfig{MaxCapacity: 1, IncreaseStep: 1, IncreaseInterval: time.Second}},
		{name: "init over max", cfg: TokenLimiterConfig{InitCapacity: 2, MaxCapacity: 1, IncreaseStep: 1, IncreaseInterval: time.Second}},
		{name: "zero step", cfg: TokenLimiterConfig{InitCapacity: 1, MaxCapacity: 2, IncreaseInterval: time.Second}},
		{name: "zero interval", cfg: TokenLimiterConfig{InitCapacity: 1, MaxCapacity: 2, IncreaseStep: 1}},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTokenLimiter(tc.cfg, zap.NewNop())
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}
