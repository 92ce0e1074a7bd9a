package providers

import (
	"time"

	"github.com/JrMarcco/connector/internal/pkg/idgen"
	redissession "github.com/JrMarcco/connector/internal/pkg/session/redis"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
)

const defaultSessionExpiration = 24 * time.Hour

func newSessionBuilder(rdb redis.Cmdable) (*redissession.RedisSessionBuilder, error) {
	type config struct {
		Expiration time.Duration `mapstructure:"expiration"`
	}

	cfg := config{Expiration: defaultSessionExpiration}
	if err := viper.UnmarshalKey("connector.session", &cfg); err != nil {
		return nil, err
	}

	return redissession.NewRedisSessionBuilder(rdb, idgen.ConnectorID(), cfg.Expiration), nil
}
