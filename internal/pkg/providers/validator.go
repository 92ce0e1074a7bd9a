package providers

import (
	"fmt"

	"github.com/JrMarcco/connector/internal/pkg/auth"
	"github.com/spf13/viper"
)

func newValidator() (*auth.JwtValidator, error) {
	type config struct {
		Algorithm string `mapstructure:"algorithm"` // "ed25519" or "hmac"
		Issuer    string `mapstructure:"issuer"`
		Public    string `mapstructure:"public"`
		Secret    string `mapstructure:"secret"`
	}

	cfg := config{Algorithm: "ed25519"}
	if err := viper.UnmarshalKey("jwt", &cfg); err != nil {
		return nil, err
	}

	// 这里只需要验签，不需要私钥。
	switch cfg.Algorithm {
	case "ed25519":
		return auth.NewEd25519JwtValidator(cfg.Public, cfg.Issuer)
	case "hmac":
		if cfg.Secret == "" {
			return nil, fmt.Errorf("jwt secret is required for hmac")
		}
		return auth.NewHmacJwtValidator(cfg.Secret, cfg.Issuer), nil
	default:
		return nil, fmt.Errorf("unsupported jwt algorithm: %s, expected 'ed25519' or 'hmac'", cfg.Algorithm)
	}
}
