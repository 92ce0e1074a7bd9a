package auth

import (
	"context"
	"fmt"

	"github.com/JrMarcco/connector/internal/pkg/session"
	"github.com/golang-jwt/jwt/v5"
)

var _ Validator = (*JwtValidator)(nil)

// Claims 为客户端 token 的载荷。
type Claims struct {
	jwt.RegisteredClaims

	UID int64 `json:"uid"`
}

// JwtValidator 只持有验签使用的公钥 ( 或 HMAC 密钥 )，不负责签发 token。
type JwtValidator struct {
	parser *jwt.Parser
	key    any
}

func (v *JwtValidator) Validate(_ context.Context, token string) (session.User, error) {
	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.key, nil
	}); err != nil {
		return session.User{}, err
	}

	if claims.UID <= 0 {
		return session.User{}, fmt.Errorf("%w: uid %d", ErrInvalidClaims, claims.UID)
	}
	return session.User{UID: claims.UID}, nil
}

// NewEd25519JwtValidator 使用 PEM 格式的 Ed25519 公钥创建 Validator。
func NewEd25519JwtValidator(publicKeyPEM string, issuer string) (*JwtValidator, error) {
	key, err := jwt.ParseEdPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ed25519 public key: %w", err)
	}
	return newJwtValidator(key, jwt.SigningMethodEdDSA.Alg(), issuer), nil
}

// NewHmacJwtValidator 使用 HS256 密钥创建 Validator，主要用于本地开发。
func NewHmacJwtValidator(secret string, issuer string) *JwtValidator {
	return newJwtValidator([]byte(secret), jwt.SigningMethodHS256.Alg(), issuer)
}

func newJwtValidator(key any, alg string, issuer string) *JwtValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{alg}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	return &JwtValidator{
		parser: jwt.NewParser(opts...),
		key:    key,
	}
}
