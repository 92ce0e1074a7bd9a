package auth

import (
	"context"
	"errors"

	"github.com/JrMarcco/connector/internal/pkg/session"
)

//go:generate mockgen -source=types.go -destination=mock/validator.mock.go -package=authmock -typed Validator

var ErrInvalidClaims = errors.New("invalid token claims")

// Validator 校验客户端 token 并解析出用户信息。
type Validator interface {
	Validate(ctx context.Context, token string) (session.User, error)
}
