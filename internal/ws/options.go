package ws

import (
	"github.com/JrMarcco/connector/internal/pkg/limiter"
	"github.com/JrMarcco/jit/bean/option"
	"github.com/cenkalti/backoff/v5"
)

func SvrWithConnLimiter(connLimiter *limiter.TokenLimiter) option.Opt[Server] {
	return func(s *Server) {
		s.connLimiter = connLimiter
	}
}

func SvrWithBackoff(bo *backoff.ExponentialBackOff) option.Opt[Server] {
	return func(s *Server) {
		s.backoff = bo
	}
}
