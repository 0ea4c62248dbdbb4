package sequencerepo

import (
	"context"
	"errors"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/cache"
	"stockdesk/internal/pkg/logger"
)

// RedisStore usa INCR, que é atômico entre todas as instâncias que compartilham o Redis.
type RedisStore struct {
	cache  cache.Client
	prefix string
	logger logger.Logger
}

// NewRedisStore cria o armazenamento. As chaves ficam sob "sequence:<key>".
func NewRedisStore(c cache.Client, log logger.Logger) *RedisStore {
	return &RedisStore{cache: c, prefix: "sequence:", logger: log}
}

func (s *RedisStore) Next(ctx context.Context, key string) (int64, error) {
	n, err := s.cache.Incr(ctx, s.prefix+key)
	if err != nil {
		s.logger.Error("Falha ao incrementar sequência no Redis.", err)
		return 0, apperror.NewInternalError("Falha ao gerar número de documento (Redis)", err)
	}
	return n, nil
}

func (s *RedisStore) Last(ctx context.Context, key string) (int64, error) {
	n, err := s.cache.GetInt(ctx, s.prefix+key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return 0, nil
	}
	if err != nil {
		return 0, apperror.NewInternalError("Falha ao ler sequência do Redis", err)
	}
	return int64(n), nil
}
