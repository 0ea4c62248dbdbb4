package sequencerepo_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperror "stockdesk/internal/errors"
	"stockdesk/internal/pkg/cache"
	"stockdesk/internal/pkg/logger"
	"stockdesk/internal/repository/sequencerepo"
)

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *MockCache) GetInt(ctx context.Context, key string) (int, error) {
	args := m.Called(ctx, key)
	return args.Int(0), args.Error(1)
}
func (m *MockCache) Set(ctx context.Context, key string, value interface{}, exp time.Duration) error {
	return m.Called(ctx, key, value, exp).Error(0)
}
func (m *MockCache) Incr(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockCache) Expire(ctx context.Context, key string, exp time.Duration) error {
	return m.Called(ctx, key, exp).Error(0)
}
func (m *MockCache) Delete(ctx context.Context, key string) error { return m.Called(ctx, key).Error(0) }
func (m *MockCache) Close() error                                 { return m.Called().Error(0) }

func TestRedisStore_Next(t *testing.T) {
	c := new(MockCache)
	c.On("Incr", mock.Anything, "sequence:lastBillNumber").Return(int64(5), nil).Once()

	store := sequencerepo.NewRedisStore(c, logger.NewNop())
	n, err := store.Next(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	c.AssertExpectations(t)
}

func TestRedisStore_NextError(t *testing.T) {
	c := new(MockCache)
	c.On("Incr", mock.Anything, "sequence:lastBillNumber").Return(int64(0), errors.New("connection refused"))

	store := sequencerepo.NewRedisStore(c, logger.NewNop())
	_, err := store.Next(context.Background(), key)

	var internal *apperror.InternalError
	assert.ErrorAs(t, err, &internal)
}

func TestRedisStore_LastMissingKey(t *testing.T) {
	c := new(MockCache)
	c.On("GetInt", mock.Anything, "sequence:lastBillNumber").Return(0, cache.ErrCacheMiss)

	store := sequencerepo.NewRedisStore(c, logger.NewNop())
	n, err := store.Last(context.Background(), key)

	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

// Integração: roda apenas com TEST_REDIS_ADDR apontando para um Redis acessível.
func TestRedisStore_Integration(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR não definido")
	}

	client := cache.NewRedisClient(addr)
	defer client.Close()
	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		t.Skipf("Redis indisponível em %s: %v", addr, err)
	}

	k := "test-" + time.Now().Format("150405.000000")
	defer client.Delete(ctx, "sequence:"+k)

	store := sequencerepo.NewRedisStore(client, logger.NewNop())
	first, err := store.Next(ctx, k)
	require.NoError(t, err)
	second, err := store.Next(ctx, k)
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)

	last, err := store.Last(ctx, k)
	require.NoError(t, err)
	assert.Equal(t, int64(2), last)
}
