package redis

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/pkg/circuitbreaker"
)

// unreachableClient 指向无人监听的端口,每次命令都立即连接失败
func unreachableClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestOrderCache_BreakerOpensWhenRedisDown(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cache := NewOrderCache(unreachableClient(t), config.CacheConfig{
		OrderTTL:           time.Minute,
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
	}, zap.New(core))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, _, hit, err := cache.Get(ctx, "o-1")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, circuitbreaker.ErrOpenState)
		assert.False(t, hit)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cache.breaker.State())

	_, _, _, err := cache.Get(ctx, "o-1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState, "熔断后不再访问Redis")

	filled, err := cache.Fill(ctx, &orderapp.OrderResult{ID: "o-1"}, "0")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.False(t, filled)

	require.Equal(t, 1, logs.FilterMessage("熔断器状态变化").Len())
}

func TestOrderCache_DefaultsWhenUnset(t *testing.T) {
	cache := NewOrderCache(unreachableClient(t), config.CacheConfig{}, zap.NewNop())
	assert.Equal(t, 10*time.Minute, cache.ttl)

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_ = cache.Invalidate(ctx, "o-1")
	}
	assert.Equal(t, circuitbreaker.StateClosed, cache.breaker.State(), "默认连续失败5次才熔断")
}

func TestOrderCache_FailedInvalidateBlocksCachedReads(t *testing.T) {
	cache := NewOrderCache(unreachableClient(t), config.CacheConfig{
		OrderTTL:           time.Minute,
		BreakerMaxFailures: 1,
		BreakerTimeout:     time.Minute,
	}, zap.NewNop())
	ctx := context.Background()

	require.Error(t, cache.Invalidate(ctx, "o-1"))
	_, pending := cache.pending.Load("o-1")
	assert.True(t, pending, "删除失败的订单记入pending")

	_, _, hit, err := cache.Get(ctx, "o-1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState, "补删失败时不读缓存")
	assert.False(t, hit)
}

func TestOrderCache_KeysShareHashSlot(t *testing.T) {
	assert.Equal(t, "order:{o-1}", orderKey("o-1"))
	assert.Equal(t, "order:gen:{o-1}", genKey("o-1"))
}
