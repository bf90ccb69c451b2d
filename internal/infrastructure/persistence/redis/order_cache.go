package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/pkg/circuitbreaker"
	"github.com/bookstore/orderflow/pkg/metrics"
)

// Key设计(花括号为hash tag,两个key落在同一slot,脚本在集群模式下可用):
//   order:{id}       订单详情JSON
//   order:gen:{id}   失效代数,每次Invalidate自增;未命中时读出作为Lease
func orderKey(orderID string) string { return "order:{" + orderID + "}" }
func genKey(orderID string) string   { return "order:gen:{" + orderID + "}" }

// fillScript 代数未变才回填,读库期间被删除过的旧值不会写回
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or '0'
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// invalidateScript 删除缓存并推进代数
var invalidateScript = redis.NewScript(`
redis.call('DEL', KEYS[1])
redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ARGV[1])
return 1
`)

// OrderCache 订单详情读缓存(cache-aside)
// Redis故障时熔断器打开,Get直接返回错误,由调用方降级查库
// 删除失败的订单记入pending,恢复后先补删再读,避免读到提交前的旧值
type OrderCache struct {
	client  redis.UniversalClient
	ttl     time.Duration
	genTTL  time.Duration
	breaker *circuitbreaker.CircuitBreaker
	pending sync.Map // orderID → struct{}
}

// NewOrderCache 创建订单缓存
func NewOrderCache(client redis.UniversalClient, cfg config.CacheConfig, logger *zap.Logger) *OrderCache {
	ttl := cfg.OrderTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	maxFailures := uint32(5)
	if cfg.BreakerMaxFailures > 0 {
		maxFailures = uint32(cfg.BreakerMaxFailures)
	}

	breaker := circuitbreaker.New("order-cache", circuitbreaker.Config{
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.RecordCircuitBreaker(name, "state_change", float64(to))
		},
	})

	// 代数必须比任何一次读库窗口都活得久,否则过期归零会让旧Lease重新生效
	return &OrderCache{client: client, ttl: ttl, genTTL: ttl + time.Hour, breaker: breaker}
}

var _ orderapp.Cache = (*OrderCache)(nil)

// Get 读取缓存,未命中时返回当前代数作为Lease
func (c *OrderCache) Get(ctx context.Context, orderID string) (*orderapp.OrderResult, orderapp.Lease, bool, error) {
	if _, dirty := c.pending.Load(orderID); dirty {
		if err := c.Invalidate(ctx, orderID); err != nil {
			return nil, "", false, err
		}
	}

	var values []interface{}
	err := c.execute(func() error {
		var err error
		values, err = c.client.MGet(ctx, orderKey(orderID), genKey(orderID)).Result()
		return err
	})
	if err != nil {
		return nil, "", false, err
	}

	lease := orderapp.Lease("0")
	if gen, ok := values[1].(string); ok {
		lease = orderapp.Lease(gen)
	}

	data, ok := values[0].(string)
	if !ok {
		return nil, lease, false, nil
	}

	var result orderapp.OrderResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		// 脏数据直接删除,按未命中处理;删除推进了代数,本次不再回填
		_ = c.Invalidate(ctx, orderID)
		return nil, lease, false, nil
	}
	return &result, lease, true, nil
}

// Fill 凭Lease回填,代数已变化时放弃
func (c *OrderCache) Fill(ctx context.Context, result *orderapp.OrderResult, lease orderapp.Lease) (bool, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return false, err
	}

	var filled int64
	err = c.execute(func() error {
		var err error
		filled, err = fillScript.Run(ctx, c.client,
			[]string{orderKey(result.ID), genKey(result.ID)},
			string(lease), data, c.ttl.Milliseconds(),
		).Int64()
		return err
	})
	if err != nil {
		return false, err
	}
	return filled == 1, nil
}

// Invalidate 删除缓存并推进代数(写操作提交后调用)
// 失败时记入pending,下一次Get先补删
func (c *OrderCache) Invalidate(ctx context.Context, orderID string) error {
	err := c.execute(func() error {
		return invalidateScript.Run(ctx, c.client,
			[]string{orderKey(orderID), genKey(orderID)},
			c.genTTL.Milliseconds(),
		).Err()
	})
	if err != nil {
		c.pending.Store(orderID, struct{}{})
		return err
	}
	c.pending.Delete(orderID)
	return nil
}

func (c *OrderCache) execute(fn func() error) error {
	err := c.breaker.Execute(fn)
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.RecordCircuitBreaker(c.breaker.Name(), "rejected", float64(c.breaker.State()))
	case err != nil && !errors.Is(err, redis.Nil):
		metrics.RecordCircuitBreaker(c.breaker.Name(), "failure", float64(c.breaker.State()))
	}
	return err
}
