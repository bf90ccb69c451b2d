// Package messaging 订单领域事件的消息队列适配
package messaging

import (
	"context"
	"errors"

	"go.uber.org/zap"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/pkg/circuitbreaker"
	"github.com/bookstore/orderflow/pkg/metrics"
)

// Publisher 消息发布能力(由pkg/mq.Publisher实现)
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
	Exchange() string
}

// OrderEventPublisher 把订单事件发布到消息队列,路由键即事件类型
// broker持续不可用时熔断,事件直接丢弃并计数,不阻塞订单请求
type OrderEventPublisher struct {
	publisher Publisher
	breaker   *circuitbreaker.CircuitBreaker
	logger    *zap.Logger
}

// NewOrderEventPublisher 创建订单事件发布者
func NewOrderEventPublisher(publisher Publisher, logger *zap.Logger) *OrderEventPublisher {
	breaker := circuitbreaker.New("order-events", circuitbreaker.Config{
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("熔断器状态变化",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.RecordCircuitBreaker(name, "state_change", float64(to))
		},
	})
	return &OrderEventPublisher{publisher: publisher, breaker: breaker, logger: logger}
}

var _ orderapp.EventPublisher = (*OrderEventPublisher)(nil)

// Publish 实现orderapp.EventPublisher
func (p *OrderEventPublisher) Publish(ctx context.Context, event orderapp.Event) error {
	key := string(event.Type)
	err := p.breaker.Execute(func() error {
		return p.publisher.Publish(ctx, key, event)
	})

	result := "success"
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = "rejected"
	case err != nil:
		result = "failure"
	}
	metrics.RecordMessagePublished(p.publisher.Exchange(), key, result)
	return err
}
