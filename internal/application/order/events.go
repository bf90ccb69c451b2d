package order

import (
	"context"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=events.go -destination=mock_events_test.go -package=order

// EventType 订单领域事件类型(同时作为消息路由键)
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderUpdated       EventType = "order.updated"
	EventOrderCancelled     EventType = "order.cancelled"
	EventOrderStatusChanged EventType = "order.status_changed"
)

// Event 订单领域事件
type Event struct {
	Type       EventType    `json:"type"`
	OrderID    string       `json:"order_id"`
	UserID     string       `json:"user_id"`
	Status     string       `json:"status"`
	Items      []ItemResult `json:"items,omitempty"`
	TotalPrice string       `json:"total_price"`
	OccurredAt time.Time    `json:"occurred_at"`
}

// EventPublisher 事件发布端口
// 事件在事务提交之后发布,发布失败只记录日志,不影响已提交的订单
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher 不发布任何事件(mq.enabled=false时使用)
type NopPublisher struct{}

// Publish 实现EventPublisher
func (NopPublisher) Publish(context.Context, Event) error { return nil }

func newEvent(t EventType, r *OrderResult) Event {
	return Event{
		Type:       t,
		OrderID:    r.ID,
		UserID:     r.UserID,
		Status:     r.Status,
		Items:      r.Items,
		TotalPrice: r.TotalPrice,
		OccurredAt: time.Now(),
	}
}

func publish(ctx context.Context, p EventPublisher, logger *zap.Logger, event Event) {
	if err := p.Publish(ctx, event); err != nil {
		logger.Warn("发布订单事件失败",
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}
