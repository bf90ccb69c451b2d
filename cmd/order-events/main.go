// order-events 订阅订单领域事件并写入日志
//
// 队列绑定order.#,收到下单、改单、取消、状态变更事件后按事件类型输出结构化日志,
// 可作为对账、通知等下游服务的起点。
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	orderapp "github.com/bookstore/orderflow/internal/application/order"
	"github.com/bookstore/orderflow/internal/infrastructure/config"
	"github.com/bookstore/orderflow/internal/infrastructure/logger"
	"github.com/bookstore/orderflow/pkg/mq"
	"github.com/bookstore/orderflow/pkg/tracing"
)

const queueName = "bookstore.order-events.audit"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Error("消费者异常退出", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-events", cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			return err
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, "topic", queueName, []string{"order.#"}, zl)
	if err != nil {
		return err
	}
	defer func() {
		if err := consumer.Close(); err != nil {
			zl.Warn("关闭消费者失败", zap.Error(err))
		}
	}()

	return consumer.Consume(ctx, handleEvent(zl))
}

// handleEvent 无法解析的消息直接确认丢弃,重新入队只会无限循环
func handleEvent(zl *zap.Logger) mq.Handler {
	return func(ctx context.Context, routingKey string, body []byte) error {
		ctx, span := tracing.StartSpan(ctx, "bookstore/order-events", "Consume "+routingKey)
		defer span.End()

		var event orderapp.Event
		if err := json.Unmarshal(body, &event); err != nil {
			zl.Error("订单事件格式错误,已丢弃",
				zap.String("routing_key", routingKey),
				zap.ByteString("body", body),
				zap.Error(err),
			)
			return nil
		}
		if string(event.Type) != routingKey {
			zl.Warn("路由键与事件类型不一致",
				zap.String("routing_key", routingKey),
				zap.String("type", string(event.Type)),
			)
		}

		zl.Info("订单事件",
			zap.String("type", string(event.Type)),
			zap.String("order_id", event.OrderID),
			zap.String("user_id", event.UserID),
			zap.String("status", event.Status),
			zap.Int("item_count", len(event.Items)),
			zap.String("total_price", event.TotalPrice),
			zap.Time("occurred_at", event.OccurredAt),
			zap.String("trace_id", tracing.ExtractTraceID(ctx)),
		)
		return nil
	}
}
