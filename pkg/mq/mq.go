// Package mq 基于RabbitMQ的消息发布/订阅
//
// 订单事件发布到topic类型的Exchange,路由键即事件类型(order.placed等),
// 消费方按order.*订阅。消息持久化,发布端开启confirm模式等待broker确认。
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/bookstore/orderflow/pkg/tracing"
)

// ErrNotConfirmed broker拒绝了消息(nack)
var ErrNotConfirmed = errors.New("message not confirmed by broker")

// Publisher 消息发布者
// amqp.Channel不能并发发布,Publish内部串行化
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
	mu       sync.Mutex
}

// NewPublisher 连接RabbitMQ、声明持久化Exchange并开启confirm模式
func NewPublisher(url, exchange, exchangeType string, logger *zap.Logger) (*Publisher, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	if err := channel.Confirm(false); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("开启confirm模式失败: %w", err)
	}

	logger.Info("消息发布者已创建", zap.String("exchange", exchange), zap.String("type", exchangeType))
	return &Publisher{conn: conn, channel: channel, exchange: exchange, logger: logger}, nil
}

// Exchange 发布目标Exchange
func (p *Publisher) Exchange() string {
	return p.exchange
}

// Publish 发布JSON消息并等待broker确认
// 当前trace上下文写入消息头(traceparent),消费端据此续接链路
func (p *Publisher) Publish(ctx context.Context, routingKey string, message interface{}) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("消息序列化失败: %w", err)
	}

	headers := amqp.Table{}
	tracing.Inject(ctx, tracing.MapCarrier(headers))

	p.mu.Lock()
	confirm, err := p.channel.PublishWithDeferredConfirmWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			Headers:      headers,
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
		},
	)
	p.mu.Unlock()
	if err != nil {
		return fmt.Errorf("发布消息失败: %w", err)
	}

	ok, err := confirm.WaitContext(ctx)
	if err != nil {
		return fmt.Errorf("等待消息确认失败: %w", err)
	}
	if !ok {
		return ErrNotConfirmed
	}

	p.logger.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(body)))
	return nil
}

// Close 关闭发布者
func (p *Publisher) Close() error {
	return closeAll(p.channel, p.conn)
}

// Handler 消息处理函数,返回error时消息重新入队
// ctx携带从消息头恢复的上游trace上下文
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer 消息消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
}

// NewConsumer 声明持久化队列并按routingKeys绑定到Exchange
// topic Exchange支持通配符: * 匹配一个单词, # 匹配零个或多个单词
func NewConsumer(url, exchange, exchangeType, queue string, routingKeys []string, logger *zap.Logger) (*Consumer, error) {
	conn, channel, err := open(url, exchange, exchangeType)
	if err != nil {
		return nil, err
	}

	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		_ = closeAll(channel, conn)
		return nil, fmt.Errorf("声明Queue失败: %w", err)
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			_ = closeAll(channel, conn)
			return nil, fmt.Errorf("绑定Queue失败: %w", err)
		}
	}

	logger.Info("消息消费者已创建", zap.String("queue", q.Name), zap.Strings("routing_keys", routingKeys))
	return &Consumer{conn: conn, channel: channel, queue: q.Name, logger: logger}, nil
}

// Consume 阻塞消费直到ctx取消
// 手动ack:处理成功Ack,失败Nack并重新入队;prefetch=1保证多消费者负载均衡
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("消费者退出", zap.String("queue", c.queue))
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return errors.New("消息Channel已关闭")
			}
			msgCtx := tracing.Extract(ctx, tracing.MapCarrier(msg.Headers))
			if err := handler(msgCtx, msg.RoutingKey, msg.Body); err != nil {
				c.logger.Warn("消息处理失败,重新入队",
					zap.String("routing_key", msg.RoutingKey),
					zap.Error(err),
				)
				_ = msg.Nack(false, true)
				continue
			}
			_ = msg.Ack(false)
		}
	}
}

// Close 关闭消费者
func (c *Consumer) Close() error {
	return closeAll(c.channel, c.conn)
}

func open(url, exchange, exchangeType string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := channel.ExchangeDeclare(exchange, exchangeType, true, false, false, false, nil); err != nil {
		_ = closeAll(channel, conn)
		return nil, nil, fmt.Errorf("声明Exchange失败: %w", err)
	}
	return conn, channel, nil
}

func closeAll(channel *amqp.Channel, conn *amqp.Connection) error {
	var errs []error
	if channel != nil {
		if err := channel.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	if conn != nil {
		if err := conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
