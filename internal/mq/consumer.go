package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Handler — функция обработки сообщения.
// Ошибка логируется; сообщение всё равно подтверждается, события не повторяются.
type Handler func(ctx context.Context, msg *Delivery) error

// Delivery — доставленное сообщение.
type Delivery struct {
	// Message — распарсенный конверт.
	Message Message

	// RoutingKey — ключ, с которым сообщение было опубликовано.
	RoutingKey RoutingKey

	// Raw — сырое AMQP сообщение.
	Raw amqp.Delivery
}

// Consumer подписывается на события и передаёт их обработчику.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	bindings []RoutingKey
	handler  Handler
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Bindings — шаблоны routing key (default: job.*).
	Bindings []RoutingKey

	// Handler — обработчик сообщений.
	Handler Handler
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	bindings := cfg.Bindings
	if len(bindings) == 0 {
		bindings = []RoutingKey{BindAllJobs}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		bindings: bindings,
		handler:  cfg.Handler,
	}
}

// Start потребляет события до отмены ctx и возвращает ctx.Err().
//
// Подписка живёт на exclusive-очереди, которая умирает вместе с каналом,
// поэтому после переподключения она объявляется заново.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		deliveries, queue, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "bindings", c.bindings, "error", err)
		} else {
			c.logger.Info("consumer started", "queue", queue, "bindings", c.bindings)
			c.drain(ctx, deliveries)
			if ctx.Err() == nil {
				c.logger.Warn("deliveries channel closed", "queue", queue)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.Reconnected():
			c.logger.Info("reconnected, resubscribing")
		}
	}
}

// subscribe объявляет очередь подписки и начинает потребление.
func (c *Consumer) subscribe() (<-chan amqp.Delivery, string, error) {
	ch := c.conn.Channel()
	if ch == nil || ch.IsClosed() {
		return nil, "", ErrNoChannel
	}

	queue, err := declareSubscription(ch, c.bindings)
	if err != nil {
		return nil, "", err
	}

	deliveries, err := ch.Consume(
		queue, // queue
		"",    // consumer tag (auto-generated)
		true,  // auto-ack
		true,  // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return nil, "", fmt.Errorf("consume: %w", err)
	}

	return deliveries, queue, nil
}

// drain передаёт сообщения обработчику, пока канал открыт и ctx жив.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-deliveries:
			if !ok {
				return
			}
			c.handleDelivery(ctx, raw)
		}
	}
}

// handleDelivery обрабатывает одно сообщение.
func (c *Consumer) handleDelivery(ctx context.Context, raw amqp.Delivery) {
	delivery, err := decodeDelivery(raw.RoutingKey, raw.Body)
	if err != nil {
		c.logger.Error("failed to decode message",
			"routing_key", raw.RoutingKey,
			"error", err,
			"body", string(raw.Body),
		)
		return
	}
	delivery.Raw = raw

	c.logger.Debug("received message",
		"routing_key", raw.RoutingKey,
		"message_id", delivery.Message.ID,
	)

	if err := c.handler(ctx, delivery); err != nil {
		c.logger.Error("handler failed",
			"routing_key", raw.RoutingKey,
			"message_id", delivery.Message.ID,
			"error", err,
		)
	}
}

func decodeDelivery(routingKey string, body []byte) (*Delivery, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("unmarshal message: %w", err)
	}
	return &Delivery{Message: msg, RoutingKey: RoutingKey(routingKey)}, nil
}

// ParsePayload парсит payload сообщения в указанный тип.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	// Payload после json.Unmarshal — map[string]any.
	payloadBytes, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}

	if err := json.Unmarshal(payloadBytes, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}

	return result, nil
}
