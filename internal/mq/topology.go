package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Exchange — тип для имени обменника.
type Exchange string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

// ExchangeEvents — topic-обменник событий жизненного цикла job.
const ExchangeEvents Exchange = "conveyor.events"

// BindAllJobs — привязка ко всем событиям job.
const BindAllJobs RoutingKey = "job.*"

// JobRoutingKey возвращает ключ события: job.<status>.
func JobRoutingKey(status domain.JobStatus) RoutingKey {
	return RoutingKey("job." + string(status))
}

// SetupTopology объявляет обменник событий.
// Очереди создают потребители: каждый получает свою exclusive-очередь.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, declareExchange)
}

func declareExchange(ch *amqp.Channel) error {
	err := ch.ExchangeDeclare(
		string(ExchangeEvents), // name
		"topic",                // type
		true,                   // durable
		false,                  // auto-deleted
		false,                  // internal
		false,                  // no-wait
		nil,                    // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
	}
	return nil
}

// declareSubscription создаёт временную очередь с именем от брокера
// и привязывает её к обменнику событий.
func declareSubscription(ch *amqp.Channel, bindings []RoutingKey) (string, error) {
	if err := declareExchange(ch); err != nil {
		return "", err
	}

	q, err := ch.QueueDeclare(
		"",    // name: выдаёт брокер
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return "", fmt.Errorf("declare subscription queue: %w", err)
	}

	for _, key := range bindings {
		if err := ch.QueueBind(q.Name, string(key), string(ExchangeEvents), false, nil); err != nil {
			return "", fmt.Errorf("bind %s to %s: %w", q.Name, key, err)
		}
	}
	return q.Name, nil
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Conveyor RabbitMQ Topology:

    conveyor.events (topic)
    ├── job.ready | job.running | job.completed | job.failed | job.cancelled
    │       Publisher: conveyor-server (orchestrator)
    └── <exclusive queue> [binding: job.*]
            Consumer: conveyor watch
  `
}
