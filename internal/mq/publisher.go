package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Conveyor/internal/domain"
)

// MessageType — тип сообщения; совпадает с routing key.
type MessageType string

// Message — конверт сообщения.
type Message struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// JobEvent — payload события о смене статуса job.
type JobEvent struct {
	JobID      string           `json:"job_id"`
	PlanID     string           `json:"plan_id"`
	ActionID   string           `json:"action_id"`
	TaskNumber uint32           `json:"task_number"`
	Status     domain.JobStatus `json:"status"`
	WorkerID   string           `json:"worker_id,omitempty"`
	ExitCode   *int             `json:"exit_code,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// NewJobEvent снимает событие с текущего состояния job.
func NewJobEvent(job *domain.Job) JobEvent {
	return JobEvent{
		JobID:      job.ID,
		PlanID:     job.PlanID,
		ActionID:   job.ActionID,
		TaskNumber: job.TaskNumber,
		Status:     job.Status,
		WorkerID:   job.WorkerID,
		ExitCode:   job.ExitCode,
		Error:      job.Error,
	}
}

// Publisher публикует события в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false, // mandatory: без подписчиков событие просто теряется
			false,
			amqp.Publishing{
				ContentType: "application/json",
				MessageId:   msg.ID,
				Timestamp:   msg.Timestamp,
				Body:        body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
		)
		return nil
	})
}

// PublishJobEvent публикует job.<status>.
func (p *Publisher) PublishJobEvent(ctx context.Context, job *domain.Job) error {
	key, msg := jobMessage(job, time.Now().UTC())
	return p.Publish(ctx, ExchangeEvents, key, msg)
}

func jobMessage(job *domain.Job, now time.Time) (RoutingKey, *Message) {
	key := JobRoutingKey(job.Status)
	return key, &Message{
		ID:        uuid.NewString(),
		Type:      MessageType(key),
		Payload:   NewJobEvent(job),
		Timestamp: now,
	}
}
