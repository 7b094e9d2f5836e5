// Package mq публикует события жизненного цикла job в RabbitMQ.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — обменник conveyor.events и временные очереди подписки
//   - publisher.go  — публикация job.<status> (Publisher реализует
//     orchestrator.EventPublisher)
//   - consumer.go   — подписка на события (CLI watch)
//
// Routing keys: job.ready, job.running, job.completed, job.failed,
// job.cancelled. Payload — JobEvent.
//
// События — уведомления: источник истины остаётся в KV-хранилище.
// Потерянное событие ничего не ломает, поэтому сообщения не persistent
// и подписчики используют auto-ack.
package mq
