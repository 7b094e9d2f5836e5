package mq

import "errors"

var (
	// ErrNoChannel — канала нет: соединение переподключается.
	ErrNoChannel = errors.New("no amqp channel available")

	// ErrClosed — Connection уже закрыт.
	ErrClosed = errors.New("amqp connection closed")
)
