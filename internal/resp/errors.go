package resp

import (
	"errors"
	"strings"
)

var (
	// ErrProtocol — кадр нарушает формат протокола.
	ErrProtocol = errors.New("protocol violation")

	// ErrClosed — клиент уже закрыт.
	ErrClosed = errors.New("client closed")

	// ErrUnexpectedReply — тип ответа не тот, что ожидала команда.
	ErrUnexpectedReply = errors.New("unexpected reply type")

	// ErrServerClosed — Serve вызван после Close.
	ErrServerClosed = errors.New("server closed")
)

// Error — ответ сервера с префиксом '-'.
// Code — первое слово сообщения (ERR, NOTFOUND, NOAUTH ...).
type Error struct {
	Message string
}

// Error реализует интерфейс error.
func (e *Error) Error() string {
	return e.Message
}

// Code возвращает код ошибки (первое слово).
func (e *Error) Code() string {
	code, _, _ := strings.Cut(e.Message, " ")
	return code
}

// IsCode проверяет, что err — ошибка сервера с указанным кодом.
func IsCode(err error, code string) bool {
	var rerr *Error
	return errors.As(err, &rerr) && rerr.Code() == code
}
