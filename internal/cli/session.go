package cli

import (
	"context"

	"github.com/shaiso/Conveyor/internal/resp"
)

// SessionFunc открывает соединение с сервером по протоколу воркеров.
type SessionFunc func(ctx context.Context) (*resp.Client, error)

// Dialer возвращает SessionFunc для addr и ключа сессии.
func Dialer(addr, sessionKey string) SessionFunc {
	return func(ctx context.Context) (*resp.Client, error) {
		return resp.Dial(ctx, resp.ClientConfig{Addr: addr, SessionKey: sessionKey})
	}
}

// withSession открывает соединение на время fn.
func withSession(ctx context.Context, sessionFn SessionFunc, fn func(c *resp.Client) error) error {
	c, err := sessionFn(ctx)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
