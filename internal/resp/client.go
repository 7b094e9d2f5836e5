package resp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"
)

const (
	defaultDialTimeout = 5 * time.Second
	defaultCallTimeout = 30 * time.Second
)

// ClientConfig — параметры подключения.
type ClientConfig struct {
	// Addr — адрес сервера host:port.
	Addr string

	// SessionKey — общий ключ сессии; если задан, после подключения выполняется AUTH.
	SessionKey string

	// DialTimeout — таймаут установки соединения (по умолчанию 5s).
	DialTimeout time.Duration

	// CallTimeout — таймаут одного запроса, если в ctx нет дедлайна (по умолчанию 30s).
	CallTimeout time.Duration
}

// Client — одно соединение с сервером.
//
// Запросы на одном Client выполняются строго по очереди. Для параллельной
// работы (heartbeat на фоне блокирующего fetch) используйте Clone —
// он открывает отдельное соединение с теми же параметрами.
type Client struct {
	cfg ClientConfig

	mu     sync.Mutex
	conn   net.Conn
	r      *Reader
	w      *Writer
	closed bool
}

// Dial подключается к серверу и аутентифицируется.
func Dial(ctx context.Context, cfg ClientConfig) (*Client, error) {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}

	c := &Client{cfg: cfg}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.connectLocked(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Clone открывает новое соединение с теми же параметрами.
func (c *Client) Clone(ctx context.Context) (*Client, error) {
	return Dial(ctx, c.cfg)
}

// Addr возвращает адрес сервера.
func (c *Client) Addr() string {
	return c.cfg.Addr
}

// Do отправляет команду и читает ответ. Ответ '-' возвращается как *Error.
func (c *Client) Do(ctx context.Context, args ...string) (Value, error) {
	return c.do(ctx, 0, args...)
}

// do выполняет команду; extra расширяет дедлайн для блокирующих команд.
func (c *Client) do(ctx context.Context, extra time.Duration, args ...string) (Value, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return Value{}, ErrClosed
	}
	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return Value{}, err
		}
	}

	v, err := c.roundTripLocked(ctx, extra, args)
	if err != nil {
		if _, isReply := err.(*Error); !isReply {
			// Состояние потока неизвестно: следующий вызов переподключится.
			c.dropLocked()
		}
		return Value{}, err
	}
	return v, nil
}

// Close закрывает соединение. Повторные вызовы безопасны.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

func (c *Client) connectLocked(ctx context.Context) error {
	dialer := net.Dialer{Timeout: c.cfg.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.cfg.Addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.cfg.Addr, err)
	}

	c.conn = conn
	c.r = NewReader(conn)
	c.w = NewWriter(conn)

	if c.cfg.SessionKey != "" {
		if _, err := c.roundTripLocked(ctx, 0, []string{"AUTH", c.cfg.SessionKey}); err != nil {
			c.dropLocked()
			return fmt.Errorf("authenticate: %w", err)
		}
	}
	return nil
}

func (c *Client) roundTripLocked(ctx context.Context, extra time.Duration, args []string) (Value, error) {
	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.cfg.CallTimeout)
	}
	deadline = deadline.Add(extra)
	if err := c.conn.SetDeadline(deadline); err != nil {
		return Value{}, fmt.Errorf("set deadline: %w", err)
	}

	// Отмена ctx прерывает ожидание ответа.
	conn := c.conn
	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})
	defer stop()

	frames := make([][]byte, len(args))
	for i, a := range args {
		frames[i] = []byte(a)
	}
	if err := c.w.WriteCommand(frames...); err != nil {
		return Value{}, fmt.Errorf("write %s: %w", args[0], err)
	}
	if err := c.w.Flush(); err != nil {
		return Value{}, fmt.Errorf("write %s: %w", args[0], err)
	}

	v, err := c.r.ReadReply()
	if err != nil {
		if _, isReply := err.(*Error); isReply {
			return Value{}, err
		}
		if ctx.Err() != nil {
			return Value{}, fmt.Errorf("read %s: %w", args[0], ctx.Err())
		}
		return Value{}, fmt.Errorf("read %s: %w", args[0], err)
	}
	return v, nil
}

func (c *Client) dropLocked() {
	if c.conn != nil {
		c.conn.Close()
	}
	c.conn = nil
	c.r = nil
	c.w = nil
}
