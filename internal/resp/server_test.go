package resp

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startServer(t *testing.T, key string, mux *Mux) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := testLogger()
	srv := NewServer(ServerConfig{
		SessionKey: key,
		Handler:    Chain(mux.Serve, Recovery(logger), Logging(logger)),
		Logger:     logger,
	})
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })

	require.Eventually(t, func() bool { return srv.Addr() != nil }, time.Second, 5*time.Millisecond)
	return srv
}

func TestServer_AuthRequired(t *testing.T) {
	mux := NewMux()
	mux.Handle("ECHO", 1, func(_ context.Context, req *Request) Value {
		return Bulk(req.Args[0])
	})
	srv := startServer(t, "secret", mux)
	ctx := context.Background()

	// без ключа: PING работает, остальное — NOAUTH
	anon, err := Dial(ctx, ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	defer anon.Close()

	require.NoError(t, anon.Ping(ctx))
	_, err = anon.Do(ctx, "ECHO", "hi")
	assert.True(t, IsCode(err, "NOAUTH"), "got %v", err)

	// неверный ключ
	_, err = Dial(ctx, ClientConfig{Addr: srv.Addr().String(), SessionKey: "wrong"})
	assert.True(t, IsCode(err, "NOAUTH"), "got %v", err)

	// верный ключ
	c, err := Dial(ctx, ClientConfig{Addr: srv.Addr().String(), SessionKey: "secret"})
	require.NoError(t, err)
	defer c.Close()

	v, err := c.Do(ctx, "echo", "hi")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(v.Bulk))
}

func TestServer_UnknownCommandAndArity(t *testing.T) {
	mux := NewMux()
	mux.Handle("TAGS", -1, func(_ context.Context, req *Request) Value {
		return Integer(int64(len(req.Args)))
	})
	srv := startServer(t, "", mux)
	ctx := context.Background()

	c, err := Dial(ctx, ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Do(ctx, "NOPE")
	assert.True(t, IsCode(err, "UNKNOWN"))

	_, err = c.Do(ctx, "TAGS")
	assert.True(t, IsCode(err, "ERR"))

	v, err := c.Do(ctx, "TAGS", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Int)
}

func TestServer_RecoversPanics(t *testing.T) {
	mux := NewMux()
	mux.Handle("BOOM", 0, func(context.Context, *Request) Value {
		panic("boom")
	})
	srv := startServer(t, "", mux)
	ctx := context.Background()

	c, err := Dial(ctx, ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Do(ctx, "BOOM")
	assert.True(t, IsCode(err, "ERR"))

	// соединение остаётся рабочим
	require.NoError(t, c.Ping(ctx))
}

func TestServer_CloseCancelsBlockingHandlers(t *testing.T) {
	mux := NewMux()
	mux.Handle("BLOCK", 0, func(ctx context.Context, _ *Request) Value {
		<-ctx.Done()
		return NullBulk()
	})
	srv := startServer(t, "", mux)

	c, err := Dial(context.Background(), ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		c.Do(context.Background(), "BLOCK")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, srv.Close())

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking call did not return after server close")
	}
}

func TestClient_ContextCancelInterruptsCall(t *testing.T) {
	mux := NewMux()
	mux.Handle("SLOW", 0, func(ctx context.Context, _ *Request) Value {
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
		}
		return OK()
	})
	srv := startServer(t, "", mux)

	c, err := Dial(context.Background(), ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = c.Do(ctx, "SLOW")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_ClosedClient(t *testing.T) {
	srv := startServer(t, "", NewMux())

	c, err := Dial(context.Background(), ClientConfig{Addr: srv.Addr().String()})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, err = c.Do(context.Background(), "PING")
	assert.ErrorIs(t, err, ErrClosed)
}
