package resp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"

	"github.com/shaiso/Conveyor/internal/telemetry"
)

// Request — разобранная команда от клиента.
type Request struct {
	// Command — имя команды в верхнем регистре.
	Command string

	// Args — аргументы без имени команды.
	Args [][]byte

	// Session — состояние соединения.
	Session *Session
}

// Arg возвращает i-й аргумент строкой.
func (r *Request) Arg(i int) string {
	return string(r.Args[i])
}

// Session — состояние одного клиентского соединения.
type Session struct {
	RemoteAddr    string
	Authenticated bool
}

// HandlerFunc обрабатывает команду и возвращает ответ.
type HandlerFunc func(ctx context.Context, req *Request) Value

// ServerConfig — конфигурация сервера.
type ServerConfig struct {
	// Addr — адрес прослушивания (для ListenAndServe).
	Addr string

	// SessionKey — общий ключ; пустой отключает аутентификацию.
	SessionKey string

	// Handler — обработчик команд (обычно Mux с middleware).
	Handler HandlerFunc

	// Logger — логгер.
	Logger *slog.Logger
}

// Server принимает соединения и обслуживает каждое в отдельной горутине.
// Команды одного соединения выполняются последовательно.
type Server struct {
	cfg    ServerConfig
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	closed   bool

	wg sync.WaitGroup
}

// NewServer создаёт сервер.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[net.Conn]struct{}),
	}
}

// ListenAndServe слушает cfg.Addr и обслуживает соединения до Close.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ln)
}

// Serve обслуживает соединения с ln. После Close возвращает ErrServerClosed.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		ln.Close()
		return ErrServerClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("resp server listening", "addr", ln.Addr().String())

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			return ErrServerClosed
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serveConn(conn)
		}()
	}
}

// Addr возвращает адрес listener'а (nil до Serve).
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close останавливает приём, отменяет блокирующие команды,
// закрывает соединения и ждёт их обработчики.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	return err
}

func (s *Server) serveConn(conn net.Conn) {
	session := &Session{
		RemoteAddr:    conn.RemoteAddr().String(),
		Authenticated: s.cfg.SessionKey == "",
	}
	r := NewReader(conn)
	w := NewWriter(conn)
	ctx := telemetry.WithLogger(s.ctx, s.logger.With("remote", session.RemoteAddr))

	for {
		args, err := r.ReadCommand()
		if err != nil {
			if errors.Is(err, ErrProtocol) {
				w.WriteValue(Errorf("ERR", "%v", err))
				w.Flush()
				s.logger.Warn("protocol error, closing connection", "remote", session.RemoteAddr, "error", err)
			} else if !errors.Is(err, io.EOF) && !s.isClosed() {
				s.logger.Debug("connection read failed", "remote", session.RemoteAddr, "error", err)
			}
			return
		}

		req := &Request{
			Command: strings.ToUpper(string(args[0])),
			Args:    args[1:],
			Session: session,
		}

		reply := s.dispatch(ctx, req)

		if err := w.WriteValue(reply); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			s.logger.Debug("connection write failed", "remote", session.RemoteAddr, "error", err)
			return
		}
	}
}

// dispatch обрабатывает AUTH/PING сам, остальное передаёт Handler'у.
func (s *Server) dispatch(ctx context.Context, req *Request) Value {
	switch req.Command {
	case CmdAuth:
		if len(req.Args) != 1 {
			return Errorf("ERR", "wrong number of arguments for '%s'", req.Command)
		}
		if s.cfg.SessionKey != "" &&
			subtle.ConstantTimeCompare(req.Args[0], []byte(s.cfg.SessionKey)) != 1 {
			req.Session.Authenticated = false
			return Errorf("NOAUTH", "invalid session key")
		}
		req.Session.Authenticated = true
		return OK()
	case CmdPing:
		return Simple("PONG")
	}

	if !req.Session.Authenticated {
		return Errorf("NOAUTH", "authentication required")
	}
	if s.cfg.Handler == nil {
		return Errorf("UNKNOWN", "unknown command '%s'", req.Command)
	}
	return s.cfg.Handler(ctx, req)
}

func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	conn.Close()
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
