package resp

import (
	"context"
	"log/slog"
	"time"
)

// route — зарегистрированная команда.
type route struct {
	// arity — число аргументов: >= 0 точно, < 0 — минимум -arity.
	arity   int
	handler HandlerFunc
}

// Mux маршрутизирует команды по имени.
type Mux struct {
	routes map[string]route
}

// NewMux создаёт пустой Mux.
func NewMux() *Mux {
	return &Mux{routes: make(map[string]route)}
}

// Handle регистрирует команду. arity — как в Redis: точное число аргументов
// или, если отрицательное, минимальное.
func (m *Mux) Handle(command string, arity int, h HandlerFunc) {
	m.routes[command] = route{arity: arity, handler: h}
}

// Commands возвращает имена зарегистрированных команд.
func (m *Mux) Commands() []string {
	out := make([]string, 0, len(m.routes))
	for name := range m.routes {
		out = append(out, name)
	}
	return out
}

// Serve — HandlerFunc для ServerConfig.Handler.
func (m *Mux) Serve(ctx context.Context, req *Request) Value {
	rt, ok := m.routes[req.Command]
	if !ok {
		return Errorf("UNKNOWN", "unknown command '%s'", req.Command)
	}

	n := len(req.Args)
	if (rt.arity >= 0 && n != rt.arity) || (rt.arity < 0 && n < -rt.arity) {
		return Errorf("ERR", "wrong number of arguments for '%s'", req.Command)
	}
	return rt.handler(ctx, req)
}

// Middleware — обёртка над HandlerFunc.
type Middleware func(HandlerFunc) HandlerFunc

// Chain применяет middleware: первый в списке — внешний.
func Chain(h HandlerFunc, middlewares ...Middleware) HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// Recovery перехватывает панику обработчика и отвечает ошибкой.
func Recovery(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) (reply Value) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"command", req.Command,
						"remote", req.Session.RemoteAddr,
						"error", err,
					)
					reply = Errorf("ERR", "internal server error")
				}
			}()
			return next(ctx, req)
		}
	}
}

// Logging логирует каждую команду (аргументы не пишутся: в них бывает вывод job).
func Logging(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *Request) Value {
			start := time.Now()
			reply := next(ctx, req)

			level := slog.LevelDebug
			if reply.Kind == KindError {
				level = slog.LevelWarn
			}
			logger.Log(ctx, level, "command",
				"command", req.Command,
				"args", len(req.Args),
				"remote", req.Session.RemoteAddr,
				"reply", replySummary(reply),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return reply
		}
	}
}

func replySummary(v Value) string {
	if v.Kind == KindBulk && !v.Null {
		return "bulk"
	}
	return v.String()
}
