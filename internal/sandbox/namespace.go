package sandbox

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"time"
)

// unshareFlags — новые mount и PID namespace, свой /proc;
// --kill-child убивает задачу вместе с unshare.
var unshareFlags = []string{"--mount", "--pid", "--fork", "--mount-proc", "--kill-child"}

// probeTimeout — ограничение на пробный запуск unshare.
const probeTimeout = 5 * time.Second

// Namespace — запуск через unshare(1).
type Namespace struct {
	unshare string
}

// NewNamespace находит unshare. Работоспособность не проверяет, см. Detect.
func NewNamespace() (*Namespace, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("%w: namespaces require linux, running on %s", ErrSpawn, runtime.GOOS)
	}
	path, err := exec.LookPath("unshare")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return &Namespace{unshare: path}, nil
}

// Name возвращает KindNamespace.
func (n *Namespace) Name() Kind {
	return KindNamespace
}

// Run запускает команду внутри новых namespace.
func (n *Namespace) Run(ctx context.Context, c Command) (*Output, error) {
	path, err := resolve(c.Path)
	if err != nil {
		return nil, err
	}

	args := make([]string, 0, len(unshareFlags)+1+len(c.Args))
	args = append(args, unshareFlags...)
	args = append(args, path)
	args = append(args, c.Args...)

	return run(ctx, n.unshare, args, c)
}

// Detect выбирает Namespace, если unshare есть и пробный запуск проходит
// (нужны права на создание namespace), иначе Process.
func Detect(ctx context.Context, logger *slog.Logger) Sandbox {
	if logger == nil {
		logger = slog.Default()
	}

	ns, err := NewNamespace()
	if err != nil {
		logger.Info("namespace sandbox unavailable, using plain process", "reason", err)
		return NewProcess()
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out, err := ns.Run(probeCtx, Command{Path: "true"})
	if err != nil {
		logger.Info("namespace sandbox probe failed, using plain process", "reason", err)
		return NewProcess()
	}
	if !out.Success() {
		logger.Info("namespace sandbox probe failed, using plain process",
			"exit_code", out.ExitCode,
			"stderr", string(out.Stderr),
		)
		return NewProcess()
	}

	logger.Info("using namespace sandbox", "unshare", ns.unshare)
	return ns
}
