package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// Kind — вариант sandbox.
type Kind string

const (
	KindAuto      Kind = "auto"
	KindNamespace Kind = "namespace"
	KindPlain     Kind = "plain"
)

// waitDelay — сколько ждать закрытия pipe'ов после остановки процесса.
// Внуки (sh -c "sleep 10") держат stdout открытым дольше родителя.
const waitDelay = 500 * time.Millisecond

// Command — что запустить.
type Command struct {
	// Path — имя или путь исполняемого файла; ищется в PATH воркера.
	Path string

	Args []string

	// Env — полное окружение ребёнка в виде KEY=VALUE.
	Env []string

	// Stdin — входные данные; nil — пустой stdin.
	Stdin []byte
}

// Output — нормализованный результат процесса.
type Output struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Success возвращает true при нулевом коде выхода.
func (o *Output) Success() bool {
	return o.ExitCode == 0
}

// Sandbox запускает команду и ждёт её завершения.
//
// Ненулевой код выхода — не ошибка, он возвращается в Output.
// Ошибка означает, что процесс не запустился (ErrSpawn) или прерван через ctx.
type Sandbox interface {
	Name() Kind
	Run(ctx context.Context, cmd Command) (*Output, error)
}

// New создаёт sandbox указанного варианта. KindAuto — то же, что Detect.
func New(ctx context.Context, kind Kind, logger *slog.Logger) (Sandbox, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch kind {
	case KindAuto, "":
		return Detect(ctx, logger), nil
	case KindPlain:
		return NewProcess(), nil
	case KindNamespace:
		return NewNamespace()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// run — общий запуск для обоих вариантов: name и args уже окончательные.
func run(ctx context.Context, name string, args []string, c Command) (*Output, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	// nil Env означает наследование окружения, поэтому пустой срез.
	cmd.Env = append([]string{}, c.Env...)
	if c.Stdin != nil {
		cmd.Stdin = bytes.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err := cmd.Run()

	out := &Output{
		Stdout: stdout.Bytes(),
		Stderr: stderr.Bytes(),
	}
	if err == nil {
		return out, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		out.ExitCode = -1
		return out, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		out.ExitCode = exitErr.ExitCode()
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrSpawn, name, err)
}

// resolve ищет исполняемый файл в PATH воркера: у ребёнка PATH может не быть.
func resolve(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyCommand
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return resolved, nil
}
