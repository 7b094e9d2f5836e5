package sandbox

import "context"

// Process — запуск обычным дочерним процессом с очищенным окружением.
// Файловая система и PID namespace общие с воркером.
type Process struct{}

// NewProcess создаёт Process.
func NewProcess() *Process {
	return &Process{}
}

// Name возвращает KindPlain.
func (p *Process) Name() Kind {
	return KindPlain
}

// Run запускает команду.
func (p *Process) Run(ctx context.Context, c Command) (*Output, error) {
	path, err := resolve(c.Path)
	if err != nil {
		return nil, err
	}
	return run(ctx, path, c.Args, c)
}
