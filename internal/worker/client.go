package worker

import (
	"context"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/resp"
)

// Client — команды протокола, которые использует воркер.
// *resp.Client реализует его; одно значение Client — одно соединение.
type Client interface {
	Heartbeat(ctx context.Context, workerID string) (bool, error)
	RegisterTools(ctx context.Context, workerID string, tools []string) error
	RegisterTags(ctx context.Context, workerID string, tags []string) error

	BRPopLPush(ctx context.Context, src, dst string, timeout time.Duration) (string, bool, error)
	LRem(ctx context.Context, list string, count int, value string) (int, error)

	GetJob(ctx context.Context, jobID string) (*domain.Job, error)
	StartJob(ctx context.Context, workerID, jobID string) error
	JobOutput(ctx context.Context, jobID string) (string, bool, error)
	PostJobResult(ctx context.Context, workerID, jobID string, status domain.ResultStatus, exitCode int, stdout, stderr string) error

	Close() error
}

// DialFunc открывает новое соединение.
type DialFunc func(ctx context.Context) (Client, error)

// RespDialer возвращает DialFunc поверх resp.Dial.
func RespDialer(cfg resp.ClientConfig) DialFunc {
	return func(ctx context.Context) (Client, error) {
		c, err := resp.Dial(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Коды ошибок сервера, на которые воркер реагирует особо.
const (
	codeNotFound = "NOTFOUND"
	codeConflict = "CONFLICT"
)
