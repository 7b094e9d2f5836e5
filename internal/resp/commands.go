package resp

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
)

// Имена команд протокола.
const (
	CmdAuth            = "AUTH"
	CmdPing            = "PING"
	CmdPlanSubmit      = "PLAN.SUBMIT"
	CmdPlanGet         = "PLAN.GET"
	CmdJobGet          = "JOB.GET"
	CmdJobStart        = "JOB.START"
	CmdJobResult       = "JOB.RESULT"
	CmdJobOutput       = "JOB.OUTPUT"
	CmdJobCancel       = "JOB.CANCEL"
	CmdWorkerHeartbeat = "WORKER.HEARTBEAT"
	CmdWorkerTools     = "WORKER.TOOLS"
	CmdWorkerTags      = "WORKER.TAGS"
	CmdWorkerShutdown  = "WORKER.SHUTDOWN"
	CmdBRPopLPush      = "BRPOPLPUSH"
	CmdLRem            = "LREM"
)

// ReplyDrain — ответ на heartbeat, если воркеру велено остановиться.
const ReplyDrain = "DRAIN"

// Ping проверяет связь.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Do(ctx, CmdPing)
	return err
}

// SubmitPlan отправляет plan и возвращает его ID.
func (c *Client) SubmitPlan(ctx context.Context, plan *domain.Plan) (string, error) {
	data, err := json.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	v, err := c.Do(ctx, CmdPlanSubmit, string(data))
	if err != nil {
		return "", err
	}
	return v.Text()
}

// GetPlan возвращает запись об отправленном plan.
func (c *Client) GetPlan(ctx context.Context, planID string) (*domain.PlanRecord, error) {
	var rec domain.PlanRecord
	if err := c.getJSON(ctx, &rec, CmdPlanGet, planID); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetJob возвращает метаданные job.
func (c *Client) GetJob(ctx context.Context, jobID string) (*domain.Job, error) {
	var job domain.Job
	if err := c.getJSON(ctx, &job, CmdJobGet, jobID); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartJob сообщает, что воркер начал выполнение job.
func (c *Client) StartJob(ctx context.Context, workerID, jobID string) error {
	_, err := c.Do(ctx, CmdJobStart, workerID, jobID)
	return err
}

// PostJobResult отправляет результат выполнения job.
func (c *Client) PostJobResult(ctx context.Context, workerID, jobID string, status domain.ResultStatus, exitCode int, stdout, stderr string) error {
	_, err := c.Do(ctx, CmdJobResult, workerID, jobID, string(status), strconv.Itoa(exitCode), stdout, stderr)
	return err
}

// JobOutput возвращает записанный stdout job; ok=false, если результата нет.
func (c *Client) JobOutput(ctx context.Context, jobID string) (string, bool, error) {
	v, err := c.Do(ctx, CmdJobOutput, jobID)
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	s, err := v.Text()
	return s, err == nil, err
}

// CancelJob отменяет job и его зависимых.
func (c *Client) CancelJob(ctx context.Context, jobID string) error {
	_, err := c.Do(ctx, CmdJobCancel, jobID)
	return err
}

// Heartbeat отправляет сигнал жизни. drain=true — сервер просит воркера остановиться.
func (c *Client) Heartbeat(ctx context.Context, workerID string) (drain bool, err error) {
	v, err := c.Do(ctx, CmdWorkerHeartbeat, workerID)
	if err != nil {
		return false, err
	}
	return v.Kind == KindSimple && v.Str == ReplyDrain, nil
}

// RegisterTools сообщает список инструментов воркера.
func (c *Client) RegisterTools(ctx context.Context, workerID string, tools []string) error {
	_, err := c.Do(ctx, append([]string{CmdWorkerTools, workerID}, tools...)...)
	return err
}

// RegisterTags сообщает capability-теги воркера.
func (c *Client) RegisterTags(ctx context.Context, workerID string, tags []string) error {
	_, err := c.Do(ctx, append([]string{CmdWorkerTags, workerID}, tags...)...)
	return err
}

// RequestShutdown просит воркера остановиться при следующем heartbeat.
func (c *Client) RequestShutdown(ctx context.Context, workerID string) error {
	_, err := c.Do(ctx, CmdWorkerShutdown, workerID)
	return err
}

// BRPopLPush переносит id из src в dst, ожидая до timeout.
// ok=false — таймаут, элемента не было.
func (c *Client) BRPopLPush(ctx context.Context, src, dst string, timeout time.Duration) (string, bool, error) {
	secs := int64(math.Ceil(timeout.Seconds()))
	v, err := c.do(ctx, timeout, CmdBRPopLPush, src, dst, strconv.FormatInt(secs, 10))
	if err != nil {
		return "", false, err
	}
	if v.Null {
		return "", false, nil
	}
	s, err := v.Text()
	return s, err == nil, err
}

// LRem удаляет value из list и возвращает число удалённых.
func (c *Client) LRem(ctx context.Context, list string, count int, value string) (int, error) {
	v, err := c.Do(ctx, CmdLRem, list, strconv.Itoa(count), value)
	if err != nil {
		return 0, err
	}
	if v.Kind != KindInteger {
		return 0, fmt.Errorf("%w: LREM replied %s", ErrUnexpectedReply, v)
	}
	return int(v.Int), nil
}

func (c *Client) getJSON(ctx context.Context, out any, args ...string) error {
	v, err := c.Do(ctx, args...)
	if err != nil {
		return err
	}
	if v.Kind != KindBulk || v.Null {
		return fmt.Errorf("%w: %s replied %s", ErrUnexpectedReply, args[0], v)
	}
	if err := json.Unmarshal(v.Bulk, out); err != nil {
		return fmt.Errorf("decode %s reply: %w", args[0], err)
	}
	return nil
}
