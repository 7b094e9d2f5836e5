package worker

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/resp"
)

type postedResult struct {
	workerID string
	jobID    string
	status   domain.ResultStatus
	exitCode int
	stdout   string
	stderr   string
}

// fakeServer — общее состояние всех соединений fakeClient.
type fakeServer struct {
	mu sync.Mutex

	lists   map[string][]string
	jobs    map[string]*domain.Job
	outputs map[string]string

	heartbeats int
	drainAfter int   // DRAIN на heartbeat с этим номером (0 — никогда)
	hbErrAfter int   // ошибка на heartbeat с этим номером (0 — никогда)
	startErr   error // ответ на JOB.START
	panicOn    string

	tags    []string
	tools   []string
	started []string
	posted  []postedResult
	removed []string

	dials int
}

func newFakeServer() *fakeServer {
	return &fakeServer{
		lists:   make(map[string][]string),
		jobs:    make(map[string]*domain.Job),
		outputs: make(map[string]string),
	}
}

func (s *fakeServer) dial(context.Context) (Client, error) {
	s.mu.Lock()
	s.dials++
	s.mu.Unlock()
	return &fakeClient{srv: s}, nil
}

// push кладёт ready job в очередь (LPUSH).
func (s *fakeServer) push(queue string, job *domain.Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job.Status = domain.JobStatusReady
	s.jobs[job.ID] = job
	s.lists[queue] = append([]string{job.ID}, s.lists[queue]...)
}

func (s *fakeServer) heartbeatCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heartbeats
}

func (s *fakeServer) startedJobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.started)
}

func (s *fakeServer) results() []postedResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posted)
}

func (s *fakeServer) list(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lists[name])
}

type fakeClient struct {
	srv *fakeServer
}

func (c *fakeClient) Heartbeat(_ context.Context, _ string) (bool, error) {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	s.heartbeats++
	if s.hbErrAfter > 0 && s.heartbeats >= s.hbErrAfter {
		return false, errors.New("connection reset")
	}
	return s.drainAfter > 0 && s.heartbeats >= s.drainAfter, nil
}

func (c *fakeClient) RegisterTools(_ context.Context, _ string, tools []string) error {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	c.srv.tools = tools
	return nil
}

func (c *fakeClient) RegisterTags(_ context.Context, _ string, tags []string) error {
	c.srv.mu.Lock()
	defer c.srv.mu.Unlock()
	c.srv.tags = tags
	return nil
}

func (c *fakeClient) BRPopLPush(ctx context.Context, src, dst string, timeout time.Duration) (string, bool, error) {
	deadline := time.After(timeout)
	tick := time.NewTicker(5 * time.Millisecond)
	defer tick.Stop()

	for {
		s := c.srv
		s.mu.Lock()
		if l := s.lists[src]; len(l) > 0 {
			id := l[len(l)-1]
			s.lists[src] = l[:len(l)-1]
			s.lists[dst] = append([]string{id}, s.lists[dst]...)
			s.mu.Unlock()
			return id, true, nil
		}
		s.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-deadline:
			return "", false, nil
		case <-tick.C:
		}
	}
}

func (c *fakeClient) LRem(_ context.Context, list string, _ int, value string) (int, error) {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, value)
	if i := slices.Index(s.lists[list], value); i >= 0 {
		s.lists[list] = slices.Delete(s.lists[list], i, i+1)
		return 1, nil
	}
	return 0, nil
}

func (c *fakeClient) GetJob(_ context.Context, jobID string) (*domain.Job, error) {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[jobID]
	if !ok {
		return nil, &resp.Error{Message: "NOTFOUND job " + jobID}
	}
	cp := *job
	return &cp, nil
}

func (c *fakeClient) StartJob(_ context.Context, workerID, jobID string) error {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.startErr != nil {
		return s.startErr
	}
	s.started = append(s.started, jobID)
	if job, ok := s.jobs[jobID]; ok {
		job.Status = domain.JobStatusRunning
		job.WorkerID = workerID
	}
	return nil
}

func (c *fakeClient) JobOutput(_ context.Context, jobID string) (string, bool, error) {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.panicOn != "" && jobID == s.panicOn {
		panic("output store corrupted")
	}
	out, ok := s.outputs[jobID]
	return out, ok, nil
}

func (c *fakeClient) PostJobResult(_ context.Context, workerID, jobID string, status domain.ResultStatus, exitCode int, stdout, stderr string) error {
	s := c.srv
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, postedResult{
		workerID: workerID,
		jobID:    jobID,
		status:   status,
		exitCode: exitCode,
		stdout:   stdout,
		stderr:   stderr,
	})
	s.outputs[jobID] = stdout
	return nil
}

func (c *fakeClient) Close() error { return nil }
