package repo

import (
	"context"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/kv"
)

// JobRepo — записи job под ключами job:<id>.
type JobRepo struct {
	store kv.Store
}

// NewJobRepo создаёт новый JobRepo.
func NewJobRepo(store kv.Store) *JobRepo {
	return &JobRepo{store: store}
}

// Get возвращает job по ID.
func (r *JobRepo) Get(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := getJSON(ctx, r.store, JobKey(id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// Save записывает job целиком.
func (r *JobRepo) Save(ctx context.Context, job *domain.Job) error {
	return setJSON(ctx, r.store, JobKey(job.ID), job)
}

// ResultRepo — результаты выполнения под ключами result:<job_id>.
type ResultRepo struct {
	store kv.Store
}

// NewResultRepo создаёт новый ResultRepo.
func NewResultRepo(store kv.Store) *ResultRepo {
	return &ResultRepo{store: store}
}

// Get возвращает результат job.
func (r *ResultRepo) Get(ctx context.Context, jobID string) (*domain.JobResult, error) {
	var res domain.JobResult
	if err := getJSON(ctx, r.store, ResultKey(jobID), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Save записывает результат job.
func (r *ResultRepo) Save(ctx context.Context, res *domain.JobResult) error {
	return setJSON(ctx, r.store, ResultKey(res.JobID), res)
}
