package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/kv"
)

// WorkerRepo — реестр воркеров: записи worker:<id> и индексный список workers.
type WorkerRepo struct {
	store kv.Store
}

// NewWorkerRepo создаёт новый WorkerRepo.
func NewWorkerRepo(store kv.Store) *WorkerRepo {
	return &WorkerRepo{store: store}
}

// Get возвращает воркера по ID.
func (r *WorkerRepo) Get(ctx context.Context, id string) (*domain.WorkerInfo, error) {
	var w domain.WorkerInfo
	if err := getJSON(ctx, r.store, WorkerKey(id), &w); err != nil {
		return nil, err
	}
	return &w, nil
}

// Save записывает воркера. Новый воркер добавляется в индекс.
func (r *WorkerRepo) Save(ctx context.Context, w *domain.WorkerInfo) error {
	_, err := r.store.Get(ctx, WorkerKey(w.ID))
	isNew := errors.Is(err, kv.ErrNotFound)
	if err != nil && !isNew {
		return fmt.Errorf("check worker: %w", err)
	}

	if err := setJSON(ctx, r.store, WorkerKey(w.ID), w); err != nil {
		return err
	}

	if isNew {
		if err := r.store.LPush(ctx, workersIndex, []byte(w.ID)); err != nil {
			return fmt.Errorf("index worker: %w", err)
		}
	}
	return nil
}

// List возвращает всех зарегистрированных воркеров (новые первыми).
func (r *WorkerRepo) List(ctx context.Context) ([]*domain.WorkerInfo, error) {
	ids, err := r.store.LRange(ctx, workersIndex, 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}

	workers := make([]*domain.WorkerInfo, 0, len(ids))
	for _, id := range ids {
		w, err := r.Get(ctx, string(id))
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, nil
}
