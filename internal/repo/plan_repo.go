package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/shaiso/Conveyor/internal/domain"
	"github.com/shaiso/Conveyor/internal/kv"
)

// PlanRepo — записи об отправленных plan.
type PlanRepo struct {
	store kv.Store
}

// NewPlanRepo создаёт новый PlanRepo.
func NewPlanRepo(store kv.Store) *PlanRepo {
	return &PlanRepo{store: store}
}

// Create сохраняет запись, если plan с таким ID ещё нет.
// Проверка и запись — две операции: гонка двух отправок одного plan_id
// внутри одного сервера исключается вызывающим (orchestrator берёт блокировку).
func (r *PlanRepo) Create(ctx context.Context, rec *domain.PlanRecord) error {
	_, err := r.store.Get(ctx, PlanKey(rec.PlanID))
	if err == nil {
		return fmt.Errorf("%w: plan %s", ErrAlreadyExists, rec.PlanID)
	}
	if !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("check plan: %w", err)
	}
	return setJSON(ctx, r.store, PlanKey(rec.PlanID), rec)
}

// Get возвращает запись plan.
func (r *PlanRepo) Get(ctx context.Context, planID string) (*domain.PlanRecord, error) {
	var rec domain.PlanRecord
	if err := getJSON(ctx, r.store, PlanKey(planID), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
