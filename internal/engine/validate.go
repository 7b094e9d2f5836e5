package engine

import (
	"fmt"
	"strconv"

	"github.com/shaiso/Conveyor/internal/domain"
)

// ValidatePlan выполняет полную валидацию Plan.
//
// Проверяет:
// - Наличие задач
// - Номера задач (>= 1, уникальные)
// - Непустые команды
// - Ссылки input_from_task и depends_on
// - Отсутствие циклов
func ValidatePlan(plan *domain.Plan) error {
	_, err := PlanDependencies(plan)
	return err
}

// PlanDependencies валидирует plan и возвращает зависимости каждой задачи
// (номер задачи → номера задач, от которых она зависит).
//
// Правило: явный depends_on, если задан; к нему всегда добавляется
// input_from_task. Если не задано ни то, ни другое, задача зависит
// от предыдущей по порядку.
func PlanDependencies(plan *domain.Plan) (map[uint32][]uint32, error) {
	if plan == nil || len(plan.Tasks) == 0 {
		return nil, ErrEmptyPlan
	}

	seen := make(map[uint32]bool, len(plan.Tasks))
	for i := range plan.Tasks {
		task := &plan.Tasks[i]
		if err := validateTask(task, seen); err != nil {
			return nil, err
		}
	}

	deps := make(map[uint32][]uint32, len(plan.Tasks))
	graph := NewGraph()

	for i := range plan.Tasks {
		task := &plan.Tasks[i]
		node := taskNode(task.TaskNumber)
		graph.AddNode(strconv.FormatUint(uint64(task.TaskNumber), 10))

		var list []uint32
		switch {
		case task.DependsOn != nil:
			list = append(list, task.DependsOn...)
		case task.InputFromTask == nil && i > 0:
			list = append(list, plan.Tasks[i-1].TaskNumber)
		}
		if task.InputFromTask != nil {
			list = appendUnique(list, *task.InputFromTask)
		}

		for _, dep := range list {
			if dep == task.TaskNumber {
				return nil, NewValidationError(node, "depends_on",
					"task depends on itself", ErrSelfDependency)
			}
			if !seen[dep] {
				return nil, NewValidationError(node, "depends_on",
					fmt.Sprintf("depends on unknown task: %d", dep), ErrMissingDependency)
			}
			graph.AddEdge(strconv.FormatUint(uint64(dep), 10),
				strconv.FormatUint(uint64(task.TaskNumber), 10))
		}
		deps[task.TaskNumber] = list
	}

	if _, err := graph.Sort(); err != nil {
		return nil, err
	}

	return deps, nil
}

// validateTask проверяет одну задачу.
// seen — уже встреченные номера задач (для проверки уникальности).
func validateTask(task *domain.TaskTemplate, seen map[uint32]bool) error {
	node := taskNode(task.TaskNumber)

	if task.TaskNumber < 1 {
		return NewValidationError(node, "task_number", "task number must be >= 1", ErrInvalidTaskNumber)
	}
	if seen[task.TaskNumber] {
		return NewValidationError(node, "task_number", "duplicate task number", ErrDuplicateTask)
	}
	seen[task.TaskNumber] = true

	if task.Command == "" {
		return NewValidationError(node, "command", "command is empty", ErrEmptyCommand)
	}

	return nil
}

// ValidateJobs проверяет пакет job перед отправкой в orchestrator.
//
// Проверяет:
// - Уникальность и непустоту ID
// - Непустые команды
// - Что все зависимости лежат внутри пакета
// - Взаимность dependencies/dependents
// - Отсутствие циклов
func ValidateJobs(jobs []*domain.Job) error {
	byID := make(map[string]*domain.Job, len(jobs))
	for _, job := range jobs {
		if job.ID == "" {
			return NewValidationError("", "id", "job has empty ID", ErrEmptyJobID)
		}
		if _, dup := byID[job.ID]; dup {
			return NewValidationError(jobNode(job.ID), "id", "duplicate job ID", ErrDuplicateJobID)
		}
		if job.Command == "" {
			return NewValidationError(jobNode(job.ID), "command", "command is empty", ErrEmptyCommand)
		}
		byID[job.ID] = job
	}

	graph := NewGraph()
	for _, job := range jobs {
		graph.AddNode(job.ID)
	}

	for _, job := range jobs {
		for _, depID := range job.Dependencies {
			if depID == job.ID {
				return NewValidationError(jobNode(job.ID), "dependencies",
					"job depends on itself", ErrSelfDependency)
			}
			dep, ok := byID[depID]
			if !ok {
				return NewValidationError(jobNode(job.ID), "dependencies",
					"depends on unknown job: "+depID, ErrMissingDependency)
			}
			if !dep.HasDependent(job.ID) {
				return NewValidationError(jobNode(job.ID), "dependencies",
					"dependency "+depID+" does not list job as dependent", ErrAsymmetricEdge)
			}
			graph.AddEdge(depID, job.ID)
		}
		for _, childID := range job.Dependents {
			child, ok := byID[childID]
			if !ok {
				return NewValidationError(jobNode(job.ID), "dependents",
					"unknown dependent job: "+childID, ErrMissingDependency)
			}
			if !child.DependsOn(job.ID) {
				return NewValidationError(jobNode(job.ID), "dependents",
					"dependent "+childID+" does not list job as dependency", ErrAsymmetricEdge)
			}
		}
	}

	_, err := graph.Sort()
	return err
}

func taskNode(n uint32) string {
	return fmt.Sprintf("task %d", n)
}

func jobNode(id string) string {
	return "job " + id
}

func appendUnique(list []uint32, v uint32) []uint32 {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
