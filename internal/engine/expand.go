package engine

import (
	"github.com/google/uuid"

	"github.com/shaiso/Conveyor/internal/domain"
)

// ExpandPlan разворачивает plan в job: один job на задачу, в порядке задач.
//
// Рёбра заполняются в обе стороны (Dependencies и Dependents),
// input_from_task превращается в InputFrom с ID upstream job.
func ExpandPlan(plan *domain.Plan, actionID string) ([]*domain.Job, error) {
	deps, err := PlanDependencies(plan)
	if err != nil {
		return nil, err
	}

	env, err := plan.EnvJSON()
	if err != nil {
		return nil, NewValidationError("", "env", "env is not serializable", err)
	}

	jobs := make([]*domain.Job, 0, len(plan.Tasks))
	byTask := make(map[uint32]*domain.Job, len(plan.Tasks))

	for i := range plan.Tasks {
		task := &plan.Tasks[i]

		args := make([]string, len(task.Args))
		copy(args, task.Args)

		job := domain.NewJob(uuid.NewString(), actionID, plan.PlanID, task.TaskNumber, task.Command, args)
		job.Env = env
		if task.TimeoutSecs != nil {
			job.TimeoutSecs = *task.TimeoutSecs
		}

		tags := task.Tags
		if tags == nil {
			tags = plan.Tags
		}
		job.Tags = append(job.Tags, tags...)

		jobs = append(jobs, job)
		byTask[task.TaskNumber] = job
	}

	for i := range plan.Tasks {
		task := &plan.Tasks[i]
		job := byTask[task.TaskNumber]

		for _, depNumber := range deps[task.TaskNumber] {
			dep := byTask[depNumber]
			job.AddDependency(dep.ID)
			dep.AddDependent(job.ID)
		}
		if task.InputFromTask != nil {
			job.InputFrom = byTask[*task.InputFromTask].ID
		}
	}

	return jobs, nil
}
