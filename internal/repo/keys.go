package repo

// Схема ключей хранилища.
const (
	jobPrefix    = "job:"
	resultPrefix = "result:"
	planPrefix   = "plan:"
	workerPrefix = "worker:"

	// workersIndex — список id зарегистрированных воркеров.
	workersIndex = "workers"
)

// JobKey возвращает ключ записи job.
func JobKey(id string) string { return jobPrefix + id }

// ResultKey возвращает ключ результата job.
func ResultKey(id string) string { return resultPrefix + id }

// PlanKey возвращает ключ записи plan.
func PlanKey(id string) string { return planPrefix + id }

// WorkerKey возвращает ключ записи воркера.
func WorkerKey(id string) string { return workerPrefix + id }
