package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrJobNotFound — job не найден в хранилище.
	ErrJobNotFound = errors.New("job not found")

	// ErrPlanNotFound — plan не найден.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrWorkerNotFound — воркер не зарегистрирован.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrResultNotFound — результат job ещё не записан.
	ErrResultNotFound = errors.New("result not found")

	// ErrInvalidPlan — plan не прошёл валидацию.
	ErrInvalidPlan = errors.New("invalid plan")

	// ErrInvalidJobs — пакет job не прошёл валидацию.
	ErrInvalidJobs = errors.New("invalid jobs")

	// ErrPlanExists — plan с таким ID уже отправлен.
	ErrPlanExists = errors.New("plan already exists")

	// ErrInvalidTransition — переход статуса недопустим.
	ErrInvalidTransition = errors.New("invalid status transition")
)
