package domain

import "slices"

// Имена очередей.
const (
	// QueueDefault — очередь для job без выделенного capability-тега.
	QueueDefault = "queue:default"

	// QueueGPU — выделенная очередь для тега "gpu".
	QueueGPU = "queue:gpu"

	// QueueProcessing — список id, взятых воркерами и ещё не подтверждённых.
	QueueProcessing = "queue:processing"
)

// Route связывает capability-тег с выделенной очередью.
type Route struct {
	Tag   string
	Queue string
}

// Router выбирает очередь по тегам job. Это чистая функция от тегов:
// первый маршрут (в порядке объявления), чей тег присутствует, выигрывает;
// иначе — очередь по умолчанию.
type Router struct {
	routes       []Route
	defaultQueue string
}

// NewRouter создаёт Router.
func NewRouter(defaultQueue string, routes ...Route) *Router {
	if defaultQueue == "" {
		defaultQueue = QueueDefault
	}
	return &Router{routes: routes, defaultQueue: defaultQueue}
}

// DefaultRouter — "gpu" → queue:gpu, остальное → queue:default.
func DefaultRouter() *Router {
	return NewRouter(QueueDefault, Route{Tag: "gpu", Queue: QueueGPU})
}

// QueueFor возвращает очередь для набора тегов.
func (r *Router) QueueFor(tags []string) string {
	for _, route := range r.routes {
		if slices.Contains(tags, route.Tag) {
			return route.Queue
		}
	}
	return r.defaultQueue
}

// QueuesForWorker возвращает очереди, которые обслуживает воркер с тегами:
// выделенные очереди его тегов, затем очередь по умолчанию.
func (r *Router) QueuesForWorker(tags []string) []string {
	queues := make([]string, 0, len(r.routes)+1)
	for _, route := range r.routes {
		if slices.Contains(tags, route.Tag) && !slices.Contains(queues, route.Queue) {
			queues = append(queues, route.Queue)
		}
	}
	return append(queues, r.defaultQueue)
}

// Queues возвращает все очереди маршрутизатора.
func (r *Router) Queues() []string {
	queues := make([]string, 0, len(r.routes)+1)
	for _, route := range r.routes {
		if !slices.Contains(queues, route.Queue) {
			queues = append(queues, route.Queue)
		}
	}
	return append(queues, r.defaultQueue)
}
