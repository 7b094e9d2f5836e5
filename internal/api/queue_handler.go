package api

import (
	"net/http"
)

// ListQueues возвращает длины очередей маршрутизатора и processing-списка.
// GET /api/v1/queues
func (h *Handler) ListQueues(w http.ResponseWriter, r *http.Request) {
	names := append(h.orch.Router().Queues(), h.orch.ProcessingQueue())

	result := make([]QueueResponse, 0, len(names))
	for _, name := range names {
		items, err := h.store.LRange(r.Context(), name, 0, -1)
		if err != nil {
			InternalError(w, h.logger, err)
			return
		}
		result = append(result, QueueResponse{Name: name, Length: len(items)})
	}
	List(w, result, len(result))
}
