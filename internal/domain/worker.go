package domain

import "time"

// WorkerInfo — запись реестра воркеров.
type WorkerInfo struct {
	ID            string    `json:"id"`
	Tools         []string  `json:"tools"`
	Tags          []string  `json:"tags"`
	RegisteredAt  time.Time `json:"registered_at"`
	LastHeartbeat time.Time `json:"last_heartbeat"`

	// Draining — запрошена остановка через WORKER.SHUTDOWN.
	Draining bool `json:"draining"`
}

// IsStale возвращает true, если heartbeat не приходил дольше staleAfter.
func (w *WorkerInfo) IsStale(now time.Time, staleAfter time.Duration) bool {
	return now.Sub(w.LastHeartbeat) > staleAfter
}
