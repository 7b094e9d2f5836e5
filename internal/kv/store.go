package kv

import (
	"context"
	"time"
)

// Store — примитивы хранилища, на которые опираются orchestrator и сервер.
//
// Списки ведут себя как в Redis: LPush добавляет в голову,
// BRPopLPush забирает из хвоста src и кладёт в голову dst.
type Store interface {
	// Get возвращает значение или ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set записывает значение.
	Set(ctx context.Context, key string, value []byte) error

	// LPush добавляет значение в голову списка.
	LPush(ctx context.Context, list string, value []byte) error

	// BRPopLPush атомарно переносит хвост src в голову dst.
	// Ждёт не дольше timeout (0 — без ограничения, пока жив ctx);
	// по истечении возвращает ErrTimeout.
	BRPopLPush(ctx context.Context, src, dst string, timeout time.Duration) ([]byte, error)

	// LRem удаляет вхождения value: count > 0 — первые count с головы,
	// count < 0 — с хвоста, 0 — все. Возвращает число удалённых.
	LRem(ctx context.Context, list string, count int, value []byte) (int, error)

	// LRange возвращает элементы [start, stop] с поддержкой отрицательных индексов.
	LRange(ctx context.Context, list string, start, stop int) ([][]byte, error)

	// Close освобождает ресурсы backend'а.
	Close() error
}

// normalizeRange переводит индексы Redis в полуоткрытый интервал [lo, hi).
func normalizeRange(n, start, stop int) (int, int) {
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return 0, 0
	}
	return start, stop + 1
}
