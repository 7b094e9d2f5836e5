package kv

import (
	"bytes"
	"context"
	"sync"
	"time"
)

// Memory — хранилище в памяти процесса.
//
// Блокирующее ожидание построено на канале-сигнале: каждый LPush
// закрывает текущий канал и создаёт новый, будя всех ожидающих.
type Memory struct {
	mu      sync.Mutex
	strings map[string][]byte
	lists   map[string][][]byte
	changed chan struct{}
}

// NewMemory создаёт пустое хранилище.
func NewMemory() *Memory {
	return &Memory{
		strings: make(map[string][]byte),
		lists:   make(map[string][][]byte),
		changed: make(chan struct{}),
	}
}

// Get возвращает копию значения.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.strings[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

// Set записывает копию значения.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.strings[key] = bytes.Clone(value)
	return nil
}

// LPush добавляет значение в голову списка и будит ожидающих.
func (m *Memory) LPush(_ context.Context, list string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pushLocked(list, value)
	return nil
}

// BRPopLPush переносит хвост src в голову dst, ожидая элемент до timeout.
func (m *Memory) BRPopLPush(ctx context.Context, src, dst string, timeout time.Duration) ([]byte, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		m.mu.Lock()
		items := m.lists[src]
		if n := len(items); n > 0 {
			v := items[n-1]
			m.lists[src] = items[:n-1]
			m.pushLocked(dst, v)
			m.mu.Unlock()
			return bytes.Clone(v), nil
		}
		wait := m.changed
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrTimeout
		case <-wait:
		}
	}
}

// LRem удаляет вхождения value по правилам Redis.
func (m *Memory) LRem(_ context.Context, list string, count int, value []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[list]
	removed := 0
	limit := count
	if limit < 0 {
		limit = -limit
	}

	keep := make([][]byte, 0, len(items))
	if count >= 0 {
		for _, item := range items {
			if bytes.Equal(item, value) && (limit == 0 || removed < limit) {
				removed++
				continue
			}
			keep = append(keep, item)
		}
	} else {
		for i := len(items) - 1; i >= 0; i-- {
			if bytes.Equal(items[i], value) && removed < limit {
				removed++
				continue
			}
			keep = append(keep, items[i])
		}
		for i, j := 0, len(keep)-1; i < j; i, j = i+1, j-1 {
			keep[i], keep[j] = keep[j], keep[i]
		}
	}

	m.lists[list] = keep
	return removed, nil
}

// LRange возвращает копии элементов диапазона.
func (m *Memory) LRange(_ context.Context, list string, start, stop int) ([][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.lists[list]
	lo, hi := normalizeRange(len(items), start, stop)

	out := make([][]byte, 0, hi-lo)
	for _, item := range items[lo:hi] {
		out = append(out, bytes.Clone(item))
	}
	return out, nil
}

// Close ничего не делает.
func (m *Memory) Close() error {
	return nil
}

func (m *Memory) pushLocked(list string, value []byte) {
	items := m.lists[list]
	items = append(items, nil)
	copy(items[1:], items)
	items[0] = bytes.Clone(value)
	m.lists[list] = items

	close(m.changed)
	m.changed = make(chan struct{})
}
