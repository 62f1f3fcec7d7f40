package kvstore

import (
	"context"
	"sync"
)

// memoryEngine keeps records in a map guarded by a RWMutex.
type memoryEngine struct {
	mu   sync.RWMutex
	data map[int64][]byte
}

// NewMemory returns an empty in-process Store. Its records live until Close.
func NewMemory(opts ...Option) Store {
	return newStore(&memoryEngine{data: make(map[int64][]byte)}, KindMemory, buildOptions(opts))
}

func (m *memoryEngine) read(key int64) ([]byte, bool, error) {
	v, ok := m.data[key]

	return v, ok, nil
}

func (m *memoryEngine) view(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return ErrClosed
	}

	return fn(newOverlay(m.read))
}

func (m *memoryEngine) update(ctx context.Context, _ []int64, fn func(txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return ErrClosed
	}

	ov := newOverlay(m.read)
	if err := fn(ov); err != nil {
		return err
	}

	return ov.flush(
		func(key int64, value []byte) error {
			m.data[key] = value
			return nil
		},
		func(key int64) error {
			delete(m.data, key)
			return nil
		})
}

func (m *memoryEngine) count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.data == nil {
		return 0, ErrClosed
	}

	return int64(len(m.data)), nil
}

func (m *memoryEngine) close() error {
	m.mu.Lock()
	m.data = nil
	m.mu.Unlock()

	return nil
}
