// Package lock defines the exclusive lock capability used to serialize
// movement recording per account.
package lock

import (
	"context"
	"fmt"
	"sync"
)

// Manager is a try-lock: Acquire returns false without blocking when the
// key is already held. There is no waiting, timeout or retry policy here;
// callers fail fast and leave retries to their own callers.
type Manager interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// MemoryManager is a process-local Manager for single-node deployments
// and tests.
type MemoryManager struct {
	mu   sync.Mutex
	held map[string]struct{}
}

var _ Manager = (*MemoryManager)(nil)

func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		held: make(map[string]struct{}),
	}
}

func (m *MemoryManager) Acquire(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.held[key]; taken {
		return false, nil
	}
	m.held[key] = struct{}{}

	return true, nil
}

func (m *MemoryManager) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.held[key]; !taken {
		return fmt.Errorf("lock %q is not held", key)
	}
	delete(m.held, key)

	return nil
}
