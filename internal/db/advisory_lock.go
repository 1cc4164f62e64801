package db

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/saldoapp/account-ledger/internal/lock"
)

// AdvisoryLockManager implements lock.Manager on top of PostgreSQL
// session advisory locks, so recorder instances on different nodes
// still serialize movements per account.
//
// Advisory locks are bound to the session that took them, so each held
// lock pins a dedicated connection until it is released.
type AdvisoryLockManager struct {
	db   *sql.DB
	mu   sync.Mutex
	held map[string]*sql.Conn
}

var _ lock.Manager = (*AdvisoryLockManager)(nil)

func NewAdvisoryLockManager(p *Postgres) *AdvisoryLockManager {
	return &AdvisoryLockManager{
		db:   p.db,
		held: make(map[string]*sql.Conn),
	}
}

func (m *AdvisoryLockManager) Acquire(ctx context.Context, key string) (bool, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get connection: %w", err)
	}

	var acquired bool
	err = conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", lockID(key)).Scan(&acquired)
	if err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to try advisory lock: %w", err)
	}
	if !acquired {
		conn.Close()
		return false, nil
	}

	m.mu.Lock()
	m.held[key] = conn
	m.mu.Unlock()

	return true, nil
}

func (m *AdvisoryLockManager) Release(ctx context.Context, key string) error {
	m.mu.Lock()
	conn, ok := m.held[key]
	delete(m.held, key)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("lock %q is not held", key)
	}
	defer conn.Close()

	var released bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_advisory_unlock($1)", lockID(key)).Scan(&released); err != nil {
		return fmt.Errorf("failed to release advisory lock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory lock %q was not held by this session", key)
	}

	return nil
}

// lockID maps a lock key to the 64-bit integer pg advisory locks expect.
func lockID(key string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64())
}
