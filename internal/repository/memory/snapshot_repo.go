package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

type SnapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[string][]*models.BalanceSnapshot
}

func NewSnapshotRepository() *SnapshotRepository {
	return &SnapshotRepository{
		snapshots: make(map[string][]*models.BalanceSnapshot),
	}
}

func (r *SnapshotRepository) Save(ctx context.Context, snapshot *models.BalanceSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.snapshots[snapshot.AccountID] {
		if s.Year == snapshot.Year && s.Month == snapshot.Month {
			return fmt.Errorf("%w: snapshot %s %d-%02d",
				repository.ErrDuplicate, snapshot.AccountID, snapshot.Year, snapshot.Month)
		}
	}

	r.snapshots[snapshot.AccountID] = append(r.snapshots[snapshot.AccountID], snapshot)

	return nil
}

func (r *SnapshotRepository) GetLatestByAccountID(ctx context.Context, accountID string) (*models.BalanceSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *models.BalanceSnapshot
	for _, s := range r.snapshots[accountID] {
		if latest == nil || s.Year > latest.Year || (s.Year == latest.Year && s.Month > latest.Month) {
			latest = s
		}
	}

	return latest, nil
}
