package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// Projector reconstructs the current balance of an account from its
// latest monthly snapshot plus the movements recorded since. Callers are
// responsible for checking the account exists; projecting an unknown
// account simply yields zero.
type Projector struct {
	movements repository.MovementRepository
	snapshots repository.SnapshotRepository
	now       func() time.Time
}

func NewProjector(movements repository.MovementRepository, snapshots repository.SnapshotRepository) *Projector {
	return &Projector{
		movements: movements,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// Project folds the ledger on top of the snapshot baseline. Movements
// dated before the baseline are already reflected in the snapshot and
// are skipped.
//
// The full movement list is loaded and filtered in memory, which is
// O(n) in ledger size; the monthly snapshots are what keep n bounded in
// practice.
func (p *Projector) Project(ctx context.Context, accountID string) (float64, error) {
	snapshot, err := p.snapshots.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest snapshot: %w", err)
	}

	now := p.now()
	baseline := startOfMonth(now)
	var balance float64
	if snapshot != nil {
		baseline = snapshot.MonthStart(now.Location())
		balance = snapshot.Balance
	}

	movements, err := p.movements.GetByAccountID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get movements: %w", err)
	}

	for _, mv := range movements {
		if mv.CreatedAt.Before(baseline) {
			continue
		}
		switch mv.Type {
		case models.Credit:
			balance += mv.Amount
		case models.Debit:
			balance -= mv.Amount
		}
	}

	return balance, nil
}
