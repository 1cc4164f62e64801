// Package snapshot maintains the monthly balance checkpoints that keep
// balance projections from replaying the full ledger.
package snapshot

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// Snapshotter writes, for each active account, one snapshot per month
// holding the balance as of the first day of that month.
type Snapshotter struct {
	movements repository.MovementRepository
	snapshots repository.SnapshotRepository
	now       func() time.Time
}

func NewSnapshotter(movements repository.MovementRepository, snapshots repository.SnapshotRepository) *Snapshotter {
	return &Snapshotter{
		movements: movements,
		snapshots: snapshots,
		now:       time.Now,
	}
}

// EnsureCurrentMonth writes the snapshot for the running month if it
// does not exist yet. It returns the created snapshot, or nil when the
// month was already covered.
func (s *Snapshotter) EnsureCurrentMonth(ctx context.Context, accountID string) (*models.BalanceSnapshot, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	latest, err := s.snapshots.GetLatestByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	if latest != nil && latest.Year == now.Year() && latest.Month == int(now.Month()) {
		return nil, nil
	}

	// Balance as of the month boundary: previous snapshot plus the
	// movements between its baseline and the boundary.
	var balance float64
	baseline := time.Time{}
	if latest != nil {
		balance = latest.Balance
		baseline = latest.MonthStart(now.Location())
	}

	movements, err := s.movements.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get movements: %w", err)
	}
	for _, mv := range movements {
		if mv.CreatedAt.Before(baseline) || !mv.CreatedAt.Before(monthStart) {
			continue
		}
		switch mv.Type {
		case models.Credit:
			balance += mv.Amount
		case models.Debit:
			balance -= mv.Amount
		}
	}

	created := &models.BalanceSnapshot{
		AccountID: accountID,
		Year:      now.Year(),
		Month:     int(now.Month()),
		Balance:   balance,
		CreatedAt: now,
	}
	if err := s.snapshots.Save(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	return created, nil
}

// Run consumes recorded movements and keeps the current-month snapshot
// of every account that moves. It returns when the channel closes or
// the context is cancelled.
func (s *Snapshotter) Run(ctx context.Context, movements <-chan models.AccountMovement) {
	for {
		select {
		case <-ctx.Done():
			return
		case mv, ok := <-movements:
			if !ok {
				return
			}
			if _, err := s.EnsureCurrentMonth(ctx, mv.AccountID); err != nil {
				log.Printf("failed to snapshot account %s: %v", mv.AccountID, err)
			}
		}
	}
}
