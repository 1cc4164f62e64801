package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

type MovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*models.AccountMovement
	index     map[string][]string
}

func NewMovementRepository() *MovementRepository {
	return &MovementRepository{
		movements: make(map[string]*models.AccountMovement),
		index:     make(map[string][]string),
	}
}

func (r *MovementRepository) Save(ctx context.Context, movement *models.AccountMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.movements[movement.ID]; exists {
		return fmt.Errorf("%w: movement %s", repository.ErrDuplicate, movement.ID)
	}

	r.movements[movement.ID] = movement
	r.index[movement.AccountID] = append(r.index[movement.AccountID], movement.ID)

	return nil
}

func (r *MovementRepository) GetByAccountID(ctx context.Context, accountID string) ([]*models.AccountMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.AccountMovement, 0, len(r.index[accountID]))
	for _, id := range r.index[accountID] {
		result = append(result, r.movements[id])
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

func (r *MovementRepository) GetPageByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*models.AccountMovement, error) {
	all, err := r.GetByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// newest first, like the SQL listing
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return []*models.AccountMovement{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

func (r *MovementRepository) SumDebits(ctx context.Context, accountID string, from, to time.Time) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var total float64
	for _, id := range r.index[accountID] {
		mv := r.movements[id]
		if mv.Type != models.Debit {
			continue
		}
		if mv.CreatedAt.Before(from) || mv.CreatedAt.After(to) {
			continue
		}
		total += mv.Amount
	}

	return total, nil
}
