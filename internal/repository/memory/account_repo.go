package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

type AccountRepository struct {
	mu            sync.RWMutex
	accounts      map[string]*models.Account
	businessIndex map[string][]string
}

func NewAccountRepository() *AccountRepository {
	return &AccountRepository{
		accounts:      make(map[string]*models.Account),
		businessIndex: make(map[string][]string),
	}
}

func (r *AccountRepository) Save(ctx context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.ID]; exists {
		return fmt.Errorf("%w: account %s", repository.ErrDuplicate, account.ID)
	}

	r.accounts[account.ID] = account
	r.businessIndex[account.BusinessID] = append(r.businessIndex[account.BusinessID], account.ID)

	return nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.accounts[id]
	if !exists {
		return nil, fmt.Errorf("%w: account %s", repository.ErrNotFound, id)
	}
	return account, nil
}

func (r *AccountRepository) GetByBusinessID(ctx context.Context, businessID string) ([]*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Account, 0, len(r.businessIndex[businessID]))
	for _, id := range r.businessIndex[businessID] {
		if account, exists := r.accounts[id]; exists {
			result = append(result, account)
		}
	}

	return result, nil
}
