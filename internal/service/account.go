package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saldoapp/account-ledger/internal/ledger"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// handles account operations
type AccountService struct {
	accounts  repository.AccountRepository
	projector *ledger.Projector
}

// creates a new Account Service
func NewAccountService(accounts repository.AccountRepository, projector *ledger.Projector) *AccountService {
	return &AccountService{
		accounts:  accounts,
		projector: projector,
	}
}

// creates a new account for a business
func (s *AccountService) CreateAccount(ctx context.Context, businessID, name string) (*models.Account, error) {
	if name == "" {
		return nil, &ledger.InvalidOperationError{Reason: "account name is required"}
	}

	now := time.Now()
	account := &models.Account{
		ID:         uuid.New().String(),
		BusinessID: businessID,
		Name:       name,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// retrieves an account, enforcing business ownership
func (s *AccountService) GetAccount(ctx context.Context, id, businessID string) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.BusinessID != businessID {
		return nil, ledger.ErrNotAllowed
	}

	return account, nil
}

// lists the accounts of a business
func (s *AccountService) ListAccounts(ctx context.Context, businessID string) ([]*models.Account, error) {
	accounts, err := s.accounts.GetByBusinessID(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, nil
}

// GetBalance projects the current balance of an account
func (s *AccountService) GetBalance(ctx context.Context, id, businessID string) (float64, error) {
	if _, err := s.GetAccount(ctx, id, businessID); err != nil {
		return 0, err
	}

	balance, err := s.projector.Project(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to project balance: %w", err)
	}

	return balance, nil
}
