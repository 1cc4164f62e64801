package repository

import (
	"context"
	"errors"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
)

type AccountRepository interface {
	Save(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByBusinessID(ctx context.Context, businessID string) ([]*models.Account, error)
}

type MovementRepository interface {
	Save(ctx context.Context, movement *models.AccountMovement) error
	GetByAccountID(ctx context.Context, accountID string) ([]*models.AccountMovement, error)
	GetPageByAccountID(ctx context.Context, accountID string, limit, offset int) ([]*models.AccountMovement, error)
	// SumDebits returns the total DEBIT amount for the account with
	// created_at in [from, to], bounds inclusive.
	SumDebits(ctx context.Context, accountID string, from, to time.Time) (float64, error)
}

type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *models.BalanceSnapshot) error
	// GetLatestByAccountID returns the snapshot with the highest
	// (year, month) for the account, or nil when none exists.
	GetLatestByAccountID(ctx context.Context, accountID string) (*models.BalanceSnapshot, error)
}

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate entry")
)
