package ledger

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/saldoapp/account-ledger/internal/lock"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// TxManager runs a function within an atomic scope. The scope rolls
// back when the function returns an error and commits otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CreateMovementInput carries the parameters of one recording request.
type CreateMovementInput struct {
	AccountID   string
	BusinessID  string
	Type        models.MovementType
	Amount      float64
	Description string
}

// Recorder atomically validates and persists ledger movements. Calls
// for the same account are serialized through the lock manager; calls
// for different accounts run concurrently.
type Recorder struct {
	accounts  repository.AccountRepository
	movements repository.MovementRepository
	validator *Validator
	locks     lock.Manager
	tx        TxManager
	now       func() time.Time
}

func NewRecorder(
	accounts repository.AccountRepository,
	movements repository.MovementRepository,
	validator *Validator,
	locks lock.Manager,
	tx TxManager,
) *Recorder {
	return &Recorder{
		accounts:  accounts,
		movements: movements,
		validator: validator,
		locks:     locks,
		tx:        tx,
		now:       time.Now,
	}
}

// CreateMovement runs the single linear protocol
// acquire-lock, begin-tx, validate, persist, commit, release-lock.
// Every failure is terminal for this call: there is no waiting on the
// lock and no retry. Errors outside the closed taxonomy are normalized
// to ErrInternal.
func (r *Recorder) CreateMovement(ctx context.Context, in CreateMovementInput) (*models.AccountMovement, error) {
	if in.Type != models.Credit && in.Type != models.Debit {
		return nil, &InvalidOperationError{Reason: "unknown movement type"}
	}
	if in.Amount <= 0 {
		return nil, &InvalidOperationError{Reason: "amount must be greater than zero"}
	}

	key := "account:" + in.AccountID
	acquired, err := r.locks.Acquire(ctx, key)
	if err != nil {
		return nil, normalizeErr(err)
	}
	if !acquired {
		return nil, ErrLockNotAcquired
	}
	defer func() {
		// A release failure is logged only; it never changes the
		// already-decided outcome of the operation.
		if err := r.locks.Release(ctx, key); err != nil {
			log.Printf("failed to release lock %s: %v", key, err)
		}
	}()

	var movement *models.AccountMovement
	err = r.tx.WithinTx(ctx, func(ctx context.Context) error {
		account, err := r.accounts.GetByID(ctx, in.AccountID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}
		if account.BusinessID != in.BusinessID {
			return ErrNotAllowed
		}

		if in.Type == models.Debit {
			result, err := r.validator.Validate(ctx, in.AccountID, in.Amount)
			if err != nil {
				return err
			}
			if !result.Valid {
				return &InvalidOperationError{Reason: result.Reason}
			}
		}

		movement = &models.AccountMovement{
			ID:          uuid.New().String(),
			AccountID:   in.AccountID,
			Type:        in.Type,
			Amount:      in.Amount,
			Description: in.Description,
			CreatedAt:   r.now(),
		}
		return r.movements.Save(ctx, movement)
	})
	if err != nil {
		return nil, normalizeErr(err)
	}

	return movement, nil
}
