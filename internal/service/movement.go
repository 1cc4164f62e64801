package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/saldoapp/account-ledger/internal/ledger"
	"github.com/saldoapp/account-ledger/internal/metrics"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

// AuditStore appends movement audit records.
type AuditStore interface {
	CreateAudit(ctx context.Context, audit *models.MovementAudit) error
}

// MovementPublisher announces persisted movements to downstream
// consumers (snapshot processor).
type MovementPublisher interface {
	PublishMovement(ctx context.Context, movement *models.AccountMovement) error
}

// MovementService wraps the ledger recorder with the audit trail, the
// movement queue and metrics.
type MovementService struct {
	recorder  *ledger.Recorder
	validator *ledger.Validator
	movements repository.MovementRepository
	audit     AuditStore
	publisher MovementPublisher
	metrics   *metrics.Collector
}

func NewMovementService(
	recorder *ledger.Recorder,
	validator *ledger.Validator,
	movements repository.MovementRepository,
	audit AuditStore,
	publisher MovementPublisher,
	collector *metrics.Collector,
) *MovementService {
	return &MovementService{
		recorder:  recorder,
		validator: validator,
		movements: movements,
		audit:     audit,
		publisher: publisher,
		metrics:   collector,
	}
}

// CreateMovement records a movement through the ledger recorder and
// fans the result out: an audit record on every outcome, a queue message
// and metrics on success. Audit and publish failures are logged and do
// not fail the already-recorded movement.
func (s *MovementService) CreateMovement(ctx context.Context, in ledger.CreateMovementInput) (*models.AccountMovement, error) {
	start := time.Now()
	movement, err := s.recorder.CreateMovement(ctx, in)

	audit := &models.MovementAudit{
		AccountID:  in.AccountID,
		BusinessID: in.BusinessID,
		Type:       in.Type,
		Amount:     in.Amount,
	}

	if err != nil {
		audit.Outcome = models.OutcomeFailed
		audit.Reason = err.Error()

		var invalidOp *ledger.InvalidOperationError
		switch {
		case errors.As(err, &invalidOp):
			audit.Outcome = models.OutcomeRejected
			audit.Reason = invalidOp.Reason
			s.metrics.RecordRejection("invalid_operation", time.Since(start))
		case errors.Is(err, ledger.ErrNotFound):
			audit.Outcome = models.OutcomeRejected
			s.metrics.RecordRejection("not_found", time.Since(start))
		case errors.Is(err, ledger.ErrNotAllowed):
			audit.Outcome = models.OutcomeRejected
			s.metrics.RecordRejection("not_allowed", time.Since(start))
		case errors.Is(err, ledger.ErrLockNotAcquired):
			audit.Outcome = models.OutcomeRejected
			s.metrics.RecordRejection("lock_contention", time.Since(start))
		default:
			s.metrics.RecordRejection("internal", time.Since(start))
		}

		s.writeAudit(ctx, audit)
		return nil, err
	}

	audit.Outcome = models.OutcomeAccepted
	s.writeAudit(ctx, audit)

	if pubErr := s.publisher.PublishMovement(ctx, movement); pubErr != nil {
		log.Printf("failed to publish movement %s: %v", movement.ID, pubErr)
	}
	s.metrics.RecordMovement(string(movement.Type), time.Since(start))

	return movement, nil
}

func (s *MovementService) writeAudit(ctx context.Context, audit *models.MovementAudit) {
	if err := s.audit.CreateAudit(ctx, audit); err != nil {
		log.Printf("failed to write audit record for account %s: %v", audit.AccountID, err)
	}
}

// ValidateWithdrawal runs the balance validator without recording
// anything.
func (s *MovementService) ValidateWithdrawal(ctx context.Context, accountID string, amount float64) (ledger.ValidationResult, error) {
	result, err := s.validator.Validate(ctx, accountID, amount)
	if err != nil {
		return ledger.ValidationResult{}, fmt.Errorf("failed to validate withdrawal: %w", err)
	}

	return result, nil
}

// ListMovements retrieves one ledger page for an account.
func (s *MovementService) ListMovements(ctx context.Context, accountID string, limit, offset int) ([]*models.AccountMovement, error) {
	movements, err := s.movements.GetPageByAccountID(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}

	return movements, nil
}
