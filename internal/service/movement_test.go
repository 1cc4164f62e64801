package service

import (
	"context"
	"errors"
	"testing"

	"github.com/saldoapp/account-ledger/internal/ledger"
	"github.com/saldoapp/account-ledger/internal/lock"
	"github.com/saldoapp/account-ledger/internal/metrics"
	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository/memory"
)

type fakeAuditStore struct {
	records []*models.MovementAudit
}

func (f *fakeAuditStore) CreateAudit(ctx context.Context, audit *models.MovementAudit) error {
	f.records = append(f.records, audit)
	return nil
}

type fakePublisher struct {
	published []*models.AccountMovement
}

func (f *fakePublisher) PublishMovement(ctx context.Context, movement *models.AccountMovement) error {
	f.published = append(f.published, movement)
	return nil
}

func newMovementServiceFixture(t *testing.T) (*MovementService, *fakeAuditStore, *fakePublisher) {
	t.Helper()

	accounts := memory.NewAccountRepository()
	movements := memory.NewMovementRepository()
	snapshots := memory.NewSnapshotRepository()

	projector := ledger.NewProjector(movements, snapshots)
	validator := ledger.NewValidator(movements, projector)
	recorder := ledger.NewRecorder(accounts, movements, validator, lock.NewMemoryManager(), memory.NewTxManager())

	if err := accounts.Save(context.Background(), &models.Account{ID: "a1", BusinessID: "b1", Name: "checking"}); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	audit := &fakeAuditStore{}
	publisher := &fakePublisher{}
	svc := NewMovementService(recorder, validator, movements, audit, publisher, metrics.NewCollector())

	return svc, audit, publisher
}

func TestMovementService_AcceptedMovementAuditedAndPublished(t *testing.T) {
	svc, audit, publisher := newMovementServiceFixture(t)

	mv, err := svc.CreateMovement(context.Background(), ledger.CreateMovementInput{
		AccountID: "a1", BusinessID: "b1", Type: models.Credit, Amount: 250,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(audit.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(audit.records))
	}
	if audit.records[0].Outcome != models.OutcomeAccepted {
		t.Errorf("expected accepted outcome, got %s", audit.records[0].Outcome)
	}

	if len(publisher.published) != 1 || publisher.published[0].ID != mv.ID {
		t.Errorf("expected the created movement to be published, got %+v", publisher.published)
	}
}

func TestMovementService_RejectionAuditedWithReason(t *testing.T) {
	svc, audit, publisher := newMovementServiceFixture(t)

	// empty ledger: any debit fails validation regardless of the hour
	_, err := svc.CreateMovement(context.Background(), ledger.CreateMovementInput{
		AccountID: "a1", BusinessID: "b1", Type: models.Debit, Amount: -1,
	})
	var invalidOp *ledger.InvalidOperationError
	if !errors.As(err, &invalidOp) {
		t.Fatalf("expected InvalidOperationError, got %v", err)
	}

	if len(audit.records) != 1 {
		t.Fatalf("expected 1 audit record, got %d", len(audit.records))
	}
	if audit.records[0].Outcome != models.OutcomeRejected {
		t.Errorf("expected rejected outcome, got %s", audit.records[0].Outcome)
	}
	if audit.records[0].Reason == "" {
		t.Error("expected audit record to carry the rejection reason")
	}

	if len(publisher.published) != 0 {
		t.Errorf("expected nothing published for a rejected movement, got %d", len(publisher.published))
	}
}

func TestMovementService_NotAllowedAudited(t *testing.T) {
	svc, audit, _ := newMovementServiceFixture(t)

	_, err := svc.CreateMovement(context.Background(), ledger.CreateMovementInput{
		AccountID: "a1", BusinessID: "b2", Type: models.Credit, Amount: 50,
	})
	if !errors.Is(err, ledger.ErrNotAllowed) {
		t.Fatalf("expected ErrNotAllowed, got %v", err)
	}

	if len(audit.records) != 1 || audit.records[0].Outcome != models.OutcomeRejected {
		t.Fatalf("expected one rejected audit record, got %+v", audit.records)
	}
}
