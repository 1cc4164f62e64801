package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository"
)

func TestAccountRepository_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	account := &models.Account{ID: "a1", BusinessID: "b1", Name: "checking"}
	if err := repo.Save(ctx, account); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetByID(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BusinessID != "b1" {
		t.Errorf("expected business b1, got %s", got.BusinessID)
	}

	if err := repo.Save(ctx, account); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAccountRepository_GetByBusinessID(t *testing.T) {
	ctx := context.Background()
	repo := NewAccountRepository()

	_ = repo.Save(ctx, &models.Account{ID: "a1", BusinessID: "b1"})
	_ = repo.Save(ctx, &models.Account{ID: "a2", BusinessID: "b1"})
	_ = repo.Save(ctx, &models.Account{ID: "a3", BusinessID: "b2"})

	accounts, err := repo.GetByBusinessID(ctx, "b1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Errorf("expected 2 accounts, got %d", len(accounts))
	}
}

func TestMovementRepository_SumDebitsWindow(t *testing.T) {
	ctx := context.Background()
	repo := NewMovementRepository()
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, time.Local)

	save := func(id string, mvType models.MovementType, amount float64, at time.Time) {
		t.Helper()
		if err := repo.Save(ctx, &models.AccountMovement{
			ID: id, AccountID: "a1", Type: mvType, Amount: amount, CreatedAt: at,
		}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	save("m1", models.Debit, 100, day.Add(9*time.Hour))
	save("m2", models.Debit, 50, day.Add(15*time.Hour))
	save("m3", models.Credit, 999, day.Add(10*time.Hour)) // credits never count
	save("m4", models.Debit, 70, day.AddDate(0, 0, -1))   // previous day

	from := day
	to := day.Add(24*time.Hour - time.Nanosecond)
	total, err := repo.SumDebits(ctx, "a1", from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 150 {
		t.Errorf("expected 150, got %f", total)
	}

	// inclusive bounds
	total, err = repo.SumDebits(ctx, "a1", day.Add(9*time.Hour), day.Add(15*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != 150 {
		t.Errorf("expected inclusive bounds to yield 150, got %f", total)
	}
}

func TestMovementRepository_Pagination(t *testing.T) {
	ctx := context.Background()
	repo := NewMovementRepository()
	base := time.Date(2025, time.March, 12, 9, 0, 0, 0, time.Local)

	for i := 0; i < 5; i++ {
		_ = repo.Save(ctx, &models.AccountMovement{
			ID:        string(rune('a' + i)),
			AccountID: "a1",
			Type:      models.Credit,
			Amount:    float64(i + 1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := repo.GetPageByAccountID(ctx, "a1", 2, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(page))
	}
	// newest first
	if page[0].Amount != 5 || page[1].Amount != 4 {
		t.Errorf("expected newest first, got %f then %f", page[0].Amount, page[1].Amount)
	}

	page, _ = repo.GetPageByAccountID(ctx, "a1", 10, 4)
	if len(page) != 1 {
		t.Errorf("expected 1 movement at offset 4, got %d", len(page))
	}

	page, _ = repo.GetPageByAccountID(ctx, "a1", 10, 99)
	if len(page) != 0 {
		t.Errorf("expected empty page past the end, got %d", len(page))
	}
}

func TestSnapshotRepository_Latest(t *testing.T) {
	ctx := context.Background()
	repo := NewSnapshotRepository()

	latest, err := repo.GetLatestByAccountID(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest != nil {
		t.Errorf("expected nil for account without snapshots, got %+v", latest)
	}

	_ = repo.Save(ctx, &models.BalanceSnapshot{AccountID: "a1", Year: 2024, Month: 12, Balance: 10})
	_ = repo.Save(ctx, &models.BalanceSnapshot{AccountID: "a1", Year: 2025, Month: 2, Balance: 30})
	_ = repo.Save(ctx, &models.BalanceSnapshot{AccountID: "a1", Year: 2025, Month: 1, Balance: 20})

	latest, err = repo.GetLatestByAccountID(ctx, "a1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if latest == nil || latest.Year != 2025 || latest.Month != 2 {
		t.Fatalf("expected 2025-02 snapshot, got %+v", latest)
	}

	err = repo.Save(ctx, &models.BalanceSnapshot{AccountID: "a1", Year: 2025, Month: 2, Balance: 99})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for same month, got %v", err)
	}
}
