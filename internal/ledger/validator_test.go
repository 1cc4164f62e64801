package ledger

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/saldoapp/account-ledger/internal/models"
	"github.com/saldoapp/account-ledger/internal/repository/memory"
)

// 2025-03-12 is a Wednesday, 2025-03-15 a Saturday.
var (
	businessHours = time.Date(2025, time.March, 12, 10, 0, 0, 0, time.Local)
	afterHours    = time.Date(2025, time.March, 12, 21, 0, 0, 0, time.Local)
	weekend       = time.Date(2025, time.March, 15, 10, 0, 0, 0, time.Local)
)

func newTestValidator(now time.Time) (*Validator, *memory.MovementRepository, *memory.SnapshotRepository) {
	movements := memory.NewMovementRepository()
	snapshots := memory.NewSnapshotRepository()
	projector := NewProjector(movements, snapshots)
	projector.now = func() time.Time { return now }
	v := NewValidator(movements, projector)
	v.now = func() time.Time { return now }
	return v, movements, snapshots
}

func seedBalance(t *testing.T, snapshots *memory.SnapshotRepository, accountID string, at time.Time, balance float64) {
	t.Helper()
	err := snapshots.Save(context.Background(), &models.BalanceSnapshot{
		AccountID: accountID,
		Year:      at.Year(),
		Month:     int(at.Month()),
		Balance:   balance,
	})
	if err != nil {
		t.Fatalf("failed to seed snapshot: %v", err)
	}
}

func seedDebit(t *testing.T, movements *memory.MovementRepository, accountID string, at time.Time, amount float64) {
	t.Helper()
	err := movements.Save(context.Background(), &models.AccountMovement{
		ID:        "seed-" + at.Format(time.RFC3339Nano),
		AccountID: accountID,
		Type:      models.Debit,
		Amount:    amount,
		CreatedAt: at,
	})
	if err != nil {
		t.Fatalf("failed to seed debit: %v", err)
	}
}

func TestValidator_Curfew(t *testing.T) {
	for _, hour := range []int{22, 23, 0, 5} {
		now := time.Date(2025, time.March, 12, hour, 0, 0, 0, time.Local)
		v, _, _ := newTestValidator(now)

		res, err := v.Validate(context.Background(), "a1", 100)
		if err != nil {
			t.Fatalf("hour %d: unexpected error: %v", hour, err)
		}
		if res.Valid {
			t.Errorf("hour %d: expected rejection during curfew", hour)
		}
		if res.Reason != reasonCurfew {
			t.Errorf("hour %d: expected curfew reason, got %q", hour, res.Reason)
		}
		if res.DailyWithdrawalRemaining != 0 {
			t.Errorf("hour %d: expected zero remaining, got %f", hour, res.DailyWithdrawalRemaining)
		}
	}
}

func TestValidator_CurfewEndsAtSix(t *testing.T) {
	now := time.Date(2025, time.March, 12, 6, 0, 0, 0, time.Local)
	v, _, snapshots := newTestValidator(now)
	seedBalance(t, snapshots, "a1", now, 1000)

	res, err := v.Validate(context.Background(), "a1", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected withdrawal at 06:00 to be valid, got reason %q", res.Reason)
	}
}

func TestValidator_NonPositiveAmount(t *testing.T) {
	v, _, _ := newTestValidator(businessHours)

	for _, amount := range []float64{0, -50} {
		res, err := v.Validate(context.Background(), "a1", amount)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Valid {
			t.Errorf("amount %f: expected rejection", amount)
		}
		if !strings.Contains(res.Reason, "greater than zero") {
			t.Errorf("amount %f: unexpected reason %q", amount, res.Reason)
		}
	}
}

func TestValidator_BelowMinimum(t *testing.T) {
	v, _, _ := newTestValidator(businessHours)

	res, err := v.Validate(context.Background(), "a1", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection below minimum")
	}
	if !strings.Contains(res.Reason, "minimum") {
		t.Errorf("expected reason to mention the minimum, got %q", res.Reason)
	}
	// rejected before the balance is projected
	if res.CurrentBalance != 0 || res.AvailableBalance != 0 {
		t.Errorf("expected zeroed balance fields, got %f/%f", res.CurrentBalance, res.AvailableBalance)
	}
}

func TestValidator_SingleCap(t *testing.T) {
	v, _, snapshots := newTestValidator(businessHours)
	seedBalance(t, snapshots, "a1", businessHours, 10000)

	res, err := v.Validate(context.Background(), "a1", 2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection above the single-withdrawal cap")
	}
	if !strings.Contains(res.Reason, "2000.00 per withdrawal") {
		t.Errorf("expected reason to name the cap, got %q", res.Reason)
	}

	// exactly at the cap passes this check
	res, err = v.Validate(context.Background(), "a1", 2000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected amount equal to the cap to be valid, got reason %q", res.Reason)
	}
}

func TestValidator_WeekendCap(t *testing.T) {
	v, _, snapshots := newTestValidator(weekend)
	seedBalance(t, snapshots, "a1", weekend, 10000)

	res, err := v.Validate(context.Background(), "a1", 600)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection above the weekend cap")
	}
	if !strings.Contains(res.Reason, "500.00") || !strings.Contains(res.Reason, "weekend") {
		t.Errorf("expected reason to reference the weekend cap, got %q", res.Reason)
	}
}

func TestValidator_AfterHoursCap(t *testing.T) {
	v, _, snapshots := newTestValidator(afterHours)
	seedBalance(t, snapshots, "a1", afterHours, 10000)

	res, err := v.Validate(context.Background(), "a1", 1500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection above the after-hours cap")
	}
	if !strings.Contains(res.Reason, "1000.00") || !strings.Contains(res.Reason, "after 20:00") {
		t.Errorf("expected reason to reference the after-hours cap, got %q", res.Reason)
	}
}

func TestValidator_DailyCap(t *testing.T) {
	v, movements, snapshots := newTestValidator(businessHours)
	seedBalance(t, snapshots, "a1", businessHours, 10000)
	// three debits earlier today totalling 4800
	for i, amount := range []float64{1600, 1600, 1600} {
		seedDebit(t, movements, "a1", businessHours.Add(-time.Duration(i+1)*time.Hour), amount)
	}

	res, err := v.Validate(context.Background(), "a1", 300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection above the daily cap")
	}
	if !strings.Contains(res.Reason, "daily") {
		t.Errorf("expected daily-cap reason, got %q", res.Reason)
	}
	if res.DailyWithdrawalRemaining != 200 {
		t.Errorf("expected remaining 200, got %f", res.DailyWithdrawalRemaining)
	}

	// an amount inside the remaining budget passes, same remaining reported
	res, err = v.Validate(context.Background(), "a1", 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected 150 to be valid, got reason %q", res.Reason)
	}
	if res.DailyWithdrawalRemaining != 200 {
		t.Errorf("expected remaining 200, got %f", res.DailyWithdrawalRemaining)
	}
}

func TestValidator_DailyCapIgnoresOtherDays(t *testing.T) {
	v, movements, snapshots := newTestValidator(businessHours)
	seedBalance(t, snapshots, "a1", businessHours, 10000)
	seedDebit(t, movements, "a1", businessHours.AddDate(0, 0, -1), 4900)

	res, err := v.Validate(context.Background(), "a1", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected yesterday's debits not to count, got reason %q", res.Reason)
	}
	if res.DailyWithdrawalRemaining != 5000 {
		t.Errorf("expected remaining 5000, got %f", res.DailyWithdrawalRemaining)
	}
}

func TestValidator_InsufficientBalance(t *testing.T) {
	v, _, snapshots := newTestValidator(businessHours)
	seedBalance(t, snapshots, "a1", businessHours, 100)

	res, err := v.Validate(context.Background(), "a1", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Valid {
		t.Error("expected rejection for insufficient balance")
	}
	if res.Reason != "insufficient balance" {
		t.Errorf("unexpected reason %q", res.Reason)
	}
	if res.AvailableBalance != 100 || res.CurrentBalance != 100 {
		t.Errorf("expected balance fields 100, got %f/%f", res.AvailableBalance, res.CurrentBalance)
	}
}

func TestTierAt(t *testing.T) {
	cases := []struct {
		at   time.Time
		want Tier
	}{
		{businessHours, TierBusinessHours},
		{time.Date(2025, time.March, 12, 6, 0, 0, 0, time.Local), TierBusinessHours},
		{time.Date(2025, time.March, 12, 20, 0, 0, 0, time.Local), TierAfterHours},
		{afterHours, TierAfterHours},
		{weekend, TierWeekend},
		{time.Date(2025, time.March, 16, 15, 0, 0, 0, time.Local), TierWeekend}, // Sunday
	}
	for _, c := range cases {
		if got := tierAt(c.at); got != c.want {
			t.Errorf("tierAt(%s) = %s, want %s", c.at, got, c.want)
		}
	}
}
