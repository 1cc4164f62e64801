package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/saldoapp/account-ledger/internal/repository"
)

// ValidationResult reports whether a withdrawal would be accepted right
// now and why not when it would not.
type ValidationResult struct {
	Valid                    bool
	CurrentBalance           float64
	AvailableBalance         float64
	DailyWithdrawalRemaining float64
	Reason                   string
}

// Validator decides whether a debit of a given amount is currently
// permitted for an account. It is read-only: recording the movement is
// the Recorder's job.
type Validator struct {
	movements repository.MovementRepository
	projector *Projector
	limits    map[Tier]Limits
	now       func() time.Time
}

func NewValidator(movements repository.MovementRepository, projector *Projector) *Validator {
	return &Validator{
		movements: movements,
		projector: projector,
		limits:    DefaultLimits,
		now:       time.Now,
	}
}

const reasonCurfew = "withdrawals are not allowed between 22:00 and 06:00"

// Validate runs the checks in a fixed order and returns at the first
// failing one: curfew, positive amount, tier minimum, single-transaction
// cap, daily cumulative cap, balance sufficiency. Balance fields are
// zero on rejections that happen before the balance is projected.
func (v *Validator) Validate(ctx context.Context, accountID string, amount float64) (ValidationResult, error) {
	now := v.now()

	if inCurfew(now) {
		return ValidationResult{Reason: reasonCurfew}, nil
	}

	tier := tierAt(now)
	limits := v.limits[tier]

	debitsToday, err := v.movements.SumDebits(ctx, accountID, startOfDay(now), endOfDay(now))
	if err != nil {
		return ValidationResult{}, fmt.Errorf("failed to sum today's debits: %w", err)
	}

	remaining := limits.Daily - debitsToday
	if remaining < 0 {
		remaining = 0
	}
	result := ValidationResult{DailyWithdrawalRemaining: remaining}

	if amount <= 0 {
		result.Reason = "amount must be greater than zero"
		return result, nil
	}

	if amount < limits.Minimum {
		result.Reason = fmt.Sprintf("amount is below the minimum withdrawal of %.2f", limits.Minimum)
		return result, nil
	}

	if amount > limits.Single {
		result.Reason = fmt.Sprintf("amount exceeds the limit of %.2f per withdrawal%s", limits.Single, tierSuffix(tier))
		return result, nil
	}

	if debitsToday+amount > limits.Daily {
		result.Reason = fmt.Sprintf("daily withdrawal limit of %.2f exceeded", limits.Daily)
		return result, nil
	}

	balance, err := v.projector.Project(ctx, accountID)
	if err != nil {
		return ValidationResult{}, fmt.Errorf("failed to project balance: %w", err)
	}
	result.CurrentBalance = balance
	result.AvailableBalance = balance

	if balance < amount {
		result.Reason = "insufficient balance"
		return result, nil
	}

	result.Valid = true
	return result, nil
}

func tierSuffix(tier Tier) string {
	switch tier {
	case TierWeekend:
		return " on weekends"
	case TierAfterHours:
		return " after 20:00"
	default:
		return ""
	}
}
