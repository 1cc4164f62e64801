package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the account does not exist.
	ErrNotFound = errors.New("account not found")

	// ErrNotAllowed indicates the account belongs to another business.
	ErrNotAllowed = errors.New("account does not belong to this business")

	// ErrLockNotAcquired indicates another movement for the same account
	// is in flight.
	ErrLockNotAcquired = errors.New("account is locked by another operation")

	// ErrInternal wraps unanticipated infrastructure failures so callers
	// never have to match on raw repository or driver errors.
	ErrInternal = errors.New("internal error")
)

// InvalidOperationError is returned when a debit is refused by the
// balance validator. Reason carries the human-readable explanation.
type InvalidOperationError struct {
	Reason string
}

func (e *InvalidOperationError) Error() string {
	return "invalid operation: " + e.Reason
}

// normalizeErr passes the closed error set through untouched and wraps
// everything else in ErrInternal.
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}

	var invalidOp *InvalidOperationError
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNotAllowed),
		errors.Is(err, ErrLockNotAcquired),
		errors.As(err, &invalidOp):
		return err
	}

	return fmt.Errorf("%w: %v", ErrInternal, err)
}
