package models

import (
	"time"
)

type MovementType string

const (
	// Credit adds funds to the account balance
	Credit MovementType = "CREDIT"

	// Debit removes funds from the account balance
	Debit MovementType = "DEBIT"
)

// AccountMovement is one entry of the append-only ledger. Movements are
// never updated or deleted once written.
type AccountMovement struct {
	ID          string       `json:"id" db:"id"`
	AccountID   string       `json:"account_id" db:"account_id"`
	Type        MovementType `json:"type" db:"type"`
	Amount      float64      `json:"amount" db:"amount"`
	Description string       `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// represents the request to record a new movement
type MovementRequest struct {
	Type        MovementType `json:"type" validate:"required,oneof=CREDIT DEBIT"`
	Amount      float64      `json:"amount" validate:"required,gt=0"`
	Description string       `json:"description,omitempty"`
}

// represents the API response for movement data
type MovementResponse struct {
	ID          string       `json:"id"`
	AccountID   string       `json:"account_id"`
	Type        MovementType `json:"type"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// WithdrawalValidationRequest asks whether a debit of Amount would
// currently be accepted, without recording anything.
type WithdrawalValidationRequest struct {
	Amount float64 `json:"amount" validate:"required,gt=0"`
}

type WithdrawalValidationResponse struct {
	IsValid                  bool    `json:"is_valid"`
	CurrentBalance           float64 `json:"current_balance"`
	AvailableBalance         float64 `json:"available_balance"`
	DailyWithdrawalRemaining float64 `json:"daily_withdrawal_remaining"`
	Reason                   string  `json:"reason,omitempty"`
}
