package models

import (
	"time"
)

type AuditOutcome string

const (
	// OutcomeAccepted indicates the movement passed validation and was persisted
	OutcomeAccepted AuditOutcome = "accepted"

	// OutcomeRejected indicates the movement was refused by a business rule
	OutcomeRejected AuditOutcome = "rejected"

	// OutcomeFailed indicates an infrastructure failure while recording
	OutcomeFailed AuditOutcome = "failed"
)

// MovementAudit is one record of the audit trail: every recording
// attempt is written here, including the ones that never produced a
// ledger entry.
type MovementAudit struct {
	ID         string       `json:"id" bson:"_id"`
	AccountID  string       `json:"account_id" bson:"account_id"`
	BusinessID string       `json:"business_id" bson:"business_id"`
	Type       MovementType `json:"type" bson:"type"`
	Amount     float64      `json:"amount" bson:"amount"`
	Outcome    AuditOutcome `json:"outcome" bson:"outcome"`
	Reason     string       `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt  time.Time    `json:"created_at" bson:"created_at"`
}
