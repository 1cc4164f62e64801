package models

import (
	"time"
)

// BalanceSnapshot is a monthly checkpoint of an account balance. Its
// Balance holds the account balance as of the first day of Year/Month,
// so a projection only needs to replay movements from that point on.
type BalanceSnapshot struct {
	AccountID string    `json:"account_id" db:"account_id"`
	Year      int       `json:"year" db:"year"`
	Month     int       `json:"month" db:"month"`
	Balance   float64   `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MonthStart returns the first instant of the snapshot's month in loc.
func (s *BalanceSnapshot) MonthStart(loc *time.Location) time.Time {
	return time.Date(s.Year, time.Month(s.Month), 1, 0, 0, 0, 0, loc)
}
