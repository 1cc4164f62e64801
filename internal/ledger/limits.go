package ledger

import (
	"time"
)

// Tier identifies which withdrawal limit configuration applies at a
// given moment.
type Tier string

const (
	TierBusinessHours Tier = "business_hours"
	TierAfterHours    Tier = "after_hours"
	TierWeekend       Tier = "weekend"
)

// Limits are expressed in whole currency units (BRL).
type Limits struct {
	Daily   float64
	Single  float64
	Minimum float64
}

// DefaultLimits is the standard limit table. The validator takes the
// table as data so tests can swap it without touching control flow.
var DefaultLimits = map[Tier]Limits{
	TierBusinessHours: {Daily: 5000, Single: 2000, Minimum: 20},
	TierAfterHours:    {Daily: 3000, Single: 1000, Minimum: 20},
	TierWeekend:       {Daily: 2000, Single: 500, Minimum: 20},
}

// Withdrawals are shut off completely between curfewStart (inclusive)
// and curfewEnd (exclusive), every day of the week.
const (
	curfewStartHour = 22
	curfewEndHour   = 6

	businessHoursStart = 6
	businessHoursEnd   = 20
)

func inCurfew(t time.Time) bool {
	h := t.Hour()
	return h >= curfewStartHour || h < curfewEndHour
}

// tierAt classifies t. Weekend wins over the hour of day.
func tierAt(t time.Time) Tier {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return TierWeekend
	}
	if h := t.Hour(); h >= businessHoursStart && h < businessHoursEnd {
		return TierBusinessHours
	}
	return TierAfterHours
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
