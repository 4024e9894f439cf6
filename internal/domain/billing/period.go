package billing

import (
	"fmt"
	"time"

	"school-admin-app/internal/domain/plans"
)

// Period is one billing interval: it runs from Start until
// NextBillingDate, when the gateway charges again.
type Period struct {
	Start           time.Time
	NextBillingDate time.Time
}

// ComputePeriod derives the billing period that begins at start for the
// given cycle. MONTHLY advances exactly one calendar month and YEARLY
// exactly one calendar year, clamping to the last day when the target
// month is shorter (Jan 31 -> Feb 29 in a leap year, Feb 29 -> Feb 28
// the year after). Unrecognized cycles fail; the catalog type allows
// future values but the engine must never guess a period length.
func ComputePeriod(cycle plans.BillingCycle, start time.Time) (Period, error) {
	switch cycle {
	case plans.CycleMonthly:
		return Period{Start: start, NextBillingDate: addMonthsClamped(start, 1)}, nil
	case plans.CycleYearly:
		return Period{Start: start, NextBillingDate: addYearsClamped(start, 1)}, nil
	default:
		return Period{}, fmt.Errorf("%w: %q", ErrUnsupportedBillingCycle, cycle)
	}
}

// addMonthsClamped is AddDate without its normalization quirk: Go turns
// Jan 31 + 1 month into Mar 2/3, billing needs the last day of February.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return target.AddDate(0, 0, day-1)
}

func addYearsClamped(t time.Time, years int) time.Time {
	year, month, day := t.Date()
	if last := daysIn(year+years, month); day > last {
		day = last
	}
	return time.Date(year+years, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
