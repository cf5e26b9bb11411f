package ledger

import (
	"fmt"
	"time"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"
)

// NextDate returns the occurrence that follows start. Monthly and yearly
// steps land on the same day of month, or on the last day of the target
// month when that day does not exist there (Jan 31 -> Feb 29 -> Mar 29).
// Wall clock time and location are preserved.
func NextDate(start time.Time, interval models.RecurringInterval) (time.Time, error) {
	switch interval {
	case models.IntervalDaily:
		return start.AddDate(0, 0, 1), nil
	case models.IntervalWeekly:
		return start.AddDate(0, 0, 7), nil
	case models.IntervalMonthly:
		return addMonthsClamped(start, 1), nil
	case models.IntervalYearly:
		return addMonthsClamped(start, 12), nil
	default:
		return time.Time{}, fmt.Errorf("%w %q", apperr.ErrInvalidInterval, interval)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	if last := daysIn(target.Year(), target.Month()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
