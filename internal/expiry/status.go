package expiry

import (
	"cmp"
	"math"
	"slices"
	"time"
)

type Status string

const (
	StatusNoDate   Status = "no-date"
	StatusExpired  Status = "expired"
	StatusCritical Status = "critical"
	StatusWarning  Status = "warning"
	StatusCaution  Status = "caution"
	StatusGood     Status = "good"
)

// Window sizes in days.
const (
	SoonDays = 3
	WeekDays = 7
)

const day = 24 * time.Hour

// DaysUntil returns the number of whole days, rounded up, from now until expiry.
func DaysUntil(expiry, now time.Time) int {
	ms := expiry.Sub(now).Milliseconds()
	return int(math.Ceil(float64(ms) / float64(day.Milliseconds())))
}

// ComputeStatus buckets an optional expiry relative to now. An expiry in the
// past is expired with at least -1 days, even when it rounds up to zero.
func ComputeStatus(expiry *time.Time, now time.Time) (Status, *int) {
	if expiry == nil {
		return StatusNoDate, nil
	}
	days := DaysUntil(*expiry, now)
	if expiry.Before(now) && days >= 0 {
		days = -1
	}
	switch {
	case days < 0:
		return StatusExpired, &days
	case days <= 1:
		return StatusCritical, &days
	case days <= SoonDays:
		return StatusWarning, &days
	case days <= WeekDays:
		return StatusCaution, &days
	default:
		return StatusGood, &days
	}
}

// Cutoff is the latest expiry that still falls within a window of days from now.
func Cutoff(now time.Time, days int) time.Time {
	return now.Add(time.Duration(days) * day)
}

// Within reports whether expiry is set and no later than days from now.
func Within(expiry *time.Time, now time.Time, days int) bool {
	return expiry != nil && !expiry.After(Cutoff(now, days))
}

// Sort orders items ascending by expiry. Items without one go last, and the
// relative order of equal keys is kept.
func Sort[T any](items []T, expiryOf func(T) *time.Time) {
	slices.SortStableFunc(items, func(a, b T) int {
		ea, eb := expiryOf(a), expiryOf(b)
		switch {
		case ea == nil && eb == nil:
			return 0
		case ea == nil:
			return 1
		case eb == nil:
			return -1
		}
		return cmp.Compare(ea.UnixMilli(), eb.UnixMilli())
	})
}
