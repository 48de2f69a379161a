// Package progress holds the credit and streak rules shared by the judge
// worker and by profile reads. Keeping the streak rule in one place is what
// guarantees the incrementally-stored streak and the recomputed-on-read
// streak cannot diverge.
package progress

import "time"

const (
	// DailyRunQuota and DailySubmissionQuota are separate per-calendar-day
	// pools. Pro-tier users bypass both.
	DailyRunQuota        = 3
	DailySubmissionQuota = 3
)

// SameCalendarDay compares calendar date, not a rolling 24h window: a reset
// can occur in under 24 hours if it crosses midnight, or not at all within
// the same day. Comparison is done in UTC.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// calendarDaysBetween returns the number of calendar-day boundaries crossed
// between a and b (b after a), ignoring time of day.
func calendarDaysBetween(a, b time.Time) int {
	au := a.UTC()
	bu := b.UTC()
	aDay := time.Date(au.Year(), au.Month(), au.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(bu.Year(), bu.Month(), bu.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}

// AdvanceStreak is the single authoritative streak rule. Given the previous
// solve time (nil for a first solve), the current streak and the new solve
// time, it returns the new streak: +1 when the solve lands exactly one
// calendar day after the previous one, unchanged for a same-day solve, and
// back to 1 for any larger gap.
func AdvanceStreak(lastSolved *time.Time, streak int, solvedAt time.Time) int {
	if lastSolved == nil {
		return 1
	}
	switch days := calendarDaysBetween(*lastSolved, solvedAt); days {
	case 0:
		if streak < 1 {
			return 1
		}
		return streak
	case 1:
		return streak + 1
	default:
		return 1
	}
}

// StreakFromHistory recomputes the streak from a solve history ordered by
// solve time ascending, by folding the same rule AdvanceStreak applies
// incrementally.
func StreakFromHistory(solves []time.Time) int {
	streak := 0
	var last *time.Time
	for i := range solves {
		streak = AdvanceStreak(last, streak, solves[i])
		last = &solves[i]
	}
	return streak
}

// CreditsStale reports whether the stored last-reset time belongs to an
// earlier calendar day than now, i.e. the daily pools must be refilled
// before any quota check.
func CreditsStale(resetAt, now time.Time) bool {
	return !SameCalendarDay(resetAt, now)
}
