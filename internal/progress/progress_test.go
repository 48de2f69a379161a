package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCreditResetBoundary(t *testing.T) {
	// Reset just before midnight, checked just after: a new calendar day,
	// even though less than 24h elapsed.
	assert.True(t, CreditsStale(at("2024-03-01T23:59:59Z"), at("2024-03-02T00:00:01Z")))

	// Reset at the start of the day, checked at the end: same day, no reset
	// after almost 24h.
	assert.False(t, CreditsStale(at("2024-03-02T00:00:01Z"), at("2024-03-02T23:59:59Z")))
}

func TestAdvanceStreak(t *testing.T) {
	day1 := at("2024-03-01T10:00:00Z")
	day2 := at("2024-03-02T09:00:00Z")
	day4 := at("2024-03-04T22:00:00Z")

	// First solve ever.
	assert.Equal(t, 1, AdvanceStreak(nil, 0, day1))

	// Consecutive day increments.
	assert.Equal(t, 2, AdvanceStreak(&day1, 1, day2))

	// Same-day re-solve leaves the streak alone.
	sameDay := at("2024-03-02T23:30:00Z")
	assert.Equal(t, 2, AdvanceStreak(&day2, 2, sameDay))

	// Gap of more than one day resets to 1.
	assert.Equal(t, 1, AdvanceStreak(&day2, 2, day4))
}

func TestAdvanceStreakMidnightBoundary(t *testing.T) {
	// 23:59 to 00:01 is still "the next calendar day" even though only two
	// minutes passed.
	prev := at("2024-03-01T23:59:00Z")
	assert.Equal(t, 4, AdvanceStreak(&prev, 3, at("2024-03-02T00:01:00Z")))
}

func TestStreakFromHistory(t *testing.T) {
	history := []time.Time{
		at("2024-03-01T10:00:00Z"),
		at("2024-03-02T11:00:00Z"),
		at("2024-03-04T12:00:00Z"),
	}

	// Solves on day 1, day 2, day 4: streak after day 2 is 2, after day 4 is 1.
	assert.Equal(t, 2, StreakFromHistory(history[:2]))
	assert.Equal(t, 1, StreakFromHistory(history))

	assert.Equal(t, 0, StreakFromHistory(nil))
}

func TestStreakFromHistoryMatchesIncremental(t *testing.T) {
	history := []time.Time{
		at("2024-03-01T10:00:00Z"),
		at("2024-03-02T11:00:00Z"),
		at("2024-03-03T08:00:00Z"),
		at("2024-03-03T20:00:00Z"),
		at("2024-03-05T07:00:00Z"),
	}

	streak := 0
	var last *time.Time
	for i := range history {
		streak = AdvanceStreak(last, streak, history[i])
		last = &history[i]
	}
	assert.Equal(t, streak, StreakFromHistory(history))
}
