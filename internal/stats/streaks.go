package stats

import (
	"sort"
	"time"

	"github.com/codr1/saf-wrapped/internal/reservations"
)

// sortedUnique returns the distinct dates in ascending order.
func sortedUnique(dates []time.Time) []time.Time {
	seen := make(map[time.Time]struct{}, len(dates))
	unique := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		unique = append(unique, d)
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].Before(unique[j])
	})
	return unique
}

// longestRun finds the longest run in sorted, distinct dates where each date
// is exactly stepDays after its predecessor. Empty input is a run of 0.
func longestRun(sorted []time.Time, stepDays int) int {
	if len(sorted) == 0 {
		return 0
	}

	longest, current := 1, 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].AddDate(0, 0, stepDays).Equal(sorted[i]) {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 1
	}
	return longest
}

// LongestDayStreak is the longest run of consecutive calendar days with at
// least one reservation.
func LongestDayStreak(activeDays []time.Time) int {
	return longestRun(sortedUnique(activeDays), 1)
}

// LongestWeekStreak is the longest run of consecutive Sunday-start weeks with
// at least one reservation.
func LongestWeekStreak(activeDays []time.Time) int {
	weeks := make([]time.Time, 0, len(activeDays))
	for _, d := range activeDays {
		weeks = append(weeks, reservations.WeekStart(d))
	}
	return longestRun(sortedUnique(weeks), 7)
}
