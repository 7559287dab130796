package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/codr1/saf-wrapped/internal/reservations"
)

func TestLongestStreaks(t *testing.T) {
	d := func(y int, m time.Month, day int) time.Time { return reservations.NewDate(y, m, day) }

	tests := []struct {
		name      string
		dates     []time.Time
		wantDays  int
		wantWeeks int
	}{
		{name: "empty", dates: nil, wantDays: 0, wantWeeks: 0},
		{name: "duplicates", dates: []time.Time{d(2024, 1, 1), d(2024, 1, 1)}, wantDays: 1, wantWeeks: 1},
		{
			name:      "unsorted_run",
			dates:     []time.Time{d(2024, 3, 3), d(2024, 3, 1), d(2024, 3, 2), d(2024, 2, 20)},
			wantDays:  3,
			wantWeeks: 3,
		},
		{
			name:      "leap_day",
			dates:     []time.Time{d(2024, 2, 28), d(2024, 2, 29), d(2024, 3, 1)},
			wantDays:  3,
			wantWeeks: 1,
		},
		{
			name:      "week_gap",
			dates:     []time.Time{d(2024, 1, 1), d(2024, 1, 8), d(2024, 1, 22), d(2024, 1, 29), d(2024, 2, 5)},
			wantDays:  1,
			wantWeeks: 3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require.Equal(t, test.wantDays, LongestDayStreak(test.dates))
			require.Equal(t, test.wantWeeks, LongestWeekStreak(test.dates))
		})
	}
}
