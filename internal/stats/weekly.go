package stats

import (
	"time"

	"github.com/codr1/saf-wrapped/internal/reservations"
)

// weeklyHours accumulates reserved hours per Sunday-start week, scoped to
// the months that saw any activity.
type weeklyHours struct {
	byWeek map[time.Time]float64
	months []time.Time // first-of-month, in first-seen order
	seen   map[time.Time]struct{}
}

func newWeeklyHours() *weeklyHours {
	return &weeklyHours{
		byWeek: make(map[time.Time]float64),
		seen:   make(map[time.Time]struct{}),
	}
}

func (w *weeklyHours) add(date time.Time, hours float64) {
	w.byWeek[reservations.WeekStart(date)] += hours

	month := reservations.MonthStart(date)
	if _, ok := w.seen[month]; !ok {
		w.seen[month] = struct{}{}
		w.months = append(w.months, month)
	}
}

// samples returns one hours value per week overlapping an active month,
// including zero-hour weeks. With dedupe a week shared by two active months
// contributes once.
func (w *weeklyHours) samples(dedupe bool) []float64 {
	var (
		values  []float64
		counted = make(map[time.Time]struct{})
	)
	for _, month := range w.months {
		for _, week := range weeksOverlapping(month) {
			if dedupe {
				if _, ok := counted[week]; ok {
					continue
				}
				counted[week] = struct{}{}
			}
			values = append(values, w.byWeek[week])
		}
	}
	return values
}

// weeksOverlapping lists the week-starts from the Sunday on or before the 1st
// of month through the Sunday on or before its last day.
func weeksOverlapping(month time.Time) []time.Time {
	first := reservations.WeekStart(reservations.MonthStart(month))
	last := reservations.WeekStart(reservations.MonthEnd(month))

	var weeks []time.Time
	for week := first; !week.After(last); week = week.AddDate(0, 0, 7) {
		weeks = append(weeks, week)
	}
	return weeks
}
