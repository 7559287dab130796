// internal/reservations/reservation.go
package reservations

import "time"

// DateLayout is the ISO form used when a calendar date is rendered as a key.
const DateLayout = "2006-01-02"

// Reservation is one row of a facility reservation export.
type Reservation struct {
	Code      string `json:"code"`
	RawDate   string `json:"rawDate"`
	TimeRange string `json:"timeRange"`
	Unused    string `json:"unused"`
	Facility  string `json:"facility"`
	Info      string `json:"info"`

	// Date is the calendar day at midnight UTC.
	Date time.Time `json:"date"`
}

// NewDate returns the calendar date at midnight UTC. Out-of-range components
// roll over the way time.Date normalizes them (day 32 of January is February 1).
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// WeekStart returns the Sunday on or before date.
func WeekStart(date time.Time) time.Time {
	return date.AddDate(0, 0, -int(date.Weekday()))
}

// MonthStart returns the first day of date's month.
func MonthStart(date time.Time) time.Time {
	return NewDate(date.Year(), date.Month(), 1)
}

// MonthEnd returns the last day of date's month.
func MonthEnd(date time.Time) time.Time {
	return MonthStart(date).AddDate(0, 1, -1)
}
