package stats

import (
	"sort"
	"time"

	"github.com/codr1/saf-wrapped/internal/reservations"
)

// MonthLayout renders month labels, e.g. "Mar-2024". It is independent of
// locale and never used as a sort key.
const MonthLayout = "Jan-2006"

type MonthCount struct {
	Month string `json:"month"`
	Year  int    `json:"year"`
	Index int    `json:"monthIndex"` // 1-12
	Count int    `json:"count"`
}

type DensityPoint struct {
	Minute int `json:"minute"`
	Count  int `json:"count"`
}

type DayCount struct {
	Date  string `json:"date"` // 2006-01-02
	Count int    `json:"count"`
}

// Result is the full set of dashboard aggregates for one export.
type Result struct {
	TotalReservations   int            `json:"totalReservations"`
	UniqueDays          int            `json:"uniqueDays"`
	TopRooms            []LabelCount   `json:"topRooms"`
	TopTimeSlots        []LabelCount   `json:"topTimeSlots"`
	ReservationsByMonth []MonthCount   `json:"reservationsByMonth"`
	TimeDensity         []DensityPoint `json:"timeDensity"`
	LongestDayStreak    int            `json:"longestDayStreak"`
	LongestWeekStreak   int            `json:"longestWeekStreak"`
	MedianHoursPerWeek  float64        `json:"medianHoursPerWeek"`
	MeanHoursPerWeek    float64        `json:"meanHoursPerWeek"`

	DailyCounts        []DayCount `json:"dailyCounts"`
	PrimaryYear        int        `json:"primaryYear"`
	OutOfWindowBuckets int        `json:"outOfWindowBuckets"`
	ActiveWeeks        int        `json:"activeWeeks"`
}

// tally is everything the single pass over records accumulates.
type tally struct {
	total       int
	outOfWindow int
	rooms       *Counter
	slots       *Counter
	months      map[time.Time]int
	days        map[time.Time]int
	years       map[int]int
	density     map[int]int // in-window buckets only
	weekly      *weeklyHours
}

func newTally() *tally {
	return &tally{
		rooms:   NewCounter(),
		slots:   NewCounter(),
		months:  make(map[time.Time]int),
		days:    make(map[time.Time]int),
		years:   make(map[int]int),
		density: make(map[int]int),
		weekly:  newWeeklyHours(),
	}
}

func buildResult(t *tally, opts Options) Result {
	activeDays := make([]time.Time, 0, len(t.days))
	for day := range t.days {
		activeDays = append(activeDays, day)
	}

	density := denseSeries(t.density, opts)
	weeks := t.weekly.samples(opts.DedupeSharedWeeks)

	return Result{
		TotalReservations:   t.total,
		UniqueDays:          len(t.days),
		TopRooms:            t.rooms.Top(opts.TopN),
		TopTimeSlots:        t.slots.Top(opts.TopN),
		ReservationsByMonth: monthSeries(t.months),
		TimeDensity:         density,
		LongestDayStreak:    LongestDayStreak(activeDays),
		LongestWeekStreak:   LongestWeekStreak(activeDays),
		MedianHoursPerWeek:  UpperMedian(weeks),
		MeanHoursPerWeek:    Mean(weeks),
		DailyCounts:         daySeries(t.days),
		PrimaryYear:         primaryYear(t.years),
		OutOfWindowBuckets:  t.outOfWindow,
		ActiveWeeks:         len(weeks),
	}
}

// monthSeries orders months by their first-of-month date, not by label.
func monthSeries(months map[time.Time]int) []MonthCount {
	keys := make([]time.Time, 0, len(months))
	for month := range months {
		keys = append(keys, month)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	series := make([]MonthCount, 0, len(keys))
	for _, month := range keys {
		series = append(series, MonthCount{
			Month: month.Format(MonthLayout),
			Year:  month.Year(),
			Index: int(month.Month()),
			Count: months[month],
		})
	}
	return series
}

// denseSeries emits every bucket in the window, zeros included.
func denseSeries(buckets map[int]int, opts Options) []DensityPoint {
	series := make([]DensityPoint, 0, (opts.DensityEnd-opts.DensityStart)/opts.BucketStep+1)
	for minute := opts.DensityStart; minute <= opts.DensityEnd; minute += opts.BucketStep {
		series = append(series, DensityPoint{Minute: minute, Count: buckets[minute]})
	}
	return series
}

func daySeries(days map[time.Time]int) []DayCount {
	keys := make([]time.Time, 0, len(days))
	for day := range days {
		keys = append(keys, day)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	series := make([]DayCount, 0, len(keys))
	for _, day := range keys {
		series = append(series, DayCount{Date: day.Format(reservations.DateLayout), Count: days[day]})
	}
	return series
}

// primaryYear is the year with the most reservations; ties go to the earlier
// year. Returns 0 when there are none.
func primaryYear(years map[int]int) int {
	best, bestCount := 0, 0
	for year, count := range years {
		if count > bestCount || (count == bestCount && year < best) {
			best, bestCount = year, count
		}
	}
	return best
}
