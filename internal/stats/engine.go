// Package stats computes the Wrapped dashboard aggregates from parsed
// reservations. Calculate is pure: it keeps no state between calls and never
// mutates its input.
package stats

import (
	"github.com/rs/zerolog/log"

	"github.com/codr1/saf-wrapped/internal/reservations"
	"github.com/codr1/saf-wrapped/internal/timeslot"
)

// Calculate aggregates records with the default options.
func Calculate(records []reservations.Reservation) Result {
	return CalculateWithOptions(records, DefaultOptions())
}

// CalculateWithOptions aggregates records in a single pass and shapes the
// result. Invalid options fall back to DefaultOptions and the validation
// error is logged at debug level.
func CalculateWithOptions(records []reservations.Reservation, opts Options) Result {
	if err := opts.Validate(); err != nil {
		log.Debug().Err(err).Interface("options", opts).Msg("Invalid stats options, using defaults")
		opts = DefaultOptions()
	}

	window := timeslot.Range{Start: opts.DensityStart, End: opts.DensityEnd + 1}
	t := newTally()
	for _, record := range records {
		day := reservations.NewDate(record.Date.Year(), record.Date.Month(), record.Date.Day())

		t.total++
		t.rooms.Inc(record.Facility)
		t.slots.Inc(record.TimeRange)
		t.months[reservations.MonthStart(day)]++
		t.days[day]++
		t.years[day.Year()]++

		// Rows from the parser always carry a valid range; anything else
		// still counts toward the tables but adds no minutes or hours.
		slot, err := timeslot.ParseRange(record.TimeRange)
		if err != nil {
			t.weekly.add(day, 0)
			continue
		}
		// Expand only the in-window part of the range. Buckets outside the
		// window are counted, never materialized.
		inside := slot.Intersect(window)
		for _, minute := range inside.Buckets(opts.BucketStep) {
			t.density[minute]++
		}
		t.outOfWindow += slot.BucketCount(opts.BucketStep) - inside.BucketCount(opts.BucketStep)
		t.weekly.add(day, slot.DurationHours())
	}

	return buildResult(t, opts)
}
