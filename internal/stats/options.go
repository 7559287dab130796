package stats

import (
	"errors"

	"github.com/codr1/saf-wrapped/internal/timeslot"
)

const (
	DefaultTopN         = 5
	DefaultDensityStart = 7 * 60  // 07:00
	DefaultDensityEnd   = 21 * 60 // 21:00
)

// Options tunes the engine. The zero value is not valid; start from
// DefaultOptions.
type Options struct {
	// TopN caps topRooms and topTimeSlots.
	TopN int
	// DensityStart and DensityEnd bound the emitted density series, inclusive,
	// in minutes since midnight.
	DensityStart int
	DensityEnd   int
	BucketStep   int
	// DedupeSharedWeeks counts a week that straddles two active months once.
	// When false the week is sampled once per month it overlaps.
	DedupeSharedWeeks bool
}

func DefaultOptions() Options {
	return Options{
		TopN:              DefaultTopN,
		DensityStart:      DefaultDensityStart,
		DensityEnd:        DefaultDensityEnd,
		BucketStep:        timeslot.DefaultStep,
		DedupeSharedWeeks: true,
	}
}

func (o Options) Validate() error {
	if o.TopN <= 0 {
		return errors.New("top_n must be positive")
	}
	if o.BucketStep <= 0 {
		return errors.New("bucket_step must be positive")
	}
	if o.DensityStart < 0 || o.DensityEnd > 24*60 {
		return errors.New("density window must lie within the day")
	}
	if o.DensityStart > o.DensityEnd {
		return errors.New("density_start must not be after density_end")
	}
	if o.DensityStart%o.BucketStep != 0 || o.DensityEnd%o.BucketStep != 0 {
		return errors.New("density window must align to bucket_step")
	}
	return nil
}
