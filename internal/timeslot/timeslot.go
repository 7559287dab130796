// internal/timeslot/timeslot.go
package timeslot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// DefaultStep is the bucket width, in minutes, used by the density histogram.
const DefaultStep = 5

var (
	ErrInvalidClock = errors.New("invalid HH:MM value")
	ErrInvalidRange = errors.New("invalid HH:MM-HH:MM range")
)

// Range is a half-open [Start, End) interval in minutes since midnight.
type Range struct {
	Start int
	End   int
}

// MinutesSinceMidnight parses "HH:MM" into hour*60+minute. Values are not
// range checked, so "25:00" yields 1500.
func MinutesSinceMidnight(value string) (int, error) {
	hourText, minuteText, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	hour, err := strconv.Atoi(strings.TrimSpace(hourText))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	minute, err := strconv.Atoi(strings.TrimSpace(minuteText))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, value)
	}
	return hour*60 + minute, nil
}

// ParseRange parses "HH:MM-HH:MM". Endpoint order is not enforced.
func ParseRange(value string) (Range, error) {
	startText, endText, ok := strings.Cut(value, "-")
	if !ok {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, value)
	}
	start, err := MinutesSinceMidnight(startText)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, value)
	}
	end, err := MinutesSinceMidnight(endText)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, value)
	}
	return Range{Start: start, End: end}, nil
}

// Buckets returns every multiple of step in [Start, End). An inverted or empty
// range yields no buckets.
func (r Range) Buckets(step int) []int {
	if step <= 0 {
		step = DefaultStep
	}
	first := ceilMultiple(r.Start, step)
	if first >= r.End {
		return nil
	}
	buckets := make([]int, 0, (r.End-first+step-1)/step)
	for minute := first; minute < r.End; minute += step {
		buckets = append(buckets, minute)
	}
	return buckets
}

// BucketCount is len(r.Buckets(step)) without building the slice.
func (r Range) BucketCount(step int) int {
	if step <= 0 {
		step = DefaultStep
	}
	if r.End <= r.Start {
		return 0
	}
	n := ceilDiv(r.End, step) - ceilDiv(r.Start, step)
	if n < 0 {
		return 0
	}
	return n
}

// Intersect returns the overlap of r and other. Disjoint ranges give an
// empty range.
func (r Range) Intersect(other Range) Range {
	out := Range{Start: max(r.Start, other.Start), End: min(r.End, other.End)}
	if out.End < out.Start {
		out.End = out.Start
	}
	return out
}

// DurationHours is (End-Start)/60 and can be zero or negative.
func (r Range) DurationHours() float64 {
	return float64(r.End-r.Start) / 60
}

// ExpandToBuckets parses value and returns its step-aligned minute buckets.
func ExpandToBuckets(value string, step int) ([]int, error) {
	r, err := ParseRange(value)
	if err != nil {
		return nil, err
	}
	return r.Buckets(step), nil
}

// DurationHours parses value and returns its length in hours.
func DurationHours(value string) (float64, error) {
	r, err := ParseRange(value)
	if err != nil {
		return 0, err
	}
	return r.DurationHours(), nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ceilDiv is n/step rounded toward positive infinity.
func ceilDiv(n, step int) int {
	q := n / step
	if n%step > 0 {
		q++
	}
	return q
}

// ceilMultiple rounds n up to the nearest multiple of step, handling negatives.
func ceilMultiple(n, step int) int {
	rem := n % step
	if rem == 0 {
		return n
	}
	if rem < 0 {
		return n - rem
	}
	return n + step - rem
}
