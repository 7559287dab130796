// internal/reservations/parser.go
package reservations

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/codr1/saf-wrapped/internal/timeslot"
)

// FieldCount is the number of quoted fields in a data row.
const FieldCount = 6

// ErrEmptyInput is returned when the export has no data rows after the header.
var ErrEmptyInput = errors.New("input has no data rows")

var (
	quotedField = regexp.MustCompile(`"([^"]*)"`)

	// Day-range qualifiers such as "(dl-dv 9-14h)" or "(DS-DG matí)".
	dayRangeSuffix = regexp.MustCompile(`(?i)\s*\((?:dl-dv|ds-dg)[^)]*\)\s*$`)
	courtSuffix    = regexp.MustCompile(`(?i)\s*-\s*PISTA\s*\d+\s*$`)
)

// Report summarizes a parse for logging.
type Report struct {
	Lines   int // data lines considered, header excluded
	Parsed  int
	Skipped int // non-empty lines that were malformed
}

// Parse turns the full text of an export into reservations.
func Parse(content string) ([]Reservation, error) {
	records, _, err := ParseWithReport(content)
	return records, err
}

// ParseWithReport is Parse plus a count of skipped rows. Malformed rows are
// never an error; only an export without data rows is.
func ParseWithReport(content string) ([]Reservation, Report, error) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) < 2 {
		return nil, Report{}, ErrEmptyInput
	}

	report := Report{Lines: len(lines) - 1}
	records := make([]Reservation, 0, len(lines)-1)
	for _, raw := range lines[1:] {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		record, ok := parseLine(line)
		if !ok {
			report.Skipped++
			continue
		}
		records = append(records, record)
	}
	report.Parsed = len(records)

	return records, report, nil
}

func parseLine(line string) (Reservation, bool) {
	matches := quotedField.FindAllStringSubmatch(line, -1)
	if len(matches) < FieldCount {
		return Reservation{}, false
	}

	fields := make([]string, FieldCount)
	for i := range fields {
		fields[i] = matches[i][1]
	}

	date, err := ParseDate(fields[1])
	if err != nil {
		return Reservation{}, false
	}
	if _, err := timeslot.ParseRange(fields[2]); err != nil {
		return Reservation{}, false
	}

	return Reservation{
		Code:      fields[0],
		RawDate:   fields[1],
		TimeRange: fields[2],
		Unused:    fields[3],
		Facility:  NormalizeFacility(fields[4]),
		Info:      fields[5],
		Date:      date,
	}, true
}

// ParseDate parses "D/M/YYYY" into a calendar date. Components are not range
// checked and overflow rolls over (31/4/2024 becomes 2024-05-01).
func ParseDate(value string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(value), "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date %q: want day/month/year", value)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
		}
		nums[i] = n
	}

	return NewDate(nums[2], time.Month(nums[1]), nums[0]), nil
}

// NormalizeFacility collapses day-range and court-number variants of a room
// into one name: "Sala A (dl-dv 9-14h)" and "Sala A - PISTA 2" both become "Sala A".
func NormalizeFacility(name string) string {
	name = dayRangeSuffix.ReplaceAllString(name, "")
	name = courtSuffix.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}
