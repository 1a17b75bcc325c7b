package model

import (
	"fmt"
	"strings"
	"time"

	"vacancy-export-bot/internal/domain"
)

// DateLayout is the only accepted textual date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DateRange is an inclusive pair of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedDate, s)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrMalformedDate, s)
	}
	return t, nil
}

// NewDateRange validates start <= end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	if start.After(end) {
		return DateRange{}, domain.ErrInvalidRange
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses both bounds and validates their order.
// Both strings are parsed before the order is checked.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// Upper returns the exclusive upper bound: midnight after End.
func (r DateRange) Upper() time.Time { return r.End.AddDate(0, 0, 1) }

func (r DateRange) StartText() string { return r.Start.Format(DateLayout) }
func (r DateRange) EndText() string   { return r.End.Format(DateLayout) }

// Filename is the suggested attachment name for this range.
func (r DateRange) Filename() string {
	return ExportFilename(r.StartText(), r.EndText())
}

// ExportFilename builds vacancies_<start>_<end>.csv.
func ExportFilename(start, end string) string {
	return fmt.Sprintf("vacancies_%s_%s.csv", start, end)
}
