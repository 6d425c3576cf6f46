package utils

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a UTC date (midnight).
func ParseDate(dateString string) (time.Time, error) {
	d, err := time.Parse(DateLayout, dateString)
	if err != nil {
		return time.Time{}, errors.New("invalid date format, use YYYY-MM-DD")
	}
	return d.UTC(), nil
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the first and last day of (year, month) as UTC dates.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return start, end
}

// ThisMonthRange returns the start and end dates of the current month.
func ThisMonthRange() (time.Time, time.Time) {
	now := time.Now().UTC()
	return MonthRange(now.Year(), now.Month())
}

// ParseMonth parses a YYYY-MM string into its year and month.
func ParseMonth(monthString string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", monthString)
	if err != nil {
		return 0, 0, errors.New("invalid month format, use YYYY-MM")
	}
	return t.Year(), t.Month(), nil
}

// ParseDecimal converts a string to a decimal.Decimal value.
func ParseDecimal(value string) (decimal.Decimal, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return decimal.Zero, errors.New("empty decimal string")
	}

	dec, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}

	return dec, nil
}

func NewTrue() *bool {
	b := true
	return &b
}

func NewFalse() *bool {
	b := false
	return &b
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// Truncate a string to at most n runes. Audit descriptions are capped at
// the column size rather than erroring.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
