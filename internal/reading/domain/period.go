package domain

import (
	"strings"
	"time"
)

// PeriodLayout is the canonical billing period key, one calendar month.
const PeriodLayout = "2006-01"

// ParsePeriod validates and canonicalizes a billing period key.
func ParsePeriod(raw string) (string, error) {
	t, err := time.Parse(PeriodLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", ErrInvalidPeriod
	}
	return t.Format(PeriodLayout), nil
}

// PreviousPeriod returns the period key one month earlier.
func PreviousPeriod(period string) string {
	t, err := time.Parse(PeriodLayout, period)
	if err != nil {
		return ""
	}
	return t.AddDate(0, -1, 0).Format(PeriodLayout)
}
