package domain

import (
	"fmt"
	"time"
)

// Split is the time partitioning granularity of date-bearing output files.
type Split string

const (
	// SplitNone writes a single file with no date suffix.
	SplitNone Split = "none"
	// SplitYears suffixes files with -YYYY.
	SplitYears Split = "years"
	// SplitMonths suffixes files with -YYYY-MM.
	SplitMonths Split = "months"
	// SplitDays suffixes files with -YYYY-MM-DD.
	SplitDays Split = "days"
)

// DefaultSplit is used when no granularity is configured.
const DefaultSplit = SplitMonths

var splitLayouts = map[Split]string{
	SplitNone:   "",
	SplitYears:  "-2006",
	SplitMonths: "-2006-01",
	SplitDays:   "-2006-01-02",
}

// Splits returns all granularities, narrowest last.
func Splits() []Split {
	return []Split{SplitNone, SplitYears, SplitMonths, SplitDays}
}

// ParseSplit validates a granularity name.
func ParseSplit(s string) (Split, error) {
	split := Split(s)
	if _, ok := splitLayouts[split]; !ok {
		return "", fmt.Errorf("%w: %q (want none, years, months or days)", ErrInvalidSplit, s)
	}
	return split, nil
}

// Suffix returns the file name suffix for a timestamp.
func (s Split) Suffix(t time.Time) string {
	layout := splitLayouts[s]
	if layout == "" {
		return ""
	}
	return t.UTC().Format(layout)
}
