package domain

import (
	"fmt"
	"strings"
)

// FieldRange is the lowest and highest value seen for one field. Min and
// Max are empty when no record carried the field.
type FieldRange struct {
	Field string
	Min   string
	Max   string
}

// CheckSummary describes a set of exported records.
type CheckSummary struct {
	// Label names the entry count, e.g. "entries" or "transactions".
	Label   string
	Entries int
	Ranges  []FieldRange
}

// CheckError lists integrity problems found in exported files.
type CheckError struct {
	Title    string
	Problems []string
}

func (e *CheckError) Error() string {
	return e.Title + ":\n" + strings.Join(e.Problems, "\n")
}

// MissingRanges renders the gaps between sorted, distinct numbers as runs,
// e.g. present 1, 4, 6, 9 gives "2-3, 5, 7-8".
func MissingRanges(present []int64) string {
	var parts []string
	for i := 1; i < len(present); i++ {
		lo, hi := present[i-1]+1, present[i]-1
		switch {
		case lo > hi:
			continue
		case lo == hi:
			parts = append(parts, fmt.Sprintf("%d", lo))
		default:
			parts = append(parts, fmt.Sprintf("%d-%d", lo, hi))
		}
	}
	return strings.Join(parts, ", ")
}
