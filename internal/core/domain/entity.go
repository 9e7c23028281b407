package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// TimestampLayout is how timestamps are written to output files and
// checkpoints. Values are always converted to UTC first, giving "+00:00".
const TimestampLayout = "2006-01-02T15:04:05.999999-07:00"

// timeLayouts are tried in order when reading a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// Entity is one record fetched from the accounting API, held as raw JSON so
// the field order chosen by the API survives to the output file.
type Entity []byte

// MarshalJSON returns the raw record.
func (e Entity) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}
	return e, nil
}

// UnmarshalJSON stores a copy of data.
func (e *Entity) UnmarshalJSON(data []byte) error {
	if e == nil {
		return errors.New("domain.Entity: UnmarshalJSON on nil pointer")
	}
	*e = append((*e)[0:0], data...)
	return nil
}

// Get returns the value at path, using gjson path syntax.
func (e Entity) Get(path string) gjson.Result {
	return gjson.GetBytes(e, path)
}

// String returns the string value of a top-level field, or "".
func (e Entity) String(field string) string {
	return e.Get(gjson.Escape(field)).String()
}

// Bool reports whether a top-level field is JSON true.
func (e Entity) Bool(field string) bool {
	return e.Get(gjson.Escape(field)).Bool()
}

// Int returns the integer value of a top-level field.
func (e Entity) Int(field string) (int64, error) {
	res := e.Get(gjson.Escape(field))
	if !res.Exists() || res.Type == gjson.Null {
		return 0, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	if res.Type != gjson.Number {
		return 0, fmt.Errorf("%w: %s is not a number", ErrInvalidInput, field)
	}
	return res.Int(), nil
}

// Time returns the timestamp value of a top-level field.
func (e Entity) Time(field string) (time.Time, error) {
	res := e.Get(gjson.Escape(field))
	if !res.Exists() || res.Type == gjson.Null {
		return time.Time{}, fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return ParseTime(res.String())
}

// Has reports whether a top-level field is present and not null.
func (e Entity) Has(field string) bool {
	res := e.Get(gjson.Escape(field))
	return res.Exists() && res.Type != gjson.Null
}

// ParseTime parses an ISO-8601 timestamp. Values without an offset are UTC.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognised timestamp %q", ErrInvalidInput, s)
}

// FormatTime renders t in UTC using TimestampLayout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// IsTimeField reports whether a cursor field holds a timestamp.
// Any field whose name contains "Date" does; all others are integers.
func IsTimeField(name string) bool {
	return strings.Contains(name, "Date")
}
