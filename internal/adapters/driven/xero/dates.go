package xero

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/custodia-labs/xerosync/internal/core/domain"
)

// msDate matches Xero's legacy "/Date(1672531200000+0000)/" timestamps.
var msDate = regexp.MustCompile(`^/Date\((-?\d+)([+-]\d{4})?\)/$`)

// ParseMSDate converts a "/Date(ms±zzzz)/" string to UTC. The
// milliseconds are already relative to the Unix epoch in UTC; the offset
// only describes the organisation's zone.
func ParseMSDate(s string) (time.Time, bool) {
	m := msDate.FindStringSubmatch(s)
	if m == nil {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

type dateEdit struct {
	path  string
	value string
}

// NormaliseDates rewrites every "/Date(...)/" string in a JSON document
// as an RFC 3339 timestamp, leaving field order untouched.
func NormaliseDates(data []byte) ([]byte, error) {
	var edits []dateEdit
	collectDates(gjson.ParseBytes(data), "", &edits)

	var err error
	for _, edit := range edits {
		data, err = sjson.SetBytes(data, edit.path, edit.value)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}

func collectDates(value gjson.Result, path string, edits *[]dateEdit) {
	switch {
	case value.IsObject():
		value.ForEach(func(key, child gjson.Result) bool {
			collectDates(child, joinPath(path, gjson.Escape(key.String())), edits)
			return true
		})
	case value.IsArray():
		i := 0
		value.ForEach(func(_, child gjson.Result) bool {
			collectDates(child, joinPath(path, strconv.Itoa(i)), edits)
			i++
			return true
		})
	case value.Type == gjson.String && path != "" && strings.HasPrefix(value.Str, "/Date("):
		if t, ok := ParseMSDate(value.Str); ok {
			*edits = append(*edits, dateEdit{path: path, value: domain.FormatTime(t)})
		}
	}
}

func joinPath(prefix, elem string) string {
	if prefix == "" {
		return elem
	}
	return prefix + "." + elem
}
