// Package timestamps recognises the date and time spellings that show up in
// spreadsheet exports so that the sort engine can order them chronologically.
package timestamps

import (
	"strings"
	"time"
)

// Layouts that carry their own zone
var zonedLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.000 MST",
	"2006-01-02 15:04:05.000 MST",
	"2006-01-02 15:04:05 MST",
	time.RFC1123,
	time.RFC1123Z,
}

// Layouts interpreted in the ingest location
var localLayouts = []string{
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"02/01/2006 3:04pm",
	"02/01/2006 3:04 pm",
	"02/01/2006 15:04",
	"02/01/2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
}

// ParseTimestamp tries the known layouts in order. Timezone-less values are
// read in loc (time.Local when nil). Bare numbers are not timestamps here.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	ss := strings.TrimSpace(s)
	// Shortest layout is "2006/01/02"
	if len(ss) < 8 || !startsWithDigitOrMonth(ss) {
		return time.Time{}, false
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, ss); err == nil {
			return t, true
		}
	}

	if loc == nil {
		loc = time.Local
	}
	lower := strings.ToLower(ss)
	for _, layout := range localLayouts {
		candidate := ss
		if strings.HasSuffix(layout, "pm") {
			candidate = lower
		}
		if t, err := time.ParseInLocation(layout, candidate, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func startsWithDigitOrMonth(s string) bool {
	c := s[0]
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
