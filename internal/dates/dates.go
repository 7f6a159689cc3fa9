// Package dates parses loosely typed date values and formats them with
// Arrow-style tokens (YYYY-MM-DD, h:mm a, ...).
package dates

import (
	"strings"
	"time"
)

// DefaultFormat is used when no format is given.
const DefaultFormat = "MM/DD/YYYY h:mm a"

// Arrow-style tokens, longest first so that e.g. MMMM wins over MM.
var dateTokens = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MMMM", "January",
	"MMM", "Jan",
	"MM", "01",
	"M", "1",
	"dddd", "Monday",
	"ddd", "Mon",
	"DD", "02",
	"D", "2",
	"HH", "15",
	"hh", "03",
	"h", "3",
	"mm", "04",
	"m", "4",
	"ss", "05",
	"s", "5",
	"A", "PM",
	"a", "pm",
	"ZZ", "-07:00",
	"Z", "-0700",
)

var dateInputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse interprets dt as a point in time. nil, "", "now" and "today"
// mean the current time; unparseable input reports false.
func Parse(dt any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	switch v := dt.(type) {
	case nil:
		return time.Now().In(loc), true
	case time.Time:
		return v.In(loc), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" || s == "now" || s == "today" {
			return time.Now().In(loc), true
		}
		for _, layout := range dateInputLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), true
			}
		}
	}
	return time.Time{}, false
}

// Format renders dt with an Arrow-style format (YYYY-MM-DD, h:mm a, ...).
// Input that cannot be parsed is returned as text.
func Format(dt any, format string, loc *time.Location) string {
	if format == "" {
		format = DefaultFormat
	}
	t, ok := Parse(dt, loc)
	if !ok {
		if s, isString := dt.(string); isString {
			return s
		}
		return ""
	}
	return t.Format(dateTokens.Replace(format))
}
