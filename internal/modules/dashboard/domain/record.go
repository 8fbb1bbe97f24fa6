package domain

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used by filter criteria and the upstream API.
const DateLayout = "2006-01-02"

// DateField is the record field every resource filters its date range on.
const DateField = "date"

// Record is a single upstream row. The payload is kept opaque; only the fields the store
// filters or sorts on are ever inspected.
type Record map[string]any

// Value returns the raw value stored under field, nil when absent.
func (r Record) Value(field string) any {
	if r == nil {
		return nil
	}
	return r[field]
}

// Date returns the calendar date of the record's date field. Time of day and zone offsets are
// dropped; unparseable values report false.
func (r Record) Date() (time.Time, bool) {
	raw, ok := r.Value(DateField).(string)
	if !ok {
		return time.Time{}, false
	}
	return ParseCalendarDate(raw)
}

var recordDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseCalendarDate parses the date formats the reporting API emits and truncates them to a
// UTC midnight so comparisons ignore the time of day.
func ParseCalendarDate(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range recordDateLayouts {
		parsed, err := time.Parse(layout, trimmed)
		if err != nil {
			continue
		}
		y, m, d := parsed.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
