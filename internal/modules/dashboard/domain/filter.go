package domain

import (
	"strconv"
	"strings"
	"time"

	"marketDash/internal/shared/normalization"
)

// FilterRecords returns the records of all that pass every active predicate of criteria, in
// their original order. It is a pure function of its inputs.
func FilterRecords(resource Resource, all []Record, criteria Criteria) []Record {
	from, fromOK := ParseCalendarDate(criteria.DateFrom)
	to, toOK := ParseCalendarDate(criteria.DateTo)
	if !fromOK || !toOK {
		return []Record{}
	}

	predicates := resource.activePredicates(criteria.Filters)
	filtered := make([]Record, 0, len(all))
	for _, record := range all {
		if !inDateRange(record, from, to) {
			continue
		}
		if !matchesAll(record, predicates) {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}

type predicate struct {
	field string
	value string
	exact bool
}

// activePredicates resolves the non-empty filter values into field predicates. Keys the
// resource does not declare are treated as text filters on the field of the same name.
func (r Resource) activePredicates(filters map[string]string) []predicate {
	predicates := make([]predicate, 0, len(filters))
	for key, value := range filters {
		if value == "" {
			continue
		}
		if field, ok := r.ExactFilters[key]; ok {
			predicates = append(predicates, predicate{field: field, value: value, exact: true})
			continue
		}
		field, ok := r.TextFilters[key]
		if !ok {
			field = key
		}
		predicates = append(predicates, predicate{field: field, value: strings.ToLower(value)})
	}
	return predicates
}

func inDateRange(record Record, from, to time.Time) bool {
	date, ok := record.Date()
	if !ok {
		return false
	}
	return !date.Before(from) && !date.After(to)
}

func matchesAll(record Record, predicates []predicate) bool {
	for _, p := range predicates {
		value := record.Value(p.field)
		if p.exact {
			if !LooseEqual(value, p.value) {
				return false
			}
			continue
		}
		if !strings.Contains(strings.ToLower(normalization.Stringify(value)), p.value) {
			return false
		}
	}
	return true
}

// LooseEqual compares a decoded record value with a filter string the way a dynamically typed
// equality would: numbers compare numerically against the numeric reading of the filter,
// strings compare verbatim, and a missing value never matches.
func LooseEqual(value any, filter string) bool {
	switch typed := value.(type) {
	case nil:
		return false
	case string:
		return typed == filter
	case bool:
		number, ok := strictNumber(filter)
		if !ok {
			return false
		}
		if typed {
			return number == 1
		}
		return number == 0
	case float64, float32, int, int32, int64:
		number, ok := strictNumber(filter)
		if !ok {
			return false
		}
		return normalization.AsFloat64(typed) == number
	default:
		return normalization.Stringify(typed) == filter
	}
}

// strictNumber parses the whole (trimmed) string as a number; blank strings read as zero.
func strictNumber(raw string) (float64, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}
