package domain

import (
	"cmp"
	"slices"
	"strings"

	"marketDash/internal/shared/normalization"
)

// Direction is the sort order of a SortSpec.
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// ParseDirection accepts asc/desc in any case and defaults to ascending.
func ParseDirection(raw string) Direction {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "desc", "descending":
		return DirectionDesc
	default:
		return DirectionAsc
	}
}

// SortSpec selects the field the visible page is ordered by. An empty field preserves the
// filtered (fetch) order.
type SortSpec struct {
	Field     string    `json:"field,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

// Active reports whether a sort field is set.
func (s SortSpec) Active() bool {
	return strings.TrimSpace(s.Field) != ""
}

// SortRecords returns a sorted copy of records. The sort is stable: records that compare equal
// keep their filtered order regardless of direction.
func SortRecords(resource Resource, records []Record, spec SortSpec) []Record {
	sorted := slices.Clone(records)
	if !spec.Active() {
		return sorted
	}

	field := spec.Field
	numeric := resource.IsNumeric(field)
	desc := spec.Direction == DirectionDesc

	slices.SortStableFunc(sorted, func(a, b Record) int {
		var result int
		if numeric {
			result = cmp.Compare(normalization.AsFloat64(a.Value(field)), normalization.AsFloat64(b.Value(field)))
		} else {
			result = CompareValues(a.Value(field), b.Value(field))
		}
		if desc {
			return -result
		}
		return result
	})
	return sorted
}

// CompareValues orders two decoded JSON values: numbers numerically, booleans false before true,
// everything else by its printed form. Missing values print as the empty string.
func CompareValues(a, b any) int {
	if an, ok := asNumber(a); ok {
		if bn, ok := asNumber(b); ok {
			return cmp.Compare(an, bn)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			return cmp.Compare(boolRank(ab), boolRank(bb))
		}
	}
	return strings.Compare(normalization.Stringify(a), normalization.Stringify(b))
}

func asNumber(value any) (float64, bool) {
	switch value.(type) {
	case float64, float32, int, int32, int64:
		return normalization.AsFloat64(value), true
	default:
		return 0, false
	}
}

func boolRank(value bool) int {
	if value {
		return 1
	}
	return 0
}
