package domain

import (
	"maps"
	"net/url"
	"strconv"
	"strings"
)

// Criteria is the user-configurable predicate set of a store. Dates stay as the strings the
// user typed; an unparseable bound silently yields an empty filtered set.
type Criteria struct {
	DateFrom string            `json:"dateFrom"`
	DateTo   string            `json:"dateTo"`
	Limit    int               `json:"limit"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// CriteriaPatch carries a partial update; nil fields and absent filter keys keep their value.
type CriteriaPatch struct {
	DateFrom *string           `json:"dateFrom,omitempty"`
	DateTo   *string           `json:"dateTo,omitempty"`
	Limit    *int              `json:"limit,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Clone returns a copy that does not share the filters map.
func (c Criteria) Clone() Criteria {
	cloned := c
	cloned.Filters = maps.Clone(c.Filters)
	return cloned
}

// Merge applies patch over c (shallow merge) and returns the result.
func (c Criteria) Merge(patch CriteriaPatch) Criteria {
	merged := c.Clone()
	if patch.DateFrom != nil {
		merged.DateFrom = *patch.DateFrom
	}
	if patch.DateTo != nil {
		merged.DateTo = *patch.DateTo
	}
	if patch.Limit != nil {
		merged.Limit = *patch.Limit
	}
	if len(patch.Filters) > 0 {
		if merged.Filters == nil {
			merged.Filters = make(map[string]string, len(patch.Filters))
		}
		for key, value := range patch.Filters {
			trimmedKey := strings.TrimSpace(key)
			if trimmedKey == "" {
				continue
			}
			merged.Filters[trimmedKey] = value
		}
	}
	return merged
}

// Patch converts c into a patch that overwrites every field.
func (c Criteria) Patch() CriteriaPatch {
	dateFrom, dateTo, limit := c.DateFrom, c.DateTo, c.Limit
	return CriteriaPatch{DateFrom: &dateFrom, DateTo: &dateTo, Limit: &limit, Filters: maps.Clone(c.Filters)}
}

// PageQuery is the upstream request derived from the criteria: the date window plus paging.
type PageQuery struct {
	Page     int
	Limit    int
	DateFrom string
	DateTo   string
}

// FetchQuery builds the upstream request for page 1 using the larger of the page size and
// fetchLimit, so that every later filter and page runs client-side.
func (c Criteria) FetchQuery(fetchLimit int) PageQuery {
	limit := c.Limit
	if fetchLimit > limit {
		limit = fetchLimit
	}
	return PageQuery{Page: 1, Limit: limit, DateFrom: c.DateFrom, DateTo: c.DateTo}
}

// ToURLValues returns the query parameters understood by the forwarder and the upstream API.
func (q PageQuery) ToURLValues() url.Values {
	values := url.Values{}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	if trimmed := strings.TrimSpace(q.DateFrom); trimmed != "" {
		values.Set("dateFrom", trimmed)
	}
	if trimmed := strings.TrimSpace(q.DateTo); trimmed != "" {
		values.Set("dateTo", trimmed)
	}
	return values
}

// Page is one decoded upstream response.
type Page struct {
	Data  []Record
	Total int
}
