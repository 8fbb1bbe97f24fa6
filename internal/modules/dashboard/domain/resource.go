package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// DateWindow selects how a resource computes its default date range.
type DateWindow string

const (
	// DateWindowTrailingWeek covers the seven days ending today.
	DateWindowTrailingWeek DateWindow = "trailing-week"
	// DateWindowSameDay pins both bounds to today, used by point-in-time snapshots.
	DateWindowSameDay DateWindow = "same-day"
)

const (
	// ResetLimit is the page size restored by resetFilters for every resource.
	ResetLimit = 500
	// DefaultFetchLimit is the upstream page size requested when fetching everything at once.
	DefaultFetchLimit = 500
)

// LimitOptions lists the page sizes offered to the view layer.
var LimitOptions = []int{25, 50, 100, 250, 500}

// Resource configures one store instance: where it fetches from and which fields it filters and
// sorts on.
type Resource struct {
	Name         string            `yaml:"name" json:"name"`
	Path         string            `yaml:"path" json:"path"`
	InitialLimit int               `yaml:"initialLimit" json:"initialLimit"`
	FetchLimit   int               `yaml:"fetchLimit" json:"fetchLimit"`
	DateWindow   DateWindow        `yaml:"dateWindow" json:"dateWindow"`
	TextFilters  map[string]string `yaml:"textFilters" json:"textFilters"`
	ExactFilters map[string]string `yaml:"exactFilters" json:"exactFilters"`
	NumericSort  []string          `yaml:"numericSort" json:"numericSort"`
}

// Validate reports configuration mistakes that would make the store unusable.
func (r Resource) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("resource missing name")
	}
	if strings.TrimSpace(r.Path) == "" {
		return fmt.Errorf("resource %s missing path", r.Name)
	}
	switch r.DateWindow {
	case DateWindowTrailingWeek, DateWindowSameDay:
	default:
		return fmt.Errorf("resource %s has unknown date window %q", r.Name, r.DateWindow)
	}
	for key := range r.TextFilters {
		if _, dup := r.ExactFilters[key]; dup {
			return fmt.Errorf("resource %s declares filter %s as both text and exact", r.Name, key)
		}
	}
	return nil
}

// DateRange returns the default [from, to] window ending on the calendar day of now.
func (r Resource) DateRange(now time.Time) (string, string) {
	today := now.UTC()
	switch r.DateWindow {
	case DateWindowSameDay:
		return FormatDate(today), FormatDate(today)
	default:
		return FormatDate(today.AddDate(0, 0, -7)), FormatDate(today)
	}
}

// DefaultCriteria builds the resource's default criteria with every filter key present and
// empty.
func (r Resource) DefaultCriteria(now time.Time, limit int) Criteria {
	from, to := r.DateRange(now)
	filters := make(map[string]string, len(r.TextFilters)+len(r.ExactFilters))
	for key := range r.TextFilters {
		filters[key] = ""
	}
	for key := range r.ExactFilters {
		filters[key] = ""
	}
	return Criteria{DateFrom: from, DateTo: to, Limit: limit, Filters: filters}
}

// IsNumeric reports whether field sorts numerically.
func (r Resource) IsNumeric(field string) bool {
	return slices.Contains(r.NumericSort, field)
}

// EffectiveFetchLimit returns the configured fetch limit or the package default.
func (r Resource) EffectiveFetchLimit() int {
	if r.FetchLimit > 0 {
		return r.FetchLimit
	}
	return DefaultFetchLimit
}

var baseNumericSort = []string{"quantity", "price", "discount", "total_price", "discount_percent"}

func numericFields(extra ...string) []string {
	return append(slices.Clone(baseNumericSort), extra...)
}

// DefaultResources returns the built-in registry of resources keyed by name.
func DefaultResources() map[string]Resource {
	entries := []Resource{
		{
			Name:         "orders",
			Path:         "orders",
			InitialLimit: 25,
			FetchLimit:   DefaultFetchLimit,
			DateWindow:   DateWindowTrailingWeek,
			TextFilters: map[string]string{
				"warehouse_name": "warehouse_name",
				"oblast":         "oblast",
				"brand":          "brand",
			},
			ExactFilters: map[string]string{
				"barcode": "barcode",
				"nm_id":   "nm_id",
			},
			NumericSort: numericFields(),
		},
		{
			Name:         "incomes",
			Path:         "incomes",
			InitialLimit: 25,
			FetchLimit:   DefaultFetchLimit,
			DateWindow:   DateWindowTrailingWeek,
			TextFilters: map[string]string{
				"warehouse_name":   "warehouse_name",
				"supplier_article": "supplier_article",
			},
			ExactFilters: map[string]string{
				"barcode":   "barcode",
				"income_id": "income_id",
			},
			NumericSort: numericFields(),
		},
		{
			Name:         "sales",
			Path:         "sales",
			InitialLimit: 25,
			FetchLimit:   DefaultFetchLimit,
			DateWindow:   DateWindowTrailingWeek,
			TextFilters: map[string]string{
				"warehouse_name": "warehouse_name",
				"region_name":    "region_name",
				"brand":          "brand",
			},
			ExactFilters: map[string]string{
				"barcode": "barcode",
				"sale_id": "sale_id",
			},
			NumericSort: numericFields("for_pay", "finished_price", "price_with_disc", "spp", "promo_code_discount"),
		},
		{
			Name:         "stocks",
			Path:         "stocks",
			InitialLimit: 500,
			FetchLimit:   DefaultFetchLimit,
			DateWindow:   DateWindowSameDay,
			TextFilters: map[string]string{
				"warehouse_name": "warehouse_name",
				"region":         "warehouse_name",
				"brand":          "brand",
			},
			ExactFilters: map[string]string{
				"barcode": "barcode",
				"nm_id":   "nm_id",
			},
			NumericSort: numericFields("in_way_to_client", "in_way_from_client", "quantity_full"),
		},
	}

	registry := make(map[string]Resource, len(entries))
	for _, entry := range entries {
		registry[entry.Name] = entry
	}
	return registry
}
