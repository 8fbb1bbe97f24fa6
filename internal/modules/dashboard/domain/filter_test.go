package domain

import (
	"testing"
	"time"
)

func TestFilterRecordsKeepsOnlyRecordsInsideDateWindow(t *testing.T) {
	resource := DefaultResources()["orders"]
	all := []Record{
		{"date": "2024-01-01", "barcode": "A", "quantity": "5"},
		{"date": "2024-01-03", "barcode": "B", "quantity": "2"},
	}
	criteria := Criteria{DateFrom: "2024-01-01", DateTo: "2024-01-02", Limit: 25, Filters: map[string]string{"barcode": ""}}

	filtered := FilterRecords(resource, all, criteria)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 record, got %d", len(filtered))
	}
	if filtered[0]["barcode"] != "A" {
		t.Fatalf("unexpected record kept: %v", filtered[0])
	}
}

func TestFilterRecordsDateBoundsAreInclusiveAndIgnoreTimeOfDay(t *testing.T) {
	resource := DefaultResources()["sales"]
	all := []Record{
		{"date": "2024-02-01T23:59:59"},
		{"date": "2024-02-05 00:00:01"},
		{"date": "2024-02-06T00:00:00Z"},
		{"date": "2024-01-31"},
	}
	criteria := Criteria{DateFrom: "2024-02-01", DateTo: "2024-02-05"}

	filtered := FilterRecords(resource, all, criteria)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(filtered), filtered)
	}
}

func TestFilterRecordsInvalidDatesYieldEmptySet(t *testing.T) {
	resource := DefaultResources()["orders"]
	all := []Record{{"date": "2024-01-01"}, {"date": "not a date"}}

	cases := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{name: "invalid from", criteria: Criteria{DateFrom: "yesterday", DateTo: "2024-01-02"}, want: 0},
		{name: "empty to", criteria: Criteria{DateFrom: "2024-01-01"}, want: 0},
		{name: "reversed range", criteria: Criteria{DateFrom: "2024-01-05", DateTo: "2024-01-01"}, want: 0},
		{name: "valid range drops bad record date", criteria: Criteria{DateFrom: "2023-12-01", DateTo: "2024-12-01"}, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := len(FilterRecords(resource, all, tc.criteria)); got != tc.want {
				t.Fatalf("expected %d records, got %d", tc.want, got)
			}
		})
	}
}

func TestFilterRecordsTextFiltersAreCaseInsensitiveSubstrings(t *testing.T) {
	resource := DefaultResources()["stocks"]
	all := []Record{
		{"date": "2024-03-01", "warehouse_name": "Коледино", "brand": "Acme"},
		{"date": "2024-03-01", "warehouse_name": "Казань", "brand": "ACME Labs"},
		{"date": "2024-03-01", "warehouse_name": "Электросталь", "brand": "Other"},
	}
	criteria := Criteria{
		DateFrom: "2024-03-01",
		DateTo:   "2024-03-01",
		Filters:  map[string]string{"brand": "acme", "region": "КА"},
	}

	filtered := FilterRecords(resource, all, criteria)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 record, got %d: %v", len(filtered), filtered)
	}
	if filtered[0]["warehouse_name"] != "Казань" {
		t.Fatalf("unexpected record kept: %v", filtered[0])
	}
}

func TestFilterRecordsExactFiltersUseLooseEquality(t *testing.T) {
	resource := DefaultResources()["orders"]
	all := []Record{
		{"date": "2024-01-01", "nm_id": float64(1234)},
		{"date": "2024-01-01", "nm_id": "1234"},
		{"date": "2024-01-01", "nm_id": float64(12345)},
		{"date": "2024-01-01"},
	}
	criteria := Criteria{DateFrom: "2024-01-01", DateTo: "2024-01-01", Filters: map[string]string{"nm_id": "1234"}}

	filtered := FilterRecords(resource, all, criteria)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 records, got %d: %v", len(filtered), filtered)
	}
}

func TestFilterRecordsIsDeterministicAndDoesNotMutateInput(t *testing.T) {
	resource := DefaultResources()["incomes"]
	all := []Record{
		{"date": "2024-01-01", "supplier_article": "X-1"},
		{"date": "2024-01-02", "supplier_article": "Y-2"},
		{"date": "2024-01-03", "supplier_article": "x-3"},
	}
	criteria := Criteria{DateFrom: "2024-01-01", DateTo: "2024-01-03", Filters: map[string]string{"supplier_article": "x"}}

	first := FilterRecords(resource, all, criteria)
	second := FilterRecords(resource, all, criteria)
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected 2 records on both runs, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i]["supplier_article"] != second[i]["supplier_article"] {
			t.Fatalf("runs disagree at %d: %v vs %v", i, first[i], second[i])
		}
	}
	if len(all) != 3 || all[1]["supplier_article"] != "Y-2" {
		t.Fatalf("input mutated: %v", all)
	}
}

func TestLooseEqual(t *testing.T) {
	cases := []struct {
		name   string
		value  any
		filter string
		want   bool
	}{
		{name: "nil never matches", value: nil, filter: "", want: false},
		{name: "string verbatim", value: "ABC", filter: "ABC", want: true},
		{name: "string is case sensitive", value: "ABC", filter: "abc", want: false},
		{name: "number against numeric text", value: float64(42), filter: "42.0", want: true},
		{name: "number against padded text", value: float64(42), filter: " 42 ", want: true},
		{name: "number against garbage", value: float64(42), filter: "42abc", want: false},
		{name: "zero against blank", value: float64(0), filter: " ", want: true},
		{name: "true against one", value: true, filter: "1", want: true},
		{name: "false against one", value: false, filter: "1", want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LooseEqual(tc.value, tc.filter); got != tc.want {
				t.Fatalf("LooseEqual(%v, %q) = %v, want %v", tc.value, tc.filter, got, tc.want)
			}
		})
	}
}

func TestResourceDefaultCriteria(t *testing.T) {
	now := time.Date(2024, time.May, 10, 18, 30, 0, 0, time.UTC)
	resources := DefaultResources()

	orders := resources["orders"].DefaultCriteria(now, ResetLimit)
	if orders.DateFrom != "2024-05-03" || orders.DateTo != "2024-05-10" {
		t.Fatalf("unexpected orders window: %s..%s", orders.DateFrom, orders.DateTo)
	}
	if orders.Limit != ResetLimit {
		t.Fatalf("unexpected limit: %d", orders.Limit)
	}
	if _, ok := orders.Filters["warehouse_name"]; !ok {
		t.Fatalf("expected warehouse_name filter key, got %v", orders.Filters)
	}

	stocks := resources["stocks"].DefaultCriteria(now, ResetLimit)
	if stocks.DateFrom != "2024-05-10" || stocks.DateTo != "2024-05-10" {
		t.Fatalf("unexpected stocks window: %s..%s", stocks.DateFrom, stocks.DateTo)
	}
}

func TestDefaultResourcesValidate(t *testing.T) {
	for name, resource := range DefaultResources() {
		if err := resource.Validate(); err != nil {
			t.Fatalf("resource %s invalid: %v", name, err)
		}
	}

	broken := Resource{Name: "x", Path: "x", DateWindow: "monthly"}
	if err := broken.Validate(); err == nil {
		t.Fatal("expected unknown date window to fail validation")
	}
}
