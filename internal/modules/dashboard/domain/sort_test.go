package domain

import "testing"

func quantities(records []Record) []any {
	values := make([]any, 0, len(records))
	for _, record := range records {
		values = append(values, record["quantity"])
	}
	return values
}

func TestSortRecordsNumericFieldTreatsGarbageAsZero(t *testing.T) {
	resource := DefaultResources()["orders"]
	records := []Record{{"quantity": "10"}, {"quantity": "2"}, {"quantity": "abc"}}

	sorted := SortRecords(resource, records, SortSpec{Field: "quantity", Direction: DirectionAsc})
	got := quantities(sorted)
	want := []any{"abc", "2", "10"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
	if records[0]["quantity"] != "10" {
		t.Fatalf("input reordered: %v", quantities(records))
	}
}

func TestSortRecordsNumericFieldTreatsNaNAndInfinityAsZero(t *testing.T) {
	resource := DefaultResources()["orders"]
	records := []Record{{"quantity": "2"}, {"quantity": "NaN"}, {"quantity": "-1"}, {"quantity": "0x10"}, {"quantity": "Inf"}}

	sorted := SortRecords(resource, records, SortSpec{Field: "quantity", Direction: DirectionAsc})
	got := quantities(sorted)
	want := []any{"-1", "NaN", "0x10", "Inf", "2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order: %v", got)
		}
	}
}

func TestSortRecordsDescendingIsStableForTies(t *testing.T) {
	resource := DefaultResources()["sales"]
	records := []Record{
		{"barcode": "first", "price": float64(1)},
		{"barcode": "second", "price": float64(5)},
		{"barcode": "third", "price": float64(1)},
	}

	sorted := SortRecords(resource, records, SortSpec{Field: "price", Direction: DirectionDesc})
	order := []string{}
	for _, record := range sorted {
		order = append(order, record["barcode"].(string))
	}
	want := []string{"second", "first", "third"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("unexpected order: %v", order)
		}
	}
}

func TestSortRecordsIsIdempotent(t *testing.T) {
	resource := DefaultResources()["incomes"]
	records := []Record{
		{"warehouse_name": "b"},
		{"warehouse_name": "a"},
		{"warehouse_name": "c"},
		{"warehouse_name": "a"},
	}
	spec := SortSpec{Field: "warehouse_name", Direction: DirectionAsc}

	once := SortRecords(resource, records, spec)
	twice := SortRecords(resource, once, spec)
	for i := range once {
		if once[i]["warehouse_name"] != twice[i]["warehouse_name"] {
			t.Fatalf("sort not idempotent at %d: %v vs %v", i, once, twice)
		}
	}
}

func TestSortRecordsWithoutFieldPreservesOrder(t *testing.T) {
	resource := DefaultResources()["orders"]
	records := []Record{{"quantity": "3"}, {"quantity": "1"}}

	sorted := SortRecords(resource, records, SortSpec{})
	if sorted[0]["quantity"] != "3" || sorted[1]["quantity"] != "1" {
		t.Fatalf("unexpected order: %v", quantities(sorted))
	}
}

func TestCompareValues(t *testing.T) {
	if CompareValues(float64(2), float64(10)) >= 0 {
		t.Fatal("expected 2 < 10 numerically")
	}
	if CompareValues("2", "10") <= 0 {
		t.Fatal("expected \"2\" > \"10\" as strings")
	}
	if CompareValues(false, true) >= 0 {
		t.Fatal("expected false before true")
	}
	if CompareValues(nil, "a") >= 0 {
		t.Fatal("expected missing value first")
	}
}

func TestParseDirection(t *testing.T) {
	if ParseDirection(" DESC ") != DirectionDesc {
		t.Fatal("expected desc")
	}
	if ParseDirection("sideways") != DirectionAsc {
		t.Fatal("expected asc default")
	}
}
