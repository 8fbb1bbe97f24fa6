package domain

// TotalPages returns ceil(count/limit). A non-positive limit disables pagination: any
// non-empty set is a single page.
func TotalPages(count, limit int) int {
	if count <= 0 {
		return 0
	}
	if limit <= 0 {
		return 1
	}
	return (count + limit - 1) / limit
}

// PageSlice returns records[(page-1)*limit : page*limit], clamped to the slice bounds. With a
// non-positive limit the whole slice is the page.
func PageSlice(records []Record, page, limit int) []Record {
	if limit <= 0 {
		return records
	}
	if page < 1 {
		page = 1
	}
	start := (page - 1) * limit
	if start >= len(records) {
		return []Record{}
	}
	end := start + limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}
