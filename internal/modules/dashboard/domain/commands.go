package domain

// FilterCommand is the payload of an applyFilters command.
type FilterCommand struct {
	Criteria CriteriaPatch `json:"criteria"`
}

// SortCommand is the payload of a sort command.
type SortCommand struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}
