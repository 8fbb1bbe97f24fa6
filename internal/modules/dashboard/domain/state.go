package domain

// State is the read model a view renders for one resource.
type State struct {
	Resource      string   `json:"resource"`
	Records       []Record `json:"records"`
	FilteredCount int      `json:"filteredCount"`
	FetchedCount  int      `json:"fetchedCount"`
	ServerTotal   int      `json:"serverTotal"`
	CurrentPage   int      `json:"currentPage"`
	TotalPages    int      `json:"totalPages"`
	Loading       bool     `json:"loading"`
	LastError     string   `json:"lastError,omitempty"`
	Criteria      Criteria `json:"criteria"`
	Sort          SortSpec `json:"sort"`
	LimitOptions  []int    `json:"limitOptions"`
}
