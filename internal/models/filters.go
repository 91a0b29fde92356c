package models

// SearchFilters is the full filter set a search session holds. Generic
// fields (Keywords, Location, Page) apply to every adapter; the refinement
// fields are consulted only by adapters that support them and ignored by the
// rest.
type SearchFilters struct {
	SelectedSources []Source `json:"selected_sources"`

	Keywords string `json:"keywords"`
	Location string `json:"location"`
	IsRemote bool   `json:"is_remote"`

	Country       string  `json:"country"`
	Category      string  `json:"category"`
	SalaryMin     float64 `json:"salary_min"`
	ContractType  string  `json:"contract_type"`
	ContractTime  string  `json:"contract_time"`
	SortBy        string  `json:"sort_by"`
	DateRangeDays int     `json:"date_range_days"`

	// Page is 1-based. The session resets it to 1 whenever any other field
	// changes.
	Page int `json:"page"`
}

// SameQuery reports whether two filter sets differ only by page. The session
// uses this to decide when a page reset is due.
func (f SearchFilters) SameQuery(other SearchFilters) bool {
	if len(f.SelectedSources) != len(other.SelectedSources) {
		return false
	}
	for i, s := range f.SelectedSources {
		if other.SelectedSources[i] != s {
			return false
		}
	}
	return f.Keywords == other.Keywords &&
		f.Location == other.Location &&
		f.IsRemote == other.IsRemote &&
		f.Country == other.Country &&
		f.Category == other.Category &&
		f.SalaryMin == other.SalaryMin &&
		f.ContractType == other.ContractType &&
		f.ContractTime == other.ContractTime &&
		f.SortBy == other.SortBy &&
		f.DateRangeDays == other.DateRangeDays
}

// HasSource reports whether src is among the selected sources.
func (f SearchFilters) HasSource(src Source) bool {
	for _, s := range f.SelectedSources {
		if s == src {
			return true
		}
	}
	return false
}
