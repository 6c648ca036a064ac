package model

// AllRegions is the zoom region that disables spatial filtering.
const AllRegions = "All"

// Selection is a snapshot of a user's filter state.
type Selection struct {
	States            []string `json:"states"`
	Districts         []string `json:"districts"`
	Region            string   `json:"region"`
	PopulationOverlay bool     `json:"population_overlay"`
}

// Zoomed reports whether a specific region is selected.
func (s Selection) Zoomed() bool {
	return s.Region != "" && s.Region != AllRegions
}
