package model

// DensityRow is one line of the density table. Population, PopulationMillions
// and Per100k are nil when the district has no usable population.
type DensityRow struct {
	District           string     `json:"district"`
	OutletCount        int        `json:"outlet_count"`
	Population         *Headcount `json:"population"`
	PopulationMillions *float64   `json:"population_mil"`
	Per100k            *float64   `json:"density_per_100k"`
}

// GroupCount is a (key, count) pair used by the bar-chart aggregations.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}
