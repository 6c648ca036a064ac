package density

import "github.com/sells-group/outlet-density/internal/model"

// Insights splits a density table into districts with room to expand and
// districts that already have many outlets per resident.
type Insights struct {
	Underserved []model.DensityRow `json:"underserved"`
	Saturated   []model.DensityRow `json:"saturated"`
}

// Thresholds bound the two insight classes, both inclusive.
type Thresholds struct {
	UnderservedMax float64
	SaturatedMin   float64
}

// Classify buckets rows with a density. Districts without outlets are not
// reported as underserved; rows keep the table order.
func Classify(rows []model.DensityRow, th Thresholds) Insights {
	var ins Insights
	for _, r := range rows {
		if r.Per100k == nil {
			continue
		}
		switch {
		case *r.Per100k >= th.SaturatedMin:
			ins.Saturated = append(ins.Saturated, r)
		case *r.Per100k <= th.UnderservedMax && r.OutletCount > 0:
			ins.Underserved = append(ins.Underserved, r)
		}
	}
	return ins
}
