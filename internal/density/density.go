// Package density computes outlets per 100k residents for each district.
package density

import (
	"math"
	"sort"

	"github.com/sells-group/outlet-density/internal/model"
)

// Compute builds the density table from outlets and the population table.
//
// Rows cover every population district (zero outlets is a valid count) plus
// every outlet district with no population row, the latter after the former
// in first-seen order. Density is round(count / population_mil / 10), using
// round-half-to-even, and is nil for zero or missing population. Rows are
// sorted by density descending with nil densities last; equal densities keep
// their construction order, so repeated calls return identical output.
func Compute(outlets []model.Outlet, population []model.DistrictPopulation) []model.DensityRow {
	counts := make(map[string]int)
	var order []string
	for _, o := range outlets {
		if _, ok := counts[o.District]; !ok {
			order = append(order, o.District)
		}
		counts[o.District]++
	}

	rows := make([]model.DensityRow, 0, len(population)+len(order))
	seen := make(map[string]bool, len(population))
	for _, p := range population {
		if seen[p.District] {
			continue
		}
		seen[p.District] = true
		rows = append(rows, newRow(p.District, counts[p.District], p.Population))
	}
	for _, d := range order {
		if seen[d] {
			continue
		}
		rows = append(rows, newRow(d, counts[d], nil))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Per100k, rows[j].Per100k
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a > *b
		}
	})
	return rows
}

func newRow(district string, count int, pop *model.Headcount) model.DensityRow {
	row := model.DensityRow{District: district, OutletCount: count}
	if pop == nil {
		return row
	}
	p := *pop
	row.Population = &p

	mil := p.Millions()
	display := math.Round(mil*1000) / 1000
	row.PopulationMillions = &display

	if v, ok := Per100k(count, p); ok {
		row.Per100k = &v
	}
	return row
}

// Per100k returns round(count / (population / 100_000)). The second return is
// false when population is zero or negative.
func Per100k(count int, population model.Headcount) (float64, bool) {
	if population <= 0 {
		return 0, false
	}
	return math.RoundToEven(float64(count) / population.Millions() / 10), true
}

// Restrict returns the population rows whose district is in keep, preserving
// table order.
func Restrict(population []model.DistrictPopulation, keep []string) []model.DistrictPopulation {
	set := make(map[string]bool, len(keep))
	for _, k := range keep {
		set[k] = true
	}
	out := make([]model.DistrictPopulation, 0, len(keep))
	for _, p := range population {
		if set[p.District] {
			out = append(out, p)
		}
	}
	return out
}
