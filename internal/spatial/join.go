package spatial

import (
	"github.com/sells-group/outlet-density/internal/model"
)

// JoinPopulation attaches population to every district boundary by exact,
// case-sensitive name match. Every boundary is kept; unmatched boundaries
// get a nil population. When the population table repeats a district the
// first row wins.
func JoinPopulation(districts []model.Boundary, population []model.DistrictPopulation) []model.DistrictLayer {
	byName := make(map[string]*model.Headcount, len(population))
	seen := make(map[string]bool, len(population))
	for _, p := range population {
		if seen[p.District] {
			continue
		}
		seen[p.District] = true
		byName[p.District] = p.Population
	}

	out := make([]model.DistrictLayer, 0, len(districts))
	for _, d := range districts {
		out = append(out, model.DistrictLayer{
			Boundary:   d,
			Population: byName[d.Name],
		})
	}
	return out
}

// TotalPopulation sums the non-nil populations of layers. The second return
// is false when no layer had a population.
func TotalPopulation(layers []model.DistrictLayer) (model.Headcount, bool) {
	var total model.Headcount
	var found bool
	for _, l := range layers {
		if l.Population == nil {
			continue
		}
		total += *l.Population
		found = true
	}
	return total, found
}

// UnmatchedDistricts lists boundary names left without a usable population,
// in input order.
func UnmatchedDistricts(layers []model.DistrictLayer) []string {
	var out []string
	for _, l := range layers {
		if l.Population == nil {
			out = append(out, l.Name)
		}
	}
	return out
}
