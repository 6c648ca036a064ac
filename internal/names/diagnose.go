package names

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/outlet-density/internal/model"
)

// Canonical folds a name for comparison only: NFKC, case folding and
// collapsed whitespace. It is never used as a join key.
func Canonical(name string) string {
	folded := cases.Fold().String(norm.NFKC.String(name))
	return strings.Join(strings.Fields(folded), " ")
}

// Mismatch is an outlet-table name with no exact partner in another dataset.
// Suggestions are names in that dataset with the same canonical form.
type Mismatch struct {
	Name        string   `json:"name"`
	Outlets     int      `json:"outlets"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// Report lists the name-keyed join gaps between the outlet table and the
// other three datasets.
type Report struct {
	DistrictsWithoutPopulation  []Mismatch `json:"districts_without_population"`
	DistrictsWithoutBoundary    []Mismatch `json:"districts_without_boundary"`
	StatesWithoutBoundary       []Mismatch `json:"states_without_boundary"`
	BoundariesWithoutPopulation []string   `json:"boundaries_without_population"`
}

// Total counts every reported gap.
func (r Report) Total() int {
	return len(r.DistrictsWithoutPopulation) + len(r.DistrictsWithoutBoundary) +
		len(r.StatesWithoutBoundary) + len(r.BoundariesWithoutPopulation)
}

// Diagnose compares the outlet table's state and district names with the
// other datasets. Nothing is renamed.
func Diagnose(outlets []model.Outlet, population []model.DistrictPopulation, states, districts []model.Boundary) Report {
	popNames := make([]string, 0, len(population))
	for _, p := range population {
		popNames = append(popNames, p.District)
	}
	districtNames := boundaryNames(districts)
	stateNames := boundaryNames(states)

	districtCounts := counts(outlets, func(o model.Outlet) string { return o.District })
	stateCounts := counts(outlets, func(o model.Outlet) string { return o.State })

	var r Report
	r.DistrictsWithoutPopulation = missing(districtCounts, popNames)
	r.DistrictsWithoutBoundary = missing(districtCounts, districtNames)
	r.StatesWithoutBoundary = missing(stateCounts, stateNames)

	popSet := make(map[string]bool, len(popNames))
	for _, n := range popNames {
		popSet[n] = true
	}
	for _, n := range districtNames {
		if !popSet[n] {
			r.BoundariesWithoutPopulation = append(r.BoundariesWithoutPopulation, n)
		}
	}
	return r
}

type keyCount struct {
	key   string
	count int
}

func counts(outlets []model.Outlet, key func(model.Outlet) string) []keyCount {
	idx := make(map[string]int)
	var out []keyCount
	for _, o := range outlets {
		k := key(o)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, keyCount{key: k})
		}
		out[i].count++
	}
	return out
}

func missing(have []keyCount, other []string) []Mismatch {
	exact := make(map[string]bool, len(other))
	byCanon := make(map[string][]string)
	for _, n := range other {
		if exact[n] {
			continue
		}
		exact[n] = true
		c := Canonical(n)
		byCanon[c] = append(byCanon[c], n)
	}

	var out []Mismatch
	for _, kc := range have {
		if exact[kc.key] {
			continue
		}
		sugg := append([]string(nil), byCanon[Canonical(kc.key)]...)
		sort.Strings(sugg)
		out = append(out, Mismatch{Name: kc.key, Outlets: kc.count, Suggestions: sugg})
	}
	return out
}

func boundaryNames(bs []model.Boundary) []string {
	out := make([]string, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Name)
	}
	return out
}
