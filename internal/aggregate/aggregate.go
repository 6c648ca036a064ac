// Package aggregate computes the group-by counts behind the bar charts.
package aggregate

import (
	"sort"

	"github.com/sells-group/outlet-density/internal/model"
)

// groupCount counts outlets per key, keeping groups in first-seen order.
func groupCount(outlets []model.Outlet, key func(model.Outlet) string) []model.GroupCount {
	idx := make(map[string]int)
	var out []model.GroupCount
	for _, o := range outlets {
		k := key(o)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, model.GroupCount{Key: k})
		}
		out[i].Count++
	}
	return out
}

// CountByState returns the number of outlets per state in first-seen order.
// Callers sort for display.
func CountByState(outlets []model.Outlet) []model.GroupCount {
	return groupCount(outlets, func(o model.Outlet) string { return o.State })
}

// CountByDistrict returns the number of outlets per district in first-seen order.
func CountByDistrict(outlets []model.Outlet) []model.GroupCount {
	return groupCount(outlets, func(o model.Outlet) string { return o.District })
}

// SortDesc sorts counts by count descending. Equal counts keep their
// current relative order.
func SortDesc(counts []model.GroupCount) {
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
}

// TopDistricts returns at most n districts with the most outlets, sorted by
// count descending. Ties go to the district seen first in outlets.
func TopDistricts(outlets []model.Outlet, n int) []model.GroupCount {
	if n <= 0 {
		return nil
	}
	counts := CountByDistrict(outlets)
	SortDesc(counts)
	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}
