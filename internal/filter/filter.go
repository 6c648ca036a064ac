// Package filter holds the state and district selection of one dashboard
// session and keeps the two consistent.
package filter

import (
	"github.com/sells-group/outlet-density/internal/model"
)

// Controller is a two-field filter: selected states and selected districts.
// The selected districts are always a subset of the districts that belong to
// the selected states. A Controller is not safe for concurrent use; each
// session owns its own.
type Controller struct {
	states           []string
	districtsByState map[string][]string

	selectedStates    []string
	selectedDistricts []string
	validDistricts    []string
}

// NewController builds the option sets from the outlet table. Option order is
// first-seen order. Everything starts selected.
func NewController(outlets []model.Outlet) *Controller {
	c := &Controller{districtsByState: make(map[string][]string)}
	seenState := make(map[string]bool)
	seenPair := make(map[[2]string]bool)
	for _, o := range outlets {
		if !seenState[o.State] {
			seenState[o.State] = true
			c.states = append(c.states, o.State)
		}
		pair := [2]string{o.State, o.District}
		if !seenPair[pair] {
			seenPair[pair] = true
			c.districtsByState[o.State] = append(c.districtsByState[o.State], o.District)
		}
	}

	c.selectedStates = clone(c.states)
	c.validDistricts = c.districtsFor(c.selectedStates)
	c.selectedDistricts = clone(c.validDistricts)
	return c
}

// SelectStates replaces the selected states and recomputes the valid
// districts. If every valid district was selected before, the new valid set
// becomes the selection; otherwise the old selection is narrowed to it.
// Unknown state names are ignored.
func (c *Controller) SelectStates(states []string) {
	wasAll := sameSet(c.selectedDistricts, c.validDistricts)

	c.selectedStates = c.known(states)
	c.validDistricts = c.districtsFor(c.selectedStates)

	if wasAll {
		c.selectedDistricts = clone(c.validDistricts)
		return
	}
	c.selectedDistricts = intersect(c.validDistricts, c.selectedDistricts)
}

// SelectDistricts replaces the selected districts with the ones that are
// valid for the selected states. Out-of-range names are dropped silently.
func (c *Controller) SelectDistricts(districts []string) {
	c.selectedDistricts = intersect(c.validDistricts, districts)
}

// StateOptions returns every state in the outlet table.
func (c *Controller) StateOptions() []string { return clone(c.states) }

// DistrictOptions returns the districts valid for the selected states.
func (c *Controller) DistrictOptions() []string { return clone(c.validDistricts) }

// SelectedStates returns the selected states in option order.
func (c *Controller) SelectedStates() []string { return clone(c.selectedStates) }

// SelectedDistricts returns the selected districts in option order.
func (c *Controller) SelectedDistricts() []string { return clone(c.selectedDistricts) }

// AllStatesSelected reports whether every state option is selected.
func (c *Controller) AllStatesSelected() bool {
	return sameSet(c.selectedStates, c.states)
}

// Unfiltered reports whether every state and every valid district is
// selected, i.e. the filter removes nothing.
func (c *Controller) Unfiltered() bool {
	return c.AllStatesSelected() && sameSet(c.selectedDistricts, c.validDistricts)
}

// Apply returns the outlets whose state and district are both selected.
func (c *Controller) Apply(outlets []model.Outlet) []model.Outlet {
	states := toSet(c.selectedStates)
	districts := toSet(c.selectedDistricts)
	out := make([]model.Outlet, 0, len(outlets))
	for _, o := range outlets {
		if states[o.State] && districts[o.District] {
			out = append(out, o)
		}
	}
	return out
}

func (c *Controller) known(states []string) []string {
	want := toSet(states)
	var out []string
	for _, s := range c.states {
		if want[s] {
			out = append(out, s)
		}
	}
	return out
}

func (c *Controller) districtsFor(states []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range states {
		for _, d := range c.districtsByState[s] {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out
}

// intersect returns the members of base that are in keep, in base order.
func intersect(base, keep []string) []string {
	set := toSet(keep)
	var out []string
	for _, b := range base {
		if set[b] {
			out = append(out, b)
		}
	}
	return out
}

func sameSet(a, b []string) bool {
	sa, sb := toSet(a), toSet(b)
	if len(sa) != len(sb) {
		return false
	}
	for k := range sa {
		if !sb[k] {
			return false
		}
	}
	return true
}

func toSet(xs []string) map[string]bool {
	m := make(map[string]bool, len(xs))
	for _, x := range xs {
		m[x] = true
	}
	return m
}

func clone(xs []string) []string {
	if xs == nil {
		return nil
	}
	return append([]string(nil), xs...)
}
