package model

import "math"

// Outlet is a single retail store row from the outlet table.
// Lat and Lng are nil when the source value was missing or non-numeric.
type Outlet struct {
	ID       string   `json:"id,omitempty"`
	Name     string   `json:"name,omitempty"`
	State    string   `json:"state"`
	District string   `json:"district"`
	Lat      *float64 `json:"latitude"`
	Lng      *float64 `json:"longitude"`
}

// Located reports whether the outlet has usable coordinates and may take
// part in spatial operations.
func (o Outlet) Located() bool {
	if o.Lat == nil || o.Lng == nil {
		return false
	}
	return !math.IsNaN(*o.Lat) && !math.IsNaN(*o.Lng) &&
		!math.IsInf(*o.Lat, 0) && !math.IsInf(*o.Lng, 0)
}

// Located returns only the outlets with usable coordinates, in input order.
func Located(outlets []Outlet) []Outlet {
	out := make([]Outlet, 0, len(outlets))
	for _, o := range outlets {
		if o.Located() {
			out = append(out, o)
		}
	}
	return out
}
