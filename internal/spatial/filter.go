// Package spatial clips outlet points and district boundaries to a state
// region and joins population counts onto district boundaries.
package spatial

import (
	"github.com/twpayne/go-geom"

	"github.com/sells-group/outlet-density/internal/model"
)

// Result is the output of FilterByRegion. Region is nil when no region was
// selected.
type Result struct {
	Points    []model.Outlet
	States    []model.Boundary
	Districts []model.Boundary
	Region    *model.Boundary
}

// Bounds returns the zoom extent: the selected region's bounds, or the
// combined bounds of all states when unfiltered.
func (r Result) Bounds() *model.BBox {
	if r.Region != nil {
		return model.BBoxOf(r.Region.Bounds())
	}
	b := geom.NewBounds(geom.XY)
	for _, s := range r.States {
		if s.Geometry != nil && !s.Geometry.Empty() {
			b.Extend(s.Geometry)
		}
	}
	return model.BBoxOf(b)
}

// FindBoundary returns the boundary named name, or false.
func FindBoundary(boundaries []model.Boundary, name string) (model.Boundary, bool) {
	for _, b := range boundaries {
		if b.Name == name {
			return b, true
		}
	}
	return model.Boundary{}, false
}

// FilterByRegion restricts points and district boundaries to the state
// boundary named region. With model.AllRegions (or an empty region) every
// input is returned unfiltered. Points without coordinates never pass a
// spatial test, so they only survive the unfiltered path when the caller
// included them.
func FilterByRegion(points []model.Outlet, states, districts []model.Boundary, region string) (Result, error) {
	if region == "" || region == model.AllRegions {
		return Result{Points: points, States: states, Districts: districts}, nil
	}

	target, ok := FindBoundary(states, region)
	if !ok {
		return Result{}, &RegionNotFoundError{Region: region}
	}

	res := Result{
		States: []model.Boundary{target},
		Region: &target,
	}
	for _, p := range points {
		if !p.Located() {
			continue
		}
		if ContainsPoint(target.Geometry, *p.Lng, *p.Lat) {
			res.Points = append(res.Points, p)
		}
	}
	for _, d := range districts {
		if Intersects(d.Geometry, target.Geometry) {
			res.Districts = append(res.Districts, d)
		}
	}
	return res, nil
}
