package model

import (
	"github.com/twpayne/go-geom"
)

// SRID is the only coordinate reference used for boundaries and outlets
// (WGS 84 longitude/latitude, unprojected).
const SRID = 4326

// BoundaryKind distinguishes state-level from district-level boundaries.
type BoundaryKind string

const (
	BoundaryState    BoundaryKind = "state"
	BoundaryDistrict BoundaryKind = "district"
)

// Boundary is a named administrative region with its geometry. Geometry is
// never mutated after load.
type Boundary struct {
	Kind     BoundaryKind
	Name     string
	Geometry *geom.MultiPolygon
}

// Bounds returns the bounding box of the boundary geometry.
func (b Boundary) Bounds() *geom.Bounds {
	if b.Geometry == nil {
		return geom.NewBounds(geom.XY)
	}
	return b.Geometry.Bounds()
}

// DistrictLayer is a district boundary with its population joined on.
// Population is nil when no population row matched the district name.
type DistrictLayer struct {
	Boundary
	Population *Headcount
}

// BBox is a lon/lat bounding box.
type BBox struct {
	MinLng float64 `json:"min_lng"`
	MinLat float64 `json:"min_lat"`
	MaxLng float64 `json:"max_lng"`
	MaxLat float64 `json:"max_lat"`
}

// BBoxOf converts geom bounds into a BBox. Empty bounds yield nil.
func BBoxOf(b *geom.Bounds) *BBox {
	if b == nil || b.IsEmpty() {
		return nil
	}
	return &BBox{
		MinLng: b.Min(0),
		MinLat: b.Min(1),
		MaxLng: b.Max(0),
		MaxLat: b.Max(1),
	}
}
