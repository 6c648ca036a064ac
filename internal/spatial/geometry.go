package spatial

import (
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
	"github.com/twpayne/go-geom/xy/lineintersection"
	"github.com/twpayne/go-geom/xy/lineintersector"
	"github.com/twpayne/go-geom/xy/location"
)

// ContainsPoint reports whether (lng, lat) lies inside mp. Points on an outer
// ring or on a hole ring count as inside; points strictly inside a hole do not.
func ContainsPoint(mp *geom.MultiPolygon, lng, lat float64) bool {
	if mp == nil || mp.Empty() {
		return false
	}
	c := geom.Coord{lng, lat}
	b := mp.Bounds()
	if lng < b.Min(0) || lng > b.Max(0) || lat < b.Min(1) || lat > b.Max(1) {
		return false
	}
	for i := 0; i < mp.NumPolygons(); i++ {
		if polygonContains(mp.Polygon(i), c) {
			return true
		}
	}
	return false
}

func polygonContains(p *geom.Polygon, c geom.Coord) bool {
	if p.NumLinearRings() == 0 {
		return false
	}
	if xy.LocatePointInRing(geom.XY, c, p.LinearRing(0).FlatCoords()) == location.Exterior {
		return false
	}
	for r := 1; r < p.NumLinearRings(); r++ {
		if xy.LocatePointInRing(geom.XY, c, p.LinearRing(r).FlatCoords()) == location.Interior {
			return false
		}
	}
	return true
}

// Intersects reports whether two multipolygons share at least one point.
// Touching boundaries count as intersecting.
func Intersects(a, b *geom.MultiPolygon) bool {
	if a == nil || b == nil || a.Empty() || b.Empty() {
		return false
	}
	if !a.Bounds().Overlaps(geom.XY, b.Bounds()) {
		return false
	}
	if anyVertexInside(a, b) || anyVertexInside(b, a) {
		return true
	}
	return edgesCross(a, b)
}

// anyVertexInside reports whether any ring vertex of src lies inside dst.
func anyVertexInside(src, dst *geom.MultiPolygon) bool {
	dstBounds := dst.Bounds()
	flat := src.FlatCoords()
	for i := 0; i+1 < len(flat); i += 2 {
		lng, lat := flat[i], flat[i+1]
		if lng < dstBounds.Min(0) || lng > dstBounds.Max(0) || lat < dstBounds.Min(1) || lat > dstBounds.Max(1) {
			continue
		}
		if ContainsPoint(dst, lng, lat) {
			return true
		}
	}
	return false
}

func edgesCross(a, b *geom.MultiPolygon) bool {
	bEdges := ringEdges(b)
	for _, ea := range ringEdges(a) {
		for _, eb := range bEdges {
			if !ea.bounds().Overlaps(geom.XY, eb.bounds()) {
				continue
			}
			res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{}, ea[0], ea[1], eb[0], eb[1])
			if res.HasIntersection() {
				return true
			}
		}
	}
	return false
}

// OverlapsInterior reports whether the interiors of a and b share an area.
// Unlike Intersects, polygons that only touch along an edge or at a corner
// do not overlap.
func OverlapsInterior(a, b *geom.MultiPolygon) bool {
	if a == nil || b == nil || a.Empty() || b.Empty() {
		return false
	}
	if !a.Bounds().Overlaps(geom.XY, b.Bounds()) {
		return false
	}
	if anySampleInterior(a, b) || anySampleInterior(b, a) {
		return true
	}
	return edgesCrossProperly(a, b)
}

// anySampleInterior reports whether a vertex, an edge midpoint or the
// centroid of src lies strictly inside both src and dst. The vertex and
// midpoint samples are on src's boundary, so only dst is tested for them.
func anySampleInterior(src, dst *geom.MultiPolygon) bool {
	for _, e := range ringEdges(src) {
		mid := geom.Coord{(e[0][0] + e[1][0]) / 2, (e[0][1] + e[1][1]) / 2}
		if interiorOf(dst, e[0]) || interiorOf(dst, mid) {
			return true
		}
	}
	c := xy.MultiPolygonCentroid(src)
	return interiorOf(src, c) && interiorOf(dst, c)
}

// edgesCrossProperly reports whether an edge of a crosses an edge of b at a
// single point that is not an endpoint of either edge.
func edgesCrossProperly(a, b *geom.MultiPolygon) bool {
	bEdges := ringEdges(b)
	for _, ea := range ringEdges(a) {
		for _, eb := range bEdges {
			if !ea.bounds().Overlaps(geom.XY, eb.bounds()) {
				continue
			}
			res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{}, ea[0], ea[1], eb[0], eb[1])
			if res.Type() != lineintersection.PointIntersection {
				continue
			}
			p := res.Intersection()[0]
			if !p.Equal(geom.XY, ea[0]) && !p.Equal(geom.XY, ea[1]) &&
				!p.Equal(geom.XY, eb[0]) && !p.Equal(geom.XY, eb[1]) {
				return true
			}
		}
	}
	return false
}

// interiorOf reports whether c is strictly inside mp: inside an outer ring
// and clear of every hole, with boundaries excluded.
func interiorOf(mp *geom.MultiPolygon, c geom.Coord) bool {
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		if p.NumLinearRings() == 0 {
			continue
		}
		if xy.LocatePointInRing(geom.XY, c, p.LinearRing(0).FlatCoords()) != location.Interior {
			continue
		}
		inside := true
		for r := 1; r < p.NumLinearRings(); r++ {
			if xy.LocatePointInRing(geom.XY, c, p.LinearRing(r).FlatCoords()) != location.Exterior {
				inside = false
				break
			}
		}
		if inside {
			return true
		}
	}
	return false
}

// edge is one ring segment.
type edge [2]geom.Coord

func (e edge) bounds() *geom.Bounds {
	return geom.NewBounds(geom.XY).SetCoords(e[0], e[1])
}

func ringEdges(mp *geom.MultiPolygon) []edge {
	var out []edge
	for i := 0; i < mp.NumPolygons(); i++ {
		p := mp.Polygon(i)
		for r := 0; r < p.NumLinearRings(); r++ {
			flat := p.LinearRing(r).FlatCoords()
			for j := 0; j+3 < len(flat); j += 2 {
				out = append(out, edge{{flat[j], flat[j+1]}, {flat[j+2], flat[j+3]}})
			}
		}
	}
	return out
}
