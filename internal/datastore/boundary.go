package datastore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/xy"
	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/names"
)

// BoundaryStats summarises one boundary dataset read.
type BoundaryStats struct {
	Features int
	Regions  int
	NoName   int
	Geometry int
}

// boundarySet merges features that share a region name into one
// multipolygon, keeping first-seen order.
type boundarySet struct {
	kind    model.BoundaryKind
	aliases names.Aliases
	index   map[string]int
	out     []model.Boundary
}

func newBoundarySet(kind model.BoundaryKind, aliases names.Aliases) *boundarySet {
	return &boundarySet{kind: kind, aliases: aliases, index: make(map[string]int)}
}

func (s *boundarySet) add(name string, polys []*geom.Polygon) {
	name = s.aliases.BoundaryName(name)
	i, ok := s.index[name]
	if !ok {
		i = len(s.out)
		s.index[name] = i
		s.out = append(s.out, model.Boundary{
			Kind:     s.kind,
			Name:     name,
			Geometry: geom.NewMultiPolygon(geom.XY).SetSRID(model.SRID),
		})
	}
	for _, p := range polys {
		if err := s.out[i].Geometry.Push(p); err != nil {
			zap.L().Debug("datastore: skipping polygon", zap.String("region", name), zap.Error(err))
		}
	}
}

// ReadBoundariesGeoJSON parses a FeatureCollection and keys each Polygon or
// MultiPolygon feature by the nameField property. Features without a name
// or with another geometry type are skipped; a nameField that no feature
// carries is a DataLoadError.
func ReadBoundariesGeoJSON(ctx context.Context, r io.Reader, kind model.BoundaryKind, nameField string, aliases names.Aliases) ([]model.Boundary, BoundaryStats, error) {
	source := sourceFor(kind)

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, BoundaryStats{}, &DataLoadError{Source: source, Err: eris.Wrap(err, "geojson: read")}
	}
	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, BoundaryStats{}, &DataLoadError{Source: source, Err: eris.Wrap(err, "geojson: decode feature collection")}
	}

	set := newBoundarySet(kind, aliases)
	stats := BoundaryStats{Features: len(fc.Features)}
	var sawField bool
	for _, f := range fc.Features {
		if ctx.Err() != nil {
			return nil, BoundaryStats{}, eris.Wrap(ctx.Err(), "geojson: context cancelled")
		}
		if f == nil {
			stats.Geometry++
			continue
		}

		raw, ok := f.Properties[nameField]
		if ok {
			sawField = true
		}
		name := propertyString(raw)
		if name == "" {
			stats.NoName++
			continue
		}

		polys := polygonsOf(f.Geometry)
		if len(polys) == 0 {
			stats.Geometry++
			continue
		}
		set.add(name, polys)
	}

	if !sawField {
		return nil, BoundaryStats{}, &DataLoadError{Source: source, Column: nameField}
	}
	stats.Regions = len(set.out)
	return set.out, stats, nil
}

// propertyString renders a GeoJSON property as a trimmed name.
func propertyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// polygonsOf returns the polygons of a Polygon or MultiPolygon geometry.
func polygonsOf(g geom.T) []*geom.Polygon {
	switch t := g.(type) {
	case *geom.Polygon:
		if t.Empty() {
			return nil
		}
		return []*geom.Polygon{toXY(t)}
	case *geom.MultiPolygon:
		out := make([]*geom.Polygon, 0, t.NumPolygons())
		for i := 0; i < t.NumPolygons(); i++ {
			if p := t.Polygon(i); !p.Empty() {
				out = append(out, toXY(p))
			}
		}
		return out
	default:
		return nil
	}
}

// toXY drops Z and M ordinates so every boundary shares the XY layout.
func toXY(p *geom.Polygon) *geom.Polygon {
	if p.Layout() == geom.XY {
		return p
	}
	stride := p.Stride()
	src := p.FlatCoords()
	flat := make([]float64, 0, len(src)/stride*2)
	for i := 0; i+1 < len(src); i += stride {
		flat = append(flat, src[i], src[i+1])
	}
	ends := make([]int, 0, len(p.Ends()))
	for _, e := range p.Ends() {
		ends = append(ends, e/stride*2)
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends)
}

// ReadBoundariesShapefile reads a polygon shapefile and keys each shape by
// the nameField attribute (matched case-insensitively).
func ReadBoundariesShapefile(ctx context.Context, path string, kind model.BoundaryKind, nameField string, aliases names.Aliases) ([]model.Boundary, BoundaryStats, error) {
	source := sourceFor(kind)

	reader, err := shp.Open(path)
	if err != nil {
		return nil, BoundaryStats{}, &DataLoadError{Source: source, Err: eris.Wrap(err, "shapefile: open")}
	}
	defer func() { _ = reader.Close() }()

	nameIdx := fieldIndex(reader, nameField)
	if nameIdx < 0 {
		return nil, BoundaryStats{}, &DataLoadError{Source: source, Column: nameField}
	}

	set := newBoundarySet(kind, aliases)
	var stats BoundaryStats
	for reader.Next() {
		if ctx.Err() != nil {
			return nil, BoundaryStats{}, eris.Wrap(ctx.Err(), "shapefile: context cancelled")
		}
		stats.Features++

		_, shape := reader.Shape()
		name := strings.TrimSpace(reader.Attribute(nameIdx))
		if name == "" {
			stats.NoName++
			continue
		}
		p, ok := shape.(*shp.Polygon)
		if !ok {
			stats.Geometry++
			continue
		}
		polys := shapePolygons(p)
		if len(polys) == 0 {
			stats.Geometry++
			continue
		}
		set.add(name, polys)
	}

	stats.Regions = len(set.out)
	return set.out, stats, nil
}

// fieldIndex returns the index of a named field in the shapefile, or -1 if not found.
func fieldIndex(reader *shp.Reader, name string) int {
	for i, f := range reader.Fields() {
		if strings.EqualFold(strings.TrimRight(f.String(), "\x00"), name) {
			return i
		}
	}
	return -1
}

// shapePolygons splits shapefile parts into polygons. Clockwise parts are
// outer rings; counter-clockwise parts are holes of the preceding outer ring.
func shapePolygons(p *shp.Polygon) []*geom.Polygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	var out []*geom.Polygon
	var current *geom.Polygon
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}
		if end-start < 4 {
			continue
		}

		flat := make([]float64, 0, (end-start)*2)
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}
		ring := geom.NewLinearRingFlat(geom.XY, flat)

		if xy.IsRingCounterClockwise(geom.XY, flat) && current != nil {
			if err := current.Push(ring); err != nil {
				zap.L().Debug("datastore: skipping hole ring", zap.Int32("part", i), zap.Error(err))
			}
			continue
		}

		current = geom.NewPolygon(geom.XY)
		if err := current.Push(ring); err != nil {
			zap.L().Debug("datastore: skipping outer ring", zap.Int32("part", i), zap.Error(err))
			current = nil
			continue
		}
		out = append(out, current)
	}
	return out
}
