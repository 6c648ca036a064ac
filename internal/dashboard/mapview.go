package dashboard

import (
	"fmt"
	"time"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/outlet-density/internal/filter"
	"github.com/sells-group/outlet-density/internal/metrics"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/spatial"
)

// MapView is everything the map needs for one selection.
type MapView struct {
	Region            string
	Bounds            *model.BBox
	StoreCount        int
	Message           string
	TotalPopulation   *model.Headcount
	PopulationOverlay bool
	Points            []model.Outlet
	States            []model.Boundary
	Districts         []model.DistrictLayer
}

// Map clips the selection to region and joins population onto the districts
// in view.
func (e *Engine) Map(ctrl *filter.Controller, region string, overlay bool) (MapView, error) {
	defer metrics.ObserveView("map", time.Now())
	if region == "" {
		region = model.AllRegions
	}
	sc, err := e.scope(ctrl, region)
	if err != nil {
		return MapView{}, err
	}

	layers := spatial.JoinPopulation(sc.spatial.Districts, e.store.Population())
	v := MapView{
		Region:            region,
		Bounds:            sc.spatial.Bounds(),
		StoreCount:        len(sc.spatial.Points),
		PopulationOverlay: overlay,
		Points:            sc.spatial.Points,
		States:            sc.spatial.States,
		Districts:         layers,
	}
	if total, ok := spatial.TotalPopulation(layers); ok {
		v.TotalPopulation = &total
	}
	if sc.spatial.Region != nil {
		v.Message = fmt.Sprintf("%d outlets found in %s", v.StoreCount, region)
	}
	return v, nil
}

// MapLayers is the GeoJSON form of a MapView.
type MapLayers struct {
	Region            string                     `json:"region"`
	Bounds            *model.BBox                `json:"bounds"`
	StoreCount        int                        `json:"store_count"`
	Message           string                     `json:"message,omitempty"`
	TotalPopulation   *model.Headcount           `json:"total_population"`
	PopulationOverlay bool                       `json:"population_overlay"`
	Outlets           *geojson.FeatureCollection `json:"outlets"`
	States            *geojson.FeatureCollection `json:"states"`
	Districts         *geojson.FeatureCollection `json:"districts"`
}

// Layers encodes the view as GeoJSON feature collections. District features
// carry population only when the overlay is on.
func (v MapView) Layers() MapLayers {
	out := MapLayers{
		Region:            v.Region,
		Bounds:            v.Bounds,
		StoreCount:        v.StoreCount,
		Message:           v.Message,
		TotalPopulation:   v.TotalPopulation,
		PopulationOverlay: v.PopulationOverlay,
		Outlets:           &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(v.Points))},
		States:            &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(v.States))},
		Districts:         &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(v.Districts))},
	}

	for _, p := range v.Points {
		if !p.Located() {
			continue
		}
		out.Outlets.Features = append(out.Outlets.Features, &geojson.Feature{
			ID:       p.ID,
			Geometry: geom.NewPointFlat(geom.XY, []float64{*p.Lng, *p.Lat}),
			Properties: map[string]any{
				"name":     p.Name,
				"state":    p.State,
				"district": p.District,
			},
		})
	}
	for _, s := range v.States {
		out.States.Features = append(out.States.Features, &geojson.Feature{
			Geometry:   s.Geometry,
			Properties: map[string]any{"name": s.Name},
		})
	}
	for _, d := range v.Districts {
		props := map[string]any{"name": d.Name}
		if v.PopulationOverlay {
			if d.Population != nil {
				props["population"] = int64(*d.Population)
			} else {
				props["population"] = nil
			}
		}
		out.Districts.Features = append(out.Districts.Features, &geojson.Feature{
			Geometry:   d.Geometry,
			Properties: props,
		})
	}
	return out
}
