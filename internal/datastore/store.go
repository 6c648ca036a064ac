// Package datastore loads the four static datasets behind the dashboard and
// holds them read-only for the life of the process.
package datastore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outlet-density/internal/metrics"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/names"
)

// Dataset names used in errors, logs and metrics.
const (
	SourceOutlets    = "outlets"
	SourcePopulation = "population"
	SourceStates     = "state_boundaries"
	SourceDistricts  = "district_boundaries"
)

func sourceFor(kind model.BoundaryKind) string {
	if kind == model.BoundaryState {
		return SourceStates
	}
	return SourceDistricts
}

// Sources locates the four datasets on disk.
type Sources struct {
	OutletsPath       string
	PopulationPath    string
	StatesPath        string
	DistrictsPath     string
	StateNameField    string
	DistrictNameField string
	Aliases           names.Aliases
}

// Stats summarises a Load.
type Stats struct {
	Outlets    OutletStats
	Population PopulationStats
	States     BoundaryStats
	Districts  BoundaryStats
}

// Store holds the loaded datasets. It is immutable after construction and
// safe to share between sessions.
type Store struct {
	outlets    []model.Outlet
	population []model.DistrictPopulation
	states     []model.Boundary
	districts  []model.Boundary
	stats      Stats
}

// New builds a Store from in-memory tables. Population must already be in
// absolute head counts.
func New(outlets []model.Outlet, population []model.DistrictPopulation, states, districts []model.Boundary) *Store {
	return &Store{
		outlets:    outlets,
		population: population,
		states:     states,
		districts:  districts,
		stats: Stats{
			Outlets:    OutletStats{Rows: len(outlets), Unlocated: len(outlets) - len(model.Located(outlets))},
			Population: PopulationStats{Rows: len(population)},
			States:     BoundaryStats{Features: len(states), Regions: len(states)},
			Districts:  BoundaryStats{Features: len(districts), Regions: len(districts)},
		},
	}
}

// Load reads and validates all four datasets in parallel. Any DataLoadError
// aborts the load; bad rows are absorbed and counted in Stats.
func Load(ctx context.Context, src Sources) (*Store, error) {
	log := zap.L().With(zap.String("component", "datastore"))

	s := &Store{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		f, err := openSource(SourceOutlets, src.OutletsPath)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		s.outlets, s.stats.Outlets, err = ReadOutlets(gctx, f)
		return err
	})

	g.Go(func() error {
		if isXLSX(src.PopulationPath) {
			var err error
			if _, err = os.Stat(src.PopulationPath); err != nil {
				return &DataLoadError{Source: SourcePopulation, Err: err}
			}
			s.population, s.stats.Population, err = ReadPopulationXLSX(gctx, src.PopulationPath, src.Aliases)
			return err
		}
		f, err := openSource(SourcePopulation, src.PopulationPath)
		if err != nil {
			return err
		}
		defer f.Close() //nolint:errcheck
		s.population, s.stats.Population, err = ReadPopulationCSV(gctx, f, src.Aliases)
		return err
	})

	g.Go(func() error {
		var err error
		s.states, s.stats.States, err = readBoundaries(gctx, src.StatesPath, model.BoundaryState, src.StateNameField, src.Aliases)
		return err
	})

	g.Go(func() error {
		var err error
		s.districts, s.stats.Districts, err = readBoundaries(gctx, src.DistrictsPath, model.BoundaryDistrict, src.DistrictNameField, src.Aliases)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	s.record()
	log.Info("datasets loaded",
		zap.Int("outlets", s.stats.Outlets.Rows),
		zap.Int("outlets_unlocated", s.stats.Outlets.Unlocated),
		zap.Int("population_rows", s.stats.Population.Rows),
		zap.Int("population_null", s.stats.Population.Null),
		zap.Int("states", s.stats.States.Regions),
		zap.Int("districts", s.stats.Districts.Regions),
		zap.Int("aliases", src.Aliases.Len()),
	)
	if s.stats.Population.Duplicates > 0 {
		log.Warn("population table repeats districts; first row wins",
			zap.Int("duplicates", s.stats.Population.Duplicates))
	}
	return s, nil
}

func (s *Store) validate() error {
	if len(s.states) == 0 {
		return &DataLoadError{Source: SourceStates, Err: eris.New("no usable boundary features")}
	}
	if len(s.districts) == 0 {
		return &DataLoadError{Source: SourceDistricts, Err: eris.New("no usable boundary features")}
	}
	return nil
}

func (s *Store) record() {
	st := s.stats
	metrics.RowsLoaded.WithLabelValues(SourceOutlets).Add(float64(st.Outlets.Rows))
	metrics.RowsDropped.WithLabelValues(SourceOutlets, "unparseable").Add(float64(st.Outlets.Skipped))
	metrics.RowsDropped.WithLabelValues(SourceOutlets, "no_coordinates").Add(float64(st.Outlets.Unlocated))
	metrics.RowsLoaded.WithLabelValues(SourcePopulation).Add(float64(st.Population.Rows))
	metrics.RowsDropped.WithLabelValues(SourcePopulation, "unparseable").Add(float64(st.Population.Skipped))
	metrics.RowsDropped.WithLabelValues(SourcePopulation, "null_population").Add(float64(st.Population.Null))
	for _, b := range []struct {
		source string
		stats  BoundaryStats
	}{{SourceStates, st.States}, {SourceDistricts, st.Districts}} {
		metrics.RowsLoaded.WithLabelValues(b.source).Add(float64(b.stats.Regions))
		metrics.RowsDropped.WithLabelValues(b.source, "no_name").Add(float64(b.stats.NoName))
		metrics.RowsDropped.WithLabelValues(b.source, "geometry").Add(float64(b.stats.Geometry))
	}
}

func openSource(source, path string) (*os.File, error) {
	if path == "" {
		return nil, &DataLoadError{Source: source, Err: eris.New("path not configured")}
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: err}
	}
	return f, nil
}

func isXLSX(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}

func readBoundaries(ctx context.Context, path string, kind model.BoundaryKind, nameField string, aliases names.Aliases) ([]model.Boundary, BoundaryStats, error) {
	if strings.EqualFold(filepath.Ext(path), ".shp") {
		if _, err := os.Stat(path); err != nil {
			return nil, BoundaryStats{}, &DataLoadError{Source: sourceFor(kind), Err: err}
		}
		return ReadBoundariesShapefile(ctx, path, kind, nameField, aliases)
	}
	f, err := openSource(sourceFor(kind), path)
	if err != nil {
		return nil, BoundaryStats{}, err
	}
	defer f.Close() //nolint:errcheck
	return ReadBoundariesGeoJSON(ctx, f, kind, nameField, aliases)
}

// Outlets returns every outlet row, including those without coordinates.
func (s *Store) Outlets() []model.Outlet { return s.outlets }

// Population returns the population table in absolute head counts.
func (s *Store) Population() []model.DistrictPopulation { return s.population }

// States returns the state boundaries.
func (s *Store) States() []model.Boundary { return s.states }

// Districts returns the district boundaries.
func (s *Store) Districts() []model.Boundary { return s.districts }

// Stats returns load counters.
func (s *Store) Stats() Stats { return s.stats }
