// Package dashboard runs the outlet density pipeline for a selection:
// attribute filter, spatial clip, then the chart, map and density views.
package dashboard

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/aggregate"
	"github.com/sells-group/outlet-density/internal/datastore"
	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/filter"
	"github.com/sells-group/outlet-density/internal/metrics"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/names"
	"github.com/sells-group/outlet-density/internal/spatial"
)

// Config tunes the derived views.
type Config struct {
	TopN       int
	Thresholds density.Thresholds
}

// Engine computes views over a loaded Store. It holds no per-user state and
// is safe to share; selections live in filter.Controllers owned by callers.
type Engine struct {
	store   *datastore.Store
	cfg     Config
	regions []string
	log     *zap.Logger

	// inRegion holds, per state, the districts whose boundary overlaps the
	// state's interior.
	inRegion map[string]map[string]bool
	// homeStates maps population districts without outlets to the outlet
	// states whose boundary their own boundary overlaps.
	homeStates map[string][]string
	// outletDistricts is every district named in the outlet table.
	outletDistricts map[string]bool
}

// NewEngine creates an Engine over store.
func NewEngine(store *datastore.Store, cfg Config) *Engine {
	if cfg.TopN <= 0 {
		cfg.TopN = 5
	}
	regions := make([]string, 0, len(store.States())+1)
	for _, s := range store.States() {
		regions = append(regions, s.Name)
	}
	sort.Strings(regions)
	regions = append([]string{model.AllRegions}, regions...)

	e := &Engine{
		store:           store,
		cfg:             cfg,
		regions:         regions,
		log:             zap.L().With(zap.String("component", "dashboard")),
		inRegion:        make(map[string]map[string]bool),
		homeStates:      make(map[string][]string),
		outletDistricts: make(map[string]bool),
	}
	e.indexDistricts()
	return e
}

// indexDistricts places every district boundary in the states it overlaps.
// Touching neighbours are left out. The result decides which zero-outlet
// districts a selection or a zoom keeps.
func (e *Engine) indexDistricts() {
	for _, o := range e.store.Outlets() {
		e.outletDistricts[o.District] = true
	}
	optionStates := make(map[string]bool)
	for _, s := range e.NewController().StateOptions() {
		optionStates[s] = true
	}

	for _, st := range e.store.States() {
		members := make(map[string]bool)
		for _, d := range e.store.Districts() {
			if !spatial.OverlapsInterior(d.Geometry, st.Geometry) {
				continue
			}
			members[d.Name] = true
			if !e.outletDistricts[d.Name] && optionStates[st.Name] {
				e.homeStates[d.Name] = append(e.homeStates[d.Name], st.Name)
			}
		}
		e.inRegion[st.Name] = members
	}
	e.log.Debug("district index built",
		zap.Int("states", len(e.inRegion)),
		zap.Int("zero_outlet_districts", len(e.homeStates)),
	)
}

// Config returns the engine configuration with defaults applied.
func (e *Engine) Config() Config { return e.cfg }

// NewController returns a filter with every state and district selected.
func (e *Engine) NewController() *filter.Controller {
	return filter.NewController(e.store.Outlets())
}

// Regions returns the zoom options: AllRegions first, then state names sorted.
func (e *Engine) Regions() []string {
	return append([]string(nil), e.regions...)
}

// HasRegion reports whether region is a valid zoom option.
func (e *Engine) HasRegion(region string) bool {
	if region == "" || region == model.AllRegions {
		return true
	}
	_, ok := spatial.FindBoundary(e.store.States(), region)
	return ok
}

// scope is the filtered data every view starts from.
type scope struct {
	// outlets feeds the charts and the density table. Unzoomed it includes
	// selected outlets without coordinates; zoomed it is the clipped points.
	outlets []model.Outlet
	spatial spatial.Result
	// population is the population table restricted to the selection.
	population []model.DistrictPopulation
}

func (e *Engine) scope(ctrl *filter.Controller, region string) (scope, error) {
	selected := ctrl.Apply(e.store.Outlets())

	res, err := spatial.FilterByRegion(model.Located(selected), e.store.States(), e.store.Districts(), region)
	if err != nil {
		metrics.RegionMisses.Inc()
		return scope{}, err
	}

	sc := scope{outlets: selected, spatial: res}
	if res.Region != nil {
		sc.outlets = res.Points
	}

	sc.population = e.selectedPopulation(ctrl)
	if res.Region != nil {
		sc.population = density.Restrict(sc.population, e.zoomedDistricts(res))
	}
	return sc, nil
}

// selectedPopulation restricts the population table to the selection. The
// selected districts are kept, and so is every district without outlets
// whose home state is selected. A zero-outlet district with no home state is
// kept while all states are selected.
func (e *Engine) selectedPopulation(ctrl *filter.Controller) []model.DistrictPopulation {
	if ctrl.Unfiltered() {
		return e.store.Population()
	}
	keep := ctrl.SelectedDistricts()
	states := make(map[string]bool)
	for _, s := range ctrl.SelectedStates() {
		states[s] = true
	}
	allStates := ctrl.AllStatesSelected()

	for _, p := range e.store.Population() {
		if e.outletDistricts[p.District] {
			continue
		}
		homes := e.homeStates[p.District]
		if len(homes) == 0 {
			if allStates {
				keep = append(keep, p.District)
			}
			continue
		}
		for _, h := range homes {
			if states[h] {
				keep = append(keep, p.District)
				break
			}
		}
	}
	return density.Restrict(e.store.Population(), keep)
}

// zoomedDistricts names the districts that belong to the zoomed region:
// those overlapping its interior and those holding a clipped outlet.
func (e *Engine) zoomedDistricts(res spatial.Result) []string {
	var out []string
	for name := range e.inRegion[res.Region.Name] {
		out = append(out, name)
	}
	for _, p := range res.Points {
		out = append(out, p.District)
	}
	return out
}

// StateCounts returns outlets per state, sorted by count descending.
func (e *Engine) StateCounts(ctrl *filter.Controller, region string) ([]model.GroupCount, error) {
	defer metrics.ObserveView("state_counts", time.Now())
	sc, err := e.scope(ctrl, region)
	if err != nil {
		return nil, err
	}
	counts := aggregate.CountByState(sc.outlets)
	aggregate.SortDesc(counts)
	return counts, nil
}

// TopDistricts returns the n districts with most outlets; n <= 0 uses the
// configured default.
func (e *Engine) TopDistricts(ctrl *filter.Controller, region string, n int) ([]model.GroupCount, error) {
	defer metrics.ObserveView("top_districts", time.Now())
	if n <= 0 {
		n = e.cfg.TopN
	}
	sc, err := e.scope(ctrl, region)
	if err != nil {
		return nil, err
	}
	return aggregate.TopDistricts(sc.outlets, n), nil
}

// Density returns the ranked density table.
func (e *Engine) Density(ctrl *filter.Controller, region string) ([]model.DensityRow, error) {
	defer metrics.ObserveView("density", time.Now())
	sc, err := e.scope(ctrl, region)
	if err != nil {
		return nil, err
	}
	rows := density.Compute(sc.outlets, sc.population)
	e.log.Debug("density recomputed",
		zap.String("region", region),
		zap.Int("outlets", len(sc.outlets)),
		zap.Int("rows", len(rows)),
	)
	return rows, nil
}

// Insights classifies the density table into underserved and saturated districts.
func (e *Engine) Insights(ctrl *filter.Controller, region string) (density.Insights, error) {
	rows, err := e.Density(ctrl, region)
	if err != nil {
		return density.Insights{}, err
	}
	return density.Classify(rows, e.cfg.Thresholds), nil
}

// Diagnose reports the name-key gaps between the datasets.
func (e *Engine) Diagnose() names.Report {
	r := names.Diagnose(e.store.Outlets(), e.store.Population(), e.store.States(), e.store.Districts())
	metrics.UnmatchedJoinKeys.WithLabelValues("population").Set(float64(len(r.DistrictsWithoutPopulation)))
	metrics.UnmatchedJoinKeys.WithLabelValues("district_boundary").Set(float64(len(r.DistrictsWithoutBoundary)))
	metrics.UnmatchedJoinKeys.WithLabelValues("state_boundary").Set(float64(len(r.StatesWithoutBoundary)))
	return r
}
