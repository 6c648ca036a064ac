package dashboard

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/filter"
	"github.com/sells-group/outlet-density/internal/metrics"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/spatial"
)

// Session is one user's selection. All methods serialize on the session, so
// concurrent requests for the same session see a consistent selection and
// different sessions never share state.
type Session struct {
	ID string

	mu       sync.Mutex
	engine   *Engine
	ctrl     *filter.Controller
	region   string
	overlay  bool
	lastSeen time.Time
}

// SessionState is the selection plus the option sets that depend on it.
type SessionState struct {
	ID              string          `json:"id"`
	Selection       model.Selection `json:"selection"`
	StateOptions    []string        `json:"state_options"`
	DistrictOptions []string        `json:"district_options"`
	Regions         []string        `json:"regions"`
}

// State returns a snapshot of the session.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() SessionState {
	return SessionState{
		ID: s.ID,
		Selection: model.Selection{
			States:            s.ctrl.SelectedStates(),
			Districts:         s.ctrl.SelectedDistricts(),
			Region:            s.region,
			PopulationOverlay: s.overlay,
		},
		StateOptions:    s.ctrl.StateOptions(),
		DistrictOptions: s.ctrl.DistrictOptions(),
		Regions:         s.engine.Regions(),
	}
}

// SelectStates updates the selected states and returns the new state.
func (s *Session) SelectStates(states []string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SelectStates(states)
	return s.stateLocked()
}

// SelectDistricts updates the selected districts and returns the new state.
func (s *Session) SelectDistricts(districts []string) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctrl.SelectDistricts(districts)
	return s.stateLocked()
}

// SetRegion changes the zoom region. An unknown region resets the zoom to
// AllRegions and returns a *spatial.RegionNotFoundError.
func (s *Session) SetRegion(region string) (SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if region == "" {
		region = model.AllRegions
	}
	if !s.engine.HasRegion(region) {
		metrics.RegionMisses.Inc()
		s.region = model.AllRegions
		return s.stateLocked(), &spatial.RegionNotFoundError{Region: region}
	}
	s.region = region
	return s.stateLocked(), nil
}

// SetOverlay toggles the population overlay.
func (s *Session) SetOverlay(on bool) SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = on
	return s.stateLocked()
}

// Map returns the map view for the current selection.
func (s *Session) Map() (MapView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Map(s.ctrl, s.region, s.overlay)
}

// StateCounts returns outlets per state for the current selection.
func (s *Session) StateCounts() ([]model.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.StateCounts(s.ctrl, s.region)
}

// TopDistricts returns the top n districts for the current selection.
func (s *Session) TopDistricts(n int) ([]model.GroupCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.TopDistricts(s.ctrl, s.region, n)
}

// Density returns the density table for the current selection.
func (s *Session) Density() ([]model.DensityRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Density(s.ctrl, s.region)
}

// Insights returns the classified density table for the current selection.
func (s *Session) Insights() (density.Insights, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Insights(s.ctrl, s.region)
}

// Sessions holds live sessions and evicts those idle longer than the TTL.
type Sessions struct {
	mu     sync.Mutex
	engine *Engine
	byID   map[string]*Session
	ttl    time.Duration
	now    func() time.Time
}

// NewSessions creates a session registry. A zero ttl disables eviction.
func NewSessions(engine *Engine, ttl time.Duration) *Sessions {
	return &Sessions{
		engine: engine,
		byID:   make(map[string]*Session),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create starts a session with everything selected and no zoom.
func (ss *Sessions) Create() *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sweepLocked()

	s := &Session{
		ID:       uuid.NewString(),
		engine:   ss.engine,
		ctrl:     ss.engine.NewController(),
		region:   model.AllRegions,
		overlay:  true,
		lastSeen: ss.now(),
	}
	ss.byID[s.ID] = s
	metrics.SessionsCreated.Inc()
	metrics.SessionsActive.Set(float64(len(ss.byID)))
	return s
}

// Get returns a live session and marks it as used.
func (ss *Sessions) Get(id string) (*Session, bool) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.sweepLocked()

	s, ok := ss.byID[id]
	if !ok {
		return nil, false
	}
	s.lastSeen = ss.now()
	return s, true
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.byID)
}

func (ss *Sessions) sweepLocked() {
	if ss.ttl <= 0 {
		return
	}
	cutoff := ss.now().Add(-ss.ttl)
	var evicted int
	for id, s := range ss.byID {
		if s.lastSeen.Before(cutoff) {
			delete(ss.byID, id)
			evicted++
		}
	}
	if evicted > 0 {
		zap.L().Debug("dashboard: evicted idle sessions", zap.Int("count", evicted))
		metrics.SessionsActive.Set(float64(len(ss.byID)))
	}
}
