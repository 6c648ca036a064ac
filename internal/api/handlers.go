package api

import (
	"bytes"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/outlet-density/internal/dashboard"
	"github.com/sells-group/outlet-density/internal/density"
	"github.com/sells-group/outlet-density/internal/model"
	"github.com/sells-group/outlet-density/internal/spatial"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) regions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"regions": s.engine.Regions()})
}

func (s *Server) diagnoseNames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.Diagnose())
}

func (s *Server) createSession(w http.ResponseWriter, _ *http.Request) {
	sess := s.sessions.Create()
	s.log.Debug("session created", zap.String("session", sess.ID))
	writeJSON(w, http.StatusCreated, sess.State())
}

// session resolves the {id} URL parameter, writing a 404 when the session
// does not exist or has expired.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*dashboard.Session, bool) {
	sess, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) sessionState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) putStates(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		States []string `json:"states"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, sess.SelectStates(body.States))
}

func (s *Server) putDistricts(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Districts []string `json:"districts"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, sess.SelectDistricts(body.Districts))
}

type regionMissResponse struct {
	Error   string                 `json:"error"`
	Session dashboard.SessionState `json:"session"`
}

func (s *Server) putRegion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Region string `json:"region"`
	}
	if err := decodeBody(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	state, err := sess.SetRegion(body.Region)
	var rnf *spatial.RegionNotFoundError
	switch {
	case errors.As(err, &rnf):
		writeJSON(w, http.StatusNotFound, regionMissResponse{Error: rnf.Error(), Session: state})
	case err != nil:
		s.internalError(w, err)
	default:
		writeJSON(w, http.StatusOK, state)
	}
}

func (s *Server) putOverlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Enabled *bool `json:"enabled"`
	}
	if err := decodeBody(w, r, &body); err != nil || body.Enabled == nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, sess.SetOverlay(*body.Enabled))
}

func (s *Server) mapView(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	v, err := sess.Map()
	if err != nil {
		s.viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v.Layers())
}

func (s *Server) stateChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	counts, err := sess.StateCounts()
	if err != nil {
		s.viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.GroupCount{"counts": nonNil(counts)})
}

func (s *Server) districtChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	n := 0
	if raw := r.URL.Query().Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = v
	}
	top, err := sess.TopDistricts(n)
	if err != nil {
		s.viewError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]model.GroupCount{"counts": nonNil(top)})
}

func (s *Server) densityTable(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rows, err := sess.Density()
	if err != nil {
		s.viewError(w, err)
		return
	}
	if rows == nil {
		rows = []model.DensityRow{}
	}
	writeJSON(w, http.StatusOK, map[string][]model.DensityRow{"rows": rows})
}

func (s *Server) densityXLSX(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	rows, err := sess.Density()
	if err != nil {
		s.viewError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := density.WriteXLSX(&buf, rows); err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="density.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) insights(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	ins, err := sess.Insights()
	if err != nil {
		s.viewError(w, err)
		return
	}
	if ins.Underserved == nil {
		ins.Underserved = []model.DensityRow{}
	}
	if ins.Saturated == nil {
		ins.Saturated = []model.DensityRow{}
	}
	writeJSON(w, http.StatusOK, ins)
}

// viewError maps a view failure to a response. A session's region is always
// validated on write, so a region miss here means the boundaries changed
// underneath it.
func (s *Server) viewError(w http.ResponseWriter, err error) {
	var rnf *spatial.RegionNotFoundError
	if errors.As(err, &rnf) {
		writeError(w, http.StatusNotFound, rnf.Error())
		return
	}
	s.internalError(w, err)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func nonNil(c []model.GroupCount) []model.GroupCount {
	if c == nil {
		return []model.GroupCount{}
	}
	return c
}
