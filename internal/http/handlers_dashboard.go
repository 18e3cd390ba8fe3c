package http

import (
	"net/http"

	"fintastic/internal/auth"
	applog "fintastic/internal/log"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Dashboard(r.Context(), auth.OwnerOf(r))
	if err != nil {
		writeError(w, r, err, applog.OpRead, "Dashboard")
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleHealthScore scores the selected period, or every record when the
// query has no year.
func (s *Server) handleHealthScore(w http.ResponseWriter, r *http.Request) {
	p, err := parseHealthPeriod(r, s.now())
	if err != nil {
		writeError(w, r, err, applog.OpScore, "Health score")
		return
	}
	h, err := s.dashboard.Health(r.Context(), auth.OwnerOf(r), p)
	if err != nil {
		writeError(w, r, err, applog.OpScore, "Health score")
		return
	}
	writeJSON(w, http.StatusOK, h)
}
