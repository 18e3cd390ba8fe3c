package http

import (
	"net/http"

	"fintastic/internal/auth"
	"fintastic/internal/core"
	applog "fintastic/internal/log"
)

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.List(r.Context(), auth.OwnerOf(r))
	if err != nil {
		writeError(w, r, err, applog.OpList, "Budget")
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handleBudgetAnalysis(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriod(r, s.now())
	if err != nil {
		writeError(w, r, err, applog.OpAnalyze, "Budget")
		return
	}
	analysis, err := s.budgets.Analysis(r.Context(), auth.OwnerOf(r), p)
	if err != nil {
		writeError(w, r, err, applog.OpAnalyze, "Budget")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	in, err := parseBudget(w, r)
	if err != nil {
		writeError(w, r, err, applog.OpCreate, "Budget")
		return
	}
	created, err := s.budgets.Create(r.Context(), auth.OwnerOf(r), in)
	if err != nil {
		writeError(w, r, err, applog.OpCreate, "Budget")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBudget(w http.ResponseWriter, r *http.Request) {
	patch, err := parseBudgetUpdate(w, r)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate, "Budget")
		return
	}
	updated, err := s.budgets.Update(r.Context(), auth.OwnerOf(r), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate, "Budget")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.budgets.Delete(r.Context(), auth.OwnerOf(r), r.PathValue("id")); err != nil {
		writeError(w, r, err, applog.OpDelete, "Budget")
		return
	}
	writeMessage(w, http.StatusOK, "Budget deleted successfully")
}
