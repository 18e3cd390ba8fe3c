package http

import (
	"net/http"

	"fintastic/internal/auth"
	"fintastic/internal/core"
	applog "fintastic/internal/log"
)

// transactionRoutes binds the income and expense endpoints to one set of
// handlers.
type transactionRoutes struct {
	kind  core.TransactionKind
	path  string
	title string
}

var (
	incomeRoutes  = transactionRoutes{kind: core.KindIncome, path: "income", title: "Income"}
	expenseRoutes = transactionRoutes{kind: core.KindExpense, path: "expense", title: "Expense"}
)

func (s *Server) handleCreateTransaction(t transactionRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseTransaction(w, r, t.kind)
		if err != nil {
			writeError(w, r, err, applog.OpCreate, t.title)
			return
		}
		created, err := s.transactions.Create(r.Context(), auth.OwnerOf(r), t.kind, in)
		if err != nil {
			writeError(w, r, err, applog.OpCreate, t.title)
			return
		}
		writeJSON(w, http.StatusOK, created)
	}
}

func (s *Server) handleListTransactions(t transactionRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := s.transactions.List(r.Context(), auth.OwnerOf(r), t.kind)
		if err != nil {
			writeError(w, r, err, applog.OpList, t.title)
			return
		}
		if records == nil {
			records = []core.Transaction{}
		}
		writeJSON(w, http.StatusOK, records)
	}
}

func (s *Server) handleUpdateTransaction(t transactionRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		in, err := parseTransaction(w, r, t.kind)
		if err != nil {
			writeError(w, r, err, applog.OpUpdate, t.title)
			return
		}
		updated, err := s.transactions.Update(r.Context(), auth.OwnerOf(r), t.kind, r.PathValue("id"), in)
		if err != nil {
			writeError(w, r, err, applog.OpUpdate, t.title)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	}
}

func (s *Server) handleDeleteTransaction(t transactionRoutes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.transactions.Delete(r.Context(), auth.OwnerOf(r), t.kind, r.PathValue("id")); err != nil {
			writeError(w, r, err, applog.OpDelete, t.title)
			return
		}
		writeMessage(w, http.StatusOK, t.title+" deleted successfully")
	}
}
