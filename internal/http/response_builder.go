package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"fintastic/internal/analytics"
	"fintastic/internal/auth"
	"fintastic/internal/core"
	applog "fintastic/internal/log"
	"fintastic/internal/services"
	"fintastic/internal/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

func writeUnauthorized(w http.ResponseWriter, _ *http.Request, msg string) {
	writeMessage(w, http.StatusUnauthorized, msg)
}

func writeRateLimited(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Retry-After", "60")
	writeMessage(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.")
}

var validationMessages = map[error]string{
	core.ErrInvalidAmount:   "Amount must be greater than 0",
	core.ErrAmountTooLarge:  "Amount must be at most 1000000000000",
	core.ErrInvalidMonth:    "Month must be in MM format",
	core.ErrInvalidYear:     "Year must be in YYYY format",
	core.ErrInvalidDate:     "Date must be in YYYY-MM-DD format",
	core.ErrInvalidDay:      "Date must be in YYYY-MM-DD format",
	core.ErrInvalidPeriod:   "Period must be monthly or annual",
	core.ErrEmptyCategory:   "Category is required",
	core.ErrEmptyLabel:      "All fields are required",
	core.ErrLabelTooLong:    "Label must be at most 100 characters",
	core.ErrCategoryTooLong: "Category must be at most 100 characters",
}

func validationMessage(err error) string {
	for target, msg := range validationMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return "Invalid request"
}

// writeError maps err to a status code. resource names the record type in
// 404 messages ("Budget", "Income", "Expense").
func writeError(w http.ResponseWriter, r *http.Request, err error, op, resource string) {
	var (
		reqErr    *requestError
		dupBudget *store.DuplicateBudgetError
	)
	switch {
	case errors.As(err, &reqErr):
		writeMessage(w, http.StatusBadRequest, reqErr.msg)
	case errors.As(err, &dupBudget):
		writeMessage(w, http.StatusConflict, fmt.Sprintf("Budget for %s in %s %s already exists.",
			dupBudget.Category, core.MonthAbbrev(dupBudget.Month), dupBudget.Year))
	case errors.Is(err, services.ErrDuplicateTransaction):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, analytics.ErrInvalidViewMode):
		writeMessage(w, http.StatusBadRequest, "viewMode must be monthly or annual")
	case errors.Is(err, analytics.ErrInvalidPeriod):
		writeMessage(w, http.StatusBadRequest, "month must be 1-12 and year must be in YYYY format")
	case core.IsValidation(err):
		writeMessage(w, http.StatusBadRequest, validationMessage(err))
	case errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, resource+" not found")
	default:
		ctx := r.Context()
		applog.FromContext(ctx).ErrorContext(ctx, "Request failed",
			applog.FieldOwnerID, auth.OwnerOf(r),
			applog.FieldOperation, op,
			applog.FieldPath, r.URL.Path,
			applog.FieldQuery, r.URL.RawQuery,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldError, err)
		writeMessage(w, http.StatusInternalServerError, "Server Error")
	}
}
