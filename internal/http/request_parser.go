package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"fintastic/internal/analytics"
	"fintastic/internal/core"
	"fintastic/internal/services"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Money and Date validate by their underlying value.
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		switch x := f.Interface().(type) {
		case core.Money:
			return x.Cents
		case core.Date:
			if x.IsZero() {
				return ""
			}
			return x.Format(time.DateOnly)
		}
		return nil
	}, core.Money{}, core.Date{})

	_ = v.RegisterValidation("mm", func(fl validator.FieldLevel) bool {
		return core.ValidMonth(fl.Field().String())
	})
	_ = v.RegisterValidation("yyyy", func(fl validator.FieldLevel) bool {
		return core.ValidYear(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// requestError is a client mistake reported verbatim with status 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

type budgetRequest struct {
	Category           string     `json:"category" validate:"required,notblank,max=100"`
	Amount             core.Money `json:"amount" validate:"required"`
	Period             string     `json:"period" validate:"omitempty,oneof=monthly annual"`
	Month              string     `json:"month" validate:"required,mm"`
	Year               string     `json:"year" validate:"required,yyyy"`
	Icon               string     `json:"icon" validate:"max=64"`
	Color              string     `json:"color" validate:"max=32"`
	CopyToFutureMonths bool       `json:"copyToFutureMonths"`
}

func (r budgetRequest) toNewBudget() services.NewBudget {
	return services.NewBudget{
		Category:           strings.TrimSpace(r.Category),
		Amount:             r.Amount,
		Period:             core.BudgetPeriod(r.Period),
		Month:              r.Month,
		Year:               r.Year,
		Icon:               r.Icon,
		Color:              r.Color,
		CopyToFutureMonths: r.CopyToFutureMonths,
	}
}

// budgetUpdateRequest leaves absent fields untouched. Month and year are not
// accepted.
type budgetUpdateRequest struct {
	Category *string     `json:"category" validate:"omitempty,max=100"`
	Amount   *core.Money `json:"amount"`
	Period   *string     `json:"period" validate:"omitempty,oneof=monthly annual"`
	Icon     *string     `json:"icon" validate:"omitempty,max=64"`
	Color    *string     `json:"color" validate:"omitempty,max=32"`
}

func (r budgetUpdateRequest) toPatch() services.BudgetPatch {
	p := services.BudgetPatch{
		Category: r.Category,
		Amount:   r.Amount,
		Icon:     r.Icon,
		Color:    r.Color,
	}
	if r.Period != nil {
		period := core.BudgetPeriod(*r.Period)
		p.Period = &period
	}
	return p
}

// transactionRequest is shared by incomes (source) and expenses (category).
type transactionRequest struct {
	Source   string     `json:"source"`
	Category string     `json:"category"`
	Amount   core.Money `json:"amount" validate:"required"`
	Date     core.Date  `json:"date"`
	Icon     string     `json:"icon" validate:"max=64"`
}

func labelField(kind core.TransactionKind) string {
	if kind == core.KindIncome {
		return "source"
	}
	return "category"
}

func (r transactionRequest) label(kind core.TransactionKind) string {
	if kind == core.KindIncome {
		return r.Source
	}
	return r.Category
}

func parseTransaction(w http.ResponseWriter, r *http.Request, kind core.TransactionKind) (services.TransactionInput, error) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.TransactionInput{}, err
	}
	if err := validateStruct(req); err != nil {
		return services.TransactionInput{}, err
	}

	label := strings.TrimSpace(req.label(kind))
	switch {
	case label == "":
		return services.TransactionInput{}, badRequest("%s is required", labelField(kind))
	case len(label) > 100:
		return services.TransactionInput{}, badRequest("%s must be at most 100 characters", labelField(kind))
	}

	return services.TransactionInput{
		Label:  label,
		Amount: req.Amount,
		Date:   req.Date,
		Icon:   req.Icon,
	}, nil
}

func parseBudget(w http.ResponseWriter, r *http.Request) (services.NewBudget, error) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.NewBudget{}, err
	}
	if err := validateStruct(req); err != nil {
		return services.NewBudget{}, err
	}
	return req.toNewBudget(), nil
}

func parseBudgetUpdate(w http.ResponseWriter, r *http.Request) (services.BudgetPatch, error) {
	var req budgetUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.BudgetPatch{}, err
	}
	if err := validateStruct(req); err != nil {
		return services.BudgetPatch{}, err
	}
	return req.toPatch(), nil
}

// parsePeriod reads viewMode, month and year from the query string.
func parsePeriod(r *http.Request, now time.Time) (analytics.Period, error) {
	q := r.URL.Query()
	return analytics.ParsePeriod(
		strings.TrimSpace(q.Get("viewMode")),
		strings.TrimSpace(q.Get("month")),
		strings.TrimSpace(q.Get("year")),
		now,
	)
}

// parseHealthPeriod is parsePeriod, except that a request without a year
// scores every record.
func parseHealthPeriod(r *http.Request, now time.Time) (analytics.Period, error) {
	if strings.TrimSpace(r.URL.Query().Get("year")) == "" {
		return analytics.AllTime(), nil
	}
	return parsePeriod(r, now)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, core.ErrInvalidAmount):
			return badRequest("Amount must be greater than 0")
		case errors.Is(err, core.ErrAmountTooLarge):
			return badRequest("Amount must be at most %d", core.MaxAmountUnits)
		case errors.Is(err, core.ErrInvalidDate), errors.Is(err, core.ErrInvalidDay),
			errors.Is(err, core.ErrInvalidMonth), errors.Is(err, core.ErrInvalidYear):
			return badRequest("Date must be in YYYY-MM-DD format")
		case errors.As(err, &maxErr):
			return badRequest("Request body too large")
		default:
			return badRequest("Invalid JSON")
		}
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fieldErrorToString(e))
	}
	return badRequest("%s", strings.Join(msgs, "; "))
}

func fieldErrorToString(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		if e.Field() == "amount" {
			return "Amount must be greater than 0"
		}
		return fmt.Sprintf("%s is required", e.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", e.Field())
	case "mm":
		return fmt.Sprintf("%s must be in MM format", e.Field())
	case "yyyy":
		return fmt.Sprintf("%s must be in YYYY format", e.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), strings.ReplaceAll(e.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
