// Package notify is the outbound notification boundary. Budget alerts are the
// only producer today.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/template"

	"fintastic/internal/core"
	applog "fintastic/internal/log"
)

// TemplateBudgetAlert is sent when a category reaches warning or over.
const TemplateBudgetAlert = "budget_alert"

var (
	ErrEmptyRecipient  = errors.New("notification recipient is empty")
	ErrUnknownTemplate = errors.New("unknown notification template")
)

var templates = template.Must(template.New("notify").
	Funcs(template.FuncMap{"monthName": core.MonthAbbrev}).
	Option("missingkey=zero").
	Parse(`{{define "budget_alert"}}Budget {{if eq (printf "%v" .status) "over"}}exceeded{{else}}warning{{end}}: {{.category}} spent {{.spent}} of {{.budget}} ({{.percentage}}%) in {{monthName (printf "%v" .month)}} {{.year}}{{end}}`))

// Render returns the plain-text body of templateID filled with params.
func Render(templateID string, params map[string]any) (string, error) {
	t := templates.Lookup(templateID)
	if t == nil || templateID == "notify" {
		return "", fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}
	var b strings.Builder
	if err := t.Execute(&b, params); err != nil {
		return "", fmt.Errorf("render %s: %w", templateID, err)
	}
	return b.String(), nil
}

// Result describes a delivered notification.
type Result struct {
	MessageID string `json:"messageId"`
	Channel   string `json:"channel"`
}

// Notifier delivers one templated message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, templateID string, params map[string]any) (Result, error)
}

// BudgetAlertParams builds the template parameters for a budget alert.
func BudgetAlertParams(row core.BudgetRow) map[string]any {
	return map[string]any{
		"category":   row.Category,
		"month":      row.Month,
		"year":       row.Year,
		"budget":     row.Amount.String(),
		"spent":      row.Spent.String(),
		"percentage": fmt.Sprintf("%.1f", row.Percentage),
		"status":     string(row.Status),
	}
}

// LogNotifier writes notifications to the log. It is used when no broker is
// configured.
type LogNotifier struct {
	logger *applog.Logger
}

func NewLogNotifier(logger *applog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.WithComponent(applog.ComponentNotify)}
}

func (n *LogNotifier) Send(ctx context.Context, recipient, templateID string, params map[string]any) (Result, error) {
	if recipient == "" {
		return Result{}, ErrEmptyRecipient
	}
	text, err := Render(templateID, params)
	if err != nil {
		return Result{}, err
	}
	n.logger.InfoContext(ctx, "Notification",
		applog.FieldOwnerID, recipient,
		"template", templateID,
		"text", text)
	return Result{Channel: "log"}, nil
}
