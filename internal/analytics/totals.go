package analytics

import (
	"sort"

	"fintastic/internal/core"
)

// Totals is the aggregate of one kind of transaction over a period.
type Totals struct {
	Total      core.Money
	Count      int
	ByCategory map[string]core.Money
}

// ComputeTotals sums the records whose date falls inside p. Records with an
// empty label are grouped under "Other".
func ComputeTotals(records []core.Transaction, p Period) Totals {
	t := Totals{ByCategory: make(map[string]core.Money)}
	for _, r := range records {
		if !p.Contains(r.Date) {
			continue
		}
		t.Total = t.Total.Add(r.Amount)
		t.Count++
		cat := r.Category()
		t.ByCategory[cat] = t.ByCategory[cat].Add(r.Amount)
	}
	return t
}

// Categories returns ByCategory sorted by amount descending, then name.
func (t Totals) Categories() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(t.ByCategory))
	for name, amt := range t.ByCategory {
		out = append(out, core.CategoryAmount{Name: name, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out
}
