package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/tallyhq/tally/internal/model"
)

func dateUTC(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (year, month int, err error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, expected YYYY-MM", s)
	}
	return t.Year(), int(t.Month()), nil
}

// FilterMonth keeps transactions dated within the given calendar month.
func FilterMonth(txns []model.Transaction, year, month int) model.StageResult {
	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.Date.Year() == year && int(txn.Date.Month()) == month {
			out = append(out, txn)
		}
	}
	return model.StageResult{Transactions: out}
}

// Exclude drops transactions whose merchant contains any pattern,
// case-insensitively.
func Exclude(txns []model.Transaction, patterns []string) model.StageResult {
	upper := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			upper = append(upper, p)
		}
	}
	if len(upper) == 0 {
		return model.StageResult{Transactions: txns}
	}

	out := make([]model.Transaction, 0, len(txns))
	for _, txn := range txns {
		if !containsAny(upper, txn.Merchant) {
			out = append(out, txn)
		}
	}
	res := model.StageResult{Transactions: out}
	if n := len(txns) - len(out); n > 0 {
		res.Warnf("excluded %d transaction(s) matching exclude patterns", n)
	}
	return res
}

// MarkRecurring flags transactions whose upper-cased merchant is in recurring.
func MarkRecurring(txns []model.Transaction, recurring map[string]bool) model.StageResult {
	out := model.Clone(txns)
	n := 0
	for i := range out {
		if recurring[strings.ToUpper(out[i].Merchant)] {
			out[i].IsRecurring = true
			n++
		}
	}
	res := model.StageResult{Transactions: out}
	if n > 0 {
		res.Warnf("flagged %d transaction(s) as recurring", n)
	}
	return res
}
