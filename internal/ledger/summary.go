package ledger

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// topUncategorized is how many uncategorized merchants a summary lists.
const topUncategorized = 10

// MerchantCount is a merchant and how often it appeared.
type MerchantCount struct {
	Merchant string
	Count    int
}

// CategoryTotal is the spend attributed to one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Summary describes one processed month.
type Summary struct {
	Month         string
	SourceCounts  map[string]int // transactions parsed per institution
	Total         int
	Transfers     int
	Splits        int
	Categorized   int
	Uncategorized []MerchantCount
	Spending      []CategoryTotal
	Warnings      []string
	Errors        []string
}

// Summarize builds the run summary from the final transactions (transfers
// included) and the per-institution parse counts.
func Summarize(month string, txns []model.Transaction, sourceCounts map[string]int, warnings, errs []string) Summary {
	s := Summary{
		Month:        month,
		SourceCounts: sourceCounts,
		Warnings:     warnings,
		Errors:       errs,
	}

	uncategorized := make(map[string]int)
	spending := make(map[string]decimal.Decimal)
	for _, t := range txns {
		if t.IsTransfer {
			s.Transfers++
			continue
		}
		s.Total++
		if t.SplitFrom != "" {
			s.Splits++
		}
		if t.IsCategorized() {
			s.Categorized++
		} else {
			uncategorized[t.Merchant]++
		}
		cat := t.Category
		if cat == "" {
			cat = model.Uncategorized
		}
		spending[cat] = spending[cat].Add(t.Amount)
	}

	for m, n := range uncategorized {
		s.Uncategorized = append(s.Uncategorized, MerchantCount{Merchant: m, Count: n})
	}
	sort.Slice(s.Uncategorized, func(i, j int) bool {
		a, b := s.Uncategorized[i], s.Uncategorized[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Merchant < b.Merchant
	})
	if len(s.Uncategorized) > topUncategorized {
		s.Uncategorized = s.Uncategorized[:topUncategorized]
	}

	for c, total := range spending {
		s.Spending = append(s.Spending, CategoryTotal{Category: c, Total: total})
	}
	// Largest spend (most negative) first.
	sort.Slice(s.Spending, func(i, j int) bool {
		a, b := s.Spending[i], s.Spending[j]
		if !a.Total.Equal(b.Total) {
			return a.Total.LessThan(b.Total)
		}
		return a.Category < b.Category
	})
	return s
}

// CategorizedPercent returns the share of non-transfer transactions with a category.
func (s Summary) CategorizedPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Categorized) * 100 / float64(s.Total)
}

// Print writes a human-readable report to w.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintf(w, "Summary for %s\n", s.Month)
	fmt.Fprintln(w, strings.Repeat("=", 40))

	institutions := make([]string, 0, len(s.SourceCounts))
	for inst := range s.SourceCounts {
		institutions = append(institutions, inst)
	}
	sort.Strings(institutions)
	for _, inst := range institutions {
		fmt.Fprintf(w, "  %-24s %d parsed\n", inst, s.SourceCounts[inst])
	}

	fmt.Fprintf(w, "Transactions:  %d\n", s.Total)
	fmt.Fprintf(w, "Transfers:     %d (excluded)\n", s.Transfers)
	fmt.Fprintf(w, "Split items:   %d\n", s.Splits)
	fmt.Fprintf(w, "Categorized:   %d/%d (%.1f%%)\n", s.Categorized, s.Total, s.CategorizedPercent())

	if len(s.Uncategorized) > 0 {
		fmt.Fprintln(w, "\nTop uncategorized merchants:")
		for _, m := range s.Uncategorized {
			fmt.Fprintf(w, "  %-32s %d\n", m.Merchant, m.Count)
		}
	}

	if len(s.Spending) > 0 {
		fmt.Fprintln(w, "\nSpending by category:")
		for _, c := range s.Spending {
			fmt.Fprintf(w, "  %-32s %12s\n", c.Category, c.Total.StringFixed(2))
		}
	}

	if len(s.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(s.Warnings))
		for _, msg := range s.Warnings {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(s.Errors))
		for _, msg := range s.Errors {
			fmt.Fprintf(w, "  - %s\n", msg)
		}
	}
}
