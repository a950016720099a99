// Package recurring finds merchants that bill on a regular monthly cadence.
package recurring

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

const (
	// MinMonths is how many distinct months a merchant must appear in.
	MinMonths = 3
)

// Tolerance is the largest relative deviation of a month's mean amount
// from the median of all monthly means.
var Tolerance = decimal.NewFromFloat(0.20)

// Detect returns the upper-cased merchants in history that appear in at
// least MinMonths distinct months with similar amounts. Transfers are ignored.
func Detect(history []model.Transaction) map[string]bool {
	// merchant -> month -> absolute amounts
	byMerchant := make(map[string]map[string][]decimal.Decimal)
	for _, t := range history {
		if t.IsTransfer || t.Merchant == "" {
			continue
		}
		key := strings.ToUpper(t.Merchant)
		months, ok := byMerchant[key]
		if !ok {
			months = make(map[string][]decimal.Decimal)
			byMerchant[key] = months
		}
		months[t.Month()] = append(months[t.Month()], t.Amount.Abs())
	}

	out := make(map[string]bool)
	for merchant, months := range byMerchant {
		if len(months) < MinMonths {
			continue
		}
		means := make([]decimal.Decimal, 0, len(months))
		for _, amounts := range months {
			means = append(means, decimal.Avg(amounts[0], amounts[1:]...))
		}
		if similar(means) {
			out[merchant] = true
		}
	}
	return out
}

func similar(amounts []decimal.Decimal) bool {
	sort.Slice(amounts, func(i, j int) bool { return amounts[i].LessThan(amounts[j]) })
	n := len(amounts)
	median := amounts[n/2]
	if n%2 == 0 {
		median = amounts[n/2-1].Add(amounts[n/2]).Div(decimal.NewFromInt(2))
	}
	if median.IsZero() {
		return false
	}
	for _, a := range amounts {
		if a.Sub(median).Abs().Div(median).GreaterThan(Tolerance) {
			return false
		}
	}
	return true
}
