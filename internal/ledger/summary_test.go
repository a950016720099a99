package ledger

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallyhq/tally/internal/model"
)

func TestSummarize(t *testing.T) {
	txns := []model.Transaction{
		{Merchant: "AUTOPAY", Amount: dec("-200"), IsTransfer: true},
		{Merchant: "CHIPOTLE", Amount: dec("-12.85"), Category: "Food & Dining"},
		{Merchant: "AMAZON", Amount: dec("-20.00"), Category: "Shopping", SplitFrom: "p"},
		{Merchant: "AMAZON", Amount: dec("-25.00"), Category: "Shopping", SplitFrom: "p"},
		{Merchant: "MYSTERY", Amount: dec("-3.00"), Category: model.Uncategorized},
		{Merchant: "MYSTERY", Amount: dec("-4.00")},
		{Merchant: "ODD", Amount: dec("-1.00"), Category: model.Uncategorized},
	}

	s := Summarize("2025-01", txns, map[string]int{"chase": 7}, []string{"w"}, nil)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 1, s.Transfers)
	assert.Equal(t, 2, s.Splits)
	assert.Equal(t, 3, s.Categorized)
	assert.InDelta(t, 50.0, s.CategorizedPercent(), 0.001)
	assert.Equal(t, []MerchantCount{{"MYSTERY", 2}, {"ODD", 1}}, s.Uncategorized)

	require.Len(t, s.Spending, 3)
	assert.Equal(t, "Shopping", s.Spending[0].Category)
	assert.Equal(t, "-45.00", s.Spending[0].Total.StringFixed(2))
	assert.Equal(t, "Food & Dining", s.Spending[1].Category)
	assert.Equal(t, model.Uncategorized, s.Spending[2].Category)
	assert.Equal(t, "-8.00", s.Spending[2].Total.StringFixed(2))
}

func TestSummarize_TopTenUncategorized(t *testing.T) {
	var txns []model.Transaction
	for i := 0; i < 15; i++ {
		txns = append(txns, model.Transaction{Merchant: fmt.Sprintf("M%02d", i), Amount: dec("-1")})
	}
	s := Summarize("2025-01", txns, nil, nil, nil)
	assert.Len(t, s.Uncategorized, 10)
	assert.Equal(t, "M00", s.Uncategorized[0].Merchant)
}

func TestSummaryPrint(t *testing.T) {
	s := Summarize("2025-01", []model.Transaction{
		{Merchant: "CHIPOTLE", Amount: dec("-12.85"), Category: "Food & Dining"},
		{Merchant: "MYSTERY", Amount: dec("-3.00")},
	}, map[string]int{"chase": 2}, []string{"removed 1 duplicate transaction(s)"}, []string{"x.csv: file not found"})

	var buf bytes.Buffer
	s.Print(&buf)
	out := buf.String()

	assert.Contains(t, out, "Summary for 2025-01")
	assert.Contains(t, out, "chase")
	assert.Contains(t, out, "Categorized:   1/2 (50.0%)")
	assert.Contains(t, out, "Top uncategorized merchants:")
	assert.Contains(t, out, "MYSTERY")
	assert.Contains(t, out, "Warnings (1):")
	assert.Contains(t, out, "  - removed 1 duplicate transaction(s)")
	assert.Contains(t, out, "Errors (1):")
}
