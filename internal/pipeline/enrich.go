package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/id"
	"github.com/tallyhq/tally/internal/model"
)

// splitTolerance is the largest accepted gap between a split's item total
// and its parent amount.
var splitTolerance = decimal.New(1, -2)

// Lookup fetches cached line items for a transaction ID. A miss is
// (nil, false, nil).
type Lookup interface {
	Lookup(txnID string) ([]model.EnrichmentItem, bool, error)
}

// Enrich replaces transactions that have cached line items with one child
// per item. Children inherit the parent's date, institution, account,
// merchant, transfer flag and source file. A split whose items do not sum
// to the parent amount within one cent is rejected and the parent kept.
func Enrich(txns []model.Transaction, cache Lookup) model.StageResult {
	var res model.StageResult
	out := make([]model.Transaction, 0, len(txns))

	for _, txn := range txns {
		items, ok, err := cache.Lookup(txn.ID)
		if err != nil {
			res.Warnf("could not read enrichment cache for %s: %v", txn.ID, err)
			out = append(out, txn)
			continue
		}
		if !ok || len(items) == 0 {
			out = append(out, txn)
			continue
		}

		sum := decimal.Zero
		for _, it := range items {
			sum = sum.Add(it.Amount)
		}
		if diff := sum.Sub(txn.Amount).Abs(); diff.GreaterThan(splitTolerance) {
			res.Warnf("enrichment split for %s sums to %s, expected %s (off by %s); keeping original",
				txn.ID, sum.StringFixed(2), txn.Amount.StringFixed(2), diff.StringFixed(2))
			out = append(out, txn)
			continue
		}

		for n, it := range items {
			out = append(out, splitChild(txn, it, n+1))
		}
	}

	res.Transactions = out
	return res
}

func splitChild(parent model.Transaction, item model.EnrichmentItem, n int) model.Transaction {
	child := model.Transaction{
		ID:          id.SplitID(parent.ID, n),
		Date:        parent.Date,
		Merchant:    parent.Merchant,
		Description: item.ItemName,
		Amount:      item.Amount,
		Institution: parent.Institution,
		Account:     parent.Account,
		IsTransfer:  parent.IsTransfer,
		SplitFrom:   parent.ID,
		SourceFile:  parent.SourceFile,
	}
	if item.CategoryHint != "" {
		child.Category, child.Subcategory = model.ParseCategoryValue(item.CategoryHint)
	}
	return child
}
