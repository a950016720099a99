package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Uncategorized is the category of a transaction no tier could resolve.
const Uncategorized = "Uncategorized"

// Transaction is one normalized money movement flowing through the pipeline.
type Transaction struct {
	ID          string
	Date        time.Time
	Merchant    string          // normalized display/match string
	Description string          // raw bank description
	Amount      decimal.Decimal // negative = expense, positive = credit
	Institution string
	Account     string
	Category    string
	Subcategory string
	IsTransfer  bool
	IsRecurring bool
	SplitFrom   string // parent ID for split line items
	SourceFile  string
}

// IsReturn reports whether the transaction is a refund or credit.
func (t Transaction) IsReturn() bool {
	return t.Amount.IsPositive()
}

// IsCategorized reports whether a category other than Uncategorized is set.
func (t Transaction) IsCategorized() bool {
	return t.Category != "" && t.Category != Uncategorized
}

// Month returns the "YYYY-MM" month the transaction falls in.
func (t Transaction) Month() string {
	return t.Date.Format("2006-01")
}

// CategoryValue renders "Category" or "Category:Subcategory".
func CategoryValue(category, subcategory string) string {
	if subcategory == "" {
		return category
	}
	return category + ":" + subcategory
}

// ParseCategoryValue splits "Category:Subcategory" into its parts.
// A value without a colon has an empty subcategory.
func ParseCategoryValue(v string) (category, subcategory string) {
	cat, sub, found := strings.Cut(v, ":")
	if !found {
		return strings.TrimSpace(v), ""
	}
	return strings.TrimSpace(cat), strings.TrimSpace(sub)
}

// EnrichmentItem is one cached line item for a transaction (e.g. a receipt row).
type EnrichmentItem struct {
	ItemName     string          `json:"item_name"`
	Amount       decimal.Decimal `json:"amount"`
	CategoryHint string          `json:"category_hint,omitempty"`
}
