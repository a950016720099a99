package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tallyhq/tally/internal/model"
)

// Rule numbers reported by ValidateCorrections.
const (
	RuleUniqueID    = 1
	RuleKnownID     = 2
	RuleCategory    = 3
	RuleUnchanged   = 4
	RuleTwoDecimals = 5
)

// ValidationError describes a single problem in a corrected ledger.
type ValidationError struct {
	Rule          int
	TransactionID string
	Description   string
}

// Fatal reports whether the problem makes the corrected ledger unusable.
// Rows unknown to the original are only skipped by learning.
func (e ValidationError) Fatal() bool {
	return e.Rule != RuleKnownID
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("rule %d [%s]: %s", e.Rule, e.TransactionID, e.Description)
}

// CategoryChecker tests whether a category/subcategory pair is in the taxonomy.
type CategoryChecker interface {
	Valid(category, subcategory string) bool
}

// ValidateCorrections checks a user-edited ledger against the ledger it was
// exported as, before its corrections are learned from. Only category and
// subcategory may be edited.
func ValidateCorrections(original, corrected []model.Transaction, categories CategoryChecker) []ValidationError {
	var errs []ValidationError

	before := make(map[string]model.Transaction, len(original))
	for _, t := range original {
		before[t.ID] = t
	}

	seen := make(map[string]bool, len(corrected))
	hundred := decimal.NewFromInt(100)
	for _, t := range corrected {
		// Rule 1: IDs are unique.
		if seen[t.ID] {
			errs = append(errs, ValidationError{
				Rule:          RuleUniqueID,
				TransactionID: t.ID,
				Description:   "duplicate transaction_id",
			})
			continue
		}
		seen[t.ID] = true

		// Rule 2: every row exists in the original.
		prev, ok := before[t.ID]
		if !ok {
			errs = append(errs, ValidationError{
				Rule:          RuleKnownID,
				TransactionID: t.ID,
				Description:   "transaction_id not present in original ledger",
			})
			continue
		}

		// Rule 3: categories come from the taxonomy.
		if t.Category != model.Uncategorized && !categories.Valid(t.Category, t.Subcategory) {
			errs = append(errs, ValidationError{
				Rule:          RuleCategory,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("unknown category %q", model.CategoryValue(t.Category, t.Subcategory)),
			})
		}

		// Rule 4: identity fields are untouched.
		if prev.Merchant != t.Merchant || !prev.Amount.Equal(t.Amount) || !prev.Date.Equal(t.Date) {
			errs = append(errs, ValidationError{
				Rule:          RuleUnchanged,
				TransactionID: t.ID,
				Description:   "only category and subcategory may be edited",
			})
		}

		// Rule 5: exact cents.
		if !t.Amount.Mul(hundred).Equal(t.Amount.Mul(hundred).Floor()) {
			errs = append(errs, ValidationError{
				Rule:          RuleTwoDecimals,
				TransactionID: t.ID,
				Description:   fmt.Sprintf("amount %s has more than 2 decimal places", t.Amount),
			})
		}
	}
	return errs
}
