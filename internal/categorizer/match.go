// Package categorizer assigns categories to transactions (Tier 1 rules,
// Tier 2 LLM fallback) and learns new rules from user corrections.
package categorizer

import "github.com/tallyhq/tally/internal/model"

// MatchRule returns the rule whose pattern is the longest case-insensitive
// substring of merchant. On equal lengths the earlier rule wins, so with a
// SortRules-ordered list user rules beat learned ones.
func MatchRule(merchant string, rules []model.MerchantRule) (model.MerchantRule, bool) {
	best := -1
	bestLen := 0
	for i, r := range rules {
		if !r.Matches(merchant) {
			continue
		}
		if n := len(r.Pattern); n > bestLen {
			best, bestLen = i, n
		}
	}
	if best < 0 {
		return model.MerchantRule{}, false
	}
	return rules[best], true
}

// ApplyRules is Tier 1: every transaction without a category gets the
// category of its best matching rule. Unmatched ones pass through.
func ApplyRules(txns []model.Transaction, rules []model.MerchantRule) model.StageResult {
	out := model.Clone(txns)
	for i := range out {
		if out[i].IsCategorized() {
			continue
		}
		if r, ok := MatchRule(out[i].Merchant, rules); ok {
			out[i].Category = r.Category
			out[i].Subcategory = r.Subcategory
		}
	}
	return model.StageResult{Transactions: out}
}
