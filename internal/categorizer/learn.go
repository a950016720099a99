package categorizer

import "github.com/tallyhq/tally/internal/model"

// Learn derives rule changes from the differences between an exported ledger
// and the user's corrected copy of it.
//
// For each transaction present in both whose category or subcategory
// changed: a merchant already covered by a user rule is skipped; a learned
// rule with exactly the merchant as pattern is updated; otherwise a learned
// rule is appended. Corrections are visited in corrected-ledger order. The
// input rule slice is not modified.
func Learn(original, corrected []model.Transaction, rules []model.MerchantRule) model.LearnResult {
	before := make(map[string]model.Transaction, len(original))
	for _, t := range original {
		before[t.ID] = t
	}

	out := make([]model.MerchantRule, len(rules))
	copy(out, rules)
	result := model.LearnResult{}

	for _, after := range corrected {
		prev, ok := before[after.ID]
		if !ok {
			continue
		}
		if prev.Category == after.Category && prev.Subcategory == after.Subcategory {
			continue
		}
		merchant := after.Merchant
		if merchant == "" {
			continue
		}

		if coveredByUserRule(merchant, out) {
			result.Skipped++
			continue
		}

		if i := learnedIndex(merchant, out); i >= 0 {
			out[i].Category = after.Category
			out[i].Subcategory = after.Subcategory
			result.Updated++
			continue
		}

		out = append(out, model.MerchantRule{
			Pattern:     merchant,
			Category:    after.Category,
			Subcategory: after.Subcategory,
			Source:      model.RuleSourceLearned,
		})
		result.Added++
	}

	result.Rules = out
	return result
}

func coveredByUserRule(merchant string, rules []model.MerchantRule) bool {
	for _, r := range rules {
		if r.Source == model.RuleSourceUser && r.Matches(merchant) {
			return true
		}
	}
	return false
}

func learnedIndex(merchant string, rules []model.MerchantRule) int {
	for i, r := range rules {
		if r.Source == model.RuleSourceLearned && r.Pattern == merchant {
			return i
		}
	}
	return -1
}
