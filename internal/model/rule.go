package model

import "strings"

// RuleSource records who authored a merchant rule.
type RuleSource string

const (
	RuleSourceUser    RuleSource = "user"
	RuleSourceLearned RuleSource = "learned"
)

// MerchantRule maps a merchant substring to a category.
type MerchantRule struct {
	Pattern     string
	Category    string
	Subcategory string
	Source      RuleSource
}

// Matches reports whether the rule's pattern is a case-insensitive
// substring of merchant. Empty patterns never match.
func (r MerchantRule) Matches(merchant string) bool {
	if r.Pattern == "" {
		return false
	}
	return strings.Contains(strings.ToUpper(merchant), strings.ToUpper(r.Pattern))
}

// SortRules returns rules with all user rules first, then learned rules.
// Order within each group is preserved.
func SortRules(rules []MerchantRule) []MerchantRule {
	out := make([]MerchantRule, 0, len(rules))
	for _, r := range rules {
		if r.Source != RuleSourceLearned {
			out = append(out, r)
		}
	}
	for _, r := range rules {
		if r.Source == RuleSourceLearned {
			out = append(out, r)
		}
	}
	return out
}

// LearnResult is the outcome of diffing a corrected ledger against the original.
type LearnResult struct {
	Added   int
	Updated int
	Skipped int // corrections already covered by a user rule
	Rules   []MerchantRule
}

// Learned returns only the learned rules of the result.
func (r LearnResult) Learned() []MerchantRule {
	var out []MerchantRule
	for _, rule := range r.Rules {
		if rule.Source == RuleSourceLearned {
			out = append(out, rule)
		}
	}
	return out
}
